package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/chia-network/go-clvm/core/dialect"
	"github.com/chia-network/go-clvm/ops"
)

// manifestSchema constrains an extension manifest file to a known shape
// before it ever reaches dialect construction (grounded on the
// size/depth-checked jsonschema.Schema.Validate pattern in
// core/types/validation.go - here the schema itself is the bound, since
// manifests are small, fixed-shape config files rather than
// caller-supplied parameter schemas).
const manifestSchema = `{
	"type": "object",
	"additionalProperties": false,
	"properties": {
		"unknown_op_policy": {"type": "string", "enum": ["strict", "permissive"]},
		"extensions": {
			"type": "array",
			"items": {"type": "string", "enum": ["base64", "keccak256", "bls12381", "secp256"]}
		}
	}
}`

var compiledManifestSchema = func() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("manifest.json", strings.NewReader(manifestSchema)); err != nil {
		panic(err)
	}
	return c.MustCompile("manifest.json")
}()

// ExtensionManifest selects which softfork extensions a dialect has
// registered and its unknown-opcode policy (spec.md §4.5), loaded from a
// JSON file so `run` can be pointed at a softfork configuration without a
// recompile.
type ExtensionManifest struct {
	UnknownOpPolicy string   `json:"unknown_op_policy"`
	Extensions      []string `json:"extensions"`
}

func loadManifest(path string) (*ExtensionManifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading manifest %s: %w", path, err)
	}

	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing manifest %s: %w", path, err)
	}
	if err := compiledManifestSchema.Validate(raw); err != nil {
		return nil, fmt.Errorf("manifest %s failed validation: %w", path, err)
	}

	var m ExtensionManifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decoding manifest %s: %w", path, err)
	}
	return &m, nil
}

// buildDialect applies an ExtensionManifest on top of the base operator
// set, or returns ops.DefaultDialect() unchanged when m is nil.
func buildDialect(m *ExtensionManifest) (*dialect.Dialect, error) {
	if m == nil {
		return ops.DefaultDialect(), nil
	}

	d := dialect.New(ops.BaseOperatorSet())
	if m.UnknownOpPolicy == "permissive" {
		d.WithUnknownOpPolicy(dialect.Permissive).WithPermissiveSoftfork(true)
	}
	for _, name := range m.Extensions {
		switch name {
		case "base64":
			d.WithExtension(ops.ExtBase64, ops.Base64Extension())
		case "keccak256":
			d.WithExtension(ops.ExtKeccak, ops.KeccakExtension())
		case "bls12381":
			d.WithExtension(ops.ExtBLSG2, ops.BLSExtension())
		case "secp256":
			d.WithExtension(ops.ExtSecp256, ops.Secp256Extension())
		default:
			return nil, fmt.Errorf("unrecognized extension %q", name)
		}
	}
	return d, nil
}
