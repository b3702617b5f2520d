package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadManifestAcceptsKnownExtensions(t *testing.T) {
	path := writeManifest(t, `{"unknown_op_policy": "permissive", "extensions": ["base64", "keccak256"]}`)
	m, err := loadManifest(path)
	require.NoError(t, err)
	require.Equal(t, "permissive", m.UnknownOpPolicy)
	require.ElementsMatch(t, []string{"base64", "keccak256"}, m.Extensions)
}

func TestLoadManifestRejectsUnknownField(t *testing.T) {
	path := writeManifest(t, `{"not_a_field": true}`)
	_, err := loadManifest(path)
	require.Error(t, err)
}

func TestLoadManifestRejectsUnknownExtensionName(t *testing.T) {
	path := writeManifest(t, `{"extensions": ["not_a_real_extension"]}`)
	_, err := loadManifest(path)
	require.Error(t, err)
}

func TestBuildDialectAppliesPermissivePolicy(t *testing.T) {
	m := &ExtensionManifest{UnknownOpPolicy: "permissive", Extensions: []string{"base64"}}
	d, err := buildDialect(m)
	require.NoError(t, err)
	require.True(t, d.Permissive())

	_, ok := d.Extension(1) // ops.ExtBase64
	require.True(t, ok)

	_, lookupErr := d.Lookup(0x63, nil)
	require.NoError(t, lookupErr)
}

func TestBuildDialectNilManifestUsesDefault(t *testing.T) {
	d, err := buildDialect(nil)
	require.NoError(t, err)
	require.False(t, d.Permissive())
}
