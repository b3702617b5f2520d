package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fxamacker/cbor/v2"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/blake2b"

	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/bigint"
	"github.com/chia-network/go-clvm/ops"
)

var disassembleCmd = &cobra.Command{
	Use:   "disassemble <program-hex>",
	Short: "Print a serialized program as a human-readable operator tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runDisassemble,
}

var disassembleMaxCostHint uint64
var disassembleNoCache bool

var opcodeCmd = &cobra.Command{
	Use:   "opcode <operator-name>",
	Short: "Print the opcode for an operator name, e.g. \"+\" or \"sha256\"",
	Args:  cobra.ExactArgs(1),
	RunE:  runOpcode,
}

func runOpcode(cmd *cobra.Command, args []string) error {
	name := args[0]
	op, ok := ops.NameToOpcode[name]
	if !ok {
		ranks := fuzzy.RankFindFold(name, ops.AllNames())
		if len(ranks) > 0 {
			return fail(fmt.Errorf("unknown operator %q, did you mean %q?", name, ranks[0].Target))
		}
		return fail(fmt.Errorf("unknown operator %q", name))
	}
	fmt.Fprintln(cmd.OutOrStdout(), int(op))
	return nil
}

func init() {
	disassembleCmd.Flags().Uint64Var(&disassembleMaxCostHint, "max-cost", 0, "recorded alongside the program in the disassembly cache key")
	disassembleCmd.Flags().BoolVar(&disassembleNoCache, "no-cache", false, "skip the on-disk disassembly cache")
}

func runDisassemble(cmd *cobra.Command, args []string) error {
	raw, err := readHexArg(args[0])
	if err != nil {
		return fail(err)
	}
	programBytes, err := hex.DecodeString(raw)
	if err != nil {
		return fail(fmt.Errorf("decoding program hex: %w", err))
	}

	if !disassembleNoCache {
		if cached, ok := readDisassemblyCache(programBytes, disassembleMaxCostHint); ok {
			fmt.Fprintln(cmd.OutOrStdout(), cached)
			return nil
		}
	}

	alloc := allocator.New()
	node, err := decodeAll(alloc, programBytes)
	if err != nil {
		return fail(err)
	}

	text := disassemble(alloc, node)
	fmt.Fprintln(cmd.OutOrStdout(), text)

	if !disassembleNoCache {
		writeDisassemblyCache(programBytes, disassembleMaxCostHint, text)
	}
	return nil
}

// disassemble renders a node as source-like text: operator atoms in
// leading position print by canonical name via ops.Names when recognized,
// every other atom prints as a decimal integer (small values) or hex blob.
// Ordinary recursion is fine here - this is debug-only pretty-printing, not
// the consensus-critical reduction in core/eval, which must stay
// non-recursive (spec.md §9).
func disassemble(alloc *allocator.Allocator, node allocator.Ptr) string {
	s := alloc.SExp(node)
	if s.Kind == allocator.KindAtom {
		return disassembleAtom(alloc, node)
	}

	var parts []string
	if n, ok := alloc.SmallNumber(s.Left); ok && alloc.SExp(s.Left).Kind == allocator.KindAtom {
		if name, ok := ops.Names[byte(n)]; ok && n <= 0xff {
			parts = append(parts, name)
		} else {
			parts = append(parts, disassemble(alloc, s.Left))
		}
	} else {
		parts = append(parts, disassemble(alloc, s.Left))
	}

	cur := s.Right
	for {
		cs := alloc.SExp(cur)
		if cs.Kind == allocator.KindPair {
			parts = append(parts, disassemble(alloc, cs.Left))
			cur = cs.Right
			continue
		}
		if alloc.AtomLen(cur) == 0 {
			break
		}
		parts = append(parts, ".", disassemble(alloc, cur))
		break
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func disassembleAtom(alloc *allocator.Allocator, p allocator.Ptr) string {
	b := alloc.Atom(p)
	if len(b) == 0 {
		return "()"
	}
	if len(b) <= 8 {
		n := bigint.FromAtom(b)
		return n.String()
	}
	return "0x" + hex.EncodeToString(b)
}

// disassemblyCacheEntry is the cbor-encoded record stored per cache key
// (grounded on the canonical cbor-plus-hash pattern in
// core/planfmt/canonical.go).
type disassemblyCacheEntry struct {
	Text string `cbor:"text"`
}

func disassemblyCacheKey(programBytes []byte, maxCost uint64) (string, error) {
	h, err := blake2b.New256(nil)
	if err != nil {
		return "", err
	}
	h.Write(programBytes)
	h.Write([]byte(strconv.FormatUint(maxCost, 10)))
	return hex.EncodeToString(h.Sum(nil)), nil
}

func disassemblyCacheDir() string {
	dir, err := os.UserCacheDir()
	if err != nil {
		return ""
	}
	return dir + "/clvm-tool/disasm"
}

func readDisassemblyCache(programBytes []byte, maxCost uint64) (string, bool) {
	dir := disassemblyCacheDir()
	if dir == "" {
		return "", false
	}
	key, err := disassemblyCacheKey(programBytes, maxCost)
	if err != nil {
		return "", false
	}
	data, err := os.ReadFile(dir + "/" + key + ".cbor")
	if err != nil {
		return "", false
	}
	var entry disassemblyCacheEntry
	if err := cbor.Unmarshal(data, &entry); err != nil {
		return "", false
	}
	return entry.Text, true
}

func writeDisassemblyCache(programBytes []byte, maxCost uint64, text string) {
	dir := disassemblyCacheDir()
	if dir == "" {
		return
	}
	key, err := disassemblyCacheKey(programBytes, maxCost)
	if err != nil {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return
	}
	data, err := cbor.Marshal(disassemblyCacheEntry{Text: text})
	if err != nil {
		return
	}
	_ = os.WriteFile(dir+"/"+key+".cbor", data, 0o644)
}
