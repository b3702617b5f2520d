package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/serialize"
)

// decodeAll is the shared hex-to-tree helper every subcommand that reads a
// program uses. serialize.DecodeAll already resolves backref-compressed
// streams unconditionally (core/serialize/backref.go), so there is no
// separate "backref mode" for callers to request here.
func decodeAll(alloc *allocator.Allocator, data []byte) (allocator.Ptr, error) {
	return serialize.DecodeAll(alloc, data)
}

var serializeBackref bool

var serializeCmd = &cobra.Command{
	Use:   "serialize <program-hex>",
	Short: "Re-encode a deserialized program, printing its canonical bytes as hex",
	Args:  cobra.ExactArgs(1),
	RunE:  runSerialize,
}

var deserializeCmd = &cobra.Command{
	Use:   "deserialize <program-hex>",
	Short: "Decode a serialized program and print its disassembled tree",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeserialize,
}

func init() {
	serializeCmd.Flags().BoolVar(&serializeBackref, "backref", false, "emit back-reference-compressed output (core/serialize's EncodeBackref)")
}

func runSerialize(cmd *cobra.Command, args []string) error {
	raw, err := readHexArg(args[0])
	if err != nil {
		return fail(err)
	}
	programBytes, err := hex.DecodeString(raw)
	if err != nil {
		return fail(fmt.Errorf("decoding program hex: %w", err))
	}
	alloc := allocator.New()
	node, err := decodeAll(alloc, programBytes)
	if err != nil {
		return fail(err)
	}

	var reencoded []byte
	if serializeBackref {
		reencoded, err = serialize.EncodeBackref(alloc, node)
	} else {
		reencoded, err = serialize.Encode(alloc, node)
	}
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(reencoded))
	return nil
}

func runDeserialize(cmd *cobra.Command, args []string) error {
	raw, err := readHexArg(args[0])
	if err != nil {
		return fail(err)
	}
	programBytes, err := hex.DecodeString(raw)
	if err != nil {
		return fail(fmt.Errorf("decoding program hex: %w", err))
	}
	alloc := allocator.New()
	node, err := decodeAll(alloc, programBytes)
	if err != nil {
		return fail(err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), disassemble(alloc, node))
	return nil
}
