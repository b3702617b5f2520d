package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/serialize"
)

var treeHashCmd = &cobra.Command{
	Use:   "tree-hash <program-hex>",
	Short: "Print the sha256 tree hash of a serialized program",
	Args:  cobra.ExactArgs(1),
	RunE:  runTreeHash,
}

func runTreeHash(cmd *cobra.Command, args []string) error {
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
	h := serialize.TreeHash(alloc, node)
	fmt.Fprintln(cmd.OutOrStdout(), hex.EncodeToString(h[:]))
	return nil
}
