package main

import (
	"encoding/hex"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/eval"
)

var (
	runEnvHex      string
	runMaxCost     uint64
	runManifest    string
	runAsGenerator bool
	runBlockRefs   []string
	runTrace       bool
)

var runCmd = &cobra.Command{
	Use:   "run <program-hex>",
	Short: "Evaluate a serialized program against an environment (spec.md §6.2)",
	Args:  cobra.ExactArgs(1),
	RunE:  runRun,
}

func init() {
	runCmd.Flags().StringVar(&runEnvHex, "env", "80", "hex-encoded environment (default: nil)")
	runCmd.Flags().Uint64Var(&runMaxCost, "max-cost", 11_000_000_000, "cost budget; evaluation aborts past this")
	runCmd.Flags().StringVar(&runManifest, "manifest", "", "path to a softfork extension manifest (see manifest.go)")
	runCmd.Flags().BoolVar(&runAsGenerator, "generator", false, "treat <program-hex> as a block generator, --block-ref values as block references (--env is ignored)")
	runCmd.Flags().StringArrayVar(&runBlockRefs, "block-ref", nil, "hex-encoded block reference (repeatable, --generator only)")
	runCmd.Flags().BoolVar(&runTrace, "trace", false, "print every expression the evaluator visits to stderr")
}

func runRun(cmd *cobra.Command, args []string) error {
	programHex, err := readHexArg(args[0])
	if err != nil {
		return fail(err)
	}
	programBytes, err := hex.DecodeString(programHex)
	if err != nil {
		return fail(fmt.Errorf("decoding program hex: %w", err))
	}

	var manifest *ExtensionManifest
	if runManifest != "" {
		manifest, err = loadManifest(runManifest)
		if err != nil {
			return fail(err)
		}
	}
	d, err := buildDialect(manifest)
	if err != nil {
		return fail(err)
	}

	var opts []eval.Option
	if runTrace {
		opts = append(opts, eval.WithTraceHook(func(alloc *allocator.Allocator, expr, env allocator.Ptr) {
			fmt.Fprintf(cmd.ErrOrStderr(), "eval %s\n", disassemble(alloc, expr))
		}))
	}

	alloc := allocator.New()

	var cost uint64
	var result allocator.Ptr

	if runAsGenerator {
		blockRefs := make([][]byte, 0, len(runBlockRefs))
		for _, ref := range runBlockRefs {
			hexRef, err := readHexArg(ref)
			if err != nil {
				return fail(err)
			}
			b, err := hex.DecodeString(hexRef)
			if err != nil {
				return fail(fmt.Errorf("decoding block ref hex: %w", err))
			}
			blockRefs = append(blockRefs, b)
		}
		cost, result, err = eval.RunGenerator(alloc, d, programBytes, blockRefs, runMaxCost, opts...)
	} else {
		envHex, err2 := readHexArg(runEnvHex)
		if err2 != nil {
			return fail(err2)
		}
		envBytes, err2 := hex.DecodeString(envHex)
		if err2 != nil {
			return fail(fmt.Errorf("decoding env hex: %w", err2))
		}
		program, err2 := decodeAll(alloc, programBytes)
		if err2 != nil {
			return fail(err2)
		}
		env, err2 := decodeAll(alloc, envBytes)
		if err2 != nil {
			return fail(err2)
		}
		cost, result, err = eval.RunProgram(alloc, d, program, env, runMaxCost, opts...)
	}
	if err != nil {
		return fail(err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "cost: %d\n", cost)
	fmt.Fprintf(cmd.OutOrStdout(), "%s\n", disassemble(alloc, result))
	return nil
}
