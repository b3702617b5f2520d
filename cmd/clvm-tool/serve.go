package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/eval"
	"github.com/chia-network/go-clvm/ops"
)

var (
	serveEnvHex  string
	serveMaxCost uint64
)

var serveCmd = &cobra.Command{
	Use:   "serve <program-file>",
	Short: "Re-run a program file against --env each time it changes on disk",
	Args:  cobra.ExactArgs(1),
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveEnvHex, "env", "80", "hex-encoded environment (default: nil)")
	serveCmd.Flags().Uint64Var(&serveMaxCost, "max-cost", 11_000_000_000, "cost budget; evaluation aborts past this")
}

// runServe watches a program file and re-evaluates it on every write,
// useful while iterating on a program by hand. Grounded on the teacher's
// fsnotify dependency, unused elsewhere in this module; this is its only
// consumer.
func runServe(cmd *cobra.Command, args []string) error {
	path := args[0]

	evaluate := func() {
		programHex, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			return
		}
		programBytes, err := hex.DecodeString(strings.TrimSpace(string(programHex)))
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "decoding program hex:", err)
			return
		}
		envBytes, err := hex.DecodeString(strings.TrimSpace(serveEnvHex))
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "decoding env hex:", err)
			return
		}

		alloc := allocator.New()
		program, err := decodeAll(alloc, programBytes)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			return
		}
		env, err := decodeAll(alloc, envBytes)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			return
		}

		cost, result, err := eval.RunProgram(alloc, ops.DefaultDialect(), program, env, serveMaxCost)
		if err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), err)
			return
		}
		fmt.Fprintf(cmd.OutOrStdout(), "cost: %d\n%s\n", cost, disassemble(alloc, result))
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fail(err)
	}
	defer watcher.Close()

	if err := watcher.Add(path); err != nil {
		return fail(err)
	}

	evaluate()
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Write) {
				evaluate()
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(cmd.ErrOrStderr(), err)
		}
	}
}
