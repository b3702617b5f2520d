package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"

	"github.com/chia-network/go-clvm/clvmerr"
)

// debug, set by the root command's persistent --debug flag, switches error
// reporting from a one-line message to a full go-spew dump of the error
// value (grounded on the teacher's CLIHarness root-command-plus-flags
// shape in runtime/cli/harness.go, generalized from its single generated
// command loop to this tool's fixed subcommand set).
var debug bool

var rootCmd = &cobra.Command{
	Use:           "clvm-tool",
	Short:         "Run, inspect, and transcode CLVM programs",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "dump full error detail with go-spew on failure")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serializeCmd)
	rootCmd.AddCommand(deserializeCmd)
	rootCmd.AddCommand(treeHashCmd)
	rootCmd.AddCommand(disassembleCmd)
	rootCmd.AddCommand(opcodeCmd)
	rootCmd.AddCommand(serveCmd)
}

func fail(err error) error {
	if debug {
		spew.Fdump(os.Stderr, err)
		return err
	}
	var ce *clvmerr.Error
	if errors.As(err, &ce) {
		fmt.Fprintf(os.Stderr, "%s: %s\n", ce.Kind, ce.Msg)
		return err
	}
	fmt.Fprintln(os.Stderr, err)
	return err
}

// readHexArg resolves a CLI argument naming hex-encoded bytes. "@path"
// reads the hex from a file (trimmed of surrounding whitespace); "-" reads
// it from stdin; anything else is treated as the literal hex string.
func readHexArg(arg string) (string, error) {
	switch {
	case arg == "-":
		var sb strings.Builder
		buf := make([]byte, 4096)
		for {
			n, err := os.Stdin.Read(buf)
			sb.Write(buf[:n])
			if err != nil {
				break
			}
		}
		return strings.TrimSpace(sb.String()), nil
	case strings.HasPrefix(arg, "@"):
		b, err := os.ReadFile(arg[1:])
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", arg[1:], err)
		}
		return strings.TrimSpace(string(b)), nil
	default:
		return strings.TrimSpace(arg), nil
	}
}
