// Command clvm-tool is the reference CLI entry point for the evaluator
// (spec.md §6.2): run programs, serialize/deserialize s-expressions,
// tree-hash them, and disassemble opcodes back to operator names.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
