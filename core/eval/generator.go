package eval

import (
	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/dialect"
	"github.com/chia-network/go-clvm/core/serialize"
)

// RunGenerator is the block-generator convenience wrapper (SPEC_FULL.md
// §4): it deserializes a generator program and a list of block references,
// builds the environment generators expect - (() block_ref_1 block_ref_2
// ...), the conventional leading nil reserving the first environment slot
// for the generator's own arguments - and runs it.
//
// Grounded on run_program.rs's run_chia_program-level callers in the
// original generator-execution pipeline: they always deserialize the
// generator and its block references independently before constructing one
// combined environment, rather than asking the caller to pre-assemble it.
func RunGenerator(alloc *allocator.Allocator, d *dialect.Dialect, generator []byte, blockRefs [][]byte, maxCost uint64, opts ...Option) (uint64, allocator.Ptr, error) {
	program, err := serialize.DecodeAll(alloc, generator)
	if err != nil {
		return 0, 0, err
	}

	env := allocator.Nil
	for i := len(blockRefs) - 1; i >= 0; i-- {
		ref, err := serialize.DecodeAll(alloc, blockRefs[i])
		if err != nil {
			return 0, 0, err
		}
		env, err = alloc.NewPair(ref, env)
		if err != nil {
			return 0, 0, err
		}
	}
	env, err = alloc.NewPair(alloc.Nil(), env)
	if err != nil {
		return 0, 0, err
	}

	return RunProgram(alloc, d, program, env, maxCost, opts...)
}
