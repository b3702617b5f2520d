package ops

import (
	"math/big"

	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/bigint"
)

// argList walks an operator's argument list into a slice of element
// handles, atoms and pairs alike, rejecting only a non-nil terminator.
// Operators that take atoms check each element with requireAtom/atomInt.
//
// Grounded on op_utils.rs's check_arg_count/two_ints shape, generalized
// from its fixed arity helpers to a single variable-length collector since
// Go's lack of const-generic arity makes per-arity helpers unidiomatic
// here.
func argList(alloc *allocator.Allocator, args allocator.Ptr, name string) ([]allocator.Ptr, error) {
	var out []allocator.Ptr
	cur := args
	for {
		s := alloc.SExp(cur)
		if s.Kind != allocator.KindPair {
			if alloc.AtomLen(cur) != 0 {
				return nil, clvmerr.NewAt(clvmerr.KindInvalidNilTerminator, int32(cur), "%s: argument list must be nil-terminated", name)
			}
			return out, nil
		}
		out = append(out, s.Left)
		cur = s.Right
	}
}

func requireArgc(args []allocator.Ptr, n int, name string) error {
	if len(args) != n {
		return clvmerr.New(clvmerr.KindInvalidOpArg, "%s takes exactly %d argument(s), got %d", name, n, len(args))
	}
	return nil
}

func requireAtom(alloc *allocator.Allocator, p allocator.Ptr, name string) error {
	if alloc.SExp(p).Kind != allocator.KindAtom {
		return clvmerr.NewAt(clvmerr.KindInvalidOpArg, int32(p), "%s requires atom arguments", name)
	}
	return nil
}

func atomInt(alloc *allocator.Allocator, p allocator.Ptr, name string) (*big.Int, error) {
	if err := requireAtom(alloc, p, name); err != nil {
		return nil, err
	}
	return bigint.FromAtom(alloc.Atom(p)), nil
}

func sumBytes(alloc *allocator.Allocator, args []allocator.Ptr) uint64 {
	var total uint64
	for _, a := range args {
		total += uint64(alloc.AtomLen(a))
	}
	return total
}

func checkCost(cost, maxCost uint64, name string) error {
	if cost > maxCost {
		return clvmerr.New(clvmerr.KindCostExceeded, "%s exceeded max cost", name)
	}
	return nil
}

// newAtomResult stores n's minimal encoding and charges MallocCostPerByte
// for the bytes it allocates (base64_ops.rs's new_atom_and_cost pattern).
func newAtomResult(alloc *allocator.Allocator, n *big.Int, baseCost uint64) (uint64, allocator.Ptr, error) {
	b := bigint.ToAtom(n)
	p, err := alloc.NewAtom(b)
	if err != nil {
		return 0, 0, err
	}
	return baseCost + MallocCostPerByte*uint64(len(b)), p, nil
}

func boolAtom(alloc *allocator.Allocator, v bool) allocator.Ptr {
	if v {
		return alloc.One()
	}
	return alloc.Nil()
}
