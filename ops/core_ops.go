package ops

import (
	"bytes"
	"crypto/sha256"

	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/core/allocator"
)

// If implements `i cond t f`: selects t when cond is non-empty, else f.
// Does not evaluate either branch itself - the evaluator already evaluated
// both arguments before dispatch (spec.md §4.4's "consume its argument
// list iteratively" contract applies uniformly across operators; `i` does
// not get the short-circuit the Lisp-level macro convention suggests).
func If(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "i")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 3, "i"); err != nil {
		return 0, 0, err
	}
	if err := checkCost(IfCost, maxCost, "i"); err != nil {
		return 0, 0, err
	}
	cond := list[0]
	if alloc.SExp(cond).Kind == allocator.KindAtom && alloc.AtomLen(cond) == 0 {
		return IfCost, list[2], nil
	}
	return IfCost, list[1], nil
}

// Cons implements `c a b`: constructs the pair (a . b).
func Cons(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "c")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 2, "c"); err != nil {
		return 0, 0, err
	}
	if err := checkCost(ConsCost, maxCost, "c"); err != nil {
		return 0, 0, err
	}
	p, err := alloc.NewPair(list[0], list[1])
	if err != nil {
		return 0, 0, err
	}
	return ConsCost, p, nil
}

// First implements `f x`: the left projection of a pair.
func First(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "f")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 1, "f"); err != nil {
		return 0, 0, err
	}
	if err := checkCost(FirstCost, maxCost, "f"); err != nil {
		return 0, 0, err
	}
	s := alloc.SExp(list[0])
	if s.Kind != allocator.KindPair {
		return 0, 0, clvmerr.NewAt(clvmerr.KindFirstOfNonCons, int32(list[0]), "first of non-cons")
	}
	return FirstCost, s.Left, nil
}

// Rest implements `r x`: the right projection of a pair.
func Rest(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "r")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 1, "r"); err != nil {
		return 0, 0, err
	}
	if err := checkCost(RestCost, maxCost, "r"); err != nil {
		return 0, 0, err
	}
	s := alloc.SExp(list[0])
	if s.Kind != allocator.KindPair {
		return 0, 0, clvmerr.NewAt(clvmerr.KindRestOfNonCons, int32(list[0]), "rest of non-cons")
	}
	return RestCost, s.Right, nil
}

// Listp implements `l x`: 1 if x is a pair, else 0.
func Listp(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "l")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 1, "l"); err != nil {
		return 0, 0, err
	}
	if err := checkCost(ListpCost, maxCost, "l"); err != nil {
		return 0, 0, err
	}
	return ListpCost, boolAtom(alloc, alloc.SExp(list[0]).Kind == allocator.KindPair), nil
}

// Raise implements `x ...`: unconditionally raises ClvmRaise carrying its
// (already-evaluated) argument list, whatever it is.
func Raise(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	return 0, 0, clvmerr.NewAt(clvmerr.KindClvmRaise, int32(args), "clvm raise")
}

// Eq implements `=`: byte-equal comparison of exactly two atoms.
func Eq(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "=")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 2, "="); err != nil {
		return 0, 0, err
	}
	if err := requireAtom(alloc, list[0], "="); err != nil {
		return 0, 0, err
	}
	if err := requireAtom(alloc, list[1], "="); err != nil {
		return 0, 0, err
	}
	nbytes := sumBytes(alloc, list)
	cost := EqBaseCost + EqCostPerByte*nbytes
	if err := checkCost(cost, maxCost, "="); err != nil {
		return 0, 0, err
	}
	return cost, boolAtom(alloc, bytes.Equal(alloc.Atom(list[0]), alloc.Atom(list[1]))), nil
}

// Sha256 implements `sha256 ...`: SHA-256 over the concatenation of every
// argument atom's bytes, in order.
func Sha256(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "sha256")
	if err != nil {
		return 0, 0, err
	}
	h := sha256.New()
	cost := Sha256BaseCost
	for _, a := range list {
		if err := requireAtom(alloc, a, "sha256"); err != nil {
			return 0, 0, err
		}
		b := alloc.Atom(a)
		cost += Sha256CostPerArg + Sha256CostPerByte*uint64(len(b))
		if err := checkCost(cost, maxCost, "sha256"); err != nil {
			return 0, 0, err
		}
		h.Write(b)
	}
	digest := h.Sum(nil)
	cost += MallocCostPerByte * uint64(len(digest))
	p, err := alloc.NewAtom(digest)
	if err != nil {
		return 0, 0, err
	}
	return cost, p, nil
}
