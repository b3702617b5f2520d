package ops

import (
	"bytes"
	"math/big"

	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/bigint"
)

// arithFold runs a left-to-right fold over an arbitrary-arity operator's
// int-valued arguments, charging ArithCostPerArg/ArithCostPerByte as it
// goes, then the final result's malloc cost (spec.md §4.4's "base +
// per-arg + per-byte of aggregate input and output").
func arithFold(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64, name string, identity int64, step func(acc, v *big.Int)) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, name)
	if err != nil {
		return 0, 0, err
	}
	acc := big.NewInt(identity)
	cost := ArithBaseCost
	for _, a := range list {
		v, err := atomInt(alloc, a, name)
		if err != nil {
			return 0, 0, err
		}
		cost += ArithCostPerArg + ArithCostPerByte*uint64(alloc.AtomLen(a))
		if err := checkCost(cost, maxCost, name); err != nil {
			return 0, 0, err
		}
		step(acc, v)
	}
	return newAtomResult(alloc, acc, cost)
}

// Add implements `+`.
func Add(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	return arithFold(alloc, args, maxCost, "+", 0, func(acc, v *big.Int) { acc.Add(acc, v) })
}

// Subtract implements `-`: first argument minus the sum of the rest;
// a lone argument negates it.
func Subtract(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "-")
	if err != nil {
		return 0, 0, err
	}
	acc := big.NewInt(0)
	cost := ArithBaseCost
	for i, a := range list {
		v, err := atomInt(alloc, a, "-")
		if err != nil {
			return 0, 0, err
		}
		cost += ArithCostPerArg + ArithCostPerByte*uint64(alloc.AtomLen(a))
		if err := checkCost(cost, maxCost, "-"); err != nil {
			return 0, 0, err
		}
		if i == 0 {
			acc.Set(v)
		} else {
			acc.Sub(acc, v)
		}
	}
	if len(list) == 1 {
		acc.Neg(acc)
	}
	return newAtomResult(alloc, acc, cost)
}

// Multiply implements `*`. Cost uses the real consensus formula's
// schoolbook/quadratic shape (base + per-op switch cost plus a
// byte-product term), not the simple per-byte-sum arithmetic fold the
// other operators in this family use.
func Multiply(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "*")
	if err != nil {
		return 0, 0, err
	}
	acc := big.NewInt(1)
	cost := MulBaseCost
	prevLen := 0
	for i, a := range list {
		v, err := atomInt(alloc, a, "*")
		if err != nil {
			return 0, 0, err
		}
		l := alloc.AtomLen(a)
		if i == 0 {
			acc.Set(v)
			prevLen = l
			continue
		}
		cost += MulCostPerOp + MulLinearCostPerByte*uint64(prevLen+l) + uint64(prevLen)*uint64(l)/MulSquareCostPerByteDivider
		if err := checkCost(cost, maxCost, "*"); err != nil {
			return 0, 0, err
		}
		acc.Mul(acc, v)
		prevLen = len(bigint.ToAtom(acc))
	}
	return newAtomResult(alloc, acc, cost)
}

func divmod(alloc *allocator.Allocator, args allocator.Ptr, name string) (int, *big.Int, *big.Int, uint64, error) {
	list, err := argList(alloc, args, name)
	if err != nil {
		return 0, nil, nil, 0, err
	}
	if err := requireArgc(list, 2, name); err != nil {
		return 0, nil, nil, 0, err
	}
	a, err := atomInt(alloc, list[0], name)
	if err != nil {
		return 0, nil, nil, 0, err
	}
	b, err := atomInt(alloc, list[1], name)
	if err != nil {
		return 0, nil, nil, 0, err
	}
	if b.Sign() == 0 {
		return 0, nil, nil, 0, clvmerr.NewAt(clvmerr.KindDivByZero, int32(list[1]), "%s: division by zero", name)
	}
	cost := uint64(alloc.AtomLen(list[0]) + alloc.AtomLen(list[1]))
	return len(list), a, b, cost, nil
}

// Divide implements `/`: floor-division, rounding toward negative infinity
// (SPEC_FULL.md §6's resolved Open Question).
func Divide(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	_, a, b, nbytes, err := divmod(alloc, args, "/")
	if err != nil {
		return 0, 0, err
	}
	cost := DivBaseCost + DivCostPerByte*nbytes
	if err := checkCost(cost, maxCost, "/"); err != nil {
		return 0, 0, err
	}
	q := new(big.Int)
	m := new(big.Int)
	q.QuoRem(a, b, m) // truncated; adjust to floor division below
	if m.Sign() != 0 && (a.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
	}
	return newAtomResult(alloc, q, cost)
}

// DivDeprecated rejects negative operands entirely (the legacy `/`
// semantics, spec.md §9/SPEC_FULL.md §6).
func DivDeprecated(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	_, a, b, nbytes, err := divmod(alloc, args, "div_deprecated")
	if err != nil {
		return 0, 0, err
	}
	if a.Sign() < 0 || b.Sign() < 0 {
		return 0, 0, clvmerr.New(clvmerr.KindNegativeAmount, "div_deprecated rejects negative operands")
	}
	cost := DivBaseCost + DivCostPerByte*nbytes
	if err := checkCost(cost, maxCost, "div_deprecated"); err != nil {
		return 0, 0, err
	}
	q := new(big.Int).Quo(a, b)
	return newAtomResult(alloc, q, cost)
}

// Divmod implements `divmod`: returns (quotient . remainder), floor-divided.
func Divmod(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	_, a, b, nbytes, err := divmod(alloc, args, "divmod")
	if err != nil {
		return 0, 0, err
	}
	cost := DivModBaseCost + DivModCostPerByte*nbytes
	if err := checkCost(cost, maxCost, "divmod"); err != nil {
		return 0, 0, err
	}
	q := new(big.Int)
	m := new(big.Int)
	q.QuoRem(a, b, m) // truncated; adjust to floor division below
	if m.Sign() != 0 && (a.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
		m.Add(m, b)
	}
	qBytes := bigint.ToAtom(q)
	mBytes := bigint.ToAtom(m)
	cost += MallocCostPerByte * uint64(len(qBytes)+len(mBytes))
	qp, err := alloc.NewAtom(qBytes)
	if err != nil {
		return 0, 0, err
	}
	mp, err := alloc.NewAtom(mBytes)
	if err != nil {
		return 0, 0, err
	}
	pair, err := alloc.NewPair(qp, mp)
	if err != nil {
		return 0, 0, err
	}
	return cost, pair, nil
}

// Gr implements `gr`: signed integer greater-than, exactly 2 args.
func Gr(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "gr")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 2, "gr"); err != nil {
		return 0, 0, err
	}
	a, err := atomInt(alloc, list[0], "gr")
	if err != nil {
		return 0, 0, err
	}
	b, err := atomInt(alloc, list[1], "gr")
	if err != nil {
		return 0, 0, err
	}
	cost := GrBaseCost + GrCostPerByte*sumBytes(alloc, list)
	if err := checkCost(cost, maxCost, "gr"); err != nil {
		return 0, 0, err
	}
	return cost, boolAtom(alloc, a.Cmp(b) > 0), nil
}

// GrBytes implements `gr_bytes`: unsigned byte-lexicographic greater-than.
func GrBytes(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "gr_bytes")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 2, "gr_bytes"); err != nil {
		return 0, 0, err
	}
	if err := requireAtom(alloc, list[0], "gr_bytes"); err != nil {
		return 0, 0, err
	}
	if err := requireAtom(alloc, list[1], "gr_bytes"); err != nil {
		return 0, 0, err
	}
	cost := GrBytesBaseCost + GrBytesCostPerByte*sumBytes(alloc, list)
	if err := checkCost(cost, maxCost, "gr_bytes"); err != nil {
		return 0, 0, err
	}
	return cost, boolAtom(alloc, bytes.Compare(alloc.Atom(list[0]), alloc.Atom(list[1])) > 0), nil
}

func shiftCount(alloc *allocator.Allocator, p allocator.Ptr, name string) (int, error) {
	b := alloc.Atom(p)
	n, ok := bigint.BoundedInt32(b)
	if !ok {
		return 0, clvmerr.NewAt(clvmerr.KindShiftOutOfRange, int32(p), "%s: shift count too wide", name)
	}
	if n < -65535 || n > 65535 {
		return 0, clvmerr.NewAt(clvmerr.KindShiftOutOfRange, int32(p), "%s: shift count out of range", name)
	}
	return int(n), nil
}

// Ash implements `ash`: arithmetic shift, positive = left, negative = right.
func Ash(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "ash")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 2, "ash"); err != nil {
		return 0, 0, err
	}
	v, err := atomInt(alloc, list[0], "ash")
	if err != nil {
		return 0, 0, err
	}
	n, err := shiftCount(alloc, list[1], "ash")
	if err != nil {
		return 0, 0, err
	}
	cost := AshBaseCost + AshCostPerByte*uint64(alloc.AtomLen(list[0]))
	if err := checkCost(cost, maxCost, "ash"); err != nil {
		return 0, 0, err
	}
	r := new(big.Int)
	if n >= 0 {
		r.Lsh(v, uint(n))
	} else {
		r.Rsh(v, uint(-n))
	}
	return newAtomResult(alloc, r, cost)
}

// Lsh implements `lsh`: logical shift over the unsigned magnitude.
func Lsh(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "lsh")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 2, "lsh"); err != nil {
		return 0, 0, err
	}
	if err := requireAtom(alloc, list[0], "lsh"); err != nil {
		return 0, 0, err
	}
	u := new(big.Int).SetBytes(alloc.Atom(list[0]))
	n, err := shiftCount(alloc, list[1], "lsh")
	if err != nil {
		return 0, 0, err
	}
	cost := LshBaseCost + LshCostPerByte*uint64(alloc.AtomLen(list[0]))
	if err := checkCost(cost, maxCost, "lsh"); err != nil {
		return 0, 0, err
	}
	r := new(big.Int)
	if n >= 0 {
		r.Lsh(u, uint(n))
	} else {
		r.Rsh(u, uint(-n))
	}
	return newAtomResult(alloc, r, cost)
}

func bitwiseFold(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64, name string, identity int64, step func(acc, v *big.Int)) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, name)
	if err != nil {
		return 0, 0, err
	}
	acc := big.NewInt(identity)
	cost := LogBaseCost
	for _, a := range list {
		v, err := atomInt(alloc, a, name)
		if err != nil {
			return 0, 0, err
		}
		cost += LogCostPerArg + LogCostPerByte*uint64(alloc.AtomLen(a))
		if err := checkCost(cost, maxCost, name); err != nil {
			return 0, 0, err
		}
		step(acc, v)
	}
	return newAtomResult(alloc, acc, cost)
}

// Logand implements `logand`.
func Logand(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	return bitwiseFold(alloc, args, maxCost, "logand", -1, func(acc, v *big.Int) { acc.And(acc, v) })
}

// Logior implements `logior`.
func Logior(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	return bitwiseFold(alloc, args, maxCost, "logior", 0, func(acc, v *big.Int) { acc.Or(acc, v) })
}

// Logxor implements `logxor`.
func Logxor(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	return bitwiseFold(alloc, args, maxCost, "logxor", 0, func(acc, v *big.Int) { acc.Xor(acc, v) })
}

// Lognot implements `lognot x`: bitwise complement, exactly 1 arg.
func Lognot(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "lognot")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 1, "lognot"); err != nil {
		return 0, 0, err
	}
	v, err := atomInt(alloc, list[0], "lognot")
	if err != nil {
		return 0, 0, err
	}
	cost := LognotBaseCost + LognotCostPerByte*uint64(alloc.AtomLen(list[0]))
	if err := checkCost(cost, maxCost, "lognot"); err != nil {
		return 0, 0, err
	}
	r := new(big.Int).Not(v)
	return newAtomResult(alloc, r, cost)
}

// Not implements `not x`.
func Not(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "not")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 1, "not"); err != nil {
		return 0, 0, err
	}
	if err := checkCost(NotCost, maxCost, "not"); err != nil {
		return 0, 0, err
	}
	empty := alloc.SExp(list[0]).Kind == allocator.KindAtom && alloc.AtomLen(list[0]) == 0
	return NotCost, boolAtom(alloc, empty), nil
}

// Any implements `any ...`: true if at least one argument is non-nil.
func Any(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "any")
	if err != nil {
		return 0, 0, err
	}
	cost := BoolBaseCost + BoolCostPerArg*uint64(len(list))
	if err := checkCost(cost, maxCost, "any"); err != nil {
		return 0, 0, err
	}
	for _, a := range list {
		if !(alloc.SExp(a).Kind == allocator.KindAtom && alloc.AtomLen(a) == 0) {
			return cost, alloc.One(), nil
		}
	}
	return cost, alloc.Nil(), nil
}

// All implements `all ...`: true if every argument is non-nil.
func All(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "all")
	if err != nil {
		return 0, 0, err
	}
	cost := BoolBaseCost + BoolCostPerArg*uint64(len(list))
	if err := checkCost(cost, maxCost, "all"); err != nil {
		return 0, 0, err
	}
	for _, a := range list {
		if alloc.SExp(a).Kind == allocator.KindAtom && alloc.AtomLen(a) == 0 {
			return cost, alloc.Nil(), nil
		}
	}
	return cost, alloc.One(), nil
}

// Strlen implements `strlen x`: byte length of an atom, as an integer.
func Strlen(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "strlen")
	if err != nil {
		return 0, 0, err
	}
	if err := requireArgc(list, 1, "strlen"); err != nil {
		return 0, 0, err
	}
	if err := requireAtom(alloc, list[0], "strlen"); err != nil {
		return 0, 0, err
	}
	n := alloc.AtomLen(list[0])
	cost := StrlenBaseCost + StrlenCostPerByte*uint64(n)
	if err := checkCost(cost, maxCost, "strlen"); err != nil {
		return 0, 0, err
	}
	return newAtomResult(alloc, big.NewInt(int64(n)), cost)
}

// Concat implements `concat ...`: byte concatenation of every argument.
func Concat(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "concat")
	if err != nil {
		return 0, 0, err
	}
	cost := ConcatBaseCost
	var buf bytes.Buffer
	for _, a := range list {
		if err := requireAtom(alloc, a, "concat"); err != nil {
			return 0, 0, err
		}
		b := alloc.Atom(a)
		cost += ConcatCostPerArg + ConcatCostPerByte*uint64(len(b))
		if err := checkCost(cost, maxCost, "concat"); err != nil {
			return 0, 0, err
		}
		buf.Write(b)
	}
	out := buf.Bytes()
	cost += MallocCostPerByte * uint64(len(out))
	p, err := alloc.NewAtom(out)
	if err != nil {
		return 0, 0, err
	}
	return cost, p, nil
}

// Substr implements `substr x begin [end]`: 0 <= begin <= end <= len(x).
func Substr(alloc *allocator.Allocator, args allocator.Ptr, maxCost uint64) (uint64, allocator.Ptr, error) {
	list, err := argList(alloc, args, "substr")
	if err != nil {
		return 0, 0, err
	}
	if len(list) != 2 && len(list) != 3 {
		return 0, 0, clvmerr.New(clvmerr.KindInvalidOpArg, "substr takes 2 or 3 arguments, got %d", len(list))
	}
	if err := requireAtom(alloc, list[0], "substr"); err != nil {
		return 0, 0, err
	}
	src := alloc.Atom(list[0])

	begin, ok := bigint.BoundedInt32(alloc.Atom(list[1]))
	if !ok {
		return 0, 0, clvmerr.NewAt(clvmerr.KindInvalidOpArg, int32(list[1]), "substr: begin index out of range")
	}
	end := int32(len(src))
	if len(list) == 3 {
		end, ok = bigint.BoundedInt32(alloc.Atom(list[2]))
		if !ok {
			return 0, 0, clvmerr.NewAt(clvmerr.KindInvalidOpArg, int32(list[2]), "substr: end index out of range")
		}
	}
	if begin < 0 || end < begin || int(end) > len(src) {
		return 0, 0, clvmerr.New(clvmerr.KindInvalidOpArg, "substr: indices out of bounds")
	}
	cost := SubstrBaseCost + SubstrCostPerArg*uint64(len(list))
	if err := checkCost(cost, maxCost, "substr"); err != nil {
		return 0, 0, err
	}
	p, err := alloc.NewAtom(src[begin:end])
	if err != nil {
		return 0, 0, err
	}
	return cost, p, nil
}
