// Package path implements environment-path traversal (spec.md §3.4): an
// atom interpreted bit-significantly selects a left/right walk through a
// tree of pairs.
//
// A path atom, read as a big-endian unsigned integer, has its
// most-significant set bit as a terminator sentinel. Every bit below that
// is one walk step, read least-significant-bit first: the step applied to
// the root is the atom's bit 0, the next step is bit 1, and so on up to
// (but excluding) the sentinel. This is the standard CLVM convention - the
// classic recursive definition repeatedly halves the integer, branching on
// the current low bit (0 = first/left, 1 = rest/right) until it reaches 1.
// Path 5 (0b101) strips the sentinel (bit 2), leaving bit0=1, bit1=0:
// first step right, second step left, i.e. `(f (r env))` - the second
// element of a proper-list env. The empty/zero atom is a special case
// that yields nil directly, since it has no sentinel bit at all.
//
// Grounded on gongfarmer-ntap/encoding/atom/path.go for "a path is a
// sequence of steps into a tree of children", generalized from its
// XPath-shaped string paths to the bit-significant atom encoding spec.md
// requires.
package path

import (
	"math/big"

	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/bigint"
)

// Steps decodes a path atom into its walk: false = left, true = right, in
// root-to-leaf order. It returns (nil, true) for the zero/empty path,
// signaling the "yields nil directly" special case.
func Steps(pathBytes []byte) (steps []bool, isZero bool) {
	n := new(big.Int).SetBytes(pathBytes)
	if n.Sign() == 0 {
		return nil, true
	}
	bitLen := n.BitLen()
	steps = make([]bool, bitLen-1)
	for i := 0; i < bitLen-1; i++ {
		// i counts steps from the root: step 0 is bit 0 (applied to env
		// itself), the last step is the bit just below the sentinel.
		steps[i] = n.Bit(i) == 1
	}
	return steps, false
}

// LeadingZeroBytes counts the leading 0x00 bytes in pathBytes, used by the
// evaluator's per-leading-zero-byte cost term (spec.md §4.3).
func LeadingZeroBytes(pathBytes []byte) int {
	n := 0
	for n < len(pathBytes) && pathBytes[n] == 0 {
		n++
	}
	return n
}

// Encode is the inverse of Steps: it produces the minimally-encoded atom
// for the given root-to-leaf walk.
func Encode(steps []bool) []byte {
	v := new(big.Int).Lsh(big.NewInt(1), uint(len(steps)))
	for i, right := range steps {
		if right {
			v.SetBit(v, i, 1)
		}
	}
	return bigint.ToAtom(v)
}

// Walk traverses env following pathBytes and returns the reached node
// (spec.md §3.4). Atoms (or short-circuiting into one before the walk
// completes) yield PathIntoAtom.
func Walk(alloc *allocator.Allocator, env allocator.Ptr, pathBytes []byte) (allocator.Ptr, error) {
	steps, isZero := Steps(pathBytes)
	if isZero {
		return allocator.Nil, nil
	}
	return WalkSteps(alloc, env, steps)
}

// WalkSteps is Walk's step-sequence form, reusable by the back-reference
// decoder once it has resolved which stack entry to descend into.
func WalkSteps(alloc *allocator.Allocator, node allocator.Ptr, steps []bool) (allocator.Ptr, error) {
	cur := node
	for _, right := range steps {
		s := alloc.SExp(cur)
		if s.Kind != allocator.KindPair {
			return 0, clvmerr.NewAt(clvmerr.KindPathIntoAtom, int32(cur), "path steps into an atom")
		}
		if right {
			cur = s.Right
		} else {
			cur = s.Left
		}
	}
	return cur, nil
}
