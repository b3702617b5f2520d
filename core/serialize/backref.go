package serialize

import (
	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/path"
)

// resolveBackref interprets pathBytes the same way an environment path is
// interpreted (spec.md §3.4), except the "root" is synthetic: a right-chain
// over the decoder's completed-value stack, most-recently-completed first.
// A run of "right" steps skips down that chain to select a stack entry;
// the first "left" step selects that entry itself, and any steps after it
// continue as an ordinary walk into the entry's own pair structure. Path 1
// (no steps at all) selects the top of the stack.
func resolveBackref(alloc *allocator.Allocator, values []allocator.Ptr, pathBytes []byte) (allocator.Ptr, error) {
	if len(values) == 0 {
		return 0, clvmerr.New(clvmerr.KindBadEncoding, "back-reference with nothing on the parse stack yet")
	}
	steps, isZero := path.Steps(pathBytes)
	if isZero {
		return 0, clvmerr.New(clvmerr.KindBadEncoding, "back-reference path must not be zero")
	}

	idx := 0
	i := 0
	for ; i < len(steps); i++ {
		if !steps[i] {
			break
		}
		idx++
		if idx >= len(values) {
			return 0, clvmerr.New(clvmerr.KindBadEncoding, "back-reference path selects a stack position beyond the parse stack")
		}
	}

	selected := values[len(values)-1-idx]
	if i == len(steps) {
		return selected, nil
	}
	return path.WalkSteps(alloc, selected, steps[i+1:])
}

// maxBackrefSkip bounds how far back into the completed-value stack a
// back-reference search looks. It is an implementation-level choice, not a
// consensus rule: a narrower search only ever produces a larger (but still
// correct) encoding, never a wrong one.
const maxBackrefSkip = 256

// findReuse scans the completed-value stack nearest-first for a node whose
// tree hash matches targetHash, returning the (already shortest-first,
// since distance from the top of the stack increases monotonically with
// the scan) step sequence to reach it. It only matches whole stack entries
// - a full search into each entry's own subtree would find more reuse
// opportunities but isn't needed to satisfy spec.md's back-reference
// invariants (round trip, strictly-shorter-or-skip), so it's left out to
// keep the writer's cost linear in the stack depth rather than in the
// whole tree's size.
func findReuse(alloc *allocator.Allocator, completed []allocator.Ptr, hc *TreeHashCache, targetHash [32]byte) ([]bool, bool) {
	maxSkip := len(completed)
	if maxSkip > maxBackrefSkip {
		maxSkip = maxBackrefSkip
	}
	for d := 0; d < maxSkip; d++ {
		node := completed[len(completed)-1-d]
		if hc.Hash(alloc, node) == targetHash {
			steps := make([]bool, d)
			for k := 0; k < d; k++ {
				steps[k] = true
			}
			return steps, true
		}
	}
	return nil, false
}

const opEmit = 0
const opMerge = 1

type wOp struct {
	kind int
	node allocator.Ptr
}

// EncodeBackref serializes node using back-references wherever a
// previously-serialized subtree is structurally equal and the
// back-reference is strictly shorter than re-emitting the subtree in full
// (spec.md §4.2). It mirrors Decode's parse stack exactly (every unit of
// work nets +1 stack entry, whether an atom, a pair, or a back-reference),
// so paths this writer produces always resolve the way Decode's
// resolveBackref expects.
func EncodeBackref(alloc *allocator.Allocator, root allocator.Ptr) ([]byte, error) {
	var buf []byte
	var completed []allocator.Ptr
	hc := NewTreeHashCache()
	lenCache := NewObjectCache[uint64]()

	stack := []wOp{{kind: opEmit, node: root}}
	for len(stack) > 0 {
		top := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		if top.kind == opMerge {
			n := len(completed)
			completed = completed[:n-2]
			completed = append(completed, top.node)
			continue
		}

		node := top.node
		naiveLen := int(lenCache.Fill(alloc, node, lenAtom, lenPair))

		if len(completed) > 0 && naiveLen > 2 {
			targetHash := hc.Hash(alloc, node)
			if steps, found := findReuse(alloc, completed, hc, targetHash); found {
				pathAtom := path.Encode(steps)
				backrefLen := 1 + encodedAtomLen(pathAtom)
				if backrefLen < naiveLen {
					buf = append(buf, markerBackref)
					var err error
					buf, err = appendAtom(buf, pathAtom)
					if err != nil {
						return nil, err
					}
					completed = append(completed, node)
					continue
				}
			}
		}

		s := alloc.SExp(node)
		if s.Kind == allocator.KindPair {
			buf = append(buf, markerPair)
			stack = append(stack, wOp{kind: opMerge, node: node}, wOp{kind: opEmit, node: s.Right}, wOp{kind: opEmit, node: s.Left})
			continue
		}

		var err error
		buf, err = appendAtom(buf, alloc.Atom(node))
		if err != nil {
			return nil, err
		}
		completed = append(completed, node)
	}

	return buf, nil
}
