// Package allocator is the arena that owns every tree node (atom and pair)
// for the lifetime of a single run_program invocation (spec.md §3.2, §4.1).
// It assigns stable handles, enforces the consensus-visible heap/atom/pair
// limits, and supports checkpoint/restore so a softfork guard can release
// everything it allocated in one step.
//
// Grounded on cznic-exp/lldb's free-list byte arena with checkpoint/2PC
// rollback for the heap+checkpoint shape, and gongfarmer-ntap's atom tree
// (typed variant plus children) for the Atom/Pair split; generalized to the
// bit-tagged handle scheme spec.md §9 requires.
package allocator

import (
	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/internal/invariant"
)

// MaxAtomBytes is the largest an atom may be: 2^34 - 1 (spec.md §3.1, §6.3).
const MaxAtomBytes = (1 << 34) - 1

// Limits bounds the resources a single Allocator may consume. The zero
// value is not usable; use DefaultLimits.
type Limits struct {
	MaxHeapBytes int64
	MaxAtoms     int
	MaxPairs     int
}

// DefaultLimits are conservative consensus-visible caps chosen so that a
// 15 GB allocation attempt fails well before the process runs out of
// memory (spec.md §6.3). They are deliberately far above anything a
// correctly-costed program can reach before CostExceeded fires first.
var DefaultLimits = Limits{
	MaxHeapBytes: 11_000_000_000,
	MaxAtoms:     62_500_000,
	MaxPairs:     62_500_000,
}

type atomSlice struct {
	offset, length int
}

type pairRec struct {
	left, right Ptr
}

// Allocator owns all nodes for one run_program invocation. It is not safe
// for concurrent use; run separate evaluations in separate Allocators
// (spec.md §5).
type Allocator struct {
	limits Limits

	heap       []byte
	atomSlices []atomSlice

	pairs []pairRec

	ghostAtoms int
	ghostBytes int64
}

// New creates an empty Allocator with Nil and One pre-registered, using
// DefaultLimits.
func New() *Allocator {
	return NewWithLimits(DefaultLimits)
}

// NewWithLimits creates an empty Allocator with the given resource caps.
func NewWithLimits(limits Limits) *Allocator {
	return &Allocator{limits: limits}
}

// Checkpoint is an opaque snapshot of allocator counters (spec.md §4.1).
// Handles created after the checkpoint become invalid once Restore is
// called with it; the caller must not use them again.
type Checkpoint struct {
	heapBytes  int
	atomSlices int
	pairs      int
	ghostAtoms int
	ghostBytes int64
}

// Checkpoint snapshots the current allocator state.
func (a *Allocator) Checkpoint() Checkpoint {
	return Checkpoint{
		heapBytes:  len(a.heap),
		atomSlices: len(a.atomSlices),
		pairs:      len(a.pairs),
		ghostAtoms: a.ghostAtoms,
		ghostBytes: a.ghostBytes,
	}
}

// Restore rewinds the allocator to a prior checkpoint, logically releasing
// every node allocated since. It is the caller's responsibility not to use
// handles created after cp.
func (a *Allocator) Restore(cp Checkpoint) {
	invariant.Precondition(cp.heapBytes <= len(a.heap), "checkpoint heap size must not exceed current heap")
	invariant.Precondition(cp.atomSlices <= len(a.atomSlices), "checkpoint atom count must not exceed current count")
	invariant.Precondition(cp.pairs <= len(a.pairs), "checkpoint pair count must not exceed current count")

	a.heap = a.heap[:cp.heapBytes]
	a.atomSlices = a.atomSlices[:cp.atomSlices]
	a.pairs = a.pairs[:cp.pairs]
	a.ghostAtoms = cp.ghostAtoms
	a.ghostBytes = cp.ghostBytes
}

func (a *Allocator) atomCount() int {
	return len(a.atomSlices) + a.ghostAtoms
}

// Nil returns the handle of the empty atom.
func (a *Allocator) Nil() Ptr { return Nil }

// One returns the handle of the single-byte atom 0x01.
func (a *Allocator) One() Ptr { return One }

// NewAtom stores bytes verbatim (no canonicalization - minimal encoding of
// integer-valued atoms is the caller's responsibility, spec.md §4.1) and
// returns its handle.
func (a *Allocator) NewAtom(bytes []byte) (Ptr, error) {
	if len(bytes) > MaxAtomBytes {
		return 0, clvmerr.New(clvmerr.KindAtomTooLarge, "atom of %d bytes exceeds maximum of %d", len(bytes), MaxAtomBytes)
	}
	if len(bytes) == 0 {
		return Nil, nil
	}
	if len(bytes) == 1 && bytes[0] < 0x80 {
		if bytes[0] == 1 {
			return One, nil
		}
		return inlineAtomPtr(bytes[0]), nil
	}

	if a.atomCount()+1 > a.limits.MaxAtoms {
		return 0, clvmerr.New(clvmerr.KindHeapFull, "atom count limit of %d exceeded", a.limits.MaxAtoms)
	}
	if int64(len(a.heap)+len(bytes)) > a.limits.MaxHeapBytes {
		return 0, clvmerr.New(clvmerr.KindHeapFull, "heap byte limit of %d exceeded", a.limits.MaxHeapBytes)
	}

	offset := len(a.heap)
	a.heap = append(a.heap, bytes...)
	a.atomSlices = append(a.atomSlices, atomSlice{offset: offset, length: len(bytes)})
	return heapAtomPtr(len(a.atomSlices) - 1), nil
}

// NewPair constructs the pair (left . right). Both handles must already
// exist in this Allocator; pairs can never form cycles because they can
// only reference already-existing handles (spec.md §3.1).
func (a *Allocator) NewPair(left, right Ptr) (Ptr, error) {
	if len(a.pairs)+1 > a.limits.MaxPairs {
		return 0, clvmerr.New(clvmerr.KindPairLimit, "pair count limit of %d exceeded", a.limits.MaxPairs)
	}
	a.pairs = append(a.pairs, pairRec{left: left, right: right})
	return pairPtr(len(a.pairs) - 1), nil
}

// smallNumberInlineBound is the largest value NewSmallNumber will encode
// without falling back to NewAtom's minimal big-endian encoding.
const smallNumberInlineBound = 0x7f

// NewSmallNumber is a fast path for constructing the minimally-encoded
// atom for a non-negative integer that fits in a uint32.
func (a *Allocator) NewSmallNumber(n uint32) Ptr {
	if n == 0 {
		return Nil
	}
	if n == 1 {
		return One
	}
	if n <= smallNumberInlineBound {
		return inlineAtomPtr(byte(n))
	}
	p, err := a.NewAtom(minimalUintBytes(n))
	invariant.ExpectNoError(err, "encoding small number must not exceed allocator limits")
	return p
}

func minimalUintBytes(n uint32) []byte {
	buf := []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
	i := 0
	for i < 3 && buf[i] == 0 && buf[i+1] < 0x80 {
		i++
	}
	return buf[i:]
}

// SExp reveals the variant of p in O(1), plus its children if it is a pair.
func (a *Allocator) SExp(p Ptr) SExp {
	if p.IsPair() {
		idx := int(p >> 1)
		invariant.InRange(idx, 0, len(a.pairs)-1, "pair index")
		rec := a.pairs[idx]
		return SExp{Kind: KindPair, Left: rec.left, Right: rec.right}
	}
	return SExp{Kind: KindAtom}
}

// Atom returns the borrowed byte slice backing p. p must be an atom; callers
// that don't already know the variant should call SExp first.
func (a *Allocator) Atom(p Ptr) []byte {
	switch p {
	case Nil:
		return nil
	case One:
		return oneBytes
	}
	invariant.Precondition(p.IsAtom(), "Atom called on a pair handle")
	if p.tag() == tagInlineAtom {
		b := byte(p >> 2)
		return []byte{b}
	}
	idx := int(p >> 2)
	invariant.InRange(idx, 0, len(a.atomSlices)-1, "atom index")
	s := a.atomSlices[idx]
	return a.heap[s.offset : s.offset+s.length]
}

var oneBytes = []byte{0x01}

// AtomLen returns len(Atom(p)) without materializing a slice for the
// heap-backed case's bookkeeping (still O(1) either way).
func (a *Allocator) AtomLen(p Ptr) int {
	switch p {
	case Nil:
		return 0
	case One:
		return 1
	}
	if p.tag() == tagInlineAtom {
		return 1
	}
	idx := int(p >> 2)
	return a.atomSlices[idx].length
}

// SmallNumber returns the atom's value as a uint32 if it fits, matching the
// NewSmallNumber fast path (no minimal-encoding re-validation is performed
// beyond the bound check, since atoms are already minimally encoded by
// construction in this fast path's callers).
func (a *Allocator) SmallNumber(p Ptr) (uint32, bool) {
	b := a.Atom(p)
	if len(b) == 0 {
		return 0, true
	}
	if len(b) > 4 || (len(b) == 4 && b[0] > 0x7f) {
		return 0, false
	}
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v, true
}

// Next provides cheap list iteration: given a handle to a cons list, it
// returns (head, tail) and true, or (Nil, Nil, false) if list is not a pair
// (i.e. end of list, conventionally Nil).
func (a *Allocator) Next(list Ptr) (head, tail Ptr, ok bool) {
	s := a.SExp(list)
	if s.Kind != KindPair {
		return Nil, Nil, false
	}
	return s.Left, s.Right, true
}

// AddGhostAtom charges the allocator's atom/byte counters for n
// conceptually-sized atoms that never materialize on the heap - used to
// account for historical cost-budget bookkeeping that consensus still
// charges heap pressure for (spec.md §3.2).
func (a *Allocator) AddGhostAtom(n int) error {
	if a.atomCount()+1 > a.limits.MaxAtoms {
		return clvmerr.New(clvmerr.KindHeapFull, "atom count limit of %d exceeded by ghost atom", a.limits.MaxAtoms)
	}
	if a.ghostBytes+int64(n) > a.limits.MaxHeapBytes {
		return clvmerr.New(clvmerr.KindHeapFull, "heap byte limit of %d exceeded by ghost atom", a.limits.MaxHeapBytes)
	}
	a.ghostAtoms++
	a.ghostBytes += int64(n)
	return nil
}

// AtomCount returns the number of real (non-ghost) atoms allocated so far.
func (a *Allocator) AtomCount() int { return len(a.atomSlices) }

// PairCount returns the number of pairs allocated so far.
func (a *Allocator) PairCount() int { return len(a.pairs) }

// HeapBytes returns the number of heap bytes used by real atoms so far.
func (a *Allocator) HeapBytes() int { return len(a.heap) }
