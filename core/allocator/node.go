package allocator

// Ptr is a node handle: small, opaque to callers, stable for the lifetime
// of the owning Allocator (spec.md §3.1). Never copy a Ptr across
// Allocators.
//
// Two negative values are reserved as the pre-built constants (nil and
// one); every non-negative value decodes its variant from its own
// low bits, with no table lookup required:
//
//	bit0 == 0            -> Pair,       pairIndex  = Ptr >> 1
//	bit0 == 1, bit1 == 0  -> heap Atom,  atomIndex  = Ptr >> 2
//	bit0 == 1, bit1 == 1  -> inline Atom, byte value = Ptr >> 2
//
// Inline atoms (single-byte atoms with value < 0x80) never touch the heap:
// the same byte value always produces the same Ptr, so equality for those
// is by content even though Ptrs are otherwise opaque integers.
type Ptr int32

const (
	// Nil is the empty atom: both "nil" and integer zero.
	Nil Ptr = -1
	// One is the single-byte atom 0x01.
	One Ptr = -2
)

const (
	tagPair      = 0
	tagHeapAtom  = 1
	tagInlineAtom = 3
)

func pairPtr(index int) Ptr      { return Ptr(index << 1) }
func heapAtomPtr(index int) Ptr  { return Ptr(index<<2 | tagHeapAtom) }
func inlineAtomPtr(b byte) Ptr   { return Ptr(int32(b)<<2 | tagInlineAtom) }

func (p Ptr) tag() int32 {
	if p&1 == 0 {
		return tagPair
	}
	return int32(p & 3)
}

// IsPair reports whether p addresses a Pair node.
func (p Ptr) IsPair() bool {
	return p >= 0 && p.tag() == tagPair
}

// IsAtom reports whether p addresses an Atom node (heap, inline, or one of
// the two pre-built constants).
func (p Ptr) IsAtom() bool {
	return !p.IsPair()
}

// Kind distinguishes the two Node variants (spec.md §3.1).
type Kind int

const (
	KindAtom Kind = iota
	KindPair
)

// SExp is the O(1) result of inspecting a node: its variant, and for pairs
// the two child handles.
type SExp struct {
	Kind  Kind
	Left  Ptr
	Right Ptr
}
