package serialize

import (
	"crypto/sha256"

	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/internal/invariant"
)

// ObjectCache memoizes a bottom-up fold over a tree, shared by TreeHash and
// SerializedLength (and by the compressing writer's subtree-hash lookups).
// Fill is non-recursive: an explicit stack visits every node twice (once to
// push its children, once to combine their already-filled values), the
// "two-phase fill" original_source/src/object_cache.rs describes.
type ObjectCache[T any] struct {
	values map[allocator.Ptr]T
}

// NewObjectCache creates an empty cache.
func NewObjectCache[T any]() *ObjectCache[T] {
	return &ObjectCache[T]{values: make(map[allocator.Ptr]T)}
}

// Get returns a previously-filled value for p, if any.
func (c *ObjectCache[T]) Get(p allocator.Ptr) (T, bool) {
	v, ok := c.values[p]
	return v, ok
}

type frame struct {
	node     allocator.Ptr
	expanded bool
}

// Fill computes (and caches) the fold of atomFn/pairFn over root, reusing
// any previously-cached subresults.
func (c *ObjectCache[T]) Fill(alloc *allocator.Allocator, root allocator.Ptr, atomFn func([]byte) T, pairFn func(left, right T) T) T {
	if v, ok := c.values[root]; ok {
		return v
	}

	stack := []frame{{node: root}}
	for len(stack) > 0 {
		idx := len(stack) - 1
		node := stack[idx].node

		if _, ok := c.values[node]; ok {
			stack = stack[:idx]
			continue
		}

		s := alloc.SExp(node)
		if s.Kind == allocator.KindAtom {
			c.values[node] = atomFn(alloc.Atom(node))
			stack = stack[:idx]
			continue
		}

		if !stack[idx].expanded {
			stack[idx].expanded = true
			stack = append(stack, frame{node: s.Left}, frame{node: s.Right})
			continue
		}

		lv, lok := c.values[s.Left]
		rv, rok := c.values[s.Right]
		invariant.Invariant(lok && rok, "both children must be filled before their parent")
		c.values[node] = pairFn(lv, rv)
		stack = stack[:idx]
	}

	return c.values[root]
}

// TreeHash is the CLVM structural hash (spec.md §4.2, §8 invariant 3):
// sha256(0x01 || atom) for atoms, sha256(0x02 || H(left) || H(right)) for
// pairs. Equal trees always hash equal, regardless of handle identity or
// which serialization (plain or back-reference) produced them.
func TreeHash(alloc *allocator.Allocator, node allocator.Ptr) [32]byte {
	return NewObjectCache[[32]byte]().Fill(alloc, node, hashAtom, hashPair)
}

// TreeHashCache is TreeHash sharing a cache across many calls (e.g. used by
// the compressing writer's reuse search).
type TreeHashCache struct {
	cache *ObjectCache[[32]byte]
}

// NewTreeHashCache creates an empty, reusable tree-hash cache.
func NewTreeHashCache() *TreeHashCache {
	return &TreeHashCache{cache: NewObjectCache[[32]byte]()}
}

// Hash returns node's tree hash, computing and caching it if necessary.
func (c *TreeHashCache) Hash(alloc *allocator.Allocator, node allocator.Ptr) [32]byte {
	return c.cache.Fill(alloc, node, hashAtom, hashPair)
}

func hashAtom(b []byte) [32]byte {
	h := sha256.New()
	h.Write([]byte{0x01})
	h.Write(b)
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

func hashPair(left, right [32]byte) [32]byte {
	h := sha256.New()
	h.Write([]byte{0x02})
	h.Write(left[:])
	h.Write(right[:])
	var out [32]byte
	copy(out[:], h.Sum(nil))
	return out
}

// SerializedLength returns the byte length of node's plain (back-reference
// free) encoding, without materializing it.
func SerializedLength(alloc *allocator.Allocator, node allocator.Ptr) uint64 {
	return NewObjectCache[uint64]().Fill(alloc, node, lenAtom, lenPair)
}

func lenAtom(b []byte) uint64 {
	return uint64(encodedAtomLen(b))
}

func lenPair(left, right uint64) uint64 {
	return 1 + left + right
}
