package allocator_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/clvmerr"
)

func TestNilAndOnePreregistered(t *testing.T) {
	a := allocator.New()
	require.Equal(t, allocator.Nil, a.Nil())
	require.Equal(t, allocator.One, a.One())
	require.Equal(t, []byte{}, append([]byte{}, a.Atom(a.Nil())...))
	require.Equal(t, []byte{0x01}, a.Atom(a.One()))
}

func TestNewAtomRoundTrips(t *testing.T) {
	a := allocator.New()
	p, err := a.NewAtom([]byte("foobar"))
	require.NoError(t, err)
	require.Equal(t, []byte("foobar"), a.Atom(p))
	require.Equal(t, 6, a.AtomLen(p))

	s := a.SExp(p)
	require.Equal(t, allocator.KindAtom, s.Kind)
}

func TestNewAtomNoCanonicalization(t *testing.T) {
	a := allocator.New()
	// Two leading zero bytes: not minimally encoded, but NewAtom stores
	// verbatim - canonicalization is the caller's job (spec.md §4.1).
	p, err := a.NewAtom([]byte{0x00, 0x00, 0x01})
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0x00, 0x01}, a.Atom(p))
}

func TestInlineAtomsEqualByContent(t *testing.T) {
	a := allocator.New()
	p1, err := a.NewAtom([]byte{0x05})
	require.NoError(t, err)
	p2, err := a.NewAtom([]byte{0x05})
	require.NoError(t, err)
	require.Equal(t, p1, p2, "same-content inline atoms must share a handle")
}

func TestNewPairAndSExp(t *testing.T) {
	a := allocator.New()
	left, _ := a.NewAtom([]byte("a"))
	right, _ := a.NewAtom([]byte("b"))
	p, err := a.NewPair(left, right)
	require.NoError(t, err)

	s := a.SExp(p)
	require.Equal(t, allocator.KindPair, s.Kind)
	require.Equal(t, left, s.Left)
	require.Equal(t, right, s.Right)
}

func TestAtomTooLarge(t *testing.T) {
	a := allocator.New()
	big := make([]byte, allocator.MaxAtomBytes+1)
	_, err := a.NewAtom(big)
	require.Error(t, err)
	var ce *clvmerr.Error
	require.ErrorAs(t, err, &ce)
	require.Equal(t, clvmerr.KindAtomTooLarge, ce.Kind)
}

func TestHeapFullOnAtomLimit(t *testing.T) {
	a := allocator.NewWithLimits(allocator.Limits{MaxHeapBytes: 1 << 20, MaxAtoms: 1, MaxPairs: 10})
	_, err := a.NewAtom([]byte("first one fills the atom budget"))
	require.NoError(t, err)
	_, err = a.NewAtom([]byte("second atom should exceed the count limit"))
	require.Error(t, err)
	require.True(t, clvmerr.Is(err, clvmerr.KindHeapFull))
}

func TestPairLimit(t *testing.T) {
	a := allocator.NewWithLimits(allocator.Limits{MaxHeapBytes: 1 << 20, MaxAtoms: 100, MaxPairs: 1})
	l, _ := a.NewAtom([]byte("l"))
	r, _ := a.NewAtom([]byte("r"))
	_, err := a.NewPair(l, r)
	require.NoError(t, err)
	_, err = a.NewPair(l, r)
	require.Error(t, err)
	require.True(t, clvmerr.Is(err, clvmerr.KindPairLimit))
}

func TestCheckpointRestore(t *testing.T) {
	a := allocator.New()
	base, _ := a.NewAtom([]byte("base"))
	cp := a.Checkpoint()

	_, _ = a.NewAtom([]byte("scratch one"))
	_, _ = a.NewAtom([]byte("scratch two"))
	p1, _ := a.NewAtom([]byte("p1"))
	p2, _ := a.NewAtom([]byte("p2"))
	_, _ = a.NewPair(p1, p2)

	require.Equal(t, 5, a.AtomCount())
	require.Equal(t, 1, a.PairCount())

	a.Restore(cp)

	require.Equal(t, 1, a.AtomCount())
	require.Equal(t, 0, a.PairCount())
	require.Equal(t, []byte("base"), a.Atom(base))
}

func TestNewSmallNumber(t *testing.T) {
	a := allocator.New()
	require.Equal(t, allocator.Nil, a.NewSmallNumber(0))
	require.Equal(t, allocator.One, a.NewSmallNumber(1))

	p := a.NewSmallNumber(300)
	n, ok := a.SmallNumber(p)
	require.True(t, ok)
	require.Equal(t, uint32(300), n)
}

func TestNext(t *testing.T) {
	a := allocator.New()
	one, _ := a.NewAtom([]byte{1})
	two, _ := a.NewAtom([]byte{2})
	tail, _ := a.NewPair(two, allocator.Nil)
	list, _ := a.NewPair(one, tail)

	head, rest, ok := a.Next(list)
	require.True(t, ok)
	require.Equal(t, one, head)
	require.Equal(t, tail, rest)

	head2, rest2, ok := a.Next(rest)
	require.True(t, ok)
	require.Equal(t, two, head2)
	require.Equal(t, allocator.Nil, rest2)

	_, _, ok = a.Next(allocator.Nil)
	require.False(t, ok)
}

func TestAddGhostAtom(t *testing.T) {
	a := allocator.New()
	require.NoError(t, a.AddGhostAtom(1024))
	require.Equal(t, 0, a.AtomCount())
}
