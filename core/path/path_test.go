package path_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/path"
)

func build(t *testing.T, a *allocator.Allocator) allocator.Ptr {
	t.Helper()
	// env = (20 30), the proper-list two-argument environment from the
	// classic `(a (q . (+ 2 5)) (q . (20 30)))` example: path 2 -> 20
	// (first arg), path 3 -> (30) (the rest-of-args tail), path 5 -> 30
	// (second arg).
	twenty, _ := a.NewAtom([]byte{20})
	thirty, _ := a.NewAtom([]byte{30})
	tail, err := a.NewPair(thirty, allocator.Nil)
	require.NoError(t, err)
	root, err := a.NewPair(twenty, tail)
	require.NoError(t, err)
	return root
}

func TestWalkZeroYieldsNil(t *testing.T) {
	a := allocator.New()
	root := build(t, a)
	got, err := path.Walk(a, root, nil)
	require.NoError(t, err)
	require.Equal(t, allocator.Nil, got)
}

func TestWalkOneYieldsWholeEnv(t *testing.T) {
	a := allocator.New()
	root := build(t, a)
	got, err := path.Walk(a, root, []byte{0x01})
	require.NoError(t, err)
	require.Equal(t, root, got)
}

func TestWalkClassicExamples(t *testing.T) {
	a := allocator.New()
	root := build(t, a)

	twenty, err := path.Walk(a, root, []byte{0x02})
	require.NoError(t, err)
	require.Equal(t, []byte{20}, a.Atom(twenty))

	thirty, err := path.Walk(a, root, []byte{0x05})
	require.NoError(t, err)
	require.Equal(t, []byte{30}, a.Atom(thirty))

	tail, err := path.Walk(a, root, []byte{0x03})
	require.NoError(t, err)
	require.Equal(t, allocator.KindPair, a.SExp(tail).Kind)
	require.Equal(t, []byte{30}, a.Atom(a.SExp(tail).Left))
}

func TestWalkLeadingZeroBytesIgnored(t *testing.T) {
	a := allocator.New()
	root := build(t, a)
	withZeros, err := path.Walk(a, root, []byte{0x00, 0x00, 0x05})
	require.NoError(t, err)
	plain, err := path.Walk(a, root, []byte{0x05})
	require.NoError(t, err)
	require.Equal(t, plain, withZeros)
	require.Equal(t, 2, path.LeadingZeroBytes([]byte{0x00, 0x00, 0x05}))
}

func TestWalkPathIntoAtomFails(t *testing.T) {
	a := allocator.New()
	root := build(t, a)
	// path 6 = 0b110: step0=left -> 20 (an atom), step1=right -> steps into
	// that atom and fails.
	_, err := path.Walk(a, root, []byte{0x06})
	require.Error(t, err)
}

func TestEncodeIsInverseOfSteps(t *testing.T) {
	for _, raw := range [][]byte{{0x01}, {0x02}, {0x03}, {0x05}, {0x06}, {0x0b}} {
		steps, isZero := path.Steps(raw)
		require.False(t, isZero)
		got := path.Encode(steps)
		require.Equal(t, raw, got, "round trip of % x", raw)
	}
}
