package ops_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/ops"
)

func atom(t *testing.T, a *allocator.Allocator, b []byte) allocator.Ptr {
	t.Helper()
	p, err := a.NewAtom(b)
	require.NoError(t, err)
	return p
}

func pair(t *testing.T, a *allocator.Allocator, l, r allocator.Ptr) allocator.Ptr {
	t.Helper()
	p, err := a.NewPair(l, r)
	require.NoError(t, err)
	return p
}

func argPair(t *testing.T, a *allocator.Allocator, items ...allocator.Ptr) allocator.Ptr {
	t.Helper()
	cur := a.Nil()
	for i := len(items) - 1; i >= 0; i-- {
		cur = pair(t, a, items[i], cur)
	}
	return cur
}

func TestIfSelectsTrueBranchOnNonEmptyAtom(t *testing.T) {
	a := allocator.New()
	args := argPair(t, a, a.One(), atom(t, a, []byte("yes")), atom(t, a, []byte("no")))
	cost, result, err := ops.If(a, args, 1000)
	require.NoError(t, err)
	require.EqualValues(t, ops.IfCost, cost)
	require.Equal(t, []byte("yes"), a.Atom(result))
}

func TestIfSelectsFalseBranchOnNil(t *testing.T) {
	a := allocator.New()
	args := argPair(t, a, a.Nil(), atom(t, a, []byte("yes")), atom(t, a, []byte("no")))
	_, result, err := ops.If(a, args, 1000)
	require.NoError(t, err)
	require.Equal(t, []byte("no"), a.Atom(result))
}

func TestConsBuildsPair(t *testing.T) {
	a := allocator.New()
	args := argPair(t, a, a.One(), a.Nil())
	_, result, err := ops.Cons(a, args, 1000)
	require.NoError(t, err)
	s := a.SExp(result)
	require.Equal(t, allocator.KindPair, s.Kind)
	require.Equal(t, a.One(), s.Left)
	require.Equal(t, a.Nil(), s.Right)
}

func TestFirstOfNonConsFails(t *testing.T) {
	a := allocator.New()
	args := argPair(t, a, a.One())
	_, _, err := ops.First(a, args, 1000)
	require.Error(t, err)
	require.True(t, clvmerr.Is(err, clvmerr.KindFirstOfNonCons))
}

func TestRestOfNonConsFails(t *testing.T) {
	a := allocator.New()
	args := argPair(t, a, a.One())
	_, _, err := ops.Rest(a, args, 1000)
	require.Error(t, err)
	require.True(t, clvmerr.Is(err, clvmerr.KindRestOfNonCons))
}

func TestListpDistinguishesPairFromAtom(t *testing.T) {
	a := allocator.New()
	p := pair(t, a, a.One(), a.Nil())

	_, result, err := ops.Listp(a, argPair(t, a, p), 1000)
	require.NoError(t, err)
	require.Equal(t, a.One(), result)

	_, result, err = ops.Listp(a, argPair(t, a, a.Nil()), 1000)
	require.NoError(t, err)
	require.Equal(t, a.Nil(), result)
}

func TestRaiseAlwaysFails(t *testing.T) {
	a := allocator.New()
	_, _, err := ops.Raise(a, argPair(t, a, atom(t, a, []byte("boom"))), 1000)
	require.Error(t, err)
	require.True(t, clvmerr.Is(err, clvmerr.KindClvmRaise))
}

func TestEqComparesAtomBytes(t *testing.T) {
	a := allocator.New()
	args := argPair(t, a, atom(t, a, []byte("x")), atom(t, a, []byte("x")))
	_, result, err := ops.Eq(a, args, 1000)
	require.NoError(t, err)
	require.Equal(t, a.One(), result)

	args = argPair(t, a, atom(t, a, []byte("x")), atom(t, a, []byte("y")))
	_, result, err = ops.Eq(a, args, 1000)
	require.NoError(t, err)
	require.Equal(t, a.Nil(), result)
}

func TestEqRejectsPairArgument(t *testing.T) {
	a := allocator.New()
	p := pair(t, a, a.One(), a.Nil())
	_, _, err := ops.Eq(a, argPair(t, a, p, a.Nil()), 1000)
	require.Error(t, err)
	require.True(t, clvmerr.Is(err, clvmerr.KindInvalidOpArg))
}

func TestSha256HashesConcatenatedArgs(t *testing.T) {
	a := allocator.New()
	args := argPair(t, a, atom(t, a, []byte("ab")), atom(t, a, []byte("c")))
	_, result, err := ops.Sha256(a, args, 1000)
	require.NoError(t, err)
	require.Len(t, a.Atom(result), 32)
}
