package serialize_test

import (
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/serialize"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	a := allocator.New()
	left, _ := a.NewAtom([]byte("hello"))
	right, _ := a.NewAtom([]byte{1, 2, 3})
	root, err := a.NewPair(left, right)
	require.NoError(t, err)

	buf, err := serialize.Encode(a, root)
	require.NoError(t, err)

	b2 := allocator.New()
	got, err := serialize.DecodeAll(b2, buf)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), b2.Atom(b2.SExp(got).Left))
	require.Equal(t, []byte{1, 2, 3}, b2.Atom(b2.SExp(got).Right))
}

func TestEncodeNilAndOne(t *testing.T) {
	a := allocator.New()
	buf, err := serialize.Encode(a, a.Nil())
	require.NoError(t, err)
	require.Equal(t, []byte{0x80}, buf)

	buf, err = serialize.Encode(a, a.One())
	require.NoError(t, err)
	require.Equal(t, []byte{0x01}, buf)
}

func TestDecodeBackrefSeedScenario(t *testing.T) {
	raw, err := hex.DecodeString("ff86666f6f626172fe01")
	require.NoError(t, err)

	a := allocator.New()
	root, err := serialize.DecodeAll(a, raw)
	require.NoError(t, err)

	s := a.SExp(root)
	require.Equal(t, allocator.KindPair, s.Kind)
	require.Equal(t, []byte("foobar"), a.Atom(s.Left))
	require.Equal(t, []byte("foobar"), a.Atom(s.Right))
}

func TestEncodeBackrefReproducesSeedScenario(t *testing.T) {
	a := allocator.New()
	left, _ := a.NewAtom([]byte("foobar"))
	right, _ := a.NewAtom([]byte("foobar"))
	root, err := a.NewPair(left, right)
	require.NoError(t, err)

	buf, err := serialize.EncodeBackref(a, root)
	require.NoError(t, err)
	require.Equal(t, "ff86666f6f626172fe01", hex.EncodeToString(buf))
}

func TestBackrefStreamDecodesLikePlainStream(t *testing.T) {
	a := allocator.New()
	// atomA stays directly reachable on the parse stack (it is not nested
	// inside an already-merged pair) when atomACopy is emitted, so the
	// writer's top-level-stack back-reference search can find it.
	atomA, _ := a.NewAtom([]byte("repeated value, long enough to be worth a backref"))
	atomB, _ := a.NewAtom([]byte("a distinct middle value"))
	atomACopy, _ := a.NewAtom([]byte("repeated value, long enough to be worth a backref"))
	inner, err := a.NewPair(atomB, atomACopy)
	require.NoError(t, err)
	root, err := a.NewPair(atomA, inner)
	require.NoError(t, err)

	plain, err := serialize.Encode(a, root)
	require.NoError(t, err)
	compressed, err := serialize.EncodeBackref(a, root)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(plain), "back-reference form must be shorter here")

	da := allocator.New()
	fromPlain, err := serialize.DecodeAll(da, plain)
	require.NoError(t, err)
	db := allocator.New()
	fromCompressed, err := serialize.DecodeAll(db, compressed)
	require.NoError(t, err)

	require.Equal(t, serialize.TreeHash(da, fromPlain), serialize.TreeHash(db, fromCompressed))
}

func TestTreeHashDeterministic(t *testing.T) {
	a := allocator.New()
	l, _ := a.NewAtom([]byte("x"))
	r, _ := a.NewAtom([]byte("y"))
	p1, _ := a.NewPair(l, r)

	b := allocator.New()
	l2, _ := b.NewAtom([]byte("x"))
	r2, _ := b.NewAtom([]byte("y"))
	p2, _ := b.NewPair(l2, r2)

	require.Equal(t, serialize.TreeHash(a, p1), serialize.TreeHash(b, p2))
}

func TestTreeHashDiffersOnDifferentTrees(t *testing.T) {
	a := allocator.New()
	l, _ := a.NewAtom([]byte("x"))
	r, _ := a.NewAtom([]byte("z"))
	p, _ := a.NewPair(l, r)

	require.NotEqual(t, serialize.TreeHash(a, l), serialize.TreeHash(a, p))
}

func TestSerializedLengthMatchesEncode(t *testing.T) {
	a := allocator.New()
	atom, _ := a.NewAtom(make([]byte, 200)) // forces a 2-byte size prefix
	pair, err := a.NewPair(atom, allocator.Nil)
	require.NoError(t, err)

	buf, err := serialize.Encode(a, pair)
	require.NoError(t, err)
	require.EqualValues(t, len(buf), serialize.SerializedLength(a, pair))
}

func TestDecodeTruncatedInputFails(t *testing.T) {
	a := allocator.New()
	_, _, err := serialize.Decode(a, []byte{0xff, 0x80})
	require.Error(t, err)
}

func TestDecodeTrailingBytesFails(t *testing.T) {
	a := allocator.New()
	_, err := serialize.DecodeAll(a, []byte{0x80, 0x80})
	require.Error(t, err)
}

func TestIncrementalDecodeByteAtATime(t *testing.T) {
	raw, err := hex.DecodeString("ff86666f6f626172fe01")
	require.NoError(t, err)

	a := allocator.New()
	dec := serialize.NewIncrementalDecoder(a)

	var buffered []byte
	for _, b := range raw {
		buffered = append(buffered, b)
		n, err := dec.Feed(buffered)
		require.NoError(t, err)
		buffered = buffered[n:]
	}

	root, done := dec.Done()
	require.True(t, done)
	s := a.SExp(root)
	require.Equal(t, []byte("foobar"), a.Atom(s.Left))
	require.Equal(t, []byte("foobar"), a.Atom(s.Right))
}
