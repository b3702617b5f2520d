package ops_test

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/sha3"

	"github.com/chia-network/go-clvm/clvmerr"
	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/ops"
)

func TestBase64URLEncodeRoundTripsThroughDecode(t *testing.T) {
	a := allocator.New()
	_, encoded, err := ops.Base64URLEncode(a, argPair(t, a, atom(t, a, []byte("hello"))), 10000)
	require.NoError(t, err)
	require.Equal(t, base64.RawURLEncoding.EncodeToString([]byte("hello")), string(a.Atom(encoded)))

	_, decoded, err := ops.Base64URLDecode(a, argPair(t, a, encoded), 10000)
	require.NoError(t, err)
	require.Equal(t, []byte("hello"), a.Atom(decoded))
}

func TestBase64URLDecodeRejectsMalformedInput(t *testing.T) {
	a := allocator.New()
	_, _, err := ops.Base64URLDecode(a, argPair(t, a, atom(t, a, []byte("not valid base64!!"))), 10000)
	require.Error(t, err)
	require.True(t, clvmerr.Is(err, clvmerr.KindBadEncoding))
}

func TestKeccak256MatchesReferenceDigest(t *testing.T) {
	a := allocator.New()
	_, result, err := ops.Keccak256(a, argPair(t, a, atom(t, a, []byte("ab")), atom(t, a, []byte("c"))), 10000)
	require.NoError(t, err)

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte("abc"))
	require.Equal(t, h.Sum(nil), a.Atom(result))
}
