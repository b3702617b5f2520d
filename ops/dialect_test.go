package ops_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/dialect"
	"github.com/chia-network/go-clvm/ops"
)

func TestDefaultDialectDispatchesBaseOperator(t *testing.T) {
	a := allocator.New()
	d := ops.DefaultDialect()

	fn, err := d.Lookup(dialect.OpAdd, nil)
	require.NoError(t, err)
	_, result, err := fn(a, argPair(t, a, num(t, a, 2), num(t, a, 3)), 10000)
	require.NoError(t, err)
	require.EqualValues(t, 5, resultInt(t, a, result))
}

func TestDefaultDialectRegistersEveryExtension(t *testing.T) {
	d := ops.DefaultDialect()
	for _, id := range []uint32{ops.ExtBase64, ops.ExtKeccak, ops.ExtBLSG2, ops.ExtSecp256} {
		_, ok := d.Extension(id)
		require.True(t, ok, "extension %d missing", id)
	}
}
