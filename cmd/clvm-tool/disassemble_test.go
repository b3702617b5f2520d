package main

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/chia-network/go-clvm/core/allocator"
	"github.com/chia-network/go-clvm/core/dialect"
)

func TestDisassembleNamesKnownOperator(t *testing.T) {
	a := allocator.New()
	addExpr := a.NewSmallNumber(uint32(dialect.OpAdd))
	two := a.NewSmallNumber(2)
	three := a.NewSmallNumber(3)

	tail, err := a.NewPair(three, a.Nil())
	require.NoError(t, err)
	tail, err = a.NewPair(two, tail)
	require.NoError(t, err)
	program, err := a.NewPair(addExpr, tail)
	require.NoError(t, err)

	require.Equal(t, "(+ 2 3)", disassemble(a, program))
}

func TestDisassembleFallsBackToNumberForUnknownOpcode(t *testing.T) {
	a := allocator.New()
	program, err := a.NewPair(a.NewSmallNumber(99), a.Nil())
	require.NoError(t, err)
	require.Equal(t, "(99)", disassemble(a, program))
}

func TestDisassemblyCacheRoundTrips(t *testing.T) {
	programBytes := []byte{0xff, 0x10, 0x02}
	writeDisassemblyCache(programBytes, 1000, "(+ 1 2)")
	text, ok := readDisassemblyCache(programBytes, 1000)
	require.True(t, ok)
	require.Equal(t, "(+ 1 2)", text)

	_, ok = readDisassemblyCache(programBytes, 999)
	require.False(t, ok)
}
