package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func execCmd(t *testing.T, args ...string) string {
	t.Helper()
	rootCmd.SetArgs(args)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	require.NoError(t, rootCmd.Execute())
	return out.String()
}

func TestDeserializeAndTreeHashAgreeOnAnAtom(t *testing.T) {
	// "01" is the one-byte atom 0x01, encoded as itself.
	require.Equal(t, "1\n", execCmd(t, "deserialize", "01"))
	require.NotEmpty(t, execCmd(t, "tree-hash", "01"))
}

func TestSerializeRoundTripsThroughBackref(t *testing.T) {
	plain := execCmd(t, "serialize", "--backref=false", "01")
	require.Equal(t, "01\n", plain)

	withBackref := execCmd(t, "serialize", "--backref=true", "01")
	require.Equal(t, "01\n", withBackref) // no shared subtree to compress in a single atom
}

func TestOpcodeLooksUpKnownAndRejectsUnknown(t *testing.T) {
	require.Equal(t, "16\n", execCmd(t, "opcode", "+"))

	rootCmd.SetArgs([]string{"opcode", "strlenn"})
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.Execute()
	require.Error(t, err)
}
