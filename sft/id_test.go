package sft

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_TokenID(t *testing.T) {
	id := NewTokenID(3, 7)
	require.EqualValues(t, 3, id.Class())
	require.EqualValues(t, 7, id.Serial())
	require.True(t, id.IsValid())
	require.Equal(t, "3-7", id.String())

	require.Equal(t, NewTokenID(3, 8), id.Next())
	require.Equal(t, NewTokenID(1, 1), FirstTokenID)

	require.False(t, TokenID(0).IsValid())
	require.False(t, NewTokenID(0, 1).IsValid())
	require.False(t, NewTokenID(1, 0).IsValid())
}

func Test_TokenID_Packing(t *testing.T) {
	// class occupies the high 32 bits, serial the low 32
	id := NewTokenID(0xFFFFFFFF, 0xFFFFFFFF)
	require.EqualValues(t, uint64(0xFFFFFFFF_FFFFFFFF), uint64(id))
	require.EqualValues(t, 0xFFFFFFFF, id.Class())
	require.EqualValues(t, 0xFFFFFFFF, id.Serial())

	require.Equal(t, uint64(1)<<32|1, uint64(FirstTokenID))
}
