package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ldclabs/ic-sft/sft"
)

func Test_Ownership(t *testing.T) {
	bob := sft.AccountOf(sft.Principal{2})
	carol := sft.AccountOf(sft.Principal{3})
	o := NewOwnership()

	_, ok := o.OwnerOf(sft.NewTokenID(1, 1))
	require.False(t, ok)

	require.NoError(t, o.SetOwner(sft.NewTokenID(1, 1), bob))
	require.NoError(t, o.SetOwner(sft.NewTokenID(1, 2), bob))
	require.EqualValues(t, 2, o.BalanceOf(bob))
	require.EqualValues(t, 0, o.BalanceOf(carol))

	// reassignment moves the instance between the owner indexes
	require.NoError(t, o.SetOwner(sft.NewTokenID(1, 1), carol))
	require.EqualValues(t, 1, o.BalanceOf(bob))
	require.EqualValues(t, 1, o.BalanceOf(carol))
	owner, ok := o.OwnerOf(sft.NewTokenID(1, 1))
	require.True(t, ok)
	require.True(t, owner.Eq(carol))

	require.Error(t, o.SetOwner(0, bob))
	require.Error(t, o.SetOwner(sft.NewTokenID(1, 3), sft.Account{}))
}

func Test_Ownership_InstancesOf(t *testing.T) {
	bob := sft.AccountOf(sft.Principal{2})
	o := NewOwnership()
	for serial := uint32(1); serial <= 5; serial++ {
		require.NoError(t, o.SetOwner(sft.NewTokenID(1, serial), bob))
	}

	page := o.InstancesOf(bob, 0, 3)
	require.Equal(t, []sft.TokenID{sft.NewTokenID(1, 1), sft.NewTokenID(1, 2), sft.NewTokenID(1, 3)}, page)

	page = o.InstancesOf(bob, page[len(page)-1], 3)
	require.Equal(t, []sft.TokenID{sft.NewTokenID(1, 4), sft.NewTokenID(1, 5)}, page)

	require.Empty(t, o.InstancesOf(bob, sft.NewTokenID(1, 5), 3))
	require.Empty(t, o.InstancesOf(sft.AccountOf(sft.Principal{9}), 0, 3))
}
