package ledger

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ldclabs/ic-sft/sft"
)

func Test_Approvals_TokenScope(t *testing.T) {
	bob := sft.AccountOf(sft.Principal{2})
	dave := sft.AccountOf(sft.Principal{6})
	erin := sft.AccountOf(sft.Principal{5})
	token := sft.NewTokenID(1, 1)
	now := uint64(1000)

	s := NewApprovals()
	require.False(t, s.IsActive(bob, dave, token, now))

	id1, err := s.ApproveToken(bob, token, &sft.ApprovalInfo{Spender: dave}, now, 30)
	require.NoError(t, err)
	require.True(t, s.IsActive(bob, dave, token, now))
	require.False(t, s.IsActive(bob, erin, token, now))
	require.False(t, s.IsActive(erin, dave, token, now), "grantor must match the owner")

	// replacing the same tuple issues a fresh id
	id2, err := s.ApproveToken(bob, token, &sft.ApprovalInfo{Spender: dave, ExpiresAt: now + 100}, now, 30)
	require.NoError(t, err)
	require.Greater(t, id2, id1)
	require.Len(t, s.TokenApprovalsOf(token, now), 1)

	s.ClearToken(token)
	require.False(t, s.IsActive(bob, dave, token, now))
}

func Test_Approvals_CollectionFallback(t *testing.T) {
	bob := sft.AccountOf(sft.Principal{2})
	dave := sft.AccountOf(sft.Principal{6})
	t1 := sft.NewTokenID(1, 1)
	t2 := sft.NewTokenID(1, 2)
	now := uint64(1000)

	s := NewApprovals()
	_, err := s.ApproveCollection(bob, &sft.ApprovalInfo{Spender: dave}, now, 30)
	require.NoError(t, err)
	require.True(t, s.IsActive(bob, dave, t1, now))
	require.True(t, s.IsActive(bob, dave, t2, now), "collection approval covers every owned token")

	// token scope survives a collection revocation
	_, err = s.ApproveToken(bob, t2, &sft.ApprovalInfo{Spender: dave}, now, 30)
	require.NoError(t, err)
	revoked, err := s.RevokeCollection(bob, &dave, now, 30)
	require.NoError(t, err)
	require.Len(t, revoked, 1)
	require.False(t, s.IsActive(bob, dave, t1, now))
	require.True(t, s.IsActive(bob, dave, t2, now))
}

func Test_Approvals_LazyExpiry(t *testing.T) {
	bob := sft.AccountOf(sft.Principal{2})
	dave := sft.AccountOf(sft.Principal{6})
	token := sft.NewTokenID(1, 1)

	s := NewApprovals()
	_, err := s.ApproveToken(bob, token, &sft.ApprovalInfo{Spender: dave, ExpiresAt: 2000}, 1000, 30)
	require.NoError(t, err)
	require.True(t, s.IsActive(bob, dave, token, 1999))
	require.False(t, s.IsActive(bob, dave, token, 2000))

	// the expired entry is dropped on the next touch, and revoking it
	// reports absence
	_, err = s.RevokeToken(bob, token, &dave, 3000, 30)
	require.ErrorIs(t, err, ErrApprovalDoesNotExist)
	require.Empty(t, s.All())
}

func Test_Approvals_Limits(t *testing.T) {
	bob := sft.AccountOf(sft.Principal{2})
	now := uint64(1000)

	s := NewApprovals()
	for i := 0; i < 3; i++ {
		spender := sft.AccountOf(sft.Principal{4, byte(i)})
		_, err := s.ApproveToken(bob, sft.NewTokenID(1, uint32(i+1)), &sft.ApprovalInfo{Spender: spender}, now, 3)
		require.NoError(t, err)
	}
	_, err := s.ApproveToken(bob, sft.NewTokenID(1, 4), &sft.ApprovalInfo{Spender: sft.AccountOf(sft.Principal{9})}, now, 3)
	require.ErrorIs(t, err, ErrExceedsApprovalLimit)

	// replacement is allowed even at the limit
	_, err = s.ApproveToken(bob, sft.NewTokenID(1, 1), &sft.ApprovalInfo{Spender: sft.AccountOf(sft.Principal{4, 0})}, now, 3)
	require.NoError(t, err)
}

func Test_Approvals_RevokeAll(t *testing.T) {
	bob := sft.AccountOf(sft.Principal{2})
	token := sft.NewTokenID(1, 1)
	now := uint64(1000)

	s := NewApprovals()
	for i := 0; i < 4; i++ {
		_, err := s.ApproveToken(bob, token, &sft.ApprovalInfo{Spender: sft.AccountOf(sft.Principal{4, byte(i)})}, now, 30)
		require.NoError(t, err)
	}

	// over the per-call cap: rejected whole, nothing revoked
	_, err := s.RevokeToken(bob, token, nil, now, 3)
	require.ErrorIs(t, err, ErrTooManyRevocations)
	require.Len(t, s.TokenApprovalsOf(token, now), 4)

	revoked, err := s.RevokeToken(bob, token, nil, now, 4)
	require.NoError(t, err)
	require.Len(t, revoked, 4)
	require.Empty(t, s.TokenApprovalsOf(token, now))
}
