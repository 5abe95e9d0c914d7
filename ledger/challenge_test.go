package ledger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ldclabs/ic-sft/hash"
	"github.com/ldclabs/ic-sft/sft"
)

func Test_Challenges_IssueIdempotent(t *testing.T) {
	alice := sft.Principal{1}
	bob := sft.Principal{2}
	assetHash := hash.Sum256([]byte("art"))
	now := 1000 * sft.Second

	c := NewChallenges([]byte("salt"))
	tok1, err := c.Issue(assetHash[:], alice, now)
	require.NoError(t, err)
	tok2, err := c.Issue(assetHash[:], alice, now+sft.Second)
	require.NoError(t, err)
	require.Equal(t, tok1, tok2, "pending pair reissues the same token")

	other, err := c.Issue(assetHash[:], bob, now)
	require.NoError(t, err)
	require.False(t, bytes.Equal(tok1, other), "a different author gets a different token")
	require.True(t, c.HasPendingAsset(assetHash[:], now))
}

func Test_Challenges_ConsumeOnce(t *testing.T) {
	alice := sft.Principal{1}
	assetHash := hash.Sum256([]byte("art"))
	now := 1000 * sft.Second

	c := NewChallenges([]byte("salt"))
	tok, err := c.Issue(assetHash[:], alice, now)
	require.NoError(t, err)

	cm, err := c.Consume(tok, now+sft.Second)
	require.NoError(t, err)
	require.Equal(t, assetHash[:], cm.AssetHash)
	require.True(t, cm.Author.Eq(alice))
	require.False(t, c.HasPendingAsset(assetHash[:], now))

	_, err = c.Consume(tok, now+2*sft.Second)
	require.ErrorIs(t, err, ErrChallengeConsumed)

	_, err = c.Consume([]byte("bogus"), now)
	require.ErrorIs(t, err, ErrNotFound)
}

func Test_Challenges_Expiry(t *testing.T) {
	alice := sft.Principal{1}
	assetHash := hash.Sum256([]byte("art"))
	now := 1000 * sft.Second

	c := NewChallenges([]byte("salt"))
	tok, err := c.Issue(assetHash[:], alice, now)
	require.NoError(t, err)

	late := now + challengeTTL + sft.Second
	require.False(t, c.HasPendingAsset(assetHash[:], late))
	_, err = c.Consume(tok, late)
	require.ErrorIs(t, err, ErrChallengeExpired)

	// expired pair can be reissued with a fresh token
	tok2, err := c.Issue(assetHash[:], alice, late)
	require.NoError(t, err)
	require.False(t, bytes.Equal(tok, tok2))
	_, err = c.Consume(tok2, late+sft.Second)
	require.NoError(t, err)
}
