package sft

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Principal(t *testing.T) {
	alice := Principal{1, 2, 3}
	require.True(t, alice.Eq(Principal{1, 2, 3}))
	require.False(t, alice.Eq(Anonymous))
	require.False(t, alice.IsAnonymous())
	require.False(t, alice.IsZero())

	require.True(t, Anonymous.IsAnonymous())
	require.True(t, Principal(nil).IsZero())
	require.Equal(t, "010203", string(mustText(t, alice)))
}

func mustText(t *testing.T, p Principal) []byte {
	t.Helper()
	b, err := p.MarshalText()
	require.NoError(t, err)
	return b
}

func Test_Account_Eq(t *testing.T) {
	alice := Principal{1, 2, 3}
	defaultSub := make([]byte, SubaccountSize)

	a := AccountOf(alice)
	b := Account{Owner: alice, Subaccount: defaultSub}
	require.True(t, a.Eq(b), "nil subaccount equals the all-zero default")
	require.Equal(t, a.Key(), b.Key())

	sub := bytes.Repeat([]byte{9}, SubaccountSize)
	c := Account{Owner: alice, Subaccount: sub}
	require.False(t, a.Eq(c))
	require.NotEqual(t, a.Key(), c.Key())
}

func Test_Account_IsValid(t *testing.T) {
	alice := Principal{1, 2, 3}
	require.True(t, AccountOf(alice).IsValid())
	require.True(t, Account{Owner: alice, Subaccount: make([]byte, SubaccountSize)}.IsValid())

	require.False(t, Account{}.IsValid())
	require.False(t, AccountOf(Anonymous).IsValid())
	require.False(t, Account{Owner: alice, Subaccount: []byte{1}}.IsValid())
}
