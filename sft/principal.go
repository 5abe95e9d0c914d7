/*
Package sft defines the wire types of the semi-fungible token ledger:
principals and accounts, token identifiers, metadata values, the
per-operation argument records and their validation rules, and the typed
error families returned per batch item.
*/
package sft

import (
	"bytes"
	"encoding/hex"
	"fmt"
)

// Principal is an opaque caller identity, compared byte-wise.
type Principal []byte

// Anonymous is the well-known unauthenticated identity. It may never own,
// receive or spend tokens.
var Anonymous = Principal{0x04}

func (p Principal) Eq(o Principal) bool {
	return bytes.Equal(p, o)
}

func (p Principal) IsAnonymous() bool {
	return p.Eq(Anonymous)
}

func (p Principal) IsZero() bool {
	return len(p) == 0
}

func (p Principal) String() string {
	return fmt.Sprintf("%X", []byte(p))
}

func (p Principal) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(p)), nil
}

func (p *Principal) UnmarshalText(src []byte) error {
	res, err := hex.DecodeString(string(src))
	if err == nil {
		*p = res
	}
	return err
}

// SubaccountSize is the length of an account sub-identifier.
const SubaccountSize = 32

var defaultSubaccount = make([]byte, SubaccountSize)

// Account identifies a token holder: a principal plus an optional
// sub-identifier. A nil subaccount denotes the default (all-zero)
// subaccount and compares equal to it, never to "any".
type Account struct {
	_          struct{}  `cbor:",toarray"`
	Owner      Principal `json:"owner"`
	Subaccount []byte    `json:"subaccount,omitempty"`
}

// AccountOf returns the default-subaccount account of the principal.
func AccountOf(owner Principal) Account {
	return Account{Owner: owner}
}

func (a Account) Eq(b Account) bool {
	return a.Owner.Eq(b.Owner) && bytes.Equal(a.effectiveSubaccount(), b.effectiveSubaccount())
}

func (a Account) effectiveSubaccount() []byte {
	if len(a.Subaccount) == 0 {
		return defaultSubaccount
	}
	return a.Subaccount
}

// IsValid reports whether the account is well formed: a non-empty,
// non-anonymous owner and a subaccount that is either absent or exactly
// SubaccountSize bytes.
func (a Account) IsValid() bool {
	if a.Owner.IsZero() || a.Owner.IsAnonymous() {
		return false
	}
	return len(a.Subaccount) == 0 || len(a.Subaccount) == SubaccountSize
}

// Key returns a canonical comparable form, collapsing the default
// subaccount, for use as a map key.
func (a Account) Key() string {
	return string(a.Owner) + "|" + string(a.effectiveSubaccount())
}

func (a Account) String() string {
	if len(a.Subaccount) == 0 || bytes.Equal(a.Subaccount, defaultSubaccount) {
		return a.Owner.String()
	}
	return fmt.Sprintf("%s.%X", a.Owner, a.Subaccount)
}
