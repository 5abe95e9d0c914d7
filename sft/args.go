package sft

import (
	"github.com/ldclabs/ic-sft/util"
)

// Argument records for the batch operations. Validation is split in two to
// preserve the contract's error precedence: timing checks run first, the
// duplicate check and existence/ownership checks run in the engine, and the
// recipient/spender sanity checks run last.

// timingCheck reports whether a supplied creation timestamp is outside the
// accepted window. Both exact boundaries (now+drift and now-drift-window)
// are accepted. A zero created means the timestamp was not supplied.
func timingCheck(created, now uint64, s *Settings) (inFuture, tooOld bool) {
	if created == 0 {
		return false, false
	}
	if created > now+s.DriftNanos() {
		return true, false
	}
	if oldest, ok := util.SafeSub(now, s.DriftNanos()+s.WindowNanos()); ok && created < oldest {
		return false, true
	}
	return false, false
}

// TransferArg moves one owned token instance to a recipient.
type TransferArg struct {
	_              struct{} `cbor:",toarray"`
	FromSubaccount []byte
	To             Account
	TokenID        TokenID
	Memo           []byte
	CreatedAtTime  uint64 // nanoseconds, 0 = unset
}

// From is the account the caller acts as.
func (a *TransferArg) From(caller Principal) Account {
	return Account{Owner: caller, Subaccount: a.FromSubaccount}
}

func (a *TransferArg) ValidateTiming(now uint64, s *Settings) *TransferError {
	switch inFuture, tooOld := timingCheck(a.CreatedAtTime, now, s); {
	case inFuture:
		return &TransferError{Code: TransferErrCreatedInFuture, LedgerTime: now}
	case tooOld:
		return &TransferError{Code: TransferErrTooOld}
	}
	return nil
}

func (a *TransferArg) ValidateSanity(caller Principal, s *Settings) *TransferError {
	if !a.To.IsValid() || a.To.Eq(a.From(caller)) {
		return &TransferError{Code: TransferErrInvalidRecipient}
	}
	if len(a.Memo) > int(s.MaxMemoSize) {
		return &TransferError{Code: TransferErrGeneric, Message: "memo size is too large"}
	}
	return nil
}

// TransferFromArg moves a token on behalf of its owner, under an approval.
type TransferFromArg struct {
	_                 struct{} `cbor:",toarray"`
	SpenderSubaccount []byte
	From              Account
	To                Account
	TokenID           TokenID
	Memo              []byte
	CreatedAtTime     uint64
}

// Spender is the account the caller acts as.
func (a *TransferFromArg) Spender(caller Principal) Account {
	return Account{Owner: caller, Subaccount: a.SpenderSubaccount}
}

func (a *TransferFromArg) ValidateTiming(now uint64, s *Settings) *TransferFromError {
	switch inFuture, tooOld := timingCheck(a.CreatedAtTime, now, s); {
	case inFuture:
		return &TransferFromError{Code: TransferFromErrCreatedInFuture, LedgerTime: now}
	case tooOld:
		return &TransferFromError{Code: TransferFromErrTooOld}
	}
	return nil
}

func (a *TransferFromArg) ValidateSanity(caller Principal, s *Settings) *TransferFromError {
	if !a.From.IsValid() || a.From.Owner.Eq(caller) {
		return &TransferFromError{Code: TransferFromErrUnauthorized}
	}
	if !a.To.IsValid() || a.To.Eq(a.From) {
		return &TransferFromError{Code: TransferFromErrInvalidRecipient}
	}
	if len(a.Memo) > int(s.MaxMemoSize) {
		return &TransferFromError{Code: TransferFromErrGeneric, Message: "memo size is too large"}
	}
	return nil
}

// ApprovalInfo carries the shared fields of an approval request.
type ApprovalInfo struct {
	_              struct{} `cbor:",toarray"`
	Spender        Account
	FromSubaccount []byte
	ExpiresAt      uint64 // nanoseconds, 0 = never
	CreatedAtTime  uint64
	Memo           []byte
}

// Grantor is the account the caller grants from.
func (i *ApprovalInfo) Grantor(caller Principal) Account {
	return Account{Owner: caller, Subaccount: i.FromSubaccount}
}

// sanity checks shared by the token and collection approval paths; the
// returned code is mapped into the family error by the caller.
func (i *ApprovalInfo) sanity(caller Principal, now uint64, s *Settings) (invalidSpender bool, generic string) {
	if !i.Spender.IsValid() || i.Spender.Eq(i.Grantor(caller)) {
		return true, ""
	}
	if i.ExpiresAt != 0 && i.ExpiresAt < now+s.DriftNanos() {
		return false, "approval expiration time is too close"
	}
	if len(i.Memo) > int(s.MaxMemoSize) {
		return false, "memo size is too large"
	}
	return false, ""
}

// ApproveTokenArg grants a spender transfer rights over one token instance.
type ApproveTokenArg struct {
	_       struct{} `cbor:",toarray"`
	TokenID TokenID
	Info    ApprovalInfo
}

func (a *ApproveTokenArg) ValidateTiming(now uint64, s *Settings) *ApproveTokenError {
	switch inFuture, tooOld := timingCheck(a.Info.CreatedAtTime, now, s); {
	case inFuture:
		return &ApproveTokenError{Code: ApproveTokenErrCreatedInFuture, LedgerTime: now}
	case tooOld:
		return &ApproveTokenError{Code: ApproveTokenErrTooOld}
	}
	return nil
}

func (a *ApproveTokenArg) ValidateSanity(caller Principal, now uint64, s *Settings) *ApproveTokenError {
	switch invalidSpender, msg := a.Info.sanity(caller, now, s); {
	case invalidSpender:
		return &ApproveTokenError{Code: ApproveTokenErrInvalidSpender}
	case msg != "":
		return &ApproveTokenError{Code: ApproveTokenErrGeneric, Message: msg}
	}
	return nil
}

// ApproveCollectionArg grants a spender transfer rights over every token
// the grantor owns at transfer time.
type ApproveCollectionArg struct {
	_    struct{} `cbor:",toarray"`
	Info ApprovalInfo
}

func (a *ApproveCollectionArg) ValidateTiming(now uint64, s *Settings) *ApproveCollectionError {
	switch inFuture, tooOld := timingCheck(a.Info.CreatedAtTime, now, s); {
	case inFuture:
		return &ApproveCollectionError{Code: ApproveCollectionErrCreatedInFuture, LedgerTime: now}
	case tooOld:
		return &ApproveCollectionError{Code: ApproveCollectionErrTooOld}
	}
	return nil
}

func (a *ApproveCollectionArg) ValidateSanity(caller Principal, now uint64, s *Settings) *ApproveCollectionError {
	switch invalidSpender, msg := a.Info.sanity(caller, now, s); {
	case invalidSpender:
		return &ApproveCollectionError{Code: ApproveCollectionErrInvalidSpender}
	case msg != "":
		return &ApproveCollectionError{Code: ApproveCollectionErrGeneric, Message: msg}
	}
	return nil
}

// RevokeTokenApprovalArg withdraws token-level approvals. A nil Spender
// revokes the approvals for all spenders of that token.
type RevokeTokenApprovalArg struct {
	_              struct{} `cbor:",toarray"`
	Spender        *Account
	FromSubaccount []byte
	TokenID        TokenID
	Memo           []byte
	CreatedAtTime  uint64
}

func (a *RevokeTokenApprovalArg) Grantor(caller Principal) Account {
	return Account{Owner: caller, Subaccount: a.FromSubaccount}
}

func (a *RevokeTokenApprovalArg) ValidateTiming(now uint64, s *Settings) *RevokeTokenApprovalError {
	switch inFuture, tooOld := timingCheck(a.CreatedAtTime, now, s); {
	case inFuture:
		return &RevokeTokenApprovalError{Code: RevokeTokenApprovalErrCreatedInFuture, LedgerTime: now}
	case tooOld:
		return &RevokeTokenApprovalError{Code: RevokeTokenApprovalErrTooOld}
	}
	return nil
}

func (a *RevokeTokenApprovalArg) ValidateSanity(caller Principal, s *Settings) *RevokeTokenApprovalError {
	if a.Spender != nil && (!a.Spender.IsValid() || a.Spender.Owner.Eq(caller)) {
		return &RevokeTokenApprovalError{Code: RevokeTokenApprovalErrGeneric, Message: "invalid spender"}
	}
	if len(a.Memo) > int(s.MaxMemoSize) {
		return &RevokeTokenApprovalError{Code: RevokeTokenApprovalErrGeneric, Message: "memo size is too large"}
	}
	return nil
}

// RevokeCollectionApprovalArg withdraws collection-level approvals. A nil
// Spender revokes the grantor's approvals for all spenders.
type RevokeCollectionApprovalArg struct {
	_              struct{} `cbor:",toarray"`
	Spender        *Account
	FromSubaccount []byte
	Memo           []byte
	CreatedAtTime  uint64
}

func (a *RevokeCollectionApprovalArg) Grantor(caller Principal) Account {
	return Account{Owner: caller, Subaccount: a.FromSubaccount}
}

func (a *RevokeCollectionApprovalArg) ValidateTiming(now uint64, s *Settings) *RevokeCollectionApprovalError {
	switch inFuture, tooOld := timingCheck(a.CreatedAtTime, now, s); {
	case inFuture:
		return &RevokeCollectionApprovalError{Code: RevokeCollectionApprovalErrCreatedInFuture, LedgerTime: now}
	case tooOld:
		return &RevokeCollectionApprovalError{Code: RevokeCollectionApprovalErrTooOld}
	}
	return nil
}

func (a *RevokeCollectionApprovalArg) ValidateSanity(caller Principal, s *Settings) *RevokeCollectionApprovalError {
	if a.Spender != nil && (!a.Spender.IsValid() || a.Spender.Owner.Eq(caller)) {
		return &RevokeCollectionApprovalError{Code: RevokeCollectionApprovalErrGeneric, Message: "invalid spender"}
	}
	if len(a.Memo) > int(s.MaxMemoSize) {
		return &RevokeCollectionApprovalError{Code: RevokeCollectionApprovalErrGeneric, Message: "memo size is too large"}
	}
	return nil
}

// MintArg creates one new instance of the class for every listed holder.
type MintArg struct {
	_       struct{} `cbor:",toarray"`
	ClassID ClassID
	Holders []Account
	Memo    []byte
}

// IsApprovedArg queries whether the spender holds an active approval for
// the token, granted by the caller.
type IsApprovedArg struct {
	_              struct{} `cbor:",toarray"`
	Spender        Account
	FromSubaccount []byte
	TokenID        TokenID
}

// ChallengeArg binds asset content to its author before class creation.
type ChallengeArg struct {
	_         struct{} `cbor:",toarray"`
	Author    Principal
	AssetHash []byte
}

// CreateClassArg describes a new token class and its asset content.
type CreateClassArg struct {
	Name             string
	Description      string
	AssetName        string
	AssetContentType string
	AssetContent     []byte
	Metadata         Map
	SupplyCap        *uint32 // nil = unlimited
	Author           Principal
	Challenge        []byte // optional on the plain path, mandatory on the challenge path
}

// UpdateClassArg is a partial patch over class metadata; nil fields are
// left unchanged.
type UpdateClassArg struct {
	ID               ClassID
	Name             *string
	Description      *string
	AssetName        *string
	AssetContentType *string
	AssetContent     []byte // nil = unchanged
	Metadata         Map    // nil = unchanged
	SupplyCap        *uint32
	Author           *Principal
}
