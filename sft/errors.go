package sft

import "fmt"

// Each batch operation family has its own closed error type so callers can
// switch exhaustively over exactly the variants that operation can produce.
// The variants carrying payloads (CreatedInFuture, Duplicate, Generic*) use
// dedicated fields; the rest are bare codes.

// Result is the per-item outcome of a batch operation: the index of the
// block recording the committed change, or the family's typed error.
type Result[E error] struct {
	BlockIndex uint64
	Err        E
}

func (r Result[E]) Ok() bool {
	var zero E
	return any(r.Err) == any(zero)
}

type (
	TransferResult                 = Result[*TransferError]
	TransferFromResult             = Result[*TransferFromError]
	MintResult                     = Result[*MintError]
	ApproveTokenResult             = Result[*ApproveTokenError]
	ApproveCollectionResult        = Result[*ApproveCollectionError]
	RevokeTokenApprovalResult      = Result[*RevokeTokenApprovalError]
	RevokeCollectionApprovalResult = Result[*RevokeCollectionApprovalError]
)

// TransferErrorCode enumerates the failures of a direct transfer.
type TransferErrorCode uint8

const (
	TransferErrNonExistingTokenID TransferErrorCode = iota + 1
	TransferErrInvalidRecipient
	TransferErrUnauthorized
	TransferErrTooOld
	TransferErrCreatedInFuture
	TransferErrDuplicate
	TransferErrGeneric
	TransferErrGenericBatch
)

type TransferError struct {
	Code        TransferErrorCode
	LedgerTime  uint64 // CreatedInFuture
	DuplicateOf uint64 // Duplicate
	ErrorCode   uint64 // Generic, GenericBatch
	Message     string // Generic, GenericBatch
}

func (e *TransferError) Error() string {
	switch e.Code {
	case TransferErrNonExistingTokenID:
		return "non existing token id"
	case TransferErrInvalidRecipient:
		return "invalid recipient"
	case TransferErrUnauthorized:
		return "unauthorized"
	case TransferErrTooOld:
		return "too old"
	case TransferErrCreatedInFuture:
		return fmt.Sprintf("created in future, ledger time %d", e.LedgerTime)
	case TransferErrDuplicate:
		return fmt.Sprintf("duplicate of block %d", e.DuplicateOf)
	case TransferErrGenericBatch:
		return fmt.Sprintf("batch error %d: %s", e.ErrorCode, e.Message)
	default:
		return fmt.Sprintf("error %d: %s", e.ErrorCode, e.Message)
	}
}

// TransferFromErrorCode enumerates the failures of a delegated transfer.
type TransferFromErrorCode uint8

const (
	TransferFromErrNonExistingTokenID TransferFromErrorCode = iota + 1
	TransferFromErrInvalidRecipient
	TransferFromErrUnauthorized
	TransferFromErrTooOld
	TransferFromErrCreatedInFuture
	TransferFromErrDuplicate
	TransferFromErrGeneric
	TransferFromErrGenericBatch
)

type TransferFromError struct {
	Code        TransferFromErrorCode
	LedgerTime  uint64
	DuplicateOf uint64
	ErrorCode   uint64
	Message     string
}

func (e *TransferFromError) Error() string {
	switch e.Code {
	case TransferFromErrNonExistingTokenID:
		return "non existing token id"
	case TransferFromErrInvalidRecipient:
		return "invalid recipient"
	case TransferFromErrUnauthorized:
		return "unauthorized"
	case TransferFromErrTooOld:
		return "too old"
	case TransferFromErrCreatedInFuture:
		return fmt.Sprintf("created in future, ledger time %d", e.LedgerTime)
	case TransferFromErrDuplicate:
		return fmt.Sprintf("duplicate of block %d", e.DuplicateOf)
	case TransferFromErrGenericBatch:
		return fmt.Sprintf("batch error %d: %s", e.ErrorCode, e.Message)
	default:
		return fmt.Sprintf("error %d: %s", e.ErrorCode, e.Message)
	}
}

// MintErrorCode enumerates the failures of minting instances of a class.
type MintErrorCode uint8

const (
	MintErrNonExistingTokenID MintErrorCode = iota + 1
	MintErrSupplyCapReached
	MintErrInvalidRecipient
	MintErrUnauthorized
	MintErrGenericBatch
)

type MintError struct {
	Code      MintErrorCode
	ErrorCode uint64
	Message   string
}

func (e *MintError) Error() string {
	switch e.Code {
	case MintErrNonExistingTokenID:
		return "non existing token id"
	case MintErrSupplyCapReached:
		return "supply cap reached"
	case MintErrInvalidRecipient:
		return "invalid recipient"
	case MintErrUnauthorized:
		return "unauthorized"
	default:
		return fmt.Sprintf("batch error %d: %s", e.ErrorCode, e.Message)
	}
}

// ApproveTokenErrorCode enumerates the failures of a token-level approval.
type ApproveTokenErrorCode uint8

const (
	ApproveTokenErrInvalidSpender ApproveTokenErrorCode = iota + 1
	ApproveTokenErrUnauthorized
	ApproveTokenErrNonExistingTokenID
	ApproveTokenErrTooOld
	ApproveTokenErrCreatedInFuture
	ApproveTokenErrDuplicate
	ApproveTokenErrExceedsApprovalLimit
	ApproveTokenErrGeneric
	ApproveTokenErrGenericBatch
)

type ApproveTokenError struct {
	Code        ApproveTokenErrorCode
	LedgerTime  uint64
	DuplicateOf uint64
	ErrorCode   uint64
	Message     string
}

func (e *ApproveTokenError) Error() string {
	switch e.Code {
	case ApproveTokenErrInvalidSpender:
		return "invalid spender"
	case ApproveTokenErrUnauthorized:
		return "unauthorized"
	case ApproveTokenErrNonExistingTokenID:
		return "non existing token id"
	case ApproveTokenErrTooOld:
		return "too old"
	case ApproveTokenErrCreatedInFuture:
		return fmt.Sprintf("created in future, ledger time %d", e.LedgerTime)
	case ApproveTokenErrDuplicate:
		return fmt.Sprintf("duplicate of block %d", e.DuplicateOf)
	case ApproveTokenErrExceedsApprovalLimit:
		return "exceeds the maximum number of approvals"
	case ApproveTokenErrGenericBatch:
		return fmt.Sprintf("batch error %d: %s", e.ErrorCode, e.Message)
	default:
		return fmt.Sprintf("error %d: %s", e.ErrorCode, e.Message)
	}
}

// ApproveCollectionErrorCode enumerates the failures of a collection-level
// approval.
type ApproveCollectionErrorCode uint8

const (
	ApproveCollectionErrInvalidSpender ApproveCollectionErrorCode = iota + 1
	ApproveCollectionErrTooOld
	ApproveCollectionErrCreatedInFuture
	ApproveCollectionErrDuplicate
	ApproveCollectionErrExceedsApprovalLimit
	ApproveCollectionErrGeneric
	ApproveCollectionErrGenericBatch
)

type ApproveCollectionError struct {
	Code        ApproveCollectionErrorCode
	LedgerTime  uint64
	DuplicateOf uint64
	ErrorCode   uint64
	Message     string
}

func (e *ApproveCollectionError) Error() string {
	switch e.Code {
	case ApproveCollectionErrInvalidSpender:
		return "invalid spender"
	case ApproveCollectionErrTooOld:
		return "too old"
	case ApproveCollectionErrCreatedInFuture:
		return fmt.Sprintf("created in future, ledger time %d", e.LedgerTime)
	case ApproveCollectionErrDuplicate:
		return fmt.Sprintf("duplicate of block %d", e.DuplicateOf)
	case ApproveCollectionErrExceedsApprovalLimit:
		return "exceeds the maximum number of approvals"
	case ApproveCollectionErrGenericBatch:
		return fmt.Sprintf("batch error %d: %s", e.ErrorCode, e.Message)
	default:
		return fmt.Sprintf("error %d: %s", e.ErrorCode, e.Message)
	}
}

// RevokeTokenApprovalErrorCode enumerates the failures of revoking
// token-level approvals.
type RevokeTokenApprovalErrorCode uint8

const (
	RevokeTokenApprovalErrApprovalDoesNotExist RevokeTokenApprovalErrorCode = iota + 1
	RevokeTokenApprovalErrUnauthorized
	RevokeTokenApprovalErrNonExistingTokenID
	RevokeTokenApprovalErrTooOld
	RevokeTokenApprovalErrCreatedInFuture
	RevokeTokenApprovalErrDuplicate
	RevokeTokenApprovalErrTooManyRevocations
	RevokeTokenApprovalErrGeneric
	RevokeTokenApprovalErrGenericBatch
)

type RevokeTokenApprovalError struct {
	Code        RevokeTokenApprovalErrorCode
	LedgerTime  uint64
	DuplicateOf uint64
	ErrorCode   uint64
	Message     string
}

func (e *RevokeTokenApprovalError) Error() string {
	switch e.Code {
	case RevokeTokenApprovalErrApprovalDoesNotExist:
		return "approval does not exist"
	case RevokeTokenApprovalErrUnauthorized:
		return "unauthorized"
	case RevokeTokenApprovalErrNonExistingTokenID:
		return "non existing token id"
	case RevokeTokenApprovalErrTooOld:
		return "too old"
	case RevokeTokenApprovalErrCreatedInFuture:
		return fmt.Sprintf("created in future, ledger time %d", e.LedgerTime)
	case RevokeTokenApprovalErrDuplicate:
		return fmt.Sprintf("duplicate of block %d", e.DuplicateOf)
	case RevokeTokenApprovalErrTooManyRevocations:
		return "exceeds the maximum number of revocations"
	case RevokeTokenApprovalErrGenericBatch:
		return fmt.Sprintf("batch error %d: %s", e.ErrorCode, e.Message)
	default:
		return fmt.Sprintf("error %d: %s", e.ErrorCode, e.Message)
	}
}

// RevokeCollectionApprovalErrorCode enumerates the failures of revoking
// collection-level approvals.
type RevokeCollectionApprovalErrorCode uint8

const (
	RevokeCollectionApprovalErrApprovalDoesNotExist RevokeCollectionApprovalErrorCode = iota + 1
	RevokeCollectionApprovalErrTooOld
	RevokeCollectionApprovalErrCreatedInFuture
	RevokeCollectionApprovalErrDuplicate
	RevokeCollectionApprovalErrTooManyRevocations
	RevokeCollectionApprovalErrGeneric
	RevokeCollectionApprovalErrGenericBatch
)

type RevokeCollectionApprovalError struct {
	Code        RevokeCollectionApprovalErrorCode
	LedgerTime  uint64
	DuplicateOf uint64
	ErrorCode   uint64
	Message     string
}

func (e *RevokeCollectionApprovalError) Error() string {
	switch e.Code {
	case RevokeCollectionApprovalErrApprovalDoesNotExist:
		return "approval does not exist"
	case RevokeCollectionApprovalErrTooOld:
		return "too old"
	case RevokeCollectionApprovalErrCreatedInFuture:
		return fmt.Sprintf("created in future, ledger time %d", e.LedgerTime)
	case RevokeCollectionApprovalErrDuplicate:
		return fmt.Sprintf("duplicate of block %d", e.DuplicateOf)
	case RevokeCollectionApprovalErrTooManyRevocations:
		return "exceeds the maximum number of revocations"
	case RevokeCollectionApprovalErrGenericBatch:
		return fmt.Sprintf("batch error %d: %s", e.ErrorCode, e.Message)
	default:
		return fmt.Sprintf("error %d: %s", e.ErrorCode, e.Message)
	}
}
