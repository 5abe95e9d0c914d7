// Package ledger implements the transactional core of the token contract:
// class registry, ownership index, approval store, challenge registry and
// the batch engine that validates and applies mint, transfer, approve and
// revoke requests, appending one block per applied item.
package ledger

import "errors"

// Sentinel errors raised by the state components. The engine maps them onto
// the per operation error families at the call boundary.
var (
	ErrNotFound             = errors.New("not found")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrInvalidArgument      = errors.New("invalid argument")
	ErrSupplyCapReached     = errors.New("supply cap reached")
	ErrDuplicateAsset       = errors.New("duplicate asset")
	ErrExceedsApprovalLimit = errors.New("exceeds approval limit")
	ErrApprovalDoesNotExist = errors.New("approval does not exist")
	ErrTooManyRevocations   = errors.New("too many revocations")
	ErrChallengeConsumed    = errors.New("challenge already consumed")
	ErrChallengeExpired     = errors.New("challenge expired")
)
