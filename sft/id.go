package sft

import "fmt"

// ClassID identifies a token class, 1-based in creation order.
type ClassID uint32

// TokenID identifies a token instance: the owning class in the high 32
// bits, the instance serial (1-based within the class) in the low 32 bits.
// The packed form is what appears at the contract boundary and in blocks.
type TokenID uint64

func NewTokenID(class ClassID, serial uint32) TokenID {
	return TokenID(uint64(class)<<32 | uint64(serial))
}

// FirstTokenID is the smallest valid token id.
var FirstTokenID = NewTokenID(1, 1)

func (id TokenID) Class() ClassID {
	return ClassID(id >> 32)
}

func (id TokenID) Serial() uint32 {
	return uint32(id)
}

// Next returns the id of the next serial within the same class.
func (id TokenID) Next() TokenID {
	return id + 1
}

// IsValid reports whether both the class and serial parts are non-zero.
func (id TokenID) IsValid() bool {
	return id.Class() != 0 && id.Serial() != 0
}

func (id TokenID) String() string {
	return fmt.Sprintf("%d-%d", id.Class(), id.Serial())
}

// ApprovalID is a monotonically increasing identifier issued for every
// approval record, for response tracking. It never repeats, even when an
// approval replaces an earlier one for the same scope.
type ApprovalID uint64
