package hash

import (
	"hash"

	fxcbor "github.com/fxamacker/cbor/v2"
	"golang.org/x/crypto/sha3"

	"github.com/ldclabs/ic-sft/cbor"
)

// Hasher folds deterministically CBOR encoded values into a SHA3-256
// digest, so structurally equal values always produce the same digest.
// The ledger keys its duplicate detection window with it.
type Hasher struct {
	h   hash.Hash
	enc *fxcbor.Encoder
}

// New returns an empty Hasher.
func New() *Hasher {
	h := sha3.New256()
	return &Hasher{h: h, enc: cbor.GetEncoder(h)}
}

// Write encodes v canonically and adds it to the digest.
func (h *Hasher) Write(v any) error {
	return h.enc.Encode(v)
}

// Sum returns the digest of everything written so far.
func (h *Hasher) Sum() []byte {
	return h.h.Sum(nil)
}
