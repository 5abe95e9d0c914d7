// Package blocklog implements the append only, hash chained transaction log
// and the archival of its oldest entries to an external collaborator.
//
// Every appended block extends a digest chain: digest(i) is the SHA3-256 of
// digest(i-1) concatenated with the block's canonical CBOR encoding, with
// the genesis digest fixed at 32 zero bytes. Recomputing the chain from
// genesis must reproduce the stored tip exactly.
package blocklog

import (
	"github.com/ldclabs/ic-sft/sft"
)

// Block kinds, one per ledger operation family.
const (
	KindMint              = "7mint"
	KindTransfer          = "7xfer"
	KindTransferFrom      = "37xfer"
	KindApproveToken      = "37approve"
	KindApproveCollection = "37approve_coll"
	KindRevokeToken       = "37revoke"
	KindRevokeCollection  = "37revoke_coll"
)

// SupportedKinds lists every block kind the log records.
func SupportedKinds() []string {
	return []string{
		KindMint,
		KindTransfer,
		KindTransferFrom,
		KindApproveToken,
		KindApproveCollection,
		KindRevokeToken,
		KindRevokeCollection,
	}
}

// Transaction is the operation payload recorded inside a block.
type Transaction struct {
	TokenID   uint64       `cbor:"tid,omitempty"`
	From      *sft.Account `cbor:"from,omitempty"`
	To        *sft.Account `cbor:"to,omitempty"`
	Spender   *sft.Account `cbor:"spender,omitempty"`
	ExpiresAt uint64       `cbor:"exp,omitempty"`
	// Metadata echoes the instance metadata on mint blocks.
	Metadata sft.Map `cbor:"meta,omitempty"`
	Memo     []byte  `cbor:"memo,omitempty"`
	// Timestamp is the caller supplied created_at_time, zero when unset.
	Timestamp uint64 `cbor:"ts,omitempty"`
}

// Block is one entry of the log. ParentHash is the digest of the chain up
// to and including the previous block.
type Block struct {
	ParentHash []byte      `cbor:"phash,omitempty"`
	Kind       string      `cbor:"btype"`
	Timestamp  uint64      `cbor:"ts"`
	Tx         Transaction `cbor:"tx"`
}

// Record pairs a block with its index for range reads.
type Record struct {
	Index uint64
	Block *Block
}
