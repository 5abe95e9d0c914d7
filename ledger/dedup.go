package ledger

import (
	"sort"

	"github.com/ldclabs/ic-sft/hash"
	"github.com/ldclabs/ic-sft/sft"
)

// DedupEntry records one committed request inside the deduplication window:
// the digest of its (caller, operation, payload) tuple, the block it
// produced and the caller supplied creation time.
type DedupEntry struct {
	_       struct{} `cbor:",toarray"`
	Key     []byte
	Block   uint64
	Created uint64
}

// Dedup detects exact resubmissions of already committed requests. Only
// requests carrying a creation timestamp participate; entries fall out of
// the index lazily once the window has passed them.
type Dedup struct {
	entries map[string]DedupEntry
}

func NewDedup() *Dedup {
	return &Dedup{entries: make(map[string]DedupEntry)}
}

// DedupKey digests a (caller, operation kind, payload) tuple. The payload
// is CBOR encoded canonically, so identical requests always collide.
func DedupKey(caller sft.Principal, kind string, payload any) ([]byte, error) {
	h := hash.New()
	if err := h.Write(kind); err != nil {
		return nil, err
	}
	if err := h.Write([]byte(caller)); err != nil {
		return nil, err
	}
	if err := h.Write(payload); err != nil {
		return nil, err
	}
	return h.Sum(), nil
}

// Check returns the block index of the prior identical request, if one is
// still inside the window.
func (d *Dedup) Check(key []byte) (uint64, bool) {
	e, ok := d.entries[string(key)]
	return e.Block, ok
}

// Record indexes a committed request and prunes entries that have aged out
// of the window. horizon is the window plus drift, in nanoseconds.
func (d *Dedup) Record(key []byte, block, created, now, horizon uint64) {
	for k, e := range d.entries {
		if e.Created+horizon < now {
			delete(d.entries, k)
		}
	}
	d.entries[string(key)] = DedupEntry{Key: append([]byte(nil), key...), Block: block, Created: created}
}

// All returns the live entries for snapshotting, ordered by block index.
func (d *Dedup) All() []DedupEntry {
	out := make([]DedupEntry, 0, len(d.entries))
	for _, e := range d.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Block < out[j].Block })
	return out
}

func (d *Dedup) restore(e DedupEntry) {
	d.entries[string(e.Key)] = e
}
