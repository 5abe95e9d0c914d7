// Package storage provides the key value substrate the ledger state and the
// block log persist into. The production backend is LevelDB; an in memory
// backend backs the tests.
package storage

import "errors"

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("storage: key not found")

// Store is a flat key value store with atomic multi key writes and ordered
// prefix iteration.
type Store interface {
	// Get returns the value for key, or ErrNotFound.
	Get(key []byte) ([]byte, error)
	Put(key, value []byte) error
	Delete(key []byte) error
	Has(key []byte) (bool, error)
	// WriteBatch applies every operation in b atomically.
	WriteBatch(b *Batch) error
	// Iterate calls fn for every key with the given prefix, in ascending
	// key order, until fn returns false or the prefix is exhausted.
	Iterate(prefix []byte, fn func(key, value []byte) bool) error
	Close() error
}

type batchOp struct {
	key    []byte
	value  []byte
	delete bool
}

// Batch collects writes and deletes for a single atomic commit.
type Batch struct {
	ops []batchOp
}

func NewBatch() *Batch {
	return &Batch{}
}

func (b *Batch) Put(key, value []byte) {
	b.ops = append(b.ops, batchOp{key: cloneBytes(key), value: cloneBytes(value)})
}

func (b *Batch) Delete(key []byte) {
	b.ops = append(b.ops, batchOp{key: cloneBytes(key), delete: true})
}

// Append moves every pending operation of other onto b.
func (b *Batch) Append(other *Batch) {
	if other != nil {
		b.ops = append(b.ops, other.ops...)
	}
}

// Len returns the number of pending operations.
func (b *Batch) Len() int {
	return len(b.ops)
}

func (b *Batch) Reset() {
	b.ops = b.ops[:0]
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
