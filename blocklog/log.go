package blocklog

import (
	"encoding/binary"
	"fmt"

	"github.com/ldclabs/ic-sft/cbor"
	"github.com/ldclabs/ic-sft/hash"
	"github.com/ldclabs/ic-sft/storage"
)

const metaVersion cbor.Version = 1

var (
	blockPrefix = []byte("B")
	metaKey     = []byte("M:blocklog")
)

func blockKey(index uint64) []byte {
	key := make([]byte, 9)
	key[0] = blockPrefix[0]
	binary.BigEndian.PutUint64(key[1:], index)
	return key
}

type logMeta struct {
	_        struct{} `cbor:",toarray"`
	Length   uint64
	First    uint64
	Tip      []byte
	Archives []ArchivePointer
}

// Certificate is the certified tip exposed at the contract boundary. It is
// maintained incrementally on every append.
type Certificate struct {
	LastBlockIndex uint64 `cbor:"last_block_index"`
	LastBlockHash  []byte `cbor:"last_block_hash"`
}

// Log is the persistent block log. Indices start at 0 and never repeat;
// blocks below First have been handed to an archive and are no longer held
// locally.
type Log struct {
	store    storage.Store
	length   uint64
	first    uint64
	tip      []byte
	archives []ArchivePointer
}

// OpenLog loads the log metadata from store, initializing an empty log with
// the genesis digest when none is persisted yet.
func OpenLog(store storage.Store) (*Log, error) {
	l := &Log{store: store, tip: hash.Zero256[:]}
	data, err := store.Get(metaKey)
	if err == storage.ErrNotFound {
		return l, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load block log meta: %w", err)
	}
	var meta logMeta
	ver, err := cbor.UnmarshalVersioned(data, &meta)
	if err != nil {
		return nil, fmt.Errorf("decode block log meta: %w", err)
	}
	if ver != metaVersion {
		return nil, fmt.Errorf("unsupported block log version %d", ver)
	}
	l.length = meta.Length
	l.first = meta.First
	l.tip = meta.Tip
	l.archives = meta.Archives
	return l, nil
}

// Length is the total number of blocks ever appended, archived included.
func (l *Log) Length() uint64 { return l.length }

// FirstRetained is the index of the oldest locally held block. It equals
// Length when nothing is retained.
func (l *Log) FirstRetained() uint64 { return l.first }

// TipCertificate returns the certificate for the current tip, or nil for an
// empty log.
func (l *Log) TipCertificate() *Certificate {
	if l.length == 0 {
		return nil
	}
	return &Certificate{
		LastBlockIndex: l.length - 1,
		LastBlockHash:  append([]byte(nil), l.tip...),
	}
}

// Append chains, persists and indexes one block. The block's ParentHash is
// overwritten with the current tip before encoding.
func (l *Log) Append(b *Block) (uint64, error) {
	return l.AppendBatch([]*Block{b}, nil)
}

// AppendBatch chains and persists blocks together with any extra writes in
// a single atomic commit, returning the index of the first appended block.
// Block i of the batch gets index Length()+i.
func (l *Log) AppendBatch(blocks []*Block, extra *storage.Batch) (uint64, error) {
	start := l.length
	if len(blocks) == 0 {
		if extra == nil || extra.Len() == 0 {
			return start, nil
		}
		if err := l.store.WriteBatch(extra); err != nil {
			return 0, fmt.Errorf("persist ledger state: %w", err)
		}
		return start, nil
	}

	batch := storage.NewBatch()
	tip := l.tip
	for i, b := range blocks {
		index := start + uint64(i)
		if index == 0 {
			b.ParentHash = nil
		} else {
			b.ParentHash = append([]byte(nil), tip...)
		}
		raw, err := cbor.Marshal(b)
		if err != nil {
			return 0, fmt.Errorf("encode block %d: %w", index, err)
		}
		digest := hash.Chain(tip, raw)
		tip = digest[:]
		batch.Put(blockKey(index), raw)
	}

	end := start + uint64(len(blocks))
	meta, err := l.encodeMeta(end, l.first, tip, l.archives)
	if err != nil {
		return 0, err
	}
	batch.Put(metaKey, meta)
	batch.Append(extra)
	if err = l.store.WriteBatch(batch); err != nil {
		return 0, fmt.Errorf("persist blocks [%d, %d): %w", start, end, err)
	}

	l.length = end
	l.tip = tip
	return start, nil
}

// Get returns the locally retained block at index.
func (l *Log) Get(index uint64) (*Block, error) {
	if index >= l.length || index < l.first {
		return nil, storage.ErrNotFound
	}
	raw, err := l.store.Get(blockKey(index))
	if err != nil {
		return nil, err
	}
	b := &Block{}
	if err = cbor.Unmarshal(raw, b); err != nil {
		return nil, fmt.Errorf("decode block %d: %w", index, err)
	}
	return b, nil
}

// GetRange returns the locally retained blocks in [start, start+count) and,
// when the prefix of the range has been archived, the pointer describing
// where the missing blocks live. The archived prefix is never silently
// dropped.
func (l *Log) GetRange(start, count uint64) ([]Record, *ArchivePointer, error) {
	if count == 0 || start >= l.length {
		return nil, nil, nil
	}
	end := start + count
	if end > l.length || end < start {
		end = l.length
	}

	var redirect *ArchivePointer
	localStart := start
	if start < l.first {
		if p := l.archiveFor(start); p != nil {
			cp := *p
			redirect = &cp
		}
		localStart = l.first
	}
	if end < localStart {
		end = localStart
	}

	records := make([]Record, 0, end-localStart)
	for i := localStart; i < end; i++ {
		b, err := l.Get(i)
		if err != nil {
			return nil, nil, fmt.Errorf("read block %d: %w", i, err)
		}
		records = append(records, Record{Index: i, Block: b})
	}
	return records, redirect, nil
}

// Archives returns the recorded archive pointers, oldest first, starting
// with the first pointer whose range reaches from or beyond.
func (l *Log) Archives(from uint64) []ArchivePointer {
	out := make([]ArchivePointer, 0, len(l.archives))
	for _, p := range l.archives {
		if p.End >= from {
			out = append(out, p)
		}
	}
	return out
}

func (l *Log) archiveFor(index uint64) *ArchivePointer {
	for i := range l.archives {
		if l.archives[i].Start <= index && index <= l.archives[i].End {
			return &l.archives[i]
		}
	}
	return nil
}

// rawRange reads the raw encodings of [start, start+count) for hand off.
func (l *Log) rawRange(start, count uint64) ([][]byte, error) {
	out := make([][]byte, 0, count)
	for i := start; i < start+count; i++ {
		raw, err := l.store.Get(blockKey(i))
		if err != nil {
			return nil, fmt.Errorf("read block %d: %w", i, err)
		}
		out = append(out, raw)
	}
	return out, nil
}

// dropPrefix records the archive pointer for the oldest count retained
// blocks and deletes them locally, in one atomic write. Callers must have
// received the archive's acknowledgment first.
func (l *Log) dropPrefix(count uint64, archiveID string) error {
	if count == 0 {
		return nil
	}
	start := l.first
	end := start + count - 1
	archives := appendPointer(l.archives, ArchivePointer{ArchiveID: archiveID, Start: start, End: end})

	meta, err := l.encodeMeta(l.length, end+1, l.tip, archives)
	if err != nil {
		return err
	}
	batch := storage.NewBatch()
	for i := start; i <= end; i++ {
		batch.Delete(blockKey(i))
	}
	batch.Put(metaKey, meta)
	if err = l.store.WriteBatch(batch); err != nil {
		return fmt.Errorf("drop archived blocks [%d, %d]: %w", start, end, err)
	}

	l.first = end + 1
	l.archives = archives
	return nil
}

func (l *Log) encodeMeta(length, first uint64, tip []byte, archives []ArchivePointer) ([]byte, error) {
	data, err := cbor.MarshalVersioned(metaVersion, &logMeta{
		Length:   length,
		First:    first,
		Tip:      tip,
		Archives: archives,
	})
	if err != nil {
		return nil, fmt.Errorf("encode block log meta: %w", err)
	}
	return data, nil
}
