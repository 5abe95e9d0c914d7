package storage

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	ldbutil "github.com/syndtr/goleveldb/leveldb/util"
)

// LevelDB is the on disk Store backend.
type LevelDB struct {
	db *leveldb.DB
}

var _ Store = (*LevelDB)(nil)

// OpenLevelDB opens (creating if needed) a LevelDB database at dir.
func OpenLevelDB(dir string) (*LevelDB, error) {
	db, err := leveldb.OpenFile(dir, nil)
	if err != nil {
		return nil, fmt.Errorf("open leveldb at %q: %w", dir, err)
	}
	return &LevelDB{db: db}, nil
}

func (s *LevelDB) Get(key []byte) ([]byte, error) {
	val, err := s.db.Get(key, nil)
	if err == leveldb.ErrNotFound {
		return nil, ErrNotFound
	}
	return val, err
}

func (s *LevelDB) Put(key, value []byte) error {
	return s.db.Put(key, value, nil)
}

func (s *LevelDB) Delete(key []byte) error {
	return s.db.Delete(key, nil)
}

func (s *LevelDB) Has(key []byte) (bool, error) {
	return s.db.Has(key, nil)
}

func (s *LevelDB) WriteBatch(b *Batch) error {
	wb := new(leveldb.Batch)
	for _, op := range b.ops {
		if op.delete {
			wb.Delete(op.key)
		} else {
			wb.Put(op.key, op.value)
		}
	}
	return s.db.Write(wb, nil)
}

func (s *LevelDB) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	it := s.db.NewIterator(ldbutil.BytesPrefix(prefix), nil)
	defer it.Release()
	for it.Next() {
		if !fn(it.Key(), it.Value()) {
			break
		}
	}
	return it.Error()
}

func (s *LevelDB) Close() error {
	return s.db.Close()
}
