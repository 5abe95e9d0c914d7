package storage

import (
	"bytes"
	"sort"
	"sync"
)

// Memory is an in memory Store backend for tests and dry runs.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

var _ Store = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (s *Memory) Get(key []byte) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	val, ok := s.data[string(key)]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneBytes(val), nil
}

func (s *Memory) Put(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[string(key)] = cloneBytes(value)
	return nil
}

func (s *Memory) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, string(key))
	return nil
}

func (s *Memory) Has(key []byte) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[string(key)]
	return ok, nil
}

func (s *Memory) WriteBatch(b *Batch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, op := range b.ops {
		if op.delete {
			delete(s.data, string(op.key))
		} else {
			s.data[string(op.key)] = cloneBytes(op.value)
		}
	}
	return nil
}

func (s *Memory) Iterate(prefix []byte, fn func(key, value []byte) bool) error {
	s.mu.RLock()
	keys := make([]string, 0, len(s.data))
	for k := range s.data {
		if bytes.HasPrefix([]byte(k), prefix) {
			keys = append(keys, k)
		}
	}
	s.mu.RUnlock()
	sort.Strings(keys)

	for _, k := range keys {
		s.mu.RLock()
		val, ok := s.data[k]
		s.mu.RUnlock()
		if !ok {
			continue
		}
		if !fn([]byte(k), val) {
			break
		}
	}
	return nil
}

func (s *Memory) Close() error {
	return nil
}
