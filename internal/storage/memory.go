package storage

import (
	"context"
	"errors"
	"sync"
)

var errReadOnly = errors.New("set inside a read-only view")

// MemoryStore is an in-process Store used by tests and local runs.
// Updates stage writes in an overlay map and fold them into the base map
// only when the closure succeeds, mirroring the discard-on-error
// behaviour of the persistent backends.
type MemoryStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (s *MemoryStore) View(ctx context.Context, fn func(KV) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&memoryKV{base: s.data})
}

func (s *MemoryStore) Update(ctx context.Context, fn func(KV) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	kv := &memoryKV{base: s.data, staged: make(map[string][]byte)}
	if err := fn(kv); err != nil {
		return err
	}
	for k, v := range kv.staged {
		s.data[k] = v
	}
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}

type memoryKV struct {
	base   map[string][]byte
	staged map[string][]byte // nil for read-only views
}

func (kv *memoryKV) Has(key []byte) (bool, error) {
	if kv.staged != nil {
		if _, ok := kv.staged[string(key)]; ok {
			return true, nil
		}
	}
	_, ok := kv.base[string(key)]
	return ok, nil
}

func (kv *memoryKV) Get(key []byte) ([]byte, bool, error) {
	if kv.staged != nil {
		if v, ok := kv.staged[string(key)]; ok {
			return append([]byte(nil), v...), true, nil
		}
	}
	v, ok := kv.base[string(key)]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (kv *memoryKV) Set(key, value []byte) error {
	if kv.staged == nil {
		return errReadOnly
	}
	kv.staged[string(key)] = append([]byte(nil), value...)
	return nil
}

var _ Store = (*MemoryStore)(nil)
