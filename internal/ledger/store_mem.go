package ledger

import (
	"context"
	"sync"
)

// MemStore serializes mutations with one mutex per product record; the same
// contract as the row lock in PgxStore. Backs tests and broker-less runs.
type MemStore struct {
	mu   sync.Mutex
	recs map[string]*memRecord
}

type memRecord struct {
	mu  sync.Mutex
	rec Record
}

func NewMemStore() *MemStore {
	return &MemStore{recs: make(map[string]*memRecord)}
}

func (s *MemStore) lookup(productID string) (*memRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.recs[productID]
	return r, ok
}

func (s *MemStore) Get(_ context.Context, productID string) (Record, error) {
	r, ok := s.lookup(productID)
	if !ok {
		return Record{}, ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rec, nil
}

func (s *MemStore) Create(_ context.Context, rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.recs[rec.ProductID]; ok {
		return nil
	}
	s.recs[rec.ProductID] = &memRecord{rec: rec}
	return nil
}

func (s *MemStore) Mutate(_ context.Context, productID string, fn func(rec *Record) error) (Record, Record, error) {
	r, ok := s.lookup(productID)
	if !ok {
		return Record{}, Record{}, ErrNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	before := r.rec
	after := before
	if err := fn(&after); err != nil {
		return Record{}, Record{}, err
	}
	r.rec = after
	return before, after, nil
}
