package orders

import (
	"context"
	"sync"
	"time"
)

// MemStore backs tests and broker-less local runs.
type MemStore struct {
	mu     sync.RWMutex
	orders map[string]Order
	items  map[string][]Item
}

func NewMemStore() *MemStore {
	return &MemStore{
		orders: make(map[string]Order),
		items:  make(map[string][]Item),
	}
}

func (s *MemStore) Create(_ context.Context, o Order, items []Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	o.CreatedAt, o.UpdatedAt = now, now
	s.orders[o.ID] = o
	s.items[o.ID] = append([]Item(nil), items...)
	return nil
}

func (s *MemStore) Get(_ context.Context, id string) (Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	o, ok := s.orders[id]
	if !ok {
		return Order{}, ErrNotFound
	}
	return o, nil
}

func (s *MemStore) Items(_ context.Context, orderID string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Item(nil), s.items[orderID]...), nil
}

func (s *MemStore) UpdateStatus(_ context.Context, id string, st Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.Status = st
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o
	return nil
}

func (s *MemStore) UpdatePaymentStatus(_ context.Context, id string, ps PaymentStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return ErrNotFound
	}
	o.PaymentStatus = ps
	o.UpdatedAt = time.Now().UTC()
	s.orders[id] = o
	return nil
}
