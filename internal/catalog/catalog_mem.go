package catalog

import (
	"context"
	"sort"
	"sync"
)

// MemCatalog backs tests and broker-less local runs.
type MemCatalog struct {
	mu       sync.RWMutex
	products map[string]Product
}

func NewMemCatalog(ps ...Product) *MemCatalog {
	m := &MemCatalog{products: make(map[string]Product, len(ps))}
	for _, p := range ps {
		m.products[p.ID] = p
	}
	return m
}

func (m *MemCatalog) Put(p Product) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.products[p.ID] = p
}

func (m *MemCatalog) Product(_ context.Context, id string) (Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.products[id]
	if !ok {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (m *MemCatalog) List(_ context.Context) ([]Product, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Product, 0, len(m.products))
	for _, p := range m.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SKU < out[j].SKU })
	return out, nil
}
