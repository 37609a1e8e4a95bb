// File path: internal/record/memory.go
package record

import (
	"context"
	"sort"
	"sync"
)

// MemoryCatalog is a map-backed Catalog for tests and ephemeral runs.
type MemoryCatalog struct {
	mu      sync.RWMutex
	records map[string]Record
}

func NewMemoryCatalog() *MemoryCatalog {
	return &MemoryCatalog{records: make(map[string]Record)}
}

func (m *MemoryCatalog) Put(ctx context.Context, id string, rec Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[id] = rec.Clone()
	return nil
}

func (m *MemoryCatalog) Get(ctx context.Context, id string) (Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, false, nil
	}
	return rec.Clone(), true, nil
}

func (m *MemoryCatalog) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.records, id)
	return nil
}

func (m *MemoryCatalog) IDs(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.records))
	for id := range m.records {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

var _ Catalog = (*MemoryCatalog)(nil)
