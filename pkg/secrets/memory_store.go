package secrets

import (
	"context"
	"sort"
	"sync"

	iface "github.com/goliatone/go-gamesync/pkg/interfaces/secrets"
)

// MemoryStore is a simple in-memory implementation of a secret Store.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string][]iface.Record
}

var _ iface.Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string][]iface.Record)}
}

func (m *MemoryStore) Put(_ context.Context, rec iface.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	versions := m.items[rec.Name]
	for i, existing := range versions {
		if existing.Version == rec.Version {
			versions[i] = rec
			return nil
		}
	}
	m.items[rec.Name] = append(versions, rec)
	return nil
}

func (m *MemoryStore) GetLatest(_ context.Context, name string) (iface.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	versions := m.items[name]
	if len(versions) == 0 {
		return iface.Record{}, ErrNotFound
	}
	latest := versions[0]
	for _, rec := range versions[1:] {
		if rec.Version > latest.Version {
			latest = rec
		}
	}
	return latest, nil
}

func (m *MemoryStore) GetVersion(_ context.Context, name, version string) (iface.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, rec := range m.items[name] {
		if rec.Version == version {
			return rec, nil
		}
	}
	return iface.Record{}, ErrNotFound
}

func (m *MemoryStore) Delete(_ context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.items, name)
	return nil
}

func (m *MemoryStore) List(_ context.Context, name string) ([]iface.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := append([]iface.Record(nil), m.items[name]...)
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
