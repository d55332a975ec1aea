package memory

import (
	"context"
	"sync"

	"github.com/goliatone/go-gamesync/internal/query"
	"github.com/goliatone/go-gamesync/pkg/interfaces/store"
)

// DocumentStore keeps documents in a map.
type DocumentStore struct {
	mu   sync.RWMutex
	docs map[string]store.Document
}

var _ store.DocumentStore = (*DocumentStore)(nil)

func NewDocumentStore() *DocumentStore {
	return &DocumentStore{docs: make(map[string]store.Document)}
}

func (s *DocumentStore) Upsert(_ context.Context, id string, doc store.Document) (store.Document, error) {
	stored := doc.Clone()
	if stored == nil {
		stored = store.Document{}
	}
	stored[store.IDField] = id
	s.mu.Lock()
	s.docs[id] = stored
	s.mu.Unlock()
	return stored.Clone(), nil
}

func (s *DocumentStore) Read(_ context.Context, id string) (store.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.docs[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return doc.Clone(), nil
}

func (s *DocumentStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.docs[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.docs, id)
	return nil
}

func (s *DocumentStore) Query(_ context.Context, q store.Query) ([]store.Document, error) {
	s.mu.RLock()
	docs := make([]store.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	s.mu.RUnlock()
	return query.Filter(docs, q)
}
