package bunrepo

import (
	"context"
	"time"

	"github.com/goliatone/go-gamesync/internal/query"
	"github.com/goliatone/go-gamesync/pkg/domain"
	"github.com/goliatone/go-gamesync/pkg/interfaces/store"
	"github.com/uptrace/bun"
)

// DocumentStore persists JSON documents in the player_documents table.
type DocumentStore struct {
	db *bun.DB
}

var _ store.DocumentStore = (*DocumentStore)(nil)

func NewDocumentStore(db *bun.DB) *DocumentStore {
	return &DocumentStore{db: db}
}

func (s *DocumentStore) Upsert(ctx context.Context, id string, doc store.Document) (store.Document, error) {
	body := domain.JSONMap(doc.Clone())
	if body == nil {
		body = domain.JSONMap{}
	}
	body[store.IDField] = id
	now := time.Now().UTC()
	rec := &domain.PlayerDocument{ID: id, Body: body, CreatedAt: now, UpdatedAt: now}
	_, err := s.db.NewInsert().
		Model(rec).
		On("CONFLICT (id) DO UPDATE").
		Set("body = EXCLUDED.body").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return store.Document(body).Clone(), nil
}

func (s *DocumentStore) Read(ctx context.Context, id string) (store.Document, error) {
	rec := new(domain.PlayerDocument)
	if err := s.db.NewSelect().Model(rec).Where("id = ?", id).Limit(1).Scan(ctx); err != nil {
		return nil, mapError(err)
	}
	return toDocument(rec), nil
}

func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.NewDelete().Model((*domain.PlayerDocument)(nil)).Where("id = ?", id).Exec(ctx)
	if err != nil {
		return mapError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *DocumentStore) Query(ctx context.Context, q store.Query) ([]store.Document, error) {
	var recs []domain.PlayerDocument
	if err := s.db.NewSelect().Model(&recs).Order("id ASC").Scan(ctx); err != nil {
		return nil, mapError(err)
	}
	docs := make([]store.Document, 0, len(recs))
	for i := range recs {
		docs = append(docs, toDocument(&recs[i]))
	}
	return query.Filter(docs, q)
}

func toDocument(rec *domain.PlayerDocument) store.Document {
	doc := store.Document(rec.Body).Clone()
	if doc == nil {
		doc = store.Document{}
	}
	doc[store.IDField] = rec.ID
	return doc
}
