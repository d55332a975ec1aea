package redisstore

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/goliatone/go-gamesync/internal/query"
	"github.com/goliatone/go-gamesync/pkg/interfaces/store"
	redis "github.com/redis/go-redis/v9"
)

// DocumentStore keeps each document as a JSON string plus an index set of ids.
type DocumentStore struct {
	rdb    Client
	prefix string
}

var _ store.DocumentStore = (*DocumentStore)(nil)

// NewDocumentStore builds a store; prefix defaults to "gamesync:".
func NewDocumentStore(rdb Client, prefix string) *DocumentStore {
	if prefix == "" {
		prefix = "gamesync:"
	}
	return &DocumentStore{rdb: rdb, prefix: prefix}
}

func (s *DocumentStore) keyDoc(id string) string { return s.prefix + "doc:" + id }
func (s *DocumentStore) keyIndex() string        { return s.prefix + "docs" }

func (s *DocumentStore) Upsert(ctx context.Context, id string, doc store.Document) (store.Document, error) {
	stored := doc.Clone()
	if stored == nil {
		stored = store.Document{}
	}
	stored[store.IDField] = id
	data, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	if err := s.rdb.Set(ctx, s.keyDoc(id), data, 0).Err(); err != nil {
		return nil, err
	}
	if err := s.rdb.SAdd(ctx, s.keyIndex(), id).Err(); err != nil {
		return nil, err
	}
	return stored, nil
}

func (s *DocumentStore) Read(ctx context.Context, id string) (store.Document, error) {
	raw, err := s.rdb.Get(ctx, s.keyDoc(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	doc := store.Document{}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	n, err := s.rdb.Del(ctx, s.keyDoc(id)).Result()
	if err != nil {
		return err
	}
	if err := s.rdb.SRem(ctx, s.keyIndex(), id).Err(); err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *DocumentStore) Query(ctx context.Context, q store.Query) ([]store.Document, error) {
	ids, err := s.rdb.SMembers(ctx, s.keyIndex()).Result()
	if err != nil {
		return nil, err
	}
	docs := make([]store.Document, 0, len(ids))
	for _, id := range ids {
		doc, err := s.Read(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return query.Filter(docs, q)
}
