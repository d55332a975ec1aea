package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record cannot be located.
var ErrNotFound = errors.New("store: not found")

// IDField is the document key holding the record id.
const IDField = "id"

// Document is a JSON object persisted under an id.
type Document map[string]any

// ID returns the document id, if any.
func (d Document) ID() string {
	id, _ := d[IDField].(string)
	return id
}

// Clone returns a shallow copy.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	out := make(Document, len(d))
	for k, v := range d {
		out[k] = v
	}
	return out
}

// Query is a filter expression evaluated against each document. Params are
// exposed to the expression by name alongside the document fields.
type Query struct {
	Text   string
	Params map[string]any
	Limit  int
}

// DocumentStore is the record store consumed by the documents client.
type DocumentStore interface {
	Upsert(ctx context.Context, id string, doc Document) (Document, error)
	Read(ctx context.Context, id string) (Document, error)
	Delete(ctx context.Context, id string) error
	Query(ctx context.Context, q Query) ([]Document, error)
}
