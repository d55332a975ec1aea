package secrets

import (
	"context"
	"time"
)

// Record represents an encrypted secret entry persisted by a store.
type Record struct {
	Name      string
	Version   string
	Cipher    []byte
	Nonce     []byte
	Metadata  map[string]any
	CreatedAt time.Time
}

// Store defines persistence operations for secret records.
type Store interface {
	Put(ctx context.Context, rec Record) error
	GetLatest(ctx context.Context, name string) (Record, error)
	GetVersion(ctx context.Context, name, version string) (Record, error)
	Delete(ctx context.Context, name string) error
	List(ctx context.Context, name string) ([]Record, error)
}
