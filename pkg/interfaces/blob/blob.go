package blob

import (
	"context"
	"errors"
)

// ErrNotFound is returned when deleting an object that does not exist.
var ErrNotFound = errors.New("blob: not found")

// ObjectStore is the byte-stream storage consumed by the blob client.
type ObjectStore interface {
	Put(ctx context.Context, container, name string, data []byte, contentType string) error
	Delete(ctx context.Context, container, name string) error
}
