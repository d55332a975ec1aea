package afsstore

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-gamesync/pkg/interfaces/blob"
	"github.com/viant/afs"
	"github.com/viant/afs/url"
)

// ObjectStore writes blobs below a base URL using viant/afs, so any afs
// scheme (file://, mem://, s3://, gs://) can back the blob client.
type ObjectStore struct {
	fs      afs.Service
	baseURL string
}

var _ blob.ObjectStore = (*ObjectStore)(nil)

// NewObjectStore builds a store rooted at baseURL. A nil fs uses afs.New().
func NewObjectStore(fs afs.Service, baseURL string) (*ObjectStore, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, fmt.Errorf("afs: base url required")
	}
	if fs == nil {
		fs = afs.New()
	}
	return &ObjectStore{fs: fs, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// URL returns the afs location of an object.
func (s *ObjectStore) URL(container, name string) string {
	return url.Join(s.baseURL, container, name)
}

func (s *ObjectStore) Put(ctx context.Context, container, name string, data []byte, _ string) error {
	if err := s.fs.Upload(ctx, s.URL(container, name), 0o644, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("afs: upload %s: %w", name, err)
	}
	return nil
}

func (s *ObjectStore) Delete(ctx context.Context, container, name string) error {
	location := s.URL(container, name)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return fmt.Errorf("afs: exists %s: %w", name, err)
	}
	if !exists {
		return blob.ErrNotFound
	}
	if err := s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("afs: delete %s: %w", name, err)
	}
	return nil
}

// Read returns an object's bytes.
func (s *ObjectStore) Read(ctx context.Context, container, name string) ([]byte, error) {
	location := s.URL(container, name)
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, blob.ErrNotFound
	}
	return s.fs.DownloadWithURL(ctx, location)
}
