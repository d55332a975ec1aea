package afsstore

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/goliatone/go-gamesync/pkg/interfaces/blob"
)

func TestObjectStoreFileScheme(t *testing.T) {
	dir := t.TempDir()
	st, err := NewObjectStore(nil, "file://"+dir)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	if err := st.Put(ctx, "avatars", "1-me.png", []byte("png-bytes"), "image/png"); err != nil {
		t.Fatalf("put: %v", err)
	}
	onDisk, err := os.ReadFile(filepath.Join(dir, "avatars", "1-me.png"))
	if err != nil || string(onDisk) != "png-bytes" {
		t.Fatalf("expected file on disk: %q %v", onDisk, err)
	}
	data, err := st.Read(ctx, "avatars", "1-me.png")
	if err != nil || string(data) != "png-bytes" {
		t.Fatalf("read: %q %v", data, err)
	}
	if err := st.Delete(ctx, "avatars", "1-me.png"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := st.Delete(ctx, "avatars", "1-me.png"); !errors.Is(err, blob.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestObjectStoreRequiresBaseURL(t *testing.T) {
	if _, err := NewObjectStore(nil, " "); err == nil {
		t.Fatalf("expected error")
	}
}
