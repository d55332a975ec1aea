package secrets

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	iface "github.com/goliatone/go-gamesync/pkg/interfaces/secrets"
	"golang.org/x/crypto/chacha20poly1305"
)

// EncryptedStoreProvider persists secrets encrypted via a Store.
type EncryptedStoreProvider struct {
	store iface.Store
	aead  cipherSuite
	now   func() time.Time
}

var (
	_ Provider = (*EncryptedStoreProvider)(nil)
	_ Writer   = (*EncryptedStoreProvider)(nil)
)

type cipherSuite interface {
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
	NonceSize() int
}

// NewEncryptedStoreProvider builds a provider using the given store and key.
func NewEncryptedStoreProvider(store iface.Store, key []byte) (*EncryptedStoreProvider, error) {
	if store == nil {
		return nil, fmt.Errorf("encrypted provider: store required")
	}
	if len(key) != chacha20poly1305.KeySize {
		return nil, fmt.Errorf("encrypted provider: key must be %d bytes", chacha20poly1305.KeySize)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	return &EncryptedStoreProvider{
		store: store,
		aead:  aead,
		now:   func() time.Time { return time.Now().UTC() },
	}, nil
}

// Fetch decrypts the latest version stored under name.
func (p *EncryptedStoreProvider) Fetch(ctx context.Context, name string) (string, error) {
	rec, err := p.store.GetLatest(ctx, name)
	if err != nil {
		return "", translateStoreError(err)
	}
	return p.open(rec)
}

// FetchVersion decrypts a specific version.
func (p *EncryptedStoreProvider) FetchVersion(ctx context.Context, name, version string) (string, error) {
	rec, err := p.store.GetVersion(ctx, name, version)
	if err != nil {
		return "", translateStoreError(err)
	}
	return p.open(rec)
}

func (p *EncryptedStoreProvider) Store(ctx context.Context, name, value string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrInvalidName
	}
	if value == "" {
		return "", ErrEmptyValue
	}
	now := p.now()
	nonce := make([]byte, p.aead.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return "", fmt.Errorf("nonce: %w", err)
	}
	rec := iface.Record{
		Name:      name,
		Version:   now.Format(time.RFC3339Nano),
		Cipher:    p.aead.Seal(nil, nonce, []byte(value), []byte(name)),
		Nonce:     nonce,
		Metadata:  map[string]any{"created_at": now},
		CreatedAt: now,
	}
	if err := p.store.Put(ctx, rec); err != nil {
		return "", translateStoreError(err)
	}
	return rec.Version, nil
}

func (p *EncryptedStoreProvider) Remove(ctx context.Context, name string) error {
	return translateStoreError(p.store.Delete(ctx, name))
}

func (p *EncryptedStoreProvider) open(rec iface.Record) (string, error) {
	plain, err := p.aead.Open(nil, rec.Nonce, rec.Cipher, []byte(rec.Name))
	if err != nil {
		return "", fmt.Errorf("decrypt: %w", err)
	}
	return string(plain), nil
}

func translateStoreError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return ErrNotFound
	default:
		return err
	}
}
