package secrets

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	"golang.org/x/sync/singleflight"
)

// Resolver turns a Credential into a concrete secret value, consulting the
// shared Cache before reaching the Provider.
type Resolver struct {
	cache    *Cache
	provider Provider
	logger   logger.Logger
	group    singleflight.Group
}

// ResolverOption customises a Resolver.
type ResolverOption func(*Resolver)

// WithLogger sets the resolver logger.
func WithLogger(lgr logger.Logger) ResolverOption {
	return func(r *Resolver) {
		if lgr != nil {
			r.logger = lgr
		}
	}
}

// NewResolver builds a resolver over the shared cache. A nil cache gets a
// private one with DefaultTTL.
func NewResolver(cache *Cache, provider Provider, opts ...ResolverOption) *Resolver {
	if cache == nil {
		cache = NewCache(DefaultTTL)
	}
	r := &Resolver{
		cache:    cache,
		provider: provider,
		logger:   &logger.Nop{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Cache exposes the shared cache.
func (r *Resolver) Cache() *Cache {
	return r.cache
}

// Resolve returns the literal credential when present, otherwise resolves the
// reference through the cache and provider.
func (r *Resolver) Resolve(ctx context.Context, cred Credential) (string, error) {
	if literal := strings.TrimSpace(cred.Literal); literal != "" {
		return literal, nil
	}
	ref := strings.TrimSpace(cred.Ref)
	if ref == "" {
		return "", ErrNoCredential
	}
	name, ok := ParseReference(ref)
	if !ok {
		r.logger.Warn("secret reference could not be parsed")
		return "", ErrInvalidReference
	}
	return r.ResolveName(ctx, name)
}

// ResolveName returns the secret stored under name. Concurrent lookups for
// the same name share one provider call.
func (r *Resolver) ResolveName(ctx context.Context, name string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrInvalidName
	}
	if value, ok := r.cache.Get(name); ok {
		return value, nil
	}
	if r.provider == nil {
		return "", ErrNoProvider
	}
	value, err, _ := r.group.Do(name, func() (any, error) {
		if cached, ok := r.cache.Get(name); ok {
			return cached, nil
		}
		fetched, err := r.provider.Fetch(ctx, name)
		if err != nil {
			return "", err
		}
		if fetched == "" {
			return "", ErrEmptyValue
		}
		r.cache.Put(name, fetched)
		r.logger.Debug("secret resolved", logger.F("secret_name", name))
		return fetched, nil
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.logger.Warn("secret not found", logger.F("secret_name", name))
			return "", err
		}
		r.logger.Error("secret fetch failed", logger.F("secret_name", name), logger.Err(err))
		return "", fmt.Errorf("secrets: fetch %s: %w", name, err)
	}
	return value.(string), nil
}
