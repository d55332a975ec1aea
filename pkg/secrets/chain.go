package secrets

import (
	"context"
	"errors"
)

// Chain tries each provider in order and returns the first hit. Only
// ErrNotFound falls through; other errors stop the lookup.
type Chain []Provider

var _ Provider = Chain(nil)

func (c Chain) Fetch(ctx context.Context, name string) (string, error) {
	for _, prov := range c {
		if prov == nil {
			continue
		}
		value, err := prov.Fetch(ctx, name)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", ErrNotFound
}
