package secrets

import "context"

// NopProvider never has any secret; useful when only literal credentials are used.
type NopProvider struct{}

var _ Provider = NopProvider{}

func (NopProvider) Fetch(context.Context, string) (string, error) {
	return "", ErrNotFound
}
