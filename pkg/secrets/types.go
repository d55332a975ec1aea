package secrets

import (
	"context"
	"strings"
	"time"
)

// Provider fetches a secret value by name from a backing secret store.
type Provider interface {
	Fetch(ctx context.Context, name string) (string, error)
}

// Writer is implemented by providers that can also persist secrets.
type Writer interface {
	Store(ctx context.Context, name, value string) (string, error)
	Remove(ctx context.Context, name string) error
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func(ctx context.Context, name string) (string, error)

func (f ProviderFunc) Fetch(ctx context.Context, name string) (string, error) {
	return f(ctx, name)
}

// Credential is the credential portion of a client configuration. Literal
// wins over Ref when both are set.
type Credential struct {
	Literal string `mapstructure:"literal" json:"literal,omitempty"`
	Ref     string `mapstructure:"ref" json:"ref,omitempty"`
}

// IsZero reports whether neither a literal nor a reference is configured.
func (c Credential) IsZero() bool {
	return strings.TrimSpace(c.Literal) == "" && strings.TrimSpace(c.Ref) == ""
}

// FromValue classifies a raw configuration value as either a reference or a
// literal credential.
func FromValue(raw string) Credential {
	raw = strings.TrimSpace(raw)
	if IsReference(raw) {
		return Credential{Ref: raw}
	}
	return Credential{Literal: raw}
}

// Entry is a resolved secret held by the Cache.
type Entry struct {
	Name       string
	Value      string
	ResolvedAt time.Time
}
