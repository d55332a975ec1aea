package secrets

import (
	"context"
	"strings"
	"sync"
	"time"
)

// StaticProvider keeps secrets in memory (no encryption). Intended for tests/demo.
type StaticProvider struct {
	mu     sync.RWMutex
	values map[string]string
}

var (
	_ Provider = (*StaticProvider)(nil)
	_ Writer   = (*StaticProvider)(nil)
)

// NewStaticProvider builds an in-memory provider seeded with optional values.
func NewStaticProvider(seed map[string]string) *StaticProvider {
	p := &StaticProvider{values: make(map[string]string, len(seed))}
	for name, value := range seed {
		p.values[name] = value
	}
	return p
}

func (p *StaticProvider) Fetch(_ context.Context, name string) (string, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	value, ok := p.values[name]
	if !ok {
		return "", ErrNotFound
	}
	return value, nil
}

func (p *StaticProvider) Store(_ context.Context, name, value string) (string, error) {
	if strings.TrimSpace(name) == "" {
		return "", ErrInvalidName
	}
	if value == "" {
		return "", ErrEmptyValue
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.values[name] = value
	return time.Now().UTC().Format(time.RFC3339Nano), nil
}

func (p *StaticProvider) Remove(_ context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.values, name)
	return nil
}
