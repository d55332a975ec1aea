package secrets

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// EnvProvider resolves secrets from environment variables and admin-managed
// files. Env maps a secret name to a variable name, Files maps it to a path.
// Names missing from both maps fall back to Prefix+NAME and then Dir/name.
type EnvProvider struct {
	Env    map[string]string
	Files  map[string]string
	Prefix string
	Dir    string

	lookup func(string) (string, bool)
}

var _ Provider = (*EnvProvider)(nil)

// NewEnvProvider builds a provider reading from the process environment.
func NewEnvProvider(env, files map[string]string) *EnvProvider {
	return &EnvProvider{Env: env, Files: files, lookup: os.LookupEnv}
}

func (p *EnvProvider) Fetch(_ context.Context, name string) (string, error) {
	if envVar, ok := p.Env[name]; ok {
		lookup := p.lookup
		if lookup == nil {
			lookup = os.LookupEnv
		}
		value, set := lookup(envVar)
		if !set || value == "" {
			return "", fmt.Errorf("secret %q: env var %q is not set: %w", name, envVar, ErrNotFound)
		}
		return value, nil
	}
	if path, ok := p.Files[name]; ok {
		return readSecretFile(path)
	}
	if p.Prefix != "" {
		lookup := p.lookup
		if lookup == nil {
			lookup = os.LookupEnv
		}
		if value, set := lookup(p.Prefix + EnvName(name)); set && value != "" {
			return value, nil
		}
	}
	if p.Dir != "" && !strings.ContainsAny(name, `/\`) && name != ".." {
		return readSecretFile(filepath.Join(p.Dir, name))
	}
	return "", ErrNotFound
}

// EnvName upper-cases name and replaces anything outside [A-Z0-9] with '_'.
func EnvName(name string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z':
			return r - 'a' + 'A'
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, name)
}

func readSecretFile(path string) (string, error) {
	root, err := os.OpenRoot(filepath.Dir(path))
	if err != nil {
		return "", fmt.Errorf("secrets: open dir for %q: %w", path, err)
	}
	defer func() { _ = root.Close() }()

	f, err := root.Open(filepath.Base(path))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("secrets: open %q: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", fmt.Errorf("secrets: read %q: %w", path, err)
	}
	return strings.TrimSpace(string(data)), nil
}
