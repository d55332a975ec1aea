package options

import (
	"strings"
	"testing"

	opts "github.com/goliatone/go-options"
)

var (
	defaultsScope = opts.NewScope("defaults", opts.ScopePrioritySystem, opts.WithScopeLabel("Defaults"))
	explicitScope = opts.NewScope("explicit", opts.ScopePriorityUser, opts.WithScopeLabel("Explicit"))
)

func TestNewResolverMergesSnapshots(t *testing.T) {
	resolver, err := NewResolver(
		Snapshot{
			Scope: defaultsScope,
			Data: map[string]any{
				"game":    map[string]any{"auto_save": true},
				"secrets": map[string]any{"providers": []any{"env"}},
				"worker":  map[string]any{"concurrency": 4, "attempts": 3},
			},
		},
		Snapshot{
			Scope: explicitScope,
			Data: map[string]any{
				"game":    map[string]any{"auto_save": false},
				"secrets": map[string]any{"providers": []string{"env", "aws"}},
				"worker":  map[string]any{"concurrency": float64(8)},
				"app":     map[string]any{"locale": "es"},
			},
		},
	)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}

	autoSave, trace, err := resolver.ResolveBool("game.auto_save")
	if err != nil {
		t.Fatalf("resolve bool: %v", err)
	}
	if autoSave {
		t.Fatalf("expected explicit layer to disable auto save")
	}
	if trace.Path != "game.auto_save" || len(trace.Layers) != 2 {
		t.Fatalf("unexpected trace contents: %+v", trace)
	}

	locale, _, err := resolver.ResolveString("app.locale")
	if err != nil {
		t.Fatalf("resolve string: %v", err)
	}
	if locale != "es" {
		t.Fatalf("expected locale es, got %s", locale)
	}

	providers, _, err := resolver.ResolveStringSlice("secrets.providers")
	if err != nil {
		t.Fatalf("resolve list: %v", err)
	}
	if len(providers) != 2 || providers[1] != "aws" {
		t.Fatalf("providers merge incorrect: %+v", providers)
	}

	concurrency, _, err := resolver.ResolveInt("worker.concurrency")
	if err != nil || concurrency != 8 {
		t.Fatalf("expected concurrency 8, got %d (%v)", concurrency, err)
	}
	attempts, _, err := resolver.ResolveInt("worker.attempts")
	if err != nil || attempts != 3 {
		t.Fatalf("expected attempts to fall through to defaults, got %d (%v)", attempts, err)
	}

	if _, err := resolver.Schema(); err != nil {
		t.Fatalf("schema: %v", err)
	}
}

func TestResolverValuesIsACopy(t *testing.T) {
	resolver, err := NewResolver(Snapshot{
		Scope: defaultsScope,
		Data:  map[string]any{"storage": map[string]any{"dsn": "memory://"}},
	})
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	values := resolver.Values()
	values["storage"].(map[string]any)["dsn"] = "redis://elsewhere"

	dsn, _, err := resolver.ResolveString("storage.dsn")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if dsn != "memory://" {
		t.Fatalf("mutating Values leaked into resolver: %s", dsn)
	}
}

func TestResolverExplainMarksWinningLayer(t *testing.T) {
	resolver, err := NewResolver(
		Snapshot{Scope: defaultsScope, Data: map[string]any{"storage": map[string]any{"dsn": "memory://"}}},
		Snapshot{Scope: explicitScope, Data: map[string]any{"storage": map[string]any{"dsn": "sqlite://game.db"}}},
	)
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	lines, err := resolver.Explain("storage.dsn")
	if err != nil {
		t.Fatalf("explain: %v", err)
	}
	if len(lines) != 2 {
		t.Fatalf("expected two layers, got %v", lines)
	}
	if !strings.HasPrefix(lines[0], "* Explicit") || !strings.Contains(lines[0], "sqlite://game.db") {
		t.Fatalf("expected explicit layer to win, got %q", lines[0])
	}
	if strings.HasPrefix(lines[1], "*") {
		t.Fatalf("only one layer should be marked, got %q", lines[1])
	}
}

func TestNewResolverValidation(t *testing.T) {
	_, err := NewResolver()
	if err != ErrNoSnapshots {
		t.Fatalf("expected ErrNoSnapshots, got %v", err)
	}

	_, err = NewResolver(Snapshot{
		Scope: opts.Scope{},
		Data:  map[string]any{},
	})
	if err == nil {
		t.Fatalf("expected error for missing scope name")
	}

	var nilResolver *Resolver
	if _, _, err := nilResolver.Resolve("storage.dsn"); err == nil {
		t.Fatalf("expected nil resolver to fail")
	}
}
