package clients

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/goliatone/go-gamesync/pkg/secrets"
)

type recordingInit struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingInit) init(_ context.Context, credential string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, credential)
	return r.err
}

func TestLifecycleLiteralCredential(t *testing.T) {
	rec := &recordingInit{}
	lc := NewLifecycle("blob", secrets.Credential{Literal: "key"}, nil, rec.init)

	if err := lc.EnsureReady(context.Background()); err != nil {
		t.Fatalf("ensure ready: %v", err)
	}
	if !lc.Ready() {
		t.Fatalf("expected ready")
	}
	if len(rec.calls) != 1 || rec.calls[0] != "key" {
		t.Fatalf("unexpected init calls %v", rec.calls)
	}
}

func TestLifecycleResolvesReferenceOnce(t *testing.T) {
	fetches := 0
	prov := secrets.ProviderFunc(func(_ context.Context, name string) (string, error) {
		fetches++
		return "resolved-" + name, nil
	})
	resolver := secrets.NewResolver(secrets.NewCache(0), prov)
	rec := &recordingInit{}
	lc := NewLifecycle("queue", secrets.Credential{Ref: "@Provider(SecretUri=https://v/secrets/queue-key/1)"}, resolver, rec.init)

	for i := 0; i < 3; i++ {
		if err := lc.EnsureReady(context.Background()); err != nil {
			t.Fatalf("ensure ready: %v", err)
		}
	}
	if fetches != 1 || len(rec.calls) != 1 || rec.calls[0] != "resolved-queue-key" {
		t.Fatalf("expected single resolution, fetches=%d calls=%v", fetches, rec.calls)
	}
}

func TestLifecycleWithoutCredentialIsUninitialized(t *testing.T) {
	rec := &recordingInit{}
	lc := NewLifecycle("documents", secrets.Credential{}, nil, rec.init)

	err := lc.EnsureReady(context.Background())
	if !IsUninitialized(err) || !errors.Is(err, secrets.ErrNoCredential) {
		t.Fatalf("expected uninitialized/no credential, got %v", err)
	}
	called := false
	if err := lc.Do(context.Background(), "read", func(context.Context) error { called = true; return nil }); !IsUninitialized(err) {
		t.Fatalf("expected uninitialized from Do, got %v", err)
	}
	if called || len(rec.calls) != 0 {
		t.Fatalf("no network work should happen in uninitialized mode")
	}
}

func TestLifecycleFailureIsNotRetried(t *testing.T) {
	rec := &recordingInit{err: errors.New("dial failed")}
	lc := NewLifecycle("blob", secrets.Credential{Literal: "key"}, nil, rec.init)

	first := lc.EnsureReady(context.Background())
	rec.err = nil
	second := lc.EnsureReady(context.Background())
	if !IsUninitialized(first) || !IsUninitialized(second) {
		t.Fatalf("expected memoized failure, got %v / %v", first, second)
	}
	if len(rec.calls) != 1 {
		t.Fatalf("expected one init attempt, got %d", len(rec.calls))
	}
}

func TestLifecycleMalformedReferenceDegrades(t *testing.T) {
	lc := NewLifecycle("blob", secrets.Credential{Ref: "@Provider(garbage"}, secrets.NewResolver(nil, secrets.NopProvider{}), nil)
	err := lc.EnsureReady(context.Background())
	if !IsUninitialized(err) || !errors.Is(err, secrets.ErrInvalidReference) {
		t.Fatalf("expected invalid reference, got %v", err)
	}
}

func TestLifecycleDoAppliesTimeout(t *testing.T) {
	lc := NewLifecycle("blob", secrets.Credential{Literal: "key"}, nil, nil, WithTimeout(10*time.Millisecond))
	err := lc.Do(context.Background(), "upload", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	if !errors.Is(err, ErrTransport) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected timeout transport error, got %v", err)
	}
}

func TestLifecycleInitializationIsBounded(t *testing.T) {
	prov := secrets.ProviderFunc(func(ctx context.Context, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	resolver := secrets.NewResolver(secrets.NewCache(0), prov)
	rec := &recordingInit{}
	lc := NewLifecycle("documents", secrets.Credential{Ref: "@Provider(SecretUri=https://v/secrets/docs-key/1)"}, resolver, rec.init, WithTimeout(20*time.Millisecond))

	done := make(chan error, 1)
	go func() { done <- lc.EnsureReady(context.Background()) }()
	select {
	case err := <-done:
		if !IsUninitialized(err) || !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected uninitialized deadline error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("secret fetch was not bounded by the client timeout")
	}
	if len(rec.calls) != 0 {
		t.Fatalf("transport opened without a credential: %v", rec.calls)
	}
}

func TestLifecycleTransportOpenIsBounded(t *testing.T) {
	lc := NewLifecycle("identity", secrets.Credential{Literal: "key"}, nil, func(ctx context.Context, _ string) error {
		<-ctx.Done()
		return ctx.Err()
	}, WithTimeout(20*time.Millisecond))

	if err := lc.EnsureReady(context.Background()); !IsUninitialized(err) || !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected uninitialized deadline error, got %v", err)
	}
}
