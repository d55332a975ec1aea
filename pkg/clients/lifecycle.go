package clients

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	"github.com/goliatone/go-gamesync/pkg/secrets"
)

// DefaultTimeout bounds every outbound call made by a client.
const DefaultTimeout = 10 * time.Second

var (
	// ErrUninitialized marks a client whose credential could not be obtained.
	ErrUninitialized = errors.New("clients: uninitialized")
	// ErrTransport wraps failures reported by a backing service.
	ErrTransport = errors.New("clients: transport failure")
)

// InitFunc builds the transport handle once the credential is known.
type InitFunc func(ctx context.Context, credential string) error

// Lifecycle is the two-phase lifecycle shared by credential-bearing clients:
// construction never fails, EnsureReady resolves the credential and builds
// the transport exactly once and memoizes the outcome.
type Lifecycle struct {
	name     string
	cred     secrets.Credential
	resolver *secrets.Resolver
	init     InitFunc
	logger   logger.Logger
	timeout  time.Duration

	once sync.Once
	mu   sync.RWMutex
	err  error
	done bool
}

// Option customises a Lifecycle.
type Option func(*Lifecycle)

// WithLogger sets the logger used for degradation warnings.
func WithLogger(lgr logger.Logger) Option {
	return func(l *Lifecycle) {
		if lgr != nil {
			l.logger = lgr
		}
	}
}

// WithTimeout overrides the per-call timeout; values <= 0 are ignored.
func WithTimeout(d time.Duration) Option {
	return func(l *Lifecycle) {
		if d > 0 {
			l.timeout = d
		}
	}
}

// NewLifecycle prepares a lifecycle; nothing is resolved until EnsureReady.
func NewLifecycle(name string, cred secrets.Credential, resolver *secrets.Resolver, init InitFunc, opts ...Option) *Lifecycle {
	l := &Lifecycle{
		name:     name,
		cred:     cred,
		resolver: resolver,
		init:     init,
		logger:   &logger.Nop{},
		timeout:  DefaultTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(l)
		}
	}
	l.logger = l.logger.With(logger.F("client", name))
	return l
}

// Name returns the client name used in logs.
func (l *Lifecycle) Name() string { return l.name }

// Logger returns the client-scoped logger.
func (l *Lifecycle) Logger() logger.Logger { return l.logger }

// Timeout returns the per-call timeout.
func (l *Lifecycle) Timeout() time.Duration { return l.timeout }

// EnsureReady runs initialization on first use. Later calls return the
// memoized result without retrying; build a new client to retry.
func (l *Lifecycle) EnsureReady(ctx context.Context) error {
	l.once.Do(func() {
		err := l.initialize(ctx)
		l.mu.Lock()
		l.err = err
		l.done = true
		l.mu.Unlock()
		if err != nil {
			l.logger.Warn("client running in uninitialized mode", logger.Err(err))
			return
		}
		l.logger.Debug("client ready")
	})
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.err
}

// Ready reports whether initialization has completed successfully.
func (l *Lifecycle) Ready() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.done && l.err == nil
}

// initialize resolves the credential and opens the transport under the
// per-call timeout.
func (l *Lifecycle) initialize(parent context.Context) error {
	if l.cred.IsZero() {
		return fmt.Errorf("%w: %w", ErrUninitialized, secrets.ErrNoCredential)
	}
	ctx, cancel := context.WithTimeout(parent, l.timeout)
	defer cancel()
	var (
		credential string
		err        error
	)
	if l.resolver != nil {
		credential, err = l.resolver.Resolve(ctx, l.cred)
	} else {
		// literal credentials never need a resolver
		credential, err = secrets.NewResolver(nil, nil).Resolve(ctx, l.cred)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUninitialized, err)
	}
	if l.init == nil {
		return nil
	}
	if err := l.init(ctx, credential); err != nil {
		return fmt.Errorf("%w: %w", ErrUninitialized, err)
	}
	return nil
}

// Do runs fn under the per-call timeout once the client is ready. When the
// client is uninitialized fn is never invoked and the memoized error returned.
func (l *Lifecycle) Do(ctx context.Context, op string, fn func(ctx context.Context) error) error {
	if err := l.EnsureReady(ctx); err != nil {
		l.logger.Warn("operation skipped: client uninitialized", logger.F("operation", op))
		return err
	}
	callCtx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()
	if err := fn(callCtx); err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			return fmt.Errorf("%w: %s timed out after %s: %w", ErrTransport, op, l.timeout, err)
		}
		return err
	}
	return nil
}

// IsUninitialized reports whether err came from a client without credentials.
func IsUninitialized(err error) bool {
	return errors.Is(err, ErrUninitialized)
}
