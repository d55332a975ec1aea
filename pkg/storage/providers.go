package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"

	bunrepo "github.com/goliatone/go-gamesync/internal/storage/bun"
	"github.com/goliatone/go-gamesync/internal/storage/memory"
	redisstore "github.com/goliatone/go-gamesync/internal/storage/redis"
	"github.com/goliatone/go-gamesync/pkg/domain"
	"github.com/goliatone/go-gamesync/pkg/interfaces/queue"
	secretsiface "github.com/goliatone/go-gamesync/pkg/interfaces/secrets"
	"github.com/goliatone/go-gamesync/pkg/interfaces/store"
	"github.com/goliatone/go-gamesync/pkg/secrets"
	persistence "github.com/goliatone/go-persistence-bun"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// ErrUnsupportedDSN is returned by Open for unknown schemes.
var ErrUnsupportedDSN = errors.New("storage: unsupported dsn")

// Queue is both ends of the player data queue.
type Queue interface {
	queue.Queue
	queue.Receiver
}

// Providers exposes every store the services need.
type Providers struct {
	Users     store.UserRepository
	Documents store.DocumentStore
	Queue     Queue
	Secrets   secretsiface.Store
	closers   []func() error
}

// Close releases backend connections.
func (p Providers) Close() error {
	var errs []error
	for _, c := range p.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type Option func(*openOptions)

type openOptions struct {
	redisPrefix string
	queueName   string
}

// WithRedisPrefix namespaces redis keys.
func WithRedisPrefix(prefix string) Option {
	return func(o *openOptions) { o.redisPrefix = prefix }
}

// WithQueueName names the redis list backing the queue.
func WithQueueName(name string) Option {
	return func(o *openOptions) { o.queueName = name }
}

// NewMemoryProviders returns stores backed by in-memory maps.
func NewMemoryProviders() Providers {
	return Providers{
		Users:     memory.NewUserRepository(),
		Documents: memory.NewDocumentStore(),
		Queue:     memory.NewQueue(),
		Secrets:   secrets.NewMemoryStore(),
	}
}

// NewBunProviders wires Bun-backed repositories using go-repository-bun.
// The caller owns the *bun.DB. Bun has no queue, so an in-memory one is used.
func NewBunProviders(db *bun.DB) Providers {
	if db == nil {
		panic("storage: bun DB is required")
	}
	return Providers{
		Users:     bunrepo.NewUserRepository(db),
		Documents: bunrepo.NewDocumentStore(db),
		Queue:     memory.NewQueue(),
		Secrets:   bunrepo.NewSecretStore(db),
	}
}

// NewRedisProviders keeps documents and the queue in redis. Accounts and
// secrets need relational lookups and stay in memory.
func NewRedisProviders(rdb redisstore.Client, prefix, queueName string) Providers {
	return Providers{
		Users:     memory.NewUserRepository(),
		Documents: redisstore.NewDocumentStore(rdb, prefix),
		Queue:     redisstore.NewQueue(rdb, prefix, queueName),
		Secrets:   secrets.NewMemoryStore(),
	}
}

// Models lists the tables go-persistence-bun migrations manage.
func Models() []any {
	return []any{
		(*domain.User)(nil),
		(*domain.UserDataEntry)(nil),
		(*domain.PlayerDocument)(nil),
		bunrepo.SecretModel(),
	}
}

// Migrate creates missing tables.
func Migrate(ctx context.Context, db *bun.DB) error {
	for _, model := range Models() {
		if _, err := db.NewCreateTable().Model(model).IfNotExists().Exec(ctx); err != nil {
			return fmt.Errorf("storage: create table: %w", err)
		}
	}
	return nil
}

// Open selects a backend from the DSN scheme: memory://, sqlite://<path>
// (or a bare file: DSN) and redis://.
func Open(ctx context.Context, dsn string, opts ...Option) (Providers, error) {
	o := openOptions{redisPrefix: "gamesync:", queueName: "player-data"}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	switch {
	case dsn == "" || strings.HasPrefix(dsn, "memory:"):
		return NewMemoryProviders(), nil
	case strings.HasPrefix(dsn, "sqlite://"), strings.HasPrefix(dsn, "file:"):
		db, err := OpenSQLite(ctx, strings.TrimPrefix(dsn, "sqlite://"))
		if err != nil {
			return Providers{}, err
		}
		p := NewBunProviders(db)
		p.closers = append(p.closers, db.Close)
		return p, nil
	case strings.HasPrefix(dsn, "redis://"), strings.HasPrefix(dsn, "rediss://"):
		rdb, err := redisstore.Dial(ctx, dsn)
		if err != nil {
			return Providers{}, err
		}
		p := NewRedisProviders(rdb, o.redisPrefix, o.queueName)
		p.closers = append(p.closers, rdb.Close)
		return p, nil
	default:
		return Providers{}, fmt.Errorf("%w: %s", ErrUnsupportedDSN, redact(dsn))
	}
}

// OpenSQLite opens a bun DB over sqliteshim and migrates it.
func OpenSQLite(ctx context.Context, dsn string) (*bun.DB, error) {
	persistence.RegisterModel(Models()...)

	sqldb, err := sql.Open(sqliteshim.DriverName(), dsn)
	if err != nil {
		return nil, fmt.Errorf("storage: open sqlite: %w", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func redact(dsn string) string {
	u, err := url.Parse(dsn)
	if err != nil || u.Scheme == "" {
		return "<invalid>"
	}
	return u.Scheme + "://..."
}
