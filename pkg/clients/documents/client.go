package documents

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/goliatone/go-gamesync/pkg/clients"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	"github.com/goliatone/go-gamesync/pkg/interfaces/store"
	"github.com/goliatone/go-gamesync/pkg/secrets"
)

// Config holds record store settings. ConnectionString (literal or secret
// reference) takes precedence over Endpoint+Key.
type Config struct {
	ConnectionString string             `mapstructure:"connection_string" json:"connection_string"`
	Endpoint         string             `mapstructure:"endpoint" json:"endpoint"`
	Key              secrets.Credential `mapstructure:"key" json:"key"`
	Database         string             `mapstructure:"database" json:"database"`
	Collection       string             `mapstructure:"collection" json:"collection"`
	Timeout          time.Duration      `mapstructure:"timeout" json:"timeout"`
}

// Credential picks the credential to resolve for cfg.
func (cfg Config) Credential() secrets.Credential {
	if strings.TrimSpace(cfg.ConnectionString) != "" {
		return secrets.FromValue(cfg.ConnectionString)
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		return secrets.Credential{}
	}
	return cfg.Key
}

// DSN returns the connection string to open: the resolved connection string
// itself, or one assembled from Endpoint and the resolved key.
func (cfg Config) DSN(resolved string) string {
	if strings.TrimSpace(cfg.ConnectionString) != "" {
		return resolved
	}
	return "AccountEndpoint=" + cfg.Endpoint + ";AccountKey=" + resolved + ";"
}

// Opener builds the document store from a resolved connection string.
type Opener func(ctx context.Context, cfg Config, dsn string) (store.DocumentStore, error)

// Client performs document operations. Failures are logged and reported as
// nil/false/empty values.
type Client struct {
	cfg  Config
	lc   *clients.Lifecycle
	open Opener

	store store.DocumentStore
}

// New constructs the client. No I/O happens until the first operation.
func New(cfg Config, resolver *secrets.Resolver, open Opener, opts ...clients.Option) *Client {
	c := &Client{cfg: cfg, open: open}
	if cfg.Timeout > 0 {
		opts = append(opts, clients.WithTimeout(cfg.Timeout))
	}
	c.lc = clients.NewLifecycle("documents", cfg.Credential(), resolver, c.init, opts...)
	return c
}

func (c *Client) init(ctx context.Context, credential string) error {
	if c.open == nil {
		return errors.New("documents: no store opener configured")
	}
	st, err := c.open(ctx, c.cfg, c.cfg.DSN(credential))
	if err != nil {
		return err
	}
	c.store = st
	return nil
}

// EnsureReady resolves the credential and opens the store.
func (c *Client) EnsureReady(ctx context.Context) error {
	return c.lc.EnsureReady(ctx)
}

// Upsert writes doc under id and returns the stored document, or nil.
func (c *Client) Upsert(ctx context.Context, id string, doc store.Document) store.Document {
	var out store.Document
	err := c.lc.Do(ctx, "upsert", func(ctx context.Context) error {
		var err error
		out, err = c.store.Upsert(ctx, id, doc)
		return err
	})
	if err != nil {
		c.logFailure("upsert", id, err)
		return nil
	}
	return out
}

// Read returns the document stored under id, or nil when it is absent or
// the store cannot be reached.
func (c *Client) Read(ctx context.Context, id string) store.Document {
	var out store.Document
	err := c.lc.Do(ctx, "read", func(ctx context.Context) error {
		var err error
		out, err = c.store.Read(ctx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			c.lc.Logger().Debug("document not found", logger.F("id", id))
			return nil
		}
		c.logFailure("read", id, err)
		return nil
	}
	return out
}

// Delete removes the document stored under id.
func (c *Client) Delete(ctx context.Context, id string) bool {
	err := c.lc.Do(ctx, "delete", func(ctx context.Context) error {
		return c.store.Delete(ctx, id)
	})
	if err != nil {
		c.logFailure("delete", id, err)
		return false
	}
	return true
}

// Query returns the documents matching text, a boolean expression over the
// document fields and params. Failures yield an empty slice.
func (c *Client) Query(ctx context.Context, text string, params map[string]any) []store.Document {
	var out []store.Document
	err := c.lc.Do(ctx, "query", func(ctx context.Context) error {
		var err error
		out, err = c.store.Query(ctx, store.Query{Text: text, Params: params})
		return err
	})
	if err != nil {
		c.logFailure("query", text, err)
		return []store.Document{}
	}
	if out == nil {
		out = []store.Document{}
	}
	return out
}

func (c *Client) logFailure(op, subject string, err error) {
	if clients.IsUninitialized(err) {
		return
	}
	c.lc.Logger().Error("documents "+op+" failed", logger.F("subject", subject), logger.Err(err))
}
