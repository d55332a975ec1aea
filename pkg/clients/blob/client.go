package blob

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-gamesync/pkg/clients"
	blobiface "github.com/goliatone/go-gamesync/pkg/interfaces/blob"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	"github.com/goliatone/go-gamesync/pkg/secrets"
)

// DefaultSignedURLTTL is the lifetime of URLs produced by SignedURL.
const DefaultSignedURLTTL = 60 * time.Minute

// Config holds object storage settings.
type Config struct {
	// Account is the public storage host, e.g. "acct.blob.example.net".
	Account     string             `mapstructure:"account" json:"account"`
	Container   string             `mapstructure:"container" json:"container"`
	CDNEndpoint string             `mapstructure:"cdn_endpoint" json:"cdn_endpoint"`
	Credential  secrets.Credential `mapstructure:"credential" json:"credential"`
	Timeout     time.Duration      `mapstructure:"timeout" json:"timeout"`
}

// Opener builds the object store once the account key is resolved.
type Opener func(ctx context.Context, cfg Config, accountKey string) (blobiface.ObjectStore, error)

// Client uploads and deletes blobs and maps blob names to public URLs.
type Client struct {
	cfg  Config
	lc   *clients.Lifecycle
	open Opener
	now  func() time.Time

	store blobiface.ObjectStore
	key   []byte
}

// New constructs the client. No I/O happens until the first operation.
func New(cfg Config, resolver *secrets.Resolver, open Opener, opts ...clients.Option) *Client {
	if strings.TrimSpace(cfg.Container) == "" {
		cfg.Container = "avatars"
	}
	c := &Client{cfg: cfg, open: open, now: time.Now}
	if cfg.Timeout > 0 {
		opts = append(opts, clients.WithTimeout(cfg.Timeout))
	}
	c.lc = clients.NewLifecycle("blob", cfg.Credential, resolver, c.init, opts...)
	return c
}

func (c *Client) init(ctx context.Context, accountKey string) error {
	if c.open == nil {
		return errors.New("blob: no object store opener configured")
	}
	store, err := c.open(ctx, c.cfg, accountKey)
	if err != nil {
		return err
	}
	c.store = store
	c.key = []byte(accountKey)
	return nil
}

// EnsureReady resolves the account key and opens the object store.
func (c *Client) EnsureReady(ctx context.Context) error {
	return c.lc.EnsureReady(ctx)
}

// Upload stores data under a generated name and returns its public URL, or
// "" when the client is uninitialized or the upload fails.
func (c *Client) Upload(ctx context.Context, data []byte, contentType, originalName string) string {
	name := BlobName(originalName, c.now())
	err := c.lc.Do(ctx, "upload", func(ctx context.Context) error {
		return c.store.Put(ctx, c.cfg.Container, name, data, contentType)
	})
	if err != nil {
		if !clients.IsUninitialized(err) {
			c.lc.Logger().Error("blob upload failed", logger.F("blob", name), logger.Err(err))
		}
		return ""
	}
	return c.BlobURL(name)
}

// Delete removes the blob addressed by blobURL. It reports false when the
// URL is not one of ours, the client is uninitialized or the delete fails.
func (c *Client) Delete(ctx context.Context, blobURL string) bool {
	name, ok := c.BlobNameFromURL(blobURL)
	if !ok {
		c.lc.Logger().Warn("blob delete skipped: unrecognised url", logger.F("url", blobURL))
		return false
	}
	err := c.lc.Do(ctx, "delete", func(ctx context.Context) error {
		return c.store.Delete(ctx, c.cfg.Container, name)
	})
	if err != nil {
		if !clients.IsUninitialized(err) {
			c.lc.Logger().Error("blob delete failed", logger.F("blob", name), logger.Err(err))
		}
		return false
	}
	return true
}

// BlobURL returns the CDN URL when a CDN endpoint is configured, otherwise
// the direct storage URL.
func (c *Client) BlobURL(name string) string {
	if cdn := c.cdnPrefix(); cdn != "" {
		return cdn + name
	}
	return c.directPrefix() + name
}

// BlobNameFromURL reverses BlobURL for either URL shape, ignoring any query
// string. A CDN endpoint may itself prefix the direct URL, so a match that
// leaves a path is retried against the next shape.
func (c *Client) BlobNameFromURL(raw string) (string, bool) {
	if idx := strings.IndexByte(raw, '?'); idx >= 0 {
		raw = raw[:idx]
	}
	for _, prefix := range []string{c.cdnPrefix(), c.directPrefix()} {
		if prefix == "" || !strings.HasPrefix(raw, prefix) {
			continue
		}
		name := raw[len(prefix):]
		if name == "" || strings.Contains(name, "/") {
			continue
		}
		return name, true
	}
	return "", false
}

func (c *Client) cdnPrefix() string {
	cdn := strings.TrimRight(strings.TrimSpace(c.cfg.CDNEndpoint), "/")
	if cdn == "" {
		return ""
	}
	return cdn + "/"
}

func (c *Client) directPrefix() string {
	account := strings.TrimSpace(c.cfg.Account)
	account = strings.TrimPrefix(strings.TrimPrefix(account, "https://"), "http://")
	account = strings.TrimRight(account, "/")
	return fmt.Sprintf("https://%s/%s/", account, c.cfg.Container)
}
