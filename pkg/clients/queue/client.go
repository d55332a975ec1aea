package queue

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-gamesync/pkg/clients"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	queueiface "github.com/goliatone/go-gamesync/pkg/interfaces/queue"
	"github.com/goliatone/go-gamesync/pkg/secrets"
)

// Config holds message queue settings.
type Config struct {
	Credential secrets.Credential `mapstructure:"credential" json:"credential"`
	QueueName  string             `mapstructure:"queue_name" json:"queue_name"`
	Timeout    time.Duration      `mapstructure:"timeout" json:"timeout"`
}

// DefaultQueueName is used when Config.QueueName is empty.
const DefaultQueueName = "player-data"

// Opener connects to the queue once the connection string is resolved.
type Opener func(ctx context.Context, cfg Config, connection string) (queueiface.Queue, error)

// Client sends fire-and-forget messages. Bodies are base64 encoded JSON.
type Client struct {
	cfg  Config
	lc   *clients.Lifecycle
	open Opener
	now  func() time.Time

	queue queueiface.Queue
}

// New constructs the client. No I/O happens until the first operation.
func New(cfg Config, resolver *secrets.Resolver, open Opener, opts ...clients.Option) *Client {
	if cfg.QueueName == "" {
		cfg.QueueName = DefaultQueueName
	}
	c := &Client{cfg: cfg, open: open, now: time.Now}
	if cfg.Timeout > 0 {
		opts = append(opts, clients.WithTimeout(cfg.Timeout))
	}
	c.lc = clients.NewLifecycle("queue", cfg.Credential, resolver, c.init, opts...)
	return c
}

func (c *Client) init(ctx context.Context, connection string) error {
	if c.open == nil {
		return errors.New("queue: no opener configured")
	}
	q, err := c.open(ctx, c.cfg, connection)
	if err != nil {
		return err
	}
	c.queue = q
	return nil
}

// EnsureReady resolves the connection string and opens the queue.
func (c *Client) EnsureReady(ctx context.Context) error {
	return c.lc.EnsureReady(ctx)
}

// Enqueue serializes msg and sends it. It reports false when the client is
// uninitialized or the send fails.
func (c *Client) Enqueue(ctx context.Context, msg any) bool {
	body, err := Encode(msg)
	if err != nil {
		c.lc.Logger().Error("queue message encode failed", logger.Err(err))
		return false
	}
	err = c.lc.Do(ctx, "enqueue", func(ctx context.Context) error {
		return c.queue.Enqueue(ctx, queueiface.Message{Body: body, EnqueuedAt: c.now().UTC()})
	})
	if err != nil {
		if !clients.IsUninitialized(err) {
			c.lc.Logger().Error("queue enqueue failed", logger.F("queue", c.cfg.QueueName), logger.Err(err))
		}
		return false
	}
	return true
}

// EnqueuePlayerDataOperation sends a player data operation stamped with the
// current time.
func (c *Client) EnqueuePlayerDataOperation(ctx context.Context, op Operation, playerID string, data map[string]any) bool {
	return c.Enqueue(ctx, PlayerDataOperation{
		Operation: op,
		PlayerID:  playerID,
		Data:      data,
		Timestamp: c.now().UTC(),
	})
}

// Encode returns base64(JSON(msg)).
func Encode(msg any) (string, error) {
	raw, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("queue: marshal: %w", err)
	}
	return base64.StdEncoding.EncodeToString(raw), nil
}

// Decode reverses Encode into out.
func Decode(body string, out any) error {
	raw, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return fmt.Errorf("queue: decode base64: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("queue: unmarshal: %w", err)
	}
	return nil
}
