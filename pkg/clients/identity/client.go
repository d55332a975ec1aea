package identity

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/goliatone/go-gamesync/pkg/clients"
	identityiface "github.com/goliatone/go-gamesync/pkg/interfaces/identity"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	"github.com/goliatone/go-gamesync/pkg/secrets"
)

// ErrAuthenticationRequired is returned by record operations attempted
// without a session.
var ErrAuthenticationRequired = errors.New("identity: authentication required")

// Config holds identity service settings.
type Config struct {
	TitleID    string             `mapstructure:"title_id" json:"title_id"`
	Credential secrets.Credential `mapstructure:"credential" json:"credential"`
	Timeout    time.Duration      `mapstructure:"timeout" json:"timeout"`
}

// Opener builds the identity service once the title secret is resolved.
type Opener func(ctx context.Context, cfg Config, titleSecret string) (identityiface.Service, error)

// Client talks to the identity provider and owns the player's session.
type Client struct {
	cfg  Config
	lc   *clients.Lifecycle
	open Opener

	svc identityiface.Service

	mu      sync.RWMutex
	session identityiface.Session
}

// New constructs the client. No I/O happens until the first operation.
func New(cfg Config, resolver *secrets.Resolver, open Opener, opts ...clients.Option) *Client {
	c := &Client{cfg: cfg, open: open}
	if cfg.Timeout > 0 {
		opts = append(opts, clients.WithTimeout(cfg.Timeout))
	}
	c.lc = clients.NewLifecycle("identity", cfg.Credential, resolver, c.init, opts...)
	return c
}

func (c *Client) init(ctx context.Context, titleSecret string) error {
	if c.open == nil {
		return errors.New("identity: no service opener configured")
	}
	svc, err := c.open(ctx, c.cfg, titleSecret)
	if err != nil {
		return err
	}
	c.svc = svc
	return nil
}

// EnsureReady resolves the title secret and builds the service handle.
func (c *Client) EnsureReady(ctx context.Context) error {
	return c.lc.EnsureReady(ctx)
}

// Login authenticates and stores the resulting session. Errors propagate.
func (c *Client) Login(ctx context.Context, email, password string) (identityiface.Session, error) {
	var session identityiface.Session
	err := c.lc.Do(ctx, "login", func(ctx context.Context) error {
		var err error
		session, err = c.svc.Login(ctx, email, password)
		return err
	})
	if err != nil {
		return identityiface.Session{}, err
	}
	c.SetSession(session)
	return session, nil
}

// Register creates an account and stores the resulting session. Errors propagate.
func (c *Client) Register(ctx context.Context, email, password, displayName string) (identityiface.Session, error) {
	var session identityiface.Session
	err := c.lc.Do(ctx, "register", func(ctx context.Context) error {
		var err error
		session, err = c.svc.Register(ctx, email, password, displayName)
		return err
	})
	if err != nil {
		return identityiface.Session{}, err
	}
	c.SetSession(session)
	return session, nil
}

// GetUserData reads keys from the player record. All keys are returned when
// none are given. Transport failures yield an empty map.
func (c *Client) GetUserData(ctx context.Context, keys ...string) (map[string]string, error) {
	token := c.SessionToken()
	if token == "" {
		return nil, ErrAuthenticationRequired
	}
	var out map[string]string
	err := c.lc.Do(ctx, "get_user_data", func(ctx context.Context) error {
		var err error
		out, err = c.svc.GetUserData(ctx, token, keys)
		return err
	})
	if err != nil {
		if errors.Is(err, identityiface.ErrInvalidSession) {
			return nil, ErrAuthenticationRequired
		}
		c.logFailure("get_user_data", err)
		return map[string]string{}, nil
	}
	if out == nil {
		out = map[string]string{}
	}
	return out, nil
}

// UpdateUserData merges data into the player record and returns the new
// data version, or 0 when the write could not be delivered.
func (c *Client) UpdateUserData(ctx context.Context, data map[string]string) (int, error) {
	token := c.SessionToken()
	if token == "" {
		return 0, ErrAuthenticationRequired
	}
	var version int
	err := c.lc.Do(ctx, "update_user_data", func(ctx context.Context) error {
		var err error
		version, err = c.svc.UpdateUserData(ctx, token, data)
		return err
	})
	if err != nil {
		if errors.Is(err, identityiface.ErrInvalidSession) {
			return 0, ErrAuthenticationRequired
		}
		c.logFailure("update_user_data", err)
		return 0, nil
	}
	return version, nil
}

// SetSession installs session as the current session.
func (c *Client) SetSession(session identityiface.Session) {
	c.mu.Lock()
	c.session = session
	c.mu.Unlock()
}

// ClearSession drops the current session; record operations then fail with
// ErrAuthenticationRequired.
func (c *Client) ClearSession() {
	c.mu.Lock()
	c.session = identityiface.Session{}
	c.mu.Unlock()
}

// SessionToken returns the current token, or "".
func (c *Client) SessionToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session.Token
}

// Session returns the current session.
func (c *Client) Session() identityiface.Session {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.session
}

func (c *Client) logFailure(op string, err error) {
	if clients.IsUninitialized(err) {
		return
	}
	c.lc.Logger().Error("identity "+op+" failed", logger.F("title_id", c.cfg.TitleID), logger.Err(err))
}
