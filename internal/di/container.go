package di

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	i18n "github.com/goliatone/go-i18n"
	afsstore "github.com/goliatone/go-gamesync/internal/storage/afs"
	"github.com/goliatone/go-gamesync/internal/identity/local"
	identityrpc "github.com/goliatone/go-gamesync/internal/identity/rpc"
	"github.com/goliatone/go-gamesync/pkg/activity"
	"github.com/goliatone/go-gamesync/pkg/activity/usersink"
	"github.com/goliatone/go-gamesync/pkg/auth"
	"github.com/goliatone/go-gamesync/pkg/clients"
	"github.com/goliatone/go-gamesync/pkg/clients/blob"
	"github.com/goliatone/go-gamesync/pkg/clients/documents"
	"github.com/goliatone/go-gamesync/pkg/clients/identity"
	"github.com/goliatone/go-gamesync/pkg/clients/queue"
	"github.com/goliatone/go-gamesync/pkg/commands"
	"github.com/goliatone/go-gamesync/pkg/config"
	"github.com/goliatone/go-gamesync/pkg/datasync"
	"github.com/goliatone/go-gamesync/pkg/game"
	blobiface "github.com/goliatone/go-gamesync/pkg/interfaces/blob"
	"github.com/goliatone/go-gamesync/pkg/interfaces/broadcaster"
	identityiface "github.com/goliatone/go-gamesync/pkg/interfaces/identity"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	queueiface "github.com/goliatone/go-gamesync/pkg/interfaces/queue"
	"github.com/goliatone/go-gamesync/pkg/interfaces/store"
	"github.com/goliatone/go-gamesync/pkg/profile"
	"github.com/goliatone/go-gamesync/pkg/secrets"
	"github.com/goliatone/go-gamesync/pkg/secrets/awssm"
	"github.com/goliatone/go-gamesync/pkg/storage"
	"github.com/goliatone/go-users/pkg/types"
)

// Options configure the DI container.
type Options struct {
	Config config.Config
	// Storage overrides the providers opened from Config.Storage.DSN.
	Storage     *storage.Providers
	Logger      logger.Logger
	Broadcaster broadcaster.Broadcaster
	Translator  i18n.Translator
	Activity    []activity.Hook
	// ActivitySink forwards activity events into go-users.
	ActivitySink types.ActivitySink
	// StaticSecrets seeds the "static" secret provider.
	StaticSecrets map[string]string
	AWSClient     awssm.Client
	// ObjectStore overrides the afs store built from Config.Blob.BaseURL.
	ObjectStore blobiface.ObjectStore
	// IdentityService overrides the backend selected by Config.Identity.Backend.
	IdentityService identityiface.Service
}

// Container wires stores, secret resolution, clients, services and commands.
type Container struct {
	Config    config.Config
	Storage   storage.Providers
	Logger    logger.Logger
	Cache     *secrets.Cache
	Secrets   *secrets.Resolver
	Blob      *blob.Client
	Documents *documents.Client
	Queue     *queue.Client
	Identity  *identity.Client
	Auth      *auth.Service
	Game      *game.Synchronizer
	Profile   *profile.Service
	DataSync  *datasync.Service
	Worker    *datasync.Worker
	Commands  *commands.Registry

	closers []func() error
}

func isZeroConfig(cfg config.Config) bool {
	return reflect.ValueOf(cfg).IsZero()
}

// New constructs the container using the supplied options. No credential is
// resolved here; clients initialise on first use.
func New(ctx context.Context, opts Options) (*Container, error) {
	cfg := opts.Config
	if isZeroConfig(cfg) {
		cfg = config.Defaults()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	lgr := opts.Logger
	if lgr == nil {
		lgr = logger.NewWithWriter(os.Stderr, logger.ParseLevel(cfg.App.LogLevel))
	}
	b := broadcaster.NewFanout(broadcaster.NewLogging(lgr.With(logger.F("component", "state"))), opts.Broadcaster)

	c := &Container{Config: cfg, Logger: lgr}

	if opts.Storage != nil {
		c.Storage = *opts.Storage
	} else {
		providers, err := storage.Open(ctx, cfg.Storage.DSN,
			storage.WithRedisPrefix(cfg.Storage.RedisPrefix),
			storage.WithQueueName(cfg.Queue.Name),
		)
		if err != nil {
			return nil, err
		}
		c.Storage = providers
		c.closers = append(c.closers, providers.Close)
	}

	provider, err := secretProviders(cfg.Secrets, c.Storage, opts, lgr)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Cache = secrets.NewCache(cfg.Secrets.CacheTTL)
	c.Secrets = secrets.NewResolver(c.Cache, provider, secrets.WithLogger(lgr.With(logger.F("component", "secrets"))))

	clientOpts := []clients.Option{clients.WithLogger(lgr), clients.WithTimeout(cfg.Timeouts.Call)}

	objectStore := opts.ObjectStore
	c.Blob = blob.New(blob.Config{
		Account:     cfg.Blob.Account,
		Container:   cfg.Blob.Container,
		CDNEndpoint: cfg.Blob.CDNEndpoint,
		Credential:  secrets.FromValue(cfg.Blob.Credential),
	}, c.Secrets, func(_ context.Context, _ blob.Config, _ string) (blobiface.ObjectStore, error) {
		if objectStore != nil {
			return objectStore, nil
		}
		baseURL := cfg.Blob.BaseURL
		if baseURL == "" {
			baseURL = "file://" + filepath.ToSlash(filepath.Join(os.TempDir(), "gamesync-blobs"))
		}
		return afsstore.NewObjectStore(nil, baseURL)
	}, clientOpts...)

	docs := c.Storage.Documents
	c.Documents = documents.New(documents.Config{
		ConnectionString: cfg.Documents.ConnectionString,
		Endpoint:         cfg.Documents.Endpoint,
		Key:              secrets.FromValue(cfg.Documents.Key),
		Database:         cfg.Documents.Database,
		Collection:       cfg.Documents.Collection,
	}, c.Secrets, func(_ context.Context, _ documents.Config, dsn string) (store.DocumentStore, error) {
		if strings.TrimSpace(dsn) == "" {
			return nil, errors.New("documents: empty connection string")
		}
		return docs, nil
	}, clientOpts...)

	q := c.Storage.Queue
	c.Queue = queue.New(queue.Config{
		Credential: secrets.FromValue(cfg.Queue.Credential),
		QueueName:  cfg.Queue.Name,
	}, c.Secrets, func(_ context.Context, _ queue.Config, connection string) (queueiface.Queue, error) {
		if strings.TrimSpace(connection) == "" {
			return nil, errors.New("queue: empty connection string")
		}
		return q, nil
	}, clientOpts...)

	c.Identity = identity.New(identity.Config{
		TitleID:    cfg.Identity.TitleID,
		Credential: secrets.FromValue(cfg.Identity.Credential),
	}, c.Secrets, identityOpener(cfg.Identity, c.Storage.Users, opts.IdentityService), clientOpts...)

	hooks := append([]activity.Hook(nil), opts.Activity...)
	if opts.ActivitySink != nil {
		hooks = append(hooks, usersink.Hook{Sink: opts.ActivitySink})
	}
	playerID := func() string { return c.Identity.Session().UserID }

	messages, err := auth.NewMessages(opts.Translator, cfg.App.Locale)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Auth, err = auth.NewService(c.Identity,
		auth.WithSessionHolders(c.Identity),
		auth.WithMessages(messages),
		auth.WithLogger(lgr.With(logger.F("component", "auth"))),
		auth.WithBroadcaster(b),
		auth.WithActivity(hooks...),
	)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	c.Game = game.NewSynchronizer(c.Identity,
		game.WithAutoSave(cfg.Game.AutoSave),
		game.WithLogger(lgr.With(logger.F("component", "game"))),
		game.WithBroadcaster(b),
		game.WithActivity(hooks...),
		game.WithPlayerID(playerID),
	)

	c.Profile = profile.NewService(c.Identity, c.Blob,
		profile.WithPlaceholder(cfg.App.AvatarPlaceholder),
		profile.WithMaxAvatarBytes(cfg.App.AvatarMaxBytes),
		profile.WithDisplayNameFallback(func() string { return c.Identity.Session().DisplayName }),
		profile.WithPlayerID(playerID),
		profile.WithLogger(lgr.With(logger.F("component", "profile"))),
		profile.WithActivity(hooks...),
	)

	c.DataSync = datasync.NewService(c.Identity, c.Queue,
		datasync.WithLogger(lgr.With(logger.F("component", "datasync"))),
		datasync.WithActivity(hooks...),
	)
	c.Worker = datasync.NewWorker(c.Documents,
		datasync.WithWorkerLogger(lgr.With(logger.F("component", "worker"))),
		datasync.WithRetry(cfg.Worker.Attempts, nil),
		datasync.WithConcurrency(cfg.Worker.Concurrency),
	)

	c.Commands, err = commands.New(commands.Dependencies{
		Auth:    c.Auth,
		Game:    c.Game,
		Profile: c.Profile,
		Data:    c.DataSync,
		Worker:  c.Worker,
		Logger:  lgr,
	})
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return c, nil
}

// Close releases storage connections opened by New.
func (c *Container) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	for _, fn := range c.closers {
		if err := fn(); err != nil {
			errs = append(errs, err)
		}
	}
	c.closers = nil
	return errors.Join(errs...)
}

func identityOpener(cfg config.IdentityConfig, users store.UserRepository, override identityiface.Service) identity.Opener {
	return func(ctx context.Context, _ identity.Config, titleSecret string) (identityiface.Service, error) {
		if override != nil {
			return override, nil
		}
		switch cfg.Backend {
		case "rpc":
			return identityrpc.Dial(ctx, cfg.Endpoint)
		default:
			// The title secret signs local session tokens.
			return local.New(users, titleSecret)
		}
	}
}

func secretProviders(cfg config.SecretsConfig, providers storage.Providers, opts Options, lgr logger.Logger) (secrets.Provider, error) {
	chain := make(secrets.Chain, 0, len(cfg.Providers))
	for _, name := range cfg.Providers {
		switch name {
		case "env":
			env := secrets.NewEnvProvider(nil, nil)
			env.Prefix = cfg.EnvPrefix
			env.Dir = cfg.FilesDir
			chain = append(chain, env)
		case "static":
			chain = append(chain, secrets.NewStaticProvider(opts.StaticSecrets))
		case "aws":
			chain = append(chain, awssm.New(lgr,
				awssm.WithConfig(awssm.Config{Region: cfg.AWSRegion, Prefix: cfg.AWSPrefix}),
				awssm.WithClient(opts.AWSClient),
			))
		case "encrypted":
			key, err := decodeMasterKey(cfg.MasterKey)
			if err != nil {
				return nil, err
			}
			enc, err := secrets.NewEncryptedStoreProvider(providers.Secrets, key)
			if err != nil {
				return nil, err
			}
			chain = append(chain, enc)
		default:
			return nil, fmt.Errorf("di: unknown secret provider %q", name)
		}
	}
	if len(chain) == 0 {
		return secrets.NopProvider{}, nil
	}
	return chain, nil
}

// decodeMasterKey accepts a base64 encoded 32 byte key.
func decodeMasterKey(raw string) ([]byte, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, errors.New("di: secrets.master_key is required for the encrypted provider")
	}
	key, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("di: secrets.master_key: %w", err)
	}
	return key, nil
}
