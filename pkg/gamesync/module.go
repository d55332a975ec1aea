package gamesync

import (
	"context"

	i18n "github.com/goliatone/go-i18n"
	"github.com/goliatone/go-gamesync/internal/di"
	"github.com/goliatone/go-gamesync/pkg/activity"
	"github.com/goliatone/go-gamesync/pkg/auth"
	"github.com/goliatone/go-gamesync/pkg/commands"
	"github.com/goliatone/go-gamesync/pkg/config"
	"github.com/goliatone/go-gamesync/pkg/datasync"
	"github.com/goliatone/go-gamesync/pkg/game"
	blobiface "github.com/goliatone/go-gamesync/pkg/interfaces/blob"
	"github.com/goliatone/go-gamesync/pkg/interfaces/broadcaster"
	identityiface "github.com/goliatone/go-gamesync/pkg/interfaces/identity"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	"github.com/goliatone/go-gamesync/pkg/profile"
	"github.com/goliatone/go-gamesync/pkg/secrets"
	"github.com/goliatone/go-gamesync/pkg/secrets/awssm"
	"github.com/goliatone/go-gamesync/pkg/storage"
	"github.com/goliatone/go-users/pkg/types"
)

// ModuleOptions configure the gamesync module facade.
type ModuleOptions struct {
	Config          config.Config
	Storage         *storage.Providers
	Logger          logger.Logger
	Broadcaster     broadcaster.Broadcaster
	Translator      i18n.Translator
	Activity        []activity.Hook
	ActivitySink    types.ActivitySink
	StaticSecrets   map[string]string
	AWSClient       awssm.Client
	ObjectStore     blobiface.ObjectStore
	IdentityService identityiface.Service
}

// Module bundles the container and exposes high-level accessors.
type Module struct {
	container *di.Container
}

// NewModule assembles stores, clients, services and commands.
func NewModule(ctx context.Context, opts ModuleOptions) (*Module, error) {
	container, err := di.New(ctx, di.Options{
		Config:          opts.Config,
		Storage:         opts.Storage,
		Logger:          opts.Logger,
		Broadcaster:     opts.Broadcaster,
		Translator:      opts.Translator,
		Activity:        opts.Activity,
		ActivitySink:    opts.ActivitySink,
		StaticSecrets:   opts.StaticSecrets,
		AWSClient:       opts.AWSClient,
		ObjectStore:     opts.ObjectStore,
		IdentityService: opts.IdentityService,
	})
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Auth returns the session state machine.
func (m *Module) Auth() *auth.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Auth
}

// Game returns the game state synchronizer.
func (m *Module) Game() *game.Synchronizer {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Game
}

// Profile returns the player profile service.
func (m *Module) Profile() *profile.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Profile
}

// DataSync returns the player data integration service.
func (m *Module) DataSync() *datasync.Service {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.DataSync
}

// Worker returns the queue worker that mirrors player data into documents.
func (m *Module) Worker() *datasync.Worker {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Worker
}

// Commands returns the go-command registry.
func (m *Module) Commands() *commands.Registry {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Commands
}

// Secrets returns the shared credential resolver.
func (m *Module) Secrets() *secrets.Resolver {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Secrets
}

// Config returns the effective module configuration.
func (m *Module) Config() config.Config {
	if m == nil || m.container == nil {
		return config.Config{}
	}
	return m.container.Config
}

// Container returns the internal DI container.
// This is exposed for advanced use cases like direct storage access.
func (m *Module) Container() *di.Container {
	if m == nil {
		return nil
	}
	return m.container
}

// Close releases storage connections.
func (m *Module) Close() error {
	if m == nil {
		return nil
	}
	return m.container.Close()
}
