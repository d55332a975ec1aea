package commands

import (
	command "github.com/goliatone/go-command"
	internalcommands "github.com/goliatone/go-gamesync/internal/commands"
	"github.com/goliatone/go-gamesync/pkg/auth"
	"github.com/goliatone/go-gamesync/pkg/datasync"
	"github.com/goliatone/go-gamesync/pkg/game"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	"github.com/goliatone/go-gamesync/pkg/profile"
)

// Re-export request types so consumers need not import internal packages.
type (
	Login            = internalcommands.Login
	Register         = internalcommands.Register
	Logout           = internalcommands.Logout
	LoadGame         = internalcommands.LoadGame
	StartGame        = internalcommands.StartGame
	EndGame          = internalcommands.EndGame
	AddScore         = internalcommands.AddScore
	LevelUp          = internalcommands.LevelUp
	UpdateProfile    = internalcommands.UpdateProfile
	UploadAvatar     = internalcommands.UploadAvatar
	SyncPlayerData   = internalcommands.SyncPlayerData
	DeletePlayerData = internalcommands.DeletePlayerData
	ProcessMessage   = internalcommands.ProcessMessage
)

var (
	ErrSyncFailed    = internalcommands.ErrSyncFailed
	ErrMissingPlayer = internalcommands.ErrMissingPlayer
)

// Registry exposes go-command compatible handlers backed by the module services.
type Registry struct {
	Catalog          *internalcommands.Catalog
	Login            command.Commander[Login]
	Register         command.Commander[Register]
	Logout           command.Commander[Logout]
	LoadGame         command.Commander[LoadGame]
	StartGame        command.Commander[StartGame]
	EndGame          command.Commander[EndGame]
	AddScore         command.Commander[AddScore]
	LevelUp          command.Commander[LevelUp]
	UpdateProfile    command.Commander[UpdateProfile]
	UploadAvatar     command.Commander[UploadAvatar]
	SyncPlayerData   command.Commander[SyncPlayerData]
	DeletePlayerData command.Commander[DeletePlayerData]
	ProcessMessage   command.Commander[ProcessMessage]
}

// Dependencies mirror the internal command dependencies but keep them public.
type Dependencies struct {
	Auth    *auth.Service
	Game    *game.Synchronizer
	Profile *profile.Service
	Data    *datasync.Service
	Worker  *datasync.Worker
	Logger  logger.Logger
}

// New builds the registry using the provided dependencies.
func New(deps Dependencies) (*Registry, error) {
	internalDeps := internalcommands.Dependencies{Logger: deps.Logger}
	// Typed nil pointers must not become non-nil interfaces.
	if deps.Auth != nil {
		internalDeps.Auth = deps.Auth
	}
	if deps.Game != nil {
		internalDeps.Game = deps.Game
	}
	if deps.Profile != nil {
		internalDeps.Profile = deps.Profile
	}
	if deps.Data != nil {
		internalDeps.Data = deps.Data
	}
	if deps.Worker != nil {
		internalDeps.Worker = deps.Worker
	}
	catalog, err := internalcommands.NewCatalog(internalDeps)
	if err != nil {
		return nil, err
	}
	return &Registry{
		Catalog:          catalog,
		Login:            catalog.Login,
		Register:         catalog.Register,
		Logout:           catalog.Logout,
		LoadGame:         catalog.LoadGame,
		StartGame:        catalog.StartGame,
		EndGame:          catalog.EndGame,
		AddScore:         catalog.AddScore,
		LevelUp:          catalog.LevelUp,
		UpdateProfile:    catalog.UpdateProfile,
		UploadAvatar:     catalog.UploadAvatar,
		SyncPlayerData:   catalog.SyncPlayerData,
		DeletePlayerData: catalog.DeletePlayerData,
		ProcessMessage:   catalog.ProcessMessage,
	}, nil
}

// Commanders returns every configured handler so callers can register them
// with go-command registries.
func (r *Registry) Commanders() []any {
	if r == nil {
		return nil
	}
	all := []any{
		r.Login,
		r.Register,
		r.Logout,
		r.LoadGame,
		r.StartGame,
		r.EndGame,
		r.AddScore,
		r.LevelUp,
		r.UpdateProfile,
		r.UploadAvatar,
		r.SyncPlayerData,
		r.DeletePlayerData,
		r.ProcessMessage,
	}
	out := all[:0]
	for _, c := range all {
		if c != nil {
			out = append(out, c)
		}
	}
	return out
}
