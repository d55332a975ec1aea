package commands

import (
	"context"
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-gamesync/pkg/auth"
	"github.com/goliatone/go-gamesync/pkg/game"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
	"github.com/goliatone/go-gamesync/pkg/profile"
)

var (
	// ErrSyncFailed reports that player data could not be stored or queued.
	ErrSyncFailed = errors.New("commands: player data sync failed")
	// ErrMissingPlayer reports an empty player id.
	ErrMissingPlayer = errors.New("commands: player id is required")
)

// Catalog exposes go-command compatible handlers for host transports.
type Catalog struct {
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

type authService interface {
	Login(ctx context.Context, email, password string) (auth.State, error)
	Register(ctx context.Context, in auth.RegisterInput) (auth.State, error)
	Logout(ctx context.Context)
}

type gameService interface {
	Load(ctx context.Context) error
	Start(ctx context.Context) game.State
	End(ctx context.Context) game.State
	AddScore(ctx context.Context, points int) game.State
	LevelUp(ctx context.Context) game.State
}

type profileService interface {
	Update(ctx context.Context, p profile.Profile) (int, error)
	UploadAvatar(ctx context.Context, data []byte, contentType, name string) (string, error)
}

type dataService interface {
	SyncPlayerData(ctx context.Context, playerID string, data map[string]any) bool
	DeletePlayerData(ctx context.Context, playerID string) bool
}

type messageProcessor interface {
	Process(ctx context.Context, body string) error
}

// Dependencies wires services into the command catalog. Auth is required;
// handlers for absent services are left nil.
type Dependencies struct {
	Auth    authService
	Game    gameService
	Profile profileService
	Data    dataService
	Worker  messageProcessor
	Logger  logger.Logger
}

// NewCatalog builds the command catalog using the supplied dependencies.
func NewCatalog(deps Dependencies) (*Catalog, error) {
	if deps.Auth == nil {
		return nil, errors.New("commands: auth service is required")
	}
	deps.Logger = logger.OrNop(deps.Logger)

	cat := &Catalog{
		Login:    loginCommand{svc: deps.Auth},
		Register: registerCommand{svc: deps.Auth},
		Logout:   logoutCommand{svc: deps.Auth},
	}
	if deps.Game != nil {
		cat.LoadGame = loadGameCommand{svc: deps.Game}
		cat.StartGame = startGameCommand{svc: deps.Game}
		cat.EndGame = endGameCommand{svc: deps.Game}
		cat.AddScore = addScoreCommand{svc: deps.Game}
		cat.LevelUp = levelUpCommand{svc: deps.Game}
	}
	if deps.Profile != nil {
		cat.UpdateProfile = updateProfileCommand{svc: deps.Profile}
		cat.UploadAvatar = uploadAvatarCommand{svc: deps.Profile}
	}
	if deps.Data != nil {
		cat.SyncPlayerData = syncPlayerDataCommand{svc: deps.Data, logger: deps.Logger}
		cat.DeletePlayerData = deletePlayerDataCommand{svc: deps.Data, logger: deps.Logger}
	}
	if deps.Worker != nil {
		cat.ProcessMessage = processMessageCommand{svc: deps.Worker}
	}
	return cat, nil
}

// Login request payload.
type Login struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginCommand struct {
	svc authService
}

func (c loginCommand) Execute(ctx context.Context, msg Login) error {
	_, err := c.svc.Login(ctx, msg.Email, msg.Password)
	return err
}

// Register request payload.
type Register struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	DisplayName     string `json:"display_name"`
}

type registerCommand struct {
	svc authService
}

func (c registerCommand) Execute(ctx context.Context, msg Register) error {
	_, err := c.svc.Register(ctx, auth.RegisterInput{
		Email:           msg.Email,
		Password:        msg.Password,
		ConfirmPassword: msg.ConfirmPassword,
		DisplayName:     msg.DisplayName,
	})
	return err
}

// Logout ends the current session.
type Logout struct{}

type logoutCommand struct {
	svc authService
}

func (c logoutCommand) Execute(ctx context.Context, _ Logout) error {
	c.svc.Logout(ctx)
	return nil
}

// LoadGame pulls the saved game state.
type LoadGame struct{}

type loadGameCommand struct {
	svc gameService
}

func (c loadGameCommand) Execute(ctx context.Context, _ LoadGame) error {
	return c.svc.Load(ctx)
}

// StartGame marks a session as playing.
type StartGame struct{}

type startGameCommand struct {
	svc gameService
}

func (c startGameCommand) Execute(ctx context.Context, _ StartGame) error {
	c.svc.Start(ctx)
	return nil
}

// EndGame stops the session and saves.
type EndGame struct{}

type endGameCommand struct {
	svc gameService
}

func (c endGameCommand) Execute(ctx context.Context, _ EndGame) error {
	c.svc.End(ctx)
	return nil
}

// AddScore adds points to the running score.
type AddScore struct {
	Points int `json:"points"`
}

type addScoreCommand struct {
	svc gameService
}

func (c addScoreCommand) Execute(ctx context.Context, msg AddScore) error {
	c.svc.AddScore(ctx, msg.Points)
	return nil
}

// LevelUp advances one level.
type LevelUp struct{}

type levelUpCommand struct {
	svc gameService
}

func (c levelUpCommand) Execute(ctx context.Context, _ LevelUp) error {
	c.svc.LevelUp(ctx)
	return nil
}

// UpdateProfile request payload.
type UpdateProfile struct {
	DisplayName string `json:"display_name"`
	Bio         string `json:"bio"`
	AvatarURL   string `json:"avatar_url"`
}

type updateProfileCommand struct {
	svc profileService
}

func (c updateProfileCommand) Execute(ctx context.Context, msg UpdateProfile) error {
	_, err := c.svc.Update(ctx, profile.Profile{
		DisplayName: strings.TrimSpace(msg.DisplayName),
		Bio:         msg.Bio,
		AvatarURL:   msg.AvatarURL,
	})
	return err
}

// UploadAvatar request payload.
type UploadAvatar struct {
	Data        []byte `json:"data"`
	ContentType string `json:"content_type"`
	Name        string `json:"name"`
}

type uploadAvatarCommand struct {
	svc profileService
}

func (c uploadAvatarCommand) Execute(ctx context.Context, msg UploadAvatar) error {
	_, err := c.svc.UploadAvatar(ctx, msg.Data, msg.ContentType, msg.Name)
	return err
}

// SyncPlayerData stores data for a player and queues the document write.
type SyncPlayerData struct {
	PlayerID string         `json:"player_id"`
	Data     map[string]any `json:"data"`
}

type syncPlayerDataCommand struct {
	svc    dataService
	logger logger.Logger
}

func (c syncPlayerDataCommand) Execute(ctx context.Context, msg SyncPlayerData) error {
	if strings.TrimSpace(msg.PlayerID) == "" {
		return ErrMissingPlayer
	}
	if !c.svc.SyncPlayerData(ctx, msg.PlayerID, msg.Data) {
		return ErrSyncFailed
	}
	c.logger.Debug("player data synced", logger.F("player_id", msg.PlayerID))
	return nil
}

// DeletePlayerData queues removal of a player's document.
type DeletePlayerData struct {
	PlayerID string `json:"player_id"`
}

type deletePlayerDataCommand struct {
	svc    dataService
	logger logger.Logger
}

func (c deletePlayerDataCommand) Execute(ctx context.Context, msg DeletePlayerData) error {
	if strings.TrimSpace(msg.PlayerID) == "" {
		return ErrMissingPlayer
	}
	if !c.svc.DeletePlayerData(ctx, msg.PlayerID) {
		return ErrSyncFailed
	}
	c.logger.Debug("player data delete queued", logger.F("player_id", msg.PlayerID))
	return nil
}

// ProcessMessage hands one queue message body to the worker.
type ProcessMessage struct {
	Body string `json:"body"`
}

type processMessageCommand struct {
	svc messageProcessor
}

func (c processMessageCommand) Execute(ctx context.Context, msg ProcessMessage) error {
	return c.svc.Process(ctx, msg.Body)
}
