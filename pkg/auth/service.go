package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/goliatone/go-gamesync/pkg/activity"
	"github.com/goliatone/go-gamesync/pkg/clients"
	"github.com/goliatone/go-gamesync/pkg/interfaces/broadcaster"
	"github.com/goliatone/go-gamesync/pkg/interfaces/identity"
	"github.com/goliatone/go-gamesync/pkg/interfaces/logger"
)

// MinPasswordLength applies to registration.
const MinPasswordLength = 6

// Status is the auth lifecycle state.
type Status string

const (
	StatusUnauthenticated Status = "unauthenticated"
	StatusAuthenticating  Status = "authenticating"
	StatusAuthenticated   Status = "authenticated"
)

// User is the signed-in player.
type User struct {
	ID           string `json:"id"`
	DisplayName  string `json:"displayName"`
	SessionToken string `json:"-"`
}

// State is the observable auth session.
type State struct {
	Status          Status `json:"status"`
	IsAuthenticated bool   `json:"isAuthenticated"`
	User            *User  `json:"user,omitempty"`
	Error           string `json:"error,omitempty"`
}

// Identity performs the remote login and registration calls.
type Identity interface {
	Login(ctx context.Context, email, password string) (identity.Session, error)
	Register(ctx context.Context, email, password, displayName string) (identity.Session, error)
}

// SessionHolder is a client that caches the session token.
type SessionHolder interface {
	SetSession(session identity.Session)
	ClearSession()
}

// RegisterInput is the registration form.
type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	DisplayName     string
}

// Service is the session state machine.
type Service struct {
	identity    Identity
	holders     []SessionHolder
	messages    *Messages
	logger      logger.Logger
	broadcaster broadcaster.Broadcaster
	hooks       activity.Hooks

	mu    sync.RWMutex
	state State
}

type Option func(*Service)

// WithSessionHolders registers clients whose session follows the auth state.
func WithSessionHolders(holders ...SessionHolder) Option {
	return func(s *Service) {
		for _, h := range holders {
			if h != nil {
				s.holders = append(s.holders, h)
			}
		}
	}
}

func WithMessages(m *Messages) Option {
	return func(s *Service) {
		if m != nil {
			s.messages = m
		}
	}
}

func WithLogger(lgr logger.Logger) Option {
	return func(s *Service) { s.logger = logger.OrNop(lgr) }
}

func WithBroadcaster(b broadcaster.Broadcaster) Option {
	return func(s *Service) {
		if b != nil {
			s.broadcaster = b
		}
	}
}

func WithActivity(hooks ...activity.Hook) Option {
	return func(s *Service) { s.hooks = append(s.hooks, hooks...) }
}

func NewService(id Identity, opts ...Option) (*Service, error) {
	if id == nil {
		return nil, errors.New("auth: identity required")
	}
	s := &Service{
		identity:    id,
		logger:      &logger.Nop{},
		broadcaster: &broadcaster.Nop{},
		state:       State{Status: StatusUnauthenticated},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.messages == nil {
		messages, err := NewMessages(nil, "en")
		if err != nil {
			return nil, err
		}
		s.messages = messages
	}
	return s, nil
}

// Login signs in with email and password.
func (s *Service) Login(ctx context.Context, email, password string) (State, error) {
	email = strings.TrimSpace(email)
	if err := s.validateLogin(email, password); err != nil {
		return s.fail(ctx, err), err
	}
	s.clearSessions()
	s.transition(ctx, State{Status: StatusAuthenticating})
	session, err := s.identity.Login(ctx, email, password)
	if err != nil {
		return s.fail(ctx, s.describe(err, email)), err
	}
	return s.succeed(ctx, session, activity.VerbLogin), nil
}

// Register creates an account and signs in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (State, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.DisplayName = strings.TrimSpace(in.DisplayName)
	if err := s.validateRegister(in); err != nil {
		return s.fail(ctx, err), err
	}
	s.clearSessions()
	s.transition(ctx, State{Status: StatusAuthenticating})
	session, err := s.identity.Register(ctx, in.Email, in.Password, in.DisplayName)
	if err != nil {
		return s.fail(ctx, s.describe(err, in.Email)), err
	}
	if session.DisplayName == "" {
		session.DisplayName = in.DisplayName
	}
	return s.succeed(ctx, session, activity.VerbRegister), nil
}

// Logout forgets the session here and in every session holder.
func (s *Service) Logout(ctx context.Context) {
	previous := s.State()
	s.clearSessions()
	s.transition(ctx, State{Status: StatusUnauthenticated})
	if previous.User != nil {
		s.hooks.Notify(ctx, activity.Event{
			Verb:       activity.VerbLogout,
			ActorID:    previous.User.ID,
			UserID:     previous.User.ID,
			ObjectType: "session",
			ObjectID:   previous.User.ID,
		})
	}
}

// ClearError drops the last error message.
func (s *Service) ClearError(ctx context.Context) {
	state := s.State()
	if state.Error == "" {
		return
	}
	state.Error = ""
	s.transition(ctx, state)
}

// State returns a copy of the current state.
func (s *Service) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.copy()
}

// IsAuthenticated reports whether a player is signed in.
func (s *Service) IsAuthenticated() bool {
	return s.State().IsAuthenticated
}

func (s *Service) validateLogin(email, password string) error {
	if email == "" {
		return s.invalid("email", MsgEmailRequired, nil)
	}
	if password == "" {
		return s.invalid("password", MsgPasswordRequired, nil)
	}
	return nil
}

func (s *Service) validateRegister(in RegisterInput) error {
	if err := s.validateLogin(in.Email, in.Password); err != nil {
		return err
	}
	if in.DisplayName == "" {
		return s.invalid("displayName", MsgNameRequired, nil)
	}
	if in.Password != in.ConfirmPassword {
		return s.invalid("confirmPassword", MsgPasswordMismatch, nil)
	}
	if len(in.Password) < MinPasswordLength {
		return s.invalid("password", MsgPasswordTooShort, map[string]any{"min_length": MinPasswordLength})
	}
	return nil
}

func (s *Service) invalid(field, key string, data map[string]any) *ValidationError {
	return &ValidationError{Field: field, Key: key, Message: s.messages.Text(key, data)}
}

// describe maps an identity failure to a display message.
func (s *Service) describe(err error, email string) error {
	var key string
	data := map[string]any{"email": email}
	switch {
	case errors.Is(err, identity.ErrInvalidCredentials):
		key = MsgInvalidCredentials
	case errors.Is(err, identity.ErrEmailTaken):
		key = MsgEmailTaken
	case clients.IsUninitialized(err), errors.Is(err, clients.ErrTransport):
		key = MsgUnavailable
	default:
		key = MsgFailed
		data["reason"] = err.Error()
	}
	s.logger.Warn("authentication failed", logger.F("email", email), logger.Err(err))
	return errors.New(s.messages.Text(key, data))
}

// fail leaves the player signed out, so session holders must not keep a
// token from an earlier login.
func (s *Service) fail(ctx context.Context, err error) State {
	s.clearSessions()
	return s.transition(ctx, State{Status: StatusUnauthenticated, Error: err.Error()})
}

func (s *Service) clearSessions() {
	for _, h := range s.holders {
		h.ClearSession()
	}
}

func (s *Service) succeed(ctx context.Context, session identity.Session, verb string) State {
	for _, h := range s.holders {
		h.SetSession(session)
	}
	state := s.transition(ctx, State{
		Status:          StatusAuthenticated,
		IsAuthenticated: true,
		User: &User{
			ID:           session.UserID,
			DisplayName:  session.DisplayName,
			SessionToken: session.Token,
		},
	})
	s.hooks.Notify(ctx, activity.Event{
		Verb:       verb,
		ActorID:    session.UserID,
		UserID:     session.UserID,
		ObjectType: "session",
		ObjectID:   session.UserID,
		Metadata:   map[string]any{"newly_created": session.NewlyCreated},
	})
	return state
}

func (s *Service) transition(ctx context.Context, next State) State {
	s.mu.Lock()
	s.state = next
	out := s.state.copy()
	s.mu.Unlock()
	if err := s.broadcaster.Broadcast(ctx, broadcaster.Event{Topic: broadcaster.TopicAuthState, Payload: out}); err != nil {
		s.logger.Debug("auth state broadcast failed", logger.Err(err))
	}
	return out
}

func (st State) copy() State {
	if st.User != nil {
		user := *st.User
		st.User = &user
	}
	return st
}
