package local

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-gamesync/pkg/domain"
	"github.com/goliatone/go-gamesync/pkg/interfaces/identity"
	"github.com/goliatone/go-gamesync/pkg/interfaces/store"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultSessionTTL = 24 * time.Hour
	issuer            = "gamesync"
)

type sessionClaims struct {
	DisplayName string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// Service is an identity.Service backed by a user repository. Passwords are
// bcrypt hashed and sessions are HS256 tokens signed with the title secret.
type Service struct {
	users  store.UserRepository
	secret []byte
	ttl    time.Duration
	cost   int
	now    func() time.Time
}

var _ identity.Service = (*Service)(nil)

type Option func(*Service)

func WithSessionTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

// WithHashCost sets the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(s *Service) {
		if cost >= bcrypt.MinCost && cost <= bcrypt.MaxCost {
			s.cost = cost
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

func New(users store.UserRepository, secret string, opts ...Option) (*Service, error) {
	if users == nil {
		return nil, errors.New("local identity: user repository required")
	}
	if secret == "" {
		return nil, errors.New("local identity: signing secret required")
	}
	s := &Service{
		users:  users,
		secret: []byte(secret),
		ttl:    DefaultSessionTTL,
		cost:   bcrypt.DefaultCost,
		now:    time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (identity.Session, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return identity.Session{}, identity.ErrInvalidCredentials
		}
		return identity.Session{}, err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return identity.Session{}, identity.ErrInvalidCredentials
	}
	return s.issue(user, false)
}

func (s *Service) Register(ctx context.Context, email, password, displayName string) (identity.Session, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return identity.Session{}, fmt.Errorf("local identity: hash password: %w", err)
	}
	if strings.TrimSpace(displayName) == "" {
		displayName, _, _ = strings.Cut(strings.TrimSpace(email), "@")
	}
	user := &domain.User{
		Email:        strings.ToLower(strings.TrimSpace(email)),
		PasswordHash: hash,
		DisplayName:  displayName,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return identity.Session{}, identity.ErrEmailTaken
		}
		return identity.Session{}, err
	}
	return s.issue(user, true)
}

func (s *Service) GetUserData(ctx context.Context, token string, keys []string) (map[string]string, error) {
	userID, err := s.verify(token)
	if err != nil {
		return nil, err
	}
	data, err := s.users.GetData(ctx, userID, keys)
	if errors.Is(err, store.ErrNotFound) {
		return nil, identity.ErrInvalidSession
	}
	return data, err
}

func (s *Service) UpdateUserData(ctx context.Context, token string, data map[string]string) (int, error) {
	userID, err := s.verify(token)
	if err != nil {
		return 0, err
	}
	version, err := s.users.PutData(ctx, userID, data)
	if errors.Is(err, store.ErrNotFound) {
		return 0, identity.ErrInvalidSession
	}
	return version, err
}

func (s *Service) issue(user *domain.User, created bool) (identity.Session, error) {
	now := s.now()
	claims := sessionClaims{
		DisplayName: user.DisplayName,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return identity.Session{}, fmt.Errorf("local identity: sign session: %w", err)
	}
	return identity.Session{
		Token:        token,
		UserID:       user.ID.String(),
		DisplayName:  user.DisplayName,
		NewlyCreated: created,
	}, nil
}

func (s *Service) verify(token string) (uuid.UUID, error) {
	claims := &sessionClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %w", identity.ErrInvalidSession, err)
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: bad subject", identity.ErrInvalidSession)
	}
	return id, nil
}
