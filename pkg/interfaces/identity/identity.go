package identity

import (
	"context"
	"errors"
)

var (
	ErrInvalidCredentials = errors.New("identity: invalid email or password")
	ErrEmailTaken         = errors.New("identity: email already registered")
	ErrInvalidSession     = errors.New("identity: session expired or invalid")
)

// Session is returned by a successful login or registration.
type Session struct {
	Token        string `json:"token"`
	UserID       string `json:"user_id"`
	DisplayName  string `json:"display_name"`
	NewlyCreated bool   `json:"newly_created"`
}

// Service is the remote identity/session provider.
type Service interface {
	Login(ctx context.Context, email, password string) (Session, error)
	Register(ctx context.Context, email, password, displayName string) (Session, error)
	GetUserData(ctx context.Context, token string, keys []string) (map[string]string, error)
	UpdateUserData(ctx context.Context, token string, data map[string]string) (int, error)
}
