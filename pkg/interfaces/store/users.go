package store

import (
	"context"
	"errors"

	"github.com/goliatone/go-gamesync/pkg/domain"
	"github.com/google/uuid"
)

// ErrConflict is returned when a unique constraint would be violated.
var ErrConflict = errors.New("store: conflict")

// UserRepository persists local identity accounts and their key/value data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetData(ctx context.Context, userID uuid.UUID, keys []string) (map[string]string, error)
	// PutData merges data into the user's record and returns the new data version.
	PutData(ctx context.Context, userID uuid.UUID, data map[string]string) (int, error)
}
