package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/goliatone/go-gamesync/pkg/domain"
	"github.com/goliatone/go-gamesync/pkg/interfaces/store"
	"github.com/google/uuid"
)

// UserRepository keeps users and their data in maps.
type UserRepository struct {
	mu      sync.RWMutex
	users   map[uuid.UUID]domain.User
	byEmail map[string]uuid.UUID
	data    map[uuid.UUID]map[string]string
}

var _ store.UserRepository = (*UserRepository)(nil)

func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:   make(map[uuid.UUID]domain.User),
		byEmail: make(map[string]uuid.UUID),
		data:    make(map[uuid.UUID]map[string]string),
	}
}

func (r *UserRepository) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	email := normalizeEmail(user.Email)
	if _, exists := r.byEmail[email]; exists {
		return store.ErrConflict
	}
	user.EnsureID()
	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.Email = email
	r.users[user.ID] = *user
	r.byEmail[email] = user.ID
	return nil
}

func (r *UserRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	id, ok := r.byEmail[normalizeEmail(email)]
	r.mu.RUnlock()
	if !ok {
		return nil, store.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *UserRepository) GetData(_ context.Context, userID uuid.UUID, keys []string) (map[string]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if _, ok := r.users[userID]; !ok {
		return nil, store.ErrNotFound
	}
	stored := r.data[userID]
	out := make(map[string]string)
	if len(keys) == 0 {
		for k, v := range stored {
			out[k] = v
		}
		return out, nil
	}
	for _, key := range keys {
		if v, ok := stored[key]; ok {
			out[key] = v
		}
	}
	return out, nil
}

func (r *UserRepository) PutData(_ context.Context, userID uuid.UUID, data map[string]string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[userID]
	if !ok {
		return 0, store.ErrNotFound
	}
	stored := r.data[userID]
	if stored == nil {
		stored = make(map[string]string, len(data))
		r.data[userID] = stored
	}
	for k, v := range data {
		stored[k] = v
	}
	user.DataVersion++
	user.UpdatedAt = time.Now().UTC()
	r.users[userID] = user
	return user.DataVersion, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
