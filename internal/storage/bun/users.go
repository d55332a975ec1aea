package bunrepo

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/goliatone/go-gamesync/pkg/domain"
	"github.com/goliatone/go-gamesync/pkg/interfaces/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRepository stores local identity accounts and their key/value data.
type UserRepository struct {
	base baseRepository[domain.User]
	db   *bun.DB
}

var _ store.UserRepository = (*UserRepository)(nil)

func NewUserRepository(db *bun.DB) *UserRepository {
	handlers := repository.ModelHandlers[*domain.User]{
		NewRecord: func() *domain.User { return &domain.User{} },
		GetID:     func(u *domain.User) uuid.UUID { return u.ID },
		SetID: func(u *domain.User, id uuid.UUID) {
			u.ID = id
		},
		GetIdentifier:      func() string { return "email" },
		GetIdentifierValue: func(u *domain.User) string { return u.Email },
	}
	return &UserRepository{
		base: newBaseRepository[domain.User](db, handlers, func(u *domain.User) *domain.RecordMeta { return &u.RecordMeta }),
		db:   db,
	}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if _, err := r.GetByEmail(ctx, user.Email); err == nil {
		return store.ErrConflict
	}
	return r.base.create(ctx, user)
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.base.getByID(ctx, id)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.base.get(ctx, withEmail(email))
}

func (r *UserRepository) GetData(ctx context.Context, userID uuid.UUID, keys []string) (map[string]string, error) {
	if _, err := r.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	var entries []domain.UserDataEntry
	q := r.db.NewSelect().Model(&entries).Where("user_id = ?", userID)
	if len(keys) > 0 {
		q = q.Where("key IN (?)", bun.In(keys))
	}
	if err := q.Scan(ctx); err != nil && err != sql.ErrNoRows {
		return nil, mapError(err)
	}
	out := make(map[string]string, len(entries))
	for _, entry := range entries {
		out[entry.Key] = entry.Value
	}
	return out, nil
}

func (r *UserRepository) PutData(ctx context.Context, userID uuid.UUID, data map[string]string) (int, error) {
	var version int
	err := r.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		user := new(domain.User)
		if err := tx.NewSelect().Model(user).Where("id = ?", userID).Scan(ctx); err != nil {
			return mapError(err)
		}
		version = user.DataVersion + 1
		now := time.Now().UTC()
		if len(data) > 0 {
			entries := make([]domain.UserDataEntry, 0, len(data))
			for key, value := range data {
				entries = append(entries, domain.UserDataEntry{
					UserID:    userID,
					Key:       key,
					Value:     value,
					Version:   version,
					UpdatedAt: now,
				})
			}
			_, err := tx.NewInsert().
				Model(&entries).
				On("CONFLICT (user_id, key) DO UPDATE").
				Set("value = EXCLUDED.value").
				Set("version = EXCLUDED.version").
				Set("updated_at = EXCLUDED.updated_at").
				Exec(ctx)
			if err != nil {
				return err
			}
		}
		_, err := tx.NewUpdate().
			Model((*domain.User)(nil)).
			Set("data_version = ?", version).
			Set("updated_at = ?", now).
			Where("id = ?", userID).
			Exec(ctx)
		return err
	})
	if err != nil {
		return 0, mapError(err)
	}
	return version, nil
}
