package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is a locally managed identity account.
type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`
	RecordMeta

	Email        string `bun:",notnull,unique" json:"email"`
	PasswordHash []byte `bun:",notnull" json:"-"`
	DisplayName  string `bun:",notnull" json:"display_name"`
	DataVersion  int    `bun:",notnull,default:0" json:"data_version"`
}

// UserDataEntry is one key/value pair of a user's data record.
type UserDataEntry struct {
	bun.BaseModel `bun:"table:user_data,alias:ud"`

	UserID    uuid.UUID `bun:",pk,type:uuid" json:"user_id"`
	Key       string    `bun:",pk" json:"key"`
	Value     string    `bun:",notnull" json:"value"`
	Version   int       `bun:",notnull" json:"version"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// PlayerDocument is a JSON document persisted by the document store.
type PlayerDocument struct {
	bun.BaseModel `bun:"table:player_documents,alias:pd"`

	ID        string    `bun:",pk" json:"id"`
	Body      JSONMap   `bun:"type:jsonb" json:"body"`
	CreatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt time.Time `bun:",nullzero,notnull,default:current_timestamp" json:"updated_at"`
}
