package bunrepo

import (
	"context"
	"time"

	iface "github.com/goliatone/go-gamesync/pkg/interfaces/secrets"
	"github.com/uptrace/bun"
)

type secretRecord struct {
	bun.BaseModel `bun:"table:secrets"`

	ID        int64          `bun:",pk,autoincrement"`
	Name      string         `bun:",notnull,unique:secret_identity"`
	Version   string         `bun:",notnull,unique:secret_identity"`
	Cipher    []byte         `bun:",notnull"`
	Nonce     []byte         `bun:",notnull"`
	Metadata  map[string]any `bun:",type:jsonb"`
	CreatedAt time.Time      `bun:",nullzero,notnull,default:current_timestamp"`
	UpdatedAt time.Time      `bun:",nullzero,notnull,default:current_timestamp"`
	DeletedAt bun.NullTime   `bun:",soft_delete,nullzero"`
}

// SecretStore persists encrypted secret records.
type SecretStore struct {
	db *bun.DB
}

var _ iface.Store = (*SecretStore)(nil)

func NewSecretStore(db *bun.DB) *SecretStore {
	return &SecretStore{db: db}
}

// SecretModel exposes the table model for migrations.
func SecretModel() any {
	return (*secretRecord)(nil)
}

func (s *SecretStore) Put(ctx context.Context, rec iface.Record) error {
	model := toSecretRecord(rec)
	_, err := s.db.NewInsert().
		Model(model).
		On("CONFLICT (name, version) DO UPDATE").
		Set("cipher = EXCLUDED.cipher").
		Set("nonce = EXCLUDED.nonce").
		Set("metadata = EXCLUDED.metadata").
		Set("updated_at = current_timestamp").
		Exec(ctx)
	return err
}

func (s *SecretStore) GetLatest(ctx context.Context, name string) (iface.Record, error) {
	var rec secretRecord
	err := s.db.NewSelect().
		Model(&rec).
		Where("name = ?", name).
		OrderExpr("version DESC").
		Limit(1).
		Scan(ctx)
	if err != nil {
		return iface.Record{}, err
	}
	return fromSecretRecord(rec), nil
}

func (s *SecretStore) GetVersion(ctx context.Context, name, version string) (iface.Record, error) {
	var rec secretRecord
	err := s.db.NewSelect().
		Model(&rec).
		Where("name = ? AND version = ?", name, version).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return iface.Record{}, err
	}
	return fromSecretRecord(rec), nil
}

func (s *SecretStore) Delete(ctx context.Context, name string) error {
	_, err := s.db.NewDelete().
		Model((*secretRecord)(nil)).
		Where("name = ?", name).
		ForceDelete().
		Exec(ctx)
	return err
}

func (s *SecretStore) List(ctx context.Context, name string) ([]iface.Record, error) {
	var recs []secretRecord
	query := s.db.NewSelect().Model(&recs).OrderExpr("version ASC")
	if name != "" {
		query = query.Where("name = ?", name)
	}
	if err := query.Scan(ctx); err != nil {
		return nil, err
	}
	results := make([]iface.Record, 0, len(recs))
	for _, r := range recs {
		results = append(results, fromSecretRecord(r))
	}
	return results, nil
}

func toSecretRecord(rec iface.Record) *secretRecord {
	return &secretRecord{
		Name:     rec.Name,
		Version:  rec.Version,
		Cipher:   rec.Cipher,
		Nonce:    rec.Nonce,
		Metadata: rec.Metadata,
	}
}

func fromSecretRecord(rec secretRecord) iface.Record {
	return iface.Record{
		Name:      rec.Name,
		Version:   rec.Version,
		Cipher:    rec.Cipher,
		Nonce:     rec.Nonce,
		Metadata:  rec.Metadata,
		CreatedAt: rec.CreatedAt,
	}
}
