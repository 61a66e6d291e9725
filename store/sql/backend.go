package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-remitlink/core"
	"github.com/goliatone/go-remitlink/store"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Backend keeps secure entries in remitlink_secure_entries, one row per key.
type Backend struct {
	db      *bun.DB
	repo    repository.Repository[*entryRecord]
	secrets core.SecretProvider
}

type BackendOption func(*Backend)

// WithSecretProvider seals values before they reach the table.
func WithSecretProvider(secrets core.SecretProvider) BackendOption {
	return func(b *Backend) {
		b.secrets = secrets
	}
}

func NewBackend(db *bun.DB, opts ...BackendOption) (*Backend, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*entryRecord](db, entryHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid entry repository wiring: %w", err)
		}
	}
	backend := &Backend{db: db, repo: repo}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(backend)
	}
	return backend, nil
}

// NewBackendFromPersistence accepts a *persistence.Client or a *bun.DB.
func NewBackendFromPersistence(client any, opts ...BackendOption) (*Backend, error) {
	db, err := resolveBunDB(client)
	if err != nil {
		return nil, err
	}
	return NewBackend(db, opts...)
}

// EnsureSchema creates the entries table without the migration runner.
func (b *Backend) EnsureSchema(ctx context.Context) error {
	if _, err := b.db.NewCreateTable().
		Model((*entryRecord)(nil)).
		IfNotExists().
		Exec(ctx); err != nil {
		return fmt.Errorf("sqlstore: create entries table: %w", err)
	}
	return nil
}

// Put deletes any row for key and inserts the new one in one transaction.
func (b *Backend) Put(ctx context.Context, key string, value []byte) error {
	stored, err := b.seal(ctx, value)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	return b.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewDelete().
			Model((*entryRecord)(nil)).
			Where("entry_key = ?", key).
			Exec(ctx); err != nil {
			return fmt.Errorf("sqlstore: delete entry: %w", err)
		}
		record := &entryRecord{
			ID:        uuid.NewString(),
			EntryKey:  key,
			Value:     stored,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if _, err := b.repo.CreateTx(ctx, tx, record); err != nil {
			return fmt.Errorf("sqlstore: insert entry: %w", err)
		}
		return nil
	})
}

func (b *Backend) Fetch(ctx context.Context, key string) ([]byte, error) {
	records, _, err := b.repo.List(ctx,
		repository.SelectBy("entry_key", "=", key),
		repository.OrderBy("updated_at DESC"),
		repository.SelectPaginate(1, 0),
	)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: select entry: %w", err)
	}
	if len(records) == 0 {
		return nil, store.ErrNotFound
	}
	return b.open(ctx, records[0].Value)
}

func (b *Backend) Remove(ctx context.Context, key string) error {
	result, err := b.db.NewDelete().
		Model((*entryRecord)(nil)).
		Where("entry_key = ?", key).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("sqlstore: delete entry: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: delete entry: %w", err)
	}
	if affected == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (b *Backend) seal(ctx context.Context, value []byte) ([]byte, error) {
	if b.secrets == nil {
		return append([]byte(nil), value...), nil
	}
	sealed, err := b.secrets.Encrypt(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: seal entry: %w", err)
	}
	return sealed, nil
}

func (b *Backend) open(ctx context.Context, value []byte) ([]byte, error) {
	if b.secrets == nil {
		return value, nil
	}
	opened, err := b.secrets.Decrypt(ctx, value)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: open entry: %w", err)
	}
	return opened, nil
}
