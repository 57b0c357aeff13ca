package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kozaktomas/smart-attendance/internal/storage"
)

// Backend is a storage.Backend on the blobs table. Values are JSONB, so only valid JSON can be
// stored. Every overwrite copies the previous value into blob_history in the same transaction.
type Backend struct {
	pool *Pool
}

func NewBackend(pool *Pool) *Backend {
	return &Backend{pool: pool}
}

var _ storage.Backend = (*Backend)(nil)

func (b *Backend) Name() string { return "postgres" }

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.pool.db.QueryRowContext(ctx, "SELECT value FROM blobs WHERE key = $1", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query blob: %w", err)
	}
	return data, nil
}

func (b *Backend) Put(ctx context.Context, key string, data []byte) error {
	tx, err := b.pool.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO blob_history (key, value)
		SELECT key, value FROM blobs WHERE key = $1
	`, key); err != nil {
		return fmt.Errorf("failed to archive blob: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO blobs (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, key, string(data)); err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing blob: %w", err)
	}
	return nil
}

// History returns how many previous versions of key are archived.
func (b *Backend) History(ctx context.Context, key string) (int, error) {
	var n int
	if err := b.pool.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM blob_history WHERE key = $1", key).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count history: %w", err)
	}
	return n, nil
}

func (b *Backend) Close() error {
	return b.pool.Close()
}
