// Package mariadb stores blobs in MariaDB or MySQL.
package mariadb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/kozaktomas/smart-attendance/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS blobs (
	` + "`key`" + ` VARCHAR(255) NOT NULL PRIMARY KEY,
	value LONGBLOB NOT NULL,
	updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4
`

// Backend is a storage.Backend on MariaDB.
type Backend struct {
	db *sql.DB
}

// Open creates a new MariaDB connection pool and ensures the blobs table exists.
func Open(dsn string) (*Backend, error) {
	if dsn == "" {
		return nil, errors.New("MariaDB DSN is required")
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open MariaDB: %w", err)
	}

	db.SetMaxOpenConns(5)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping MariaDB: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create blobs table: %w", err)
	}

	return &Backend{db: db}, nil
}

var _ storage.Backend = (*Backend)(nil)

func (b *Backend) Name() string { return "mariadb" }

func (b *Backend) Get(ctx context.Context, key string) ([]byte, error) {
	var data []byte
	err := b.db.QueryRowContext(ctx, "SELECT value FROM blobs WHERE `key` = ?", key).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query blob: %w", err)
	}
	return data, nil
}

func (b *Backend) Put(ctx context.Context, key string, data []byte) error {
	_, err := b.db.ExecContext(ctx,
		"INSERT INTO blobs (`key`, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)",
		key, data)
	if err != nil {
		return fmt.Errorf("failed to write blob: %w", err)
	}
	return nil
}

// Close closes the connection pool.
func (b *Backend) Close() error {
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return fmt.Errorf("closing database connection: %w", err)
		}
	}
	return nil
}
