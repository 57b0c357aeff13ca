package postgres

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/constants"
	"github.com/lib/pq"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrationLockID is the advisory lock held while a migration runs. Every attendance process
// sharing the database uses the same ID.
const migrationLockID = 0x5a77e4d

type migration struct {
	version int
	file    string
	sql     string
}

// parseMigrations reads NNN_name.sql files from dir. Versions must start at 1 and have no gaps,
// so a missing or renumbered file is caught before anything touches the database.
func parseMigrations(fsys fs.FS, dir string) ([]migration, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	var out []migration
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			return nil, fmt.Errorf("migration %s: expected NNN_name.sql", name)
		}
		version, err := strconv.Atoi(prefix)
		if err != nil || version <= 0 {
			return nil, fmt.Errorf("migration %s: invalid version %q", name, prefix)
		}
		content, err := fs.ReadFile(fsys, dir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", name, err)
		}
		out = append(out, migration{version: version, file: name, sql: string(content)})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	for i, m := range out {
		if m.version != i+1 {
			return nil, fmt.Errorf("migration %s: expected version %d", m.file, i+1)
		}
	}
	return out, nil
}

func (p *Pool) ensureMigrationsTable(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}
	return nil
}

// Migrate applies pending migrations, each in its own transaction under the advisory lock.
// A migration another process applied while this one waited is skipped.
func (p *Pool) Migrate(ctx context.Context) error {
	migrations, err := parseMigrations(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	if err := p.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	for _, m := range migrations {
		applied, err := p.apply(ctx, m)
		if err != nil {
			return err
		}
		if applied {
			p.log.Info().Str("migration", m.file).Int("version", m.version).Msg("Applied migration")
		}
	}

	p.logBlobs(ctx)
	return nil
}

func (p *Pool) apply(ctx context.Context, m migration) (bool, error) {
	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin transaction for %s: %w", m.file, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "SELECT pg_advisory_xact_lock($1)", migrationLockID); err != nil {
		return false, fmt.Errorf("lock migrations for %s: %w", m.file, err)
	}

	var done bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM schema_migrations WHERE version = $1)", m.file).Scan(&done); err != nil {
		return false, fmt.Errorf("check migration %s: %w", m.file, err)
	}
	if done {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, m.sql); err != nil {
		return false, fmt.Errorf("execute migration %s: %w", m.file, err)
	}
	if _, err := tx.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES ($1)", m.file); err != nil {
		return false, fmt.Errorf("record migration %s: %w", m.file, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit migration %s: %w", m.file, err)
	}
	return true, nil
}

// logBlobs reports the roster and attendance blobs found after migrating. Failures only log.
func (p *Pool) logBlobs(ctx context.Context) {
	keys := []string{constants.UsersKey, constants.RecordsKey}
	rows, err := p.db.QueryContext(ctx, `
		SELECT key, updated_at,
			CASE jsonb_typeof(value) WHEN 'array' THEN jsonb_array_length(value) ELSE -1 END
		FROM blobs WHERE key = ANY($1)
	`, pq.Array(keys))
	if err != nil {
		p.log.Warn().Err(err).Msg("Failed to inspect stored blobs")
		return
	}
	defer rows.Close()

	found := make(map[string]bool, len(keys))
	for rows.Next() {
		var (
			key     string
			updated time.Time
			items   sql.NullInt64
		)
		if err := rows.Scan(&key, &updated, &items); err != nil {
			p.log.Warn().Err(err).Msg("Failed to inspect stored blobs")
			return
		}
		found[key] = true
		if items.Int64 < 0 {
			p.log.Warn().Str("key", key).Msg("Stored blob is not a JSON array and will load as empty")
			continue
		}
		p.log.Info().Str("key", key).Int64("items", items.Int64).Time("updated_at", updated).Msg("Found stored blob")
	}
	for _, key := range keys {
		if !found[key] {
			p.log.Info().Str("key", key).Msg("No stored blob yet")
		}
	}
}

// MigrationsApplied returns the applied migration files in version order.
func (p *Pool) MigrationsApplied(ctx context.Context) ([]string, error) {
	rows, err := p.db.QueryContext(ctx, "SELECT version FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("query applied migrations: %w", err)
	}
	defer rows.Close()

	var versions []string
	for rows.Next() {
		var v string
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan migration version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate migration versions: %w", err)
	}
	return versions, nil
}
