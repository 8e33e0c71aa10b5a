package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// migration is one forward-only schema step.
type migration struct {
	version int
	name    string
	up      func(tx *sql.Tx) error
}

// schema lists every migration in version order.
var schema = []migration{
	{version: 1, name: "initial_schema", up: migrateV001},
}

// journalModes are the values accepted by PRAGMA journal_mode.
var journalModes = map[string]bool{
	"DELETE":   true,
	"TRUNCATE": true,
	"PERSIST":  true,
	"MEMORY":   true,
	"WAL":      true,
	"OFF":      true,
}

// MigrationRunner brings a SQLite database up to the current schema.
type MigrationRunner struct {
	db         *sql.DB
	migrations []migration

	// JournalMode is applied with PRAGMA journal_mode before migrating.
	// Empty leaves the database's mode alone.
	JournalMode string
}

// NewMigrationRunner creates a MigrationRunner with all registered migrations.
func NewMigrationRunner(db *sql.DB) *MigrationRunner {
	return &MigrationRunner{
		db:          db,
		migrations:  schema,
		JournalMode: "WAL",
	}
}

// Run applies all pending migrations.
func (r *MigrationRunner) Run() error {
	_, err := r.RunContext(context.Background())
	return err
}

// RunContext applies pending migrations in version order, each in its own
// transaction, and returns the versions it applied.
func (r *MigrationRunner) RunContext(ctx context.Context) ([]int, error) {
	if err := r.setJournalMode(ctx); err != nil {
		return nil, err
	}

	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version    INTEGER PRIMARY KEY,
			name       TEXT NOT NULL,
			applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return nil, fmt.Errorf("create schema_migrations table: %w", err)
	}

	done, err := r.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	applied := []int{}
	for _, m := range r.migrations {
		if done[m.version] {
			continue
		}
		if err := r.apply(ctx, m); err != nil {
			return applied, fmt.Errorf("apply migration %d (%s): %w", m.version, m.name, err)
		}
		applied = append(applied, m.version)
	}
	return applied, nil
}

func (r *MigrationRunner) setJournalMode(ctx context.Context) error {
	if r.JournalMode == "" {
		return nil
	}
	mode := strings.ToUpper(strings.TrimSpace(r.JournalMode))
	if !journalModes[mode] {
		return fmt.Errorf("unsupported journal mode %q", r.JournalMode)
	}
	if _, err := r.db.ExecContext(ctx, "PRAGMA journal_mode = "+mode); err != nil {
		return fmt.Errorf("set journal mode %s: %w", mode, err)
	}
	return nil
}

func (r *MigrationRunner) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("read schema_migrations: %w", err)
	}
	defer rows.Close()

	done := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, fmt.Errorf("scan schema version: %w", err)
		}
		done[v] = true
	}
	return done, rows.Err()
}

func (r *MigrationRunner) apply(ctx context.Context, m migration) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if err := m.up(tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)", m.version, m.name,
	); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}

// SchemaVersion returns the highest applied migration version, or 0 for an
// unmigrated database.
func SchemaVersion(ctx context.Context, db *sql.DB) (int, error) {
	var v int
	err := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
