package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteKV implements KV and Auditor on a SQLite database.
type SQLiteKV struct {
	db      *sql.DB
	ownsDB  bool
	nowFunc func() time.Time

	// Prepared statements
	getValue    *sql.Stmt
	setValue    *sql.Stmt
	removeValue *sql.Stmt
	insertAudit *sql.Stmt
}

// NewSQLiteKV creates a SQLiteKV from an already-opened and migrated database.
// The caller keeps ownership of db.
func NewSQLiteKV(db *sql.DB) (*SQLiteKV, error) {
	s := &SQLiteKV{db: db, nowFunc: time.Now}

	if err := s.prepareStatements(); err != nil {
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

// OpenSQLite opens (creating if needed) the database at path, runs
// migrations, and returns a SQLiteKV that closes the database on Close.
func OpenSQLite(path, journalMode string) (*SQLiteKV, error) {
	dsn := path + "?_foreign_keys=on"
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise get its own empty database.
		db.SetMaxOpenConns(1)
	}

	runner := NewMigrationRunner(db)
	if journalMode != "" {
		runner.JournalMode = journalMode
	}
	if err := runner.Run(); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s, err := NewSQLiteKV(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.ownsDB = true
	return s, nil
}

func (s *SQLiteKV) prepareStatements() error {
	var err error

	s.getValue, err = s.db.Prepare(`SELECT value FROM kv WHERE key = ?`)
	if err != nil {
		return err
	}

	s.setValue, err = s.db.Prepare(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}

	s.removeValue, err = s.db.Prepare(`DELETE FROM kv WHERE key = ?`)
	if err != nil {
		return err
	}

	s.insertAudit, err = s.db.Prepare(`INSERT INTO audit_log (action, detail, ts) VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}

	return nil
}

// Get returns the value stored under key.
func (s *SQLiteKV) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.getValue.QueryRowContext(ctx, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

// Set upserts value under key.
func (s *SQLiteKV) Set(ctx context.Context, key, value string) error {
	ts := s.nowFunc().UTC().Format(time.RFC3339Nano)
	if _, err := s.setValue.ExecContext(ctx, key, value, ts); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *SQLiteKV) Remove(ctx context.Context, key string) error {
	if _, err := s.removeValue.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	return nil
}

// RecordAudit appends an entry to the audit log.
func (s *SQLiteKV) RecordAudit(ctx context.Context, action, detail string) error {
	ts := s.nowFunc().UTC().Format(time.RFC3339Nano)
	if _, err := s.insertAudit.ExecContext(ctx, action, detail, ts); err != nil {
		return fmt.Errorf("insert audit entry: %w", err)
	}
	return nil
}

// RecentAudit returns up to limit audit entries, newest first.
func (s *SQLiteKV) RecentAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, action, detail, ts FROM audit_log ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		var tsStr string
		if err := rows.Scan(&e.ID, &e.Action, &e.Detail, &tsStr); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Timestamp, _ = parseTimestamp(tsStr)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Stats returns aggregate statistics about the database.
func (s *SQLiteKV) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	version, err := SchemaVersion(ctx, s.db)
	if err != nil {
		return nil, err
	}
	stats.SchemaVersion = version

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM kv").Scan(&stats.Keys); err != nil {
		return nil, fmt.Errorf("count keys: %w", err)
	}

	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log").Scan(&stats.AuditEntries); err != nil {
		return nil, fmt.Errorf("count audit entries: %w", err)
	}

	if stats.Keys > 0 {
		var last string
		if err := s.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM kv").Scan(&last); err != nil {
			return nil, fmt.Errorf("last write: %w", err)
		}
		stats.LastWrite, _ = parseTimestamp(last)
	}

	return stats, nil
}

// Close releases all prepared statements. The underlying *sql.DB is closed
// only when it was opened by OpenSQLite.
func (s *SQLiteKV) Close() error {
	stmts := []*sql.Stmt{s.getValue, s.setValue, s.removeValue, s.insertAudit}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	if s.ownsDB {
		return s.db.Close()
	}
	return nil
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05.999999999-07:00",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}
