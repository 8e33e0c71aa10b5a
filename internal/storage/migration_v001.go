package storage

import (
	"database/sql"
	"encoding/json"

	"github.com/runnerr0/tagshelf/internal/media"
)

// migrateV001 creates the initial schema: the kv table holding the
// serialized collection, settings and metadata cache entries, and the audit
// log. Every statement uses IF NOT EXISTS for idempotency.
func migrateV001(tx *sql.Tx) error {
	stmts := []string{
		// ── Tables ──────────────────────────────────────────────

		`CREATE TABLE IF NOT EXISTS kv (
			key        TEXT PRIMARY KEY,
			value      TEXT NOT NULL,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS audit_log (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			action TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			ts     DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		// ── Indexes ────────────────────────────────────────────

		`CREATE INDEX IF NOT EXISTS idx_kv_updated_at      ON kv(updated_at)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_log_ts       ON audit_log(ts)`,
		`CREATE INDEX IF NOT EXISTS idx_audit_log_action   ON audit_log(action)`,
	}

	for _, stmt := range stmts {
		if _, err := tx.Exec(stmt); err != nil {
			return err
		}
	}

	return seedDefaultSettings(tx)
}

// seedDefaultSettings stores the default settings object. Uses INSERT OR
// IGNORE so re-running never overwrites what the user saved.
func seedDefaultSettings(tx *sql.Tx) error {
	data, err := json.Marshal(media.DefaultSettings())
	if err != nil {
		return err
	}
	_, err = tx.Exec(`INSERT OR IGNORE INTO kv (key, value) VALUES (?, ?)`, KeySettings, string(data))
	return err
}
