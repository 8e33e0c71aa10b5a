package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_kv.go -package=mocks github.com/runnerr0/tagshelf/internal/storage KV

import (
	"context"
	"time"
)

// Keys of the persisted values. The collection and the settings each live
// under one fixed key; metadata cache entries are keyed by video id.
const (
	KeyMedia          = "mediaItems"
	KeySettings       = "appSettings"
	KeyMetadataPrefix = "yt-metadata-"
)

// KV is the key/value persistence substrate. Values are opaque strings
// (serialized JSON). Get reports found=false, with a nil error, for a
// missing key.
type KV interface {
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Auditor is implemented by backends that keep an audit log of library
// changes.
type Auditor interface {
	RecordAudit(ctx context.Context, action, detail string) error
	RecentAudit(ctx context.Context, limit int) ([]AuditEntry, error)
}

// AuditEntry is one recorded library change.
type AuditEntry struct {
	ID        int64     `json:"id"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"ts"`
}

// Stats holds aggregate statistics about a SQLite backend.
type Stats struct {
	SchemaVersion int
	Keys          int64
	AuditEntries  int64
	LastWrite     time.Time
}
