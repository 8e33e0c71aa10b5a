package storage

import (
	"context"
	"fmt"
	"path/filepath"
)

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendBadger = "badger"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a KV backend.
type Options struct {
	Backend string

	// Dir is the data directory for file-backed backends.
	Dir string

	SQLiteFile        string
	SQLiteJournalMode string
	BadgerDir         string
	RedisURL          string
	RedisPrefix       string
}

// Open opens the backend named by opts.Backend. An empty name means SQLite.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch opts.Backend {
	case "", BackendSQLite:
		path := opts.SQLiteFile
		if path != ":memory:" && !filepath.IsAbs(path) {
			path = filepath.Join(opts.Dir, path)
		}
		return OpenSQLite(path, opts.SQLiteJournalMode)
	case BackendBadger:
		dir := opts.BadgerDir
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(opts.Dir, dir)
		}
		return OpenBadger(dir, false)
	case BackendRedis:
		return OpenRedis(ctx, opts.RedisURL, opts.RedisPrefix)
	case BackendMemory:
		return NewMemoryKV(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", opts.Backend)
	}
}
