package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/runnerr0/tagshelf/internal/config"
	"github.com/runnerr0/tagshelf/internal/logger"
	"github.com/runnerr0/tagshelf/internal/metadata"
	"github.com/runnerr0/tagshelf/internal/storage"
	"github.com/runnerr0/tagshelf/internal/tags"
)

// app bundles everything a command needs: the loaded config, the opened
// backend and the service on top of it.
type app struct {
	cfg        *config.Config
	configPath string
	kv         storage.KV
	store      *storage.ItemStore
	svc        *tags.Service
	meta       *metadata.Client // nil when enrichment is disabled
	logger     *slog.Logger
}

// openApp loads the config named by the global flags (or the default path)
// and opens the configured backend.
func openApp(ctx context.Context, globals *GlobalFlags) (*app, error) {
	path := config.DefaultConfigPath
	if globals != nil && globals.Config != "" {
		path = globals.Config
	}

	cfg, err := config.LoadOrCreateAt(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	level := logger.ParseLevel(cfg.Logging.Level)
	if globals != nil && globals.Verbose {
		level = slog.LevelDebug
	}
	log := logger.New(logger.Config{Format: cfg.Logging.Format, Level: level})

	a, err := newApp(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	a.configPath = path
	return a, nil
}

// newApp wires storage, metadata enrichment and the tag service from cfg.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	dataDir, err := cfg.DataDir()
	if err != nil {
		return nil, err
	}

	kv, err := storage.Open(ctx, storage.Options{
		Backend:           cfg.Storage.Backend,
		Dir:               dataDir,
		SQLiteFile:        cfg.Storage.SQLiteFile,
		SQLiteJournalMode: cfg.Storage.SQLiteJournalMode,
		BadgerDir:         cfg.Storage.BadgerDir,
		RedisURL:          cfg.Storage.RedisURL,
		RedisPrefix:       cfg.Storage.RedisPrefix,
	})
	if err != nil {
		return nil, fmt.Errorf("opening %s storage: %w", cfg.Storage.Backend, err)
	}

	store := storage.NewItemStore(kv, storage.WithLogger(log))

	bundles := make([]tags.Bundle, 0, len(cfg.Recommended))
	for _, rt := range cfg.Recommended {
		bundles = append(bundles, tags.Bundle{Tag: rt.Tag, Description: rt.Description, Videos: rt.Videos})
	}
	opts := []tags.ServiceOption{
		tags.WithLogger(log),
		tags.WithConfig(tags.Config{
			PreviewSampleSize: cfg.Tags.PreviewSampleSize,
			PreviewMaxSample:  cfg.Tags.PreviewMaxSample,
			SuggestionLimit:   cfg.Tags.SuggestionLimit,
			UndoWindow:        cfg.Tags.UndoWindow,
			Bundles:           bundles,
		}),
	}

	var meta *metadata.Client
	if cfg.Metadata.Enabled {
		meta = metadata.NewClient(metadata.Config{
			Endpoint:          cfg.Metadata.OEmbedEndpoint,
			Timeout:           cfg.Metadata.Timeout,
			RequestsPerSecond: cfg.Metadata.RequestsPerSecond,
			Burst:             cfg.Metadata.Burst,
		}, store, log)
		opts = append(opts, tags.WithResolver(meta))
	}

	return &app{
		cfg:    cfg,
		kv:     kv,
		store:  store,
		svc:    tags.NewService(store, opts...),
		meta:   meta,
		logger: log,
	}, nil
}

// Close releases the backend.
func (a *app) Close() error {
	return a.store.Close()
}
