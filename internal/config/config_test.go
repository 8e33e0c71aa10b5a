package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, "~/.config/tagshelf", cfg.Storage.Path)
	assert.Equal(t, "tagshelf.db", cfg.Storage.SQLiteFile)
	assert.Equal(t, "wal", cfg.Storage.SQLiteJournalMode)
	assert.Equal(t, "badger", cfg.Storage.BadgerDir)
	assert.Equal(t, "tagshelf:", cfg.Storage.RedisPrefix)
	assert.Equal(t, 6, cfg.Tags.PreviewSampleSize)
	assert.Equal(t, 50, cfg.Tags.PreviewMaxSample)
	assert.Equal(t, 10, cfg.Tags.SuggestionLimit)
	assert.Equal(t, 6*time.Second, cfg.Tags.UndoWindow)
	assert.True(t, cfg.Metadata.Enabled)
	assert.Equal(t, "https://www.youtube.com/oembed", cfg.Metadata.OEmbedEndpoint)
	assert.Equal(t, 10*time.Second, cfg.Metadata.Timeout)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8722, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:8722", cfg.Server.Addr())
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.NoError(t, cfg.Validate())
}

func TestDefaultRecommendedTags(t *testing.T) {
	tags := DefaultRecommendedTags()
	require.Len(t, tags, 6)
	assert.Equal(t, "J-POP", tags[0].Tag)
	for _, rt := range tags {
		assert.NotEmpty(t, rt.Videos, rt.Tag)
	}
}

func TestLoadValidYAMLOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
storage:
  backend: badger
tags:
  preview_sample_size: 4
  undo_window: 10s
server:
  port: 9999
logging:
  level: "debug"
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(cfgPath)
	require.NoError(t, err)

	// Overridden values
	assert.Equal(t, "badger", cfg.Storage.Backend)
	assert.Equal(t, 4, cfg.Tags.PreviewSampleSize)
	assert.Equal(t, 10*time.Second, cfg.Tags.UndoWindow)
	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)

	// Non-overridden values remain defaults
	assert.Equal(t, 50, cfg.Tags.PreviewMaxSample)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "~/.config/tagshelf", cfg.Storage.Path)
	assert.Len(t, cfg.Recommended, 6)
}

func TestLoadInvalidYAMLReturnsError(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	err := os.WriteFile(cfgPath, []byte(":::not valid yaml{{{"), 0644)
	require.NoError(t, err)

	_, err = Load(cfgPath)
	assert.Error(t, err)
}

func TestLoadNonExistentFileReturnsError(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing", "config.yaml"))
	assert.Error(t, err)
}

func TestLoadOrCreateCreatesDefaultsWhenMissing(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "sub", "deep", "config.yaml")

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)

	// Should return defaults
	assert.Equal(t, "sqlite", cfg.Storage.Backend)
	assert.Equal(t, 6, cfg.Tags.PreviewSampleSize)

	// File should now exist on disk
	_, statErr := os.Stat(cfgPath)
	assert.NoError(t, statErr)

	// File should be valid YAML loadable again
	cfg2, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, cfg.Tags, cfg2.Tags)
	assert.Equal(t, cfg.Metadata, cfg2.Metadata)
	assert.Equal(t, cfg.Recommended, cfg2.Recommended)
}

func TestLoadOrCreateLoadsExistingFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
tags:
  suggestion_limit: 3
`
	err := os.WriteFile(cfgPath, []byte(yamlContent), 0644)
	require.NoError(t, err)

	cfg, err := LoadOrCreateAt(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.Tags.SuggestionLimit)
	// Other fields remain defaults
	assert.Equal(t, 6, cfg.Tags.PreviewSampleSize)
}

func TestLoadRecommendedReplacesDefaults(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")

	yamlContent := `
recommended:
  - tag: lofi
    description: beats
    videos:
      - "https://youtu.be/jfKfPfyJRdk"
`
	require.NoError(t, os.WriteFile(cfgPath, []byte(yamlContent), 0644))

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, []RecommendedTag{{
		Tag:         "lofi",
		Description: "beats",
		Videos:      []string{"https://youtu.be/jfKfPfyJRdk"},
	}}, cfg.Recommended)
}

func TestEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("server:\n  port: 9000\n"), 0644))

	t.Setenv("TAGSHELF_SERVER_PORT", "9100")
	t.Setenv("TAGSHELF_STORAGE_BACKEND", "memory")
	t.Setenv("TAGSHELF_TAGS_UNDO_WINDOW", "2s")
	t.Setenv("TAGSHELF_SERVER_CORS_ORIGINS", "http://a.test,http://b.test")
	t.Setenv("TAGSHELF_LOG_FORMAT", "json")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, "memory", cfg.Storage.Backend)
	assert.Equal(t, 2*time.Second, cfg.Tags.UndoWindow)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestDotEnvFillsButDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{}\n"), 0644))
	dotenv := "TAGSHELF_LOG_LEVEL=debug\nTAGSHELF_SERVER_HOST=0.0.0.0\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0644))

	t.Setenv("TAGSHELF_SERVER_HOST", "10.0.0.1")

	cfg, err := Load(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "10.0.0.1", cfg.Server.Host)

	_, set := os.LookupEnv("TAGSHELF_LOG_LEVEL")
	assert.False(t, set, ".env values must not leak into the process environment")
}

func TestEnvInvalidValue(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{}\n"), 0644))

	t.Setenv("TAGSHELF_SERVER_PORT", "not-a-number")

	_, err := Load(cfgPath)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Storage.Backend = "mongo" }},
		{"redis without url", func(c *Config) { c.Storage.Backend = "redis" }},
		{"zero sample", func(c *Config) { c.Tags.PreviewSampleSize = 0 }},
		{"sample above max", func(c *Config) { c.Tags.PreviewSampleSize = 60 }},
		{"zero suggestions", func(c *Config) { c.Tags.SuggestionLimit = 0 }},
		{"zero undo window", func(c *Config) { c.Tags.UndoWindow = 0 }},
		{"zero rate", func(c *Config) { c.Metadata.RequestsPerSecond = 0 }},
		{"bad port", func(c *Config) { c.Server.Port = 70000 }},
		{"untagged bundle", func(c *Config) { c.Recommended = []RecommendedTag{{Tag: " "}} }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	cfg := DefaultConfig()
	cfg.Storage.Backend = "redis"
	cfg.Storage.RedisURL = "redis://localhost:6379/0"
	assert.NoError(t, cfg.Validate())
}

func TestDataDirExpandsHome(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	cfg := DefaultConfig()
	dir, err := cfg.DataDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, ".config", "tagshelf"), dir)

	cfg.Storage.Path = "/var/lib/tagshelf"
	dir, err = cfg.DataDir()
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/tagshelf", dir)
}
