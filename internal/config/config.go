// Package config loads tagshelf configuration.
//
// Values come from three layers, later ones winning: DefaultConfig, the YAML
// file, then environment variables prefixed with TAGSHELF_. A .env file next
// to the config file (or in the working directory) feeds the environment
// layer without overriding variables that are already set.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Default config file path.
const DefaultConfigPath = "~/.config/tagshelf/config.yaml"

// EnvPrefix prefixes every environment override, e.g. TAGSHELF_SERVER_PORT.
const EnvPrefix = "TAGSHELF_"

// Config holds all tagshelf configuration.
type Config struct {
	Storage     StorageConfig    `yaml:"storage"`
	Tags        TagsConfig       `yaml:"tags"`
	Metadata    MetadataConfig   `yaml:"metadata"`
	Server      ServerConfig     `yaml:"server"`
	Logging     LoggingConfig    `yaml:"logging"`
	Recommended []RecommendedTag `yaml:"recommended"`
}

type StorageConfig struct {
	Backend           string `yaml:"backend" env:"BACKEND"`
	Path              string `yaml:"path" env:"PATH"`
	SQLiteFile        string `yaml:"sqlite_file" env:"SQLITE_FILE"`
	SQLiteJournalMode string `yaml:"sqlite_journal_mode" env:"SQLITE_JOURNAL_MODE"`
	BadgerDir         string `yaml:"badger_dir" env:"BADGER_DIR"`
	RedisURL          string `yaml:"redis_url" env:"REDIS_URL"`
	RedisPrefix       string `yaml:"redis_prefix" env:"REDIS_PREFIX"`
}

type TagsConfig struct {
	PreviewSampleSize int           `yaml:"preview_sample_size" env:"PREVIEW_SAMPLE_SIZE"`
	PreviewMaxSample  int           `yaml:"preview_max_sample" env:"PREVIEW_MAX_SAMPLE"`
	SuggestionLimit   int           `yaml:"suggestion_limit" env:"SUGGESTION_LIMIT"`
	UndoWindow        time.Duration `yaml:"undo_window" env:"UNDO_WINDOW"`
}

type MetadataConfig struct {
	Enabled           bool          `yaml:"enabled" env:"ENABLED"`
	OEmbedEndpoint    string        `yaml:"oembed_endpoint" env:"OEMBED_ENDPOINT"`
	Timeout           time.Duration `yaml:"timeout" env:"TIMEOUT"`
	RequestsPerSecond float64       `yaml:"requests_per_second" env:"REQUESTS_PER_SECOND"`
	Burst             int           `yaml:"burst" env:"BURST"`
}

type ServerConfig struct {
	Host           string   `yaml:"host" env:"HOST"`
	Port           int      `yaml:"port" env:"PORT"`
	CORSOrigins    []string `yaml:"cors_origins" env:"CORS_ORIGINS"`
	MaxRequestSize int64    `yaml:"max_request_size" env:"MAX_REQUEST_SIZE"`
}

type LoggingConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// RecommendedTag is a curated tag offered for one-step import.
type RecommendedTag struct {
	Tag         string   `yaml:"tag"`
	Description string   `yaml:"description"`
	Videos      []string `yaml:"videos"`
}

// Addr returns host:port for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// DataDir returns Storage.Path with a leading ~ expanded.
func (c *Config) DataDir() (string, error) {
	return expandPath(c.Storage.Path)
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Storage.Backend {
	case "sqlite", "badger", "redis", "memory":
	default:
		return fmt.Errorf("storage.backend: unknown backend %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "redis" && c.Storage.RedisURL == "" {
		return errors.New("storage.redis_url: required for the redis backend")
	}
	if c.Tags.PreviewSampleSize <= 0 {
		return fmt.Errorf("tags.preview_sample_size: must be positive, got %d", c.Tags.PreviewSampleSize)
	}
	if c.Tags.PreviewMaxSample < c.Tags.PreviewSampleSize {
		return fmt.Errorf("tags.preview_max_sample: must be at least preview_sample_size (%d), got %d",
			c.Tags.PreviewSampleSize, c.Tags.PreviewMaxSample)
	}
	if c.Tags.SuggestionLimit <= 0 {
		return fmt.Errorf("tags.suggestion_limit: must be positive, got %d", c.Tags.SuggestionLimit)
	}
	if c.Tags.UndoWindow <= 0 {
		return fmt.Errorf("tags.undo_window: must be positive, got %s", c.Tags.UndoWindow)
	}
	if c.Metadata.Enabled && c.Metadata.RequestsPerSecond <= 0 {
		return fmt.Errorf("metadata.requests_per_second: must be positive, got %g", c.Metadata.RequestsPerSecond)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port: out of range: %d", c.Server.Port)
	}
	for _, rt := range c.Recommended {
		if strings.TrimSpace(rt.Tag) == "" {
			return errors.New("recommended: every entry needs a tag")
		}
	}
	return nil
}

// Load reads a YAML config file at path, merges it with defaults and applies
// environment overrides. Returns an error if the file cannot be read or
// contains invalid YAML.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := applyEnv(cfg, filepath.Dir(path)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnv overlays TAGSHELF_* variables. Variables from .env files in dir
// and the working directory fill in only what the process environment lacks.
func applyEnv(cfg *Config, dir string) error {
	environ := env.ToMap(os.Environ())
	for _, envPath := range []string{filepath.Join(dir, ".env"), ".env"} {
		values, err := godotenv.Read(envPath)
		if err != nil {
			continue
		}
		for k, v := range values {
			if _, ok := environ[k]; !ok {
				environ[k] = v
			}
		}
	}

	sections := []struct {
		prefix string
		target any
	}{
		{"STORAGE_", &cfg.Storage},
		{"TAGS_", &cfg.Tags},
		{"METADATA_", &cfg.Metadata},
		{"SERVER_", &cfg.Server},
		{"LOG_", &cfg.Logging},
	}
	for _, s := range sections {
		opts := env.Options{Prefix: EnvPrefix + s.prefix, Environment: environ}
		if err := env.ParseWithOptions(s.target, opts); err != nil {
			return fmt.Errorf("parsing environment overrides: %w", err)
		}
	}
	return nil
}

// expandPath replaces a leading ~ with the user's home directory.
func expandPath(path string) (string, error) {
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolving home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// LoadOrCreate loads the config from the default path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreate() (*Config, error) {
	path, err := expandPath(DefaultConfigPath)
	if err != nil {
		return nil, err
	}
	return LoadOrCreateAt(path)
}

// LoadOrCreateAt loads the config from the given path. If the file does
// not exist, it creates the directory structure and writes defaults.
func LoadOrCreateAt(path string) (*Config, error) {
	path, err := expandPath(path)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := DefaultConfig()

		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("creating config directory: %w", err)
		}

		data, err := yaml.Marshal(cfg)
		if err != nil {
			return nil, fmt.Errorf("marshaling default config: %w", err)
		}

		if err := os.WriteFile(path, data, 0644); err != nil {
			return nil, fmt.Errorf("writing default config: %w", err)
		}

		if err := applyEnv(cfg, dir); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	return Load(path)
}
