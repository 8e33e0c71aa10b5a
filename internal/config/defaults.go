package config

import "time"

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:           "sqlite",
			Path:              "~/.config/tagshelf",
			SQLiteFile:        "tagshelf.db",
			SQLiteJournalMode: "wal",
			BadgerDir:         "badger",
			RedisURL:          "",
			RedisPrefix:       "tagshelf:",
		},
		Tags: TagsConfig{
			PreviewSampleSize: 6,
			PreviewMaxSample:  50,
			SuggestionLimit:   10,
			UndoWindow:        6 * time.Second,
		},
		Metadata: MetadataConfig{
			Enabled:           true,
			OEmbedEndpoint:    "https://www.youtube.com/oembed",
			Timeout:           10 * time.Second,
			RequestsPerSecond: 2,
			Burst:             4,
		},
		Server: ServerConfig{
			Host:           "127.0.0.1",
			Port:           8722,
			CORSOrigins:    []string{"http://localhost:3000"},
			MaxRequestSize: 1 << 20,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
		Recommended: DefaultRecommendedTags(),
	}
}
