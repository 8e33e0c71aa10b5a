package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/runnerr0/tagshelf/internal/storage"
	"github.com/runnerr0/tagshelf/internal/tags"
)

// statusJSON is the JSON output structure for the status command.
type statusJSON struct {
	Version          string    `json:"version"`
	ConfigPath       string    `json:"config_path,omitempty"`
	Backend          string    `json:"backend"`
	DatabasePath     string    `json:"database_path,omitempty"`
	DatabaseSize     int64     `json:"database_size_bytes,omitempty"`
	SchemaVersion    int       `json:"schema_version,omitempty"`
	TotalItems       int64     `json:"total_items"`
	TotalTags        int64     `json:"total_tags"`
	TopTags          []tagJSON `json:"top_tags"`
	AuditEntries     int64     `json:"audit_entries,omitempty"`
	LastWrite        string    `json:"last_write,omitempty"`
	MetadataEnabled  bool      `json:"metadata_enabled"`
	RecommendedCount int       `json:"recommended_tags"`
}

type tagJSON struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

const statusTopTags = 5

// Execute implements the go-flags Commander interface for StatusCommand.
func (c *StatusCommand) Execute(args []string) error {
	return withApp(c.globals, c.executeWithApp)
}

// executeWithApp runs status against a provided app (for testing).
func (c *StatusCommand) executeWithApp(ctx context.Context, a *app) error {
	// A broken backend should fail status loudly instead of showing an
	// empty library.
	items, err := a.store.LoadItems(ctx)
	if err != nil {
		return fmt.Errorf("read library: %w", err)
	}
	summaries := tags.Summaries(items)

	out := statusJSON{
		Version:          c.version,
		ConfigPath:       a.configPath,
		Backend:          a.cfg.Storage.Backend,
		TotalItems:       int64(len(items)),
		TotalTags:        int64(len(summaries)),
		TopTags:          []tagJSON{},
		MetadataEnabled:  a.meta != nil,
		RecommendedCount: len(a.svc.Bundles()),
	}
	for i, s := range summaries {
		if i == statusTopTags {
			break
		}
		out.TopTags = append(out.TopTags, tagJSON{Name: s.Name, Count: s.Count})
	}

	if sqlite, ok := a.kv.(*storage.SQLiteKV); ok {
		stats, err := sqlite.Stats(ctx)
		if err != nil {
			return fmt.Errorf("get stats: %w", err)
		}
		out.SchemaVersion = stats.SchemaVersion
		out.AuditEntries = stats.AuditEntries
		if !stats.LastWrite.IsZero() {
			out.LastWrite = stats.LastWrite.UTC().Format(time.RFC3339)
		}
		out.DatabasePath = c.databasePath(a)
		if info, err := os.Stat(out.DatabasePath); err == nil {
			out.DatabaseSize = info.Size()
		}
	}

	if jsonOutput(c.globals) {
		return printJSON(out)
	}
	return c.printStatusHuman(out)
}

func (c *StatusCommand) databasePath(a *app) string {
	file := a.cfg.Storage.SQLiteFile
	if file == ":memory:" || filepath.IsAbs(file) {
		return file
	}
	dir, err := a.cfg.DataDir()
	if err != nil {
		return file
	}
	return filepath.Join(dir, file)
}

func (c *StatusCommand) printStatusHuman(out statusJSON) error {
	fmt.Println("tagshelf Status")
	fmt.Println("===============")
	fmt.Printf("Version:       %s\n", out.Version)
	if out.ConfigPath != "" {
		fmt.Printf("Config:        %s\n", out.ConfigPath)
	}
	fmt.Printf("Backend:       %s\n", out.Backend)
	if out.DatabasePath != "" {
		fmt.Printf("Database:      %s (%s)\n", out.DatabasePath, formatBytes(out.DatabaseSize))
		fmt.Printf("Schema:        v%d\n", out.SchemaVersion)
	}
	fmt.Printf("Items:         %s\n", formatNumber(out.TotalItems))
	fmt.Printf("Tags:          %s\n", formatNumber(out.TotalTags))
	if out.LastWrite != "" {
		fmt.Printf("Last write:    %s\n", out.LastWrite)
		fmt.Printf("History:       %s entries\n", formatNumber(out.AuditEntries))
	}

	if len(out.TopTags) > 0 {
		fmt.Println()
		fmt.Println("Top Tags:")
		for _, t := range out.TopTags {
			fmt.Printf("  %-20s %s\n", t.Name, formatNumber(int64(t.Count)))
		}
	}

	fmt.Println()
	if out.MetadataEnabled {
		fmt.Println("Metadata:      enabled")
	} else {
		fmt.Println("Metadata:      disabled")
	}
	fmt.Printf("Recommended:   %d tags\n", out.RecommendedCount)
	return nil
}
