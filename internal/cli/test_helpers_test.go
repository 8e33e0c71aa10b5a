package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/runnerr0/tagshelf/internal/config"
	"github.com/runnerr0/tagshelf/internal/logger"
	"github.com/runnerr0/tagshelf/internal/media"
	"github.com/runnerr0/tagshelf/internal/tags"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// newTestApp wires an app over an in-memory SQLite database with metadata
// enrichment disabled.
func newTestApp(t *testing.T) *app {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Path = t.TempDir()
	cfg.Storage.SQLiteFile = ":memory:"
	cfg.Metadata.Enabled = false

	a, err := newApp(context.Background(), cfg, logger.Discard())
	require.NoError(t, err)
	t.Cleanup(func() { a.Close() })
	return a
}

// seedLink saves one link through the service and returns the stored item.
func seedLink(t *testing.T, a *app, videoID, title string, tagNames ...string) media.Item {
	t.Helper()
	item, err := a.svc.AddLink(context.Background(), tags.AddLinkRequest{
		URL:   "https://www.youtube.com/watch?v=" + videoID,
		Title: title,
		Tags:  tagNames,
	})
	require.NoError(t, err)
	return item
}
