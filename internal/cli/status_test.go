package cli

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_EmptyLibrary(t *testing.T) {
	a := newTestApp(t)

	cmd := &StatusCommand{
		globals: &GlobalFlags{},
		version: "dev",
	}

	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithApp(context.Background(), a))
	})

	assert.Contains(t, output, "tagshelf Status")
	assert.Contains(t, output, "Version:       dev")
	assert.Contains(t, output, "Backend:       sqlite")
	assert.Contains(t, output, "Database:      :memory:")
	assert.Contains(t, output, "Schema:        v1")
	assert.Contains(t, output, "Items:         0")
	assert.Contains(t, output, "Tags:          0")
	assert.Contains(t, output, "Metadata:      disabled")
	assert.Contains(t, output, "Recommended:   6 tags")
	assert.NotContains(t, output, "Top Tags:")
}

func TestStatus_WithData(t *testing.T) {
	a := newTestApp(t)
	seedLink(t, a, "dQw4w9WgXcQ", "one", "jazz", "Chill")
	seedLink(t, a, "9bZkp7q19f0", "two", "jazz")

	cmd := &StatusCommand{globals: &GlobalFlags{}, version: "dev"}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithApp(context.Background(), a))
	})

	assert.Contains(t, output, "Items:         2")
	assert.Contains(t, output, "Tags:          2")
	assert.Contains(t, output, "Top Tags:")
	assert.Contains(t, output, "jazz")
	assert.Contains(t, output, "Last write:")
	assert.Contains(t, output, "History:       2 entries")
}

func TestStatus_JSONOutput(t *testing.T) {
	a := newTestApp(t)
	seedLink(t, a, "dQw4w9WgXcQ", "one", "jazz", "Chill")

	cmd := &StatusCommand{globals: &GlobalFlags{JSON: true}, version: "1.0.0"}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithApp(context.Background(), a))
	})

	var result statusJSON
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Equal(t, "1.0.0", result.Version)
	assert.Equal(t, "sqlite", result.Backend)
	assert.Equal(t, int64(1), result.TotalItems)
	assert.Equal(t, int64(2), result.TotalTags)
	assert.Equal(t, []tagJSON{{Name: "Chill", Count: 1}, {Name: "jazz", Count: 1}}, result.TopTags)
	assert.False(t, result.MetadataEnabled)
	assert.NotEmpty(t, result.LastWrite)
}

func TestStatus_TopTagsCapped(t *testing.T) {
	a := newTestApp(t)
	seedLink(t, a, "dQw4w9WgXcQ", "one", "a", "b", "c", "d", "e", "f", "g")

	cmd := &StatusCommand{globals: &GlobalFlags{JSON: true}, version: "dev"}
	output := captureOutput(t, func() {
		require.NoError(t, cmd.executeWithApp(context.Background(), a))
	})

	var result statusJSON
	require.NoError(t, json.Unmarshal([]byte(output), &result))
	assert.Len(t, result.TopTags, statusTopTags)
	assert.Equal(t, int64(7), result.TotalTags)
}
