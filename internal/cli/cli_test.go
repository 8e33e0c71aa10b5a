package cli

import (
	"strings"
	"testing"

	goflags "github.com/jessevdk/go-flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseOnly builds a parser whose commands are recognized but never executed.
func parseOnly(t *testing.T, args ...string) (*GlobalFlags, *commands) {
	t.Helper()
	parser, globals, cmds := buildParser("test")
	parser.CommandHandler = func(goflags.Commander, []string) error { return nil }
	_, err := parser.ParseArgs(args)
	require.NoError(t, err)
	return globals, cmds
}

func TestVersionFlag(t *testing.T) {
	var err error
	output := captureOutput(t, func() {
		err = RunWithArgs("0.1.0-test", []string{"--version"})
	})

	assert.NoError(t, err)
	assert.Contains(t, output, "tagshelf 0.1.0-test")
}

func TestVersionOutputFormat(t *testing.T) {
	output := captureOutput(t, func() {
		_ = RunWithArgs("1.2.3", []string{"--version"})
	})

	assert.Equal(t, "tagshelf 1.2.3", strings.TrimSpace(output))
}

func TestAllSubcommandsExist(t *testing.T) {
	expected := []string{
		"status", "add", "list", "show", "edit", "remove", "tags", "preview",
		"suggest", "rename", "merge", "delete-tag", "playlist", "backfill",
		"recommend", "settings", "history", "serve", "purge",
	}
	parser, _, _ := buildParser("test")

	for _, name := range expected {
		cmd := parser.Find(name)
		assert.NotNil(t, cmd, "subcommand %q should exist", name)
	}
}

func TestUnknownSubcommandFails(t *testing.T) {
	parser, _, _ := buildParser("test")
	_, err := parser.ParseArgs([]string{"nonexistent"})
	require.Error(t, err)
}

func TestHelpFlagDoesNotError(t *testing.T) {
	err := RunWithArgs("test", []string{"--help"})
	assert.NoError(t, err)
}

func TestGlobalFlags(t *testing.T) {
	globals, _ := parseOnly(t, "--json", "--verbose", "--config", "/tmp/test.yaml", "status")
	assert.True(t, globals.JSON)
	assert.True(t, globals.Verbose)
	assert.Equal(t, "/tmp/test.yaml", globals.Config)
}

func TestAddFlags(t *testing.T) {
	_, c := parseOnly(t, "add", "--url", "https://youtu.be/dQw4w9WgXcQ", "-t", "jazz", "--tag", "Chill", "--title", "T")
	assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", c.Add.URL)
	assert.Equal(t, []string{"jazz", "Chill"}, c.Add.Tags)
	assert.Equal(t, "T", c.Add.Title)
}

func TestListFlagsDefaults(t *testing.T) {
	_, c := parseOnly(t, "list")
	assert.Empty(t, c.List.Tags)
	assert.Equal(t, 0, c.List.Limit)
}

func TestShowFormatFlag(t *testing.T) {
	_, c := parseOnly(t, "show", "--id", "abc", "--format", "json")
	assert.Equal(t, "json", c.Show.Format)
	assert.Equal(t, "abc", c.Show.ID)

	_, c = parseOnly(t, "show", "--id", "abc")
	assert.Equal(t, "md", c.Show.Format)
}

func TestMutationFlags(t *testing.T) {
	_, c := parseOnly(t, "rename", "--from", "jazz", "--to", "bebop", "--dry-run")
	assert.Equal(t, "jazz", c.Rename.From)
	assert.Equal(t, "bebop", c.Rename.To)
	assert.True(t, c.Rename.DryRun)
	assert.False(t, c.Rename.Yes)

	_, c = parseOnly(t, "merge", "--source", "rock", "--target", "metal", "-y")
	assert.Equal(t, "rock", c.Merge.Source)
	assert.True(t, c.Merge.Yes)

	_, c = parseOnly(t, "delete-tag", "-t", "old", "--replace-with", "new")
	assert.Equal(t, "old", c.DeleteTag.Tag)
	assert.Equal(t, "new", c.DeleteTag.ReplaceWith)
}

func TestSettingsChoices(t *testing.T) {
	_, c := parseOnly(t, "settings", "--theme", "dark", "--notifications", "off")
	assert.Equal(t, "dark", c.Settings.Theme)
	assert.Equal(t, "off", c.Settings.Notifications)

	parser, _, _ := buildParser("test")
	parser.CommandHandler = func(goflags.Commander, []string) error { return nil }
	_, err := parser.ParseArgs([]string{"settings", "--theme", "sepia"})
	require.Error(t, err)
}

func TestHistoryLimitDefault(t *testing.T) {
	_, c := parseOnly(t, "history")
	assert.Equal(t, 20, c.History.Limit)
}

func TestServeFlags(t *testing.T) {
	_, c := parseOnly(t, "serve", "--host", "0.0.0.0", "--port", "9999")
	assert.Equal(t, "0.0.0.0", c.Serve.Host)
	assert.Equal(t, 9999, c.Serve.Port)
}

func TestPurgeForceFlag(t *testing.T) {
	_, c := parseOnly(t, "purge", "--all", "--force")
	assert.True(t, c.Purge.All)
	assert.True(t, c.Purge.Force)
}

func TestRequiredFlags(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"add"}, "--url is required"},
		{[]string{"show"}, "--id is required"},
		{[]string{"show", "--id", "x", "--format", "pdf"}, "unsupported format"},
		{[]string{"edit"}, "--id is required"},
		{[]string{"edit", "--id", "x"}, "nothing to change"},
		{[]string{"remove"}, "--id is required"},
		{[]string{"preview"}, "--tag is required"},
		{[]string{"rename", "--from", "jazz"}, "--from and --to are required"},
		{[]string{"merge", "--target", "metal"}, "--source and --target are required"},
		{[]string{"delete-tag"}, "--tag is required"},
		{[]string{"list", "--limit=-1"}, "--limit must not be negative"},
		{[]string{"history", "--limit", "0"}, "--limit must be positive"},
		{[]string{"serve", "--port", "70000"}, "--port out of range"},
		{[]string{"purge"}, "purge requires --all flag for safety"},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			err := RunWithArgs("test", tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", formatNumber(0))
	assert.Equal(t, "999", formatNumber(999))
	assert.Equal(t, "1,000", formatNumber(1000))
	assert.Equal(t, "12,345", formatNumber(12345))
	assert.Equal(t, "1,234,567", formatNumber(1234567))
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2<<20))
	assert.Equal(t, "1.0 GB", formatBytes(1<<30))
}

func TestConfirm(t *testing.T) {
	var ok bool
	var err error
	captureOutput(t, func() {
		ok, err = confirm(strings.NewReader("yes\n"), "? ", "y", "yes")
	})
	require.NoError(t, err)
	assert.True(t, ok)

	captureOutput(t, func() {
		ok, err = confirm(strings.NewReader("nope\n"), "? ", "y")
	})
	require.NoError(t, err)
	assert.False(t, ok)

	captureOutput(t, func() {
		_, err = confirm(strings.NewReader(""), "? ", "y")
	})
	require.Error(t, err)
}
