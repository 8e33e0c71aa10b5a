package cli

import "io"

// GlobalFlags holds flags available to all subcommands.
type GlobalFlags struct {
	Config  string `long:"config" description:"Path to config file" default:""`
	JSON    bool   `long:"json" description:"Output in JSON format"`
	Verbose bool   `long:"verbose" description:"Enable verbose output"`
	Version bool   `long:"version" description:"Show version and exit"`
}

// StatusCommand shows storage health, library stats and the config in use.
type StatusCommand struct {
	globals *GlobalFlags
	version string
}

// AddCommand saves a YouTube link with tags.
type AddCommand struct {
	URL       string   `long:"url" description:"YouTube link to save (required)"`
	Tags      []string `long:"tag" short:"t" description:"Tag to attach (repeatable)"`
	Title     string   `long:"title" description:"Title (looked up when omitted)"`
	Channel   string   `long:"channel" description:"Channel name (looked up when omitted)"`
	Thumbnail string   `long:"thumbnail" description:"Thumbnail URL (looked up when omitted)"`

	globals *GlobalFlags
	version string
}

// ListCommand lists saved items, optionally filtered by tag.
type ListCommand struct {
	Tags    []string `long:"tag" short:"t" description:"Only items carrying this tag (repeatable, all must match)"`
	Exclude []string `long:"exclude" short:"x" description:"Skip items carrying this tag (repeatable)"`
	Limit   int      `long:"limit" description:"Maximum results (0 for all)" default:"0"`

	globals *GlobalFlags
	version string
}

// ShowCommand prints one saved item.
type ShowCommand struct {
	ID     string `long:"id" description:"Item ID (required)"`
	Format string `long:"format" description:"Output format: md | raw | json" default:"md"`

	globals *GlobalFlags
	version string
}

// EditCommand changes an item's fields or tags.
type EditCommand struct {
	ID         string   `long:"id" description:"Item ID (required)"`
	URL        string   `long:"url" description:"New YouTube link"`
	Title      string   `long:"title" description:"New title"`
	Channel    string   `long:"channel" description:"New channel name"`
	Thumbnail  string   `long:"thumbnail" description:"New thumbnail URL"`
	AddTags    []string `long:"add-tag" description:"Tag to add (repeatable)"`
	RemoveTags []string `long:"remove-tag" description:"Tag to remove (repeatable)"`

	globals *GlobalFlags
	version string
}

// RemoveCommand deletes a saved item.
type RemoveCommand struct {
	ID string `long:"id" description:"Item ID (required)"`

	globals *GlobalFlags
	version string
}

// TagsCommand lists tags with usage counts.
type TagsCommand struct {
	Limit int `long:"limit" description:"Maximum tags shown (0 for all)" default:"0"`

	globals *GlobalFlags
	version string
}

// PreviewCommand shows a sample of the items carrying a tag.
type PreviewCommand struct {
	Tag    string `long:"tag" short:"t" description:"Tag to preview (required)"`
	Sample int    `long:"sample" description:"Sample size (defaults to config)" default:"0"`

	globals *GlobalFlags
	version string
}

// SuggestCommand autocompletes a tag from the library.
type SuggestCommand struct {
	Exclude []string `long:"exclude" short:"x" description:"Tag already chosen (repeatable)"`

	globals *GlobalFlags
	version string
}

// MutationFlags are shared by the tag mutation commands.
type MutationFlags struct {
	DryRun bool `long:"dry-run" description:"Show the impact without saving"`
	Yes    bool `long:"yes" short:"y" description:"Skip the confirmation prompt"`
}

// RenameCommand renames a tag across the library.
type RenameCommand struct {
	From string `long:"from" description:"Current tag name (required)"`
	To   string `long:"to" description:"New tag name (required)"`
	MutationFlags

	globals *GlobalFlags
	version string
	stdin   io.Reader // injectable for testing; nil means os.Stdin
}

// MergeCommand folds one tag into another.
type MergeCommand struct {
	Source string `long:"source" description:"Tag to fold away (required)"`
	Target string `long:"target" description:"Tag that survives (required)"`
	MutationFlags

	globals *GlobalFlags
	version string
	stdin   io.Reader
}

// DeleteTagCommand removes a tag from every item.
type DeleteTagCommand struct {
	Tag         string `long:"tag" short:"t" description:"Tag to delete (required)"`
	ReplaceWith string `long:"replace-with" description:"Tag to put in its place"`
	MutationFlags

	globals *GlobalFlags
	version string
	stdin   io.Reader
}

// PlaylistCommand builds a YouTube playlist link from saved items.
type PlaylistCommand struct {
	Tags    []string `long:"tag" short:"t" description:"Only items carrying this tag (repeatable)"`
	Exclude []string `long:"exclude" short:"x" description:"Skip items carrying this tag (repeatable)"`

	globals *GlobalFlags
	version string
}

// BackfillCommand fills in missing titles, channels and thumbnails.
type BackfillCommand struct {
	globals *GlobalFlags
	version string
}

// RecommendCommand lists or imports the curated recommended tags.
type RecommendCommand struct {
	Import string `long:"import" description:"Recommended tag to import"`

	globals *GlobalFlags
	version string
}

// SettingsCommand shows or changes app settings.
type SettingsCommand struct {
	Theme         string `long:"theme" description:"Color theme" choice:"light" choice:"dark"`
	Language      string `long:"language" description:"Display language" choice:"en" choice:"ko"`
	Notifications string `long:"notifications" description:"Notifications" choice:"on" choice:"off"`

	globals *GlobalFlags
	version string
}

// HistoryCommand shows recent library changes.
type HistoryCommand struct {
	Limit int `long:"limit" description:"Maximum entries" default:"20"`

	globals *GlobalFlags
	version string
}

// ServeCommand runs the local HTTP API.
type ServeCommand struct {
	Host string `long:"host" description:"Override listen host"`
	Port int    `long:"port" description:"Override listen port"`

	globals *GlobalFlags
	version string
}

// PurgeCommand deletes the whole library after a safety confirmation.
type PurgeCommand struct {
	All   bool `long:"all" description:"Required flag to confirm purge intent"`
	Force bool `long:"force" description:"Skip safety confirmation prompt"`

	globals *GlobalFlags
	version string
	stdin   io.Reader
}
