package cli

import (
	"fmt"
	"os"

	goflags "github.com/jessevdk/go-flags"
)

// commands holds references to all subcommand structs for inspection/testing.
type commands struct {
	Status    *StatusCommand
	Add       *AddCommand
	List      *ListCommand
	Show      *ShowCommand
	Edit      *EditCommand
	Remove    *RemoveCommand
	Tags      *TagsCommand
	Preview   *PreviewCommand
	Suggest   *SuggestCommand
	Rename    *RenameCommand
	Merge     *MergeCommand
	DeleteTag *DeleteTagCommand
	Playlist  *PlaylistCommand
	Backfill  *BackfillCommand
	Recommend *RecommendCommand
	Settings  *SettingsCommand
	History   *HistoryCommand
	Serve     *ServeCommand
	Purge     *PurgeCommand
}

// buildParser constructs the go-flags parser with all subcommands registered.
func buildParser(version string) (*goflags.Parser, *GlobalFlags, *commands) {
	var globals GlobalFlags

	parser := goflags.NewParser(&globals, goflags.Default)
	parser.Name = "tagshelf"
	parser.LongDescription = "A local library of YouTube links organized with free-form tags."

	cmds := &commands{
		Status:    &StatusCommand{globals: &globals, version: version},
		Add:       &AddCommand{globals: &globals, version: version},
		List:      &ListCommand{globals: &globals, version: version},
		Show:      &ShowCommand{globals: &globals, version: version},
		Edit:      &EditCommand{globals: &globals, version: version},
		Remove:    &RemoveCommand{globals: &globals, version: version},
		Tags:      &TagsCommand{globals: &globals, version: version},
		Preview:   &PreviewCommand{globals: &globals, version: version},
		Suggest:   &SuggestCommand{globals: &globals, version: version},
		Rename:    &RenameCommand{globals: &globals, version: version},
		Merge:     &MergeCommand{globals: &globals, version: version},
		DeleteTag: &DeleteTagCommand{globals: &globals, version: version},
		Playlist:  &PlaylistCommand{globals: &globals, version: version},
		Backfill:  &BackfillCommand{globals: &globals, version: version},
		Recommend: &RecommendCommand{globals: &globals, version: version},
		Settings:  &SettingsCommand{globals: &globals, version: version},
		History:   &HistoryCommand{globals: &globals, version: version},
		Serve:     &ServeCommand{globals: &globals, version: version},
		Purge:     &PurgeCommand{globals: &globals, version: version},
	}

	parser.AddCommand("status", "Show storage health and statistics", "Show storage backend health, library statistics, and configuration summary.", cmds.Status)
	parser.AddCommand("add", "Save a YouTube link", "Save a YouTube link with tags. Title, channel and thumbnail are looked up when omitted.", cmds.Add)
	parser.AddCommand("list", "List saved items", "List saved items, optionally filtered by tags.", cmds.List)
	parser.AddCommand("show", "Print one saved item", "Print the stored fields of a single item.", cmds.Show)
	parser.AddCommand("edit", "Edit a saved item", "Change an item's link, display fields, or tags.", cmds.Edit)
	parser.AddCommand("remove", "Remove a saved item", "Remove a saved item from the library.", cmds.Remove)
	parser.AddCommand("tags", "List tags with usage counts", "List every tag with the number of items carrying it, most used first.", cmds.Tags)
	parser.AddCommand("preview", "Preview the items carrying a tag", "Show a sample of the items carrying a tag and the total count.", cmds.Preview)
	parser.AddCommand("suggest", "Autocomplete a tag", "Suggest existing tags matching a partial name.", cmds.Suggest)
	parser.AddCommand("rename", "Rename a tag everywhere", "Rename a tag on every item that carries it.", cmds.Rename)
	parser.AddCommand("merge", "Merge one tag into another", "Replace a tag with another on every item, folding duplicates.", cmds.Merge)
	parser.AddCommand("delete-tag", "Delete a tag everywhere", "Remove a tag from every item, optionally substituting a replacement.", cmds.DeleteTag)
	parser.AddCommand("playlist", "Build a playlist link", "Build a YouTube playlist link from the matching items.", cmds.Playlist)
	parser.AddCommand("backfill", "Fill missing metadata", "Look up titles, channels and thumbnails for items that lack them.", cmds.Backfill)
	parser.AddCommand("recommend", "List or import recommended tags", "List the curated recommended tags, or import one into the library.", cmds.Recommend)
	parser.AddCommand("settings", "Show or change settings", "Show the app settings, or change them with flags.", cmds.Settings)
	parser.AddCommand("history", "Show recent changes", "Show the most recent library changes from the audit log.", cmds.History)
	parser.AddCommand("serve", "Start the local HTTP API", "Start the tagshelf HTTP JSON API on the configured address.", cmds.Serve)
	parser.AddCommand("purge", "Delete ALL saved items", "Delete the whole library and settings. Destructive operation with safety prompt.", cmds.Purge)

	return parser, &globals, cmds
}

// Run is the main entry point for the tagshelf CLI using os.Args.
func Run(version string) error {
	return RunWithArgs(version, nil)
}

// RunWithArgs parses the given args (or os.Args if nil) and executes the matched subcommand.
func RunWithArgs(version string, args []string) error {
	// Handle --version before parser (go-flags requires a subcommand, but
	// --version is valid without one).
	checkArgs := args
	if checkArgs == nil {
		checkArgs = os.Args[1:]
	}
	for _, arg := range checkArgs {
		if arg == "--version" {
			fmt.Printf("tagshelf %s\n", version)
			return nil
		}
		if arg == "--" {
			break
		}
	}

	parser, _, _ := buildParser(version)

	var err error
	if args != nil {
		_, err = parser.ParseArgs(args)
	} else {
		_, err = parser.Parse()
	}

	if err != nil {
		if flagsErr, ok := err.(*goflags.Error); ok {
			if flagsErr.Type == goflags.ErrHelp {
				return nil
			}
		}
		return err
	}

	return nil
}
