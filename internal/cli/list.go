package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/runnerr0/tagshelf/internal/media"
)

// Execute implements the go-flags Commander interface for ListCommand.
func (c *ListCommand) Execute(args []string) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	return withApp(c.globals, c.executeWithApp)
}

func (c *ListCommand) executeWithApp(ctx context.Context, a *app) error {
	items := a.svc.Items(ctx, media.Filter{Include: c.Tags, Exclude: c.Exclude})
	if c.Limit > 0 && len(items) > c.Limit {
		items = items[:c.Limit]
	}

	if jsonOutput(c.globals) {
		return printJSON(items)
	}

	if len(items) == 0 {
		fmt.Println("No items found.")
		return nil
	}
	for _, it := range items {
		fmt.Printf("%s  %s\n", it.ID, it.Title)
		fmt.Printf("    %s  [%s]\n", it.URL, joinTags(it.Tags))
	}
	fmt.Printf("\n%d item(s)\n", len(items))
	return nil
}

// Execute implements the go-flags Commander interface for ShowCommand.
func (c *ShowCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for show command")
	}
	switch c.Format {
	case "md", "raw", "json":
	default:
		return fmt.Errorf("unsupported format %q (use md, raw, or json)", c.Format)
	}
	return withApp(c.globals, c.executeWithApp)
}

func (c *ShowCommand) executeWithApp(ctx context.Context, a *app) error {
	item, err := a.svc.Item(ctx, c.ID)
	if err != nil {
		return err
	}

	format := c.Format
	if jsonOutput(c.globals) {
		format = "json"
	}

	switch format {
	case "json":
		return printJSON(item)
	case "raw":
		fmt.Println(item.URL)
		return nil
	default:
		fmt.Print(renderMarkdown(item))
		return nil
	}
}

// renderMarkdown formats an item as a short markdown document.
func renderMarkdown(it media.Item) string {
	var b strings.Builder
	title := it.Title
	if title == "" {
		title = it.URL
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "- **ID:** %s\n", it.ID)
	fmt.Fprintf(&b, "- **URL:** %s\n", it.URL)
	if it.Channel != "" {
		fmt.Fprintf(&b, "- **Channel:** %s\n", it.Channel)
	}
	if it.Thumbnail != "" {
		fmt.Fprintf(&b, "- **Thumbnail:** %s\n", it.Thumbnail)
	}
	fmt.Fprintf(&b, "- **Tags:** %s\n", joinTags(it.Tags))
	fmt.Fprintf(&b, "- **Saved:** %s\n", it.Created().UTC().Format(time.RFC3339))
	return b.String()
}
