package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/tagshelf/internal/tags"
)

// Execute implements the go-flags Commander interface for AddCommand.
func (c *AddCommand) Execute(args []string) error {
	if c.URL == "" {
		return fmt.Errorf("--url is required for add command")
	}
	return withApp(c.globals, c.executeWithApp)
}

// executeWithApp saves the link through a provided app (for testing).
func (c *AddCommand) executeWithApp(ctx context.Context, a *app) error {
	item, err := a.svc.AddLink(ctx, tags.AddLinkRequest{
		URL:       c.URL,
		Tags:      c.Tags,
		Title:     c.Title,
		Channel:   c.Channel,
		Thumbnail: c.Thumbnail,
	})
	if err != nil {
		return err
	}

	if jsonOutput(c.globals) {
		return printJSON(item)
	}

	fmt.Printf("Saved %s\n", item.ID)
	fmt.Printf("  %s\n", item.Title)
	if item.Channel != "" {
		fmt.Printf("  by %s\n", item.Channel)
	}
	fmt.Printf("  tags: %s\n", joinTags(item.Tags))
	return nil
}
