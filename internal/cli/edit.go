package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/tagshelf/internal/media"
)

// Execute implements the go-flags Commander interface for EditCommand.
func (c *EditCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for edit command")
	}
	if c.patch() == (media.Patch{}) && len(c.AddTags) == 0 && len(c.RemoveTags) == 0 {
		return fmt.Errorf("nothing to change: pass at least one field or tag flag")
	}
	return withApp(c.globals, c.executeWithApp)
}

// patch builds the field update from the flags that were given.
func (c *EditCommand) patch() media.Patch {
	var p media.Patch
	if c.URL != "" {
		p.URL = &c.URL
	}
	if c.Title != "" {
		p.Title = &c.Title
	}
	if c.Channel != "" {
		p.Channel = &c.Channel
	}
	if c.Thumbnail != "" {
		p.Thumbnail = &c.Thumbnail
	}
	return p
}

func (c *EditCommand) executeWithApp(ctx context.Context, a *app) error {
	item, err := a.svc.Item(ctx, c.ID)
	if err != nil {
		return err
	}

	if p := c.patch(); p != (media.Patch{}) {
		if item, err = a.svc.EditItem(ctx, c.ID, p); err != nil {
			return err
		}
	}
	for _, tag := range c.AddTags {
		if item, err = a.svc.AddItemTag(ctx, c.ID, tag); err != nil {
			return err
		}
	}
	for _, tag := range c.RemoveTags {
		if item, err = a.svc.RemoveItemTag(ctx, c.ID, tag); err != nil {
			return err
		}
	}

	if jsonOutput(c.globals) {
		return printJSON(item)
	}
	fmt.Printf("Updated %s\n", item.ID)
	fmt.Printf("  %s\n", item.Title)
	fmt.Printf("  tags: %s\n", joinTags(item.Tags))
	return nil
}

// Execute implements the go-flags Commander interface for RemoveCommand.
func (c *RemoveCommand) Execute(args []string) error {
	if c.ID == "" {
		return fmt.Errorf("--id is required for remove command")
	}
	return withApp(c.globals, c.executeWithApp)
}

func (c *RemoveCommand) executeWithApp(ctx context.Context, a *app) error {
	if err := a.svc.RemoveItem(ctx, c.ID); err != nil {
		return err
	}
	if jsonOutput(c.globals) {
		return printJSON(map[string]any{"removed": true, "id": c.ID})
	}
	fmt.Printf("Removed %s\n", c.ID)
	return nil
}
