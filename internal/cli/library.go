package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/tagshelf/internal/media"
)

// Execute implements the go-flags Commander interface for PlaylistCommand.
func (c *PlaylistCommand) Execute(args []string) error {
	return withApp(c.globals, c.executeWithApp)
}

func (c *PlaylistCommand) executeWithApp(ctx context.Context, a *app) error {
	link := a.svc.PlaylistURL(ctx, media.Filter{Include: c.Tags, Exclude: c.Exclude})

	if jsonOutput(c.globals) {
		return printJSON(map[string]string{"url": link})
	}
	if link == "" {
		fmt.Println("No items match; no playlist to build.")
		return nil
	}
	fmt.Println(link)
	return nil
}

// Execute implements the go-flags Commander interface for BackfillCommand.
func (c *BackfillCommand) Execute(args []string) error {
	return withApp(c.globals, c.executeWithApp)
}

func (c *BackfillCommand) executeWithApp(ctx context.Context, a *app) error {
	if a.meta == nil {
		a.logger.Warn("metadata enrichment is disabled; only thumbnails and titles can be derived")
	}
	updated, err := a.svc.Backfill(ctx)
	if err != nil {
		return err
	}

	if jsonOutput(c.globals) {
		return printJSON(map[string]int{"updated": updated})
	}
	fmt.Printf("Backfilled %d item(s).\n", updated)
	return nil
}

// Execute implements the go-flags Commander interface for RecommendCommand.
func (c *RecommendCommand) Execute(args []string) error {
	return withApp(c.globals, c.executeWithApp)
}

func (c *RecommendCommand) executeWithApp(ctx context.Context, a *app) error {
	if c.Import == "" {
		return c.list(a)
	}

	added, err := a.svc.ImportRecommended(ctx, c.Import)
	if err != nil {
		return err
	}
	if jsonOutput(c.globals) {
		return printJSON(added)
	}
	if len(added) == 0 {
		fmt.Printf("Everything in %q is already saved.\n", c.Import)
		return nil
	}
	fmt.Printf("Imported %d item(s) tagged %q.\n", len(added), c.Import)
	return nil
}

type bundleJSON struct {
	Tag         string `json:"tag"`
	Description string `json:"description,omitempty"`
	Videos      int    `json:"videos"`
}

func (c *RecommendCommand) list(a *app) error {
	bundles := a.svc.Bundles()
	if jsonOutput(c.globals) {
		out := make([]bundleJSON, len(bundles))
		for i, b := range bundles {
			out[i] = bundleJSON{Tag: b.Tag, Description: b.Description, Videos: len(b.Videos)}
		}
		return printJSON(out)
	}
	if len(bundles) == 0 {
		fmt.Println("No recommended tags configured.")
		return nil
	}
	for _, b := range bundles {
		fmt.Printf("  %-16s %2d videos  %s\n", b.Tag, len(b.Videos), b.Description)
	}
	return nil
}
