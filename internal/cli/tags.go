package cli

import (
	"context"
	"fmt"
	"strings"
)

// Execute implements the go-flags Commander interface for TagsCommand.
func (c *TagsCommand) Execute(args []string) error {
	if c.Limit < 0 {
		return fmt.Errorf("--limit must not be negative")
	}
	return withApp(c.globals, c.executeWithApp)
}

func (c *TagsCommand) executeWithApp(ctx context.Context, a *app) error {
	summaries := a.svc.TagSummaries(ctx)
	if c.Limit > 0 && len(summaries) > c.Limit {
		summaries = summaries[:c.Limit]
	}

	if jsonOutput(c.globals) {
		return printJSON(summaries)
	}
	if len(summaries) == 0 {
		fmt.Println("No tags yet.")
		return nil
	}
	for _, s := range summaries {
		fmt.Printf("  %-24s %s\n", s.Name, formatNumber(int64(s.Count)))
	}
	return nil
}

// Execute implements the go-flags Commander interface for PreviewCommand.
func (c *PreviewCommand) Execute(args []string) error {
	if strings.TrimSpace(c.Tag) == "" {
		return fmt.Errorf("--tag is required for preview command")
	}
	return withApp(c.globals, c.executeWithApp)
}

func (c *PreviewCommand) executeWithApp(ctx context.Context, a *app) error {
	preview := a.svc.TagPreview(ctx, c.Tag, c.Sample)

	if jsonOutput(c.globals) {
		return printJSON(preview)
	}
	fmt.Printf("%s: %d item(s)\n", preview.Tag, preview.Total)
	for _, m := range preview.Media {
		fmt.Printf("  %s  %s\n", m.ID, m.Title)
	}
	if more := preview.Total - len(preview.Media); more > 0 {
		fmt.Printf("  … and %d more\n", more)
	}
	return nil
}

// Execute implements the go-flags Commander interface for SuggestCommand.
// The query is the remaining positional arguments joined by spaces.
func (c *SuggestCommand) Execute(args []string) error {
	return withApp(c.globals, func(ctx context.Context, a *app) error {
		return c.executeWithApp(ctx, a, strings.Join(args, " "))
	})
}

func (c *SuggestCommand) executeWithApp(ctx context.Context, a *app, query string) error {
	suggestions := a.svc.Suggest(ctx, query, c.Exclude)

	if jsonOutput(c.globals) {
		return printJSON(suggestions)
	}
	for _, s := range suggestions {
		fmt.Println(s)
	}
	return nil
}
