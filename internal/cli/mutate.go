package cli

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/runnerr0/tagshelf/internal/media"
	"github.com/runnerr0/tagshelf/internal/tags"
)

// mutationResult is the JSON output of the tag mutation commands.
type mutationResult struct {
	ID          string             `json:"id"`
	Kind        tags.Kind          `json:"kind"`
	State       tags.State         `json:"state"`
	Description string             `json:"description"`
	Impact      string             `json:"impact"`
	Outcome     string             `json:"outcome,omitempty"`
	Affected    int                `json:"affected"`
	CommittedAt *time.Time         `json:"committed_at,omitempty"`
	Preview     *media.TagPreview  `json:"preview,omitempty"`
	Summaries   []media.TagSummary `json:"summaries"`
}

// Execute implements the go-flags Commander interface for RenameCommand.
func (c *RenameCommand) Execute(args []string) error {
	if strings.TrimSpace(c.From) == "" || strings.TrimSpace(c.To) == "" {
		return fmt.Errorf("--from and --to are required for rename command")
	}
	return withApp(c.globals, c.executeWithApp)
}

func (c *RenameCommand) executeWithApp(ctx context.Context, a *app) error {
	intent := tags.RenameRequest{CurrentName: c.From, NextName: c.To}
	return runMutation(ctx, a, intent, c.MutationFlags, c.globals, c.stdin)
}

// Execute implements the go-flags Commander interface for MergeCommand.
func (c *MergeCommand) Execute(args []string) error {
	if strings.TrimSpace(c.Source) == "" || strings.TrimSpace(c.Target) == "" {
		return fmt.Errorf("--source and --target are required for merge command")
	}
	return withApp(c.globals, c.executeWithApp)
}

func (c *MergeCommand) executeWithApp(ctx context.Context, a *app) error {
	intent := tags.MergeRequest{Source: c.Source, Target: c.Target}
	return runMutation(ctx, a, intent, c.MutationFlags, c.globals, c.stdin)
}

// Execute implements the go-flags Commander interface for DeleteTagCommand.
func (c *DeleteTagCommand) Execute(args []string) error {
	if strings.TrimSpace(c.Tag) == "" {
		return fmt.Errorf("--tag is required for delete-tag command")
	}
	return withApp(c.globals, c.executeWithApp)
}

func (c *DeleteTagCommand) executeWithApp(ctx context.Context, a *app) error {
	intent := tags.DeleteRequest{Tag: c.Tag, Replacement: c.ReplaceWith}
	return runMutation(ctx, a, intent, c.MutationFlags, c.globals, c.stdin)
}

// runMutation drives one tag mutation: apply, show the impact, then commit
// after confirmation, or roll back on --dry-run or a declined prompt.
func runMutation(ctx context.Context, a *app, intent tags.Intent, flags MutationFlags, globals *GlobalFlags, stdin io.Reader) error {
	m, err := a.svc.Begin(intent)
	if err != nil {
		return err
	}

	view, err := m.Apply(ctx)
	if err != nil {
		return err
	}
	impact := m.Impact(view.Affected)
	asJSON := jsonOutput(globals)

	if !asJSON {
		fmt.Println(m.Describe())
		fmt.Println("  " + impact)
	}

	if flags.DryRun {
		if err := m.Rollback(); err != nil {
			return err
		}
		if asJSON {
			return printJSON(resultOf(m, impact, view))
		}
		fmt.Println("Dry run: nothing saved.")
		return nil
	}

	if !flags.Yes {
		ok, err := confirm(stdin, "Apply this change? [y/N]: ", "y", "Y", "yes")
		if err != nil {
			_ = m.Rollback()
			return err
		}
		if !ok {
			if err := m.Rollback(); err != nil {
				return err
			}
			fmt.Println("Cancelled: nothing saved.")
			return nil
		}
	}

	if err := m.Commit(ctx); err != nil {
		return fmt.Errorf("%s: %w", m.Describe(), err)
	}

	if asJSON {
		return printJSON(resultOf(m, impact, view))
	}
	fmt.Println(m.Outcome())
	return nil
}

func resultOf(m *tags.Mutation, impact string, view tags.View) mutationResult {
	out := mutationResult{
		ID:          m.ID,
		Kind:        m.Intent.Kind(),
		State:       m.State(),
		Description: m.Describe(),
		Impact:      impact,
		Affected:    view.Affected,
		Summaries:   view.Summaries,
	}
	if m.State() == tags.StateCommitted {
		out.Outcome = m.Outcome()
		at := m.CommittedAt()
		out.CommittedAt = &at
	}
	if view.Preview.Tag != "" {
		p := view.Preview
		out.Preview = &p
	}
	return out
}
