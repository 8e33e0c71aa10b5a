package cli

import (
	"context"
	"fmt"
)

// Execute implements the go-flags Commander interface for PurgeCommand.
func (c *PurgeCommand) Execute(args []string) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}
	return withApp(c.globals, c.executeWithApp)
}

// executeWithApp confirms (unless --force) and purges through a provided app.
func (c *PurgeCommand) executeWithApp(ctx context.Context, a *app) error {
	if !c.All {
		return fmt.Errorf("purge requires --all flag for safety")
	}

	if !c.Force {
		fmt.Println("⚠ WARNING: This will permanently delete ALL tagshelf data.")
		fmt.Println("  - All saved links and their tags")
		fmt.Println("  - App settings")
		fmt.Println()
		fmt.Println("This action cannot be undone.")
		fmt.Println()
		ok, err := confirm(c.stdin, `Type "PURGE" to confirm: `, "PURGE")
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("aborted: confirmation text did not match")
		}
	}

	if err := a.store.Purge(ctx); err != nil {
		return fmt.Errorf("purge failed: %w", err)
	}
	a.store.Audit(ctx, "purge", "library purged")

	if jsonOutput(c.globals) {
		return printJSON(map[string]any{
			"purged":  true,
			"message": "all data deleted",
		})
	}

	fmt.Println("Purged all data. tagshelf is empty.")
	return nil
}
