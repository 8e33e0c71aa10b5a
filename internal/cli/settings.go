package cli

import (
	"context"
	"fmt"
	"time"
)

// Execute implements the go-flags Commander interface for SettingsCommand.
func (c *SettingsCommand) Execute(args []string) error {
	return withApp(c.globals, c.executeWithApp)
}

func (c *SettingsCommand) executeWithApp(ctx context.Context, a *app) error {
	settings := a.svc.Settings(ctx)

	changed := false
	if c.Theme != "" {
		settings.Theme = c.Theme
		changed = true
	}
	if c.Language != "" {
		settings.Language = c.Language
		changed = true
	}
	if c.Notifications != "" {
		settings.Notifications = c.Notifications == "on"
		changed = true
	}
	if changed {
		if err := a.svc.SaveSettings(ctx, settings); err != nil {
			return err
		}
	}

	if jsonOutput(c.globals) {
		return printJSON(settings)
	}
	notifications := "off"
	if settings.Notifications {
		notifications = "on"
	}
	fmt.Printf("Theme:          %s\n", settings.Theme)
	fmt.Printf("Language:       %s\n", settings.Language)
	fmt.Printf("Notifications:  %s\n", notifications)
	return nil
}

// Execute implements the go-flags Commander interface for HistoryCommand.
func (c *HistoryCommand) Execute(args []string) error {
	if c.Limit <= 0 {
		return fmt.Errorf("--limit must be positive")
	}
	return withApp(c.globals, c.executeWithApp)
}

func (c *HistoryCommand) executeWithApp(ctx context.Context, a *app) error {
	entries, err := a.svc.History(ctx, c.Limit)
	if err != nil {
		return err
	}

	if jsonOutput(c.globals) {
		return printJSON(entries)
	}
	if len(entries) == 0 {
		fmt.Println("No history recorded.")
		return nil
	}
	for _, e := range entries {
		fmt.Printf("%s  %-10s %s\n", e.Timestamp.Local().Format(time.DateTime), e.Action, e.Detail)
	}
	return nil
}
