package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// withApp opens the app for one command run and closes it afterwards.
func withApp(globals *GlobalFlags, fn func(ctx context.Context, a *app) error) error {
	ctx := context.Background()
	a, err := openApp(ctx, globals)
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(ctx, a)
}

// jsonOutput reports whether --json was given.
func jsonOutput(globals *GlobalFlags) bool {
	return globals != nil && globals.JSON
}

// printJSON writes v to stdout as indented JSON.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// confirm prints prompt and reads one line from in. It reports whether the
// trimmed answer equals one of accept (case-sensitive).
func confirm(in io.Reader, prompt string, accept ...string) (bool, error) {
	if in == nil {
		in = os.Stdin
	}
	fmt.Print(prompt)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return false, fmt.Errorf("aborted: no input received")
	}
	return slices.Contains(accept, strings.TrimSpace(scanner.Text())), nil
}

// formatBytes formats a byte count into a human-readable string.
func formatBytes(b int64) string {
	switch {
	case b >= 1<<30:
		return fmt.Sprintf("%.1f GB", float64(b)/float64(1<<30))
	case b >= 1<<20:
		return fmt.Sprintf("%.1f MB", float64(b)/float64(1<<20))
	case b >= 1<<10:
		return fmt.Sprintf("%.1f KB", float64(b)/float64(1<<10))
	default:
		return fmt.Sprintf("%d B", b)
	}
}

// formatNumber formats an int64 with comma separators.
func formatNumber(n int64) string {
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}

	var result strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		result.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if i > 0 {
			result.WriteString(",")
		}
		result.WriteString(s[i : i+3])
	}
	return result.String()
}

// joinTags renders tags for a one-line listing.
func joinTags(tags []string) string {
	if len(tags) == 0 {
		return "-"
	}
	return strings.Join(tags, ", ")
}
