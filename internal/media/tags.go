package media

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// MaxTagLength is the display cap, in runes, of a single tag.
const MaxTagLength = 24

// Ellipsis marks a tag truncated to MaxTagLength.
const Ellipsis = "…"

// NormalizeTag trims tag and truncates it to MaxTagLength runes followed by
// Ellipsis. Normalizing an already normalized tag returns it unchanged.
func NormalizeTag(tag string) string {
	trimmed := strings.TrimSpace(tag)
	if utf8.RuneCountInString(trimmed) <= MaxTagLength {
		return trimmed
	}
	if strings.HasSuffix(trimmed, Ellipsis) && utf8.RuneCountInString(trimmed) == MaxTagLength+1 {
		return trimmed
	}
	runes := []rune(trimmed)
	return string(runes[:MaxTagLength]) + Ellipsis
}

// SanitizeTags normalizes every tag, drops empties and exact duplicates, and
// keeps first-occurrence order. The result is never nil.
func SanitizeTags(raw []string) []string {
	cleaned := make([]string, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))
	for _, tag := range raw {
		normalized := NormalizeTag(tag)
		if normalized == "" {
			continue
		}
		if _, ok := seen[normalized]; ok {
			continue
		}
		seen[normalized] = struct{}{}
		cleaned = append(cleaned, normalized)
	}
	return cleaned
}

// Dedupe drops exact duplicates, first occurrence wins. Tags are not
// normalized.
func Dedupe(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// FoldKey returns the case-folded form of tag used for case-insensitive
// comparison.
func FoldKey(tag string) string {
	return cases.Fold().String(tag)
}

// EqualFold reports whether a and b are equal under Unicode case folding.
func EqualFold(a, b string) bool {
	return FoldKey(a) == FoldKey(b)
}

// ContainsFold reports whether tags holds tag, ignoring case.
func ContainsFold(tags []string, tag string) bool {
	key := FoldKey(tag)
	for _, t := range tags {
		if FoldKey(t) == key {
			return true
		}
	}
	return false
}

// AddTag appends a manually entered tag. The tag is normalized first; it is
// rejected when empty or when tags already holds it in any letter case.
func AddTag(tags []string, tag string) ([]string, bool) {
	normalized := NormalizeTag(tag)
	if normalized == "" || ContainsFold(tags, normalized) {
		return tags, false
	}
	out := append(append([]string{}, tags...), normalized)
	return out, true
}

// RemoveTag returns tags without tag (exact match).
func RemoveTag(tags []string, tag string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != tag {
			out = append(out, t)
		}
	}
	return out
}
