// Package tags derives tag views from the media collection and implements
// the tag mutation engine: pure rename/merge/delete transforms, the
// optimistic apply/commit/rollback/undo protocol on top of them, and the
// Service that presentation layers call.
package tags

import (
	"cmp"
	"slices"
	"strings"

	"github.com/runnerr0/tagshelf/internal/media"
)

// DefaultPreviewSample is the preview sample size used when none is given.
const DefaultPreviewSample = 6

// DefaultSuggestionLimit caps autocomplete suggestions.
const DefaultSuggestionLimit = 10

// Summaries counts, for every distinct tag, the items carrying it. Tags are
// compared by exact string. The result is ordered by count descending, then
// name ascending, and is never nil.
func Summaries(items []media.Item) []media.TagSummary {
	usage := make(map[string]int)
	for _, it := range items {
		seen := make(map[string]struct{}, len(it.Tags))
		for _, tag := range it.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				continue
			}
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			usage[tag]++
		}
	}

	out := make([]media.TagSummary, 0, len(usage))
	for name, count := range usage {
		out = append(out, media.TagSummary{Name: name, Count: count})
	}
	slices.SortFunc(out, func(a, b media.TagSummary) int {
		if a.Count != b.Count {
			return cmp.Compare(b.Count, a.Count)
		}
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}

// CountOf returns the count of tag in summaries, or 0.
func CountOf(summaries []media.TagSummary, tag string) int {
	for _, s := range summaries {
		if s.Name == tag {
			return s.Count
		}
	}
	return 0
}

// Names returns the tag names of summaries in order.
func Names(summaries []media.TagSummary) []string {
	out := make([]string, len(summaries))
	for i, s := range summaries {
		out[i] = s.Name
	}
	return out
}

// PreviewOf returns the first sampleSize items carrying tag, in collection
// order, projected to their display fields, plus the full match count.
// A non-positive sampleSize means DefaultPreviewSample.
func PreviewOf(items []media.Item, tag string, sampleSize int) media.TagPreview {
	if sampleSize <= 0 {
		sampleSize = DefaultPreviewSample
	}

	preview := media.TagPreview{Tag: tag, Media: []media.Preview{}}
	for _, it := range items {
		if !it.HasTag(tag) {
			continue
		}
		preview.Total++
		if len(preview.Media) < sampleSize {
			preview.Media = append(preview.Media, it.Preview())
		}
	}
	return preview
}

// Suggest ranks available tags against a typed query for autocomplete.
// Matching ignores case: tags starting with the query come first, then tags
// containing it, each group keeping the order of available. Tags in exclude
// (in any case) are skipped. An empty query returns every non-excluded tag.
// The result holds at most limit entries; a non-positive limit means
// DefaultSuggestionLimit.
func Suggest(available []string, query string, exclude []string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}

	excluded := make(map[string]struct{}, len(exclude))
	for _, t := range exclude {
		excluded[media.FoldKey(t)] = struct{}{}
	}

	q := media.FoldKey(strings.TrimSpace(query))
	var prefix, contains []string
	for _, tag := range available {
		key := media.FoldKey(tag)
		if _, skip := excluded[key]; skip {
			continue
		}
		switch {
		case q == "" || strings.HasPrefix(key, q):
			prefix = append(prefix, tag)
		case strings.Contains(key, q):
			contains = append(contains, tag)
		}
	}

	out := append(prefix, contains...)
	if len(out) > limit {
		out = out[:limit]
	}
	if out == nil {
		out = []string{}
	}
	return out
}
