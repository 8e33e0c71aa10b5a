package tags

import (
	"fmt"
	"slices"

	"github.com/runnerr0/tagshelf/internal/media"
)

// Kind names a tag mutation.
type Kind string

// Mutation kinds.
const (
	KindRename Kind = "rename"
	KindMerge  Kind = "merge"
	KindDelete Kind = "delete"
)

// Intent is a requested tag mutation. The set of intents is closed:
// RenameRequest, MergeRequest and DeleteRequest.
type Intent interface {
	// Kind reports the mutation kind.
	Kind() Kind
	// Describe returns a one-line human summary, e.g. "Merge rock into metal".
	Describe() string
	// Apply transforms items without modifying them.
	Apply(items []media.Item) []media.Item

	// focus is the tag whose preview is shown after the mutation, "" for none.
	focus() string
	// origin is the tag the user was looking at before the mutation.
	origin() string
	normalize() Intent
}

// RenameRequest renames CurrentName to NextName on every item.
type RenameRequest struct {
	CurrentName string `json:"currentName" validate:"required"`
	NextName    string `json:"nextName" validate:"required,nefield=CurrentName"`
}

func (r RenameRequest) Kind() Kind { return KindRename }

func (r RenameRequest) Describe() string {
	return fmt.Sprintf("Rename %s → %s", r.CurrentName, r.NextName)
}

func (r RenameRequest) Apply(items []media.Item) []media.Item {
	return RenameTag(items, r.CurrentName, r.NextName)
}

func (r RenameRequest) focus() string  { return r.NextName }
func (r RenameRequest) origin() string { return r.CurrentName }

func (r RenameRequest) normalize() Intent {
	return RenameRequest{CurrentName: media.NormalizeTag(r.CurrentName), NextName: media.NormalizeTag(r.NextName)}
}

// MergeRequest folds Source into Target.
type MergeRequest struct {
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required,nefield=Source"`
}

func (r MergeRequest) Kind() Kind { return KindMerge }

func (r MergeRequest) Describe() string {
	return fmt.Sprintf("Merge %s into %s", r.Source, r.Target)
}

func (r MergeRequest) Apply(items []media.Item) []media.Item {
	return MergeTags(items, r.Source, r.Target)
}

func (r MergeRequest) focus() string  { return r.Target }
func (r MergeRequest) origin() string { return r.Source }

func (r MergeRequest) normalize() Intent {
	return MergeRequest{Source: media.NormalizeTag(r.Source), Target: media.NormalizeTag(r.Target)}
}

// DeleteRequest removes Tag, optionally substituting Replacement.
type DeleteRequest struct {
	Tag         string `json:"tag" validate:"required"`
	Replacement string `json:"replacement,omitempty" validate:"omitempty,nefield=Tag"`
}

func (r DeleteRequest) Kind() Kind { return KindDelete }

func (r DeleteRequest) Describe() string {
	if r.Replacement != "" {
		return fmt.Sprintf("Replace %s with %s", r.Tag, r.Replacement)
	}
	return fmt.Sprintf("Delete %s", r.Tag)
}

func (r DeleteRequest) Apply(items []media.Item) []media.Item {
	return DeleteTag(items, r.Tag, r.Replacement)
}

func (r DeleteRequest) focus() string  { return r.Replacement }
func (r DeleteRequest) origin() string { return r.Tag }

func (r DeleteRequest) normalize() Intent {
	return DeleteRequest{Tag: media.NormalizeTag(r.Tag), Replacement: media.NormalizeTag(r.Replacement)}
}

// RenameTag replaces currentName with nextName on every item carrying it and
// re-deduplicates the result. Renaming a tag to itself, or to an empty name,
// returns the collection unchanged.
func RenameTag(items []media.Item, currentName, nextName string) []media.Item {
	next := media.NormalizeTag(nextName)
	if next == "" || next == currentName {
		return passThrough(items)
	}
	return replaceTag(items, currentName, next)
}

// MergeTags replaces source with target on every item carrying source,
// keeping the item's tag order with the first occurrence winning.
func MergeTags(items []media.Item, source, target string) []media.Item {
	if target == "" || source == target {
		return passThrough(items)
	}
	return replaceTag(items, source, target)
}

// DeleteTag removes tag from every item. With a replacement, items that lost
// tag gain replacement unless they already carry it. Replacing a tag with
// itself returns the collection unchanged.
func DeleteTag(items []media.Item, tag, replacement string) []media.Item {
	if replacement == tag {
		return passThrough(items)
	}
	out := make([]media.Item, len(items))
	for i, it := range items {
		if !it.HasTag(tag) {
			out[i] = it
			continue
		}
		updated := it.Clone()
		updated.Tags = media.RemoveTag(it.Tags, tag)
		if replacement != "" && !updated.HasTag(replacement) {
			updated.Tags = append(updated.Tags, replacement)
		}
		out[i] = updated
	}
	return out
}

func replaceTag(items []media.Item, from, to string) []media.Item {
	out := make([]media.Item, len(items))
	for i, it := range items {
		if !it.HasTag(from) {
			out[i] = it
			continue
		}
		updated := it.Clone()
		for j, tag := range updated.Tags {
			if tag == from {
				updated.Tags[j] = to
			}
		}
		updated.Tags = media.Dedupe(updated.Tags)
		out[i] = updated
	}
	return out
}

func passThrough(items []media.Item) []media.Item {
	return append([]media.Item(nil), items...)
}

// Changed counts the items whose tags differ between before and after.
// Both collections must be in the same order.
func Changed(before, after []media.Item) int {
	n := 0
	for i := range before {
		if i >= len(after) || !slices.Equal(before[i].Tags, after[i].Tags) {
			n++
		}
	}
	return n
}
