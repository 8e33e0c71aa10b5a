// Package media holds the tagshelf data model: saved media items, their tag
// sets, app settings and the derived tag views.
package media

import "time"

// Item is a single saved link with its tag set and display metadata.
//
// The JSON shape is the persisted contract: the whole collection is stored as
// one array of Items under a fixed key. CreatedAt is Unix milliseconds.
type Item struct {
	ID        string   `json:"id"`
	URL       string   `json:"url"`
	Tags      []string `json:"tags"`
	CreatedAt int64    `json:"createdAt"`
	Title     string   `json:"title,omitempty"`
	Channel   string   `json:"channel,omitempty"`
	Thumbnail string   `json:"thumbnail,omitempty"`
}

// Created returns CreatedAt as a time.Time.
func (it Item) Created() time.Time {
	return time.UnixMilli(it.CreatedAt)
}

// HasTag reports whether the item carries tag (exact match).
func (it Item) HasTag(tag string) bool {
	for _, t := range it.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy of the item.
func (it Item) Clone() Item {
	out := it
	out.Tags = append([]string{}, it.Tags...)
	return out
}

// Preview projects the display-safe fields of the item.
func (it Item) Preview() Preview {
	return Preview{
		ID:        it.ID,
		Title:     it.Title,
		Channel:   it.Channel,
		Thumbnail: it.Thumbnail,
	}
}

// CloneItems deep-copies a collection so a snapshot cannot be altered
// through the returned slice.
func CloneItems(items []Item) []Item {
	out := make([]Item, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}

// Input is the caller-supplied part of a new Item.
type Input struct {
	URL       string
	Tags      []string
	Title     string
	Channel   string
	Thumbnail string
}

// Patch is a partial update of an Item. Nil fields are left untouched; ID and
// CreatedAt can never be patched.
type Patch struct {
	URL       *string   `json:"url,omitempty"`
	Tags      *[]string `json:"tags,omitempty"`
	Title     *string   `json:"title,omitempty"`
	Channel   *string   `json:"channel,omitempty"`
	Thumbnail *string   `json:"thumbnail,omitempty"`
}

// ApplyTo returns it with the patch applied.
func (p Patch) ApplyTo(it Item) Item {
	out := it.Clone()
	if p.URL != nil {
		out.URL = *p.URL
	}
	if p.Tags != nil {
		out.Tags = append([]string{}, (*p.Tags)...)
	}
	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.Channel != nil {
		out.Channel = *p.Channel
	}
	if p.Thumbnail != nil {
		out.Thumbnail = *p.Thumbnail
	}
	return out
}

// Settings is the app settings value object. Saves replace the whole object.
type Settings struct {
	Theme         string `json:"theme" validate:"oneof=light dark"`
	Language      string `json:"language" validate:"oneof=en ko"`
	Notifications bool   `json:"notifications"`
}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{
		Theme:         "light",
		Language:      "en",
		Notifications: true,
	}
}

// TagSummary is the derived usage count of one tag.
type TagSummary struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// Preview is the display-safe projection of an Item.
type Preview struct {
	ID        string `json:"id"`
	Title     string `json:"title,omitempty"`
	Channel   string `json:"channel,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// TagPreview is a bounded sample of the items carrying a tag plus the full
// match count.
type TagPreview struct {
	Tag   string    `json:"tag"`
	Total int       `json:"total"`
	Media []Preview `json:"media"`
}
