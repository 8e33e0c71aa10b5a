package storage

import (
	"sync"

	"github.com/runnerr0/tagshelf/internal/media"
)

// Cache memoizes the loaded collection and settings for an ItemStore.
// Values handed in and out are deep copies, so callers can never alter the
// cached collection through a returned slice.
type Cache struct {
	mu          sync.RWMutex
	items       []media.Item
	hasItems    bool
	settings    media.Settings
	hasSettings bool
}

// NewCache creates an empty cache.
func NewCache() *Cache {
	return &Cache{}
}

// Items returns the cached collection, if any.
func (c *Cache) Items() ([]media.Item, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.hasItems {
		return nil, false
	}
	return media.CloneItems(c.items), true
}

// SetItems replaces the cached collection.
func (c *Cache) SetItems(items []media.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = media.CloneItems(items)
	c.hasItems = true
}

// Settings returns the cached settings, if any.
func (c *Cache) Settings() (media.Settings, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings, c.hasSettings
}

// SetSettings replaces the cached settings.
func (c *Cache) SetSettings(s media.Settings) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.settings = s
	c.hasSettings = true
}

// Invalidate drops everything so the next read goes to the backend.
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.hasItems = false
	c.settings = media.Settings{}
	c.hasSettings = false
}
