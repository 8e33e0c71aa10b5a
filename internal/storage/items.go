package storage

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/runnerr0/tagshelf/internal/apperr"
	"github.com/runnerr0/tagshelf/internal/id"
	"github.com/runnerr0/tagshelf/internal/media"
)

// ItemStore persists the media collection and app settings on a KV backend.
//
// The collection is one JSON array under KeyMedia and every write replaces it
// whole. Reads are memoized in an explicit Cache. Read-modify-write helpers
// run under the store mutex, and each successful collection write bumps the
// revision so callers holding a snapshot can detect a lost update with
// SaveItemsIfRevision.
type ItemStore struct {
	kv     KV
	cache  *Cache
	logger *slog.Logger
	now    func() time.Time
	newID  func() (string, error)

	mu       sync.Mutex
	revision uint64
}

// Option configures an ItemStore.
type Option func(*ItemStore)

// WithCache injects the cache. Tests use it to inspect or reset cache state.
func WithCache(c *Cache) Option {
	return func(s *ItemStore) { s.cache = c }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *ItemStore) { s.logger = l }
}

// WithClock overrides the clock used for createdAt.
func WithClock(now func() time.Time) Option {
	return func(s *ItemStore) { s.now = now }
}

// WithIDGenerator overrides item id generation.
func WithIDGenerator(gen func() (string, error)) Option {
	return func(s *ItemStore) { s.newID = gen }
}

// NewItemStore creates an ItemStore over kv.
func NewItemStore(kv KV, opts ...Option) *ItemStore {
	s := &ItemStore{
		kv:     kv,
		cache:  NewCache(),
		logger: slog.Default(),
		now:    time.Now,
		newID:  id.Item,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Backend returns the underlying KV.
func (s *ItemStore) Backend() KV {
	return s.kv
}

// Close closes the backend.
func (s *ItemStore) Close() error {
	return s.kv.Close()
}

// Revision returns the number of collection writes made through this store.
func (s *ItemStore) Revision() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.revision
}

// InvalidateCache forces the next read to go to the backend.
func (s *ItemStore) InvalidateCache() {
	s.cache.Invalidate()
}

// LoadItems returns the whole collection. A missing key is an empty
// collection; a backend failure or an unparsable payload is ErrStorageRead.
func (s *ItemStore) LoadItems(ctx context.Context) ([]media.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked(ctx)
}

// Snapshot returns the collection together with the revision it was read at.
func (s *ItemStore) Snapshot(ctx context.Context) ([]media.Item, uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	items, err := s.loadLocked(ctx)
	if err != nil {
		return nil, 0, err
	}
	return items, s.revision, nil
}

func (s *ItemStore) loadLocked(ctx context.Context) ([]media.Item, error) {
	if items, ok := s.cache.Items(); ok {
		return items, nil
	}

	raw, found, err := s.kv.Get(ctx, KeyMedia)
	if err != nil {
		return nil, apperr.StorageRead("failed to load media items", err)
	}
	if !found || raw == "" {
		s.cache.SetItems([]media.Item{})
		return []media.Item{}, nil
	}

	var items []media.Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, apperr.StorageRead("failed to parse media items", err)
	}
	if items == nil {
		items = []media.Item{}
	}
	for i := range items {
		if items[i].Tags == nil {
			items[i].Tags = []string{}
		}
	}

	s.cache.SetItems(items)
	return items, nil
}

// SaveItems replaces the whole collection. Each item's tags are sanitized
// before writing.
func (s *ItemStore) SaveItems(ctx context.Context, items []media.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked(ctx, items)
}

// SaveItemsIfRevision is SaveItems guarded against lost updates: it fails
// with ErrConflict when another write landed after the snapshot at revision.
func (s *ItemStore) SaveItemsIfRevision(ctx context.Context, items []media.Item, revision uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if revision != s.revision {
		return apperr.Conflict("media collection changed since it was read")
	}
	return s.saveLocked(ctx, items)
}

func (s *ItemStore) saveLocked(ctx context.Context, items []media.Item) error {
	cleaned := make([]media.Item, len(items))
	for i, it := range items {
		cleaned[i] = it.Clone()
		cleaned[i].Tags = media.SanitizeTags(it.Tags)
	}

	data, err := json.Marshal(cleaned)
	if err != nil {
		return apperr.Internal("failed to encode media items", err)
	}

	if err := s.kv.Set(ctx, KeyMedia, string(data)); err != nil {
		s.logger.Error("failed to save media items", "count", len(cleaned), "error", err)
		s.cache.Invalidate()
		return apperr.StorageWrite("failed to save media items", err)
	}

	s.cache.SetItems(cleaned)
	s.revision++
	return nil
}

// AddItem appends a new item built from in and returns it.
func (s *ItemStore) AddItem(ctx context.Context, in media.Input) (media.Item, error) {
	added, err := s.AddItems(ctx, []media.Input{in})
	if err != nil {
		return media.Item{}, err
	}
	return added[0], nil
}

// AddItems appends one item per input in a single collection write.
func (s *ItemStore) AddItems(ctx context.Context, inputs []media.Input) ([]media.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	added := make([]media.Item, 0, len(inputs))
	createdAt := s.now().UnixMilli()
	for _, in := range inputs {
		itemID, err := s.newID()
		if err != nil {
			return nil, apperr.Internal("failed to generate item id", err)
		}
		added = append(added, media.Item{
			ID:        itemID,
			URL:       in.URL,
			Tags:      media.SanitizeTags(in.Tags),
			CreatedAt: createdAt,
			Title:     in.Title,
			Channel:   in.Channel,
			Thumbnail: in.Thumbnail,
		})
	}

	if err := s.saveLocked(ctx, append(items, added...)); err != nil {
		return nil, err
	}
	return added, nil
}

// GetItem returns the item with the given id.
func (s *ItemStore) GetItem(ctx context.Context, itemID string) (media.Item, error) {
	items, err := s.LoadItems(ctx)
	if err != nil {
		return media.Item{}, err
	}
	for _, it := range items {
		if it.ID == itemID {
			return it, nil
		}
	}
	return media.Item{}, apperr.NotFoundf("media item %s not found", itemID)
}

// UpdateItem applies patch to the item with the given id and returns the
// updated item. A missing id is ErrNotFound and nothing is written.
func (s *ItemStore) UpdateItem(ctx context.Context, itemID string, patch media.Patch) (media.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadLocked(ctx)
	if err != nil {
		return media.Item{}, err
	}

	idx := indexOf(items, itemID)
	if idx < 0 {
		return media.Item{}, apperr.NotFoundf("media item %s not found", itemID)
	}

	updated := patch.ApplyTo(items[idx])
	updated.Tags = media.SanitizeTags(updated.Tags)
	items[idx] = updated

	if err := s.saveLocked(ctx, items); err != nil {
		return media.Item{}, err
	}
	return updated, nil
}

// DeleteItem removes the item with the given id. A missing id is
// ErrNotFound.
func (s *ItemStore) DeleteItem(ctx context.Context, itemID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	items, err := s.loadLocked(ctx)
	if err != nil {
		return err
	}

	idx := indexOf(items, itemID)
	if idx < 0 {
		return apperr.NotFoundf("media item %s not found", itemID)
	}

	remaining := append(items[:idx:idx], items[idx+1:]...)
	return s.saveLocked(ctx, remaining)
}

func indexOf(items []media.Item, itemID string) int {
	for i, it := range items {
		if it.ID == itemID {
			return i
		}
	}
	return -1
}

// Purge removes the collection and the settings. Metadata cache entries and
// the audit log are kept.
func (s *ItemStore) Purge(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range []string{KeyMedia, KeySettings} {
		if err := s.kv.Remove(ctx, key); err != nil {
			s.cache.Invalidate()
			return apperr.StorageWrite("failed to purge library", err)
		}
	}
	s.cache.Invalidate()
	s.revision++
	return nil
}

// LoadSettings returns the stored settings merged over the defaults. Read
// failures degrade to the defaults and are logged.
func (s *ItemStore) LoadSettings(ctx context.Context) media.Settings {
	if cached, ok := s.cache.Settings(); ok {
		return cached
	}

	settings := media.DefaultSettings()

	raw, found, err := s.kv.Get(ctx, KeySettings)
	if err != nil {
		s.logger.Warn("failed to load settings, using defaults", "error", err)
		return settings
	}
	if found && raw != "" {
		if err := json.Unmarshal([]byte(raw), &settings); err != nil {
			s.logger.Warn("failed to parse settings, using defaults", "error", err)
			return media.DefaultSettings()
		}
	}

	s.cache.SetSettings(settings)
	return settings
}

// SaveSettings replaces the settings object.
func (s *ItemStore) SaveSettings(ctx context.Context, settings media.Settings) error {
	data, err := json.Marshal(settings)
	if err != nil {
		return apperr.Internal("failed to encode settings", err)
	}
	if err := s.kv.Set(ctx, KeySettings, string(data)); err != nil {
		s.logger.Error("failed to save settings", "error", err)
		return apperr.StorageWrite("failed to save settings", err)
	}
	s.cache.SetSettings(settings)
	return nil
}

// GetMetadata decodes the cached metadata entry for videoID into dst. It
// reports false when no entry exists.
func (s *ItemStore) GetMetadata(ctx context.Context, videoID string, dst any) (bool, error) {
	raw, found, err := s.kv.Get(ctx, KeyMetadataPrefix+videoID)
	if err != nil {
		return false, apperr.StorageRead("failed to load metadata cache entry", err)
	}
	if !found {
		return false, nil
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, apperr.StorageRead("failed to parse metadata cache entry", err)
	}
	return true, nil
}

// SetMetadata stores v as the metadata cache entry for videoID.
func (s *ItemStore) SetMetadata(ctx context.Context, videoID string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return apperr.Internal("failed to encode metadata", err)
	}
	if err := s.kv.Set(ctx, KeyMetadataPrefix+videoID, string(data)); err != nil {
		return apperr.StorageWrite("failed to save metadata cache entry", err)
	}
	return nil
}

// Audit records a library change when the backend keeps an audit log.
// Failures are logged and otherwise ignored.
func (s *ItemStore) Audit(ctx context.Context, action, detail string) {
	auditor, ok := s.kv.(Auditor)
	if !ok {
		return
	}
	if err := auditor.RecordAudit(ctx, action, detail); err != nil {
		s.logger.Warn("failed to record audit entry", "action", action, "error", err)
	}
}

// RecentAudit returns the latest audit entries, newest first. Backends
// without an audit log return none.
func (s *ItemStore) RecentAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	auditor, ok := s.kv.(Auditor)
	if !ok {
		return []AuditEntry{}, nil
	}
	entries, err := auditor.RecentAudit(ctx, limit)
	if err != nil {
		return nil, apperr.StorageRead("failed to load audit log", err)
	}
	return entries, nil
}
