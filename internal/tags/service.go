package tags

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/runnerr0/tagshelf/internal/apperr"
	"github.com/runnerr0/tagshelf/internal/media"
	"github.com/runnerr0/tagshelf/internal/metadata"
	"github.com/runnerr0/tagshelf/internal/storage"
	"github.com/runnerr0/tagshelf/internal/validation"
)

// DefaultUndoWindow is how long a committed mutation can be undone.
const DefaultUndoWindow = 6 * time.Second

// recentRetention bounds how long committed mutations stay addressable by id.
const recentRetention = 10 * time.Minute

// Resolver enriches a link with display metadata. It returns nil when the
// link cannot be resolved.
type Resolver interface {
	Resolve(ctx context.Context, link string) *metadata.Metadata
}

// Bundle is a curated recommended tag with the videos it stands for.
type Bundle struct {
	Tag         string
	Description string
	Videos      []string
}

// Config tunes a Service.
type Config struct {
	PreviewSampleSize int
	PreviewMaxSample  int
	SuggestionLimit   int
	UndoWindow        time.Duration
	Bundles           []Bundle
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		PreviewSampleSize: DefaultPreviewSample,
		PreviewMaxSample:  50,
		SuggestionLimit:   DefaultSuggestionLimit,
		UndoWindow:        DefaultUndoWindow,
	}
}

// Service is the tag and library API used by the CLI and the HTTP server.
type Service struct {
	store     *storage.ItemStore
	resolver  Resolver
	validator *validation.Validator
	cfg       Config
	logger    *slog.Logger
	now       func() time.Time

	mu       sync.Mutex
	inflight *Mutation
	recent   map[string]*Mutation
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithResolver enables metadata enrichment.
func WithResolver(r Resolver) ServiceOption {
	return func(s *Service) { s.resolver = r }
}

// WithConfig replaces the default tuning. Zero fields keep their defaults.
func WithConfig(cfg Config) ServiceOption {
	return func(s *Service) {
		def := DefaultConfig()
		if cfg.PreviewSampleSize <= 0 {
			cfg.PreviewSampleSize = def.PreviewSampleSize
		}
		if cfg.PreviewMaxSample <= 0 {
			cfg.PreviewMaxSample = def.PreviewMaxSample
		}
		if cfg.SuggestionLimit <= 0 {
			cfg.SuggestionLimit = def.SuggestionLimit
		}
		if cfg.UndoWindow <= 0 {
			cfg.UndoWindow = def.UndoWindow
		}
		s.cfg = cfg
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) ServiceOption {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the clock used for undo windows.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) { s.now = now }
}

// NewService creates a Service over store.
func NewService(store *storage.ItemStore, opts ...ServiceOption) *Service {
	s := &Service{
		store:     store,
		validator: validation.New(),
		cfg:       DefaultConfig(),
		logger:    slog.Default(),
		now:       time.Now,
		recent:    make(map[string]*Mutation),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Config returns the effective tuning.
func (s *Service) Config() Config {
	return s.cfg
}

// ── Read views ──────────────────────────────────────────────

// loadForView loads the collection for a read view. Read failures degrade
// to an empty collection and are logged.
func (s *Service) loadForView(ctx context.Context) []media.Item {
	items, err := s.store.LoadItems(ctx)
	if err != nil {
		s.logger.Warn("failed to load media items, showing empty library", "error", err)
		return []media.Item{}
	}
	return items
}

// TagSummaries returns every tag with its usage count.
func (s *Service) TagSummaries(ctx context.Context) []media.TagSummary {
	return Summaries(s.loadForView(ctx))
}

// AllTags returns the tag names, most used first.
func (s *Service) AllTags(ctx context.Context) []string {
	return Names(s.TagSummaries(ctx))
}

// TagPreview returns a bounded sample of the items carrying tag. A
// non-positive sampleSize uses the configured default; larger requests are
// clamped to the configured maximum.
func (s *Service) TagPreview(ctx context.Context, tag string, sampleSize int) media.TagPreview {
	return PreviewOf(s.loadForView(ctx), tag, s.sampleSize(sampleSize))
}

func (s *Service) sampleSize(n int) int {
	if n <= 0 {
		return s.cfg.PreviewSampleSize
	}
	if n > s.cfg.PreviewMaxSample {
		return s.cfg.PreviewMaxSample
	}
	return n
}

// Suggest returns autocomplete suggestions for query, skipping exclude.
func (s *Service) Suggest(ctx context.Context, query string, exclude []string) []string {
	return Suggest(s.AllTags(ctx), query, exclude, s.cfg.SuggestionLimit)
}

// Items returns the items passing filter, in collection order.
func (s *Service) Items(ctx context.Context, filter media.Filter) []media.Item {
	return filter.Apply(s.loadForView(ctx))
}

// PlaylistURL builds a playlist link from the items passing filter.
func (s *Service) PlaylistURL(ctx context.Context, filter media.Filter) string {
	items := s.Items(ctx, filter)
	urls := make([]string, len(items))
	for i, it := range items {
		urls[i] = it.URL
	}
	return metadata.PlaylistURL(urls)
}

func (s *Service) viewOf(items []media.Item, focus string) View {
	v := View{Items: items, Summaries: Summaries(items)}
	if focus != "" {
		v.Preview = PreviewOf(items, focus, s.cfg.PreviewSampleSize)
	}
	return v
}

// reload re-reads the collection from the store after caches were dropped.
func (s *Service) reload(ctx context.Context, focus string) View {
	return s.viewOf(s.loadForView(ctx), focus)
}

// ── Mutation protocol ───────────────────────────────────────

// Begin validates intent and returns a Mutation awaiting confirmation. Only
// one mutation may be in flight; a second Begin fails with ErrConflict until
// the first reaches a terminal state.
func (s *Service) Begin(intent Intent) (*Mutation, error) {
	if intent == nil {
		return nil, apperr.Validation("missing tag mutation")
	}
	normalized := intent.normalize()
	if err := s.validator.Validate(normalized); err != nil {
		return nil, err
	}

	m := &Mutation{
		ID:     uuid.NewString(),
		Intent: normalized,
		svc:    s,
		state:  StatePending,
	}
	if err := s.acquire(m); err != nil {
		return nil, err
	}
	return m, nil
}

func (s *Service) acquire(m *Mutation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight != nil && s.inflight != m {
		return apperr.Conflict("another tag mutation is in progress")
	}
	s.inflight = m
	return nil
}

func (s *Service) release(m *Mutation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inflight == m {
		s.inflight = nil
	}
}

// committed records a successful commit and frees the in-flight slot.
func (s *Service) committed(ctx context.Context, m *Mutation) {
	s.mu.Lock()
	if s.inflight == m {
		s.inflight = nil
	}
	now := s.now()
	for id, old := range s.recent {
		if now.Sub(old.committedAt) > recentRetention {
			delete(s.recent, id)
		}
	}
	s.recent[m.ID] = m
	s.mu.Unlock()

	attrs := []any{
		"mutation_id", m.ID,
		"action", string(m.Intent.Kind()),
		"tag", m.Intent.origin(),
		"affected", m.view.Affected,
	}
	if target := m.Intent.focus(); target != "" {
		attrs = append(attrs, "target", target)
	}
	s.logger.Info("tag mutation committed", attrs...)
	s.store.Audit(ctx, string(m.Intent.Kind()), m.Describe())
}

// Mutation returns a recently committed mutation by id.
func (s *Service) Mutation(id string) (*Mutation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.recent[id]
	if !ok {
		return nil, apperr.NotFoundf("mutation %s not found", id)
	}
	return m, nil
}

// Undo undoes a recently committed mutation by id and returns the tag to
// navigate back to.
func (s *Service) Undo(ctx context.Context, id string) (string, error) {
	m, err := s.Mutation(id)
	if err != nil {
		return "", err
	}
	return m.Undo(ctx)
}

// run drives a mutation through apply and commit.
func (s *Service) run(ctx context.Context, intent Intent) (*Mutation, error) {
	m, err := s.Begin(intent)
	if err != nil {
		return nil, err
	}
	if _, err := m.Apply(ctx); err != nil {
		return m, err
	}
	if err := m.Commit(ctx); err != nil {
		return m, err
	}
	return m, nil
}

// RenameTag renames a tag across the library.
func (s *Service) RenameTag(ctx context.Context, req RenameRequest) (*Mutation, error) {
	return s.run(ctx, req)
}

// MergeTags folds one tag into another across the library.
func (s *Service) MergeTags(ctx context.Context, req MergeRequest) (*Mutation, error) {
	return s.run(ctx, req)
}

// DeleteTag removes a tag across the library, optionally substituting a
// replacement.
func (s *Service) DeleteTag(ctx context.Context, req DeleteRequest) (*Mutation, error) {
	return s.run(ctx, req)
}

// ── Library operations ─────────────────────────────────────

// AddLinkRequest is a new link submitted by the user.
type AddLinkRequest struct {
	URL       string   `json:"url" validate:"required,url"`
	Tags      []string `json:"tags"`
	Title     string   `json:"title,omitempty" validate:"max=300"`
	Channel   string   `json:"channel,omitempty" validate:"max=300"`
	Thumbnail string   `json:"thumbnail,omitempty" validate:"omitempty,url"`
}

// AddLink saves a new YouTube link. Missing display fields are filled from
// metadata enrichment; when enrichment fails the thumbnail falls back to the
// video's still image and the title to the link itself.
func (s *Service) AddLink(ctx context.Context, req AddLinkRequest) (media.Item, error) {
	if err := s.validator.Validate(req); err != nil {
		return media.Item{}, err
	}
	videoID := metadata.ExtractVideoID(req.URL)
	if videoID == "" {
		return media.Item{}, apperr.Validation("url must be a YouTube video link")
	}

	items, err := s.store.LoadItems(ctx)
	if err != nil {
		return media.Item{}, err
	}
	for _, it := range items {
		if metadata.ExtractVideoID(it.URL) == videoID {
			return media.Item{}, apperr.AlreadyExistsf("video %s is already saved as %s", videoID, it.ID)
		}
	}

	in := media.Input{
		URL:       req.URL,
		Tags:      req.Tags,
		Title:     req.Title,
		Channel:   req.Channel,
		Thumbnail: req.Thumbnail,
	}
	s.enrich(ctx, &in, videoID)

	item, err := s.store.AddItem(ctx, in)
	if err != nil {
		return media.Item{}, err
	}
	s.logger.Info("media item added", "item_id", item.ID, "video_id", videoID, "tags", len(item.Tags))
	s.store.Audit(ctx, "add", item.ID+" "+item.URL)
	return item, nil
}

func (s *Service) enrich(ctx context.Context, in *media.Input, videoID string) {
	if in.Title != "" && in.Channel != "" && in.Thumbnail != "" {
		return
	}
	if s.resolver != nil {
		if md := s.resolver.Resolve(ctx, in.URL); md != nil {
			if in.Title == "" {
				in.Title = md.Title
			}
			if in.Channel == "" {
				in.Channel = md.AuthorName
			}
			if in.Thumbnail == "" {
				in.Thumbnail = md.ThumbnailURL
			}
		}
	}
	if in.Thumbnail == "" {
		in.Thumbnail = metadata.ThumbnailURL(videoID)
	}
	if in.Title == "" {
		in.Title = in.URL
	}
}

// Item returns one saved item.
func (s *Service) Item(ctx context.Context, id string) (media.Item, error) {
	return s.store.GetItem(ctx, id)
}

// EditItem applies a partial update to an item.
func (s *Service) EditItem(ctx context.Context, id string, patch media.Patch) (media.Item, error) {
	if patch.URL != nil && metadata.ExtractVideoID(*patch.URL) == "" {
		return media.Item{}, apperr.Validation("url must be a YouTube video link")
	}
	item, err := s.store.UpdateItem(ctx, id, patch)
	if err != nil {
		return media.Item{}, err
	}
	s.store.Audit(ctx, "edit", item.ID)
	return item, nil
}

// AddItemTag adds a manually entered tag to an item. A tag the item already
// carries in any letter case is rejected with ErrAlreadyExists.
func (s *Service) AddItemTag(ctx context.Context, id, tag string) (media.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return media.Item{}, err
	}
	if media.NormalizeTag(tag) == "" {
		return media.Item{}, apperr.Validation("tag must not be empty")
	}
	tags, added := media.AddTag(item.Tags, tag)
	if !added {
		return media.Item{}, apperr.AlreadyExistsf("item %s already has tag %q", id, media.NormalizeTag(tag))
	}
	return s.EditItem(ctx, id, media.Patch{Tags: &tags})
}

// RemoveItemTag removes a tag from an item.
func (s *Service) RemoveItemTag(ctx context.Context, id, tag string) (media.Item, error) {
	item, err := s.store.GetItem(ctx, id)
	if err != nil {
		return media.Item{}, err
	}
	if !item.HasTag(tag) {
		return media.Item{}, apperr.NotFoundf("item %s has no tag %q", id, tag)
	}
	tags := media.RemoveTag(item.Tags, tag)
	return s.EditItem(ctx, id, media.Patch{Tags: &tags})
}

// RemoveItem deletes an item.
func (s *Service) RemoveItem(ctx context.Context, id string) error {
	if err := s.store.DeleteItem(ctx, id); err != nil {
		return err
	}
	s.logger.Info("media item removed", "item_id", id)
	s.store.Audit(ctx, "remove", id)
	return nil
}

// Backfill fills missing title, channel and thumbnail fields from metadata
// enrichment and returns how many items changed.
func (s *Service) Backfill(ctx context.Context) (int, error) {
	items, revision, err := s.store.Snapshot(ctx)
	if err != nil {
		return 0, err
	}

	updated := 0
	for i, it := range items {
		if it.Title != "" && it.Channel != "" && it.Thumbnail != "" {
			continue
		}
		videoID := metadata.ExtractVideoID(it.URL)
		if videoID == "" {
			continue
		}
		in := media.Input{URL: it.URL, Title: it.Title, Channel: it.Channel, Thumbnail: it.Thumbnail}
		s.enrich(ctx, &in, videoID)
		if in.Title == it.Title && in.Channel == it.Channel && in.Thumbnail == it.Thumbnail {
			continue
		}
		items[i].Title, items[i].Channel, items[i].Thumbnail = in.Title, in.Channel, in.Thumbnail
		updated++
	}

	if updated == 0 {
		return 0, nil
	}
	if err := s.store.SaveItemsIfRevision(ctx, items, revision); err != nil {
		return 0, err
	}
	s.logger.Info("metadata backfilled", "updated", updated)
	s.store.Audit(ctx, "backfill", fmt.Sprintf("%d items", updated))
	return updated, nil
}

// Bundles returns the configured recommended tags.
func (s *Service) Bundles() []Bundle {
	return s.cfg.Bundles
}

// ImportRecommended saves the videos of the named recommended tag that are
// not in the library yet, each tagged with it. It returns the added items;
// an empty result means everything was already saved.
func (s *Service) ImportRecommended(ctx context.Context, tag string) ([]media.Item, error) {
	var bundle *Bundle
	for i := range s.cfg.Bundles {
		if s.cfg.Bundles[i].Tag == tag {
			bundle = &s.cfg.Bundles[i]
			break
		}
	}
	if bundle == nil {
		return nil, apperr.NotFoundf("recommended tag %q not found", tag)
	}

	items, err := s.store.LoadItems(ctx)
	if err != nil {
		return nil, err
	}
	existing := make(map[string]struct{}, len(items))
	for _, it := range items {
		existing[it.URL] = struct{}{}
	}

	var inputs []media.Input
	for _, url := range bundle.Videos {
		if _, ok := existing[url]; ok {
			continue
		}
		in := media.Input{
			URL:     url,
			Tags:    []string{bundle.Tag},
			Title:   fmt.Sprintf("%s recommended track %d", bundle.Tag, len(inputs)+1),
			Channel: "tagshelf Recommend",
		}
		if videoID := metadata.ExtractVideoID(url); videoID != "" {
			in.Thumbnail = metadata.ThumbnailURL(videoID)
		}
		inputs = append(inputs, in)
	}
	if len(inputs) == 0 {
		return []media.Item{}, nil
	}

	added, err := s.store.AddItems(ctx, inputs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("recommended tag imported", "tag", bundle.Tag, "added", len(added))
	s.store.Audit(ctx, "recommend", fmt.Sprintf("%s (%d items)", bundle.Tag, len(added)))
	return added, nil
}

// Settings returns the app settings.
func (s *Service) Settings(ctx context.Context) media.Settings {
	return s.store.LoadSettings(ctx)
}

// SaveSettings validates and replaces the app settings.
func (s *Service) SaveSettings(ctx context.Context, settings media.Settings) error {
	if err := s.validator.Validate(settings); err != nil {
		return err
	}
	return s.store.SaveSettings(ctx, settings)
}

// History returns the latest audit entries.
func (s *Service) History(ctx context.Context, limit int) ([]storage.AuditEntry, error) {
	return s.store.RecentAudit(ctx, limit)
}
