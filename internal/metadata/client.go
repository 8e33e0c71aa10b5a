package metadata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/runnerr0/tagshelf/internal/apperr"
)

// DefaultEndpoint is YouTube's public oEmbed endpoint.
const DefaultEndpoint = "https://www.youtube.com/oembed"

// ErrNotYouTube is returned by Lookup for links without a video id.
var ErrNotYouTube = errors.New("not a YouTube link")

// Metadata is the display metadata of one video.
type Metadata struct {
	Title        string `json:"title"`
	AuthorName   string `json:"author_name"`
	ThumbnailURL string `json:"thumbnail_url"`
}

// Cache stores resolved metadata keyed by video id.
type Cache interface {
	GetMetadata(ctx context.Context, videoID string, dst any) (bool, error)
	SetMetadata(ctx context.Context, videoID string, v any) error
}

// Config configures a Client.
type Config struct {
	Endpoint          string
	Timeout           time.Duration
	RequestsPerSecond float64
	Burst             int
}

// Client resolves links through oEmbed. Lookups are cached, rate limited,
// and concurrent lookups of the same video share one request.
type Client struct {
	httpClient  *http.Client
	endpoint    string
	cache       Cache
	rateLimiter *rate.Limiter
	group       singleflight.Group
	logger      *slog.Logger
}

// NewClient creates a Client. cache may be nil.
func NewClient(cfg Config, cache Cache, logger *slog.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 2
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 4
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient:  &http.Client{Timeout: cfg.Timeout},
		endpoint:    cfg.Endpoint,
		cache:       cache,
		rateLimiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		logger:      logger,
	}
}

// Resolve returns the metadata of link, or nil on any failure. Enrichment
// never blocks the caller's own work, so failures are only logged.
func (c *Client) Resolve(ctx context.Context, link string) *Metadata {
	md, err := c.Lookup(ctx, link)
	if err != nil {
		c.logger.Debug("metadata lookup failed", "url", link, "error", err)
		return nil
	}
	return md
}

// Lookup is Resolve with the failure reported as an ErrEnrichment error.
func (c *Client) Lookup(ctx context.Context, link string) (*Metadata, error) {
	videoID := ExtractVideoID(link)
	if videoID == "" {
		return nil, apperr.Enrichment("cannot resolve metadata", ErrNotYouTube)
	}

	if c.cache != nil {
		var cached Metadata
		found, err := c.cache.GetMetadata(ctx, videoID, &cached)
		if err != nil {
			c.logger.Warn("metadata cache read failed", "video_id", videoID, "error", err)
		} else if found {
			return &cached, nil
		}
	}

	v, err, _ := c.group.Do(videoID, func() (any, error) {
		return c.fetch(ctx, link)
	})
	if err != nil {
		return nil, apperr.Enrichment("cannot resolve metadata", err)
	}
	md := v.(*Metadata)

	if c.cache != nil {
		if err := c.cache.SetMetadata(ctx, videoID, md); err != nil {
			c.logger.Warn("metadata cache write failed", "video_id", videoID, "error", err)
		}
	}

	out := *md
	return &out, nil
}

func (c *Client) fetch(ctx context.Context, link string) (*Metadata, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	params := url.Values{}
	params.Set("url", link)
	params.Set("format", "json")
	reqURL := c.endpoint + "?" + params.Encode()

	c.logger.Debug("fetching oEmbed metadata", "url", reqURL)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("oembed request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, fmt.Errorf("oembed failed: status %d", resp.StatusCode)
	}

	var md Metadata
	if err := json.NewDecoder(resp.Body).Decode(&md); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}
	if md.Title == "" && md.AuthorName == "" && md.ThumbnailURL == "" {
		return nil, errors.New("oembed returned no data")
	}
	return &md, nil
}
