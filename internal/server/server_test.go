package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/tagshelf/internal/apperr"
	"github.com/runnerr0/tagshelf/internal/logger"
	"github.com/runnerr0/tagshelf/internal/media"
	"github.com/runnerr0/tagshelf/internal/metadata"
	"github.com/runnerr0/tagshelf/internal/storage"
	"github.com/runnerr0/tagshelf/internal/tags"
)

type fakeLookup struct {
	md *metadata.Metadata
}

func (f fakeLookup) Lookup(_ context.Context, _ string) (*metadata.Metadata, error) {
	if f.md == nil {
		return nil, apperr.Enrichment("cannot resolve metadata", nil)
	}
	return f.md, nil
}

type testServer struct {
	*Server
	store *storage.ItemStore
}

func setupTestServer(t *testing.T, lookup MetadataLookup) *testServer {
	t.Helper()

	store := storage.NewItemStore(storage.NewMemoryKV(), storage.WithLogger(logger.Discard()))
	require.NoError(t, store.SaveItems(context.Background(), []media.Item{
		{ID: "1", URL: "https://youtu.be/aaaaaaaaaaa", Tags: []string{"jazz", "Chill"}, Title: "One"},
		{ID: "2", URL: "https://youtu.be/bbbbbbbbbbb", Tags: []string{"jazz", "acid jazz"}, Title: "Two"},
	}))

	svc := tags.NewService(store,
		tags.WithLogger(logger.Discard()),
		tags.WithConfig(tags.Config{Bundles: []tags.Bundle{{
			Tag:    "lofi",
			Videos: []string{"https://youtu.be/ccccccccccc"},
		}}}),
	)
	srv := New(Options{CORSOrigins: []string{"http://localhost:3000"}}, svc, lookup, logger.Discard())
	return &testServer{Server: srv, store: store}
}

func (ts *testServer) do(t *testing.T, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type errorEnvelope struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
}

func TestHealth(t *testing.T) {
	ts := setupTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestListTags(t *testing.T) {
	ts := setupTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/api/tags", "")
	require.Equal(t, http.StatusOK, rec.Code)

	got := decode[[]media.TagSummary](t, rec)
	assert.Equal(t, []media.TagSummary{
		{Name: "jazz", Count: 2},
		{Name: "Chill", Count: 1},
		{Name: "acid jazz", Count: 1},
	}, got)
}

func TestSuggest(t *testing.T) {
	ts := setupTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/api/tags/suggest?q=JA&exclude=jazz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"acid jazz"}, decode[[]string](t, rec))
}

func TestPreview(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/tags/acid%20jazz/preview", "")
	require.Equal(t, http.StatusOK, rec.Code)
	p := decode[media.TagPreview](t, rec)
	assert.Equal(t, "acid jazz", p.Tag)
	assert.Equal(t, 1, p.Total)
	require.Len(t, p.Media, 1)
	assert.Equal(t, "Two", p.Media[0].Title)

	rec = ts.do(t, http.MethodGet, "/api/tags/jazz/preview?sample=1", "")
	p = decode[media.TagPreview](t, rec)
	assert.Equal(t, 2, p.Total)
	assert.Len(t, p.Media, 1)

	rec = ts.do(t, http.MethodGet, "/api/tags/jazz/preview?sample=lots", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenameCommitAndUndo(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/tags/rename", `{"currentName":"jazz","nextName":"bebop"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[mutationResponse](t, rec)
	assert.Equal(t, tags.StateCommitted, resp.State)
	assert.Equal(t, tags.KindRename, resp.Kind)
	assert.Equal(t, "Renamed to bebop", resp.Outcome)
	assert.Equal(t, "bebop", resp.Destination)
	assert.Equal(t, 2, resp.Affected)
	assert.Equal(t, `2 media items will reference "bebop".`, resp.Impact)
	assert.NotNil(t, resp.UndoUntil)
	assert.Equal(t, 2, tags.CountOf(resp.Summaries, "bebop"))

	rec = ts.do(t, http.MethodPost, "/api/mutations/"+resp.ID+"/undo", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"tag":"jazz"}`, rec.Body.String())

	items, err := ts.store.LoadItems(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, tags.CountOf(tags.Summaries(items), "jazz"))
}

func TestRenameDryRunLeavesStoreAlone(t *testing.T) {
	ts := setupTestServer(t, nil)
	revision := ts.store.Revision()

	rec := ts.do(t, http.MethodPost, "/api/tags/merge?dry_run=true", `{"source":"acid jazz","target":"jazz"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decode[mutationResponse](t, rec)
	assert.Equal(t, tags.StateRolledBack, resp.State)
	assert.Equal(t, 1, resp.Affected)
	assert.Equal(t, 0, tags.CountOf(resp.Summaries, "acid jazz"), "optimistic view")
	assert.Nil(t, resp.UndoUntil)
	assert.Equal(t, revision, ts.store.Revision())

	// The slot is free again.
	rec = ts.do(t, http.MethodPost, "/api/tags/merge", `{"source":"acid jazz","target":"jazz"}`)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDeleteTagWithReplacement(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/tags/delete", `{"tag":"Chill","replacement":"jazz"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	resp := decode[mutationResponse](t, rec)
	assert.Equal(t, "Replaced Chill with jazz", resp.Outcome)
	assert.Equal(t, "", resp.Destination)
	assert.Equal(t, 0, tags.CountOf(resp.Summaries, "Chill"))
	assert.Equal(t, 2, tags.CountOf(resp.Summaries, "jazz"))
}

func TestMutationValidationErrors(t *testing.T) {
	ts := setupTestServer(t, nil)

	tests := []struct {
		name   string
		target string
		body   string
	}{
		{"self rename", "/api/tags/rename", `{"currentName":"jazz","nextName":" jazz "}`},
		{"self merge", "/api/tags/merge", `{"source":"jazz","target":"jazz"}`},
		{"missing tag", "/api/tags/delete", `{}`},
		{"unknown field", "/api/tags/rename", `{"from":"jazz"}`},
		{"broken json", "/api/tags/rename", `{"currentName":`},
		{"empty body", "/api/tags/rename", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := ts.do(t, http.MethodPost, tt.target, tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			env := decode[errorEnvelope](t, rec)
			assert.Equal(t, "VALIDATION", env.Error.Code)
		})
	}
}

func TestUndoUnknownMutation(t *testing.T) {
	ts := setupTestServer(t, nil)
	rec := ts.do(t, http.MethodPost, "/api/mutations/nope/undo", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", decode[errorEnvelope](t, rec).Error.Code)
}

func TestItemsLifecycle(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(t, http.MethodPost, "/api/items", `{"url":"https://youtu.be/dQw4w9WgXcQ","tags":["80s"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[media.Item](t, rec)
	assert.Equal(t, []string{"80s"}, created.Tags)
	assert.Equal(t, metadata.ThumbnailURL("dQw4w9WgXcQ"), created.Thumbnail)

	rec = ts.do(t, http.MethodPost, "/api/items", `{"url":"https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_EXISTS", decode[errorEnvelope](t, rec).Error.Code)

	rec = ts.do(t, http.MethodGet, "/api/items/"+created.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created, decode[media.Item](t, rec))

	rec = ts.do(t, http.MethodPatch, "/api/items/"+created.ID, `{"title":"Never Gonna"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Never Gonna", decode[media.Item](t, rec).Title)

	rec = ts.do(t, http.MethodPost, "/api/items/"+created.ID+"/tags", `{"tag":"pop"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"80s", "pop"}, decode[media.Item](t, rec).Tags)

	rec = ts.do(t, http.MethodPost, "/api/items/"+created.ID+"/tags", `{"tag":"POP"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = ts.do(t, http.MethodDelete, "/api/items/"+created.ID+"/tags/80s", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"pop"}, decode[media.Item](t, rec).Tags)

	rec = ts.do(t, http.MethodDelete, "/api/items/"+created.ID, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/items/"+created.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAddItemRejectsNonYouTube(t *testing.T) {
	ts := setupTestServer(t, nil)
	rec := ts.do(t, http.MethodPost, "/api/items", `{"url":"https://vimeo.com/1"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListItemsAndPlaylist(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/items?tag=jazz&exclude=Chill", "")
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]media.Item](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "2", items[0].ID)

	rec = ts.do(t, http.MethodGet, "/api/playlist?tag=jazz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t,
		`{"url":"https://www.youtube.com/watch_videos?video_ids=aaaaaaaaaaa,bbbbbbbbbbb"}`,
		rec.Body.String())
}

func TestRecommended(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/recommended", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"lofi"`)

	rec = ts.do(t, http.MethodPost, "/api/recommended/lofi/import", "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decode[map[string][]media.Item](t, rec)
	assert.Len(t, got["added"], 1)

	rec = ts.do(t, http.MethodPost, "/api/recommended/unknown/import", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSettings(t *testing.T) {
	ts := setupTestServer(t, nil)

	rec := ts.do(t, http.MethodGet, "/api/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, media.DefaultSettings(), decode[media.Settings](t, rec))

	rec = ts.do(t, http.MethodPut, "/api/settings", `{"theme":"neon","language":"en","notifications":true}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decode[errorEnvelope](t, rec)
	assert.Equal(t, "must be one of: light dark", env.Error.Details["theme"])

	rec = ts.do(t, http.MethodPut, "/api/settings", `{"theme":"dark","language":"ko","notifications":false}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/settings", "")
	assert.Equal(t, media.Settings{Theme: "dark", Language: "ko"}, decode[media.Settings](t, rec))
}

func TestHistoryWithoutAuditLog(t *testing.T) {
	ts := setupTestServer(t, nil)
	rec := ts.do(t, http.MethodGet, "/api/history", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestMetadata(t *testing.T) {
	ts := setupTestServer(t, fakeLookup{md: &metadata.Metadata{Title: "T", AuthorName: "A", ThumbnailURL: "https://i.ytimg.com/x.jpg"}})

	rec := ts.do(t, http.MethodGet, "/api/metadata?url=https://youtu.be/dQw4w9WgXcQ", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"title":"T","author_name":"A","thumbnail_url":"https://i.ytimg.com/x.jpg"}`, rec.Body.String())

	rec = ts.do(t, http.MethodGet, "/api/metadata", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = ts.do(t, http.MethodGet, "/api/metadata?url=https://example.com/", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMetadataFailures(t *testing.T) {
	disabled := setupTestServer(t, nil)
	rec := disabled.do(t, http.MethodGet, "/api/metadata?url=https://youtu.be/dQw4w9WgXcQ", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	failing := setupTestServer(t, fakeLookup{})
	rec = failing.do(t, http.MethodGet, "/api/metadata?url=https://youtu.be/dQw4w9WgXcQ", "")
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "ENRICHMENT", decode[errorEnvelope](t, rec).Error.Code)
}

func TestCORSPreflight(t *testing.T) {
	ts := setupTestServer(t, nil)

	req := httptest.NewRequest(http.MethodOptions, "/api/tags/rename", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)

	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/tags", nil)
	req.Header.Set("Origin", "http://evil.test")
	rec = httptest.NewRecorder()
	ts.Handler().ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestBodyLimit(t *testing.T) {
	ts := setupTestServer(t, nil)
	ts.maxRequestSize = 32

	body := `{"currentName":"` + strings.Repeat("x", 64) + `","nextName":"y"}`
	rec := ts.do(t, http.MethodPost, "/api/tags/rename", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[errorEnvelope](t, rec).Error.Message, "exceeds 32 bytes")
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	store := storage.NewItemStore(storage.NewMemoryKV(), storage.WithLogger(logger.Discard()))
	svc := tags.NewService(store, tags.WithLogger(logger.Discard()))
	srv := New(Options{Addr: "127.0.0.1:0"}, svc, nil, logger.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()
	cancel()
	assert.NoError(t, <-done)
}
