package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/runnerr0/tagshelf/internal/apperr"
	"github.com/runnerr0/tagshelf/internal/media"
	"github.com/runnerr0/tagshelf/internal/metadata"
	"github.com/runnerr0/tagshelf/internal/tags"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// ── Tags ────────────────────────────────────────────────────

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.svc.TagSummaries(r.Context()))
}

func (s *Server) handleSuggest(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	writeJSON(w, r, http.StatusOK, s.svc.Suggest(r.Context(), q.Get("q"), q["exclude"]))
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	sample, err := queryInt(r, "sample", 0)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.svc.TagPreview(r.Context(), pathParam(r, "name"), sample))
}

// mutationResponse reports a tag mutation without the full collection.
type mutationResponse struct {
	ID          string             `json:"id"`
	Kind        tags.Kind          `json:"kind"`
	State       tags.State         `json:"state"`
	Description string             `json:"description"`
	Impact      string             `json:"impact"`
	Outcome     string             `json:"outcome,omitempty"`
	Destination string             `json:"destination"`
	Affected    int                `json:"affected"`
	UndoUntil   *time.Time         `json:"undoUntil,omitempty"`
	Summaries   []media.TagSummary `json:"summaries"`
	Preview     media.TagPreview   `json:"preview"`
}

func (s *Server) newMutationResponse(m *tags.Mutation) mutationResponse {
	view := m.View()
	resp := mutationResponse{
		ID:          m.ID,
		Kind:        m.Intent.Kind(),
		State:       m.State(),
		Description: m.Describe(),
		Impact:      m.Impact(view.Affected),
		Destination: m.Destination(),
		Affected:    view.Affected,
		Summaries:   view.Summaries,
		Preview:     view.Preview,
	}
	if resp.State == tags.StateCommitted {
		resp.Outcome = m.Outcome()
		until := m.CommittedAt().Add(s.svc.Config().UndoWindow)
		resp.UndoUntil = &until
	}
	return resp
}

// runMutation commits intent, or with ?dry_run=true applies and rolls it
// back so the caller can show the impact before confirming.
func (s *Server) runMutation(w http.ResponseWriter, r *http.Request, intent tags.Intent) {
	ctx := r.Context()
	dryRun, _ := strconv.ParseBool(r.URL.Query().Get("dry_run"))

	m, err := s.svc.Begin(intent)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if dryRun {
		if _, err := m.Apply(ctx); err != nil {
			writeError(w, r, err)
			return
		}
		resp := s.newMutationResponse(m)
		if err := m.Rollback(); err != nil {
			writeError(w, r, err)
			return
		}
		resp.State = m.State()
		writeJSON(w, r, http.StatusOK, resp)
		return
	}

	if _, err := m.Apply(ctx); err != nil {
		writeError(w, r, err)
		return
	}
	if err := m.Commit(ctx); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, s.newMutationResponse(m))
}

func (s *Server) handleRename(w http.ResponseWriter, r *http.Request) {
	var req tags.RenameRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.runMutation(w, r, req)
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	var req tags.MergeRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.runMutation(w, r, req)
}

func (s *Server) handleDeleteTag(w http.ResponseWriter, r *http.Request) {
	var req tags.DeleteRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	s.runMutation(w, r, req)
}

func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	tag, err := s.svc.Undo(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"tag": tag})
}

// ── Items ───────────────────────────────────────────────────

func filterFromQuery(r *http.Request) media.Filter {
	q := r.URL.Query()
	return media.Filter{Include: q["tag"], Exclude: q["exclude"]}
}

func (s *Server) handleListItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.svc.Items(r.Context(), filterFromQuery(r)))
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var req tags.AddLinkRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := s.svc.AddLink(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, item)
}

func (s *Server) handleGetItem(w http.ResponseWriter, r *http.Request) {
	item, err := s.svc.Item(r.Context(), pathParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handlePatchItem(w http.ResponseWriter, r *http.Request) {
	var patch media.Patch
	if err := s.decodeJSON(w, r, &patch); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := s.svc.EditItem(r.Context(), pathParam(r, "id"), patch)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.RemoveItem(r.Context(), pathParam(r, "id")); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type itemTagRequest struct {
	Tag string `json:"tag"`
}

func (s *Server) handleAddItemTag(w http.ResponseWriter, r *http.Request) {
	var req itemTagRequest
	if err := s.decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	item, err := s.svc.AddItemTag(r.Context(), pathParam(r, "id"), req.Tag)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handleRemoveItemTag(w http.ResponseWriter, r *http.Request) {
	item, err := s.svc.RemoveItemTag(r.Context(), pathParam(r, "id"), pathParam(r, "tag"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, item)
}

func (s *Server) handlePlaylist(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"url": s.svc.PlaylistURL(r.Context(), filterFromQuery(r))})
}

// ── Recommended, settings, history, metadata ───────────────

type bundleResponse struct {
	Tag         string   `json:"tag"`
	Description string   `json:"description"`
	Videos      []string `json:"videos"`
}

func (s *Server) handleListRecommended(w http.ResponseWriter, r *http.Request) {
	bundles := s.svc.Bundles()
	out := make([]bundleResponse, len(bundles))
	for i, b := range bundles {
		out[i] = bundleResponse{Tag: b.Tag, Description: b.Description, Videos: b.Videos}
	}
	writeJSON(w, r, http.StatusOK, out)
}

func (s *Server) handleImportRecommended(w http.ResponseWriter, r *http.Request) {
	added, err := s.svc.ImportRecommended(r.Context(), pathParam(r, "tag"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"added": added})
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, s.svc.Settings(r.Context()))
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	settings := media.DefaultSettings()
	if err := s.decodeJSON(w, r, &settings); err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.svc.SaveSettings(r.Context(), settings); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, settings)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 20)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := s.svc.History(r.Context(), limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entries)
}

func (s *Server) handleMetadata(w http.ResponseWriter, r *http.Request) {
	link := r.URL.Query().Get("url")
	if link == "" {
		writeError(w, r, apperr.Validation("url query parameter is required"))
		return
	}
	if metadata.ExtractVideoID(link) == "" {
		writeError(w, r, apperr.Validation("url must be a YouTube video link"))
		return
	}
	if s.lookup == nil {
		writeError(w, r, apperr.Enrichment("metadata enrichment is disabled", nil))
		return
	}
	md, err := s.lookup.Lookup(r.Context(), link)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, md)
}
