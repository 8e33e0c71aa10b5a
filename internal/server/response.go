package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/runnerr0/tagshelf/internal/apperr"
	"github.com/runnerr0/tagshelf/internal/logger"
)

type errorBody struct {
	Error *apperr.Error `json:"error"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.FromContext(r.Context()).Error("failed to encode JSON response", "error", err)
	}
}

// writeError maps err onto its apperr status. Anything uncoded is a 500 with
// a generic message.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		logger.FromContext(r.Context()).Error("unhandled error", "error", err)
		appErr = apperr.Internal("internal server error", nil)
	} else if appErr.Code == apperr.CodeInternal {
		logger.FromContext(r.Context()).Error("internal error", "error", err)
	}
	writeJSON(w, r, appErr.HTTPStatus(), errorBody{Error: appErr})
}

// decodeJSON reads a size-limited JSON body into dst.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxRequestSize)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return apperr.Validationf("request body exceeds %d bytes", maxErr.Limit)
		case errors.Is(err, io.EOF):
			return apperr.Validation("request body is empty")
		default:
			return apperr.Validationf("invalid JSON body: %v", err)
		}
	}
	if dec.More() {
		return apperr.Validation("request body must hold a single JSON value")
	}
	return nil
}

// pathParam returns the unescaped URL parameter key.
func pathParam(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback, nil
	}
	var n int
	if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
		return 0, apperr.Validationf("%s must be an integer", key)
	}
	return n, nil
}
