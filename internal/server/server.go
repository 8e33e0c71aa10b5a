// Package server exposes the tag library as a local HTTP JSON API.
//
// Routes:
//
//	GET    /healthz
//	GET    /api/tags
//	GET    /api/tags/suggest?q=&exclude=
//	GET    /api/tags/{name}/preview?sample=
//	POST   /api/tags/rename|merge|delete[?dry_run=true]
//	POST   /api/mutations/{id}/undo
//	GET    /api/items?tag=&exclude=
//	POST   /api/items
//	GET    /api/items/{id}
//	PATCH  /api/items/{id}
//	DELETE /api/items/{id}
//	POST   /api/items/{id}/tags
//	DELETE /api/items/{id}/tags/{tag}
//	GET    /api/playlist?tag=&exclude=
//	GET    /api/recommended
//	POST   /api/recommended/{tag}/import
//	GET    /api/settings
//	PUT    /api/settings
//	GET    /api/history?limit=
//	GET    /api/metadata?url=
//
// Errors render as {"error":{"code","message","details"}} with the status of
// the apperr code.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/runnerr0/tagshelf/internal/metadata"
	"github.com/runnerr0/tagshelf/internal/tags"
)

const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 15 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	shutdownTimeout   = 10 * time.Second
)

// MetadataLookup resolves display metadata for a link.
type MetadataLookup interface {
	Lookup(ctx context.Context, link string) (*metadata.Metadata, error)
}

// Options configures a Server.
type Options struct {
	Addr           string
	CORSOrigins    []string
	MaxRequestSize int64
}

// Server serves the HTTP API over a tags.Service.
type Server struct {
	svc            *tags.Service
	lookup         MetadataLookup
	logger         *slog.Logger
	maxRequestSize int64

	router     *chi.Mux
	httpServer *http.Server
}

// New builds the router. lookup may be nil, in which case /api/metadata
// reports enrichment as unavailable.
func New(opts Options, svc *tags.Service, lookup MetadataLookup, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.MaxRequestSize <= 0 {
		opts.MaxRequestSize = 1 << 20
	}

	s := &Server{
		svc:            svc,
		lookup:         lookup,
		logger:         logger,
		maxRequestSize: opts.MaxRequestSize,
		router:         chi.NewRouter(),
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(s.requestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	s.routes()

	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: readHeaderTimeout,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
	return s
}

func (s *Server) routes() {
	r := s.router
	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Route("/tags", func(r chi.Router) {
			r.Get("/", s.handleListTags)
			r.Get("/suggest", s.handleSuggest)
			r.Get("/{name}/preview", s.handlePreview)
			r.Post("/rename", s.handleRename)
			r.Post("/merge", s.handleMerge)
			r.Post("/delete", s.handleDeleteTag)
		})
		r.Post("/mutations/{id}/undo", s.handleUndo)

		r.Route("/items", func(r chi.Router) {
			r.Get("/", s.handleListItems)
			r.Post("/", s.handleAddItem)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.handleGetItem)
				r.Patch("/", s.handlePatchItem)
				r.Delete("/", s.handleDeleteItem)
				r.Post("/tags", s.handleAddItemTag)
				r.Delete("/tags/{tag}", s.handleRemoveItemTag)
			})
		})

		r.Get("/playlist", s.handlePlaylist)
		r.Get("/recommended", s.handleListRecommended)
		r.Post("/recommended/{tag}/import", s.handleImportRecommended)
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handlePutSettings)
		r.Get("/history", s.handleHistory)
		r.Get("/metadata", s.handleMetadata)
	})
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		errCh <- s.httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
