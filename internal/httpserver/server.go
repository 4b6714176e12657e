// Package httpserver exposes the MCP endpoint, metrics and a small read API
// over HTTP.
package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ventanita/internal/config"
	"ventanita/internal/logger"
	"ventanita/internal/render"
	"ventanita/internal/service"
	"ventanita/internal/storage"
)

// ContentReader is the read side the public API needs.
type ContentReader interface {
	StructuredData(ctx context.Context, pageID string, preview bool) ([]byte, error)
	RenderBlocks(ctx context.Context, pageID, field string, preview bool) ([]render.Fragment, error)
}

type Deps struct {
	Content ContentReader
	MCP     http.Handler // optional
	Metrics http.Handler // optional
	Health  func(ctx context.Context) error
	Log     *logger.Logger
}

// Router builds the HTTP routes.
func Router(cfg config.ServerConfig, deps Deps) http.Handler {
	h := &handler{deps: deps}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(h.logRequests)

	r.Get("/healthz", h.health)
	if deps.Metrics != nil {
		r.Handle(cfg.MetricsPath, deps.Metrics)
	}
	if deps.MCP != nil {
		r.Handle(cfg.MCPPath, deps.MCP)
	}

	r.Route("/api/pages/{pageID}", func(r chi.Router) {
		r.Get("/structured-data", h.structuredData)
		r.Get("/blocks/{field}", h.blocks)
	})
	return r
}

// Serve runs the router on cfg.HTTPAddr until ctx is cancelled.
func Serve(ctx context.Context, cfg config.ServerConfig, handler http.Handler, log *logger.Logger) error {
	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// ── Handlers ───────────────────────────────────────────────

type handler struct {
	deps Deps
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.deps.Log.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	if h.deps.Health != nil {
		if err := h.deps.Health(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func preview(r *http.Request) bool {
	switch r.URL.Query().Get("preview") {
	case "1", "true":
		return true
	}
	return false
}

func (h *handler) structuredData(w http.ResponseWriter, r *http.Request) {
	doc, err := h.deps.Content.StructuredData(r.Context(), chi.URLParam(r, "pageID"), preview(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/ld+json")
	w.WriteHeader(http.StatusOK)
	w.Write(doc)
}

func (h *handler) blocks(w http.ResponseWriter, r *http.Request) {
	frags, err := h.deps.Content.RenderBlocks(r.Context(), chi.URLParam(r, "pageID"), chi.URLParam(r, "field"), preview(r))
	if err != nil {
		h.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, frags)
}

// fail maps service errors to status codes. Pages that are not live are
// reported as missing.
func (h *handler) fail(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, storage.ErrNotFound), errors.Is(err, service.ErrInvalidPage):
		status = http.StatusNotFound
	default:
		h.deps.Log.Error("request failed", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
