// Package web serves the current normalized dataset over HTTP.
package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"time"

	"conprog/internal/config"
	"conprog/internal/ics"
	appLog "conprog/internal/log"
	"conprog/internal/model"
)

// RefreshFunc rebuilds the dataset from scratch. The server installs the
// result into its store only when the rebuild fully succeeds.
type RefreshFunc func(ctx context.Context) (*model.Dataset, error)

// Server provides the JSON API and the iCalendar feed over the current
// dataset snapshot.
type Server struct {
	cfg     *config.Config
	store   *Store
	refresh RefreshFunc
	mux     *http.ServeMux
}

// NewServer constructs a Server around a snapshot store and a refresh
// callback. refresh may be nil, in which case POST /api/refresh is disabled.
func NewServer(cfg *config.Config, store *Store, refresh RefreshFunc) *Server {
	s := &Server{
		cfg:     cfg,
		store:   store,
		refresh: refresh,
		mux:     http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler, wrapped with basic auth when
// configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/dataset", s.handleDataset)
	s.mux.HandleFunc("GET /api/program", s.handleProgram)
	s.mux.HandleFunc("GET /api/people", s.handlePeople)
	s.mux.HandleFunc("GET /api/locations", s.handleLocations)
	s.mux.HandleFunc("GET /api/tags", s.handleTags)
	s.mux.HandleFunc("POST /api/refresh", s.handleRefresh)
	s.mux.HandleFunc("GET /calendar.ics", s.handleCalendar)
}

func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="conprog", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleDataset(w http.ResponseWriter, _ *http.Request) {
	ds := s.store.Current()
	if ds == nil {
		writeNoDataset(w)
		return
	}
	writeJSON(w, http.StatusOK, ds)
}

func (s *Server) handleProgram(w http.ResponseWriter, _ *http.Request) {
	ds := s.store.Current()
	if ds == nil {
		writeNoDataset(w)
		return
	}
	writeJSON(w, http.StatusOK, ds.Items)
}

func (s *Server) handlePeople(w http.ResponseWriter, _ *http.Request) {
	ds := s.store.Current()
	if ds == nil {
		writeNoDataset(w)
		return
	}
	writeJSON(w, http.StatusOK, ds.People)
}

func (s *Server) handleLocations(w http.ResponseWriter, _ *http.Request) {
	ds := s.store.Current()
	if ds == nil {
		writeNoDataset(w)
		return
	}
	writeJSON(w, http.StatusOK, ds.Locations)
}

func (s *Server) handleTags(w http.ResponseWriter, _ *http.Request) {
	ds := s.store.Current()
	if ds == nil {
		writeNoDataset(w)
		return
	}
	writeJSON(w, http.StatusOK, map[string]model.Taxonomy{
		"tags":       ds.Tags,
		"peopleTags": ds.PeopleTags,
	})
}

// handleRefresh triggers an immediate full refresh. On failure the previous
// dataset stays installed and the client gets a generic load failure.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if s.refresh == nil {
		http.Error(w, "refresh not available", http.StatusNotImplemented)
		return
	}

	ds, err := s.refresh(r.Context())
	if err != nil {
		appLog.Error("manual refresh failed", err)
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": "failed to load program data"})
		return
	}
	s.store.Replace(ds)
	writeJSON(w, http.StatusOK, map[string]any{
		"dataset":     ds.ID,
		"generatedAt": ds.GeneratedAt,
		"items":       len(ds.Items),
		"people":      len(ds.People),
	})
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	ds := s.store.Current()
	if ds == nil {
		writeNoDataset(w)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(ics.Export(ds.Items, r.Host)))
}

func writeNoDataset(w http.ResponseWriter) {
	writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no dataset loaded yet"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("encode response failed", err)
	}
}

// Serve runs the HTTP server until ctx is canceled, then shuts down
// gracefully.
func Serve(ctx context.Context, cfg *config.Config, store *Store, refresh RefreshFunc) error {
	s := NewServer(cfg, store, refresh)
	srv := &http.Server{
		Addr:    cfg.Listen,
		Handler: s.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
