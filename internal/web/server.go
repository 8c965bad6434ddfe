package web

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/rs/zerolog/log"

	"github.com/jgoulah/roomwatt/internal/pipeline"
	"github.com/jgoulah/roomwatt/internal/version"
)

// DashboardLoader runs one full dashboard load
type DashboardLoader interface {
	Load(ctx context.Context) (*pipeline.Snapshot, error)
}

// Server exposes the dashboard over HTTP. Every request to /api/dashboard
// is a fresh load; nothing is cached between requests.
type Server struct {
	loader DashboardLoader
	server *http.Server
}

// NewServer creates a server listening on addr
func NewServer(loader DashboardLoader, addr string) *Server {
	mux := http.NewServeMux()
	s := &Server{
		loader: loader,
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 10 * time.Second,
		},
	}

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	return s
}

// Handler returns the request router
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// Start serves until Shutdown is called
func (s *Server) Start() error {
	log.Info().Str("addr", s.server.Addr).Msg("Starting web server")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snap, err := s.loader.Load(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Dashboard request failed")
		writeJSON(w, http.StatusBadGateway, map[string]any{
			"success": false,
			"error":   "Failed to load usage data",
		})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.Get(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.MarshalWrite(w, v); err != nil {
		log.Error().Err(err).Msg("Writing JSON response")
	}
}
