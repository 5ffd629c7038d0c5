package api

import (
	"context"
	"net/http"
	"time"

	"github.com/ignite/creative-catalog/internal/config"
)

// Server represents the dashboard server
type Server struct {
	config  config.ServerConfig
	handler http.Handler
	server  *http.Server
}

// NewServer creates a new dashboard server
func NewServer(cfg config.ServerConfig, h *Handlers, mediaDir string) *Server {
	router := SetupRoutes(h, StaticDirs{Dashboard: cfg.DashboardDir, Media: mediaDir})
	return &Server{config: cfg, handler: router}
}

// ListenAndServe starts the HTTP server on the configured address
func (s *Server) ListenAndServe() error {
	s.server = &http.Server{
		Addr:    s.config.Addr(),
		Handler: s.handler,
		// The media proxy streams large creatives; other handlers are quick
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      2 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the HTTP handler for testing
func (s *Server) Handler() http.Handler {
	return s.handler
}
