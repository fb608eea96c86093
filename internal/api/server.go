package api

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/postmortemhq/postmortem-engine/internal/config"
)

// Server wraps the HTTP server and its lifecycle helpers.
type Server struct {
	cfg        config.ServerConfig
	httpServer *http.Server
}

// NewServer constructs an HTTP server bound to the configured address, with
// CORS applied across the whole API for the browser client.
func NewServer(cfg config.ServerConfig, corsCfg config.CORSConfig, handler http.Handler) *Server {
	wrapped := cors.New(cors.Options{
		AllowedOrigins: corsCfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	}).Handler(handler)

	return &Server{
		cfg: cfg,
		httpServer: &http.Server{
			Addr:         cfg.Address,
			Handler:      wrapped,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 120 * time.Second,
		},
	}
}

// Start serves requests until Shutdown is invoked.
func (s *Server) Start() error {
	return s.httpServer.ListenAndServe()
}

// Shutdown attempts a graceful shutdown within the context deadline, closing
// forcefully once it expires.
func (s *Server) Shutdown(ctx context.Context) {
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.httpServer.Close()
	}
}

// Address exposes the configured listen address (useful for tests and logs).
func (s *Server) Address() string {
	return s.cfg.Address
}

// GracefulTimeout returns the configured graceful timeout duration.
func (s *Server) GracefulTimeout() time.Duration {
	return s.cfg.GracefulTimeout
}
