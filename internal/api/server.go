// Package api wires the HTTP surface: batch ingestion, topic aggregation,
// the open-pixel, and the provider callback sink.
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// Server wraps the chi router with the http.Server lifecycle.
type Server struct {
	handler http.Handler
	server  *http.Server
}

// NewServer builds a Server around a pre-assembled router.
func NewServer(router *chi.Mux) *Server {
	return &Server{handler: router}
}

// ListenAndServe starts the HTTP server on addr. Timeouts are generous
// because callback bodies and open-pixel requests are small and latency here
// is dominated by downstream database round trips, not payload size.
func (s *Server) ListenAndServe(addr string) error {
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.handler,
		ReadTimeout:       30 * time.Second,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Handler returns the underlying HTTP handler, for tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}
