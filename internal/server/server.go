// Package server exposes NID extraction over HTTP.
//
// Routes:
//
//	GET  /                     API index
//	GET  /health               liveness probe
//	GET  /metrics              cache counters
//	POST /api/v1/nid/extract   multipart extraction (nid_front, nid_back)
//	POST /api/v1/cache/clear   drop all cached results
//
// Every response carries an X-Request-ID header; extraction responses also
// carry X-Processing-Time-Ms.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"nidextract/internal/config"
	"nidextract/internal/logger"
)

// Server wraps the HTTP listener and its extraction dependencies.
type Server struct {
	httpServer *http.Server
	log        zerolog.Logger
}

// Handler assembles the router and middleware chain around the given
// extractor.
func Handler(cfg *config.Config, svc Extractor) http.Handler {
	h := newHandlers(svc, cfg.MaxFileSize, cfg.AllowedExtensions)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", h.handleRoot)
	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /metrics", h.handleMetrics)
	mux.HandleFunc("POST /api/v1/nid/extract", h.handleExtract)
	mux.HandleFunc("POST /api/v1/cache/clear", h.handleClearCache)

	var handler http.Handler = mux
	if cfg.RateLimitEnabled {
		limiter := newRateLimiter(cfg.RateLimitMax, cfg.RateLimitWindow)
		handler = limiter.middleware(handler)
	}
	handler = securityHeaders(handler)
	handler = requestLogging(handler)
	return handler
}

// New wraps the handler stack in an HTTP server bound to the configured
// address.
func New(cfg *config.Config, svc Extractor) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
			Handler:           Handler(cfg, svc),
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.OCRTimeout + 30*time.Second,
			WriteTimeout:      cfg.OCRTimeout + 30*time.Second,
		},
		log: logger.WithComponent("server"),
	}
}

// Run serves until ctx is cancelled, then drains in-flight requests with a
// bounded shutdown grace period.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.httpServer.Addr).Msg("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			return
		}
		errCh <- nil
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info().Msg("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return <-errCh
}
