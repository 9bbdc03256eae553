// Package server wires the query facade to a read-only HTTP API: a
// thin chi router in front of internal/handler, with the same
// request-logging/security-header middleware stack the rest of this
// codebase's batch and CLI paths share through their loggers.
package server

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"transitcat/internal/config"
	"transitcat/internal/handler"
	"transitcat/internal/query"
)

// Server is the read-only HTTP query API.
type Server struct {
	router http.Handler
	cfg    *config.Config
	logger *slog.Logger
}

// New creates a Server with all routes registered against facade.
func New(cfg *config.Config, facade *query.Facade, logger *slog.Logger) *Server {
	h := handler.New(facade, logger)

	r := chi.NewRouter()
	r.Get("/buses/{name}", h.Bus)
	r.Get("/stops/{name}", h.Stop)
	r.Get("/route", h.Route)
	r.Get("/map", h.Map)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet},
	})

	return &Server{router: withMiddleware(c.Handler(r), logger), cfg: cfg, logger: logger}
}

// ListenAndServe starts the HTTP server.
func (s *Server) ListenAndServe() error {
	addr := fmt.Sprintf(":%d", s.cfg.HTTPPort)
	s.logger.Info("query API starting", "addr", addr)
	return http.ListenAndServe(addr, s.router)
}
