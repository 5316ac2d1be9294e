// Package server wires the chi HTTP router for sshbridged: middleware,
// CORS, health checks, and the Upstream API mount under /api/v1.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/websoft9/sshbridge/internal/api"
	"github.com/websoft9/sshbridge/internal/config"
	"github.com/websoft9/sshbridge/internal/server/handlers"
	"github.com/websoft9/sshbridge/internal/server/middleware"
	"github.com/websoft9/sshbridge/internal/session"
)

// Server is the REST API surface: session management, file transfer, and
// host stats. The PTY stream itself lives on wsserver.Server, started
// alongside this one by cmd/sshbridged.
type Server struct {
	cfg        *config.Config
	log        zerolog.Logger
	router     chi.Router
	httpServer *http.Server
}

// New builds the router and wraps it in an *http.Server bound to
// cfg.HTTPAddr. manager is shared with the WebSocket server so both
// surfaces operate on the same set of SSH and PTY sessions.
func New(cfg *config.Config, manager *session.Manager, log zerolog.Logger) *Server {
	s := &Server{cfg: cfg, log: log}
	s.setupRouter(manager)

	s.httpServer = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) setupRouter(manager *session.Manager) {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", handlers.Health)
	r.Get("/ready", handlers.Ready)

	apiHandlers := api.New(manager, s.log)
	apiHandlers.Mount(r)

	s.router = r
}

// ListenAndServe blocks serving the REST API until the listener errors or
// is shut down.
func (s *Server) ListenAndServe() error {
	s.log.Info().Str("addr", s.cfg.HTTPAddr).Msg("http api listening")
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Shutdown gracefully drains in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info().Msg("shutting down http api")
	return s.httpServer.Shutdown(ctx)
}
