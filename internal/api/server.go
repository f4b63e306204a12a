// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api wires together the HTTP router, middleware chain, and all
domain handlers into a runnable [http.Server].

Architecture:

  - This package is the topmost Presentation layer boundary.
  - It acts as the central composition root for the HTTP transport framework (chi router).
  - Only this package and cmd/api are allowed to import net/http server primitives.
*/
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/taibuivan/laundrytrack/internal/laundry/batch"
	"github.com/taibuivan/laundrytrack/internal/laundry/library"
	"github.com/taibuivan/laundrytrack/internal/laundry/notify"
	"github.com/taibuivan/laundrytrack/internal/laundry/tag"
	"github.com/taibuivan/laundrytrack/internal/platform/config"
	"github.com/taibuivan/laundrytrack/internal/platform/constants"
	"github.com/taibuivan/laundrytrack/internal/platform/middleware"
	"github.com/taibuivan/laundrytrack/internal/users/auth"
)

// # Server Definitions

// Server wraps the chi router and the [http.Server].
//
// It is constructed once in main.go with all dependencies injected.
type Server struct {
	httpServer *http.Server
	router     *chi.Mux
	log        *slog.Logger
}

// # Handler Registry

// Handlers groups all domain-specific HTTP handler sets.
type Handlers struct {
	// Liveness is the /health handler; it returns 200 while the process is alive.
	Liveness http.HandlerFunc

	// Readiness is the /ready handler; it returns 200 when all dependencies are healthy.
	Readiness http.HandlerFunc

	// Auth handles registration, login and session rotation.
	Auth *auth.Handler

	// Batches handles laundry batches, their items and the stats endpoint.
	Batches *batch.Handler

	// Tags handles built-in and custom categories.
	Tags *tag.Handler

	// Clothes handles the reusable clothes library.
	Clothes *library.Handler

	// Notifications exposes the per-user notification feed.
	Notifications *notify.Handler

	// Photos serves locally stored photos. Nil when photos live in a bucket.
	Photos http.Handler
}

// # Server Initialization

// NewServer constructs the chi router with the full middleware chain and
// registers all route groups.
func NewServer(context context.Context, cfg *config.Config, log *slog.Logger, verifier middleware.TokenVerifier, h Handlers) *Server {
	r := chi.NewRouter()

	// # Middleware Chain
	r.Use(middleware.RequestID())
	r.Use(middleware.StructuredLogger(log))
	r.Use(chimw.Timeout(constants.GlobalRequestTimeout))
	r.Use(middleware.RateLimit(context))
	r.Use(middleware.PanicRecovery(log))
	r.Use(middleware.Authenticate(verifier))
	r.Use(middleware.CORS(cfg))
	r.Use(chimw.CleanPath)

	// # Infrastructure Endpoints
	r.Get("/health", h.Liveness)
	r.Get("/ready", h.Readiness)

	if h.Photos != nil {
		r.Mount("/photos", http.StripPrefix("/photos", h.Photos))
	}

	// # Application API
	r.Route("/api/v1", func(api chi.Router) {
		api.Mount("/auth", h.Auth.Routes())

		api.Group(func(protected chi.Router) {
			protected.Use(middleware.RequireAuth)

			protected.Mount("/batches", h.Batches.Routes())
			protected.Get("/stats", h.Batches.GetStats)
			protected.Mount("/tags", h.Tags.Routes())
			protected.Mount("/clothes", h.Clothes.Routes())
			protected.Mount("/notifications", h.Notifications.Routes())
		})
	})

	return &Server{
		router: r,
		log:    log,
		httpServer: &http.Server{
			Addr:              ":" + cfg.ServerPort,
			Handler:           r,
			ReadTimeout:       constants.DefaultReadTimeout,
			WriteTimeout:      constants.DefaultWriteTimeout,
			IdleTimeout:       constants.DefaultIdleTimeout,
			ReadHeaderTimeout: constants.DefaultReadHeaderTimeout,
		},
	}
}

// Handler returns the root router.
func (s *Server) Handler() http.Handler {
	return s.router
}

// # Server Lifecycle

// ListenAndServe starts the HTTP server.
//
// It blocks until the server is closed or an error occurs.
func (s *Server) ListenAndServe() error {
	s.log.Info("server_starting", slog.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully stops the server, waiting for in-flight requests.
func (s *Server) Shutdown(timeout time.Duration) error {
	context, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(context)
}
