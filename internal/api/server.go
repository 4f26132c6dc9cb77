// Package api provides the HTTP API server and handlers for the
// BlueStorm learning tracker.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/bluestormapp/bluestorm-server/internal/config"
	"github.com/bluestormapp/bluestorm-server/internal/ratelimit"
	"github.com/bluestormapp/bluestorm-server/internal/review"
	"github.com/bluestormapp/bluestorm-server/internal/service"
	"github.com/bluestormapp/bluestorm-server/internal/snapshot"
	"github.com/bluestormapp/bluestorm-server/internal/store"
	"github.com/bluestormapp/bluestorm-server/internal/validation"
)

// Services groups the business logic consumed by the API server.
type Services struct {
	Flashcards *service.Flashcards
	Journal    *service.Journal
	Settings   *service.Settings
	Scheduler  *review.Scheduler
	Snapshot   *snapshot.Engine
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	store    *store.Store
	services *Services
	router   *chi.Mux
	api      huma.API
	validate *validation.Validator
	review   config.ReviewConfig
	logger   *slog.Logger
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(st *store.Store, services *Services, reviewCfg config.ReviewConfig, logger *slog.Logger) *Server {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	// Snapshot imports rewrite whole collections; keep clients from
	// hammering the merge path.
	importLimiter := ratelimit.New(2, 5)
	router.Use(PathRateLimitMiddleware(importLimiter, "/api/v1/snapshot/import", logger))

	humaConfig := huma.DefaultConfig("BlueStorm API", "1.0.0")
	humaAPI := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:    st,
		services: services,
		router:   router,
		api:      humaAPI,
		validate: validation.New(),
		review:   reviewCfg,
		logger:   logger,
	}

	s.registerHealthRoutes()
	s.registerReviewRoutes()
	s.registerFlashcardRoutes()
	s.registerJournalRoutes()
	s.registerSnapshotRoutes()
	s.registerSettingsRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
