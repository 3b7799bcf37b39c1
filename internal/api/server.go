// Package api provides the HTTP API server and handlers for the CardTrack application.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/cardtrackapp/cardtrack-server/internal/auth"
	"github.com/cardtrackapp/cardtrack-server/internal/http/response"
	"github.com/cardtrackapp/cardtrack-server/internal/liststore"
	"github.com/cardtrackapp/cardtrack-server/internal/notify"
	"github.com/cardtrackapp/cardtrack-server/internal/ratelimit"
	"github.com/cardtrackapp/cardtrack-server/internal/service"
	"github.com/cardtrackapp/cardtrack-server/internal/session"
	"github.com/cardtrackapp/cardtrack-server/internal/validation"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	lists       *service.ListService
	profiles    *service.ProfileService
	authService *auth.Service
	coordinator *session.Coordinator
	local       *liststore.LocalStore
	notifier    *notify.Notifier
	validator   *validation.Validator
	authLimiter *ratelimit.KeyedRateLimiter
	router      *chi.Mux
	logger      *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(lists *service.ListService, profiles *service.ProfileService, authService *auth.Service, coordinator *session.Coordinator, local *liststore.LocalStore, notifier *notify.Notifier, logger *slog.Logger) *Server {
	s := &Server{
		lists:       lists,
		profiles:    profiles,
		authService: authService,
		coordinator: coordinator,
		local:       local,
		notifier:    notifier,
		validator:   validation.New(),
		authLimiter: ratelimit.New(10.0/60.0, 10), // 10 attempts per minute per IP
		router:      chi.NewRouter(),
		logger:      logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures the middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	s.router.Use(middleware.Timeout(60 * time.Second))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public, rate limited).
		r.Route("/auth", func(r chi.Router) {
			r.Use(s.rateLimitByIP(s.authLimiter))
			r.Post("/register", s.handleRegister)
			r.Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
		})

		r.Get("/session", s.handleGetSession)

		// Catalog search.
		r.Post("/cards/search", s.handleSearch)
		r.Get("/catalog/types", s.handleTypeOptions)

		// Saved lists, served for both anonymous and authenticated sessions.
		r.Route("/lists", func(r chi.Router) {
			r.Get("/", s.handleListLists)
			r.Post("/", s.handleCreateList)
			r.Get("/{id}", s.handleGetList)
			r.Delete("/{id}", s.handleDeleteList)
			r.Get("/{id}/cards", s.handleListCards)
			r.Post("/{id}/cards/{cardID}/toggle", s.handleToggleAcquired)
		})

		// Profile (authenticated sessions only).
		r.Route("/profile", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleGetProfile)
			r.Put("/", s.handleUpdateProfile)
		})

		// Live updates.
		r.Get("/stream", s.handleStream)
	})
}

// handleHealthCheck returns server health status, including whether local
// persistence is running degraded.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]any{
		"status":               "healthy",
		"persistence_disabled": s.local.PersistenceDisabled(),
	}, s.logger)
}
