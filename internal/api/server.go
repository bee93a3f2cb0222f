// Package api provides the HTTP API server and handlers for Angel Archive.
package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/angelarchive/archive-server/internal/audit"
	"github.com/angelarchive/archive-server/internal/config"
	"github.com/angelarchive/archive-server/internal/http/response"
	"github.com/angelarchive/archive-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	cfg               *config.Config
	authService       *service.AuthService
	catalogService    *service.CatalogService
	collectionService *service.CollectionService
	searchService     *service.SearchService
	exportService     *service.ExportService
	auditLog          *audit.Log
	limiters          *limiters
	router            *chi.Mux
	logger            *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(cfg *config.Config, authService *service.AuthService, catalogService *service.CatalogService, collectionService *service.CollectionService, searchService *service.SearchService, exportService *service.ExportService, auditLog *audit.Log, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	s := &Server{
		cfg:               cfg,
		authService:       authService,
		catalogService:    catalogService,
		collectionService: collectionService,
		searchService:     searchService,
		exportService:     exportService,
		auditLog:          auditLog,
		limiters:          newLimiters(),
		router:            chi.NewRouter(),
		logger:            logger,
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
	s.router.Use(s.logRequests)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   s.cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	s.router.Use(s.recordAudit)
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check, outside the rate-limited API tree.
	s.router.Get("/health", s.handleHealthCheck)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(s.limitBy(s.limiters.general, "general"))

		// Auth endpoints (public except logout and me).
		r.Route("/auth", func(r chi.Router) {
			r.With(s.limitBy(s.limiters.auth, "auth")).Post("/signup", s.handleSignup)
			r.With(s.limitBy(s.limiters.auth, "auth")).Post("/login", s.handleLogin)
			r.Get("/check-username", s.handleCheckUsername)
			r.Get("/check-email", s.handleCheckEmail)

			r.Group(func(r chi.Router) {
				r.Use(s.requireAuth)
				r.Post("/logout", s.handleLogout)
				r.Get("/me", s.handleMe)
			})
		})

		// User profiles.
		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.With(s.limitBy(s.limiters.write, "write")).Put("/me", s.handleUpdateProfile)
			r.Get("/{username}", s.handleGetUser)
		})

		// Catalog (shared, read-only over HTTP).
		r.Route("/angels", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListAngels)
			r.Get("/{id}", s.handleGetAngel)
		})
		r.With(s.requireAuth).Get("/series", s.handleListSeries)
		r.With(s.requireAuth).Get("/search", s.handleSearch)

		// Per-user collection records.
		r.Route("/collections", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListCollection)
			r.Get("/{angelID}", s.handleGetRecord)
			r.With(s.limitBy(s.limiters.write, "write")).Put("/{angelID}", s.handleUpsertRecord)
			r.With(s.limitBy(s.limiters.write, "write")).Delete("/{angelID}", s.handleDeleteRecord)
		})

		// Collection export.
		r.Route("/export", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.With(s.limitBy(s.limiters.write, "write")).Get("/", s.handleExport)
			r.Get("/status", s.handleExportStatus)
		})

		// Account activity from the audit log.
		r.With(s.requireAuth).Get("/activity", s.handleActivity)
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
		"name":   s.cfg.Server.Name,
	}, s.logger)
}

// logRequests logs completed requests through the application logger.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()

		next.ServeHTTP(ww, r)

		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}
