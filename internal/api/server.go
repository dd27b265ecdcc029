package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ledgerlink/internal/api/handlers"
	"ledgerlink/internal/api/middleware"
	"ledgerlink/internal/application/autolink"
	"ledgerlink/internal/application/importer"
	"ledgerlink/internal/application/linker"
	"ledgerlink/internal/infrastructure/storage"
)

// Config holds API server configuration.
type Config struct {
	Port           int
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for the API server.
func DefaultConfig() Config {
	return Config{
		Port:           8080,
		AllowedOrigins: []string{"http://localhost:3000", "http://localhost:5173"},
	}
}

// Server is the HTTP API server.
type Server struct {
	config       Config
	router       chi.Router
	httpServer   *http.Server
	logger       *slog.Logger
	store        storage.TransactionStore
	linker       *linker.Service
	orchestrator *autolink.Orchestrator
	importer     *importer.Service
}

// NewServer creates a new API server.
func NewServer(
	cfg Config,
	store storage.TransactionStore,
	linkService *linker.Service,
	orchestrator *autolink.Orchestrator,
	importService *importer.Service,
	logger *slog.Logger,
) *Server {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		config:       cfg,
		router:       chi.NewRouter(),
		logger:       logger,
		store:        store,
		linker:       linkService,
		orchestrator: orchestrator,
		importer:     importService,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	corsConfig := middleware.CORSConfig{
		AllowedOrigins: s.config.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		MaxAge:         300,
	}
	s.router.Use(middleware.CORS(corsConfig))

	s.router.Use(middleware.Logging(s.logger))
}

// setupRoutes configures all API routes.
func (s *Server) setupRoutes() {
	// Health check (no /api prefix - for load balancers)
	healthHandler := handlers.NewHealthHandler()
	s.router.Get("/health", healthHandler.ServeHTTP)

	linksHandler := handlers.NewLinksHandler(s.linker, s.orchestrator)

	s.router.Route("/api", func(r chi.Router) {
		// Transactions
		transactionsHandler := handlers.NewTransactionsHandler(s.store)
		r.Get("/transactions", transactionsHandler.List)
		r.Get("/transactions/{id}", transactionsHandler.Get)
		r.Get("/transactions/{id}/links", linksHandler.Hierarchy)

		// Link lifecycle
		r.Post("/links", linksHandler.Create)
		r.Delete("/links/{id}", linksHandler.Delete)
		r.Patch("/links/{id}", linksHandler.Update)
		r.Get("/links/suggestions", linksHandler.Suggestions)
		r.Post("/links/autolink", linksHandler.AutoLink)

		// Stats
		statsHandler := handlers.NewStatsHandler(s.store)
		r.Get("/stats", statsHandler.Get)

		// Imports
		if s.importer != nil {
			importsHandler := handlers.NewImportsHandler(s.importer)
			r.Post("/imports", importsHandler.Create)
		}
	})
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)

	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting API server", "addr", addr)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down API server")

	if s.httpServer == nil {
		return nil
	}

	return s.httpServer.Shutdown(ctx)
}

// Router returns the chi router for testing.
func (s *Server) Router() chi.Router {
	return s.router
}
