// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer: it connects storage, services,
// handlers, middleware, and routes. All dependencies are assembled in one
// place (New/setupRoutes) rather than scattered across the codebase.
//
// DEPENDENCY INJECTION FLOW:
//
//	config.Config → openStore (sqlite | postgres) → repository.Store
//	Store → services → handlers → auth.RouteTable → chi router
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/sakif/community-forum/internal/auth"
	"github.com/sakif/community-forum/internal/config"
	"github.com/sakif/community-forum/internal/handler"
	"github.com/sakif/community-forum/internal/metrics"
	"github.com/sakif/community-forum/internal/middleware"
	"github.com/sakif/community-forum/internal/repository"
	"github.com/sakif/community-forum/internal/repository/postgres"
	sqliteRepo "github.com/sakif/community-forum/internal/repository/sqlite"
	"github.com/sakif/community-forum/internal/service"
)

const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the store. Start closes it after the HTTP server has
// drained, so in-flight requests never see a closed database.
type Server struct {
	router  *chi.Mux
	config  config.Config
	logger  *slog.Logger
	store   repository.Store
	metrics *metrics.Metrics
}

// New opens the configured store and builds the server around it.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Server, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s, err := NewWithStore(cfg, store, logger)
	if err != nil {
		store.Close() // Clean up DB if route setup fails
		return nil, err
	}
	return s, nil
}

// NewWithStore builds the server on an already open store.
func NewWithStore(cfg config.Config, store repository.Store, logger *slog.Logger) (*Server, error) {
	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		store:   store,
		metrics: metrics.NewMetrics(prometheus.NewRegistry()),
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func openStore(ctx context.Context, cfg config.Config) (repository.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	case config.DriverSQLite:
		db, err := sqliteRepo.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return db, nil
	default:
		return nil, fmt.Errorf("unsupported DB driver %q", cfg.DBDriver)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

// setupRoutes configures all middleware and route handlers.
//
// MIDDLEWARE ORDER MATTERS:
//  1. RequestID: assigns a unique ID to each request
//  2. RealIP: extracts the client IP from proxy headers
//  3. Recoverer: turns panics into 500s
//  4. Logger: one line per request
//  5. Metrics: request count and latency by route pattern
//  6. Authenticator: attaches a Principal when a valid bearer token is sent
//
// The authenticator never rejects. Each route's auth.Policy decides.
func (s *Server) setupRoutes() error {
	tokens, err := auth.NewTokenService(s.config.JWTSecret)
	if err != nil {
		return fmt.Errorf("creating token service: %w", err)
	}
	hasher := auth.NewHasher(s.config.BcryptCost)

	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.Logger(s.logger))
	s.router.Use(s.metrics.Middleware)
	s.router.Use(auth.NewAuthenticator(tokens, s.logger, s.metrics).Middleware)

	authService := service.NewAuthService(s.store.Users(), hasher, tokens, s.config.TokenTTL, s.logger)
	postService := service.NewPostService(s.store.Posts(), s.logger)
	commentService := service.NewCommentService(s.store.Comments(), s.store.Posts(), s.logger)
	likeService := service.NewLikeService(s.store.Likes(), s.store.Users(), s.store.Posts(), s.metrics, s.logger)

	api := &handler.API{
		Users:    handler.NewUserHandler(authService, s.logger),
		Posts:    handler.NewPostHandler(postService, s.logger),
		Comments: handler.NewCommentHandler(commentService, s.logger),
		Likes:    handler.NewLikeHandler(likeService, s.logger),
	}

	routes := append(api.Routes(),
		auth.Route{Method: http.MethodGet, Pattern: "/metrics", Policy: auth.Public, Handler: s.metrics.Handler().ServeHTTP},
		auth.Route{Method: http.MethodGet, Pattern: "/healthz", Policy: auth.Public, Handler: s.handleHealth},
	)
	routes.Mount(s.router)

	return nil
}

// handleHealth reports whether the database answers.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "application/json")
	if err := s.store.Ping(ctx); err != nil {
		s.logger.Warn("health check failed", slog.String("error", err.Error()))
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"status":"unavailable"}`))
		return
	}
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// Start starts the HTTP server and handles graceful shutdown.
//
// GRACEFUL SHUTDOWN:
//  1. Stop accepting new HTTP connections
//  2. Wait for in-flight requests to finish (30s timeout)
//  3. Close the store
func (s *Server) Start() error {
	defer s.store.Close()

	srv := &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.String("addr", srv.Addr),
			slog.String("driver", s.config.DBDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
		s.logger.Info("server stopped gracefully")
	}

	return nil
}
