// Package server sets up the HTTP server, router, and all route definitions.
//
// This package is the "wiring" layer. It is the only place that knows which
// storage backend, cache and metrics registry are in use:
//
//	config → store (sqlite | postgres) → services → handlers → routes
//
// Handlers see services, services see repository interfaces, and nothing
// below this package imports a concrete backend.
package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"
	"golang.org/x/crypto/bcrypt"

	"github.com/sakif/bloglist/internal/auth"
	"github.com/sakif/bloglist/internal/cache"
	"github.com/sakif/bloglist/internal/config"
	"github.com/sakif/bloglist/internal/handler"
	"github.com/sakif/bloglist/internal/metrics"
	"github.com/sakif/bloglist/internal/middleware"
	"github.com/sakif/bloglist/internal/repository"
	"github.com/sakif/bloglist/internal/repository/postgres"
	"github.com/sakif/bloglist/internal/repository/sqlite"
	"github.com/sakif/bloglist/internal/service"
)

// Server represents the HTTP server and all its dependencies.
//
// The Server owns the store and any extra closers handed to it (the log
// file); Close releases all of them.
type Server struct {
	router   *chi.Mux
	config   *config.Config
	logger   *slog.Logger
	store    repository.Store
	registry *prometheus.Registry
	metrics  *metrics.Manager
	closers  []io.Closer
}

// New opens the configured store and wires the server around it.
// closers are closed, after the store, by Close.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, closers ...io.Closer) (*Server, error) {
	store, err := openStore(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("opening %s store: %w", cfg.DBDriver, err)
	}

	s, err := NewWithStore(cfg, store, logger, closers...)
	if err != nil {
		store.Close()
		return nil, err
	}
	return s, nil
}

// NewWithStore wires the server around an already-open store. Tests use it
// with an in-memory SQLite database.
func NewWithStore(cfg *config.Config, store repository.Store, logger *slog.Logger, closers ...io.Closer) (*Server, error) {
	s := &Server{
		router:  chi.NewRouter(),
		config:  cfg,
		logger:  logger,
		store:   store,
		closers: closers,
	}

	if cfg.MetricsEnabled {
		s.registry = prometheus.NewRegistry()
		s.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		s.metrics = metrics.NewManager("bloglist", "server", s.registry)
	}

	if err := s.setupRoutes(); err != nil {
		return nil, fmt.Errorf("setting up routes: %w", err)
	}
	return s, nil
}

func openStore(ctx context.Context, cfg *config.Config) (repository.Store, error) {
	switch cfg.DBDriver {
	case config.DriverPostgres:
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil

	case config.DriverSQLite:
		if cfg.DBPath != ":memory:" {
			// os.MkdirAll works like `mkdir -p`
			if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
				return nil, fmt.Errorf("creating database directory: %w", err)
			}
		}
		db, err := sqlite.New(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unknown db driver %q", cfg.DBDriver)
	}
}

// Router exposes the route tree, e.g. for docgen.
func (s *Server) Router() chi.Router {
	return s.router
}

// setupRoutes configures all middleware and route handlers.
//
// ROUTE STRUCTURE:
//
//	GET    /                     → frontend shell page (HTML)
//	GET    /static/*             → frontend assets
//	GET    /health               → database ping
//	GET    /metrics              → Prometheus exposition (if enabled)
//	POST   /api/login            → {token, username, name}
//	GET    /api/blogs            → list
//	GET    /api/blogs/{id}       → one blog
//	POST   /api/blogs            → create          [token]
//	PUT    /api/blogs/{id}       → partial update
//	DELETE /api/blogs/{id}       → delete          [token, creator]
//	POST   /api/users            → register
//	GET    /api/users            → users with their blogs
//	POST   /api/testing/reset    → wipe database   [test env only]
//
// MIDDLEWARE ORDER MATTERS: RequestID runs first so Logger can print the id;
// Recoverer sits inside Logger so a panic is still logged as a 500.
func (s *Server) setupRoutes() error {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(middleware.Logger(s.logger))
	if s.metrics != nil {
		s.router.Use(middleware.Metrics(s.metrics))
	}
	s.router.Use(chimiddleware.Recoverer)

	// === Services ===
	tokens, err := auth.NewTokenService(s.config.JWTSecret, s.config.TokenTTL.Duration)
	if err != nil {
		return err
	}

	passwords := auth.NewPasswordService()
	if s.config.IsTest() {
		passwords = auth.NewPasswordServiceForTest(bcrypt.MinCost)
	}

	// A nil *cache.BlogCache stored in the interface would not compare equal
	// to nil, so the interface is only assigned when caching is on.
	var listCache service.BlogListCache
	if s.config.CacheSizeMB > 0 {
		listCache = cache.New(s.config.CacheSizeMB)
	}

	blogService := service.NewBlogService(s.store, s.store, listCache, s.metrics, s.logger)
	authService := service.NewAuthService(s.store, tokens, passwords, s.metrics, s.logger)
	userService := service.NewUserService(s.store, s.store, passwords, s.metrics, s.logger)

	// === Handlers ===
	blogHandler := handler.NewBlogHandler(blogService, s.logger)
	loginHandler := handler.NewLoginHandler(authService, s.logger)
	userHandler := handler.NewUserHandler(userService, s.logger)
	healthHandler := handler.NewHealthHandler(s.store, s.logger)

	indexHandler, err := handler.NewIndexHandler(s.config.TemplateDir, s.logger)
	if err != nil {
		return fmt.Errorf("creating index handler: %w", err)
	}

	// === Page routes ===
	fileServer := http.FileServer(http.Dir(s.config.StaticDir))
	s.router.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	s.router.Get("/", indexHandler.HandleIndex)
	s.router.Get("/health", healthHandler.HandleHealth)

	if s.registry != nil {
		s.router.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	}

	// === API routes ===
	s.router.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Post("/login", loginHandler.HandleLogin)

		r.Route("/blogs", func(r chi.Router) {
			r.Get("/", blogHandler.HandleList)
			r.Get("/{id}", blogHandler.HandleGet)
			r.Put("/{id}", blogHandler.HandleUpdate)

			r.Group(func(r chi.Router) {
				r.Use(auth.RequireAuth(tokens))
				r.Post("/", blogHandler.HandleCreate)
				r.Delete("/{id}", blogHandler.HandleDelete)
			})
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.HandleList)
			r.Post("/", userHandler.HandleRegister)
		})

		if s.config.IsTest() {
			testingHandler := handler.NewTestingHandler(s.store, blogService.Invalidate, s.logger)
			r.Post("/testing/reset", testingHandler.HandleReset)
		}
	})

	return nil
}

// ServeHTTP makes Server an http.Handler, which is what tests drive.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Start serves until SIGINT/SIGTERM, then shuts down gracefully:
//  1. stop accepting new connections
//  2. wait up to 30s for in-flight requests
//  3. close the store and the remaining closers
func (s *Server) Start() error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.config.Port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("server starting",
			slog.Int("port", s.config.Port),
			slog.String("url", fmt.Sprintf("http://localhost:%d", s.config.Port)),
			slog.String("env", s.config.Environment),
			slog.String("db_driver", s.config.DBDriver),
		)
		serverErrors <- srv.ListenAndServe()
	}()

	var runErr error
	select {
	case err := <-serverErrors:
		if !errors.Is(err, http.ErrServerClosed) {
			runErr = fmt.Errorf("server error: %w", err)
		}

	case sig := <-quit:
		s.logger.Info("shutdown signal received", slog.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			runErr = fmt.Errorf("graceful shutdown failed: %w", err)
		} else {
			s.logger.Info("server stopped gracefully")
		}
	}

	return multierr.Append(runErr, s.Close())
}

// Close releases the store and every extra closer, reporting all failures.
func (s *Server) Close() error {
	err := s.store.Close()
	for _, c := range s.closers {
		err = multierr.Append(err, c.Close())
	}
	return err
}
