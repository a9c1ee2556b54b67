package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/DukeRupert/clientdesk/internal"
	"github.com/DukeRupert/clientdesk/internal/backend"
	"github.com/DukeRupert/clientdesk/internal/csrf"
	"github.com/DukeRupert/clientdesk/internal/deleteflow"
	"github.com/DukeRupert/clientdesk/internal/handler"
	"github.com/DukeRupert/clientdesk/internal/metrics"
	"github.com/DukeRupert/clientdesk/internal/middleware"
	"github.com/DukeRupert/clientdesk/internal/service"
	"github.com/DukeRupert/clientdesk/internal/session"
	"github.com/DukeRupert/clientdesk/internal/validation"
	"github.com/DukeRupert/clientdesk/internal/worker"
	"github.com/DukeRupert/clientdesk/web"
)

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := internal.NewConfig()
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	// Configure logger
	logger := internal.NewLogger(os.Stdout, cfg.Env, cfg.LogLevel)

	// Session storage
	store, pool, err := openSessionStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	if pool != nil {
		defer pool.Close()
	}

	// Initialize template renderer
	templates := web.Templates()
	if cfg.IsDevelopment() {
		// Edits show up without a rebuild
		templates = os.DirFS("web/templates")
	}
	renderer, err := handler.NewRenderer(handler.RendererConfig{
		FS:     templates,
		Logger: logger,
		IsDev:  cfg.IsDevelopment(),
	})
	if err != nil {
		return fmt.Errorf("renderer initialization failed: %w", err)
	}
	logger.Info("Templates loaded", "count", len(renderer.ListTemplates()))

	// Initialize services
	api := backend.New(cfg.APIURL, cfg.APITimeout)
	validator := validation.New()
	flows := deleteflow.NewRegistry(deleteflow.Config{
		SuccessDisplay: cfg.DeleteSuccessDisplay,
		FailureDisplay: cfg.DeleteFailureDisplay,
		ClearDelay:     cfg.DeleteClearDelay,
	})
	authService := service.NewAuthService(api, store, validator, logger, service.AuthServiceConfig{
		SessionDuration: cfg.SessionDuration,
		Forget:          flows.Drop,
	})
	clientService := service.NewClientService(api, validator, logger)

	// Initialize middleware
	isSecure := !cfg.IsDevelopment()
	authMw := middleware.NewAuthMiddleware(authService, logger, isSecure)
	authLimiter := middleware.NewAuthRateLimiter(cfg.LoginRateLimit, logger)
	metricsAuth := middleware.NewMetricsAuthMiddleware(cfg.MetricsUsername, cfg.MetricsPassword, logger)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService, flows, authLimiter, renderer, logger, isSecure)
	clientHandler := handler.NewClientHandler(clientService, flows, authHandler, renderer, logger)
	pageHandler := handler.NewPageHandler(renderer, logger)

	// ==========================================================================
	// Create router and register routes
	// ==========================================================================

	mux := http.NewServeMux()

	// Static files
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFiles(cfg))))

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		if pool != nil {
			if err := pool.Ping(r.Context()); err != nil {
				logger.Error("health check failed", "error", err)
				http.Error(w, "database unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	// Metrics
	mux.Handle("GET /metrics", metricsAuth.Handler(promhttp.Handler()))

	requireSession := authMw.RequireSession
	authHandler.RegisterRoutes(mux, authMw.RequireGuest, requireSession, authLimiter.LimitLogin, authLimiter.LimitRegister)
	clientHandler.RegisterRoutes(mux, requireSession)
	pageHandler.RegisterRoutes(mux, requireSession)

	recoverer := middleware.NewRecoverer(logger, http.HandlerFunc(pageHandler.ServerError))
	app := middleware.Stack(
		middleware.RequestID,
		middleware.NewRequestLoggingMiddleware(logger).Handler,
		metrics.Middleware,
		recoverer.Handler,
		middleware.NewSecurityHeadersMiddleware(isSecure).Handler,
		csrf.Protect(logger, isSecure),
		authMw.WithSession,
	)(mux)

	// ==========================================================================
	// Background tasks
	// ==========================================================================

	tasks, err := worker.New(worker.DefaultConfig(), logger)
	if err != nil {
		return fmt.Errorf("worker initialization failed: %w", err)
	}
	tasks.Register(session.NewSweepTask(store, flows.Drop, logger), cfg.SessionSweepInterval)
	tasks.Start(ctx)

	// ==========================================================================
	// Start server
	// ==========================================================================

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           app,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("Server started", "address", server.Addr, "env", cfg.Env, "session_store", cfg.SessionStore)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	select {
	case err := <-serverErr:
		tasks.Stop()
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}
	logger.Info("Shutdown signal received, initiating graceful shutdown...")

	// Create shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", "error", err)
	}
	tasks.Stop()

	logger.Info("Graceful shutdown complete")
	return nil
}

// openSessionStore returns the configured store. The pool is nil for the
// memory store.
func openSessionStore(ctx context.Context, cfg *internal.Config, logger *slog.Logger) (session.Store, *pgxpool.Pool, error) {
	if cfg.SessionStore != internal.SessionStorePostgres {
		logger.Warn("Using in-memory sessions; they are lost on restart")
		return session.NewMemoryStore(), nil, nil
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseUrl)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("database ping failed: %w", err)
	}

	// Run migrations
	if err := internal.RunMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Database ready")

	return session.NewPostgresStore(pool), pool, nil
}

func staticFiles(cfg *internal.Config) fs.FS {
	if cfg.IsDevelopment() {
		return os.DirFS("web/static")
	}
	return web.Static()
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}
