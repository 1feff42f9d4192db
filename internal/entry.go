// Package internal provides the main application initialization and runtime logic.
package internal

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
	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/starford/dagaz/internal/api"
	"github.com/starford/dagaz/internal/dayservice"
	"github.com/starford/dagaz/internal/event"
	"github.com/starford/dagaz/internal/index"
	"github.com/starford/dagaz/internal/mcpserver"
	"github.com/starford/dagaz/internal/notes"
	"github.com/starford/dagaz/internal/scheduler"
	"github.com/starford/dagaz/internal/sse"
	"github.com/starford/dagaz/internal/storage"
)

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app := &application{}

	for _, opt := range opts {
		opt(app)
	}

	if app.config == nil {
		return fmt.Errorf("config is required")
	}

	cfg := app.config

	// Initialize structured logger. Logs go to stderr so MCP mode keeps
	// stdout clean for the protocol.
	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{
		Level:      cfg.App.LogLevel,
		TimeFormat: time.RFC1123Z,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("data_dir", cfg.Data.Dir),
		slog.String("data_file", cfg.Data.File),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// Ensure data directory exists.
	if err := os.MkdirAll(cfg.Data.Dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	// Initialize storage.
	files, err := storage.NewFS(cfg.Data.Dir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	// Initialize SQLite index.
	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init index: %w", err)
	}
	defer db.Close()

	// Build the day service and load the calendar.
	svc := dayservice.New(event.NewStore(), files, db, notes.NewRepo(files), cfg.Data.File, logger)
	if err := svc.Load(ctx); err != nil {
		return fmt.Errorf("load calendar: %w", err)
	}

	if app.mcpMode {
		return runMCP(ctx, svc, logger)
	}
	return runHTTP(ctx, cfg, svc, logger)
}

// runMCP serves the MCP stdio transport until the client disconnects,
// then flushes the calendar.
func runMCP(ctx context.Context, svc *dayservice.Service, logger *slog.Logger) error {
	logger.Info("Starting MCP server on stdio")
	srv := mcpserver.New(svc)
	if err := srv.ServeStdio(); err != nil {
		return fmt.Errorf("mcp server error: %w", err)
	}
	if err := svc.Save(ctx); err != nil {
		logger.Error("final save failed", slog.String("error", err.Error()))
	}
	return nil
}

func runHTTP(ctx context.Context, cfg *Config, svc *dayservice.Service, logger *slog.Logger) error {
	// SSE broker, fed by day service mutations.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()
	svc.SetChangeCallback(broker.PublishChange)

	// Build API router.
	apiRouter := api.NewRouter(svc, cfg.Auth.AuthEnabled(), cfg.Auth.Token, broker)

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Prometheus metrics (unauthenticated).
	r.Handle("/metrics", promhttp.Handler())

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:    cfg.App.HTTP.Address(),
		Handler: r,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Start data file watcher for external edits.
	g.Go(func() error {
		return svc.Watch(gCtx, cfg.Data.Dir, logger)
	})

	// Start the autosave scheduler.
	var sched *scheduler.Scheduler
	if cfg.Autosave.Enabled() {
		sched = scheduler.New(logger, svc.Save)
		if err := sched.Start(cfg.Autosave.Spec); err != nil {
			return fmt.Errorf("start scheduler: %w", err)
		}
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return nil
	})

	err := g.Wait()

	if sched != nil {
		sched.Stop()
	}
	if saveErr := svc.Save(context.Background()); saveErr != nil {
		logger.Error("final save failed", slog.String("error", saveErr.Error()))
	}

	if err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}
