// Package app wires configuration, storage, the scheduler and the
// management API into one runnable application.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mailward/mailward/internal/api"
	"github.com/mailward/mailward/internal/compose"
	"github.com/mailward/mailward/internal/config"
	"github.com/mailward/mailward/internal/db"
	"github.com/mailward/mailward/internal/mailer"
	"github.com/mailward/mailward/internal/metrics"
	"github.com/mailward/mailward/internal/scheduler"
)

// App is the main application
type App struct {
	config    *config.Config
	database  *db.DB
	scheduler *scheduler.Scheduler
	apiServer *api.Server
	logger    *slog.Logger
}

// New creates a new application
func New(cfg *config.Config) (*App, error) {
	logger := SetupLogger(cfg.Logging)

	database, err := db.New(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := database.Migrate(); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	m := metrics.New()
	transport := mailer.New(cfg.Scheduler.SendTimeout, logger)

	sched := scheduler.New(database.DB, transport, m, logger, scheduler.Config{
		CampaignInterval:  cfg.Scheduler.CampaignInterval,
		DeliveryInterval:  cfg.Scheduler.DeliveryInterval,
		RequeueStuckAfter: cfg.Scheduler.RequeueStuckAfter,
	})

	composer := compose.New(database.DB, m, logger)
	apiServer := api.NewServer(database.DB, composer, m, &cfg.Server, logger)

	return &App{
		config:    cfg,
		database:  database,
		scheduler: sched,
		apiServer: apiServer,
		logger:    logger,
	}, nil
}

// Run starts all components and waits for shutdown
func (a *App) Run(ctx context.Context) error {
	a.logger.Info("starting mailward",
		"listen_addr", a.config.Server.ListenAddr,
		"database", a.config.Database.Path,
	)

	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a.scheduler.Start()

	errCh := make(chan error, 1)
	go func() {
		if err := a.apiServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("api server: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("shutdown signal received")
	case err := <-errCh:
		a.logger.Error("server error", "error", err)
		cancel()
	}

	return a.Shutdown(context.Background())
}

// Shutdown gracefully shuts down all components
func (a *App) Shutdown(ctx context.Context) error {
	a.logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Stop the scheduler first so no new deliveries start mid-shutdown.
	a.scheduler.Stop()

	if err := a.apiServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("api server shutdown error", "error", err)
	}

	if err := a.database.Close(); err != nil {
		a.logger.Error("database close error", "error", err)
	}

	a.logger.Info("shutdown complete")
	return nil
}

// SetupLogger creates a logger based on configuration
func SetupLogger(cfg config.LoggingConfig) *slog.Logger {
	var handler slog.Handler

	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}

	return slog.New(handler)
}
