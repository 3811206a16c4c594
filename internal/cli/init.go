// Package cli provides common CLI initialization utilities shared by
// cmd/fintrack and cmd/alert-worker.
package cli

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/cache"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/projection"
	"fintrack/internal/services"
	"fintrack/internal/store"
)

// SetupLogger initializes structured logging from the configured level and
// format. Returns the configured logger and sets it as the default logger.
func SetupLogger(w io.Writer, level, format string) *slog.Logger {
	lvl, err := log.ParseLevel(level)
	appLogger := log.New(log.Config{
		Level:     lvl,
		Format:    format,
		Component: log.ComponentApp,
		Handler:   log.NewHandler(w, format, lvl),
	})
	log.SetDefault(appLogger)
	logger := appLogger.Logger
	if err != nil {
		logger.Warn("Falling back to info level", log.FieldError, err)
	}
	return logger
}

// LoadEnvFile loads the .env file for local development.
// Errors are ignored silently as this is optional in production.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed",
			log.FieldComponent, log.ComponentApp,
			log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// OpenStore creates the configured storage backend and wraps it in a
// repository. The returned cleanup is never nil.
func OpenStore(ctx context.Context, logger *slog.Logger, cfg *config.Config) (*store.Repository, func(), error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, nil, err
	}
	res, err := backend.NewFactory(logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if res.Cleanup == nil {
			return
		}
		if err := res.Cleanup(); err != nil {
			logger.Warn("Failed to close backend",
				log.FieldComponent, log.ComponentBackend,
				log.FieldError, err)
		}
	}
	return store.NewRepository(res.Store), cleanup, nil
}

// BuildEngine wires the projection policy and cache from cfg into an
// engine over repo. Caches that expire are registered with manager when one
// is given.
func BuildEngine(logger *slog.Logger, cfg *config.Config, repo *store.Repository, manager *cache.Manager) (*services.Engine, error) {
	clamp, err := projection.GetDayClamper(cfg.ProjectionClamp)
	if err != nil {
		return nil, err
	}
	projector := projection.New(
		projection.WithBoundary(projection.BoundaryPolicy(cfg.ProjectionBoundary)),
		projection.WithClamp(clamp),
		projection.WithLogger(logger),
	)

	opts := []services.Option{
		services.WithLogger(logger),
		services.WithProjector(projector),
	}
	if cfg.ProjectionCacheSize > 0 {
		lru := cache.NewLRUCache[[]core.Transaction](cfg.ProjectionCacheSize, cfg.ProjectionCacheTTL)
		if manager != nil {
			manager.Register(lru)
		}
		opts = append(opts, services.WithProjectionCache(lru))
	}
	return services.NewEngine(repo, opts...), nil
}

// GracefulShutdown sets up signal handling for graceful shutdown.
// Returns a context that will be cancelled on shutdown signals,
// and a channel that signals when shutdown is complete.
func GracefulShutdown(logger *slog.Logger, timeout time.Duration, cleanup func()) (context.Context, <-chan struct{}) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		sig := <-sigChan
		logger.Info("Shutdown signal received",
			log.FieldComponent, log.ComponentApp,
			"signal", sig.String())

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
		defer shutdownCancel()

		cancel()

		finished := make(chan struct{})
		go func() {
			if cleanup != nil {
				cleanup()
			}
			close(finished)
		}()

		select {
		case <-shutdownCtx.Done():
			logger.Warn("Shutdown timeout reached", log.FieldComponent, log.ComponentApp)
		case <-finished:
			logger.Info("Shutdown complete", log.FieldComponent, log.ComponentApp)
		}
		close(done)
	}()

	return ctx, done
}

// WaitForShutdown blocks until the context is cancelled.
func WaitForShutdown(ctx context.Context, done <-chan struct{}) {
	<-ctx.Done()
	<-done
}
