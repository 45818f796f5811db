package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	portsrepo "github.com/SscSPs/ledger_core/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/ledger_core/internal/core/ports/services"
	"github.com/SscSPs/ledger_core/internal/core/services"
	"github.com/SscSPs/ledger_core/internal/handlers"
	"github.com/SscSPs/ledger_core/internal/middleware"
	"github.com/SscSPs/ledger_core/internal/platform/config"
	"github.com/SscSPs/ledger_core/internal/platform/logger"
	"github.com/SscSPs/ledger_core/internal/platform/metrics"
	"github.com/SscSPs/ledger_core/internal/repositories/cache"
	"github.com/SscSPs/ledger_core/internal/repositories/database/memory"
	"github.com/SscSPs/ledger_core/internal/repositories/database/pgsql"
	"github.com/SscSPs/ledger_core/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	repos, vouchers, cleanup, err := setupStorage(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize storage", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanup()

	m := metrics.New()
	serviceContainer := services.NewServiceContainer(cfg, repos, vouchers, m)

	router, err := setupRouter(cfg, log, serviceContainer, m)
	if err != nil {
		log.Error("Failed to set up router", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server starting", slog.String("port", cfg.Port), slog.String("storage", cfg.StorageBackend))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err := <-errCh:
		log.Error("Server failed to run", slog.String("error", err.Error()))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", slog.String("error", err.Error()))
	}
	log.Info("Server stopped")
}

// setupStorage wires the configured storage backend and voucher generator.
// Vouchers come from Redis when REDIS_ADDR is set, otherwise from the storage backend.
func setupStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (portsrepo.RepositoryProvider, portssvc.VoucherNumberGenerator, func(), error) {
	var (
		repos    portsrepo.RepositoryProvider
		vouchers portssvc.VoucherNumberGenerator
		closers  []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch cfg.StorageBackend {
	case config.StorageMemory:
		log.Warn("Using in-memory storage; data is lost on restart")
		store := memory.NewStore()
		repos = store.Provider()
		vouchers = memory.NewVoucherGenerator(cfg.VoucherPrefix)
	default:
		log.Info("Running database migrations...", slog.String("source", cfg.MigrationsPath))
		applied, err := database.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath)
		if err != nil {
			return repos, nil, cleanup, err
		}
		if applied {
			log.Info("Database migrations applied successfully.")
		} else {
			log.Info("No new migrations to apply.")
		}

		dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return repos, nil, cleanup, err
		}
		closers = append(closers, func() { database.ClosePgxPool(dbPool) })
		repos = pgsql.NewRepositoryProvider(dbPool)
		vouchers = pgsql.NewPgxVoucherGenerator(dbPool, cfg.VoucherPrefix)
	}

	if cfg.RedisAddr != "" {
		client, err := database.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			return repos, nil, cleanup, err
		}
		closers = append(closers, func() { _ = client.Close() })
		vouchers = cache.NewRedisVoucherGenerator(client, cfg.VoucherPrefix)
	}

	return repos, vouchers, cleanup, nil
}

func setupRouter(cfg *config.Config, log *slog.Logger, container *portssvc.ServiceContainer, m *metrics.Metrics) (*gin.Engine, error) {
	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(log), gin.Recovery(), m.GinMiddleware())
	r.Use(cors.New(corsConfig(cfg.CORSAllowedOrigins)))

	if cfg.RateLimit != "" {
		limiterInstance, err := middleware.NewRateLimiter(cfg.RateLimit)
		if err != nil {
			return nil, err
		}
		r.Use(middleware.RateLimit(limiterInstance))
	}

	if err := r.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	handlers.RegisterRoutes(r, cfg, container, m)
	return r, nil
}

func corsConfig(origins []string) cors.Config {
	c := cors.DefaultConfig()
	c.AllowHeaders = append(c.AllowHeaders, "Authorization", "X-Request-ID")
	c.ExposeHeaders = []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining"}
	if len(origins) == 0 {
		c.AllowAllOrigins = true
		return c
	}
	for _, origin := range origins {
		if origin == "*" {
			c.AllowAllOrigins = true
			return c
		}
	}
	c.AllowOrigins = origins
	return c
}
