// Package main is the entry point for the pod-api server.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/jmylchreest/pod-pipeline/internal/config"
	"github.com/jmylchreest/pod-pipeline/internal/database"
	"github.com/jmylchreest/pod-pipeline/internal/http/handlers"
	"github.com/jmylchreest/pod-pipeline/internal/http/mw"
	"github.com/jmylchreest/pod-pipeline/internal/http/routes"
	"github.com/jmylchreest/pod-pipeline/internal/logging"
	"github.com/jmylchreest/pod-pipeline/internal/repository"
	"github.com/jmylchreest/pod-pipeline/internal/service"
	"github.com/jmylchreest/pod-pipeline/internal/shutdown"
	"github.com/jmylchreest/pod-pipeline/internal/storage"
	"github.com/jmylchreest/pod-pipeline/internal/version"
	"github.com/jmylchreest/pod-pipeline/internal/worker"
)

func main() {
	// Initialize logger with TTY detection, source paths, and format control
	logger := logging.SetDefault()

	logger.Info("starting pod-api", "build", version.Get())

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	if err := database.Migrate(db, logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	repos := repository.NewRepositories(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := service.NewServices(ctx, cfg, repos, logger)
	if err != nil {
		logger.Error("failed to initialize services", "error", err)
		os.Exit(1)
	}

	// Background generation worker
	var genWorker *worker.Worker
	if cfg.WorkerEnabled {
		genWorker = worker.New(repos.Trend, services.Generation, worker.Config{
			PollInterval: cfg.WorkerPollInterval,
			Concurrency:  cfg.WorkerConcurrency,
			StaleAfter:   cfg.WorkerStaleAfter,
			GracePeriod:  cfg.WorkerShutdownGracePeriod,
		}, logger)
		genWorker.Start(ctx)
	}

	if cfg.CleanupEnabled {
		go services.Cleanup.RunScheduledCleanup(ctx, cfg.CleanupMaxAge, cfg.CleanupInterval)
	}

	idle := shutdown.NewIdleMonitor(shutdown.IdleMonitorConfig{
		Timeout:      cfg.IdleShutdown,
		Logger:       logger,
		ExcludePaths: []string{"/healthz", "/readyz"},
		BackgroundWorkCheck: func() bool {
			return genWorker != nil && genWorker.IsBusy()
		},
	})
	idle.Start()

	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)

	// IP blocklist (early in chain to reject bad actors quickly)
	if services.S3 != nil && cfg.BlocklistKey != "" {
		blocklist := mw.NewIPBlocklist(storage.NewLoader(storage.LoaderConfig{
			Client: services.S3,
			Bucket: cfg.StorageBucket,
			Key:    cfg.BlocklistKey,
			Logger: logger,
		}), logger)
		blocklist.Refresh(ctx)
		router.Use(blocklist.Middleware())
		logger.Info("ip blocklist enabled", "bucket", cfg.StorageBucket, "key", cfg.BlocklistKey)
	}

	router.Use(idle.Middleware)
	router.Use(mw.RequestLogger(logger, "/healthz", "/readyz"))
	router.Use(middleware.Recoverer)
	router.Use(mw.APIVersion(services.Selector.Catalog().Revision()))
	router.Use(mw.Timeout(mw.TimeoutConfig{
		Default:      cfg.RequestTimeout,
		Long:         cfg.LongRequestTimeout,
		LongPatterns: mw.DefaultLongPatterns,
	}))

	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", mw.HeaderAPIVersion, mw.HeaderCatalogRevision, "X-RateLimit-Limit", "X-RateLimit-Remaining", "Retry-After"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Request size limit (1MB)
	router.Use(middleware.RequestSize(1 * 1024 * 1024))

	router.Use(mw.RateLimit(mw.RateLimitConfig{
		RequestsPerMinute:  cfg.RateLimitPerMinute,
		ExpensivePerMinute: max(1, cfg.RateLimitPerMinute/10),
		ExpensivePatterns:  mw.DefaultExpensivePatterns,
	}))

	// Global concurrency throttle - prevent system overload
	router.Use(middleware.Throttle(100))

	api := humachi.New(router, routes.NewHumaConfig(cfg.BaseURL))
	routes.Register(api, &routes.Handlers{
		HealthCheck: handlers.NewHealthHandler(services.Storage.IsEnabled(), services.Approval.PublishingEnabled(), cfg.TestingMode).HealthCheck,
		Livez:       handlers.Livez,
		Readyz:      handlers.NewReadyzHandler(db).Readyz,
		Model:       handlers.NewModelHandler(services.Selector, cfg.BudgetMode),
		Trend:       handlers.NewTrendHandler(services.Trend, services.Generation),
		Product:     handlers.NewProductHandler(services.Approval),
	})

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: cfg.LongRequestTimeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Graceful shutdown on signal or idle timeout
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
		select {
		case sig := <-sigChan:
			logger.Info("shutting down server", "signal", sig.String())
		case <-idle.ShutdownChan():
			logger.Info("shutting down idle server")
		}
		idle.Stop()

		// Stop the worker first; running generations get the grace period.
		if genWorker != nil {
			genWorker.Stop()
		}
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "error", err)
		}
	}()

	logger.Info("starting server",
		"port", cfg.Port,
		"base_url", cfg.BaseURL,
		"budget_mode", cfg.BudgetMode,
		"testing_mode", cfg.TestingMode,
		"worker", cfg.WorkerEnabled,
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
