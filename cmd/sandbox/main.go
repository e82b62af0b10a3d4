package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgervault/internal/config"
	"ledgervault/internal/database"
	"ledgervault/internal/logging"
	"ledgervault/internal/middleware"
	"ledgervault/internal/server"

	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.Load()
	logger := logging.New(cfg.Logging)

	db, err := database.Initialize(cfg.Sandbox, logger)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		return 1
	}
	defer db.Close()

	service := server.NewLedgerService(db, cfg.Sandbox, logger)
	if cfg.Sandbox.SeedDemoData {
		if err := service.SeedDemoData(); err != nil {
			logger.Error("failed to seed demo data", "error", err)
			return 1
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.Sandbox.RateLimitPerSecond, cfg.Sandbox.RateLimitBurst)
	go limiter.Run(ctx, time.Minute)

	router := server.NewRouter(server.RouterDependencies{
		Config:   cfg.Sandbox,
		Service:  service,
		Health:   db,
		Metrics:  middleware.NewHTTPMetrics(prometheus.DefaultRegisterer),
		Gatherer: prometheus.DefaultGatherer,
		Limiter:  limiter,
		Logger:   logger,
	})

	srv := server.New(logger, cfg.Sandbox.Address(), router)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Error("server stopped unexpectedly", "error", err)
			return 1
		}
		return 0
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
		return 1
	}
	return 0
}
