package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/repair-service/internal/api/http"
	"github.com/spec-kit/repair-service/internal/config"
	"github.com/spec-kit/repair-service/internal/events"
	"github.com/spec-kit/repair-service/internal/observability"
	"github.com/spec-kit/repair-service/internal/persistence"
	"github.com/spec-kit/repair-service/internal/ratelimit"
	"github.com/spec-kit/repair-service/internal/repository"
	"github.com/spec-kit/repair-service/internal/service"
	"github.com/spec-kit/repair-service/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()
	deps := httptransport.AppDependencies{
		Config:   cfg,
		Logger:   logger,
		Metrics:  metrics,
		Notifier: service.NewNotificationService(logger),
	}

	if cfg.Postgres.DSN != "" {
		pg, err := persistence.OpenPostgres(ctx, cfg.Postgres, logger)
		if err != nil {
			logger.Fatal("failed to open postgres", zap.Error(err))
		}
		defer pg.Close()

		pool := pg.Pool()
		deps.Requests = repository.NewRequestRepository(pool)
		deps.Users = repository.NewUserRepository(pool)
		deps.Postgres = pg
	} else {
		logger.Warn("POSTGRES_DSN not set; using in-memory store")
		store := repository.NewMemoryStore()
		deps.Requests = store.Requests()
		deps.Users = store.Users()
	}

	if cfg.RateLimit.Enabled {
		redis := persistence.NewRedis(ctx, cfg.Redis, logger)
		defer redis.Close()
		limiter, err := ratelimit.NewFixedWindowLimiter(redis.Scripter(), cfg.RateLimit.Prefix, cfg.RateLimit.Limit, cfg.RateLimit.Window())
		if err != nil {
			logger.Fatal("failed to configure rate limiter", zap.Error(err))
		}
		deps.Limiter = limiter
		deps.Redis = redis
	}

	broadcaster := events.NewBroadcaster(cfg.Stream.BufferSize, logger, metrics)
	deps.Broadcaster = broadcaster
	keepAliveDone := worker.StartKeepAliveWorker(ctx, broadcaster, cfg.Stream.KeepAlive(), logger)

	app := httptransport.NewApp(deps)

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()))
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	cancel()
	<-keepAliveDone
	broadcaster.Close()
	if err := app.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
