package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/spec-kit/commerce-service/internal/api/http/handlers"
	"github.com/spec-kit/commerce-service/internal/app"
	"github.com/spec-kit/commerce-service/internal/cache"
	"github.com/spec-kit/commerce-service/internal/config"
	"github.com/spec-kit/commerce-service/internal/observability"
	"github.com/spec-kit/commerce-service/internal/persistence"
	"github.com/spec-kit/commerce-service/internal/repository"
	"github.com/spec-kit/commerce-service/internal/repository/memory"
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

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	health := map[string]handlers.Pinger{}
	var repos app.Repositories
	if pg.Enabled() {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pg.Pool, os.DirFS(cfg.Postgres.MigrationsDir), logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		repos = app.Repositories{
			Users:    repository.NewUserRepository(pg.Pool),
			Products: repository.NewProductRepository(pg.Pool),
			Orders:   repository.NewOrderRepository(pg.Pool),
			Reviews:  repository.NewReviewRepository(pg.Pool),
		}
		health["postgres"] = pg
	} else {
		logger.Warn("using in-memory repositories; data is lost on restart")
		store := memory.NewStore()
		repos = app.Repositories{
			Users:    store.Users(),
			Products: store.Products(),
			Orders:   store.Orders(),
			Reviews:  store.Reviews(),
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()
	if redis.Client != nil {
		health["redis"] = redis
	}

	server, err := app.New(cfg, app.Dependencies{
		Logger:       logger,
		Repos:        repos,
		ProductCache: cache.NewProductCache(redis.Client, cfg.Cache.ProductTTL(), logger.Named("cache")),
		Health:       health,
	})
	if err != nil {
		logger.Fatal("failed to build application", zap.Error(err))
	}

	go func() {
		logger.Info("listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		if err := server.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := server.Shutdown(); err != nil {
		logger.Warn("shutdown", zap.Error(err))
	}
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
