// @title minitwit API
// @version 1.0
// @description Social graph and feed service: follow/block relations, posts and per-user timelines.
// @BasePath /
// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/minitwit/config"
	"github.com/d60-Lab/minitwit/internal/api"
	"github.com/d60-Lab/minitwit/internal/api/handler"
	"github.com/d60-Lab/minitwit/internal/cache"
	"github.com/d60-Lab/minitwit/internal/repository"
	"github.com/d60-Lab/minitwit/internal/service"
	"github.com/d60-Lab/minitwit/pkg/database"
	"github.com/d60-Lab/minitwit/pkg/logger"
	"github.com/d60-Lab/minitwit/pkg/tracing"
)

func main() {
	if err := run(); err != nil {
		logger.Error("server exited", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.Log); err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Sentry.DSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.Sentry.DSN,
			Environment:      cfg.Sentry.Environment,
			EnableTracing:    cfg.Sentry.TracesSampleRate > 0,
			TracesSampleRate: cfg.Sentry.TracesSampleRate,
		}); err != nil {
			return err
		}
		defer sentry.Flush(2 * time.Second)
	}

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		_ = shutdownTracing(sctx)
	}()

	db, err := database.InitDB(cfg)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			// 缓存不可用时降级直读数据库
			logger.Warn("redis unavailable, profile cache degraded", zap.Error(err))
		}
	}

	userRepo := repository.NewUserRepository(db)
	profiles := cache.NewProfileCache(rdb, cfg.Redis.TTL)
	creds := service.NewCredentialService(cfg.JWT)

	h := handler.NewHandler(
		service.NewIdentityService(userRepo, profiles, creds),
		service.NewRelationshipService(db, userRepo,
			repository.NewFollowRepository(db), repository.NewBlockRepository(db), profiles),
		service.NewPostService(db, userRepo, repository.NewPostRepository(db)),
		service.NewFeedService(userRepo, repository.NewFeedRepository(db), cfg.Feed.PageSize),
		db, rdb,
	)

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      api.NewRouter(cfg, h, creds),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.Server.Addr), zap.String("driver", cfg.Database.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(sctx)
}
