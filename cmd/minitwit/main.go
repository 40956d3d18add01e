// Command minitwit drives the graph and feed services from a terminal.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/minitwit/config"
	"github.com/d60-Lab/minitwit/internal/cache"
	"github.com/d60-Lab/minitwit/internal/repository"
	"github.com/d60-Lab/minitwit/internal/service"
	"github.com/d60-Lab/minitwit/pkg/database"
	"github.com/d60-Lab/minitwit/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg.Log.Format = "console"
	if cfg.Log.Level == "info" {
		cfg.Log.Level = "warn"
	}
	if err := logger.Init(cfg.Log); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.InitDB(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	}
	userRepo := repository.NewUserRepository(db)
	profiles := cache.NewProfileCache(rdb, cfg.Redis.TTL)

	a := &app{
		identity: service.NewIdentityService(userRepo, profiles, service.NewCredentialService(cfg.JWT)),
		rel: service.NewRelationshipService(db, userRepo,
			repository.NewFollowRepository(db), repository.NewBlockRepository(db), profiles),
		posts:    service.NewPostService(db, userRepo, repository.NewPostRepository(db)),
		feed:     service.NewFeedService(userRepo, repository.NewFeedRepository(db), cfg.Feed.PageSize),
		pageSize: cfg.Feed.PageSize,
		out:      os.Stdout,
		errOut:   os.Stderr,
	}
	code := a.run(context.Background(), os.Args[1:])

	if rdb != nil {
		_ = rdb.Close()
	}
	_ = database.Close(db)
	os.Exit(code)
}
