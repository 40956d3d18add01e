package service

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/d60-Lab/minitwit/config"
	"github.com/d60-Lab/minitwit/internal/cache"
	"github.com/d60-Lab/minitwit/internal/repository"
	"github.com/d60-Lab/minitwit/internal/testutil"
)

type env struct {
	db       *gorm.DB
	identity IdentityService
	rel      RelationshipService
	posts    PostService
	feed     FeedService
	creds    *CredentialService
	profiles *cache.ProfileCache
}

func testCreds() *CredentialService {
	return NewCredentialService(config.JWTConfig{
		Secret:     "test-secret",
		Issuer:     "minitwit-test",
		TTL:        time.Hour,
		BcryptCost: 4,
	})
}

func newEnv(t *testing.T, users ...string) *env {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.SeedUsers(t, db, users...)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	profiles := cache.NewProfileCache(client, time.Minute)

	userRepo := repository.NewUserRepository(db)
	creds := testCreds()
	return &env{
		db:       db,
		identity: NewIdentityService(userRepo, profiles, creds),
		rel: NewRelationshipService(db, userRepo,
			repository.NewFollowRepository(db), repository.NewBlockRepository(db), profiles),
		posts:    NewPostService(db, userRepo, repository.NewPostRepository(db)),
		feed:     NewFeedService(userRepo, repository.NewFeedRepository(db), 5),
		creds:    creds,
		profiles: profiles,
	}
}

var ctx = context.Background()
