// Command cachebench measures follower-list hydration with and without the
// redis profile cache.
package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/d60-Lab/minitwit/config"
	"github.com/d60-Lab/minitwit/internal/cache"
	"github.com/d60-Lab/minitwit/internal/model"
	"github.com/d60-Lab/minitwit/internal/repository"
	"github.com/d60-Lab/minitwit/internal/service"
	"github.com/d60-Lab/minitwit/pkg/database"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func mustDo(err error) {
	if err != nil {
		panic(err)
	}
}

func pct(vs []time.Duration, p float64) time.Duration {
	if len(vs) == 0 {
		return 0
	}
	xs := append([]time.Duration(nil), vs...)
	sort.Slice(xs, func(i, j int) bool { return xs[i] < xs[j] })
	k := int(math.Ceil(p*float64(len(xs)))) - 1
	k = max(0, min(k, len(xs)-1))
	return xs[k]
}

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()

	followers := envInt("N", 5000)
	requests := envInt("REQUESTS", 2000)
	pageSize := envInt("PAGE", 20)

	// REDIS_ADDR 为空时使用进程内 miniredis
	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		mr := must(miniredis.Run())
		defer mr.Close()
		redisAddr = mr.Addr()
	}
	client := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer client.Close()
	mustDo(client.FlushDB(ctx).Err())

	fmt.Println("Setting up test data...")
	mustDo(db.Exec("DELETE FROM follows WHERE followee_id = ?", "star").Error)
	star := model.User{ID: "star", DisplayName: "Star", Email: "star@bench.local", Phone: "0", Credential: "-"}
	mustDo(db.Where("id = ?", star.ID).FirstOrCreate(&star).Error)

	users := make([]model.User, followers)
	edges := make([]model.Follow, followers)
	base := time.Now().UTC()
	for i := range users {
		id := fmt.Sprintf("fan%06d", i)
		users[i] = model.User{ID: id, DisplayName: fmt.Sprintf("Fan %d", i), Email: id + "@bench.local", Phone: "0", Credential: "-"}
		edges[i] = model.Follow{FollowerID: id, FolloweeID: star.ID, CreatedAt: base.Add(-time.Duration(i) * time.Second)}
	}
	mustDo(db.Where("id LIKE ?", "fan%").Delete(&model.User{}).Error)
	mustDo(db.CreateInBatches(&users, 500).Error)
	mustDo(db.CreateInBatches(&edges, 500).Error)
	fmt.Printf("Test data ready: %d followers\n", followers)

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	blockRepo := repository.NewBlockRepository(db)

	// pages skewed toward the head, as follower lists are read
	pages := max(1, followers/pageSize)
	rng := rand.New(rand.NewSource(42))
	plan := make([]int, requests)
	for i := range plan {
		plan[i] = 1 + int(math.Min(float64(pages-1), rng.ExpFloat64()*3))
	}

	run := func(label string, profiles *cache.ProfileCache) {
		svc := service.NewRelationshipService(db, userRepo, followRepo, blockRepo, profiles)
		lat := make([]time.Duration, 0, requests)
		t0 := time.Now()
		for _, page := range plan {
			st := time.Now()
			_ = must(svc.ListFollowers(ctx, star.ID, page, pageSize))
			lat = append(lat, time.Since(st))
		}
		total := time.Since(t0)
		c := profiles.Counters()
		hitRate := 0.0
		if c.Hits+c.Misses > 0 {
			hitRate = float64(c.Hits) / float64(c.Hits+c.Misses)
		}
		fmt.Printf("%-10s total=%v p50=%v p95=%v p99=%v hits=%d misses=%d loads=%d hit_rate=%.2f\n",
			label, total, pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99), c.Hits, c.Misses, c.BulkLoads, hitRate)
	}

	fmt.Printf("REQUESTS=%d, PAGE=%d, redis=%s\n", requests, pageSize, redisAddr)
	run("no-cache", cache.NewProfileCache(nil, 0))
	run("redis", cache.NewProfileCache(client, cfg.Redis.TTL))
}
