// Command timelinebench measures read-time feed derivation: one viewer
// following many authors, with a share of them blocking the viewer.
package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"sort"
	"strconv"
	"time"

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
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			return v
		}
	}
	return def
}

func main() {
	ctx := context.Background()
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()

	AUTHORS := envInt("AUTHORS", 200) // followees of the viewer
	POSTS := envInt("POSTS", 50)      // posts per author
	BLOCKS := envInt("BLOCKS", 20)    // authors that block the viewer
	READS := envInt("READS", 200)
	PAGE := envInt("PAGE", cfg.Feed.PageSize)

	// clean tables for a reproducible run (ok for local bench)
	for _, table := range []string{"blocks", "follows", "posts", "users"} {
		_ = must(0, db.Exec("DELETE FROM "+table).Error)
	}

	userRepo := repository.NewUserRepository(db)
	rel := service.NewRelationshipService(db, userRepo,
		repository.NewFollowRepository(db), repository.NewBlockRepository(db), cache.NewProfileCache(nil, 0))
	feed := service.NewFeedService(userRepo, repository.NewFeedRepository(db), PAGE)

	viewer := model.User{ID: "viewer", DisplayName: "Viewer", Email: "viewer@bench.local", Phone: "0", Credential: "-"}
	_ = must(0, db.Create(&viewer).Error)
	authors := make([]model.User, AUTHORS)
	for i := range authors {
		id := fmt.Sprintf("author%04d", i)
		authors[i] = model.User{ID: id, DisplayName: "Author " + strconv.Itoa(i), Email: id + "@bench.local", Phone: "0", Credential: "-"}
	}
	_ = must(0, db.CreateInBatches(&authors, 500).Error)

	posts := make([]model.Post, 0, AUTHORS*POSTS)
	base := time.Now().UTC()
	for i := 0; i < POSTS; i++ {
		for j := range authors {
			posts = append(posts, model.Post{
				AuthorID:  authors[j].ID,
				Content:   fmt.Sprintf("post %d by %s", i, authors[j].ID),
				CreatedAt: base.Add(-time.Duration(i*AUTHORS+j) * time.Millisecond),
			})
		}
	}
	_ = must(0, db.CreateInBatches(&posts, 1000).Error)

	for _, a := range authors {
		if err := rel.Follow(ctx, viewer.ID, a.ID); err != nil {
			panic(err)
		}
	}

	measure := func(label string, page int) {
		lat := make([]time.Duration, 0, READS)
		var items int
		for i := 0; i < READS; i++ {
			st := time.Now()
			p := must(feed.Feed(ctx, viewer.ID, page, PAGE))
			lat = append(lat, time.Since(st))
			items = len(p.Items)
		}
		fmt.Printf("%-22s page=%-5d items=%-3d p50=%v p95=%v p99=%v\n",
			label, page, items, pct(lat, 0.50), pct(lat, 0.95), pct(lat, 0.99))
	}

	fmt.Printf("AUTHORS=%d POSTS=%d BLOCKS=%d READS=%d PAGE=%d driver=%s\n",
		AUTHORS, POSTS, BLOCKS, READS, PAGE, cfg.Database.Driver)
	deep := max(1, AUTHORS*POSTS/PAGE/2)
	measure("feed head", 1)
	measure("feed deep", deep)

	// authors blocking the viewer drop out of the feed on the next read
	st := time.Now()
	for i := 0; i < min(BLOCKS, AUTHORS); i++ {
		if err := rel.Block(ctx, authors[i].ID, viewer.ID); err != nil {
			panic(err)
		}
	}
	fmt.Printf("block %d authors: %v\n", min(BLOCKS, AUTHORS), time.Since(st))
	measure("feed head (blocked)", 1)
	measure("feed deep (blocked)", deep)

	chunks := 0
	cur := feed.FeedCursor(viewer.ID, PAGE)
	st = time.Now()
	for {
		if _, ok := cur.Next(ctx); !ok {
			break
		}
		chunks++
	}
	if err := cur.Err(); err != nil {
		panic(err)
	}
	fmt.Printf("full walk: chunks=%d in %v\n", chunks, time.Since(st))
}
