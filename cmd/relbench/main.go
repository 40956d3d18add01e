// Command relbench races follow, unfollow and block calls over a small set of
// users and audits the graph invariants afterwards.
package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"strconv"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/d60-Lab/minitwit/config"
	"github.com/d60-Lab/minitwit/internal/apperr"
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

func envInt(name string, def int) int {
	if s := os.Getenv(name); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
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

type op int

const (
	opFollow op = iota
	opUnfollow
	opBlock
)

func (o op) String() string { return [...]string{"follow", "unfollow", "block"}[o] }

func main() {
	cfg := must(config.Load())
	db := must(database.InitDB(cfg))
	defer func() { _ = database.Close(db) }()

	N := envInt("N", 20000)   // operations
	CONC := envInt("CONC", 8) // workers
	USERS := envInt("USERS", 12)
	seed := int64(envInt("SEED", int(time.Now().UnixNano()%math.MaxInt32)))

	ctx := context.Background()
	userRepo := repository.NewUserRepository(db)
	relSvc := service.NewRelationshipService(db, userRepo,
		repository.NewFollowRepository(db), repository.NewBlockRepository(db),
		cache.NewProfileCache(nil, 0))

	// fresh graph for a reproducible audit
	must(0, db.Exec("DELETE FROM blocks").Error)
	must(0, db.Exec("DELETE FROM follows").Error)
	ids := make([]string, USERS)
	for i := range ids {
		ids[i] = fmt.Sprintf("bench%03d", i)
		u := model.User{ID: ids[i], DisplayName: ids[i], Email: ids[i] + "@bench.local", Phone: "0", Credential: "-"}
		must(0, db.Where("id = ?", u.ID).FirstOrCreate(&u).Error)
	}

	type result struct {
		op  op
		d   time.Duration
		err error
	}
	jobs := make(chan int, N)
	for i := 0; i < N; i++ {
		jobs <- i
	}
	close(jobs)
	results := make(chan result, N)

	t0 := time.Now()
	var wg sync.WaitGroup
	for w := 0; w < min(CONC, N); w++ {
		rng := rand.New(rand.NewSource(seed + int64(w)))
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				a, b := ids[rng.Intn(len(ids))], ids[rng.Intn(len(ids))]
				o := op(rng.Intn(10) % 3)
				if rng.Intn(10) < 5 {
					o = opFollow
				}
				st := time.Now()
				var err error
				switch o {
				case opFollow:
					err = relSvc.Follow(ctx, a, b)
				case opUnfollow:
					err = relSvc.Unfollow(ctx, a, b)
				case opBlock:
					err = relSvc.Block(ctx, a, b)
				}
				results <- result{op: o, d: time.Since(st), err: err}
			}
		}()
	}
	wg.Wait()
	close(results)
	total := time.Since(t0)

	lat := map[op][]time.Duration{}
	codes := map[string]int{}
	for r := range results {
		lat[r.op] = append(lat[r.op], r.d)
		switch {
		case r.err == nil:
			codes[r.op.String()+":ok"]++
		case apperr.CodeOf(r.err) != "":
			codes[r.op.String()+":"+string(apperr.CodeOf(r.err))]++
		default:
			codes[r.op.String()+":"+r.err.Error()]++
		}
	}

	fmt.Printf("N=%d, CONC=%d, USERS=%d, SEED=%d, driver=%s\n", N, CONC, USERS, seed, cfg.Database.Driver)
	fmt.Printf("total %v, %.0f ops/s\n", total, float64(N)/total.Seconds())
	for _, o := range []op{opFollow, opUnfollow, opBlock} {
		vs := lat[o]
		fmt.Printf("%-8s n=%-6d p50=%v p95=%v p99=%v\n", o, len(vs), pct(vs, 0.50), pct(vs, 0.95), pct(vs, 0.99))
	}
	keys := make([]string, 0, len(codes))
	for k := range codes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Printf("  %-32s %d\n", k, codes[k])
	}

	if err := audit(db); err != nil {
		fmt.Println("AUDIT FAILED:", err)
		os.Exit(1)
	}
	fmt.Println("audit ok: no self edges, no follow alongside a block")
}

// audit checks that no self edge exists and that no follow edge coexists with
// a block in either direction between the same pair.
func audit(db *gorm.DB) error {
	var self int64
	if err := db.Raw(`SELECT (SELECT COUNT(*) FROM follows WHERE follower_id = followee_id)
		+ (SELECT COUNT(*) FROM blocks WHERE blocker_id = blocked_id)`).Scan(&self).Error; err != nil {
		return err
	}
	var conflicts int64
	if err := db.Raw(`SELECT COUNT(*) FROM follows f JOIN blocks b
		ON (b.blocker_id = f.follower_id AND b.blocked_id = f.followee_id)
		OR (b.blocker_id = f.followee_id AND b.blocked_id = f.follower_id)`).Scan(&conflicts).Error; err != nil {
		return err
	}
	var errs []error
	if self > 0 {
		errs = append(errs, fmt.Errorf("%d self edges", self))
	}
	if conflicts > 0 {
		errs = append(errs, fmt.Errorf("%d follow edges alongside a block", conflicts))
	}
	return errors.Join(errs...)
}
