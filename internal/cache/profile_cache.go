package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/d60-Lab/minitwit/internal/model"
	"github.com/d60-Lab/minitwit/pkg/logger"
)

// UserSnapshot contains the public user fields shown by follower/following pages.
type UserSnapshot struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
	Email       string `json:"email"`
}

// Loader reads users by id from the primary store; order is not significant.
type Loader func(ctx context.Context, ids []string) ([]*model.User, error)

// ProfileCache is a read-through redis cache of user snapshots. Users are
// append-only and never edited, so entries cannot go stale; the TTL only bounds
// memory. Graph edges are never cached here.
type ProfileCache struct {
	cache *redis.Client
	ttl   time.Duration

	hits     atomic.Int64
	misses   atomic.Int64
	bulkLoad atomic.Int64
}

// NewProfileCache builds a cache; a nil client disables caching and every call
// goes to the loader.
func NewProfileCache(cache *redis.Client, ttl time.Duration) *ProfileCache {
	return &ProfileCache{cache: cache, ttl: ttl}
}

func snapshotOf(u *model.User) UserSnapshot {
	return UserSnapshot{ID: u.ID, DisplayName: u.DisplayName, Email: u.Email}
}

func key(id string) string { return fmt.Sprintf("user:%s", id) }

// Load returns snapshots for ids in the same order. Ids the loader does not
// return are skipped. Redis failures degrade to the loader.
func (c *ProfileCache) Load(ctx context.Context, ids []string, load Loader) ([]UserSnapshot, error) {
	if len(ids) == 0 {
		return []UserSnapshot{}, nil
	}

	cached := make(map[string]UserSnapshot, len(ids))
	if c.cache != nil {
		keys := make([]string, len(ids))
		for i, id := range ids {
			keys[i] = key(id)
		}
		vals, err := c.cache.MGet(ctx, keys...).Result()
		if err != nil {
			logger.Warn("profile cache mget failed", zap.Error(err))
		}
		for i, v := range vals {
			str, ok := v.(string)
			if !ok {
				continue
			}
			var snap UserSnapshot
			if uErr := json.Unmarshal([]byte(str), &snap); uErr == nil {
				cached[ids[i]] = snap
			}
		}
	}

	missing := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := cached[id]; !ok {
			missing = append(missing, id)
		}
	}
	c.hits.Add(int64(len(ids) - len(missing)))
	c.misses.Add(int64(len(missing)))

	if len(missing) > 0 {
		c.bulkLoad.Add(1)
		users, err := load(ctx, missing)
		if err != nil {
			return nil, err
		}
		var pipe redis.Pipeliner
		if c.cache != nil {
			pipe = c.cache.Pipeline()
		}
		for _, u := range users {
			snap := snapshotOf(u)
			cached[u.ID] = snap
			if pipe == nil {
				continue
			}
			if payload, err := json.Marshal(snap); err == nil {
				pipe.Set(ctx, key(u.ID), payload, c.ttl)
			}
		}
		if pipe != nil && pipe.Len() > 0 {
			if _, err := pipe.Exec(ctx); err != nil {
				logger.Warn("profile cache fill failed", zap.Error(err))
			}
		}
	}

	result := make([]UserSnapshot, 0, len(ids))
	for _, id := range ids {
		if snap, ok := cached[id]; ok {
			result = append(result, snap)
		}
	}
	return result, nil
}

// Get 单个用户；不存在时 ok 为 false
func (c *ProfileCache) Get(ctx context.Context, id string, load Loader) (snap UserSnapshot, ok bool, err error) {
	snaps, err := c.Load(ctx, []string{id}, load)
	if err != nil || len(snaps) == 0 {
		return UserSnapshot{}, false, err
	}
	return snaps[0], true, nil
}

// Counters reports cache effectiveness since the last reset.
func (c *ProfileCache) Counters() Counters {
	return Counters{Hits: c.hits.Load(), Misses: c.misses.Load(), BulkLoads: c.bulkLoad.Load()}
}

// ResetCounters clears recorded counters.
func (c *ProfileCache) ResetCounters() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.bulkLoad.Store(0)
}

// Counters summarises cache hits and store loads.
type Counters struct {
	Hits      int64
	Misses    int64
	BulkLoads int64
}
