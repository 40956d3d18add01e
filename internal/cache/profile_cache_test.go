package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/minitwit/internal/model"
)

type fakeStore struct {
	users map[string]*model.User
	calls [][]string
}

func newFakeStore(ids ...string) *fakeStore {
	s := &fakeStore{users: map[string]*model.User{}}
	for _, id := range ids {
		s.users[id] = &model.User{ID: id, DisplayName: "name-" + id, Email: id + "@example.com"}
	}
	return s
}

func (s *fakeStore) load(_ context.Context, ids []string) ([]*model.User, error) {
	s.calls = append(s.calls, append([]string(nil), ids...))
	var out []*model.User
	// reverse order on purpose: Load must restore caller order
	for i := len(ids) - 1; i >= 0; i-- {
		if u, ok := s.users[ids[i]]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func newRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestLoad_ReadThroughPreservesOrder(t *testing.T) {
	mr, client := newRedis(t)
	store := newFakeStore("a", "b", "c")
	c := NewProfileCache(client, time.Minute)
	ctx := context.Background()

	snaps, err := c.Load(ctx, []string{"c", "a", "ghost", "b"}, store.load)
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	assert.Equal(t, []string{"c", "a", "b"}, []string{snaps[0].ID, snaps[1].ID, snaps[2].ID})
	assert.Equal(t, "name-a", snaps[1].DisplayName)
	assert.True(t, mr.Exists("user:a"))
	assert.False(t, mr.Exists("user:ghost"))

	snaps, err = c.Load(ctx, []string{"a", "b"}, store.load)
	require.NoError(t, err)
	assert.Len(t, snaps, 2)
	assert.Len(t, store.calls, 1, "second read served from redis")

	counters := c.Counters()
	assert.EqualValues(t, 2, counters.Hits)
	assert.EqualValues(t, 4, counters.Misses)
	assert.EqualValues(t, 1, counters.BulkLoads)

	c.ResetCounters()
	assert.Zero(t, c.Counters())
}

func TestLoad_TTLApplied(t *testing.T) {
	mr, client := newRedis(t)
	c := NewProfileCache(client, 30*time.Second)

	_, err := c.Load(context.Background(), []string{"a"}, newFakeStore("a").load)
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, mr.TTL("user:a"))
}

func TestLoad_NilClientPassThrough(t *testing.T) {
	store := newFakeStore("a")
	c := NewProfileCache(nil, time.Minute)

	for i := 0; i < 2; i++ {
		snaps, err := c.Load(context.Background(), []string{"a"}, store.load)
		require.NoError(t, err)
		assert.Len(t, snaps, 1)
	}
	assert.Len(t, store.calls, 2)
}

func TestLoad_RedisDownFallsBack(t *testing.T) {
	mr, client := newRedis(t)
	mr.Close()
	store := newFakeStore("a")
	c := NewProfileCache(client, time.Minute)

	snaps, err := c.Load(context.Background(), []string{"a"}, store.load)
	require.NoError(t, err)
	assert.Len(t, snaps, 1)
}

func TestLoad_LoaderError(t *testing.T) {
	_, client := newRedis(t)
	boom := errors.New("db down")
	c := NewProfileCache(client, time.Minute)

	_, err := c.Load(context.Background(), []string{"a"}, func(context.Context, []string) ([]*model.User, error) {
		return nil, boom
	})
	assert.ErrorIs(t, err, boom)
}

func TestGet(t *testing.T) {
	_, client := newRedis(t)
	c := NewProfileCache(client, time.Minute)
	store := newFakeStore("a")

	snap, ok, err := c.Get(context.Background(), "a", store.load)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "a@example.com", snap.Email)

	_, ok, err = c.Get(context.Background(), "zzz", store.load)
	require.NoError(t, err)
	assert.False(t, ok)
}
