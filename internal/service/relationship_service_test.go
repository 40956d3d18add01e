package service

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/d60-Lab/minitwit/internal/apperr"
)

func TestFollow_Errors(t *testing.T) {
	e := newEnv(t, "alice", "bob")

	for _, id := range []string{"alice", "bob", "ghost"} {
		assert.ErrorIs(t, e.rel.Follow(ctx, id, id), apperr.ErrSelfReference, id)
		assert.ErrorIs(t, e.rel.Block(ctx, id, id), apperr.ErrSelfReference, id)
		assert.ErrorIs(t, e.rel.Unfollow(ctx, id, id), apperr.ErrSelfReference, id)
	}

	assert.ErrorIs(t, e.rel.Follow(ctx, "alice", "ghost"), apperr.ErrUnknownUser)
	assert.ErrorIs(t, e.rel.Unfollow(ctx, "alice", "ghost"), apperr.ErrUnknownUser)
	assert.ErrorIs(t, e.rel.Block(ctx, "alice", "ghost"), apperr.ErrUnknownUser)
	assert.ErrorIs(t, e.rel.Follow(ctx, "alice", "Bob"), apperr.ErrUnknownUser, "ids are case-sensitive")

	require.NoError(t, e.rel.Follow(ctx, "alice", "bob"))
	err := e.rel.Follow(ctx, "alice", "bob")
	assert.ErrorIs(t, err, apperr.ErrAlreadyFollowing)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
}

func TestUnfollow(t *testing.T) {
	e := newEnv(t, "alice", "bob")

	err := e.rel.Unfollow(ctx, "alice", "bob")
	assert.ErrorIs(t, err, apperr.ErrNotFollowing)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	require.NoError(t, e.rel.Follow(ctx, "alice", "bob"))
	require.NoError(t, e.rel.Follow(ctx, "bob", "alice"))
	require.NoError(t, e.rel.Unfollow(ctx, "alice", "bob"))

	ok, err := e.rel.IsFollowing(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = e.rel.IsFollowing(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, ok, "only one edge removed")

	assert.ErrorIs(t, e.rel.Unfollow(ctx, "alice", "bob"), apperr.ErrNotFollowing)
}

func TestBlock_RequiresFollower(t *testing.T) {
	e := newEnv(t, "alice", "bob")

	err := e.rel.Block(ctx, "bob", "alice")
	assert.ErrorIs(t, err, apperr.ErrNotAFollower)

	// bob following alice does not make alice bob's follower
	require.NoError(t, e.rel.Follow(ctx, "bob", "alice"))
	assert.ErrorIs(t, e.rel.Block(ctx, "bob", "alice"), apperr.ErrNotAFollower)

	blocked, err := e.rel.IsBlocked(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, blocked)
}

func TestBlock_AtomicRetractAndSymmetry(t *testing.T) {
	e := newEnv(t, "alice", "bob")
	require.NoError(t, e.rel.Follow(ctx, "alice", "bob"))
	require.NoError(t, e.rel.Follow(ctx, "bob", "alice"))

	require.NoError(t, e.rel.Block(ctx, "bob", "alice"))

	blocked, err := e.rel.IsBlocked(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.True(t, blocked)
	blocked, err = e.rel.IsBlocked(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, blocked, "blocks are directed")

	for _, pair := range [][2]string{{"alice", "bob"}, {"bob", "alice"}} {
		ok, err := e.rel.IsFollowing(ctx, pair[0], pair[1])
		require.NoError(t, err)
		assert.False(t, ok, "%s -> %s", pair[0], pair[1])
	}

	assert.ErrorIs(t, e.rel.Follow(ctx, "alice", "bob"), apperr.ErrBlockedByTarget)
	err = e.rel.Follow(ctx, "bob", "alice")
	assert.ErrorIs(t, err, apperr.ErrHasBlockedTarget)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	assert.ErrorIs(t, e.rel.Block(ctx, "bob", "alice"), apperr.ErrAlreadyBlocked)
	assert.ErrorIs(t, e.rel.Block(ctx, "alice", "bob"), apperr.ErrNotAFollower)
}

func TestBlock_RollsBackOnFailure(t *testing.T) {
	e := newEnv(t, "alice", "bob")
	require.NoError(t, e.rel.Follow(ctx, "alice", "bob"))

	boom := errors.New("disk gone")
	require.NoError(t, e.db.Callback().Delete().Before("gorm:delete").Register("test:fail_follow_delete", func(tx *gorm.DB) {
		if tx.Statement.Table == "follows" {
			_ = tx.AddError(boom)
		}
	}))

	err := e.rel.Block(ctx, "bob", "alice")
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, apperr.KindStorageUnavailable, apperr.KindOf(err))

	blocked, err := e.rel.IsBlocked(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, blocked, "block insert rolled back")
	ok, err := e.rel.IsFollowing(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, ok, "follow edge untouched")
}

func TestFollowOrderChecks(t *testing.T) {
	e := newEnv(t, "alice", "bob")
	require.NoError(t, e.rel.Follow(ctx, "alice", "bob"))
	require.NoError(t, e.rel.Block(ctx, "bob", "alice"))

	// a re-follow attempt reports the block, not a duplicate
	assert.ErrorIs(t, e.rel.Follow(ctx, "alice", "bob"), apperr.ErrBlockedByTarget)
	// unknown target wins over everything but self reference
	assert.ErrorIs(t, e.rel.Follow(ctx, "ghost", "bob"), apperr.ErrUnknownUser)
}

func TestListFollowingAndFollowers(t *testing.T) {
	e := newEnv(t, "alice", "bob", "carol", "dave")
	for _, id := range []string{"bob", "carol", "dave"} {
		require.NoError(t, e.rel.Follow(ctx, "alice", id))
	}
	require.NoError(t, e.rel.Follow(ctx, "bob", "dave"))

	page, err := e.rel.ListFollowing(ctx, "alice", 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.True(t, page.HasMore)

	page2, err := e.rel.ListFollowing(ctx, "alice", 2, 2)
	require.NoError(t, err)
	require.Len(t, page2.Items, 1)
	assert.False(t, page2.HasMore)

	seen := map[string]bool{}
	for _, c := range append(page.Items, page2.Items...) {
		seen[c.UserID] = true
		assert.Equal(t, c.UserID+"@example.com", c.Email)
		assert.False(t, c.Since.IsZero())
	}
	assert.Len(t, seen, 3)

	followers, err := e.rel.ListFollowers(ctx, "dave", 1, 10)
	require.NoError(t, err)
	assert.Len(t, followers.Items, 2)

	empty, err := e.rel.ListFollowers(ctx, "alice", 1, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty.Items)
	assert.Empty(t, empty.Items)

	_, err = e.rel.ListFollowing(ctx, "ghost", 1, 10)
	assert.ErrorIs(t, err, apperr.ErrUnknownUser)

	chunks, err := e.rel.FollowingCursor("alice", 2).Collect(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, page.Items, chunks[0])
	assert.Equal(t, page2.Items, chunks[1])

	assert.Positive(t, e.profiles.Counters().Hits, "second listing served from the profile cache")
}

// Racing follows and blocks on the same pairs must never leave a follow edge
// alongside a block edge between the same two users.
func TestConcurrentFollowBlockPreservesInvariant(t *testing.T) {
	const pairs = 6
	var ids []string
	for i := 0; i < pairs; i++ {
		ids = append(ids, fmt.Sprintf("a%d", i), fmt.Sprintf("b%d", i))
	}
	e := newEnv(t, ids...)

	for i := 0; i < pairs; i++ {
		require.NoError(t, e.rel.Follow(ctx, fmt.Sprintf("a%d", i), fmt.Sprintf("b%d", i)))
	}

	var wg sync.WaitGroup
	for i := 0; i < pairs; i++ {
		a, b := fmt.Sprintf("a%d", i), fmt.Sprintf("b%d", i)
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = e.rel.Block(ctx, b, a)
		}()
		go func() {
			defer wg.Done()
			_ = e.rel.Follow(ctx, b, a)
		}()
	}
	wg.Wait()

	var violations int64
	err := e.db.Raw(`SELECT COUNT(*) FROM follows f JOIN blocks b
		ON (b.blocker_id = f.follower_id AND b.blocked_id = f.followee_id)
		OR (b.blocker_id = f.followee_id AND b.blocked_id = f.follower_id)`).Scan(&violations).Error
	require.NoError(t, err)
	assert.Zero(t, violations)
}
