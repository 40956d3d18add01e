package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/minitwit/internal/apperr"
)

func TestFeed_ScenarioAB(t *testing.T) {
	e := newEnv(t, "alice", "bob")

	require.NoError(t, e.rel.Follow(ctx, "alice", "bob"))
	p, err := e.posts.Create(ctx, "bob", "hello")
	require.NoError(t, err)

	feed, err := e.feed.Feed(ctx, "alice", 1, 0)
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	entry := feed.Items[0]
	assert.Equal(t, "bob", entry.AuthorID)
	assert.Equal(t, "bob", entry.AuthorDisplayName)
	assert.Equal(t, "hello", entry.Content)
	assert.Equal(t, p.ID, entry.PostID)
	assert.True(t, p.CreatedAt.Equal(entry.CreatedAt))
	assert.Equal(t, 5, feed.PageSize, "configured default page size")

	require.NoError(t, e.rel.Block(ctx, "bob", "alice"))

	feed, err = e.feed.Feed(ctx, "alice", 1, 0)
	require.NoError(t, err)
	assert.Empty(t, feed.Items)
	assert.ErrorIs(t, e.rel.Follow(ctx, "alice", "bob"), apperr.ErrBlockedByTarget)
}

func TestFeed_ExcludesBlocksInEitherDirection(t *testing.T) {
	e := newEnv(t, "alice", "bob", "carol")
	require.NoError(t, e.rel.Follow(ctx, "alice", "bob"))
	require.NoError(t, e.rel.Follow(ctx, "alice", "carol"))
	require.NoError(t, e.rel.Follow(ctx, "carol", "alice"))
	_, err := e.posts.Create(ctx, "bob", "from bob")
	require.NoError(t, err)
	_, err = e.posts.Create(ctx, "carol", "from carol")
	require.NoError(t, err)

	// alice blocks carol, her follower; carol's posts vanish from alice's feed
	require.NoError(t, e.rel.Block(ctx, "alice", "carol"))

	feed, err := e.feed.Feed(ctx, "alice", 1, 10)
	require.NoError(t, err)
	require.Len(t, feed.Items, 1)
	assert.Equal(t, "bob", feed.Items[0].AuthorID)

	carolFeed, err := e.feed.Feed(ctx, "carol", 1, 10)
	require.NoError(t, err)
	assert.Empty(t, carolFeed.Items)
}

func TestFeed_OrderAndPaging(t *testing.T) {
	e := newEnv(t, "alice", "bob", "carol", "dave")
	require.NoError(t, e.rel.Follow(ctx, "alice", "bob"))
	require.NoError(t, e.rel.Follow(ctx, "alice", "carol"))

	var want []uint64
	for i := 0; i < 6; i++ {
		author := "bob"
		if i%2 == 1 {
			author = "carol"
		}
		p, err := e.posts.Create(ctx, author, fmt.Sprintf("post %d", i))
		require.NoError(t, err)
		want = append([]uint64{p.ID}, want...)
	}
	_, err := e.posts.Create(ctx, "dave", "not followed")
	require.NoError(t, err)
	_, err = e.posts.Create(ctx, "alice", "own post")
	require.NoError(t, err)

	var got []uint64
	for page := 1; ; page++ {
		p, err := e.feed.Feed(ctx, "alice", page, 4)
		require.NoError(t, err)
		for _, it := range p.Items {
			got = append(got, it.PostID)
		}
		if !p.HasMore {
			break
		}
	}
	assert.Equal(t, want, got)

	chunks, err := e.feed.FeedCursor("alice", 3).Collect(ctx)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
}

func TestFeed_UnknownViewer(t *testing.T) {
	e := newEnv(t)
	_, err := e.feed.Feed(ctx, "ghost", 1, 5)
	assert.ErrorIs(t, err, apperr.ErrUnknownUser)
}
