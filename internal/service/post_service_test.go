package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/d60-Lab/minitwit/internal/apperr"
)

func TestCreatePost_ContentBoundary(t *testing.T) {
	e := newEnv(t, "carol")

	_, err := e.posts.Create(ctx, "carol", "   ")
	assert.ErrorIs(t, err, apperr.ErrEmptyContent)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	exact := strings.Repeat("é", MaxContentLength)
	p, err := e.posts.Create(ctx, "carol", "  "+exact+"\n")
	require.NoError(t, err)
	assert.Equal(t, exact, p.Content)
	assert.NotZero(t, p.ID)
	assert.False(t, p.CreatedAt.IsZero())

	_, err = e.posts.Create(ctx, "carol", exact+"x")
	assert.ErrorIs(t, err, apperr.ErrContentTooLong)

	_, err = e.posts.Create(ctx, "ghost", "hello")
	assert.ErrorIs(t, err, apperr.ErrUnknownUser)
}

func TestDeletePost(t *testing.T) {
	e := newEnv(t, "alice", "bob")
	p, err := e.posts.Create(ctx, "bob", "mine")
	require.NoError(t, err)

	err = e.posts.Delete(ctx, p.ID, "alice")
	assert.ErrorIs(t, err, apperr.ErrNotOwner)
	assert.Equal(t, apperr.KindAuthorization, apperr.KindOf(err))

	require.NoError(t, e.posts.Delete(ctx, p.ID, "bob"))

	err = e.posts.Delete(ctx, p.ID, "bob")
	assert.ErrorIs(t, err, apperr.ErrPostNotFound)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, apperr.Code("NotFound"), apperr.CodeOf(err))
}

func TestListByAuthor(t *testing.T) {
	e := newEnv(t, "bob")
	var ids []uint64
	for i := 0; i < 7; i++ {
		p, err := e.posts.Create(ctx, "bob", strings.Repeat("x", i+1))
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	chunks, err := e.posts.AuthorCursor("bob", 3).Collect(ctx)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	var got []uint64
	for _, c := range chunks {
		for _, p := range c {
			got = append(got, p.ID)
		}
	}
	// newest first; equal timestamps fall back to id DESC
	want := make([]uint64, len(ids))
	for i := range ids {
		want[i] = ids[len(ids)-1-i]
	}
	assert.Equal(t, want, got)

	page, err := e.posts.ListByAuthor(ctx, "bob", 3, 3)
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, ids[0], page.Items[0].ID)
	assert.False(t, page.HasMore)

	_, err = e.posts.ListByAuthor(ctx, "ghost", 1, 3)
	assert.ErrorIs(t, err, apperr.ErrUnknownUser)
}
