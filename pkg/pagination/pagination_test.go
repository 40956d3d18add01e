package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

func sliceFetcher(items []int, calls *int) Fetcher[int] {
	return func(_ context.Context, offset, limit int) ([]int, error) {
		if calls != nil {
			*calls++
		}
		if offset >= len(items) {
			return nil, nil
		}
		end := min(offset+limit, len(items))
		return append([]int(nil), items[offset:end]...), nil
	}
}

func ceilDiv(a, b int) int { return (a + b - 1) / b }

func TestChunks_Completeness(t *testing.T) {
	for l := 0; l <= 40; l++ {
		for n := 1; n <= 9; n++ {
			items := seq(l)
			var chunks [][]int
			var flat []int
			for c := range Chunks(items, n) {
				require.NotEmpty(t, c)
				require.LessOrEqual(t, len(c), n)
				chunks = append(chunks, c)
				flat = append(flat, c...)
			}
			require.Len(t, chunks, ceilDiv(l, n), "L=%d n=%d", l, n)
			if l == 0 {
				require.Empty(t, flat)
			} else {
				require.Equal(t, items, flat, "L=%d n=%d", l, n)
			}
		}
	}
}

func TestChunks_Restartable(t *testing.T) {
	s := Chunks(seq(7), 3)
	var first, second [][]int
	for c := range s {
		first = append(first, c)
	}
	for c := range s {
		second = append(second, c)
	}
	assert.Equal(t, first, second)
	assert.Equal(t, [][]int{{0, 1, 2}, {3, 4, 5}, {6}}, first)
}

func TestChunks_EarlyBreakAndZeroSize(t *testing.T) {
	var got [][]int
	for c := range Chunks(seq(10), 0) {
		got = append(got, c)
		if len(got) == 2 {
			break
		}
	}
	assert.Equal(t, [][]int{{0}, {1}}, got)
}

func TestChunks_DoNotAliasTail(t *testing.T) {
	items := seq(4)
	var chunks [][]int
	for c := range Chunks(items, 2) {
		chunks = append(chunks, c)
	}
	chunks[0] = append(chunks[0], 99)
	assert.Equal(t, 2, items[2])
}

func TestCursor_Completeness(t *testing.T) {
	ctx := context.Background()
	for l := 0; l <= 40; l++ {
		for n := 1; n <= 9; n++ {
			items := seq(l)
			cur := NewCursor(sliceFetcher(items, nil), n)
			chunks, err := cur.Collect(ctx)
			require.NoError(t, err)
			require.Len(t, chunks, ceilDiv(l, n), "L=%d n=%d", l, n)
			var flat []int
			for _, c := range chunks {
				require.NotEmpty(t, c)
				flat = append(flat, c...)
			}
			if l > 0 {
				require.Equal(t, items, flat, "L=%d n=%d", l, n)
			}
		}
	}
}

func TestCursor_ExactMultipleNeedsNoTrailingFetch(t *testing.T) {
	calls := 0
	cur := NewCursor(sliceFetcher(seq(6), &calls), 3)
	chunks, err := cur.Collect(context.Background())
	require.NoError(t, err)
	assert.Len(t, chunks, 2)
	assert.Equal(t, 2, calls)

	_, ok := cur.Next(context.Background())
	assert.False(t, ok)
	assert.Equal(t, 2, calls)
}

func TestCursor_Reset(t *testing.T) {
	ctx := context.Background()
	cur := NewCursor(sliceFetcher(seq(5), nil), 2)
	first, err := cur.Collect(ctx)
	require.NoError(t, err)

	cur.Reset()
	second, err := cur.Collect(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestCursor_Error(t *testing.T) {
	boom := errors.New("boom")
	cur := NewCursor(func(context.Context, int, int) ([]int, error) { return nil, boom }, 3)
	_, ok := cur.Next(context.Background())
	assert.False(t, ok)
	assert.ErrorIs(t, cur.Err(), boom)

	cur.Reset()
	assert.NoError(t, cur.Err())
}

func TestFetchPage(t *testing.T) {
	ctx := context.Background()
	fetch := sliceFetcher(seq(12), nil)

	p1, err := FetchPage(ctx, fetch, 1, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{0, 1, 2, 3, 4}, p1.Items)
	assert.True(t, p1.HasMore)

	p3, err := FetchPage(ctx, fetch, 3, 5)
	require.NoError(t, err)
	assert.Equal(t, []int{10, 11}, p3.Items)
	assert.False(t, p3.HasMore)

	p9, err := FetchPage(ctx, fetch, 9, 5)
	require.NoError(t, err)
	assert.Empty(t, p9.Items)
	assert.NotNil(t, p9.Items)
}

func TestPagesAgreeWithCursor(t *testing.T) {
	ctx := context.Background()
	for l := 0; l <= 23; l++ {
		fetch := sliceFetcher(seq(l), nil)
		chunks, err := NewCursor(fetch, 4).Collect(ctx)
		require.NoError(t, err)
		for i, chunk := range chunks {
			p, err := FetchPage(ctx, fetch, i+1, 4)
			require.NoError(t, err)
			assert.Equal(t, chunk, p.Items)
			assert.Equal(t, i < len(chunks)-1, p.HasMore)
		}
	}
}

func TestNormalize(t *testing.T) {
	p, s := Normalize(0, 0)
	assert.Equal(t, 1, p)
	assert.Equal(t, DefaultPageSize, s)

	_, s = Normalize(2, 1000)
	assert.Equal(t, MaxPageSize, s)
	assert.Equal(t, 20, Offset(3, 10))
}
