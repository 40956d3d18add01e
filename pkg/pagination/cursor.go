package pagination

import "context"

// Cursor walks a Fetcher chunk by chunk. It never yields an empty chunk, so a
// sequence of length L read at size n produces exactly ceil(L/n) chunks.
type Cursor[T any] struct {
	fetch  Fetcher[T]
	size   int
	offset int
	done   bool
	err    error
}

func NewCursor[T any](fetch Fetcher[T], size int) *Cursor[T] {
	if size < 1 {
		size = DefaultPageSize
	}
	return &Cursor[T]{fetch: fetch, size: size}
}

// Next returns the next chunk. ok is false once the sequence is exhausted or
// a fetch failed; check Err afterwards.
func (c *Cursor[T]) Next(ctx context.Context) (chunk []T, ok bool) {
	if c.done {
		return nil, false
	}
	rows, err := c.fetch(ctx, c.offset, c.size+1)
	if err != nil {
		c.err = err
		c.done = true
		return nil, false
	}
	if len(rows) > c.size {
		c.offset += c.size
		return rows[:c.size:c.size], true
	}
	c.done = true
	if len(rows) == 0 {
		return nil, false
	}
	c.offset += len(rows)
	return rows, true
}

func (c *Cursor[T]) Err() error { return c.err }

// Reset rewinds to the first chunk and clears any error.
func (c *Cursor[T]) Reset() {
	c.offset = 0
	c.done = false
	c.err = nil
}

// Collect drains the cursor from its current position.
func (c *Cursor[T]) Collect(ctx context.Context) ([][]T, error) {
	var out [][]T
	for {
		chunk, ok := c.Next(ctx)
		if !ok {
			return out, c.Err()
		}
		out = append(out, chunk)
	}
}
