// Package pagination provides the chunking shared by every list operation:
// in-memory chunks, offset/limit pages and a lazy cursor over a fetcher.
package pagination

import (
	"context"
	"iter"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Normalize clamps page to >= 1 and size to [1, MaxPageSize]; size < 1 falls
// back to DefaultPageSize.
func Normalize(page, size int) (int, int) {
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}
	return page, size
}

// Offset 计算页偏移（输入需已 Normalize）
func Offset(page, size int) int { return (page - 1) * size }

// Fetcher loads up to limit items starting at offset, in a stable order.
type Fetcher[T any] func(ctx context.Context, offset, limit int) ([]T, error)

// Page 一页结果
type Page[T any] struct {
	Items    []T  `json:"items"`
	Page     int  `json:"page"`
	PageSize int  `json:"page_size"`
	HasMore  bool `json:"has_more"`
}

// FetchPage loads one page through fetch, asking for one extra row to learn
// whether another page follows.
func FetchPage[T any](ctx context.Context, fetch Fetcher[T], page, size int) (Page[T], error) {
	page, size = Normalize(page, size)
	rows, err := fetch(ctx, Offset(page, size), size+1)
	if err != nil {
		return Page[T]{}, err
	}
	return NewPage(rows, page, size), nil
}

// NewPage builds a page from rows fetched with limit size+1.
func NewPage[T any](rows []T, page, size int) Page[T] {
	p := Page[T]{Items: rows, Page: page, PageSize: size}
	if len(rows) > size {
		p.Items = rows[:size:size]
		p.HasMore = true
	}
	if p.Items == nil {
		p.Items = []T{}
	}
	return p
}

// Chunks splits items into consecutive chunks of size; the last one may be
// shorter. The sequence can be ranged over any number of times.
func Chunks[T any](items []T, size int) iter.Seq[[]T] {
	if size < 1 {
		size = 1
	}
	return func(yield func([]T) bool) {
		for start := 0; start < len(items); start += size {
			end := min(start+size, len(items))
			if !yield(items[start:end:end]) {
				return
			}
		}
	}
}
