package client

import (
	"context"
	"iter"
)

// Page is one page of a collection listing.
//
// The API reports Count only when the request asked for it (count=true) and
// Next only when more records follow.
type Page[T any] struct {
	Items  []T    `json:"items"`
	Count  *int   `json:"count,omitempty"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
	Next   string `json:"next,omitempty"`
}

// PageFetcher fetches the page starting at offset.
type PageFetcher[T any] func(ctx context.Context, offset int) (*Page[T], error)

// hasMore reports whether another page follows p, which was requested at
// offset with the given page size (0 when the server default applied).
func (p *Page[T]) hasMore(offset, size int) bool {
	n := len(p.Items)
	if n == 0 {
		return false
	}
	limit := size
	if p.Limit > 0 {
		limit = p.Limit
	}
	if limit > 0 && n < limit {
		return false
	}
	if p.Count != nil {
		return offset+n < *p.Count
	}
	if p.Next != "" {
		return true
	}
	// Without a known page size a full page cannot be told apart from the last one.
	return limit > 0
}

// Paginate returns an iterator over every item, fetching pages as needed.
// size is the page size the fetcher requests, or 0 for the server default.
//
// Iteration ends on an empty page, a page shorter than the page size, or
// once offset+len reaches the reported count.
func Paginate[T any](ctx context.Context, start, size int, fetch PageFetcher[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		var zero T
		offset := start

		for {
			if err := ctx.Err(); err != nil {
				yield(zero, err)
				return
			}

			page, err := fetch(ctx, offset)
			if err != nil {
				yield(zero, err)
				return
			}

			for _, item := range page.Items {
				if !yield(item, nil) {
					return
				}
			}

			if !page.hasMore(offset, size) {
				return
			}
			offset += len(page.Items)
		}
	}
}

// CollectAll fetches all pages and returns all items.
func CollectAll[T any](seq iter.Seq2[T, error]) ([]T, error) {
	var result []T
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		result = append(result, item)
	}
	return result, nil
}

// CollectN fetches up to n items across pages.
func CollectN[T any](seq iter.Seq2[T, error], n int) ([]T, error) {
	var result []T
	if n <= 0 {
		return result, nil
	}
	for item, err := range seq {
		if err != nil {
			return nil, err
		}
		result = append(result, item)
		if len(result) >= n {
			break
		}
	}
	return result, nil
}
