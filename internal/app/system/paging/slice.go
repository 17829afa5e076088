package paging

import "context"

// SliceSequence is an in-memory Sequence over an already-ordered slice.
type SliceSequence[T any] struct {
	items []T
}

// FromSlice wraps items (already in display order) as a Sequence.
func FromSlice[T any](items []T) SliceSequence[T] {
	return SliceSequence[T]{items: items}
}

// Empty returns a Sequence with no items.
func Empty[T any]() SliceSequence[T] {
	return SliceSequence[T]{}
}

func (s SliceSequence[T]) Count(ctx context.Context) (int64, error) {
	return int64(len(s.items)), nil
}

func (s SliceSequence[T]) Slice(ctx context.Context, offset, limit int64) ([]T, error) {
	n := int64(len(s.items))
	if offset >= n || limit <= 0 {
		return []T{}, nil
	}
	end := offset + limit
	if end > n {
		end = n
	}
	out := make([]T, end-offset)
	copy(out, s.items[offset:end])
	return out, nil
}
