// internal/app/system/paging/paging.go
package paging

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of posts shown per feed page.
const PageSize = 10

// Sequence is a lazy, restartable, ordered collection.
// Nothing is read until Count or Slice is called, and both may be called
// any number of times.
type Sequence[T any] interface {
	// Count returns the total number of items in the sequence.
	Count(ctx context.Context) (int64, error)
	// Slice returns up to limit items starting at offset (0-based).
	Slice(ctx context.Context, offset, limit int64) ([]T, error)
}

// Page is one fixed-size window of a Sequence.
//
// NextPage and PreviousPage are the numbers to link to (the page itself at
// either end). StartIndex and EndIndex are the 1-based positions of the
// first and last item shown, both 0 on an empty page.
type Page[T any] struct {
	Items        []T   `json:"items"`
	Number       int   `json:"number"`
	PageSize     int   `json:"page_size"`
	NumPages     int   `json:"num_pages"`
	TotalCount   int64 `json:"total_count"`
	HasNext      bool  `json:"has_next"`
	HasPrevious  bool  `json:"has_previous"`
	NextPage     int   `json:"next_page"`
	PreviousPage int   `json:"previous_page"`
	StartIndex   int   `json:"start_index"`
	EndIndex     int   `json:"end_index"`
}

// ParsePage extracts the human-friendly "page" query parameter (1-based).
// Returns 1 if not present, not an integer, or below 1.
func ParsePage(r *http.Request) int {
	return NormalizeNumber(query.Get(r, "page"))
}

// NormalizeNumber converts a raw page number to a valid one (>= 1).
func NormalizeNumber(raw string) int {
	if raw == "" {
		return 1
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// NumPages returns how many pages count items fill at size per page.
// An empty sequence still has one (empty) page.
func NumPages(count int64, size int) int {
	if size <= 0 || count <= 0 {
		return 1
	}
	return int((count + int64(size) - 1) / int64(size))
}

// Paginate slices seq into the page with the given 1-based number.
//
// Numbers below 1 are treated as 1 and numbers past the end are clamped to
// the last page. The total count comes from a full count of the sequence.
func Paginate[T any](ctx context.Context, seq Sequence[T], size, number int) (Page[T], error) {
	if size <= 0 {
		size = PageSize
	}
	if number < 1 {
		number = 1
	}

	total, err := seq.Count(ctx)
	if err != nil {
		return Page[T]{}, err
	}

	pages := NumPages(total, size)
	if number > pages {
		number = pages
	}

	offset := int64(number-1) * int64(size)
	var items []T
	if total > 0 {
		items, err = seq.Slice(ctx, offset, int64(size))
		if err != nil {
			return Page[T]{}, err
		}
	}
	if items == nil {
		items = []T{}
	}

	p := Page[T]{
		Items:       items,
		Number:      number,
		PageSize:    size,
		NumPages:    pages,
		TotalCount:  total,
		HasNext:     number < pages,
		HasPrevious: number > 1,
	}
	p.number()
	return p, nil
}

// number fills in the link targets and display range from the page's
// position and item count.
func (p *Page[T]) number() {
	p.NextPage, p.PreviousPage = p.Number, p.Number
	if p.HasNext {
		p.NextPage++
	}
	if p.HasPrevious {
		p.PreviousPage--
	}

	p.StartIndex, p.EndIndex = 0, 0
	if n := len(p.Items); n > 0 {
		p.StartIndex = (p.Number-1)*p.PageSize + 1
		p.EndIndex = p.StartIndex + n - 1
	}
}

// WithItems returns a copy of p carrying items instead of p.Items.
// Use it to decorate a page's contents without re-counting.
func WithItems[T, U any](p Page[T], items []U) Page[U] {
	return Page[U]{
		Items:        items,
		Number:       p.Number,
		PageSize:     p.PageSize,
		NumPages:     p.NumPages,
		TotalCount:   p.TotalCount,
		HasNext:      p.HasNext,
		HasPrevious:  p.HasPrevious,
		NextPage:     p.NextPage,
		PreviousPage: p.PreviousPage,
		StartIndex:   p.StartIndex,
		EndIndex:     p.EndIndex,
	}
}

// Collect reads the whole sequence.
func Collect[T any](ctx context.Context, seq Sequence[T]) ([]T, error) {
	n, err := seq.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return []T{}, nil
	}
	return seq.Slice(ctx, 0, n)
}
