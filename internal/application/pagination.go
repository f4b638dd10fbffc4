package application

import (
	"context"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/pkg/domain"
)

// DefaultPageSize is the store page size used when draining a listing.
const DefaultPageSize = 20

// ValidatePagination requires from >= 0 and, when given, size >= 1.
func ValidatePagination(from int, size *int) error {
	if from < 0 {
		return domain.NewValidationError("from must not be negative")
	}
	if size != nil && *size < 1 {
		return domain.NewValidationError("size must be positive")
	}
	return nil
}

type pageFetcher func(ctx context.Context, req bookingDomain.PageRequest) (bookingDomain.Page, error)

// pageIterator walks a store listing page by page starting at a row offset.
// With a limit it stops once limit rows were yielded; without one it drains
// the listing. Either way it never reads past the total reported by the
// first page.
type pageIterator struct {
	fetch    pageFetcher
	offset   int
	pageSize int
	limit    int // negative means unbounded
	yielded  int
	total    int64
	done     bool
}

func newPageIterator(fetch pageFetcher, from int, size *int, pageSize int) *pageIterator {
	limit := -1
	if size != nil {
		limit = *size
	}
	return &pageIterator{
		fetch:    fetch,
		offset:   from,
		pageSize: pageSize,
		limit:    limit,
		total:    -1,
	}
}

// Next returns the next non-empty page, or ok=false once the listing is exhausted.
func (it *pageIterator) Next(ctx context.Context) (items []*bookingDomain.Booking, ok bool, err error) {
	if it.done {
		return nil, false, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	want := it.pageSize
	if it.limit >= 0 {
		if remaining := it.limit - it.yielded; remaining < want {
			want = remaining
		}
	}
	if want <= 0 || (it.total >= 0 && int64(it.offset) >= it.total) {
		it.done = true
		return nil, false, nil
	}

	page, err := it.fetch(ctx, bookingDomain.PageRequest{Offset: it.offset, Limit: want})
	if err != nil {
		return nil, false, err
	}
	if it.total < 0 {
		it.total = page.Total
	}

	items = page.Items
	if len(items) > want {
		items = items[:want]
	}
	it.offset += len(items)
	it.yielded += len(items)
	if !page.HasMore || len(items) == 0 {
		it.done = true
	}
	if len(items) == 0 {
		return nil, false, nil
	}
	return items, true, nil
}

// collect drains it into a single slice.
func (it *pageIterator) collect(ctx context.Context) ([]*bookingDomain.Booking, error) {
	var out []*bookingDomain.Booking
	for {
		items, ok, err := it.Next(ctx)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, items...)
	}
}
