package booking

import (
	"context"
	"time"
)

// FilterKind selects the predicate a Filter applies.
type FilterKind int

const (
	FilterAny FilterKind = iota
	FilterActiveAt
	FilterEndedBefore
	FilterStartedAfter
	FilterStatus
)

// Filter narrows a booker or owner listing.
type Filter struct {
	Kind   FilterKind
	At     time.Time
	Status BookingStatus
}

// AnyTime matches every booking.
func AnyTime() Filter { return Filter{Kind: FilterAny} }

// ActiveAt matches bookings with start < at < end.
func ActiveAt(at time.Time) Filter { return Filter{Kind: FilterActiveAt, At: at} }

// EndedBefore matches bookings with end < at.
func EndedBefore(at time.Time) Filter { return Filter{Kind: FilterEndedBefore, At: at} }

// StartedAfter matches bookings with start > at.
func StartedAfter(at time.Time) Filter { return Filter{Kind: FilterStartedAfter, At: at} }

// WithStatus matches bookings in status s.
func WithStatus(s BookingStatus) Filter { return Filter{Kind: FilterStatus, Status: s} }

// Matches evaluates the filter in memory with the same semantics the store uses.
func (f Filter) Matches(b *Booking) bool {
	switch f.Kind {
	case FilterActiveAt:
		return b.ActiveAt(f.At)
	case FilterEndedBefore:
		return b.End().Before(f.At)
	case FilterStartedAfter:
		return b.Start().After(f.At)
	case FilterStatus:
		return b.Status() == f.Status
	default:
		return true
	}
}

// PageRequest addresses a slice of an ordered result by row offset.
type PageRequest struct {
	Offset int
	Limit  int
}

// Page is one slice of a listing. Total counts every matching row.
type Page struct {
	Items   []*Booking
	Total   int64
	HasMore bool
}

// NewPage computes HasMore from the request and total.
func NewPage(items []*Booking, total int64, req PageRequest) Page {
	return Page{
		Items:   items,
		Total:   total,
		HasMore: int64(req.Offset+len(items)) < total,
	}
}

// Store persists bookings. Listings are ordered by start descending.
type Store interface {
	// Save inserts a booking with id 0 and assigns its id, otherwise updates it
	// guarded by version. The caller increments the version before updating.
	Save(ctx context.Context, b *Booking) error

	// FindByID returns nil without error when the booking does not exist.
	FindByID(ctx context.Context, id int64) (*Booking, error)

	// FindByIDForUpdate is FindByID holding a row lock until the surrounding
	// transaction ends.
	FindByIDForUpdate(ctx context.Context, id int64) (*Booking, error)

	// FindByBooker lists bookings placed by bookerID.
	FindByBooker(ctx context.Context, bookerID int64, f Filter, page PageRequest) (Page, error)

	// FindByOwner lists bookings on items owned by ownerID.
	FindByOwner(ctx context.Context, ownerID int64, f Filter, page PageRequest) (Page, error)

	// FindLastEndedBefore returns the booking of itemID with the latest end before at.
	FindLastEndedBefore(ctx context.Context, itemID int64, at time.Time) (*Booking, error)

	// FindFirstStartedAfter returns the booking of itemID with the earliest start after at.
	FindFirstStartedAfter(ctx context.Context, itemID int64, at time.Time) (*Booking, error)

	// HasApprovedStartedBefore reports whether bookerID holds an approved
	// booking of itemID that started before at.
	HasApprovedStartedBefore(ctx context.Context, bookerID, itemID int64, at time.Time) (bool, error)

	// CountByStatus returns booking counts grouped by status.
	CountByStatus(ctx context.Context) (map[BookingStatus]int64, error)
}

// Transactor runs fn inside one transaction. Stores and directories called
// with the context handed to fn take part in that transaction.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}
