package booking

import (
	"fmt"
	"time"

	"github.com/shareit/service-booking/pkg/domain"
)

// Booking is the aggregate root for a time-ranged reservation of an item.
type Booking struct {
	id       int64
	itemID   int64
	bookerID int64
	start    time.Time
	end      time.Time
	status   BookingStatus

	version   int64
	createdAt time.Time
	updatedAt time.Time
}

// NewBooking creates a WAITING booking after validating the interval.
// The id is assigned by the store on insert.
func NewBooking(itemID, bookerID int64, start, end *time.Time, now time.Time) (*Booking, error) {
	if itemID <= 0 {
		return nil, domain.NewValidationError("item id is required")
	}
	if bookerID <= 0 {
		return nil, domain.NewValidationError("booker id is required")
	}
	if err := ValidateInterval(start, end); err != nil {
		return nil, err
	}

	return &Booking{
		itemID:    itemID,
		bookerID:  bookerID,
		start:     start.UTC(),
		end:       end.UTC(),
		status:    StatusWaiting,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}, nil
}

// ValidateInterval requires both bounds with start strictly before end.
func ValidateInterval(start, end *time.Time) error {
	if start == nil || end == nil {
		return domain.NewValidationError("booking start and end are required")
	}
	if start.Equal(*end) {
		return domain.NewValidationError("booking start must not equal end")
	}
	if start.After(*end) {
		return domain.NewValidationError("booking start must be before end")
	}
	return nil
}

// ReconstructBooking rebuilds a Booking from persistence data (no validation).
func ReconstructBooking(
	id, itemID, bookerID int64,
	start, end time.Time,
	status BookingStatus,
	version int64,
	createdAt, updatedAt time.Time,
) *Booking {
	return &Booking{
		id:        id,
		itemID:    itemID,
		bookerID:  bookerID,
		start:     start,
		end:       end,
		status:    status,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

// Decide applies the owner's approve or reject decision.
// Repeating the current decision is a validation error.
func (b *Booking) Decide(approve bool, now time.Time) error {
	target := DecisionStatus(approve)
	if b.status == target {
		return domain.NewValidationError(fmt.Sprintf("booking %d is already %s", b.id, target))
	}
	if !b.status.CanTransitionTo(target) {
		return domain.NewValidationError(fmt.Sprintf("cannot transition booking from %s to %s", b.status, target))
	}
	b.status = target
	b.updatedAt = now
	return nil
}

// IsBookedBy reports whether userID placed this booking.
func (b *Booking) IsBookedBy(userID int64) bool {
	return b.bookerID == userID
}

// ActiveAt reports whether at falls strictly inside the booking interval.
func (b *Booking) ActiveAt(at time.Time) bool {
	return b.start.Before(at) && b.end.After(at)
}

// AssignID is called by the store after insert.
func (b *Booking) AssignID(id int64) { b.id = id }

// IncrementVersion bumps the optimistic-lock version before an update.
func (b *Booking) IncrementVersion() { b.version++ }

// Summary projects the booking into its read-only view.
func (b *Booking) Summary() Summary {
	return Summary{
		ID:       b.id,
		Start:    b.start,
		End:      b.end,
		BookerID: b.bookerID,
		Status:   b.status,
	}
}

func (b *Booking) ID() int64 { return b.id }
func (b *Booking) ItemID() int64 { return b.itemID }
func (b *Booking) BookerID() int64 { return b.bookerID }
func (b *Booking) Start() time.Time { return b.start }
func (b *Booking) End() time.Time { return b.end }
func (b *Booking) Status() BookingStatus { return b.status }
func (b *Booking) Version() int64 { return b.version }
func (b *Booking) CreatedAt() time.Time { return b.createdAt }
func (b *Booking) UpdatedAt() time.Time { return b.updatedAt }
