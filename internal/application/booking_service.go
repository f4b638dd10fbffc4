package application

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/internal/domain/catalog"
	"github.com/shareit/service-booking/pkg/domain"
	"github.com/shareit/service-booking/pkg/tracing"
)

const otelScopeName = "application"

// CreateBookingRequest holds the data needed to create a new booking.
type CreateBookingRequest struct {
	ItemID int64      `json:"itemId" binding:"required,gt=0"`
	Start  *time.Time `json:"start" binding:"required"`
	End    *time.Time `json:"end" binding:"required,after_start"`
}

// BookingDTO is the response representation of a booking.
type BookingDTO struct {
	ID        int64     `json:"id"`
	ItemID    int64     `json:"itemId"`
	BookerID  int64     `json:"bookerId"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	Version   int64     `json:"version"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingStatsDTO holds booking counts for the admin dashboard.
type BookingStatsDTO struct {
	TotalBookings int64            `json:"totalBookings"`
	ByStatus      map[string]int64 `json:"byStatus"`
}

// BookingService is the application service orchestrating the booking lifecycle.
type BookingService struct {
	store    bookingDomain.Store
	tx       bookingDomain.Transactor
	users    catalog.UserDirectory
	items    catalog.ItemDirectory
	producer EventPublisher
	topic    string
	otel     tracing.Otel
	logger   *zap.Logger
	now      func() time.Time
}

// NewBookingService creates a new BookingService.
func NewBookingService(
	store bookingDomain.Store,
	tx bookingDomain.Transactor,
	users catalog.UserDirectory,
	items catalog.ItemDirectory,
	producer EventPublisher,
	topic string,
	ot tracing.Otel,
	logger *zap.Logger,
) *BookingService {
	return &BookingService{
		store:    store,
		tx:       tx,
		users:    users,
		items:    items,
		producer: producer,
		topic:    topic,
		otel:     ot,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// CreateBooking places a WAITING booking on an available item owned by someone else.
func (s *BookingService) CreateBooking(ctx context.Context, bookerID int64, req CreateBookingRequest) (result *BookingDTO, err error) {
	ctx, scope := s.otel.NewScope(ctx, otelScopeName, "booking.CreateBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	scope.SetAttributes(map[string]any{"booker.id": bookerID, "item.id": req.ItemID})

	now := s.now()
	var (
		bk      *bookingDomain.Booking
		ownerID int64
	)
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.users.Get(ctx, bookerID); err != nil {
			return err
		}

		item, err := s.items.GetForUpdate(ctx, req.ItemID)
		if err != nil {
			return err
		}
		if !item.Available {
			return domain.NewValidationError(fmt.Sprintf("item %d is not available for booking", item.ID))
		}
		if err := bookingDomain.ValidateInterval(req.Start, req.End); err != nil {
			return err
		}
		// Owners cannot book their own items; report it as absence.
		if item.IsOwnedBy(bookerID) {
			return domain.NewNotFoundError("Item", item.ID)
		}

		bk, err = bookingDomain.NewBooking(item.ID, bookerID, req.Start, req.End, now)
		if err != nil {
			return err
		}
		ownerID = item.OwnerID
		return s.store.Save(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking created",
		zap.Int64("booking_id", bk.ID()),
		zap.Int64("item_id", bk.ItemID()),
		zap.Int64("booker_id", bookerID),
	)
	publishEvent(ctx, scope, s.producer, s.logger, s.topic, EventBookingCreated,
		fmt.Sprint(bk.ID()), newBookingEvent(bk, ownerID, now))

	dto := toBookingDTO(bk)
	return &dto, nil
}

// UpdateBookingStatus applies the owner's decision. approve must be set.
func (s *BookingService) UpdateBookingStatus(ctx context.Context, ownerID, bookingID int64, approve *bool) (result *BookingDTO, err error) {
	ctx, scope := s.otel.NewScope(ctx, otelScopeName, "booking.UpdateBookingStatus")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	scope.SetAttributes(map[string]any{"owner.id": ownerID, "booking.id": bookingID})

	if approve == nil {
		return nil, domain.NewValidationError("approved flag is required")
	}

	now := s.now()
	var bk *bookingDomain.Booking
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		bk, err = s.store.FindByIDForUpdate(ctx, bookingID)
		if err != nil {
			return err
		}
		if bk == nil {
			return domain.NewNotFoundError("Booking", bookingID)
		}

		item, err := s.items.Get(ctx, bk.ItemID())
		if err != nil {
			return err
		}
		if !item.IsOwnedBy(ownerID) {
			return domain.NewNotFoundError("Booking", bookingID)
		}

		if err := bk.Decide(*approve, now); err != nil {
			return err
		}
		bk.IncrementVersion()
		return s.store.Save(ctx, bk)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("booking status updated",
		zap.Int64("booking_id", bk.ID()),
		zap.String("status", bk.Status().String()),
		zap.Int64("owner_id", ownerID),
	)
	publishEvent(ctx, scope, s.producer, s.logger, s.topic, decisionEventType(bk.Status()),
		fmt.Sprint(bk.ID()), newBookingEvent(bk, ownerID, now))

	dto := toBookingDTO(bk)
	return &dto, nil
}

// GetBooking returns a booking visible to its booker or the item's owner.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID int64) (result *bookingDomain.Summary, err error) {
	ctx, scope := s.otel.NewScope(ctx, otelScopeName, "booking.GetBooking")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	scope.SetAttributes(map[string]any{"user.id": userID, "booking.id": bookingID})

	bk, err := s.store.FindByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if bk == nil {
		return nil, domain.NewNotFoundError("Booking", bookingID)
	}

	if !bk.IsBookedBy(userID) {
		item, err := s.items.Get(ctx, bk.ItemID())
		if err != nil {
			return nil, err
		}
		if !item.IsOwnedBy(userID) {
			return nil, domain.NewNotFoundError("Booking", bookingID)
		}
	}

	summary := bk.Summary()
	return &summary, nil
}

// GetBookingStats returns aggregate booking counts.
func (s *BookingService) GetBookingStats(ctx context.Context) (*BookingStatsDTO, error) {
	counts, err := s.store.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get booking stats: %w", err)
	}

	stats := &BookingStatsDTO{ByStatus: make(map[string]int64, len(counts))}
	for status, c := range counts {
		stats.ByStatus[status.String()] = c
		stats.TotalBookings += c
	}
	return stats, nil
}

func toBookingDTO(bk *bookingDomain.Booking) BookingDTO {
	return BookingDTO{
		ID:        bk.ID(),
		ItemID:    bk.ItemID(),
		BookerID:  bk.BookerID(),
		Start:     bk.Start(),
		End:       bk.End(),
		Status:    bk.Status().String(),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}
