package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/pkg/domain"
)

// BookingModel is the GORM model for the bookings table.
type BookingModel struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	ItemID    int64     `gorm:"not null;index:idx_bookings_item_start,priority:1;index:idx_bookings_item_end,priority:1"`
	BookerID  int64     `gorm:"not null;index:idx_bookings_booker_start,priority:1"`
	StartAt   time.Time `gorm:"column:start_at;type:timestamptz;not null;index:idx_bookings_item_start,priority:2;index:idx_bookings_booker_start,priority:2"`
	EndAt     time.Time `gorm:"column:end_at;type:timestamptz;not null;index:idx_bookings_item_end,priority:2"`
	Status    string    `gorm:"not null;size:16;index"`
	Version   int64     `gorm:"not null;default:1"`
	CreatedAt time.Time `gorm:"type:timestamptz;not null"`
	UpdatedAt time.Time `gorm:"type:timestamptz;not null"`
}

// TableName returns the table name for the GORM model.
func (BookingModel) TableName() string {
	return "bookings"
}

const listOrder = "bookings.start_at DESC, bookings.id DESC"

// GormBookingRepository is the GORM-based implementation of booking.Store.
type GormBookingRepository struct {
	db *gorm.DB
}

// NewGormBookingRepository creates a new GormBookingRepository.
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// Save inserts a new booking or updates an existing one with optimistic locking.
func (r *GormBookingRepository) Save(ctx context.Context, bk *bookingDomain.Booking) error {
	model := toBookingModel(bk)

	if bk.ID() == 0 {
		if err := conn(ctx, r.db).Create(model).Error; err != nil {
			return fmt.Errorf("failed to save booking: %w", err)
		}
		bk.AssignID(model.ID)
		return nil
	}

	// The aggregate's version was incremented before Save, so the stored row
	// must still carry the previous one.
	expectedVersion := bk.Version() - 1
	result := conn(ctx, r.db).
		Model(&BookingModel{}).
		Where("id = ? AND version = ?", model.ID, expectedVersion).
		Updates(map[string]any{
			"status":     model.Status,
			"start_at":   model.StartAt,
			"end_at":     model.EndAt,
			"version":    model.Version,
			"updated_at": model.UpdatedAt,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update booking: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return domain.NewConflictError("booking was modified by another transaction")
	}
	return nil
}

// FindByID retrieves a booking by id, returning nil when it does not exist.
func (r *GormBookingRepository) FindByID(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	return r.findOne(conn(ctx, r.db).Where("id = ?", id))
}

// FindByIDForUpdate retrieves a booking by id and locks its row.
func (r *GormBookingRepository) FindByIDForUpdate(ctx context.Context, id int64) (*bookingDomain.Booking, error) {
	return r.findOne(conn(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id))
}

// FindByBooker lists bookings placed by bookerID.
func (r *GormBookingRepository) FindByBooker(ctx context.Context, bookerID int64, f bookingDomain.Filter, page bookingDomain.PageRequest) (bookingDomain.Page, error) {
	scope := func() *gorm.DB {
		return applyFilter(conn(ctx, r.db).Model(&BookingModel{}).Where("bookings.booker_id = ?", bookerID), f)
	}
	return r.findPage(scope, page, "booker")
}

// FindByOwner lists bookings on items owned by ownerID, resolved through items.owner_id.
func (r *GormBookingRepository) FindByOwner(ctx context.Context, ownerID int64, f bookingDomain.Filter, page bookingDomain.PageRequest) (bookingDomain.Page, error) {
	scope := func() *gorm.DB {
		return applyFilter(conn(ctx, r.db).Model(&BookingModel{}).
			Joins("JOIN items ON items.id = bookings.item_id").
			Where("items.owner_id = ?", ownerID), f)
	}
	return r.findPage(scope, page, "owner")
}

// FindLastEndedBefore returns the item's booking with the latest end before at.
func (r *GormBookingRepository) FindLastEndedBefore(ctx context.Context, itemID int64, at time.Time) (*bookingDomain.Booking, error) {
	return r.findOne(conn(ctx, r.db).
		Where("item_id = ? AND end_at < ?", itemID, at).
		Order("end_at DESC, id DESC"))
}

// FindFirstStartedAfter returns the item's booking with the earliest start after at.
func (r *GormBookingRepository) FindFirstStartedAfter(ctx context.Context, itemID int64, at time.Time) (*bookingDomain.Booking, error) {
	return r.findOne(conn(ctx, r.db).
		Where("item_id = ? AND start_at > ?", itemID, at).
		Order("start_at ASC, id ASC"))
}

// HasApprovedStartedBefore reports whether bookerID has an approved booking of itemID started before at.
func (r *GormBookingRepository) HasApprovedStartedBefore(ctx context.Context, bookerID, itemID int64, at time.Time) (bool, error) {
	var count int64
	if err := conn(ctx, r.db).Model(&BookingModel{}).
		Where("booker_id = ? AND item_id = ? AND status = ? AND start_at < ?",
			bookerID, itemID, string(bookingDomain.StatusApproved), at).
		Limit(1).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check approved bookings: %w", err)
	}
	return count > 0, nil
}

// CountByStatus returns booking counts grouped by status.
func (r *GormBookingRepository) CountByStatus(ctx context.Context) (map[bookingDomain.BookingStatus]int64, error) {
	type statusCount struct {
		Status string
		Count  int64
	}
	var results []statusCount
	if err := conn(ctx, r.db).Model(&BookingModel{}).
		Select("status, count(*) as count").
		Group("status").
		Find(&results).Error; err != nil {
		return nil, fmt.Errorf("failed to count by status: %w", err)
	}

	counts := make(map[bookingDomain.BookingStatus]int64, len(results))
	for _, sc := range results {
		counts[bookingDomain.BookingStatus(sc.Status)] = sc.Count
	}
	return counts, nil
}

func (r *GormBookingRepository) findOne(q *gorm.DB) (*bookingDomain.Booking, error) {
	var models []BookingModel
	if err := q.Limit(1).Find(&models).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find booking: %w", err)
	}
	if len(models) == 0 {
		return nil, nil
	}
	return toDomainBooking(&models[0])
}

func (r *GormBookingRepository) findPage(scope func() *gorm.DB, page bookingDomain.PageRequest, role string) (bookingDomain.Page, error) {
	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return bookingDomain.Page{}, fmt.Errorf("failed to count %s bookings: %w", role, err)
	}
	if total == 0 || int64(page.Offset) >= total {
		return bookingDomain.NewPage(nil, total, page), nil
	}

	var models []BookingModel
	if err := scope().
		Select("bookings.*").
		Order(listOrder).
		Offset(page.Offset).
		Limit(page.Limit).
		Find(&models).Error; err != nil {
		return bookingDomain.Page{}, fmt.Errorf("failed to find %s bookings: %w", role, err)
	}

	bookings := make([]*bookingDomain.Booking, len(models))
	for i := range models {
		bk, err := toDomainBooking(&models[i])
		if err != nil {
			return bookingDomain.Page{}, err
		}
		bookings[i] = bk
	}
	return bookingDomain.NewPage(bookings, total, page), nil
}

func applyFilter(q *gorm.DB, f bookingDomain.Filter) *gorm.DB {
	switch f.Kind {
	case bookingDomain.FilterActiveAt:
		return q.Where("bookings.start_at < ? AND bookings.end_at > ?", f.At, f.At)
	case bookingDomain.FilterEndedBefore:
		return q.Where("bookings.end_at < ?", f.At)
	case bookingDomain.FilterStartedAfter:
		return q.Where("bookings.start_at > ?", f.At)
	case bookingDomain.FilterStatus:
		return q.Where("bookings.status = ?", string(f.Status))
	default:
		return q
	}
}

// --- Conversion Helpers ---

func toBookingModel(bk *bookingDomain.Booking) *BookingModel {
	return &BookingModel{
		ID:        bk.ID(),
		ItemID:    bk.ItemID(),
		BookerID:  bk.BookerID(),
		StartAt:   bk.Start(),
		EndAt:     bk.End(),
		Status:    string(bk.Status()),
		Version:   bk.Version(),
		CreatedAt: bk.CreatedAt(),
		UpdatedAt: bk.UpdatedAt(),
	}
}

func toDomainBooking(m *BookingModel) (*bookingDomain.Booking, error) {
	status, err := bookingDomain.ParseBookingStatus(m.Status)
	if err != nil {
		return nil, err
	}
	return bookingDomain.ReconstructBooking(
		m.ID,
		m.ItemID,
		m.BookerID,
		m.StartAt.UTC(),
		m.EndAt.UTC(),
		status,
		m.Version,
		m.CreatedAt.UTC(),
		m.UpdatedAt.UTC(),
	), nil
}
