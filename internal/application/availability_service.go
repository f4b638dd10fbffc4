package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/internal/domain/catalog"
	"github.com/shareit/service-booking/pkg/domain"
	"github.com/shareit/service-booking/pkg/tracing"
)

// ListQuery carries the listing parameters of a booker or owner query.
type ListQuery struct {
	State string
	From  int
	Size  *int
}

// AvailabilityService answers booking listings and item last/next lookups.
type AvailabilityService struct {
	store    bookingDomain.Store
	users    catalog.UserDirectory
	items    catalog.ItemDirectory
	otel     tracing.Otel
	logger   *zap.Logger
	pageSize int
	now      func() time.Time
}

// NewAvailabilityService creates a new AvailabilityService.
func NewAvailabilityService(
	store bookingDomain.Store,
	users catalog.UserDirectory,
	items catalog.ItemDirectory,
	ot tracing.Otel,
	logger *zap.Logger,
) *AvailabilityService {
	return &AvailabilityService{
		store:    store,
		users:    users,
		items:    items,
		otel:     ot,
		logger:   logger,
		pageSize: DefaultPageSize,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ListForBooker lists bookings placed by userID in start-descending order.
func (s *AvailabilityService) ListForBooker(ctx context.Context, userID int64, q ListQuery) ([]bookingDomain.Summary, error) {
	return s.list(ctx, "booking.ListForBooker", userID, q, s.store.FindByBooker)
}

// ListForOwner lists bookings on items owned by userID in start-descending order.
func (s *AvailabilityService) ListForOwner(ctx context.Context, userID int64, q ListQuery) ([]bookingDomain.Summary, error) {
	return s.list(ctx, "booking.ListForOwner", userID, q, s.store.FindByOwner)
}

type listFinder func(ctx context.Context, userID int64, f bookingDomain.Filter, page bookingDomain.PageRequest) (bookingDomain.Page, error)

func (s *AvailabilityService) list(ctx context.Context, spanName string, userID int64, q ListQuery, find listFinder) (result []bookingDomain.Summary, err error) {
	ctx, scope := s.otel.NewScope(ctx, otelScopeName, spanName)
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	scope.SetAttributes(map[string]any{"user.id": userID, "state": q.State, "from": q.From})

	state, err := bookingDomain.ParseState(q.State)
	if err != nil {
		return nil, err
	}
	if err := ValidatePagination(q.From, q.Size); err != nil {
		return nil, err
	}
	exists, err := s.users.Exists(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.NewNotFoundError("User", userID)
	}

	filter := state.Filter(s.now())
	it := newPageIterator(func(ctx context.Context, req bookingDomain.PageRequest) (bookingDomain.Page, error) {
		return find(ctx, userID, filter, req)
	}, q.From, q.Size, s.pageSize)

	bookings, err := it.collect(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("bookings listed",
		zap.String("span", spanName),
		zap.Int64("user_id", userID),
		zap.String("state", state.String()),
		zap.Int("count", len(bookings)),
	)
	return bookingDomain.Summaries(bookings), nil
}

// LastAndNextBooking returns the item's last and next approved bookings as
// seen by viewerID. Anyone but the owner sees neither.
func (s *AvailabilityService) LastAndNextBooking(ctx context.Context, itemID, viewerID int64, now time.Time) (last, next *bookingDomain.Summary, err error) {
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, nil, err
	}
	return s.lastAndNext(ctx, item, viewerID, now)
}

func (s *AvailabilityService) lastAndNext(ctx context.Context, item *catalog.Item, viewerID int64, now time.Time) (last, next *bookingDomain.Summary, err error) {
	if !item.IsOwnedBy(viewerID) {
		return nil, nil, nil
	}

	lastBooking, err := s.store.FindLastEndedBefore(ctx, item.ID, now)
	if err != nil {
		return nil, nil, err
	}
	nextBooking, err := s.store.FindFirstStartedAfter(ctx, item.ID, now)
	if err != nil {
		return nil, nil, err
	}
	return approvedSummary(lastBooking), approvedSummary(nextBooking), nil
}

func approvedSummary(bk *bookingDomain.Booking) *bookingDomain.Summary {
	if bk == nil || bk.Status() != bookingDomain.StatusApproved {
		return nil
	}
	summary := bk.Summary()
	return &summary
}
