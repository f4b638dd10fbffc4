package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/internal/domain/catalog"
	commentDomain "github.com/shareit/service-booking/internal/domain/comment"
	"github.com/shareit/service-booking/pkg/domain"
	"github.com/shareit/service-booking/pkg/tracing"
)

// AddCommentRequest holds the data needed to comment on an item.
type AddCommentRequest struct {
	Text string `json:"text" binding:"required"`
}

// ItemDTO is an item enriched with its booking window and comments.
type ItemDTO struct {
	ID          int64                  `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	Available   bool                   `json:"available"`
	OwnerID     int64                  `json:"ownerId"`
	LastBooking *bookingDomain.Summary `json:"lastBooking"`
	NextBooking *bookingDomain.Summary `json:"nextBooking"`
	Comments    []commentDomain.View   `json:"comments"`
}

// ItemService builds item views and accepts comments from past bookers.
type ItemService struct {
	availability *AvailabilityService
	store        bookingDomain.Store
	users        catalog.UserDirectory
	items        catalog.ItemDirectory
	comments     commentDomain.Repository
	otel         tracing.Otel
	logger       *zap.Logger
	now          func() time.Time
}

// NewItemService creates a new ItemService.
func NewItemService(
	availability *AvailabilityService,
	store bookingDomain.Store,
	users catalog.UserDirectory,
	items catalog.ItemDirectory,
	comments commentDomain.Repository,
	ot tracing.Otel,
	logger *zap.Logger,
) *ItemService {
	return &ItemService{
		availability: availability,
		store:        store,
		users:        users,
		items:        items,
		comments:     comments,
		otel:         ot,
		logger:       logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// GetItem returns the item view as seen by viewerID.
func (s *ItemService) GetItem(ctx context.Context, viewerID, itemID int64) (result *ItemDTO, err error) {
	ctx, scope := s.otel.NewScope(ctx, otelScopeName, "item.GetItem")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	scope.SetAttributes(map[string]any{"viewer.id": viewerID, "item.id": itemID})

	if _, err := s.users.Get(ctx, viewerID); err != nil {
		return nil, err
	}
	item, err := s.items.Get(ctx, itemID)
	if err != nil {
		return nil, err
	}
	return s.view(ctx, item, viewerID, s.now())
}

// ListOwnerItems returns the owner's items ordered by id. A nil size returns
// every item from the offset on.
func (s *ItemService) ListOwnerItems(ctx context.Context, ownerID int64, from int, size *int) (result []ItemDTO, err error) {
	ctx, scope := s.otel.NewScope(ctx, otelScopeName, "item.ListOwnerItems")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	scope.SetAttributes(map[string]any{"owner.id": ownerID, "from": from})

	if err := ValidatePagination(from, size); err != nil {
		return nil, err
	}
	if _, err := s.users.Get(ctx, ownerID); err != nil {
		return nil, err
	}

	var items []*catalog.Item
	offset := from
	for {
		limit := DefaultPageSize
		if size != nil {
			limit = min(limit, *size-len(items))
		}
		if limit <= 0 {
			break
		}
		page, total, err := s.items.ListByOwner(ctx, ownerID, offset, limit)
		if err != nil {
			return nil, err
		}
		items = append(items, page...)
		offset += len(page)
		if len(page) == 0 || int64(offset) >= total {
			break
		}
	}

	now := s.now()
	result = make([]ItemDTO, 0, len(items))
	for _, item := range items {
		dto, err := s.view(ctx, item, ownerID, now)
		if err != nil {
			return nil, err
		}
		result = append(result, *dto)
	}
	return result, nil
}

// AddComment stores a comment from a user whose approved booking of the item
// has already started.
func (s *ItemService) AddComment(ctx context.Context, authorID, itemID int64, req AddCommentRequest) (result *commentDomain.View, err error) {
	ctx, scope := s.otel.NewScope(ctx, otelScopeName, "item.AddComment")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()
	scope.SetAttributes(map[string]any{"author.id": authorID, "item.id": itemID})

	author, err := s.users.Get(ctx, authorID)
	if err != nil {
		return nil, err
	}
	if _, err := s.items.Get(ctx, itemID); err != nil {
		return nil, err
	}

	now := s.now()
	c, err := commentDomain.NewComment(itemID, authorID, req.Text, now)
	if err != nil {
		return nil, err
	}

	booked, err := s.store.HasApprovedStartedBefore(ctx, authorID, itemID, now)
	if err != nil {
		return nil, err
	}
	if !booked {
		return nil, domain.NewValidationError("only users who have booked the item can comment on it")
	}

	if err := s.comments.Save(ctx, c); err != nil {
		return nil, err
	}

	s.logger.Info("comment added",
		zap.Int64("comment_id", c.ID()),
		zap.Int64("item_id", itemID),
		zap.Int64("author_id", authorID),
	)
	return &commentDomain.View{
		ID:         c.ID(),
		Text:       c.Text(),
		AuthorName: author.Name,
		Created:    c.CreatedAt(),
	}, nil
}

func (s *ItemService) view(ctx context.Context, item *catalog.Item, viewerID int64, now time.Time) (*ItemDTO, error) {
	last, next, err := s.availability.lastAndNext(ctx, item, viewerID, now)
	if err != nil {
		return nil, err
	}
	comments, err := s.comments.ListViewsByItem(ctx, item.ID)
	if err != nil {
		return nil, err
	}
	if comments == nil {
		comments = []commentDomain.View{}
	}
	return &ItemDTO{
		ID:          item.ID,
		Name:        item.Name,
		Description: item.Description,
		Available:   item.Available,
		OwnerID:     item.OwnerID,
		LastBooking: last,
		NextBooking: next,
		Comments:    comments,
	}, nil
}
