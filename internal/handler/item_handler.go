package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/shareit/service-booking/internal/application"
	commentDomain "github.com/shareit/service-booking/internal/domain/comment"
	"github.com/shareit/service-booking/pkg/middleware"
	"github.com/shareit/service-booking/pkg/response"
)

// ItemViews is the item surface used by ItemHandler.
type ItemViews interface {
	GetItem(ctx context.Context, viewerID, itemID int64) (*application.ItemDTO, error)
	ListOwnerItems(ctx context.Context, ownerID int64, from int, size *int) ([]application.ItemDTO, error)
	AddComment(ctx context.Context, authorID, itemID int64, req application.AddCommentRequest) (*commentDomain.View, error)
}

// ItemHandler handles HTTP requests for item views and comments.
type ItemHandler struct {
	service ItemViews
}

// NewItemHandler creates a new ItemHandler.
func NewItemHandler(service ItemViews) *ItemHandler {
	return &ItemHandler{service: service}
}

// RegisterRoutes registers item routes on the given router group.
func (h *ItemHandler) RegisterRoutes(r *gin.RouterGroup) {
	items := r.Group("/items")
	items.Use(middleware.IdentityMiddleware())
	{
		items.GET("", h.ListOwnerItems)
		items.GET("/:itemId", h.GetItem)
		items.POST("/:itemId/comment", h.AddComment)
	}
}

// GetItem handles GET /items/:itemId.
func (h *ItemHandler) GetItem(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	itemID, ok := parseID(c, "itemId")
	if !ok {
		return
	}

	result, err := h.service.GetItem(c.Request.Context(), userID, itemID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListOwnerItems handles GET /items?from=&size=.
func (h *ItemHandler) ListOwnerItems(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	from, size, ok := parsePagination(c)
	if !ok {
		return
	}

	result, err := h.service.ListOwnerItems(c.Request.Context(), userID, from, size)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// AddComment handles POST /items/:itemId/comment.
func (h *ItemHandler) AddComment(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	itemID, ok := parseID(c, "itemId")
	if !ok {
		return
	}

	var req application.AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.service.AddComment(c.Request.Context(), userID, itemID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}
