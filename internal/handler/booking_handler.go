package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/shareit/service-booking/internal/application"
	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/pkg/middleware"
	"github.com/shareit/service-booking/pkg/response"
)

// BookingLifecycle is the booking write and lookup surface used by BookingHandler.
type BookingLifecycle interface {
	CreateBooking(ctx context.Context, bookerID int64, req application.CreateBookingRequest) (*application.BookingDTO, error)
	UpdateBookingStatus(ctx context.Context, ownerID, bookingID int64, approve *bool) (*application.BookingDTO, error)
	GetBooking(ctx context.Context, userID, bookingID int64) (*bookingDomain.Summary, error)
}

// BookingQueries is the listing surface used by BookingHandler.
type BookingQueries interface {
	ListForBooker(ctx context.Context, userID int64, q application.ListQuery) ([]bookingDomain.Summary, error)
	ListForOwner(ctx context.Context, userID int64, q application.ListQuery) ([]bookingDomain.Summary, error)
}

// BookingHandler handles HTTP requests for booking operations.
type BookingHandler struct {
	lifecycle BookingLifecycle
	queries   BookingQueries
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(lifecycle BookingLifecycle, queries BookingQueries) *BookingHandler {
	return &BookingHandler{lifecycle: lifecycle, queries: queries}
}

// RegisterRoutes registers all booking routes on the given router group.
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	bookings.Use(middleware.IdentityMiddleware())
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookerBookings)
		bookings.GET("/owner", h.ListOwnerBookings)
		bookings.GET("/:bookingId", h.GetBooking)
		bookings.PATCH("/:bookingId", h.UpdateBookingStatus)
	}
}

// CreateBooking handles POST /bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	var req application.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	result, err := h.lifecycle.CreateBooking(c.Request.Context(), userID, req)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Created(c, result)
}

// UpdateBookingStatus handles PATCH /bookings/:bookingId?approved=true|false.
func (h *BookingHandler) UpdateBookingStatus(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	bookingID, ok := parseID(c, "bookingId")
	if !ok {
		return
	}

	var approve *bool
	if raw, present := c.GetQuery("approved"); present {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			response.BadRequest(c, "approved must be true or false")
			return
		}
		approve = &v
	}

	result, err := h.lifecycle.UpdateBookingStatus(c.Request.Context(), userID, bookingID, approve)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// GetBooking handles GET /bookings/:bookingId.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, _ := middleware.GetUserID(c)

	bookingID, ok := parseID(c, "bookingId")
	if !ok {
		return
	}

	result, err := h.lifecycle.GetBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// ListBookerBookings handles GET /bookings?state=&from=&size=.
func (h *BookingHandler) ListBookerBookings(c *gin.Context) {
	h.list(c, h.queries.ListForBooker)
}

// ListOwnerBookings handles GET /bookings/owner?state=&from=&size=.
func (h *BookingHandler) ListOwnerBookings(c *gin.Context) {
	h.list(c, h.queries.ListForOwner)
}

func (h *BookingHandler) list(c *gin.Context, fn func(context.Context, int64, application.ListQuery) ([]bookingDomain.Summary, error)) {
	userID, _ := middleware.GetUserID(c)

	from, size, ok := parsePagination(c)
	if !ok {
		return
	}

	result, err := fn(c.Request.Context(), userID, application.ListQuery{
		State: c.DefaultQuery("state", "ALL"),
		From:  from,
		Size:  size,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, result)
}

// parseID reads a positive int64 path parameter, writing a 400 when it is not one.
func parseID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "invalid "+name)
		return 0, false
	}
	return id, true
}

// parsePagination extracts from (default 0) and the optional size. Range
// checks are left to the services; only non-integers are rejected here.
func parsePagination(c *gin.Context) (from int, size *int, ok bool) {
	if raw, present := c.GetQuery("from"); present {
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "from must be an integer")
			return 0, nil, false
		}
		from = v
	}
	if raw, present := c.GetQuery("size"); present {
		v, err := strconv.Atoi(raw)
		if err != nil {
			response.BadRequest(c, "size must be an integer")
			return 0, nil, false
		}
		size = &v
	}
	return from, size, true
}
