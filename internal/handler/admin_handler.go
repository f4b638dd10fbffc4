package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/pkg/response"
)

// BookingStats reports aggregate booking counts.
type BookingStats interface {
	GetBookingStats(ctx context.Context) (*application.BookingStatsDTO, error)
}

// AdminBookingHandler handles admin HTTP requests for booking management.
type AdminBookingHandler struct {
	service BookingStats
}

// NewAdminBookingHandler creates a new AdminBookingHandler.
func NewAdminBookingHandler(service BookingStats) *AdminBookingHandler {
	return &AdminBookingHandler{service: service}
}

// RegisterRoutes registers admin booking routes.
func (h *AdminBookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	admin := r.Group("/admin")
	{
		admin.GET("/stats/bookings", h.BookingStats)
	}
}

// BookingStats handles GET /admin/stats/bookings.
func (h *AdminBookingHandler) BookingStats(c *gin.Context) {
	stats, err := h.service.GetBookingStats(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, stats)
}
