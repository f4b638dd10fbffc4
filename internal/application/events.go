package application

import (
	"context"
	"time"

	"go.uber.org/zap"

	bookingDomain "github.com/shareit/service-booking/internal/domain/booking"
	"github.com/shareit/service-booking/pkg/kafka"
	"github.com/shareit/service-booking/pkg/tracing"
)

const eventSource = "service-booking"

// Booking lifecycle event types published to the booking topic.
const (
	EventBookingCreated  = "booking.created"
	EventBookingApproved = "booking.approved"
	EventBookingRejected = "booking.rejected"
)

// EventPublisher delivers CloudEvents to a topic.
type EventPublisher interface {
	PublishEvent(ctx context.Context, topic, key string, ce kafka.CloudEvent) error
}

// BookingEvent is the payload of every booking lifecycle event.
type BookingEvent struct {
	BookingID  int64     `json:"bookingId"`
	ItemID     int64     `json:"itemId"`
	BookerID   int64     `json:"bookerId"`
	OwnerID    int64     `json:"ownerId"`
	Status     string    `json:"status"`
	Start      time.Time `json:"start"`
	End        time.Time `json:"end"`
	OccurredAt time.Time `json:"occurredAt"`
}

func newBookingEvent(bk *bookingDomain.Booking, ownerID int64, now time.Time) BookingEvent {
	return BookingEvent{
		BookingID:  bk.ID(),
		ItemID:     bk.ItemID(),
		BookerID:   bk.BookerID(),
		OwnerID:    ownerID,
		Status:     bk.Status().String(),
		Start:      bk.Start(),
		End:        bk.End(),
		OccurredAt: now,
	}
}

func decisionEventType(status bookingDomain.BookingStatus) string {
	if status == bookingDomain.StatusApproved {
		return EventBookingApproved
	}
	return EventBookingRejected
}

// publishEvent never fails the calling operation; delivery errors are logged
// and recorded as an event on the caller's span.
func publishEvent(ctx context.Context, scope tracing.Scope, producer EventPublisher, logger *zap.Logger, topic, eventType, key string, data any) {
	cloudEvent, err := kafka.NewCloudEvent(eventSource, eventType, data)
	if err != nil {
		logger.Error("failed to create cloud event",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return
	}

	if err := producer.PublishEvent(ctx, topic, key, cloudEvent); err != nil {
		logger.Error("failed to publish event",
			zap.String("topic", topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		scope.AddEvent("event.publish_failed", map[string]any{
			"messaging.destination": topic,
			"event.type":            eventType,
			"error":                 err,
		})
	}
}
