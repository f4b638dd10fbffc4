package events

import (
	"context"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/domain/catalog"
	"github.com/shareit/service-booking/pkg/kafka"
)

// Catalog event types consumed from the catalog topic.
const (
	EventUserUpserted = "user.upserted"
	EventItemUpserted = "item.upserted"
)

// UserUpsertedEvent is the payload of user.upserted.
type UserUpsertedEvent struct {
	UserID    int64     `json:"userId"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ItemUpsertedEvent is the payload of item.upserted.
type ItemUpsertedEvent struct {
	ItemID      int64     `json:"itemId"`
	OwnerID     int64     `json:"ownerId"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Available   bool      `json:"available"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// UserInvalidator drops cached copies of a user.
type UserInvalidator interface {
	Invalidate(ctx context.Context, id int64)
}

// CatalogEventConsumer keeps the users and items projections in step with
// the catalog topic.
type CatalogEventConsumer struct {
	consumer    *kafka.Consumer
	projector   catalog.Projector
	invalidator UserInvalidator
	logger      *zap.Logger
}

// NewCatalogEventConsumer creates a new CatalogEventConsumer.
func NewCatalogEventConsumer(
	brokers []string,
	groupID string,
	topic string,
	projector catalog.Projector,
	invalidator UserInvalidator,
	logger *zap.Logger,
) *CatalogEventConsumer {
	return &CatalogEventConsumer{
		consumer:    kafka.NewConsumer(brokers, groupID, topic, logger),
		projector:   projector,
		invalidator: invalidator,
		logger:      logger,
	}
}

// Start begins consuming catalog events. This blocks until the context is cancelled.
func (c *CatalogEventConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *CatalogEventConsumer) Close() error {
	return c.consumer.Close()
}

func (c *CatalogEventConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from catalog topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case EventUserUpserted:
		return c.handleUserUpserted(ctx, cloudEvent)
	case EventItemUpserted:
		return c.handleItemUpserted(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled catalog event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *CatalogEventConsumer) handleUserUpserted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt UserUpsertedEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.UserID <= 0 {
		c.logger.Error("invalid UserUpsertedEvent data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil
	}

	user := &catalog.User{
		ID:        evt.UserID,
		Name:      evt.Name,
		Email:     evt.Email,
		UpdatedAt: versionTime(evt.UpdatedAt, cloudEvent.Time),
	}
	if err := c.projector.UpsertUser(ctx, user); err != nil {
		c.logger.Error("failed to project user",
			zap.Int64("user_id", user.ID),
			zap.Error(err),
		)
		return err
	}
	c.invalidator.Invalidate(ctx, user.ID)

	c.logger.Info("user projected", zap.Int64("user_id", user.ID))
	return nil
}

func (c *CatalogEventConsumer) handleItemUpserted(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var evt ItemUpsertedEvent
	if err := cloudEvent.ParseData(&evt); err != nil || evt.ItemID <= 0 || evt.OwnerID <= 0 {
		c.logger.Error("invalid ItemUpsertedEvent data",
			zap.String("event_id", cloudEvent.ID),
			zap.Error(err),
		)
		return nil
	}

	item := &catalog.Item{
		ID:          evt.ItemID,
		OwnerID:     evt.OwnerID,
		Name:        evt.Name,
		Description: evt.Description,
		Available:   evt.Available,
		UpdatedAt:   versionTime(evt.UpdatedAt, cloudEvent.Time),
	}
	if err := c.projector.UpsertItem(ctx, item); err != nil {
		c.logger.Error("failed to project item",
			zap.Int64("item_id", item.ID),
			zap.Error(err),
		)
		return err
	}

	c.logger.Info("item projected",
		zap.Int64("item_id", item.ID),
		zap.Int64("owner_id", item.OwnerID),
		zap.Bool("available", item.Available),
	)
	return nil
}

// versionTime picks the payload timestamp, falling back to the envelope time.
func versionTime(payload, envelope time.Time) time.Time {
	if !payload.IsZero() {
		return payload.UTC()
	}
	return envelope.UTC()
}
