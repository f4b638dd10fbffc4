//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/internal/domain/catalog"
	bookingEvents "github.com/shareit/service-booking/internal/events"
	"github.com/shareit/service-booking/internal/repository"
	"github.com/shareit/service-booking/pkg/cache"
	"github.com/shareit/service-booking/pkg/config"
	"github.com/shareit/service-booking/pkg/database"
	"github.com/shareit/service-booking/pkg/kafka"
	"github.com/shareit/service-booking/pkg/tracing"
)

const (
	bookingTopic = "booking.events"
	catalogTopic = "catalog.events"
)

// setupPostgres starts a PostgreSQL testcontainer, applies the SQL migrations
// and returns a connected GORM DB.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgReq := testcontainers.ContainerRequest{
		Image:        "postgres:16-alpine",
		ExposedPorts: []string{"5432/tcp"},
		Env: map[string]string{
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
			"POSTGRES_DB":       "test_booking",
		},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}
	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: pgReq,
		Started:          true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	})

	pgHost, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	pgPort, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := config.DatabaseConfig{
		Host:     pgHost,
		Port:     pgPort.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_booking",
		SSLMode:  "disable",
	}
	logger := zap.NewNop()

	// Poll until GORM can actually connect and ping.
	var db *gorm.DB
	require.Eventually(t, func() bool {
		var err error
		db, err = database.Connect(cfg, logger)
		return err == nil
	}, 30*time.Second, 1*time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(cfg.URL(), "migrations", database.MigrateUp, logger))
	return db
}

// setupKafka starts a Kafka testcontainer with the service topics created.
func setupKafka(t *testing.T) []string {
	t.Helper()
	ctx := context.Background()

	// confluent-local supports KRaft natively.
	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, brokers, bookingTopic, catalogTopic)
	return brokers
}

// setupRedis starts a redis testcontainer and returns a connected client.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start redis container")
	t.Cleanup(func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := redisContainer.Endpoint(ctx, "")
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: endpoint})
	t.Cleanup(func() { _ = client.Close() })
	require.Eventually(t, func() bool {
		return client.Ping(ctx).Err() == nil
	}, 15*time.Second, 500*time.Millisecond, "redis not ready")
	return client
}

// serviceStack holds wired-up service components.
type serviceStack struct {
	Catalog      *repository.GormCatalogRepository
	Bookings     *repository.GormBookingRepository
	Users        *repository.CachedUserDirectory
	Lifecycle    *application.BookingService
	Availability *application.AvailabilityService
	Items        *application.ItemService
}

type discardPublisher struct{}

func (discardPublisher) PublishEvent(context.Context, string, string, kafka.CloudEvent) error {
	return nil
}

// setupStack wires the services over db. A nil publisher discards events.
func setupStack(t *testing.T, db *gorm.DB, publisher application.EventPublisher) *serviceStack {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	if publisher == nil {
		publisher = discardPublisher{}
	}
	ot := tracing.Noop()

	catalogRepo := repository.NewGormCatalogRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	users := repository.NewCachedUserDirectory(catalogRepo.Users(), cache.NewMemoryCache(128, time.Minute), logger)
	items := catalogRepo.Items()

	lifecycle := application.NewBookingService(bookingRepo, repository.NewGormTransactor(db), users, items,
		publisher, bookingTopic, ot, logger)
	availability := application.NewAvailabilityService(bookingRepo, users, items, ot, logger)
	itemSvc := application.NewItemService(availability, bookingRepo, users, items, commentRepo, ot, logger)

	return &serviceStack{
		Catalog:      catalogRepo,
		Bookings:     bookingRepo,
		Users:        users,
		Lifecycle:    lifecycle,
		Availability: availability,
		Items:        itemSvc,
	}
}

// seedUser projects a user directly into the users table.
func seedUser(t *testing.T, s *serviceStack, id int64, name string) {
	t.Helper()
	require.NoError(t, s.Catalog.UpsertUser(context.Background(), &catalog.User{
		ID: id, Name: name, Email: name + "@example.com", UpdatedAt: time.Now().UTC(),
	}))
}

// seedItem projects an available item directly into the items table.
func seedItem(t *testing.T, s *serviceStack, id, ownerID int64) {
	t.Helper()
	require.NoError(t, s.Catalog.UpsertItem(context.Background(), &catalog.Item{
		ID: id, OwnerID: ownerID, Name: fmt.Sprintf("item-%d", id), Available: true, UpdatedAt: time.Now().UTC(),
	}))
}

// newCatalogConsumer builds a consumer in a fresh group on the catalog topic.
func newCatalogConsumer(t *testing.T, brokers []string, s *serviceStack) *bookingEvents.CatalogEventConsumer {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	groupID := fmt.Sprintf("test-catalog-%s", uuid.New().String()[:8])
	return bookingEvents.NewCatalogEventConsumer(brokers, groupID, catalogTopic, s.Catalog, s.Users, logger)
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType, key string, data any) {
	t.Helper()
	logger, _ := zap.NewDevelopment()
	producer := kafka.NewProducer(brokers, logger)
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, key, ce)
	require.NoError(t, err, "failed to publish event")
}

// consumeOneEvent reads from a Kafka topic until it finds an event of the expected type.
func consumeOneEvent(t *testing.T, brokers []string, topic, expectedType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	groupID := fmt.Sprintf("test-assert-%s", uuid.New().String()[:8])
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:     brokers,
		GroupID:     groupID,
		Topic:       topic,
		MinBytes:    1,
		MaxBytes:    10e6,
		StartOffset: kafkago.FirstOffset,
	})
	defer func() { _ = reader.Close() }()

	for {
		msg, err := reader.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				t.Fatalf("timed out waiting for event type %q on topic %q", expectedType, topic)
			}
			continue
		}
		ce, err := kafka.ParseCloudEvent(msg.Value)
		if err != nil {
			continue
		}
		if ce.Type == expectedType {
			return ce
		}
	}
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	topicConfigs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		topicConfigs[i] = kafkago.TopicConfig{
			Topic:             topic,
			NumPartitions:     1,
			ReplicationFactor: 1,
		}
	}
	require.NoError(t, controllerConn.CreateTopics(topicConfigs...), "failed to create Kafka topics")

	// Give Kafka a moment to propagate topic metadata.
	time.Sleep(1 * time.Second)
}
