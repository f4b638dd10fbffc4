package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/internal/config"
	bookingEvents "github.com/shareit/service-booking/internal/events"
	"github.com/shareit/service-booking/internal/handler"
	"github.com/shareit/service-booking/internal/repository"
	"github.com/shareit/service-booking/pkg/cache"
	"github.com/shareit/service-booking/pkg/database"
	"github.com/shareit/service-booking/pkg/health"
	"github.com/shareit/service-booking/pkg/kafka"
	"github.com/shareit/service-booking/pkg/logger"
	"github.com/shareit/service-booking/pkg/middleware"
	"github.com/shareit/service-booking/pkg/tracing"
)

const (
	shutdownTimeout = 10 * time.Second
	memoryCacheSize = 10_000
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log, err := logger.NewNamed(cfg.AppEnv, cfg.ServiceName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := run(cfg, log); err != nil {
		log.Fatal("service-booking exited with error", zap.Error(err))
	}
	log.Info("service-booking stopped")
}

func run(cfg *config.ServiceConfig, log *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("starting service-booking",
		zap.String("port", cfg.Port),
		zap.String("env", cfg.AppEnv),
	)

	// Initialize tracing
	ot, shutdownTracing, err := tracing.New(ctx, cfg.TracingConfig, cfg.ServiceName)
	if err != nil {
		return fmt.Errorf("failed to initialize tracing: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Error("failed to flush traces", zap.Error(err))
		}
	}()

	// Connect to database
	db, err := database.Connect(cfg.DBConfig, log)
	if err != nil {
		return err
	}

	// Run database migrations
	if cfg.IsDevelopment() {
		if err := db.AutoMigrate(
			&repository.UserModel{},
			&repository.ItemModel{},
			&repository.BookingModel{},
			&repository.CommentModel{},
		); err != nil {
			return fmt.Errorf("failed to run auto-migration: %w", err)
		}
		log.Info("database migration completed (dev auto-migrate)")
	} else {
		if err := database.RunMigrations(cfg.DBConfig.URL(), "migrations", database.MigrateUp, log); err != nil {
			return err
		}
	}

	// Initialize user cache
	var userCache cache.Cache
	if cfg.RedisConfig.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisConfig.Addr,
			Password: cfg.RedisConfig.Password,
			DB:       cfg.RedisConfig.DB,
		})
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		userCache = cache.NewRedisCache(redisClient, cfg.RedisConfig.TTL, ot)
		log.Info("user cache backed by redis", zap.String("addr", cfg.RedisConfig.Addr))
	} else {
		userCache = cache.NewMemoryCache(memoryCacheSize, cfg.RedisConfig.TTL)
		log.Info("user cache backed by in-process LRU")
	}

	// Initialize Kafka producer
	kafkaProducer := kafka.NewProducer(cfg.KafkaConfig.Brokers, log)
	defer func() { _ = kafkaProducer.Close() }()

	// Initialize repositories
	tx := repository.NewGormTransactor(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	catalogRepo := repository.NewGormCatalogRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	users := repository.NewCachedUserDirectory(catalogRepo.Users(), userCache, log)
	items := catalogRepo.Items()

	// Initialize application services
	bookingService := application.NewBookingService(
		bookingRepo, tx, users, items,
		kafkaProducer, cfg.KafkaConfig.BookingTopic,
		ot, log,
	)
	availabilityService := application.NewAvailabilityService(bookingRepo, users, items, ot, log)
	itemService := application.NewItemService(availabilityService, bookingRepo, users, items, commentRepo, ot, log)

	// Initialize catalog event consumer
	catalogConsumer := bookingEvents.NewCatalogEventConsumer(
		cfg.KafkaConfig.Brokers,
		cfg.ConsumerGroup(),
		cfg.KafkaConfig.CatalogTopic,
		catalogRepo,
		users,
		log,
	)
	defer func() { _ = catalogConsumer.Close() }()

	// Setup Gin router
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	if err := handler.RegisterValidators(); err != nil {
		return err
	}
	router := gin.New()

	// Apply global middleware
	router.Use(middleware.RecoveryMiddleware(log))
	router.Use(middleware.LoggerMiddleware(log))
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.SecurityHeadersMiddleware())

	// Register health check routes
	health.NewHandler(db, cfg.ServiceName).RegisterRoutes(router)

	// Register routes
	handler.NewBookingHandler(bookingService, availabilityService).RegisterRoutes(&router.RouterGroup)
	handler.NewItemHandler(itemService).RegisterRoutes(&router.RouterGroup)
	handler.NewAdminBookingHandler(bookingService).RegisterRoutes(&router.RouterGroup)

	// Create HTTP server
	srv := &http.Server{
		Addr:         cfg.Port,
		Handler:      otelhttp.NewHandler(router, cfg.ServiceName),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info("HTTP server starting", zap.String("addr", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info("starting catalog event consumer", zap.String("topic", cfg.KafkaConfig.CatalogTopic))
		if err := catalogConsumer.Start(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("catalog event consumer error: %w", err)
		}
		return nil
	})

	// Graceful shutdown
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down service-booking...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server forced shutdown", zap.Error(err))
		}
		return nil
	})

	return g.Wait()
}
