package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/config"
	"github.com/shareit/service-booking/pkg/database"
	"github.com/shareit/service-booking/pkg/logger"
)

const (
	argLength     = 2
	migrationsDir = "migrations"
)

func main() {
	if len(os.Args) < argLength {
		fmt.Fprintln(os.Stderr, "migration action is required: up, down, step-up or drop")
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.NewNamed(cfg.AppEnv, "booking-migrate")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	switch action := os.Args[1]; action {
	case database.MigrateUp, database.MigrateDown, database.MigrateStepUp, database.MigrateDrop:
		if err := database.RunMigrations(cfg.DBConfig.URL(), migrationsDir, action, log); err != nil {
			log.Fatal("migration failed", zap.String("action", action), zap.Error(err))
		}
	default:
		log.Fatal("invalid action, use 'up', 'down', 'step-up' or 'drop'", zap.String("action", action))
	}
}
