package main

import (
	"context"
	"time"

	"github.com/courtside/bookingd/internal/config"
	"github.com/courtside/bookingd/internal/database"
	"github.com/courtside/bookingd/internal/logger"
	"github.com/courtside/bookingd/internal/storage"
)

func main() {
	log := logger.New("cleanup-worker")

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config: %v", err)
	}

	ctx := context.Background()

	dbManager, err := database.NewDBManager(ctx, database.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
	})
	if err != nil {
		log.Fatal("Failed to connect to database: %v", err)
	}
	defer dbManager.Close()

	tokens := storage.NewPostgresResetTokenStore(dbManager)

	log.Info("Cleanup worker started. Running every 24 hours...")

	runCleanup(ctx, tokens, log)

	ticker := time.NewTicker(24 * time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		runCleanup(ctx, tokens, log)
	}
}

func runCleanup(ctx context.Context, tokens *storage.PostgresResetTokenStore, log *logger.Logger) {
	log.Info("Purging used and expired password reset tokens...")

	purged, err := tokens.DeleteExpiredResetTokens(ctx)
	if err != nil {
		log.Error("Failed to purge reset tokens: %v", err)
		return
	}

	if purged > 0 {
		log.Info("Purged %d reset tokens", purged)
	} else {
		log.Info("No stale reset tokens found")
	}

	log.Info("Cleanup completed successfully")
}
