package main

import (
	"context"
	"log"

	"shenanigigs/jobstore/internal/config"
	"shenanigigs/jobstore/internal/database"
	"shenanigigs/jobstore/internal/database/schema"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer logger.Sync()

	if err := godotenv.Load(); err != nil {
		logger.Debug("No .env file loaded", zap.Error(err))
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	ctx := context.Background()

	db, err := database.New(ctx, database.Options{
		DSN:      cfg.DatabaseURL,
		MaxConns: 1,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to connect to PostgreSQL", zap.Error(err))
	}
	defer db.Close()

	initializer := schema.NewInitializer(db.Pool(), logger)

	logger.Info("Initializing table", zap.String("table", schema.JobsTable))
	if err := initializer.EnsureJobsTable(ctx); err != nil {
		logger.Fatal("Failed to initialize table",
			zap.String("table", schema.JobsTable),
			zap.Error(err),
		)
	}

	logger.Info("Table initialization completed successfully")
}
