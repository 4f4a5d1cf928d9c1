package main

import (
	"context"
	"log"
	"os"

	"go.uber.org/zap"

	"shekinah-backend/internal/config"
	"shekinah-backend/internal/db"
	"shekinah-backend/internal/logging"
	"shekinah-backend/internal/seed"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	adminEmail := envDefault("SEED_ADMIN_EMAIL", "admin@shekinah.pe")
	adminPassword := os.Getenv("SEED_ADMIN_PASSWORD")
	if adminPassword == "" {
		logger.Fatal("SEED_ADMIN_PASSWORD is required")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := seed.Apply(ctx, pool, adminEmail, adminPassword); err != nil {
		logger.Fatal("seed apply", zap.Error(err))
	}

	logger.Info("seed applied", zap.String("admin", adminEmail))
}

func envDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
