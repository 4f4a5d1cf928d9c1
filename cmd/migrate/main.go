package main

import (
	"context"
	"log"

	"go.uber.org/zap"

	"shekinah-backend/internal/config"
	"shekinah-backend/internal/db"
	"shekinah-backend/internal/logging"
	"shekinah-backend/internal/migrate"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer logger.Sync()

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DBConnString)
	if err != nil {
		logger.Fatal("connect db", zap.Error(err))
	}
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		logger.Fatal("apply migrations", zap.Error(err))
	}

	logger.Info("migrations applied")
}
