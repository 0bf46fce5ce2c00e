package main

import (
	"context"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/fastygo/daymate/internal/bootstrap"
	"github.com/fastygo/daymate/internal/config"
	"github.com/fastygo/daymate/internal/seed"
	"github.com/fastygo/daymate/pkg/logger"
	taskUC "github.com/fastygo/daymate/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := bootstrap.OpenStore(ctx, cfg, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to open task store", zap.Error(err))
	}
	defer store.Close(context.Background())

	if cfg.Store.Driver == config.StoreMemory {
		zapLogger.Warn("seeding the in-memory store has no lasting effect")
	}

	result, err := seed.Run(ctx, taskUC.New(store.Tasks, zapLogger), time.Now())
	if err != nil {
		_ = store.Close(context.Background())
		zapLogger.Fatal("seeding failed", zap.Error(err))
	}
	zapLogger.Info("database seeded",
		zap.String("store", store.Driver),
		zap.Int("cleared", result.Cleared),
		zap.Int("inserted", len(result.Inserted)),
	)
}
