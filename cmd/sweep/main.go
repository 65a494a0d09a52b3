// Command sweep runs one reconciliation pass over the pending extraction
// jobs and exits. It is intended to be driven by cron or any external timer;
// the engine itself keeps no background threads.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/guanghao479/golden/internal/config"
	"github.com/guanghao479/golden/internal/crawler"
	"github.com/guanghao479/golden/internal/logger"
	"github.com/guanghao479/golden/internal/repository"
	"github.com/guanghao479/golden/internal/service"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.NewDefault()
	logger.SetDefaultLogger(appLogger)
	defer logger.Sync()

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	sourceRepo := repository.NewSourceRepository(db)
	jobRepo := repository.NewJobRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	gateway := crawler.NewGateway(&cfg.Firecrawl)

	reconciler := service.NewReconciler(sourceRepo, jobRepo, recordRepo, gateway, appLogger)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	result, err := reconciler.RunSweep(ctx)
	if err != nil {
		appLogger.WithError(err).Fatal("Sweep failed")
	}

	appLogger.WithFields(logger.Fields{
		"processed":       result.Processed,
		"completed":       result.Completed,
		"failed":          result.Failed,
		"still_pending":   result.StillPending,
		"inserted_events": result.InsertedEvents,
		"inserted_places": result.InsertedPlaces,
	}).Info("Sweep finished")
}
