package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/guanghao479/golden/internal/api"
	"github.com/guanghao479/golden/internal/api/handler"
	"github.com/guanghao479/golden/internal/api/middleware"
	"github.com/guanghao479/golden/internal/config"
	"github.com/guanghao479/golden/internal/crawler"
	"github.com/guanghao479/golden/internal/logger"
	"github.com/guanghao479/golden/internal/repository"
	"github.com/guanghao479/golden/internal/service"
)

func main() {
	// Support CONFIG_PATH environment variable for production deployments
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
	if !gateway.Configured() {
		appLogger.Warn("FIRECRAWL_API_KEY not set; crawl submissions will fail until configured")
	}

	// One strategy per process; the two are never mixed.
	var orchestrator service.Orchestrator
	switch cfg.Crawl.Strategy {
	case "async":
		orchestrator = service.NewAsyncOrchestrator(sourceRepo, jobRepo, gateway, appLogger)
	default:
		orchestrator = service.NewSyncOrchestrator(sourceRepo, recordRepo, gateway, appLogger)
	}
	reconciler := service.NewReconciler(sourceRepo, jobRepo, recordRepo, gateway, appLogger)

	router := api.SetupRouter(api.RouterConfig{
		Mode: cfg.Server.Mode,
		CORS: middleware.CORSConfig{
			AllowedOrigins:  cfg.Server.CORS.AllowedOrigins,
			AllowAllOrigins: cfg.Server.CORS.AllowAllOrigins,
		},
		Logger: appLogger,
		Crawl:  handler.NewCrawlHandler(orchestrator, reconciler, sourceRepo, appLogger),
		Events: handler.NewEventHandler(recordRepo),
		Places: handler.NewPlaceHandler(recordRepo),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithField("port", cfg.Server.Port).
			WithField("strategy", cfg.Crawl.Strategy).
			Info("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.WithError(err).Error("Forced shutdown")
	}
}
