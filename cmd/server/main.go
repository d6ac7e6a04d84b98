// backend-go/cmd/server/main.go
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

	"github.com/andresuchdata/retail-inventory/backend-go/internal/ai"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/api"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/cache"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/config"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/metrics"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/pipeline"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/repository"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/repository/memory"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/repository/postgres"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/service"
	"github.com/andresuchdata/retail-inventory/backend-go/internal/storage"
	"github.com/andresuchdata/retail-inventory/backend-go/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg := config.Load()

	logger.Init(cfg.Server.Mode, cfg.Server.LogLevel)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := cfg.Validate(); err != nil {
		logger.Log.Fatal().Err(err).Msg("Invalid configuration")
	}

	ctx := context.Background()

	repo, runs, closeStore, err := openStore(ctx, cfg.Database)
	if err != nil {
		logger.Log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to initialize storage")
	}
	defer closeStore()

	analyticsCache, err := cache.NewAnalyticsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Analytics cache unavailable, continuing without it")
		analyticsCache = cache.NewNoopAnalyticsCache()
	}
	defer analyticsCache.Close()

	archiver, err := storage.NewArchiver(cfg.Archive)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Upload archive unavailable, continuing without it")
		archiver = storage.NoopArchiver{}
	}

	aiClient := ai.NewClient(cfg.AI)
	predictor := ai.NewFallbackPredictor(ai.NewRemotePredictor(aiClient), ai.NewHeuristicPredictor())

	services := &api.Services{
		InventoryService:  service.NewInventoryService(repo, runs, analyticsCache, archiver, cfg.Ingest, cfg.App.MaxUploadBytes),
		AnalyticsService:  service.NewAnalyticsService(repo, analyticsCache),
		PredictionService: service.NewPredictionService(repo, predictor, aiClient),
	}
	if cfg.Metrics.Enabled {
		if err := metrics.Register(prometheus.DefaultRegisterer); err != nil {
			logger.Log.Fatal().Err(err).Msg("Failed to register metrics")
		}
		services.Metrics = metrics.Handler()
	}

	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Log.Info().
			Str("port", cfg.Server.Port).
			Str("storage", cfg.Database.Driver).
			Str("ai_service", aiClient.BaseURL()).
			Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Log.Error().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// openStore returns the record store and run history for the configured
// driver, with their schema in place.
func openStore(ctx context.Context, cfg config.DatabaseConfig) (repository.InventoryRepository, pipeline.RunRecorder, func(), error) {
	if cfg.Driver == "memory" {
		return memory.NewInventoryRepository(), pipeline.NewMemoryRecorder(), func() {}, nil
	}

	db, err := postgres.NewDB(&cfg)
	if err != nil {
		return nil, nil, nil, err
	}
	closeDB := func() { _ = db.Close() }

	repo := postgres.NewInventoryRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		closeDB()
		return nil, nil, nil, err
	}
	runs := pipeline.NewRepository(db.DB)
	if err := runs.EnsureSchema(ctx); err != nil {
		closeDB()
		return nil, nil, nil, fmt.Errorf("ingest run history: %w", err)
	}

	return repo, runs, closeDB, nil
}
