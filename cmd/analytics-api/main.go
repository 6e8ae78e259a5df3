package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/trendx-analytics-api/api/swagger"
	"github.com/noah-isme/trendx-analytics-api/internal/analytics"
	"github.com/noah-isme/trendx-analytics-api/internal/handler"
	"github.com/noah-isme/trendx-analytics-api/internal/middleware"
	"github.com/noah-isme/trendx-analytics-api/internal/repository"
	"github.com/noah-isme/trendx-analytics-api/internal/service"
	"github.com/noah-isme/trendx-analytics-api/pkg/cache"
	"github.com/noah-isme/trendx-analytics-api/pkg/config"
	"github.com/noah-isme/trendx-analytics-api/pkg/database"
	"github.com/noah-isme/trendx-analytics-api/pkg/export"
	"github.com/noah-isme/trendx-analytics-api/pkg/jobs"
	"github.com/noah-isme/trendx-analytics-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/trendx-analytics-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/trendx-analytics-api/pkg/middleware/requestid"
	"github.com/noah-isme/trendx-analytics-api/pkg/storage"
)

// @title TrendX Analytics API
// @version 1.0.0
// @description Rankings, rollups and exports over competition engagement data
// @BasePath /api/v1
// @schemes http https
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.NewPostgres(ctx, cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect record store", zap.Error(err))
	}
	defer db.Close() //nolint:errcheck
	records := repository.NewRecordRepository(db)

	// Redis is optional; without it every request recomputes.
	redisClient, err := cache.NewRedis(ctx, cfg.Redis)
	if err != nil {
		logr.Warn("redis unavailable, analytics cache disabled", zap.Error(err))
		redisClient = nil
	}
	cacheRepo := repository.NewCacheRepository(redisClient)
	defer cacheRepo.Close() //nolint:errcheck

	validate := validator.New()
	metricsSvc := service.NewMetricsService()
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Analytics.CacheTTL, logr, cfg.Analytics.CacheEnabled && redisClient != nil)
	analyticsSvc := service.NewAnalyticsService(records, cacheSvc, metricsSvc, validate, cfg.Analytics, logr)

	store, err := storage.NewLocalStorage(cfg.Exports.StorageDir)
	if err != nil {
		logr.Fatal("failed to prepare export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)
	numbers := analytics.NewNumberFormatter(cfg.Analytics.NumberLocale)
	exportSvc := service.NewExportService(
		analyticsSvc,
		store,
		signer,
		metricsSvc,
		service.ExportConfig{APIPrefix: cfg.APIPrefix, ResultTTL: cfg.Exports.SignedURLTTL},
		logr,
		export.NewCSVExporter(),
		export.NewPDFExporter(numbers),
	)

	exportJobs := repository.NewExportJobRepository()
	worker := service.NewExportWorker(exportJobs, exportSvc, logr)
	queue := jobs.NewQueue("exports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Exports.Workers,
		MaxRetries: cfg.Exports.MaxRetries,
		RetryDelay: 2 * time.Second,
		Logger:     logr,
	})
	jobSvc := service.NewExportJobService(exportJobs, queue, exportSvc, validate, service.ExportJobConfig{
		ResultTTL:       cfg.Exports.SignedURLTTL,
		CleanupInterval: cfg.Exports.CleanupInterval,
	}, logr)
	queue.OnFailure(jobSvc.HandleFailure)
	queue.Start(ctx)
	defer queue.Stop()
	jobSvc.StartCleanup(ctx)

	checks := map[string]handler.Pinger{"postgres": records}
	if redisClient != nil {
		checks["redis"] = cacheRepo
	}
	metricsHandler := handler.NewMetricsHandler(metricsSvc, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(middleware.Metrics(metricsSvc))
	r.Use(middleware.WithResponseMeta())

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	handler.Register(r.Group(cfg.APIPrefix), handler.Routes{
		Analytics: handler.NewAnalyticsHandler(analyticsSvc),
		Exports:   handler.NewExportHandler(exportSvc, jobSvc),
		Tokens:    service.NewTokenService(cfg.JWT.Secret),
	})

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("graceful shutdown failed", zap.Error(err))
	}
}
