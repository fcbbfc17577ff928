package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/campus-id-api/api/swagger"
	"github.com/noah-isme/campus-id-api/internal/handler"
	"github.com/noah-isme/campus-id-api/internal/middleware"
	"github.com/noah-isme/campus-id-api/internal/repository"
	"github.com/noah-isme/campus-id-api/internal/service"
	"github.com/noah-isme/campus-id-api/pkg/cache"
	"github.com/noah-isme/campus-id-api/pkg/config"
	"github.com/noah-isme/campus-id-api/pkg/jobs"
	"github.com/noah-isme/campus-id-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/campus-id-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/campus-id-api/pkg/middleware/requestid"
	"github.com/noah-isme/campus-id-api/pkg/storage"
	"github.com/noah-isme/campus-id-api/pkg/validation"
)

// @title Campus ID API
// @version 1.0.0
// @description Student ID card issuance: sign-in, request wizard, tracking and administration
// @BasePath /api/v1
// @schemes http

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

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	validation.SetupBinding()
	validate := validation.New()
	metrics := service.NewMetricsService()

	var redisClient *redis.Client
	if cfg.Session.Store == config.SessionStoreRedis || cfg.Dashboard.CacheEnabled {
		redisClient, err = cache.Dial(ctx, cfg.Redis)
		if err != nil {
			logr.Fatal("failed to connect redis", zap.Error(err))
		}
		defer redisClient.Close()
	}

	sessions, err := newSessionStore(cfg, redisClient)
	if err != nil {
		logr.Fatal("failed to init session store", zap.Error(err))
	}

	now := time.Now()
	requests := repository.NewRequestRepository(now)
	notifications := repository.NewNotificationRepository(now)
	reportJobs := repository.NewReportJobRepository()

	authSvc := service.NewAuthService(sessions, service.NewFixedCredentialVerifier(), validate, metrics, logr, service.AuthConfig{
		AccessTokenSecret:   cfg.JWT.Secret,
		AccessTokenExpiry:   cfg.JWT.Expiration,
		Issuer:              cfg.JWT.Issuer,
		ForgotPasswordDelay: cfg.Simulation.ForgotPasswordDelay,
		Gate: service.GateConfig{
			SignInDelay:   cfg.Simulation.SignInDelay,
			RegisterDelay: cfg.Simulation.RegisterDelay,
		},
	})

	fees := service.FeeSchedule{Base: cfg.Fees.Base, Replacement: cfg.Fees.Replacement, Shipping: cfg.Fees.Shipping}
	wizardSvc := service.NewWizardService(
		service.NewSimulatedSubmitter(requests, cfg.Simulation.SubmitDelay, logr),
		service.NewSimulatedPhotoReader(cfg.Photo.MaxBytes, cfg.Photo.PlaceholderURL, cfg.Simulation.PhotoReadDelay),
		validate, metrics, logr, fees,
	)
	authSvc.OnSignOut(wizardSvc.Discard)

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, cfg.Dashboard.CacheNamespace)
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Dashboard.CacheTTL, logr, cfg.Dashboard.CacheEnabled)
	dashboardSvc := service.NewDashboardService(service.DashboardServiceParams{
		Requests:      requests,
		Notifications: notifications,
		Cache:         cacheSvc,
		Metrics:       metrics,
		Logger:        logr,
		Config:        service.DashboardServiceConfig{CacheTTL: cfg.Dashboard.CacheTTL},
	})

	trackSvc := service.NewTrackService(requests, metrics, logr, cfg.Simulation.TrackDelay)
	adminSvc := service.NewAdminRequestService(requests, validate, logr)

	exportStore, err := storage.NewLocalStorage(cfg.Reports.StorageDir)
	if err != nil {
		logr.Fatal("failed to init export storage", zap.Error(err))
	}
	signer := storage.NewSignedURLSigner(cfg.Reports.SignedURLSecret, cfg.Reports.SignedURLTTL)
	exportSvc := service.NewExportService(requests, exportStore, signer, service.ExportConfig{APIPrefix: cfg.APIPrefix}, logr)
	worker := service.NewReportWorker(reportJobs, exportSvc, metrics, cfg.Reports.WorkerRetries, cfg.Simulation.ReportDelay, logr)
	queue := jobs.NewQueue("reports", worker.Handle, jobs.QueueConfig{
		Workers:    cfg.Reports.WorkerConcurrency,
		MaxRetries: cfg.Reports.WorkerRetries,
		Logger:     logr,
	})
	queue.Start(ctx)
	defer queue.Stop()

	reportSvc := service.NewReportService(reportJobs, queue, exportSvc, validate, metrics, logr, service.ReportServiceConfig{
		ResultTTL:       cfg.Reports.SignedURLTTL,
		CleanupInterval: cfg.Reports.CleanupInterval,
	})
	reportSvc.StartCleanup(ctx)

	checks := map[string]handler.ReadinessCheck{}
	if redisClient != nil {
		checks["redis"] = func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			return redisClient.Ping(pingCtx).Err()
		}
	}
	metricsHandler := handler.NewMetricsHandler(metrics, checks)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.RequestMetrics(metrics, "/metrics"))

	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	handler.Routes{
		Auth:          authSvc,
		AuthHandler:   handler.NewAuthHandler(authSvc),
		Dashboard:     handler.NewDashboardHandler(dashboardSvc),
		Wizard:        handler.NewWizardHandler(wizardSvc),
		Track:         handler.NewTrackHandler(trackSvc),
		AdminRequests: handler.NewAdminRequestHandler(adminSvc),
		Reports:       handler.NewReportHandler(reportSvc),
		Metrics:       metricsHandler,
		AuditLogger:   logr.Named("audit"),
	}.Register(r.Group(cfg.APIPrefix))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Sugar().Infow("server starting", "addr", srv.Addr, "env", cfg.Env, "session_store", cfg.Session.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Sugar().Fatalw("server failed", "error", err)
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Sugar().Warnw("graceful shutdown failed", "error", err)
	}
}

func newSessionStore(cfg *config.Config, client *redis.Client) (service.SessionStore, error) {
	switch cfg.Session.Store {
	case config.SessionStoreFile:
		store, err := repository.NewFileSessionStore(cfg.Session.FilePath)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.SessionStoreRedis:
		if client == nil {
			return nil, errors.New("redis session store requires a redis client")
		}
		return repository.NewRedisSessionStore(client, cfg.Session.KeyPrefix), nil
	case config.SessionStoreMemory, "":
		return repository.NewMemorySessionStore(), nil
	default:
		return nil, fmt.Errorf("unknown session store %q", cfg.Session.Store)
	}
}
