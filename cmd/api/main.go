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

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/kingrain94/tenant-notify-api/internal/api"
	"github.com/kingrain94/tenant-notify-api/internal/config"
	"github.com/kingrain94/tenant-notify-api/internal/metrics"
	"github.com/kingrain94/tenant-notify-api/internal/middleware"
	"github.com/kingrain94/tenant-notify-api/internal/realtime"
	"github.com/kingrain94/tenant-notify-api/internal/repository/postgres"
	"github.com/kingrain94/tenant-notify-api/internal/service"
	"github.com/kingrain94/tenant-notify-api/internal/service/pubsub"
	"github.com/kingrain94/tenant-notify-api/internal/service/queue"
	"github.com/kingrain94/tenant-notify-api/internal/telemetry"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	// Initialize logger
	appLogger := logger.NewLogger(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		appLogger.Fatal("Failed to load config", err)
	}

	tel, err := telemetry.Setup(context.Background(), cfg.Telemetry)
	if err != nil {
		appLogger.Fatal("Failed to set up telemetry", err)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	dbConnections, err := config.NewDatabaseConnections(cfg.Tenant.MismatchPolicy)
	if err != nil {
		appLogger.Fatal("Failed to connect to database", err)
	}
	defer dbConnections.Close()

	appLogger.Info("Database connections established - writer and reader connected")

	// Initialize Redis
	redisConfig := config.DefaultRedisConfig()
	redisClient, err := redisConfig.GetClient()
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()

	// Initialize SQS
	sqsConfig := config.DefaultSQSConfig()
	sqsClient, err := sqsConfig.GetClient()
	if err != nil {
		appLogger.Fatal("Failed to connect to SQS", err)
	}
	sqsService := queue.NewSQSService(sqsClient, sqsConfig)

	repo := postgres.NewPostgresRepository(dbConnections)
	directory := tenancy.NewCachedDirectory(repo.Tenant(), cfg.Tenant.CacheSize, cfg.Tenant.CacheTTL)

	// Realtime fan-out
	registry := realtime.NewRegistry(appMetrics)
	var backplane realtime.Backplane
	if redisConfig.Backplane {
		backplane = pubsub.NewRedisPubSub(redisClient, appLogger)
	} else {
		appLogger.Warn("Redis backplane disabled, notifications stay on this instance")
	}
	notifier := realtime.NewNotifier(registry, backplane, appLogger, appMetrics)
	if err := notifier.Start(); err != nil {
		appLogger.Fatal("Failed to start notifier", err)
	}

	// Initialize services
	services := api.Services{
		Tenant:       service.NewTenantService(repo),
		Company:      service.NewCompanyService(repo, sqsService, appLogger),
		Sale:         service.NewSaleService(repo, sqsService, appLogger),
		Notification: service.NewNotificationService(repo, notifier, appLogger),
	}

	// Initialize middleware
	claimStrategy := tenancy.ClaimStrategy{Claim: cfg.Tenant.Claim}
	resolver := tenancy.NewResolver(directory,
		claimStrategy,
		tenancy.HeaderStrategy{Header: cfg.Tenant.Header},
		tenancy.RouteStrategy{Param: cfg.Tenant.RouteParam},
		tenancy.QueryStrategy{Key: cfg.Tenant.QueryKey},
	)
	authMiddleware := middleware.NewAuthMiddleware(cfg)
	middlewares := api.Middlewares{
		Auth:       authMiddleware,
		Tenant:     middleware.NewTenantMiddleware(resolver, appLogger, appMetrics),
		RateLimit:  middleware.NewRateLimitMiddleware(redisClient, cfg, appLogger),
		Validation: middleware.NewValidationMiddleware(appLogger),
	}

	hub := api.NewWebSocketHandler(
		authMiddleware,
		directory,
		claimStrategy,
		registry,
		services.Notification,
		appMetrics,
		appLogger,
	)

	// Initialize server
	server := api.NewServer(cfg, services, middlewares, hub, appMetrics, reg, appLogger)

	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	server.SetupRoutes(router)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		appLogger.Infof("Listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}

	// Hijacked websocket connections are not tracked by Shutdown.
	for _, conn := range registry.All() {
		registry.Leave(conn.ID())
	}
	notifier.Stop()

	if err := tel.Shutdown(ctx); err != nil {
		appLogger.Error("Telemetry shutdown failed", err)
	}

	appLogger.Info("Server exiting")
	appLogger.Sync()
}
