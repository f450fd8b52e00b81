package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kingrain94/tenant-notify-api/internal/config"
	"github.com/kingrain94/tenant-notify-api/internal/metrics"
	"github.com/kingrain94/tenant-notify-api/internal/realtime"
	"github.com/kingrain94/tenant-notify-api/internal/repository/postgres"
	"github.com/kingrain94/tenant-notify-api/internal/service"
	"github.com/kingrain94/tenant-notify-api/internal/service/pubsub"
	"github.com/kingrain94/tenant-notify-api/internal/service/queue"
	"github.com/kingrain94/tenant-notify-api/internal/tenancy"
	"github.com/kingrain94/tenant-notify-api/internal/worker"
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

	dbConnections, err := config.NewDatabaseConnections(cfg.Tenant.MismatchPolicy)
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", err)
	}
	defer dbConnections.Close()

	repo := postgres.NewPostgresRepository(dbConnections)
	directory := tenancy.NewCachedDirectory(repo.Tenant(), cfg.Tenant.CacheSize, cfg.Tenant.CacheTTL)

	// The worker holds no connections; every notification goes out over Redis.
	redisClient, err := config.DefaultRedisConfig().GetClient()
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", err)
	}
	defer redisClient.Close()

	workerMetrics := metrics.NewMetrics(prometheus.DefaultRegisterer)
	notifier := realtime.NewNotifier(
		realtime.NewRegistry(workerMetrics),
		pubsub.NewRedisPubSub(redisClient, appLogger),
		appLogger,
		workerMetrics,
	)
	defer notifier.Stop()

	// Initialize SQS
	sqsConfig := config.DefaultSQSConfig()
	sqsClient, err := sqsConfig.GetClient()
	if err != nil {
		appLogger.Fatal("Failed to connect to SQS", err)
	}
	sqsService := queue.NewSQSService(sqsClient, sqsConfig)

	appLogger.Info("SQS connection established for notify worker")

	notifyWorker := worker.NewNotifyWorker(
		sqsService,
		directory,
		service.NewNotificationService(repo, notifier, appLogger),
		appLogger,
		workerMetrics,
		1,           // worker goroutines
		time.Second, // poll interval between long polls
	).WithPolling(sqsConfig.MaxMessages, sqsConfig.WaitTimeSeconds)

	notifyWorker.Start()
	appLogger.Info("Notify worker started")

	// Wait for interrupt signal to gracefully shutdown the worker
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down worker...")
	notifyWorker.Stop()
	appLogger.Info("Worker stopped")
	appLogger.Sync()
}
