package main

import (
	"context"
	"log"
	"math/rand/v2"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/kingrain94/tenant-notify-api/internal/config"
	"github.com/kingrain94/tenant-notify-api/internal/seed"
	"github.com/kingrain94/tenant-notify-api/pkg/logger"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found")
	}

	appLogger := logger.NewLogger(os.Getenv("APP_ENV"))

	cfg, err := config.Load()
	if err != nil {
		appLogger.Fatal("Failed to load config", err)
	}

	admin, err := config.NewAdminDatabase()
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", err)
	}

	dbConnections, err := config.NewDatabaseConnections(cfg.Tenant.MismatchPolicy)
	if err != nil {
		appLogger.Fatal("Failed to connect to PostgreSQL", err)
	}
	defer dbConnections.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	seeder := seed.NewSeeder(admin, dbConnections.Writer, appLogger, rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0)))
	if err := seeder.Run(ctx); err != nil {
		appLogger.Fatal("Seeding failed", err)
	}

	if sqlDB, err := admin.DB(); err == nil {
		_ = sqlDB.Close()
	}
	appLogger.Info("Seeding complete")
	appLogger.Sync()
}
