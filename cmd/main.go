package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadcrm/docs/swagger"
	"leadcrm/internal/api"
	"leadcrm/internal/cache"
	"leadcrm/internal/config"
	"leadcrm/internal/db"
	"leadcrm/internal/events"
	"leadcrm/internal/models"
	"leadcrm/internal/services"
	"leadcrm/internal/tasks"
	"leadcrm/internal/utils/logger"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
)

// @title LeadCRM API
// @version 1.0
// @description API documentation for the LeadCRM application
// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {

	logger := logger.New("leadcrm")

	// check if .env file exists
	if _, err := os.Stat(".env"); os.IsNotExist(err) {
		logger.Info("No .env file found, skipping environment variable loading")
	} else {
		logger.Info("Loading environment variables from .env file")
		if err := godotenv.Load(); err != nil {
			log.Fatalf("Failed to load environment variables: %v", err)
		}
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := db.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer func() {
		err := db.Close()
		if err != nil {
			log.Fatalf("Failed to close database connection: %v", err)
		}
	}()

	dbInstance := db.GetDB()

	// Session cache
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	sessions := cache.New(rdb, time.Duration(cfg.Cache.TTLMinutes)*time.Minute)

	// A permission change invalidates the cached session right away
	// rather than waiting out the TTL.
	events.On("permissions.updated", func(data interface{}) {
		if up, ok := data.(*models.UserPermission); ok {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := sessions.Clear(ctx, up.UserID); err != nil {
				logger.Warn("failed to invalidate session for %s: %v", up.UserID, err)
			}
		}
	})

	// Initialize task client
	taskClient := tasks.NewTaskClient(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
	)
	defer func() {
		if err := taskClient.Close(); err != nil {
			logger.Warn("failed to close task client: %v", err)
		}
	}()

	// New holds get an expiry pass scheduled for the moment they run
	// out, on top of the periodic sweep.
	events.On("reservation.created", func(data interface{}) {
		r, ok := data.(*models.Reservation)
		if !ok || r.ExpiresAt.IsZero() {
			return
		}
		if err := taskClient.EnqueueReservationExpiry(r.ExpiresAt); err != nil {
			logger.Warn("failed to schedule expiry for reservation %s: %v", r.ID, err)
		}
	})

	// Initialize task handlers
	taskHandler := tasks.NewTaskHandler(dbInstance)

	// Initialize task server
	taskServer := tasks.NewServer(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		taskHandler,
		logger,
	)

	// Create a context for task server
	serverCtx, serverCancel := context.WithCancel(context.Background())
	defer serverCancel()

	// Start task server
	go func() {
		if err := taskServer.Start(serverCtx); err != nil {
			logger.Error("Task server error", err)
		}
	}()

	// Initialize task scheduler
	taskScheduler := tasks.NewScheduler(
		cfg.Redis.Addr,
		cfg.Redis.Username,
		cfg.Redis.Password,
		cfg.Redis.DB,
		logger,
	)

	// Start task scheduler
	go func() {
		if err := taskScheduler.Start(); err != nil {
			logger.Error("Task scheduler error", err)
		}
	}()

	// Initialize S3 service
	s3Service, err := services.NewS3Service(
		cfg.S3.BucketName,
		cfg.S3.Endpoint,
		cfg.S3.Region,
		cfg.S3.AccessKey,
		cfg.S3.SecretKey,
	)
	if err != nil {
		log.Fatalf("Failed to initialize S3 service: %v", err)
	}

	// Register the URL generator
	models.RegisterFileURLGenerator(s3Service)

	// Initialize API server
	apiServer := api.NewServer(cfg, dbInstance, rdb, sessions, s3Service)
	go func() {
		logger.Success("API server started")

		// Swagger documentation
		swagger.SwaggerInfo.Title = "LeadCRM API Documentation"
		swagger.SwaggerInfo.Description = "API documentation for the LeadCRM application"
		swagger.SwaggerInfo.Version = "1.0"
		swagger.SwaggerInfo.Host = fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
		swagger.SwaggerInfo.Schemes = []string{"http", "https"}

		if err := apiServer.Start(); err != nil {
			logger.Error("API server error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the servers
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Create a deadline for graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Stop task scheduler
	taskScheduler.Stop()

	// Stop task server
	serverCancel()
	taskServer.Shutdown()

	// Shutdown API server
	if err := apiServer.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown API server", err)
	}

	logger.Info("Servers shutdown gracefully")
}
