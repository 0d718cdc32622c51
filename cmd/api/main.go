package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gotocard/internal/config"
	"gotocard/internal/database"
	"gotocard/internal/events"
	"gotocard/internal/logger"
	"gotocard/internal/recommend"
	"gotocard/internal/router"
	"gotocard/internal/services"
	"gotocard/internal/validator"
)

// @title           gotocard API
// @version         1.0
// @description     gotocard recommends credit cards from a user's monthly spending by category.
// @termsOfService  http://swagger.io/terms/

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey PipelineKey
// @in header
// @name X-API-Key
// @description Shared key for the catalog importer and refresh job.

func main() {
	// Initialize logger (use ENV var if available, default to development)
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if appConfig.LogLevel != "" {
		logger.SetLevel(appConfig.LogLevel)
	}

	// Create database manager
	dbManager, err := database.NewManager(appConfig)
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer dbManager.Close()

	// Run migrations
	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	publisher, err := events.New(appConfig.AMQPURL, appConfig.AMQPExchange, appConfig.AMQPRoutingKey)
	if err != nil {
		return fmt.Errorf("failed to connect event publisher: %w", err)
	}
	defer publisher.Close()

	// Initialize services
	svc, err := router.NewServices(dbManager.DB(), services.RecommendationOptions{
		Engine: recommend.Config{
			PointValue: appConfig.PointValue,
			MileValue:  appConfig.MileValue,
			Limit:      appConfig.RecommendationLimit,
		},
		Timeout:    appConfig.GenerateTimeout,
		MaxRetries: appConfig.GenerateMaxRetries,
		RetryBase:  appConfig.GenerateRetryBase,
		CacheSize:  appConfig.CacheSize,
		Publisher:  publisher,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}

	validator.Register()
	if appConfig.PipelineAPIKey == "" {
		log.Warn("PIPELINE_API_KEY is not set; pipeline endpoints will reject every request")
	}

	srv := &http.Server{
		Addr: ":" + appConfig.Port,
		Handler: router.New(svc, router.Options{
			PipelineAPIKey: appConfig.PipelineAPIKey,
			CORSOrigins:    appConfig.CORSOrigins,
			Swagger:        appConfig.Env != "production",
		}),
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   appConfig.GenerateTimeout + 5*time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 16,
	}

	// Graceful shutdown handling
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		log.Infof("Starting gotocard backend server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("Server stopped gracefully")
	return nil
}
