package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/pulse-platform/service-store-analytics/internal/analytics"
	"github.com/pulse-platform/service-store-analytics/internal/config"
	"github.com/pulse-platform/service-store-analytics/internal/database"
	"github.com/pulse-platform/service-store-analytics/internal/events"
	"github.com/pulse-platform/service-store-analytics/internal/handlers"
	"github.com/pulse-platform/service-store-analytics/internal/logger"
	"github.com/pulse-platform/service-store-analytics/internal/repository"
	"github.com/pulse-platform/service-store-analytics/internal/routes"
	"github.com/pulse-platform/service-store-analytics/internal/services"
)

func main() {
	// Load .env file in development
	if os.Getenv("APP_ENV") != "production" {
		_ = godotenv.Load()
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	zlog, err := logger.New(cfg.App.Env)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zlog.Sync()

	// Connect to database
	db, err := database.Connect(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}

	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	// Connect to Redis for the sync lock (optional)
	var redisClient *redis.Client
	if cfg.Redis.Host != "" {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := redisClient.Ping(context.Background()).Err(); err != nil {
			zlog.Warn("Failed to connect to Redis, sync deduplication disabled", zap.Error(err))
			redisClient = nil
		}
	}

	// Connect to NATS (optional - only if configured)
	var natsConn *nats.Conn
	var eventPublisher *events.Publisher
	if cfg.NATS.URL != "" {
		natsConn, err = nats.Connect(cfg.NATS.URL)
		if err != nil {
			zlog.Warn("Failed to connect to NATS, sync events disabled", zap.Error(err))
		} else {
			zlog.Info("Connected to NATS", zap.String("url", cfg.NATS.URL))
			eventPublisher = events.NewPublisher(natsConn, zlog)
			defer natsConn.Close()
		}
	}

	// Initialize repositories
	storeRepo := repository.NewStoreRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	syncRepo := repository.NewSyncRepository(db)

	// Initialize services
	storeService, err := services.NewStoreService(storeRepo, cfg.Security.EncryptionKey, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize store service", zap.Error(err))
	}

	analyticsService := analytics.NewService(analyticsRepo, zlog)

	syncService := services.NewSyncService(
		storeService,
		syncRepo,
		redisClient,
		eventPublisher,
		&services.SyncServiceConfig{
			APIVersion:   cfg.Shopify.APIVersion,
			Workers:      cfg.Sync.Workers,
			QueueSize:    cfg.Sync.QueueSize,
			LookbackDays: cfg.Sync.LookbackDays,
		},
		zlog,
	)
	syncService.Start()

	// Initialize handlers
	storeHandler := handlers.NewStoreHandler(storeService, syncService, zlog)
	analyticsHandler := handlers.NewAnalyticsHandler(analyticsService, storeService, zlog)

	// Set Gin mode
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	router := gin.New()
	router.Use(gin.Recovery())

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "store-analytics",
			"time":    time.Now().UTC(),
		})
	})

	// Setup routes using the routes package
	routes.SetupRoutes(router, &routes.RouteConfig{
		StoreHandler:     storeHandler,
		AnalyticsHandler: analyticsHandler,
	})

	// Create server
	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		zlog.Info("Store analytics service starting on port " + cfg.App.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zlog.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zlog.Fatal("Server forced to shutdown", zap.Error(err))
	}

	// Let in-flight syncs finish before exiting
	syncService.Stop()

	zlog.Info("Server exited")
}
