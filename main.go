package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/DRafi2006/FOUND/config"
	"github.com/DRafi2006/FOUND/handlers"
	"github.com/DRafi2006/FOUND/middleware"
	"github.com/DRafi2006/FOUND/services"
	"github.com/DRafi2006/FOUND/utils"
)

func main() {
	// Load configuration
	cfg := config.LoadConfig()

	// Initialize logger
	logger := utils.NewLogger()

	// Connect the optional presence mirror
	redisClient := connectRedis(cfg, logger)
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Initialize relay services
	registry := services.NewRegistry()
	rooms := services.NewRoomRouter()
	presence := services.NewPresenceBroadcaster(registry, redisClient, cfg.PresenceTTL, logger)
	relay := services.NewMessageRelay(rooms, logger)
	typing := services.NewTypingTracker(rooms, logger)
	gateway := services.NewGateway(registry, rooms, presence, relay, typing, logger)

	// Initialize handlers
	wsHandler := handlers.NewWebSocketHandler(gateway, cfg.SendQueueSize, logger)
	presenceHandler := handlers.NewPresenceHandler(registry, presence, logger)

	// Setup Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(logger))
	router.Use(middleware.CORS(cfg.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handlers.HealthCheck)

	// WebSocket endpoint. Deliberately unauthenticated: socket clients
	// are identified by the user_online announcement, and access control
	// lives in the main API.
	router.GET("/ws", wsHandler.Handle)

	// REST presence surface for the main API
	api := router.Group("/api")
	api.Use(middleware.RateLimit(cfg.RateLimitRPS, cfg.RateLimitBurst))
	{
		presenceRoutes := api.Group("/presence")
		presenceRoutes.Use(middleware.JWTAuth(cfg.JWTSecret))
		{
			presenceRoutes.GET("/online", presenceHandler.GetOnlineUsers)
			presenceRoutes.GET("/status/:userId", presenceHandler.GetStatus)
		}
	}

	// Create HTTP server
	srv := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     router,
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("Starting Realtime Service", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Failed to start server", "error", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", "error", err)
	}

	logger.Info("Server exited")
}

// connectRedis builds the presence-mirror client. The mirror is
// optional: with no REDIS_URL the relay runs purely in memory.
func connectRedis(cfg *config.Config, logger *utils.Logger) *redis.Client {
	if cfg.RedisURL == "" {
		logger.Info("Redis presence mirror disabled")
		return nil
	}

	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		logger.Fatal("Failed to parse Redis URL", "error", err)
	}
	opt.DB = cfg.RedisDB

	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		logger.Fatal("Failed to connect to Redis", "error", err)
	}

	logger.Info("Connected to Redis")
	return client
}
