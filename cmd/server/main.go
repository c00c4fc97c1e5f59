package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/dodgeshot/backend/internal/api"
	"github.com/dodgeshot/backend/internal/config"
	"github.com/dodgeshot/backend/internal/game"
	"github.com/dodgeshot/backend/internal/redis"
	"github.com/dodgeshot/backend/internal/ws"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize Redis (optional; matches run in memory, Redis only
	// holds recovery snapshots)
	rdb, err := redis.Connect(cfg.RedisURL)
	if err != nil {
		log.Printf("[REDIS] not available (%v) - running without snapshots", err)
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// Initialize match manager and stream matches over the WS hub
	game.InitializeManager(context.Background(), rdb, cfg)
	ws.WireManager(cfg)

	// Set up Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	api.SetupRoutes(router, rdb, cfg)

	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting dodgeshot server on port %s", port)
	if err := router.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
