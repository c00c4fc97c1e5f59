package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Redis
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Match settings
	MatchExpiryMinutes   int
	TickRateHz           int
	CountdownSeconds     int
	ResultDisplaySeconds int

	// Aim preview budget handed to the trajectory predictor
	PreviewMaxPoints  int
	PreviewMaxBounces int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Redis
		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Match settings
		MatchExpiryMinutes:   getEnvInt("MATCH_EXPIRY_MINUTES", 10),
		TickRateHz:           getEnvInt("TICK_RATE_HZ", 60),
		CountdownSeconds:     getEnvInt("COUNTDOWN_SECONDS", 5),
		ResultDisplaySeconds: getEnvInt("RESULT_DISPLAY_SECONDS", 2),

		// Aim preview
		PreviewMaxPoints:  getEnvInt("PREVIEW_MAX_POINTS", 120),
		PreviewMaxBounces: getEnvInt("PREVIEW_MAX_BOUNCES", 3),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}
