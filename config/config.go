package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server configuration
	Port        string
	Environment string

	// Redis configuration (presence mirror; empty RedisURL disables it)
	RedisURL string
	RedisDB  int

	// JWT configuration (REST presence routes only)
	JWTSecret string

	// CORS configuration
	AllowedOrigins []string

	// Rate limiting for /api routes
	RateLimitRPS   float64
	RateLimitBurst int

	// WebSocket configuration
	SendQueueSize int

	// Presence mirror TTL
	PresenceTTL time.Duration

	// MongoDB configuration (maintenance tooling only; the relay never touches the store)
	MongoURI string
}

func LoadConfig() *Config {
	// Load .env file if it exists
	_ = godotenv.Load()

	presenceTTL := getEnvAsInt("PRESENCE_TTL_SECONDS", 120)

	return &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),

		RedisURL: getEnv("REDIS_URL", ""),
		RedisDB:  getEnvAsInt("REDIS_DB", 0),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),

		AllowedOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"}),

		RateLimitRPS:   getEnvAsFloat("RATE_LIMIT_RPS", 100.0/(15*60)), // 100 requests per 15 minutes
		RateLimitBurst: getEnvAsInt("RATE_LIMIT_BURST", 100),

		SendQueueSize: getEnvAsInt("SEND_QUEUE_SIZE", 256),

		PresenceTTL: time.Duration(presenceTTL) * time.Second,

		MongoURI: getEnv("MONGODB_URI", "mongodb://127.0.0.1:27017/found"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
