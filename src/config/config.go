package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Port        string
	Env         string
	MongoURI    string
	DBName      string
	JWTSecret   string
	CORSOrigins string

	// Rate limiting for mutating message/connection routes.
	RateLimitPerMinute int
	RateLimitBurst     int

	// Read notifications older than this many days are purged.
	NotificationRetentionDays int
	NotificationCleanupEvery  time.Duration
}

func Load() *Config {
	rpm, _ := strconv.Atoi(getEnv("RATE_LIMIT_PER_MINUTE", "60"))
	burst, _ := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "10"))
	retention, _ := strconv.Atoi(getEnv("NOTIFICATION_RETENTION_DAYS", "30"))
	cleanupHours, _ := strconv.Atoi(getEnv("NOTIFICATION_CLEANUP_HOURS", "24"))

	return &Config{
		Port:        getEnv("PORT", "3000"),
		Env:         getEnv("APP_ENV", "development"),
		MongoURI:    getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		DBName:      getEnv("DB_NAME", "careernest"),
		JWTSecret:   getEnv("JWT_SECRET", "fallback-secret-key"),
		CORSOrigins: getEnv("CORS_ORIGINS", "http://localhost:5173"),

		RateLimitPerMinute: rpm,
		RateLimitBurst:     burst,

		NotificationRetentionDays: retention,
		NotificationCleanupEvery:  time.Duration(cleanupHours) * time.Hour,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
