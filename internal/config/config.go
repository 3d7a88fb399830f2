package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	// Environment
	Environment string

	// Database (optional, enables run history)
	DatabaseURL    string
	MigrateOnStart bool
	MigrationsDir  string

	// Redis (optional, enables snapshots and cross-instance landing events)
	RedisURL string

	// Server
	Port        string
	FrontendURL string

	// Simulation
	FrameIntervalMs       int
	BroadcastEveryFrames  int
	SnapshotEveryFrames   int
	SessionIdleMinutes    int
	ExpiryCheckSeconds    int
	MaxSessions           int
	DefaultViewportWidth  int
	DefaultViewportHeight int
	PresetsFile           string

	// Security
	JWTSecret              string
	ControlTokenTTLMinutes int
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	return &Config{
		// Environment
		Environment: getEnv("APP_ENV", "development"),

		// Database
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MigrateOnStart: getEnv("MIGRATE_ON_START", "false") == "true",
		MigrationsDir:  getEnv("MIGRATIONS_DIR", "migrations"),

		// Redis
		RedisURL: getEnv("REDIS_URL", ""),

		// Server
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Simulation
		FrameIntervalMs:       getEnvInt("FRAME_INTERVAL_MS", 16),
		BroadcastEveryFrames:  getEnvInt("BROADCAST_EVERY_FRAMES", 2),
		SnapshotEveryFrames:   getEnvInt("SNAPSHOT_EVERY_FRAMES", 120),
		SessionIdleMinutes:    getEnvInt("SESSION_IDLE_MINUTES", 30),
		ExpiryCheckSeconds:    getEnvInt("EXPIRY_CHECK_SECONDS", 60),
		MaxSessions:           getEnvInt("MAX_SESSIONS", 50),
		DefaultViewportWidth:  getEnvInt("DEFAULT_VIEWPORT_WIDTH", 1000),
		DefaultViewportHeight: getEnvInt("DEFAULT_VIEWPORT_HEIGHT", 800),
		PresetsFile:           getEnv("PRESETS_FILE", "presets.yaml"),

		// Security
		JWTSecret:              getEnv("JWT_SECRET", "change-me-in-production"),
		ControlTokenTTLMinutes: getEnvInt("CONTROL_TOKEN_TTL_MINUTES", 240),
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
