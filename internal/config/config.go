package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds every runtime knob, all sourced from environment variables.
// main loads a .env file first, so local dev mirrors production wiring.
type Config struct {
	ListenAddr string // ex: ":8080"

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage backend: "redis" | "postgres" | "memory".
	// redis is the only backend that re-broadcasts cross-process changes.
	StorageBackend string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisTimeout  time.Duration

	PostgresDSN string

	// Assistant (Gemini via langchaingo). Empty key disables the endpoint.
	GeminiAPIKey string
	GeminiModel  string
}

func Load() *Config {
	return &Config{
		ListenAddr: getenv("JOBDECK_LISTEN_ADDR", ":8080"),

		LogLevel:  getenv("JOBDECK_LOG_LEVEL", "info"),
		PrettyLog: getenvBool("JOBDECK_PRETTY_LOG", true),

		StorageBackend: getenv("JOBDECK_STORAGE", "redis"),

		RedisAddr:     getenv("JOBDECK_REDIS_ADDR", "localhost:6379"),
		RedisPassword: getenv("JOBDECK_REDIS_PASSWORD", ""),
		RedisDB:       getenvInt("JOBDECK_REDIS_DB", 0),
		RedisTimeout:  getenvDuration("JOBDECK_REDIS_TIMEOUT", 5*time.Second),

		PostgresDSN: getenv("JOBDECK_POSTGRES_DSN",
			"host=localhost user=postgres password=postgres dbname=jobdeck port=5432 sslmode=disable"),

		GeminiAPIKey: getenv("GEMINI_API_KEY", ""),
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-2.5-flash"),
	}
}

// helpers

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

func getenvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return def
	}
	return d
}
