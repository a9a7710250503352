package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/tair/storefront-funnel/pkg/database"
)

// Config is everything the funnel service reads from its environment
type Config struct {
	ServiceName   string
	Environment   string
	LogLevel      string
	HTTPPort      string
	JaegerURL     string
	TraceRatio    float64
	Database      database.Config
	JWTSecret     string
	JWTTTL        time.Duration
	KafkaBrokers  []string
	RedisAddr     string
	RedisPassword string

	// ViewDedupWindow of 0 counts every view
	ViewDedupWindow time.Duration
	AsyncViews      bool
	RequestTimeout  time.Duration

	RateLimit       int
	RateLimitWindow time.Duration
}

// IsDevelopment switches the logger to console output
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Load reads an optional .env file, then the environment
func Load() Config {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	return Config{
		ServiceName: getEnv("OTEL_SERVICE_NAME", "funnel-service"),
		Environment: getEnv("ENVIRONMENT", "development"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		HTTPPort:    getEnv("HTTP_PORT", "8085"),
		JaegerURL:   getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		TraceRatio:  getFloat("TRACE_SAMPLE_RATIO", 1),
		Database: database.Config{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "storefrontdb"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		JWTSecret:       getEnv("JWT_SECRET", ""),
		JWTTTL:          getDuration("JWT_TTL", 72*time.Hour),
		KafkaBrokers:    getList("KAFKA_BROKERS"),
		RedisAddr:       getEnv("REDIS_ADDR", ""),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		ViewDedupWindow: getDuration("VIEW_DEDUP_WINDOW", 0),
		AsyncViews:      getBool("ASYNC_VIEWS", false),
		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 10*time.Second),
		RateLimit:       getInt("RATE_LIMIT", 0),
		RateLimitWindow: getDuration("RATE_LIMIT_WINDOW", time.Minute),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return d
	}
	return defaultValue
}

func getBool(key string, defaultValue bool) bool {
	if b, err := strconv.ParseBool(os.Getenv(key)); err == nil {
		return b
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	if n, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return n
	}
	return defaultValue
}

func getFloat(key string, defaultValue float64) float64 {
	if f, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return f
	}
	return defaultValue
}

// getList splits a comma separated value, dropping blanks
func getList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
