package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all service configuration loaded from environment variables.
type Config struct {
	Port        string
	PostgresDSN string

	RedisAddr     string
	RedisPassword string

	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	// JWTSecret signs the session token, CookieSecret signs the cookie
	// wrapping it. Forging a session requires both.
	JWTSecret    string
	CookieSecret string
	SessionTTL   time.Duration

	CORSOrigin  string
	PageSize    int
	MaxFileSize int64
}

// Load reads configuration from the environment. Secrets and the database
// DSN have no fallback: the server refuses to start without them.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getenv("PORT", "8080"),
		PostgresDSN:    os.Getenv("POSTGRES_DSN"),
		RedisAddr:      getenv("REDIS_ADDR", "redis:6379"),
		RedisPassword:  getenv("REDIS_PASSWORD", ""),
		MinioEndpoint:  getenv("MINIO_ENDPOINT", "minio:9000"),
		MinioAccessKey: getenv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getenv("MINIO_SECRET_KEY", ""),
		MinioBucket:    getenv("MINIO_BUCKET", "pechomax-uploads"),
		MinioUseSSL:    getenv("MINIO_USE_SSL", "false") == "true",
		JWTSecret:      os.Getenv("JWT_SECRET"),
		CookieSecret:   os.Getenv("COOKIE_SECRET"),
		CORSOrigin:     getenv("CORS_ORIGIN", "http://localhost:5173"),
	}

	if cfg.PostgresDSN == "" {
		return nil, fmt.Errorf("POSTGRES_DSN is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	if cfg.CookieSecret == "" {
		return nil, fmt.Errorf("COOKIE_SECRET is required")
	}

	pageSize, err := strconv.Atoi(getenv("PAGE_SIZE", "15"))
	if err != nil || pageSize <= 0 {
		return nil, fmt.Errorf("PAGE_SIZE must be a positive integer")
	}
	cfg.PageSize = pageSize

	maxFileSize, err := strconv.ParseInt(getenv("MAX_FILE_SIZE", strconv.Itoa(10*1024*1024)), 10, 64)
	if err != nil || maxFileSize <= 0 {
		return nil, fmt.Errorf("MAX_FILE_SIZE must be a positive integer")
	}
	cfg.MaxFileSize = maxFileSize

	ttl, err := time.ParseDuration(getenv("SESSION_TTL", "24h"))
	if err != nil || ttl <= 0 {
		return nil, fmt.Errorf("SESSION_TTL must be a positive duration")
	}
	cfg.SessionTTL = ttl

	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
