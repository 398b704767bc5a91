package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Store backends selectable with QMS_STORE.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Server captures HTTP server level configuration.
type Server struct {
	Addr               string
	Store              string
	DatabaseURL        string
	SearchDefaultLimit int
	ShutdownTimeout    time.Duration

	Redis RedisConfig
	Kafka KafkaConfig
	Auth  AuthConfig
	Log   LogConfig
}

// RedisConfig holds the optional record cache settings.
// An empty URL disables the cache.
type RedisConfig struct {
	URL          string
	CacheTTL     time.Duration
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// KafkaConfig holds the domain event sink settings.
// No brokers means events are only logged.
type KafkaConfig struct {
	Brokers []string
	Topic   string
}

// AuthConfig configures bearer token validation.
// An empty secret disables authentication (local development).
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present; real
// environment variables win over it.
func FromEnv() (Server, error) {
	_ = godotenv.Load()

	cfg := Server{
		Addr:            envOr("QMS_ADDR", ":8080"),
		Store:           strings.ToLower(envOr("QMS_STORE", StoreMemory)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		ShutdownTimeout: 10 * time.Second,
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: splitList(os.Getenv("KAFKA_BROKERS")),
			Topic:   envOr("KAFKA_TOPIC", "qms.events"),
		},
		Auth: AuthConfig{
			JWTSecret: os.Getenv("AUTH_JWT_SECRET"),
			Issuer:    os.Getenv("AUTH_JWT_ISSUER"),
		},
		Log: LogConfig{
			Level:  strings.ToLower(envOr("LOG_LEVEL", "info")),
			Format: strings.ToLower(envOr("LOG_FORMAT", "json")),
		},
	}

	ttl, err := durationEnv("REDIS_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return Server{}, err
	}
	cfg.Redis.CacheTTL = ttl

	limit, err := intEnv("SEARCH_DEFAULT_LIMIT", 20)
	if err != nil {
		return Server{}, err
	}
	cfg.SearchDefaultLimit = limit

	if err := cfg.Validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

// Validate checks combinations that cannot work at runtime.
func (c Server) Validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when QMS_STORE=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("QMS_STORE must be %q or %q, got %q", StoreMemory, StorePostgres, c.Store)
	}
	if c.SearchDefaultLimit < 1 || c.SearchDefaultLimit > 100 {
		return fmt.Errorf("SEARCH_DEFAULT_LIMIT must be between 1 and 100, got %d", c.SearchDefaultLimit)
	}
	return nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func intEnv(key string, fallback int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for part := range strings.SplitSeq(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
