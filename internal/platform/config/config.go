package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Server captures process-level configuration.
type Server struct {
	Addr          string
	Environment   string
	JWTSigningKey string
	JWTIssuer     string
	AdminAPIToken string
	CORSOrigins   []string

	Log      Log
	Database Database
	Redis    RedisConfig
	Kafka    Kafka
	Teacher  Teacher
}

// Log controls slog output.
type Log struct {
	Level  string
	Format string // "json" or "text"
}

// Database selects Postgres; an empty URL means in-memory stores.
type Database struct {
	URL          string
	MaxOpenConns int
	TxTimeout    time.Duration
}

// RedisConfig enables the taxonomy cache when URL is set.
type RedisConfig struct {
	URL          string
	PoolSize     int
	MinIdleConns int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	TaxonomyTTL  time.Duration
}

// Kafka enables the lifecycle event sink when Brokers is non-empty.
type Kafka struct {
	Brokers          []string
	ApplicationTopic string
}

// Teacher holds teacher-application business limits.
type Teacher struct {
	CredentialBatchMax int
}

const (
	DefaultCredentialBatchMax = 20
	defaultTxTimeout          = 5 * time.Second
)

// FromEnv builds a Server config from environment variables so main stays lean.
// A .env file in the working directory is loaded first when present.
func FromEnv() (Server, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Server{}, err
	}

	cfg := Server{
		Addr:          getEnv("COURSEHUB_ADDR", ":8080"),
		Environment:   getEnv("ENVIRONMENT", "development"),
		JWTSigningKey: os.Getenv("JWT_SIGNING_KEY"),
		JWTIssuer:     getEnv("JWT_ISSUER", "coursehub"),
		AdminAPIToken: os.Getenv("ADMIN_API_TOKEN"),
		CORSOrigins:   splitList(os.Getenv("CORS_ALLOWED_ORIGINS")),
		Log: Log{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Database: Database{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: getInt("DATABASE_MAX_OPEN_CONNS", 20),
			TxTimeout:    getDuration("TX_TIMEOUT", defaultTxTimeout),
		},
		Redis: RedisConfig{
			URL:          os.Getenv("REDIS_URL"),
			PoolSize:     getInt("REDIS_POOL_SIZE", 10),
			MinIdleConns: getInt("REDIS_MIN_IDLE_CONNS", 2),
			DialTimeout:  getDuration("REDIS_DIAL_TIMEOUT", 2*time.Second),
			ReadTimeout:  getDuration("REDIS_READ_TIMEOUT", time.Second),
			WriteTimeout: getDuration("REDIS_WRITE_TIMEOUT", time.Second),
			TaxonomyTTL:  getDuration("TAXONOMY_CACHE_TTL", 10*time.Minute),
		},
		Kafka: Kafka{
			Brokers:          splitList(os.Getenv("KAFKA_BROKERS")),
			ApplicationTopic: getEnv("KAFKA_APPLICATION_TOPIC", "teacher-application-events"),
		},
		Teacher: Teacher{
			CredentialBatchMax: getInt("CREDENTIAL_BATCH_MAX", DefaultCredentialBatchMax),
		},
	}

	if cfg.JWTSigningKey == "" {
		if cfg.IsProduction() {
			return Server{}, errors.New("JWT_SIGNING_KEY is required in production")
		}
		// Use a default for development - should be overridden in production
		cfg.JWTSigningKey = "dev-secret-key-change-in-production"
	}
	if cfg.Teacher.CredentialBatchMax < 1 {
		return Server{}, errors.New("CREDENTIAL_BATCH_MAX must be positive")
	}
	return cfg, nil
}

func (s Server) IsProduction() bool {
	return s.Environment == "production"
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(os.Getenv(key)))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(strings.TrimSpace(os.Getenv(key)))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
