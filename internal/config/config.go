package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers accepted in STORAGE_DRIVER.
const (
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"

	// StorageMemory keeps everything in process; for local development only.
	StorageMemory = "memory"
)

// Config holds all application configuration.
type Config struct {
	ServerPort string
	GinMode    string
	LogLevel   string
	LogFormat  string

	StorageDriver  string
	MongoURI       string
	MongoDatabase  string
	DatabaseURL    string
	MaxDBConns     int32
	StoreOpTimeout time.Duration

	// RedisURL is optional. Without it notifications use an in-process
	// queue and the admin live feed is disabled.
	RedisURL string

	JWTSecret  string
	JWTExpiry  time.Duration
	BcryptCost int

	SMTP SMTPConfig

	NotifyTimeout time.Duration

	SubmitMaxAttempts    int
	SubmitInitialBackoff time.Duration
	SubmitMaxBackoff     time.Duration

	RateLimitPerMinute int
	RateLimitBurst     int

	// AllowedOrigins controls HTTP CORS and WebSocket origin validation.
	// Empty slice means all origins are permitted (dev default).
	AllowedOrigins []string
}

// SMTPConfig carries mail transport settings for the notification channels.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Secure   bool
	From     string
	To       string
}

// Enabled reports whether enough is configured to attempt delivery.
func (s SMTPConfig) Enabled() bool {
	return s.Host != "" && s.User != "" && s.Password != ""
}

// Load reads configuration from environment variables with sensible defaults.
// It loads .env file if present but does not fail if missing.
func Load() *Config {
	_ = godotenv.Load()

	smtpUser := getEnv("SMTP_USER", "")

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		GinMode:    getEnv("GIN_MODE", "debug"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "pretty"),

		StorageDriver:  strings.ToLower(getEnv("STORAGE_DRIVER", StorageMongo)),
		MongoURI:       getEnv("MONGODB_URI", ""),
		MongoDatabase:  getEnv("MONGODB_DATABASE", "cybersecurity_assessment"),
		DatabaseURL:    getEnv("DATABASE_URL", ""),
		MaxDBConns:     int32(getEnvInt("MAX_DB_CONNS", 10)),
		StoreOpTimeout: getEnvDuration("STORE_OP_TIMEOUT", 10*time.Second),

		RedisURL: getEnv("REDIS_URL", ""),

		JWTSecret:  getEnv("JWT_SECRET", "change-this-to-a-secure-random-string"),
		JWTExpiry:  time.Duration(getEnvInt("JWT_EXPIRY_HOURS", 24)) * time.Hour,
		BcryptCost: getEnvInt("BCRYPT_COST", 10),

		SMTP: SMTPConfig{
			Host:     getEnv("SMTP_HOST", ""),
			Port:     getEnvInt("SMTP_PORT", 587),
			User:     smtpUser,
			Password: getEnv("SMTP_PASS", ""),
			Secure:   getEnvBool("SMTP_SECURE", false),
			From:     getEnv("FROM_EMAIL", smtpUser),
			To:       getEnv("TO_EMAIL", ""),
		},

		NotifyTimeout: getEnvDuration("NOTIFY_TIMEOUT", 30*time.Second),

		SubmitMaxAttempts:    getEnvInt("SUBMIT_MAX_ATTEMPTS", 5),
		SubmitInitialBackoff: getEnvDuration("SUBMIT_INITIAL_BACKOFF", 2*time.Second),
		SubmitMaxBackoff:     getEnvDuration("SUBMIT_MAX_BACKOFF", 10*time.Second),

		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 30),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 10),

		AllowedOrigins: parseOrigins(getEnv("ALLOWED_ORIGINS", "")),
	}
}

// Validate checks the settings the service cannot start without.
// Missing mail settings are not an error; notifications are skipped instead.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageMongo:
		if c.MongoURI == "" {
			return errors.New("MONGODB_URI is required when STORAGE_DRIVER=mongo")
		}
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return errors.New("DATABASE_URL is required when STORAGE_DRIVER=postgres")
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}
	if c.SubmitMaxAttempts < 1 {
		return fmt.Errorf("SUBMIT_MAX_ATTEMPTS must be at least 1, got %d", c.SubmitMaxAttempts)
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

// getEnvDuration accepts Go duration strings ("2s", "1m30s").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

// parseOrigins splits a comma-separated origins string into a trimmed slice.
// Returns nil (allow-all) if the input is empty.
func parseOrigins(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
