package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/SscSPs/ledger_core/internal/core/domain"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backends accepted in STORAGE_BACKEND.
const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

// Config holds application configuration.
type Config struct {
	Port         string
	IsProduction bool
	LogLevel     string
	LogFormat    string

	StorageBackend string
	DatabaseURL    string
	MigrationsPath string
	RedisAddr      string

	VoucherPrefix       string
	DefaultCurrency     string
	CommitMaxRetries    uint64
	CommitRetryInterval time.Duration

	RateLimit          string
	CORSAllowedOrigins []string
	JWTSecret          string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PORT", "8080")
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("STORAGE_BACKEND", StoragePostgres)
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("MIGRATIONS_PATH", "file://migrations")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("VOUCHER_PREFIX", "JV")
	v.SetDefault("DEFAULT_CURRENCY", "TWD")
	v.SetDefault("COMMIT_MAX_RETRIES", 3)
	v.SetDefault("COMMIT_RETRY_INTERVAL", "25ms")
	v.SetDefault("RATE_LIMIT", "300-M")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "*")
	v.SetDefault("JWT_SECRET", "")

	// Actual environment variables win over .env values and defaults.
	v.AutomaticEnv()

	cfg := &Config{
		Port:            v.GetString("PORT"),
		IsProduction:    v.GetBool("IS_PRODUCTION"),
		LogLevel:        strings.ToLower(v.GetString("LOG_LEVEL")),
		LogFormat:       strings.ToLower(v.GetString("LOG_FORMAT")),
		StorageBackend:  strings.ToLower(v.GetString("STORAGE_BACKEND")),
		DatabaseURL:     v.GetString("PGSQL_URL"),
		MigrationsPath:  v.GetString("MIGRATIONS_PATH"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		VoucherPrefix:   v.GetString("VOUCHER_PREFIX"),
		DefaultCurrency: strings.ToUpper(v.GetString("DEFAULT_CURRENCY")),
		RateLimit:       v.GetString("RATE_LIMIT"),
		JWTSecret:       v.GetString("JWT_SECRET"),
	}

	if cfg.Port == "" {
		cfg.Port = "8080"
		log.Printf("Warning: PORT environment variable not set. Defaulting to %s\n", cfg.Port)
	}

	retries := v.GetInt("COMMIT_MAX_RETRIES")
	if retries < 0 {
		return nil, fmt.Errorf("COMMIT_MAX_RETRIES must not be negative, got %d", retries)
	}
	cfg.CommitMaxRetries = uint64(retries)

	intervalStr := v.GetString("COMMIT_RETRY_INTERVAL")
	interval, err := time.ParseDuration(intervalStr)
	if err != nil {
		return nil, fmt.Errorf("invalid value for COMMIT_RETRY_INTERVAL (%q): %w", intervalStr, err)
	}
	cfg.CommitRetryInterval = interval

	for _, origin := range strings.Split(v.GetString("CORS_ALLOWED_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		log.Println("Warning: JWT_SECRET not set. /api/v1 is served without authentication.")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if !domain.IsValidCurrencyCode(c.DefaultCurrency) {
		return fmt.Errorf("DEFAULT_CURRENCY must be a 3 character code, got %q", c.DefaultCurrency)
	}
	switch c.StorageBackend {
	case StoragePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("PGSQL_URL is required when STORAGE_BACKEND is %s", StoragePostgres)
		}
	case StorageMemory:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.StorageBackend)
	}
	switch c.LogFormat {
	case "json", "text":
	default:
		return fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat)
	}
	return nil
}
