package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Store drivers accepted in STORE_DRIVER.
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

const (
	defaultPort        = "8080"
	defaultJWTSecret   = "a-very-secret-key-should-be-longer-and-random"
	defaultJWTIssuer   = "banking-ledger"
	defaultLockTimeout = 5 * time.Second
	defaultUnitTimeout = 15 * time.Second
	defaultMaxPageSize = 100
	defaultRateLimit   = "100-M"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string `validate:"required_if=StoreDriver postgres"`
	Port          string `validate:"required,numeric"`
	IsProduction  bool
	EnableDBCheck bool
	RunMigrations bool
	JWTSecret     string `validate:"required,min=16"`
	JWTIssuer     string `validate:"required"`
	StoreDriver   string `validate:"oneof=postgres memory"`

	// Ledger tuning
	LedgerLockTimeout time.Duration `validate:"gt=0"`
	LedgerUnitTimeout time.Duration `validate:"gtfield=LedgerLockTimeout"`
	MaxPageSize       int           `validate:"min=1,max=1000"`

	RateLimit          string `validate:"required"`
	PosthogAPIKey      string
	CORSAllowedOrigins []string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("PGSQL_URL", "")
	v.SetDefault("PORT", defaultPort)
	v.SetDefault("IS_PRODUCTION", false)
	v.SetDefault("ENABLE_DB_CHECK", false)
	v.SetDefault("RUN_MIGRATIONS", true)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_ISSUER", defaultJWTIssuer)
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("LEDGER_LOCK_TIMEOUT", defaultLockTimeout.String())
	v.SetDefault("LEDGER_UNIT_TIMEOUT", defaultUnitTimeout.String())
	v.SetDefault("MAX_PAGE_SIZE", defaultMaxPageSize)
	v.SetDefault("RATE_LIMIT", defaultRateLimit)
	v.SetDefault("POSTHOG_API_KEY", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "")
	v.AutomaticEnv()

	cfg := &Config{
		DatabaseURL:        v.GetString("PGSQL_URL"),
		Port:               v.GetString("PORT"),
		IsProduction:       v.GetBool("IS_PRODUCTION"),
		EnableDBCheck:      v.GetBool("ENABLE_DB_CHECK"),
		RunMigrations:      v.GetBool("RUN_MIGRATIONS"),
		JWTSecret:          v.GetString("JWT_SECRET"),
		JWTIssuer:          v.GetString("JWT_ISSUER"),
		StoreDriver:        strings.ToLower(strings.TrimSpace(v.GetString("STORE_DRIVER"))),
		LedgerLockTimeout:  durationOrDefault(v, "LEDGER_LOCK_TIMEOUT", defaultLockTimeout),
		LedgerUnitTimeout:  durationOrDefault(v, "LEDGER_UNIT_TIMEOUT", defaultUnitTimeout),
		MaxPageSize:        v.GetInt("MAX_PAGE_SIZE"),
		RateLimit:          v.GetString("RATE_LIMIT"),
		PosthogAPIKey:      v.GetString("POSTHOG_API_KEY"),
		CORSAllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
	}

	if cfg.JWTSecret == defaultJWTSecret {
		slog.Warn("JWT_SECRET environment variable not set. Using default insecure key.")
	}
	if cfg.StoreDriver == StoreDriverPostgres && cfg.DatabaseURL == "" {
		slog.Warn("PGSQL_URL environment variable not set.")
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// durationOrDefault parses a duration key such as "5s", falling back with a warning.
func durationOrDefault(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	raw := v.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("Invalid duration, using default",
			slog.String("key", key),
			slog.String("value", raw),
			slog.String("default", fallback.String()))
		return fallback
	}
	return d
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
