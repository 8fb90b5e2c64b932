// Package config loads runtime settings from environment variables.
//
// There is no config file. Every value has a default except JWT_SECRET,
// which must be provided, and DATABASE_URL when DB_DRIVER=postgres.
//
//	PORT          listen port (8080)
//	DB_DRIVER     sqlite | postgres (sqlite)
//	DB_PATH       sqlite file path (data/forum.db)
//	DATABASE_URL  postgres connection string
//	JWT_SECRET    HMAC secret, at least 16 bytes
//	TOKEN_TTL     access token lifetime as a Go duration (24h)
//	BCRYPT_COST   bcrypt work factor, 4..31 (12)
//	LOG_LEVEL     debug | info | warn | error (info)
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	minSecretLen = 16
)

// Config is read once at startup and passed by value afterwards.
type Config struct {
	Port        string
	DBDriver    string
	DBPath      string
	DatabaseURL string
	JWTSecret   string
	TokenTTL    time.Duration
	BcryptCost  int
	LogLevel    slog.Level
}

// Load builds a Config from getenv. Pass os.Getenv in main; tests pass a map lookup.
func Load(getenv func(string) string) (Config, error) {
	cfg := Config{
		Port:        valueOr(getenv("PORT"), "8080"),
		DBDriver:    strings.ToLower(valueOr(getenv("DB_DRIVER"), DriverSQLite)),
		DBPath:      valueOr(getenv("DB_PATH"), "data/forum.db"),
		DatabaseURL: getenv("DATABASE_URL"),
		JWTSecret:   getenv("JWT_SECRET"),
		TokenTTL:    24 * time.Hour,
		BcryptCost:  12,
		LogLevel:    slog.LevelInfo,
	}

	var errs []error

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverPostgres:
		if cfg.DatabaseURL == "" {
			errs = append(errs, errors.New("DATABASE_URL is required when DB_DRIVER=postgres"))
		}
	default:
		errs = append(errs, fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, cfg.DBDriver))
	}

	if cfg.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if len(cfg.JWTSecret) < minSecretLen {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d bytes", minSecretLen))
	}

	if v := getenv("TOKEN_TTL"); v != "" {
		ttl, err := time.ParseDuration(v)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("TOKEN_TTL: %w", err))
		case ttl <= 0:
			errs = append(errs, fmt.Errorf("TOKEN_TTL must be positive, got %s", ttl))
		default:
			cfg.TokenTTL = ttl
		}
	}

	if v := getenv("BCRYPT_COST"); v != "" {
		cost, err := strconv.Atoi(v)
		switch {
		case err != nil:
			errs = append(errs, fmt.Errorf("BCRYPT_COST: %w", err))
		case cost < bcrypt.MinCost || cost > bcrypt.MaxCost:
			errs = append(errs, fmt.Errorf("BCRYPT_COST must be between %d and %d, got %d", bcrypt.MinCost, bcrypt.MaxCost, cost))
		default:
			cfg.BcryptCost = cost
		}
	}

	if v := getenv("LOG_LEVEL"); v != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(v)); err != nil {
			errs = append(errs, fmt.Errorf("LOG_LEVEL: %w", err))
		}
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return cfg, nil
}

// Addr returns the listen address for http.Server.
func (c Config) Addr() string {
	return ":" + c.Port
}

func valueOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
