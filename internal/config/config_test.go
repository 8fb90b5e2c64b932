package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func envFrom(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(envFrom(map[string]string{"JWT_SECRET": testSecret}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ":8080", cfg.Addr())
	assert.Equal(t, DriverSQLite, cfg.DBDriver)
	assert.Equal(t, "data/forum.db", cfg.DBPath)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestLoad_Overrides(t *testing.T) {
	cfg, err := Load(envFrom(map[string]string{
		"PORT":         "9000",
		"DB_DRIVER":    "POSTGRES",
		"DATABASE_URL": "postgres://forum@localhost/forum",
		"JWT_SECRET":   testSecret,
		"TOKEN_TTL":    "15m",
		"BCRYPT_COST":  "4",
		"LOG_LEVEL":    "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, DriverPostgres, cfg.DBDriver)
	assert.Equal(t, 15*time.Minute, cfg.TokenTTL)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing secret",
			env:     map[string]string{},
			wantErr: "JWT_SECRET is required",
		},
		{
			name:    "short secret",
			env:     map[string]string{"JWT_SECRET": "short"},
			wantErr: "at least 16 bytes",
		},
		{
			name:    "unknown driver",
			env:     map[string]string{"JWT_SECRET": testSecret, "DB_DRIVER": "mysql"},
			wantErr: "DB_DRIVER",
		},
		{
			name:    "postgres without url",
			env:     map[string]string{"JWT_SECRET": testSecret, "DB_DRIVER": "postgres"},
			wantErr: "DATABASE_URL is required",
		},
		{
			name:    "unparseable ttl",
			env:     map[string]string{"JWT_SECRET": testSecret, "TOKEN_TTL": "a day"},
			wantErr: "TOKEN_TTL",
		},
		{
			name:    "non-positive ttl",
			env:     map[string]string{"JWT_SECRET": testSecret, "TOKEN_TTL": "-1s"},
			wantErr: "TOKEN_TTL must be positive",
		},
		{
			name:    "cost below minimum",
			env:     map[string]string{"JWT_SECRET": testSecret, "BCRYPT_COST": "3"},
			wantErr: "BCRYPT_COST must be between",
		},
		{
			name:    "cost not a number",
			env:     map[string]string{"JWT_SECRET": testSecret, "BCRYPT_COST": "high"},
			wantErr: "BCRYPT_COST",
		},
		{
			name:    "bad log level",
			env:     map[string]string{"JWT_SECRET": testSecret, "LOG_LEVEL": "loud"},
			wantErr: "LOG_LEVEL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(envFrom(tt.env))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoad_ReportsEveryProblem(t *testing.T) {
	_, err := Load(envFrom(map[string]string{"BCRYPT_COST": "99", "TOKEN_TTL": "0s"}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")
	assert.Contains(t, err.Error(), "BCRYPT_COST")
	assert.Contains(t, err.Error(), "TOKEN_TTL")
}
