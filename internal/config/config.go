// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakSecrets contains example secrets that must be rejected.
var knownWeakSecrets = []string{
	"change-me-to-32-byte-secret-key!",
	"REPLACE_WITH_YOUR_OWN_SECRET_KEY!",
}

// Supported database drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBDriver      string `env:"GAMEATLAS_DB_DRIVER" envDefault:"sqlite"`
	DBPath        string `env:"GAMEATLAS_DB_PATH" envDefault:"./data/gameatlas.db"`
	DBDSN         string `env:"GAMEATLAS_DB_DSN"`
	SessionSecret string `env:"GAMEATLAS_SESSION_SECRET,required"`
	ServerHost    string `env:"GAMEATLAS_SERVER_HOST" envDefault:"localhost"`
	ServerPort    int    `env:"GAMEATLAS_SERVER_PORT" envDefault:"8000"`
	Env           string `env:"GAMEATLAS_ENV" envDefault:"development"`
	LogLevel      string `env:"GAMEATLAS_LOG_LEVEL" envDefault:"info"`

	// Extra hosts (host[:port]) allowed to submit forms, e.g. a public name behind a proxy.
	TrustedOrigins []string `env:"GAMEATLAS_TRUSTED_ORIGINS" envSeparator:","`

	StaticDir   string `env:"GAMEATLAS_STATIC_DIR" envDefault:"./static"`
	MaxUploadMB int64  `env:"GAMEATLAS_MAX_UPLOAD_MB" envDefault:"10"`
	BcryptCost  int    `env:"GAMEATLAS_BCRYPT_COST" envDefault:"10"`

	// Optional bootstrap administrator, created on startup if the email is unused.
	AdminName     string `env:"GAMEATLAS_ADMIN_NAME" envDefault:"Administrador"`
	AdminEmail    string `env:"GAMEATLAS_ADMIN_EMAIL"`
	AdminPassword string `env:"GAMEATLAS_ADMIN_PASSWORD"`

	EventRetentionDays int `env:"GAMEATLAS_EVENT_RETENTION_DAYS" envDefault:"30"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// DBTarget returns the file path or DSN for the configured driver.
func (c Config) DBTarget() string {
	if c.DBDriver == DriverMySQL {
		return c.DBDSN
	}
	return c.DBPath
}

// SeedAdmin returns true if a bootstrap administrator is configured.
func (c Config) SeedAdmin() bool {
	return c.AdminEmail != "" && c.AdminPassword != ""
}

// MaxUploadBytes returns the upload limit in bytes.
func (c Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB << 20
}

// MinSessionSecretLength is the minimum required length for the session secret.
// The CSRF middleware derives its key from it.
const MinSessionSecretLength = 32

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SessionSecret) < MinSessionSecretLength {
		return nil, fmt.Errorf("GAMEATLAS_SESSION_SECRET must be at least %d bytes long, got %d bytes; "+
			"generate a secure secret with: openssl rand -base64 32",
			MinSessionSecretLength, len(cfg.SessionSecret))
	}

	for _, weak := range knownWeakSecrets {
		if cfg.SessionSecret == weak {
			return nil, fmt.Errorf("GAMEATLAS_SESSION_SECRET is a known default value and must not be used; " +
				"generate a secure secret with: openssl rand -base64 32")
		}
	}

	switch cfg.DBDriver {
	case DriverSQLite:
	case DriverMySQL:
		if cfg.DBDSN == "" {
			return nil, fmt.Errorf("GAMEATLAS_DB_DSN is required when GAMEATLAS_DB_DRIVER is %q", DriverMySQL)
		}
	default:
		return nil, fmt.Errorf("GAMEATLAS_DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverMySQL, cfg.DBDriver)
	}

	if cfg.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("GAMEATLAS_MAX_UPLOAD_MB must be positive, got %d", cfg.MaxUploadMB)
	}
	if cfg.EventRetentionDays <= 0 {
		return nil, fmt.Errorf("GAMEATLAS_EVENT_RETENTION_DAYS must be positive, got %d", cfg.EventRetentionDays)
	}
	if cfg.BcryptCost < 4 || cfg.BcryptCost > 31 {
		return nil, fmt.Errorf("GAMEATLAS_BCRYPT_COST must be between 4 and 31, got %d", cfg.BcryptCost)
	}

	if !hasMinimumEntropy(cfg.SessionSecret) {
		slog.Warn("GAMEATLAS_SESSION_SECRET has low character diversity; " +
			"consider generating a random secret with: openssl rand -base64 32")
	}

	return cfg, nil
}

// hasMinimumEntropy checks that a secret contains at least 3 character classes
// (lowercase, uppercase, digits, special characters).
func hasMinimumEntropy(s string) bool {
	charTypes := 0
	if strings.ContainsAny(s, "abcdefghijklmnopqrstuvwxyz") {
		charTypes++
	}
	if strings.ContainsAny(s, "ABCDEFGHIJKLMNOPQRSTUVWXYZ") {
		charTypes++
	}
	if strings.ContainsAny(s, "0123456789") {
		charTypes++
	}
	if strings.ContainsAny(s, "!@#$%^&*()-_=+[]{}|;:,.<>?/~`'\"\\") {
		charTypes++
	}
	return charTypes >= 3
}
