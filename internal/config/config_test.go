// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"strings"
	"testing"
)

const testSecret = "test-secret-key-32-bytes-long!!!"

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GAMEATLAS_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.DBDriver != DriverSQLite {
		t.Errorf("DBDriver = %q, want %q", cfg.DBDriver, DriverSQLite)
	}
	if cfg.DBPath != "./data/gameatlas.db" {
		t.Errorf("DBPath = %q, want %q", cfg.DBPath, "./data/gameatlas.db")
	}
	if cfg.ServerPort != 8000 {
		t.Errorf("ServerPort = %d, want %d", cfg.ServerPort, 8000)
	}
	if cfg.StaticDir != "./static" {
		t.Errorf("StaticDir = %q, want %q", cfg.StaticDir, "./static")
	}
	if cfg.MaxUploadBytes() != 10<<20 {
		t.Errorf("MaxUploadBytes() = %d, want %d", cfg.MaxUploadBytes(), 10<<20)
	}
	if cfg.EventRetentionDays != 30 {
		t.Errorf("EventRetentionDays = %d, want 30", cfg.EventRetentionDays)
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true")
	}
	if cfg.SeedAdmin() {
		t.Error("SeedAdmin() = true without admin credentials")
	}
	if len(cfg.TrustedOrigins) != 0 {
		t.Errorf("TrustedOrigins = %v, want none", cfg.TrustedOrigins)
	}
	if cfg.DBTarget() != cfg.DBPath {
		t.Errorf("DBTarget() = %q, want DB path", cfg.DBTarget())
	}
}

func TestLoad_CustomValues(t *testing.T) {
	t.Setenv("GAMEATLAS_SESSION_SECRET", testSecret)
	t.Setenv("GAMEATLAS_DB_DRIVER", "mysql")
	t.Setenv("GAMEATLAS_DB_DSN", "root:pw@tcp(localhost:3306)/tienda")
	t.Setenv("GAMEATLAS_SERVER_HOST", "0.0.0.0")
	t.Setenv("GAMEATLAS_SERVER_PORT", "3000")
	t.Setenv("GAMEATLAS_ENV", "production")
	t.Setenv("GAMEATLAS_ADMIN_EMAIL", "admin@x.com")
	t.Setenv("GAMEATLAS_ADMIN_PASSWORD", "secret")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.ServerAddr() != "0.0.0.0:3000" {
		t.Errorf("ServerAddr() = %q, want %q", cfg.ServerAddr(), "0.0.0.0:3000")
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true, want false")
	}
	if cfg.DBTarget() != "root:pw@tcp(localhost:3306)/tienda" {
		t.Errorf("DBTarget() = %q, want the DSN", cfg.DBTarget())
	}
	if !cfg.SeedAdmin() {
		t.Error("SeedAdmin() = false with admin credentials set")
	}
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
			wantErr: "GAMEATLAS_SESSION_SECRET",
		},
		{
			name:    "short secret",
			env:     map[string]string{"GAMEATLAS_SESSION_SECRET": "short"},
			wantErr: "at least 32 bytes",
		},
		{
			name:    "weak secret",
			env:     map[string]string{"GAMEATLAS_SESSION_SECRET": "change-me-to-32-byte-secret-key!"},
			wantErr: "known default",
		},
		{
			name: "unknown driver",
			env: map[string]string{
				"GAMEATLAS_SESSION_SECRET": testSecret,
				"GAMEATLAS_DB_DRIVER":      "postgres",
			},
			wantErr: "GAMEATLAS_DB_DRIVER",
		},
		{
			name: "mysql without dsn",
			env: map[string]string{
				"GAMEATLAS_SESSION_SECRET": testSecret,
				"GAMEATLAS_DB_DRIVER":      "mysql",
			},
			wantErr: "GAMEATLAS_DB_DSN",
		},
		{
			name: "zero retention",
			env: map[string]string{
				"GAMEATLAS_SESSION_SECRET":       testSecret,
				"GAMEATLAS_EVENT_RETENTION_DAYS": "0",
			},
			wantErr: "RETENTION",
		},
		{
			name: "bcrypt cost out of range",
			env: map[string]string{
				"GAMEATLAS_SESSION_SECRET": testSecret,
				"GAMEATLAS_BCRYPT_COST":    "2",
			},
			wantErr: "BCRYPT_COST",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("GAMEATLAS_SESSION_SECRET", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			if err == nil {
				t.Fatal("Load() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", false},
		{"aaaaaaaaaaaaaaaaAAAAAAAAAAAAAAAA", false},
		{"aaaaaaaaaaaaaaaAAAAAAAAAAAAAAAA1", true},
		{testSecret, true},
	}

	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
		}
	}
}

func TestLoad_TrustedOrigins(t *testing.T) {
	t.Setenv("GAMEATLAS_SESSION_SECRET", testSecret)
	t.Setenv("GAMEATLAS_TRUSTED_ORIGINS", "tienda.example.com,www.tienda.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	want := []string{"tienda.example.com", "www.tienda.example.com"}
	if strings.Join(cfg.TrustedOrigins, ",") != strings.Join(want, ",") {
		t.Errorf("TrustedOrigins = %v, want %v", cfg.TrustedOrigins, want)
	}
}
