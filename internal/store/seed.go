// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultPlatforms is the platform reference data every installation starts with.
var DefaultPlatforms = []string{"PlayStation", "Xbox", "Steam", "Switch"}

// SeedPlatforms inserts any missing platform from DefaultPlatforms.
func SeedPlatforms(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	for _, name := range DefaultPlatforms {
		_, err := queries.GetPlatformIDByName(ctx, name)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("checking platform %q: %w", name, err)
		}
		if _, err := queries.CreatePlatform(ctx, name); err != nil {
			return fmt.Errorf("creating platform %q: %w", name, err)
		}
		slog.Info("seeded platform", "name", name)
	}

	return nil
}

// AdminSeed describes the bootstrap administrator account.
type AdminSeed struct {
	Name         string
	Email        string
	PasswordHash string
}

// SeedAdmin creates the administrator account unless the email is already registered.
func SeedAdmin(ctx context.Context, db *sql.DB, admin AdminSeed) error {
	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, admin.Email)
	if err == nil {
		slog.Info("admin user already exists, skipping seed", "email", admin.Email)
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("checking for admin user: %w", err)
	}

	user, err := queries.CreateUser(ctx, CreateUserParams{
		Name:         admin.Name,
		Email:        admin.Email,
		PasswordHash: admin.PasswordHash,
		IsAdmin:      true,
	})
	if err != nil {
		return fmt.Errorf("creating admin user: %w", err)
	}

	slog.Info("created admin user", "id", user.ID, "email", user.Email)
	return nil
}
