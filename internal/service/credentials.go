// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/olegiv/gameatlas/internal/auth"
	"github.com/olegiv/gameatlas/internal/store"
)

// mysqlDuplicateEntry is the server error number for a UNIQUE violation.
const mysqlDuplicateEntry = 1062

// Credentials owns user records and password verification.
type Credentials struct {
	queries   *store.Queries
	logger    *slog.Logger
	cost      int
	dummyHash string
}

// NewCredentials creates a Credentials service hashing with the given bcrypt cost.
func NewCredentials(db *sql.DB, logger *slog.Logger, cost int) (*Credentials, error) {
	// Compared against when the email is unknown so both failure paths cost one bcrypt run.
	dummy, err := auth.HashPasswordCost("gameatlas-dummy-password", cost)
	if err != nil {
		return nil, fmt.Errorf("preparing dummy hash: %w", err)
	}
	return &Credentials{
		queries:   store.New(db),
		logger:    logger,
		cost:      cost,
		dummyHash: dummy,
	}, nil
}

// HashPassword returns a salted hash; two calls with the same input differ.
func (s *Credentials) HashPassword(password string) (string, error) {
	return auth.HashPasswordCost(password, s.cost)
}

// Verify reports whether password matches hash. Malformed hashes never match.
func (s *Credentials) Verify(password, hash string) bool {
	ok, err := auth.CheckPassword(password, hash)
	if err != nil {
		s.logger.Warn("malformed password hash", "error", err, "category", categoryAuth)
		return false
	}
	return ok
}

// FindByEmail returns ErrUserNotFound when no user has the email.
func (s *Credentials) FindByEmail(ctx context.Context, email string) (store.User, error) {
	user, err := s.queries.GetUserByEmail(ctx, email)
	if errors.Is(err, sql.ErrNoRows) {
		return store.User{}, ErrUserNotFound
	}
	if err != nil {
		return store.User{}, fmt.Errorf("finding user by email: %w", err)
	}
	return user, nil
}

// NewUser holds the fields of a user to insert. PasswordHash must already be hashed.
type NewUser struct {
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
}

// Insert persists a user and returns it with the assigned id.
// A UNIQUE violation on the email maps to ErrEmailTaken.
func (s *Credentials) Insert(ctx context.Context, u NewUser) (store.User, error) {
	user, err := s.queries.CreateUser(ctx, store.CreateUserParams{
		Name:         u.Name,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		IsAdmin:      u.IsAdmin,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return store.User{}, ErrEmailTaken
		}
		s.logger.Error("failed to insert user", "error", err, "category", categoryAuth)
		return store.User{}, fmt.Errorf("inserting user: %w", err)
	}
	return user, nil
}

// Authenticate returns the user when email and password match. Unknown
// email and wrong password both yield ErrInvalidCredentials.
func (s *Credentials) Authenticate(ctx context.Context, email, password string) (store.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		_ = s.Verify(password, s.dummyHash)
		return store.User{}, ErrInvalidCredentials
	}
	if err != nil {
		s.logger.Error("failed to look up user", "error", err, "category", categoryAuth)
		return store.User{}, err
	}

	if !s.Verify(password, user.PasswordHash) {
		return store.User{}, ErrInvalidCredentials
	}

	if auth.NeedsRehash(user.PasswordHash, s.cost) {
		s.rehash(ctx, user.ID, password)
	}

	return user, nil
}

// rehash upgrades a stored hash to the current cost. Failure is logged only.
func (s *Credentials) rehash(ctx context.Context, userID int64, password string) {
	hash, err := s.HashPassword(password)
	if err != nil {
		s.logger.Warn("failed to rehash password", "user_id", userID, "error", err, "category", categoryAuth)
		return
	}
	if err := s.queries.UpdateUserPassword(ctx, userID, hash); err != nil {
		s.logger.Warn("failed to store rehashed password", "user_id", userID, "error", err, "category", categoryAuth)
	}
}

// Registration is the submitted sign-up form.
type Registration struct {
	Name            string
	Email           string
	Password        string
	ConfirmPassword string
}

// Register validates the form and creates a non-admin user.
func (s *Credentials) Register(ctx context.Context, r Registration) (store.User, error) {
	if r.Password != r.ConfirmPassword {
		return store.User{}, ErrPasswordMismatch
	}

	// Fast path; the UNIQUE constraint still decides concurrent sign-ups.
	if _, err := s.FindByEmail(ctx, r.Email); err == nil {
		return store.User{}, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return store.User{}, err
	}

	hash, err := s.HashPassword(r.Password)
	if err != nil {
		return store.User{}, err
	}

	user, err := s.Insert(ctx, NewUser{
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: hash,
	})
	if err != nil {
		return store.User{}, err
	}

	s.logger.Info("user registered", "user_id", user.ID, "category", categoryAuth)
	return user, nil
}

// isUniqueViolation detects UNIQUE constraint errors from either backend.
func isUniqueViolation(err error) bool {
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
