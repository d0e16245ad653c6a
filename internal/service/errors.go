// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service holds the credential and catalog logic shared by the
// HTTP handlers. Store failures are returned wrapped so callers can tell
// them apart from the sentinel outcomes below.
package service

import "errors"

// Sentinel errors returned by the services.
var (
	ErrGameNotFound       = errors.New("game not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

// Log categories attached to service log records.
const (
	categoryAuth    = "auth"
	categoryCatalog = "catalog"
)
