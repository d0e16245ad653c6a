// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import "time"

// User is a row of the usuarios table.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string
	IsAdmin      bool
}

// Game is a row of the videojuegos table.
type Game struct {
	ID     int64
	Name   string
	Price  float64
	Genre  string
	Rating float64
}

// GameWithPlatforms is a game together with the names of its platforms.
// Platforms is empty for games without any association.
type GameWithPlatforms struct {
	Game
	Platforms []string
}

// Platform is a row of the consolas reference table.
type Platform struct {
	ID   int64
	Name string
}

// Event is a row of the eventos table.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Metadata  string
	CreatedAt time.Time
}
