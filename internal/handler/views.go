// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/url"
	"time"

	"github.com/olegiv/gameatlas/internal/cart"
	"github.com/olegiv/gameatlas/internal/covers"
	"github.com/olegiv/gameatlas/internal/store"
)

// gameView is a catalog row as shown on listing pages.
type gameView struct {
	ID        int64
	Name      string
	Price     float64
	Genre     string
	Rating    float64
	Platforms []string
	Cover     string
	Thumb     string
}

func newGameView(g store.Game, platforms []string) gameView {
	file := url.PathEscape(covers.Filename(g.Name))
	return gameView{
		ID:        g.ID,
		Name:      g.Name,
		Price:     g.Price,
		Genre:     g.Genre,
		Rating:    g.Rating,
		Platforms: platforms,
		Cover:     RouteStatic + "/" + file,
		Thumb:     RouteStatic + "/" + covers.ThumbnailDir + "/" + file,
	}
}

func gameViews(games []store.Game) []gameView {
	views := make([]gameView, 0, len(games))
	for _, g := range games {
		views = append(views, newGameView(g, nil))
	}
	return views
}

func gameViewsWithPlatforms(games []store.GameWithPlatforms) []gameView {
	views := make([]gameView, 0, len(games))
	for _, g := range games {
		views = append(views, newGameView(g.Game, g.Platforms))
	}
	return views
}

// Quick actions offered to admins on the platform pages.
const (
	quickInsert = "insert"
	quickDelete = "delete"
	quickUpdate = "update"
)

// catalogPage feeds the listing template.
type catalogPage struct {
	Heading     string
	Games       []gameView
	Searching   bool
	Query       string
	Platform    string
	QuickAction string
	ActionPath  string
	Platforms   []store.Platform
}

// credentialsPage feeds the login and sign-up templates.
type credentialsPage struct {
	Name  string
	Email string
	Error string
}

// gameFormPage feeds the add and edit templates.
type gameFormPage struct {
	Game      store.Game
	Current   []string
	Platforms []store.Platform
}

// cartPage feeds the cart and checkout templates.
type cartPage struct {
	Items []cart.Item
	Total float64
}

// receiptPage feeds the checkout success template.
type receiptPage struct {
	OrderRef  string
	Method    string
	UserName  string
	PaidAt    time.Time
	ItemCount int
	Total     float64
}
