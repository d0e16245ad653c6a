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

	"github.com/olegiv/gameatlas/internal/store"
)

// AssociationOutcome is the result of linking one platform name to a game.
type AssociationOutcome int

// Association outcomes.
const (
	Associated AssociationOutcome = iota
	SkippedUnknownPlatform
)

func (o AssociationOutcome) String() string {
	switch o {
	case Associated:
		return "associated"
	case SkippedUnknownPlatform:
		return "skipped_unknown_platform"
	default:
		return fmt.Sprintf("AssociationOutcome(%d)", int(o))
	}
}

// PlatformLink records what happened to one requested platform name.
type PlatformLink struct {
	Platform string
	Outcome  AssociationOutcome
}

// InsertResult is returned by the insert operations.
type InsertResult struct {
	GameID int64
	Links  []PlatformLink
}

// AssociatedPlatforms returns the names that were linked.
func (r InsertResult) AssociatedPlatforms() []string {
	return associated(r.Links)
}

func associated(links []PlatformLink) []string {
	names := []string{}
	for _, l := range links {
		if l.Outcome == Associated {
			names = append(names, l.Platform)
		}
	}
	return names
}

// Catalog owns games and their platform associations.
// Writers run in one transaction each and roll back on any failure.
type Catalog struct {
	db      *sql.DB
	queries *store.Queries
	logger  *slog.Logger
}

// NewCatalog creates a Catalog service.
func NewCatalog(db *sql.DB, logger *slog.Logger) *Catalog {
	return &Catalog{
		db:      db,
		queries: store.New(db),
		logger:  logger,
	}
}

// ListAll returns every game with its platform names.
func (c *Catalog) ListAll(ctx context.Context) ([]store.GameWithPlatforms, error) {
	games, err := c.queries.ListGamesWithPlatforms(ctx)
	if err != nil {
		c.logger.Error("failed to list games", "error", err, "category", categoryCatalog)
		return nil, fmt.Errorf("listing games: %w", err)
	}
	return games, nil
}

// ListByPlatform returns games linked to the exact platform name, sorted by name.
func (c *Catalog) ListByPlatform(ctx context.Context, platform string) ([]store.Game, error) {
	games, err := c.queries.ListGamesByPlatform(ctx, platform)
	if err != nil {
		c.logger.Error("failed to list games by platform", "platform", platform, "error", err, "category", categoryCatalog)
		return nil, fmt.Errorf("listing games for %s: %w", platform, err)
	}
	return games, nil
}

// FindByID returns ErrGameNotFound for unknown ids.
func (c *Catalog) FindByID(ctx context.Context, id int64) (store.Game, error) {
	game, err := c.queries.GetGameByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Game{}, ErrGameNotFound
	}
	if err != nil {
		c.logger.Error("failed to get game", "game_id", id, "error", err, "category", categoryCatalog)
		return store.Game{}, fmt.Errorf("getting game %d: %w", id, err)
	}
	return game, nil
}

// Search applies the non-empty filters: name as a case-insensitive
// substring and genre as an exact match. Results are sorted by name.
func (c *Catalog) Search(ctx context.Context, name, genre string) ([]store.Game, error) {
	games, err := c.queries.SearchGames(ctx, store.SearchGamesParams{
		Name:  strings.TrimSpace(name),
		Genre: strings.TrimSpace(genre),
	})
	if err != nil {
		c.logger.Error("failed to search games", "name", name, "genre", genre, "error", err, "category", categoryCatalog)
		return nil, fmt.Errorf("searching games: %w", err)
	}
	return games, nil
}

// Insert creates a game linked to at most one platform.
// An unknown platform leaves the game without association.
func (c *Catalog) Insert(ctx context.Context, game store.GameParams, platform string) (InsertResult, error) {
	return c.InsertWithPlatforms(ctx, game, []string{platform})
}

// InsertWithPlatforms creates a game and links each known platform name.
// All rows commit together or not at all.
func (c *Catalog) InsertWithPlatforms(ctx context.Context, game store.GameParams, platforms []string) (InsertResult, error) {
	var result InsertResult

	err := c.withTx(ctx, func(q *store.Queries) error {
		id, err := q.CreateGame(ctx, game)
		if err != nil {
			return fmt.Errorf("inserting game: %w", err)
		}
		result.GameID = id

		links, err := linkPlatforms(ctx, q, id, platforms)
		if err != nil {
			return err
		}
		result.Links = links
		return nil
	})
	if err != nil {
		c.logger.Error("failed to insert game", "name", game.Name, "error", err, "category", categoryCatalog)
		return InsertResult{}, err
	}

	c.logger.Info("game inserted", "game_id", result.GameID, "name", game.Name,
		"platforms", result.AssociatedPlatforms(), "category", categoryCatalog)
	return result, nil
}

// Update overwrites name, price, genre and rating. Platform links are untouched.
func (c *Catalog) Update(ctx context.Context, id int64, game store.GameParams) error {
	if err := c.queries.UpdateGame(ctx, id, game); err != nil {
		c.logger.Error("failed to update game", "game_id", id, "error", err, "category", categoryCatalog)
		return fmt.Errorf("updating game %d: %w", id, err)
	}
	return nil
}

// ReplacePlatforms removes every link of the game, then links each known name.
func (c *Catalog) ReplacePlatforms(ctx context.Context, id int64, platforms []string) ([]PlatformLink, error) {
	var links []PlatformLink

	err := c.withTx(ctx, func(q *store.Queries) error {
		if err := q.DeleteGamePlatforms(ctx, id); err != nil {
			return fmt.Errorf("deleting platform links: %w", err)
		}
		var err error
		links, err = linkPlatforms(ctx, q, id, platforms)
		return err
	})
	if err != nil {
		c.logger.Error("failed to replace platforms", "game_id", id, "error", err, "category", categoryCatalog)
		return nil, err
	}
	return links, nil
}

// Delete removes the game and its links. Unknown ids are a no-op.
func (c *Catalog) Delete(ctx context.Context, id int64) error {
	err := c.withTx(ctx, func(q *store.Queries) error {
		if err := q.DeleteGamePlatforms(ctx, id); err != nil {
			return fmt.Errorf("deleting platform links: %w", err)
		}
		if err := q.DeleteGame(ctx, id); err != nil {
			return fmt.Errorf("deleting game: %w", err)
		}
		return nil
	})
	if err != nil {
		c.logger.Error("failed to delete game", "game_id", id, "error", err, "category", categoryCatalog)
		return err
	}

	c.logger.Info("game deleted", "game_id", id, "category", categoryCatalog)
	return nil
}

// PlatformsOf returns the platform names linked to the game, empty if none.
func (c *Catalog) PlatformsOf(ctx context.Context, id int64) ([]string, error) {
	names, err := c.queries.ListPlatformNamesForGame(ctx, id)
	if err != nil {
		c.logger.Error("failed to list platforms of game", "game_id", id, "error", err, "category", categoryCatalog)
		return nil, fmt.Errorf("listing platforms of game %d: %w", id, err)
	}
	return names, nil
}

// Platforms returns the platform reference table.
func (c *Catalog) Platforms(ctx context.Context) ([]store.Platform, error) {
	platforms, err := c.queries.ListPlatforms(ctx)
	if err != nil {
		c.logger.Error("failed to list platforms", "error", err, "category", categoryCatalog)
		return nil, fmt.Errorf("listing platforms: %w", err)
	}
	return platforms, nil
}

// linkPlatforms resolves each name and inserts a join row for known ones.
// Blank and repeated names are ignored.
func linkPlatforms(ctx context.Context, q *store.Queries, gameID int64, platforms []string) ([]PlatformLink, error) {
	links := make([]PlatformLink, 0, len(platforms))
	seen := make(map[string]bool, len(platforms))

	for _, name := range platforms {
		name = strings.TrimSpace(name)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true

		platformID, err := q.GetPlatformIDByName(ctx, name)
		if errors.Is(err, sql.ErrNoRows) {
			links = append(links, PlatformLink{Platform: name, Outcome: SkippedUnknownPlatform})
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("resolving platform %q: %w", name, err)
		}

		if err := q.CreateGamePlatform(ctx, gameID, platformID); err != nil {
			return nil, fmt.Errorf("linking platform %q: %w", name, err)
		}
		links = append(links, PlatformLink{Platform: name, Outcome: Associated})
	}

	return links, nil
}

func (c *Catalog) withTx(ctx context.Context, fn func(q *store.Queries) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(c.queries.WithTx(tx)); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
