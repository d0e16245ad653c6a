// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"sort"
	"strings"
)

// likeEscape is the escape character used for LIKE patterns.
const likeEscape = "!"

// GameParams holds the mutable columns of a game.
type GameParams struct {
	Name   string
	Price  float64
	Genre  string
	Rating float64
}

const createGame = `INSERT INTO videojuegos (nombre, precio, genero, valoracion) VALUES (?, ?, ?, ?)`

// CreateGame inserts a game row and returns the assigned id.
func (q *Queries) CreateGame(ctx context.Context, arg GameParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, createGame, arg.Name, arg.Price, arg.Genre, arg.Rating)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const getGameByID = `SELECT id, nombre, precio, genero, valoracion FROM videojuegos WHERE id = ?`

// GetGameByID returns sql.ErrNoRows when the id is unknown.
func (q *Queries) GetGameByID(ctx context.Context, id int64) (Game, error) {
	var g Game
	err := q.db.QueryRowContext(ctx, getGameByID, id).
		Scan(&g.ID, &g.Name, &g.Price, &g.Genre, &g.Rating)
	return g, err
}

const updateGame = `UPDATE videojuegos SET nombre = ?, precio = ?, genero = ?, valoracion = ? WHERE id = ?`

// UpdateGame overwrites every mutable column of the game.
func (q *Queries) UpdateGame(ctx context.Context, id int64, arg GameParams) error {
	_, err := q.db.ExecContext(ctx, updateGame, arg.Name, arg.Price, arg.Genre, arg.Rating, id)
	return err
}

const deleteGame = `DELETE FROM videojuegos WHERE id = ?`

// DeleteGame removes the game row only; join rows must be removed first.
func (q *Queries) DeleteGame(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteGame, id)
	return err
}

const listGamesWithPlatforms = `
SELECT v.id, v.nombre, v.precio, v.genero, v.valoracion, GROUP_CONCAT(c.nombre) AS consolas
FROM videojuegos v
LEFT JOIN videojuego_consola vc ON v.id = vc.videojuego_id
LEFT JOIN consolas c ON vc.consola_id = c.id
GROUP BY v.id, v.nombre, v.precio, v.genero, v.valoracion
ORDER BY v.id`

// ListGamesWithPlatforms returns every game with its aggregated platform names.
func (q *Queries) ListGamesWithPlatforms(ctx context.Context) ([]GameWithPlatforms, error) {
	rows, err := q.db.QueryContext(ctx, listGamesWithPlatforms)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []GameWithPlatforms
	for rows.Next() {
		var (
			g         GameWithPlatforms
			platforms sql.NullString
		)
		if err := rows.Scan(&g.ID, &g.Name, &g.Price, &g.Genre, &g.Rating, &platforms); err != nil {
			return nil, err
		}
		g.Platforms = splitPlatforms(platforms)
		items = append(items, g)
	}
	return items, rows.Err()
}

// splitPlatforms turns a GROUP_CONCAT value into a sorted slice.
// The aggregate order is unspecified by both SQLite and MySQL.
func splitPlatforms(v sql.NullString) []string {
	if !v.Valid || v.String == "" {
		return []string{}
	}
	names := strings.Split(v.String, ",")
	sort.Strings(names)
	return names
}

const listGamesByPlatform = `
SELECT v.id, v.nombre, v.precio, v.genero, v.valoracion
FROM videojuegos v
INNER JOIN videojuego_consola vc ON v.id = vc.videojuego_id
INNER JOIN consolas c ON vc.consola_id = c.id
WHERE c.nombre = ?
ORDER BY v.nombre`

// ListGamesByPlatform returns games associated with an exact platform name.
func (q *Queries) ListGamesByPlatform(ctx context.Context, platform string) ([]Game, error) {
	return q.queryGames(ctx, listGamesByPlatform, platform)
}

// SearchGamesParams holds the optional search filters. Empty fields are not applied.
type SearchGamesParams struct {
	Name  string
	Genre string
}

// SearchGames filters by case-insensitive name substring and exact genre.
func (q *Queries) SearchGames(ctx context.Context, arg SearchGamesParams) ([]Game, error) {
	var (
		sb   strings.Builder
		args []any
	)
	sb.WriteString(`SELECT id, nombre, precio, genero, valoracion FROM videojuegos WHERE 1=1`)

	if arg.Name != "" {
		sb.WriteString(` AND LOWER(nombre) LIKE ? ESCAPE '` + likeEscape + `'`)
		args = append(args, "%"+escapeLike(strings.ToLower(arg.Name))+"%")
	}
	if arg.Genre != "" {
		sb.WriteString(` AND genero = ?`)
		args = append(args, arg.Genre)
	}
	sb.WriteString(` ORDER BY nombre`)

	return q.queryGames(ctx, sb.String(), args...)
}

// escapeLike escapes LIKE wildcards so user input matches literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(likeEscape, likeEscape+likeEscape, "%", likeEscape+"%", "_", likeEscape+"_")
	return r.Replace(s)
}

func (q *Queries) queryGames(ctx context.Context, query string, args ...any) ([]Game, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Game
	for rows.Next() {
		var g Game
		if err := rows.Scan(&g.ID, &g.Name, &g.Price, &g.Genre, &g.Rating); err != nil {
			return nil, err
		}
		items = append(items, g)
	}
	return items, rows.Err()
}

const getPlatformIDByName = `SELECT id FROM consolas WHERE nombre = ?`

// GetPlatformIDByName returns sql.ErrNoRows for unknown platform names.
func (q *Queries) GetPlatformIDByName(ctx context.Context, name string) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, getPlatformIDByName, name).Scan(&id)
	return id, err
}

const createPlatform = `INSERT INTO consolas (nombre) VALUES (?)`

// CreatePlatform inserts a platform reference row.
func (q *Queries) CreatePlatform(ctx context.Context, name string) (int64, error) {
	res, err := q.db.ExecContext(ctx, createPlatform, name)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const listPlatforms = `SELECT id, nombre FROM consolas ORDER BY nombre`

// ListPlatforms returns the platform reference table.
func (q *Queries) ListPlatforms(ctx context.Context) ([]Platform, error) {
	rows, err := q.db.QueryContext(ctx, listPlatforms)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Platform
	for rows.Next() {
		var p Platform
		if err := rows.Scan(&p.ID, &p.Name); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

const createGamePlatform = `INSERT INTO videojuego_consola (videojuego_id, consola_id) VALUES (?, ?)`

// CreateGamePlatform inserts one join row.
func (q *Queries) CreateGamePlatform(ctx context.Context, gameID, platformID int64) error {
	_, err := q.db.ExecContext(ctx, createGamePlatform, gameID, platformID)
	return err
}

const deleteGamePlatforms = `DELETE FROM videojuego_consola WHERE videojuego_id = ?`

// DeleteGamePlatforms removes every join row of the game.
func (q *Queries) DeleteGamePlatforms(ctx context.Context, gameID int64) error {
	_, err := q.db.ExecContext(ctx, deleteGamePlatforms, gameID)
	return err
}

const listPlatformNamesForGame = `
SELECT c.nombre
FROM consolas c
INNER JOIN videojuego_consola vc ON c.id = vc.consola_id
WHERE vc.videojuego_id = ?
ORDER BY c.nombre`

// ListPlatformNamesForGame returns the platform names linked to a game.
func (q *Queries) ListPlatformNamesForGame(ctx context.Context, gameID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listPlatformNamesForGame, gameID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	names := []string{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
