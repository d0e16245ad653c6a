// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/gameatlas/internal/covers"
	"github.com/olegiv/gameatlas/internal/render"
	"github.com/olegiv/gameatlas/internal/service"
	"github.com/olegiv/gameatlas/internal/store"
)

const (
	msgGameAdded     = "Videojuego agregado"
	msgGameUpdated   = "Videojuego actualizado"
	msgGameDeleted   = "Videojuego borrado"
	msgGameNotFound  = "El videojuego no existe"
	msgSaveFailed    = "No se pudo guardar el videojuego"
	msgCoverRequired = "La portada es obligatoria"
	msgCoverInvalid  = "La portada debe ser un PNG llamado exactamente «%s»"
	msgUploadTooBig  = "El archivo es demasiado grande"
)

// CatalogHandler serves the public listings and the admin catalog actions.
type CatalogHandler struct {
	catalog        *service.Catalog
	covers         *covers.Processor
	renderer       *render.Renderer
	logger         *slog.Logger
	maxUploadBytes int64
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *service.Catalog, processor *covers.Processor, renderer *render.Renderer, logger *slog.Logger, maxUploadBytes int64) *CatalogHandler {
	return &CatalogHandler{
		catalog:        catalog,
		covers:         processor,
		renderer:       renderer,
		logger:         logger.With("category", "catalog"),
		maxUploadBytes: maxUploadBytes,
	}
}

// List handles GET /videojuegos.
func (h *CatalogHandler) List(w http.ResponseWriter, r *http.Request) {
	games, err := h.catalog.ListAll(r.Context())
	if err != nil {
		// Store failures render as an empty catalog.
		games = nil
	}

	renderPage(w, r, h.renderer, pageGames, render.TemplateData{
		Title: "Videojuegos",
		Data: catalogPage{
			Heading: "Videojuegos",
			Games:   gameViewsWithPlatforms(games),
		},
	})
}

// Search handles GET /buscar?nombre=&genero=.
func (h *CatalogHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get(fieldName))
	genre := strings.TrimSpace(r.URL.Query().Get(fieldGenre))

	games, err := h.catalog.Search(r.Context(), name, genre)
	if err != nil {
		games = nil
	}

	renderPage(w, r, h.renderer, pageGames, render.TemplateData{
		Title: "Buscar",
		Data: catalogPage{
			Heading:   "Resultados de búsqueda",
			Games:     gameViews(games),
			Searching: true,
			Query:     name,
		},
	})
}

// PlatformPage returns the listing handler for one platform. Admins also get
// the quick action form posting back to path.
func (h *CatalogHandler) PlatformPage(platform, path, quickAction string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		games, err := h.catalog.ListByPlatform(r.Context(), platform)
		if err != nil {
			games = nil
		}

		page := catalogPage{
			Heading:     platform,
			Games:       gameViews(games),
			Platform:    platform,
			QuickAction: quickAction,
			ActionPath:  path,
		}
		if quickAction == quickInsert {
			page.Platforms = h.platforms(r)
		}

		renderPage(w, r, h.renderer, pageGames, render.TemplateData{
			Title: platform,
			Data:  page,
		})
	}
}

// QuickInsert handles POST /xbox: inserts a game linked to one platform.
func (h *CatalogHandler) QuickInsert(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			flashError(w, r, h.renderer, path, string(errMissingFields))
			return
		}

		game, err := parseGameForm(r)
		if err != nil {
			flashError(w, r, h.renderer, path, err.Error())
			return
		}

		platform := strings.TrimSpace(r.FormValue(fieldPlatform))
		result, err := h.catalog.Insert(r.Context(), game, platform)
		if err != nil {
			flashError(w, r, h.renderer, path, msgSaveFailed)
			return
		}

		for _, link := range result.Links {
			if link.Outcome == service.SkippedUnknownPlatform {
				h.logger.Info("platform not linked", "game_id", result.GameID, "platform", link.Platform)
			}
		}
		flashSuccess(w, r, h.renderer, path, msgGameAdded)
	}
}

// QuickDelete handles POST /steam: deletes the game with the posted id.
func (h *CatalogHandler) QuickDelete(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.deleteGame(w, r, fieldID, path)
	}
}

// QuickUpdate handles POST /switch: overwrites the posted game's columns.
func (h *CatalogHandler) QuickUpdate(path string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			flashError(w, r, h.renderer, path, string(errMissingFields))
			return
		}

		id, err := parseID(r.FormValue(fieldID))
		if err != nil {
			flashError(w, r, h.renderer, path, err.Error())
			return
		}
		game, err := parseGameForm(r)
		if err != nil {
			flashError(w, r, h.renderer, path, err.Error())
			return
		}

		if err := h.catalog.Update(r.Context(), id, game); err != nil {
			flashError(w, r, h.renderer, path, msgSaveFailed)
			return
		}
		flashSuccess(w, r, h.renderer, path, msgGameUpdated)
	}
}

// DeleteGame handles POST /borrar-juego.
func (h *CatalogHandler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	h.deleteGame(w, r, fieldGameID, RouteGames)
}

func (h *CatalogHandler) deleteGame(w http.ResponseWriter, r *http.Request, field, back string) {
	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, back, string(errInvalidID))
		return
	}

	id, err := parseID(r.FormValue(field))
	if err != nil {
		flashError(w, r, h.renderer, back, err.Error())
		return
	}

	// The cover stays on disk when the row cannot be read; deletion goes ahead.
	game, findErr := h.catalog.FindByID(r.Context(), id)

	if err := h.catalog.Delete(r.Context(), id); err != nil {
		flashError(w, r, h.renderer, back, msgSaveFailed)
		return
	}

	if findErr == nil {
		if err := h.covers.Remove(game.Name); err != nil {
			h.logger.Warn("failed to remove cover", "game_id", id, "error", err)
		}
	}
	flashSuccess(w, r, h.renderer, back, msgGameDeleted)
}

// AddGameForm handles GET /agregar-juego.
func (h *CatalogHandler) AddGameForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, pageAddGame, render.TemplateData{
		Title: "Agregar videojuego",
		Data:  gameFormPage{Platforms: h.platforms(r)},
	})
}

// AddGame handles POST /agregar-juego: validates and stores the cover, then
// inserts the game with every selected platform.
func (h *CatalogHandler) AddGame(w http.ResponseWriter, r *http.Request) {
	if !h.parseMultipart(w, r, RouteAddGame) {
		return
	}

	game, err := parseGameForm(r)
	if err != nil {
		flashError(w, r, h.renderer, RouteAddGame, err.Error())
		return
	}

	platforms := formPlatforms(r)
	if len(platforms) == 0 {
		flashError(w, r, h.renderer, RouteAddGame, string(errNoPlatforms))
		return
	}

	saved, ok := h.saveCover(w, r, game.Name, RouteAddGame, true)
	if !ok {
		return
	}

	result, err := h.catalog.InsertWithPlatforms(r.Context(), game, platforms)
	if err != nil {
		if saved {
			if rmErr := h.covers.Remove(game.Name); rmErr != nil {
				h.logger.Warn("failed to remove orphaned cover", "name", game.Name, "error", rmErr)
			}
		}
		flashError(w, r, h.renderer, RouteAddGame, msgSaveFailed)
		return
	}

	if len(result.AssociatedPlatforms()) < len(platforms) {
		h.logger.Info("some platforms were not linked", "game_id", result.GameID,
			"requested", platforms, "linked", result.AssociatedPlatforms())
	}
	flashSuccess(w, r, h.renderer, RouteGames, msgGameAdded)
}

// EditGameForm handles GET /editar-juego/{id}.
func (h *CatalogHandler) EditGameForm(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		redirect(w, r, RouteGames)
		return
	}

	game, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrGameNotFound) {
			flashError(w, r, h.renderer, RouteGames, msgGameNotFound)
			return
		}
		redirect(w, r, RouteGames)
		return
	}

	current, err := h.catalog.PlatformsOf(r.Context(), id)
	if err != nil {
		current = nil
	}

	renderPage(w, r, h.renderer, pageEditGame, render.TemplateData{
		Title: "Editar videojuego",
		Data: gameFormPage{
			Game:      game,
			Current:   current,
			Platforms: h.platforms(r),
		},
	})
}

// EditGame handles POST /editar-juego. The cover and the platform list are
// only replaced when provided.
func (h *CatalogHandler) EditGame(w http.ResponseWriter, r *http.Request) {
	if !h.parseMultipart(w, r, RouteGames) {
		return
	}

	id, err := parseID(r.FormValue(fieldGameID))
	if err != nil {
		flashError(w, r, h.renderer, RouteGames, err.Error())
		return
	}
	back := RouteEditGame + "/" + strconv.FormatInt(id, 10)

	game, err := parseGameForm(r)
	if err != nil {
		flashError(w, r, h.renderer, back, err.Error())
		return
	}

	current, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		redirect(w, r, RouteGames)
		return
	}

	saved, ok := h.saveCover(w, r, game.Name, back, false)
	if !ok {
		return
	}

	if err := h.catalog.Update(r.Context(), id, game); err != nil {
		if saved && current.Name != game.Name {
			_ = h.covers.Remove(game.Name)
		}
		flashError(w, r, h.renderer, back, msgSaveFailed)
		return
	}
	h.moveCover(current.Name, game.Name, saved)

	if platforms := formPlatforms(r); len(platforms) > 0 {
		if _, err := h.catalog.ReplacePlatforms(r.Context(), id, platforms); err != nil {
			flashError(w, r, h.renderer, back, msgSaveFailed)
			return
		}
	}

	flashSuccess(w, r, h.renderer, RouteGames, msgGameUpdated)
}

// moveCover keeps the cover files in step with a renamed game. A freshly
// uploaded cover replaces the old files, otherwise they follow the new name.
func (h *CatalogHandler) moveCover(oldName, newName string, uploaded bool) {
	if oldName == newName {
		return
	}
	var err error
	if uploaded {
		err = h.covers.Remove(oldName)
	} else {
		err = h.covers.Rename(oldName, newName)
	}
	if err != nil {
		h.logger.Warn("failed to update cover after rename", "old_name", oldName, "name", newName, "error", err)
	}
}

// parseMultipart parses an upload form within the configured size limit.
func (h *CatalogHandler) parseMultipart(w http.ResponseWriter, r *http.Request, back string) bool {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			flashError(w, r, h.renderer, back, msgUploadTooBig)
			return false
		}
		flashError(w, r, h.renderer, back, string(errMissingFields))
		return false
	}
	return true
}

// saveCover stores the uploaded cover for gameName. saved reports whether a
// file was written; ok is false once a redirect has been sent.
func (h *CatalogHandler) saveCover(w http.ResponseWriter, r *http.Request, gameName, back string, required bool) (saved, ok bool) {
	file, header, err := r.FormFile(fieldCover)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) && !required {
			return false, true
		}
		h.logger.Warn("cover upload missing", "name", gameName, "error", covers.ErrMissingCoverImage)
		flashError(w, r, h.renderer, back, msgCoverRequired)
		return false, false
	}
	defer func() { _ = file.Close() }()

	if header.Filename == "" && !required {
		return false, true
	}

	if _, err := h.covers.Save(file, gameName, header.Filename); err != nil {
		h.logger.Warn("cover rejected", "name", gameName, "filename", header.Filename, "error", err)
		flashError(w, r, h.renderer, back, coverErrorMessage(err, gameName))
		return false, false
	}
	return true, true
}

// coverErrorMessage maps cover validation failures to a user message.
func coverErrorMessage(err error, gameName string) string {
	switch {
	case errors.Is(err, covers.ErrNotPNG), errors.Is(err, covers.ErrFilenameMismatch):
		return fmt.Sprintf(msgCoverInvalid, covers.Filename(gameName))
	case errors.Is(err, covers.ErrInvalidName):
		return "El nombre del videojuego no es válido como nombre de archivo"
	case errors.Is(err, covers.ErrImageTooLarge):
		return "La imagen es demasiado grande"
	default:
		return msgSaveFailed
	}
}

// platforms returns the reference table, empty on failure.
func (h *CatalogHandler) platforms(r *http.Request) []store.Platform {
	platforms, err := h.catalog.Platforms(r.Context())
	if err != nil {
		return nil
	}
	return platforms
}
