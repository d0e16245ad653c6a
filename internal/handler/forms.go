// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/olegiv/gameatlas/internal/store"
)

// formError is a validation failure whose text is shown to the user.
type formError string

func (e formError) Error() string { return string(e) }

const (
	errNameRequired   formError = "El nombre es obligatorio"
	errGenreRequired  formError = "El género es obligatorio"
	errInvalidPrice   formError = "El precio no es válido"
	errInvalidRating  formError = "La valoración debe estar entre 0 y 10"
	errInvalidID      formError = "Identificador no válido"
	errNoPlatforms    formError = "Selecciona al menos una consola"
	errMissingFields  formError = "Todos los campos son obligatorios"
	errMissingPayment formError = "Selecciona un método de pago"
)

const maxRating = 10

// parseGameForm reads the mutable game columns from a parsed form.
// The name is kept verbatim since the cover file name is derived from it.
func parseGameForm(r *http.Request) (store.GameParams, error) {
	game := store.GameParams{
		Name:  r.FormValue(fieldName),
		Genre: strings.TrimSpace(r.FormValue(fieldGenre)),
	}
	if strings.TrimSpace(game.Name) == "" {
		return game, errNameRequired
	}
	if game.Genre == "" {
		return game, errGenreRequired
	}

	price, err := parseNumber(r.FormValue(fieldPrice))
	if err != nil || price < 0 {
		return game, errInvalidPrice
	}
	game.Price = price

	rating, err := parseNumber(r.FormValue(fieldRating))
	if err != nil || rating < 0 || rating > maxRating {
		return game, errInvalidRating
	}
	game.Rating = rating

	return game, nil
}

// parseNumber accepts a decimal point or a decimal comma.
func parseNumber(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errInvalidPrice
	}
	return v, nil
}

// parseID parses a positive row id.
func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || id <= 0 {
		return 0, errInvalidID
	}
	return id, nil
}

// formPlatforms returns the submitted platform names in order, without blanks.
func formPlatforms(r *http.Request) []string {
	var names []string
	for _, v := range r.Form[fieldPlatforms] {
		if v = strings.TrimSpace(v); v != "" {
			names = append(names, v)
		}
	}
	return names
}
