// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request protection.
package middleware

import (
	"log/slog"
	"net/http"

	"github.com/olegiv/gameatlas/internal/session"
)

// LoginPath is where unauthenticated and unauthorized requests are sent.
const LoginPath = "/login"

// RequireUser creates middleware that requires a signed-in user.
// Anonymous requests are redirected to the login page.
func RequireUser(state *session.State) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !state.IsAuthenticated(r.Context()) {
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin creates middleware that requires the admin flag to be true.
// Anyone else, signed in or not, is redirected to the login page.
func RequireAdmin(state *session.State) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !state.IsAdmin(r.Context()) {
				if id, ok := state.Identity(r.Context()); ok {
					slog.Warn("access denied",
						"method", r.Method,
						"path", r.URL.Path,
						"user_id", id.UserID,
						"category", "auth",
					)
				}
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
