// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strings"

	"filippo.io/csrf/gorilla"

	"github.com/olegiv/gameatlas/internal/config"
)

// CSRFConfig configures cross-origin form protection. Checks are based on
// Fetch metadata and the Origin header; forms carry no token.
type CSRFConfig struct {
	// AuthKey is required by the gorilla-compatible API; the session secret is used.
	AuthKey []byte

	// ErrorHandler replaces the default 403 response.
	ErrorHandler http.Handler

	// TrustedOrigins lists host[:port] values allowed to post cross-origin.
	TrustedOrigins []string
}

// NewCSRFConfig builds the protection settings for the storefront. The
// configured extra origins are always trusted; in development the listen
// address (and its loopback aliases) is trusted too.
func NewCSRFConfig(cfg *config.Config) CSRFConfig {
	return CSRFConfig{
		AuthKey:        []byte(cfg.SessionSecret),
		TrustedOrigins: trustedOrigins(cfg.ServerAddr(), cfg.TrustedOrigins, cfg.IsDevelopment()),
	}
}

// loopbackHosts are listen hosts reachable in a browser as localhost.
var loopbackHosts = []string{"", "localhost", "127.0.0.1", "0.0.0.0", "::", "::1"}

func trustedOrigins(serverAddr string, extra []string, isDev bool) []string {
	var origins []string
	add := func(origin string) {
		// The library compares against the Origin host, so schemes are dropped.
		origin = strings.TrimSuffix(origin, "/")
		if i := strings.Index(origin, "://"); i >= 0 {
			origin = origin[i+3:]
		}
		origin = strings.TrimSpace(origin)
		if origin != "" && !slices.Contains(origins, origin) {
			origins = append(origins, origin)
		}
	}

	for _, origin := range extra {
		add(origin)
	}

	if isDev {
		host, port, err := net.SplitHostPort(serverAddr)
		switch {
		case err != nil:
			slog.Warn("cannot derive trusted origin from server address", "addr", serverAddr, "error", err)
		case slices.Contains(loopbackHosts, host):
			add(net.JoinHostPort("localhost", port))
			add(net.JoinHostPort("127.0.0.1", port))
		default:
			add(serverAddr)
		}
	}

	return origins
}

// CSRF returns a middleware that rejects cross-origin state-changing requests.
func CSRF(cfg CSRFConfig) func(http.Handler) http.Handler {
	errorHandler := cfg.ErrorHandler
	if errorHandler == nil {
		errorHandler = http.HandlerFunc(csrfErrorHandler)
	}
	opts := []csrf.Option{csrf.ErrorHandler(errorHandler)}

	if len(cfg.TrustedOrigins) > 0 {
		opts = append(opts, csrf.TrustedOrigins(cfg.TrustedOrigins))
	}

	return csrf.Protect(cfg.AuthKey, opts...)
}

func csrfErrorHandler(w http.ResponseWriter, r *http.Request) {
	reason := "unknown"
	if err := csrf.FailureReason(r); err != nil {
		reason = err.Error()
	}
	slog.Warn("cross-origin form rejected",
		"reason", reason,
		"method", r.Method,
		"path", r.URL.Path,
		"origin", r.Header.Get("Origin"),
		"sec_fetch_site", r.Header.Get("Sec-Fetch-Site"),
		"category", "auth",
	)
	http.Error(w, "Prohibido: la validación CSRF falló", http.StatusForbidden)
}
