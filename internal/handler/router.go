// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"io/fs"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/gameatlas/internal/config"
	"github.com/olegiv/gameatlas/internal/covers"
	"github.com/olegiv/gameatlas/internal/middleware"
	"github.com/olegiv/gameatlas/internal/render"
	"github.com/olegiv/gameatlas/internal/service"
	"github.com/olegiv/gameatlas/internal/session"
	"github.com/olegiv/gameatlas/internal/version"
)

// RouterConfig holds everything the HTTP layer depends on.
type RouterConfig struct {
	Config          *config.Config
	DB              *sql.DB
	State           *session.State
	Renderer        *render.Renderer
	Credentials     *service.Credentials
	Catalog         *service.Catalog
	Covers          *covers.Processor
	LoginProtection *middleware.LoginProtection
	Logger          *slog.Logger
	Version         version.Info

	// Assets holds the bundled stylesheet, rooted at its css/ directory's parent.
	Assets fs.FS
}

// NewRouter builds the storefront router.
func NewRouter(rc RouterConfig) http.Handler {
	cfg := rc.Config
	logger := rc.Logger
	if logger == nil {
		logger = slog.Default()
	}

	authHandler := NewAuthHandler(rc.Credentials, rc.State, rc.Renderer, rc.LoginProtection, logger)
	catalogHandler := NewCatalogHandler(rc.Catalog, rc.Covers, rc.Renderer, logger, cfg.MaxUploadBytes())
	cartHandler := NewCartHandler(rc.Catalog, rc.State, rc.Renderer, logger)
	healthHandler := NewHealthHandler(rc.DB, rc.Version)

	r := chi.NewRouter()

	// Middleware stack
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	r.Get(RouteHealth, healthHandler.Health)
	r.Handle(RouteStatic+"/*", http.StripPrefix(RouteStatic+"/", noDirListing(http.FileServer(http.Dir(rc.Covers.StaticDir())))))
	if rc.Assets != nil {
		r.Handle(RouteAssets+"/*", http.StripPrefix(RouteAssets+"/", noDirListing(http.FileServerFS(rc.Assets))))
	}

	csrfMiddleware := middleware.CSRF(middleware.NewCSRFConfig(cfg))

	r.Group(func(r chi.Router) {
		r.Use(rc.State.Manager().LoadAndSave)
		r.Use(csrfMiddleware)

		r.Get(RouteRoot, func(w http.ResponseWriter, req *http.Request) {
			redirect(w, req, RouteGames)
		})

		// Auth routes; POSTs are rate limited per IP
		r.Get(RouteLogin, authHandler.LoginForm)
		r.Get(RouteRegister, authHandler.RegisterForm)
		r.Get(RouteLogout, authHandler.Logout)
		r.Group(func(r chi.Router) {
			if rc.LoginProtection != nil {
				r.Use(rc.LoginProtection.Middleware())
			}
			r.Post(RouteLogin, authHandler.Login)
			r.Post(RouteRegister, authHandler.Register)
		})

		// Public catalog
		r.Get(RouteGames, catalogHandler.List)
		r.Get(RouteSearch, catalogHandler.Search)
		r.Get(RoutePlayStation, catalogHandler.PlatformPage(PlatformPlayStation, RoutePlayStation, ""))
		r.Get(RouteXbox, catalogHandler.PlatformPage(PlatformXbox, RouteXbox, quickInsert))
		r.Get(RouteSteam, catalogHandler.PlatformPage(PlatformSteam, RouteSteam, quickDelete))
		r.Get(RouteSwitch, catalogHandler.PlatformPage(PlatformSwitch, RouteSwitch, quickUpdate))

		// Catalog administration
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(rc.State))

			r.Post(RouteXbox, catalogHandler.QuickInsert(RouteXbox))
			r.Post(RouteSteam, catalogHandler.QuickDelete(RouteSteam))
			r.Post(RouteSwitch, catalogHandler.QuickUpdate(RouteSwitch))

			r.Get(RouteAddGame, catalogHandler.AddGameForm)
			r.Post(RouteAddGame, catalogHandler.AddGame)
			r.Post(RouteDeleteGame, catalogHandler.DeleteGame)
			r.Get(RouteEditGame, func(w http.ResponseWriter, req *http.Request) {
				redirect(w, req, RouteGames)
			})
			r.Get(RouteEditGame+RouteParamID, catalogHandler.EditGameForm)
			r.Post(RouteEditGame, catalogHandler.EditGame)
		})

		// Cart and checkout
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireUser(rc.State))

			r.Post(RouteAddToCart, cartHandler.Add)
			r.Get(RouteCart, cartHandler.View)
			r.Post(RouteRemoveFromCart, cartHandler.Remove)
			r.Get(RouteClearCart, cartHandler.Clear)
			r.Get(RouteCheckout, cartHandler.Checkout)
			r.Post(RouteProcessPayment, cartHandler.ProcessPayment)
		})
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.Error(w, "Página no encontrada", http.StatusNotFound)
	})

	return r
}

// noDirListing hides directory indexes served by http.FileServer.
func noDirListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "" || strings.HasSuffix(r.URL.Path, "/") {
			http.NotFound(w, r)
			return
		}
		next.ServeHTTP(w, r)
	})
}
