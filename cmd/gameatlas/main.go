// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/olegiv/gameatlas/internal/auth"
	"github.com/olegiv/gameatlas/internal/config"
	"github.com/olegiv/gameatlas/internal/covers"
	"github.com/olegiv/gameatlas/internal/handler"
	"github.com/olegiv/gameatlas/internal/logging"
	"github.com/olegiv/gameatlas/internal/middleware"
	"github.com/olegiv/gameatlas/internal/render"
	"github.com/olegiv/gameatlas/internal/scheduler"
	"github.com/olegiv/gameatlas/internal/service"
	"github.com/olegiv/gameatlas/internal/session"
	"github.com/olegiv/gameatlas/internal/store"
	"github.com/olegiv/gameatlas/internal/version"
	"github.com/olegiv/gameatlas/web"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = ""
	appBuildTime = ""
)

func main() {
	// Parse CLI flags
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "GameAtlas - video game storefront\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GAMEATLAS_SESSION_SECRET        Session encryption key (required, min 32 bytes)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GAMEATLAS_DB_DRIVER             sqlite|mysql (default: sqlite)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GAMEATLAS_DB_PATH               SQLite database path (default: ./data/gameatlas.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GAMEATLAS_DB_DSN                MySQL DSN (required for mysql)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GAMEATLAS_SERVER_PORT           Server port (default: 8000)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GAMEATLAS_ENV                   Environment: development|production (default: development)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GAMEATLAS_STATIC_DIR            Cover image directory (default: ./static)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GAMEATLAS_ADMIN_EMAIL           Bootstrap administrator email (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GAMEATLAS_ADMIN_PASSWORD        Bootstrap administrator password (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GAMEATLAS_EVENT_RETENTION_DAYS  Days of event log to keep (default: 30)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  GAMEATLAS_TRUSTED_ORIGINS       Extra hosts allowed to submit forms (comma-separated)\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("gameatlas %s\n", buildInfo())
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func buildInfo() version.Info {
	return version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}
}

// parseLogLevel maps the configured level name to a slog level.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.LogLevel)
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	slog.SetDefault(slog.New(textHandler))

	dialect := store.Dialect(cfg.DBDriver)
	if dialect == store.DialectSQLite {
		if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	slog.Info("initializing database", "driver", cfg.DBDriver)
	db, err := store.Open(dialect, cfg.DBTarget())
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	slog.Info("running database migrations")
	if err := store.Migrate(db, dialect); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Upgrade logger to also write WARN and ERROR logs to the event log table
	logger := slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()
	if err := store.SeedPlatforms(ctx, db); err != nil {
		return fmt.Errorf("seeding platforms: %w", err)
	}
	if cfg.SeedAdmin() {
		hash, err := auth.HashPasswordCost(cfg.AdminPassword, cfg.BcryptCost)
		if err != nil {
			return fmt.Errorf("hashing admin password: %w", err)
		}
		if err := store.SeedAdmin(ctx, db, store.AdminSeed{
			Name:         cfg.AdminName,
			Email:        cfg.AdminEmail,
			PasswordHash: hash,
		}); err != nil {
			return fmt.Errorf("seeding admin: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.StaticDir, 0o755); err != nil {
		return fmt.Errorf("creating static directory: %w", err)
	}

	sessionManager := session.New(db, dialect, cfg.IsDevelopment())
	state := session.NewState(sessionManager)

	templatesFS, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		return fmt.Errorf("loading templates: %w", err)
	}
	assetsFS, err := fs.Sub(web.Static, "static")
	if err != nil {
		return fmt.Errorf("loading assets: %w", err)
	}

	renderer, err := render.New(render.Config{
		TemplatesFS: templatesFS,
		State:       state,
	})
	if err != nil {
		return fmt.Errorf("initializing renderer: %w", err)
	}

	credentials, err := service.NewCredentials(db, logger, cfg.BcryptCost)
	if err != nil {
		return fmt.Errorf("initializing credentials: %w", err)
	}
	catalog := service.NewCatalog(db, logger)

	loginProtection := middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig())
	defer loginProtection.Close()

	sched := scheduler.New(db, logger, cfg.EventRetentionDays)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	router := handler.NewRouter(handler.RouterConfig{
		Config:          cfg,
		DB:              db,
		State:           state,
		Renderer:        renderer,
		Credentials:     credentials,
		Catalog:         catalog,
		Covers:          covers.NewProcessor(cfg.StaticDir),
		LoginProtection: loginProtection,
		Logger:          logger,
		Version:         buildInfo(),
		Assets:          assetsFS,
	})

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           router,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Cover uploads on slow connections
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env, "version", buildInfo().String())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	// Wait for interrupt signal or a listener failure
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case err, ok := <-serverErr:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
	}

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
