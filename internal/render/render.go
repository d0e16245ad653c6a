// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render renders the storefront's server-side HTML pages.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/olegiv/gameatlas/internal/session"
)

// Session keys holding the one-shot flash message.
const (
	flashKey     = "flash"
	flashTypeKey = "flash_type"
)

// Flash message types.
const (
	FlashInfo    = "info"
	FlashSuccess = "success"
	FlashError   = "error"
)

const (
	baseLayout  = "layouts/base.html"
	partialsDir = "partials"
	pagesDir    = "pages"
)

// Renderer handles template rendering with caching.
type Renderer struct {
	templates map[string]*template.Template
	state     *session.State
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS fs.FS
	State       *session.State
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates: make(map[string]*template.Template),
		state:     cfg.State,
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses every page together with the base layout and partials.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := templateFiles(templatesFS, partialsDir)
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}

	pages, err := templateFiles(templatesFS, pagesDir)
	if err != nil {
		return fmt.Errorf("getting pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found in %s", pagesDir)
	}

	for _, tmplPath := range pages {
		name := strings.TrimSuffix(path.Base(tmplPath), ".html")

		// Parse in order: base layout, partials, page template
		files := []string{baseLayout}
		files = append(files, partials...)
		files = append(files, tmplPath)

		tmpl, err := template.New("").Funcs(TemplateFuncs()).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}

		r.templates[name] = tmpl
	}

	return nil
}

// templateFiles returns all .html files in a directory. A missing directory
// yields no files.
func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// Has reports whether a page template with the given name exists.
func (r *Renderer) Has(name string) bool {
	_, ok := r.templates[name]
	return ok
}

// TemplateFuncs returns the custom template functions.
func TemplateFuncs() template.FuncMap {
	return template.FuncMap{
		"price": FormatPrice,
		"formatDateTime": func(t time.Time) string {
			return t.Format(DateTimeLayout)
		},
		"join": strings.Join,
		"hasString": func(list []string, s string) bool {
			return slices.Contains(list, s)
		},
		"add": func(a, b int) int {
			return a + b
		},
	}
}

// DateTimeLayout is the day-first layout used for user-facing timestamps.
const DateTimeLayout = "02/01/2006 15:04"

// FormatPrice formats an amount with two decimals.
func FormatPrice(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Data        any
	Flash       string
	FlashType   string
	CurrentYear int
	CurrentPath string

	// Filled from the session.
	User      session.Identity
	LoggedIn  bool
	IsAdmin   bool
	CartCount int
}

// Render renders a page template with a 200 status.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a page template with the given status code.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	data.CurrentPath = req.URL.Path

	if r.state != nil {
		ctx := req.Context()
		data.User, data.LoggedIn = r.state.Identity(ctx)
		data.IsAdmin = data.User.IsAdmin
		data.CartCount = r.state.CartCount(ctx)

		if data.Flash == "" {
			data.Flash, data.FlashType = r.PopFlash(req)
		}
	}
	if data.Flash != "" && data.FlashType == "" {
		data.FlashType = FlashInfo
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.state == nil {
		return
	}
	sm := r.state.Manager()
	sm.Put(req.Context(), flashKey, message)
	sm.Put(req.Context(), flashTypeKey, flashType)
}

// PopFlash returns and removes the pending flash message.
func (r *Renderer) PopFlash(req *http.Request) (message, flashType string) {
	if r.state == nil {
		return "", ""
	}
	sm := r.state.Manager()
	message = sm.PopString(req.Context(), flashKey)
	if message == "" {
		return "", ""
	}
	flashType = sm.PopString(req.Context(), flashTypeKey)
	if flashType == "" {
		flashType = FlashInfo
	}
	return message, flashType
}
