// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/gameatlas/internal/cart"
	"github.com/olegiv/gameatlas/internal/session"
	"github.com/olegiv/gameatlas/internal/store"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": {Data: []byte(`{{define "base"}}<nav>{{template "nav" .}}</nav>{{if .Flash}}<p class="{{.FlashType}}">{{.Flash}}</p>{{end}}{{template "content" .}}{{end}}`)},
		"partials/nav.html": {Data: []byte(`{{define "nav"}}{{if .LoggedIn}}{{.User.Name}} ({{.CartCount}}){{else}}anon{{end}}{{end}}`)},
		"pages/lista.html":  {Data: []byte(`{{define "content"}}{{range .Data}}{{price .}};{{end}}{{end}}`)},
	}
}

func TestNew_NoPages(t *testing.T) {
	_, err := New(Config{TemplatesFS: fstest.MapFS{
		"layouts/base.html": {Data: []byte(`{{define "base"}}{{end}}`)},
	}})
	if err == nil {
		t.Fatal("expected error when no page templates exist")
	}
}

func TestRender_UnknownTemplate(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if r.Has("missing") {
		t.Error("Has(missing) = true")
	}

	rec := httptest.NewRecorder()
	if err := r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), "missing", TemplateData{}); err == nil {
		t.Error("expected error for unknown template")
	}
}

func TestRender_WithoutSession(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	rec := httptest.NewRecorder()
	err = r.Render(rec, httptest.NewRequest(http.MethodGet, "/videojuegos", nil), "lista", TemplateData{
		Data: []float64{10, 2.5},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}

	body := rec.Body.String()
	if !strings.Contains(body, "10.00;2.50;") {
		t.Errorf("body = %q; want formatted prices", body)
	}
	if !strings.Contains(body, "anon") {
		t.Errorf("body = %q; want anonymous nav", body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestRender_SessionDataAndFlash(t *testing.T) {
	sm := scs.New()
	state := session.NewState(sm)

	r, err := New(Config{TemplatesFS: testFS(), State: state})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	var bodies []string
	handler := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := req.Context()
		if err := state.SignIn(ctx, store.User{ID: 7, Name: "ana", Email: "a@x.com"}); err != nil {
			t.Errorf("SignIn: %v", err)
		}
		state.AddToCart(ctx, cart.Item{ID: 1, Name: "Halo", Price: 20})
		r.SetFlash(req, "Juego añadido", FlashSuccess)

		for range 2 {
			rec := httptest.NewRecorder()
			if err := r.RenderStatus(rec, req, http.StatusTeapot, "lista", TemplateData{}); err != nil {
				t.Errorf("Render: %v", err)
			}
			if rec.Code != http.StatusTeapot {
				t.Errorf("status = %d; want %d", rec.Code, http.StatusTeapot)
			}
			bodies = append(bodies, rec.Body.String())
		}
	}))
	handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if len(bodies) != 2 {
		t.Fatalf("rendered %d times; want 2", len(bodies))
	}
	if !strings.Contains(bodies[0], "ana (1)") {
		t.Errorf("first body = %q; want user name and cart count", bodies[0])
	}
	if !strings.Contains(bodies[0], `<p class="success">Juego añadido</p>`) {
		t.Errorf("first body = %q; want flash", bodies[0])
	}
	if strings.Contains(bodies[1], "Juego añadido") {
		t.Errorf("second body = %q; flash should be shown once", bodies[1])
	}
}

func TestTemplateFuncs(t *testing.T) {
	funcs := TemplateFuncs()

	formatDateTime := funcs["formatDateTime"].(func(time.Time) string)
	if got := formatDateTime(time.Date(2025, time.March, 5, 9, 7, 0, 0, time.UTC)); got != "05/03/2025 09:07" {
		t.Errorf("formatDateTime() = %q; want 05/03/2025 09:07", got)
	}

	hasString := funcs["hasString"].(func([]string, string) bool)
	if !hasString([]string{"Steam", "Xbox"}, "Xbox") || hasString([]string{"Steam"}, "xbox") {
		t.Error("hasString should match exact names only")
	}

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{19.999, "20.00"},
		{59.5, "59.50"},
	}
	for _, tt := range tests {
		if got := FormatPrice(tt.in); got != tt.want {
			t.Errorf("FormatPrice(%v) = %q; want %q", tt.in, got, tt.want)
		}
	}
}
