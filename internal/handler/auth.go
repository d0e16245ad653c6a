// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/gameatlas/internal/middleware"
	"github.com/olegiv/gameatlas/internal/render"
	"github.com/olegiv/gameatlas/internal/service"
	"github.com/olegiv/gameatlas/internal/session"
)

const (
	msgInvalidCredentials = "Correo o contraseña incorrectos"
	msgRegistered         = "Registro exitoso. Por favor inicia sesión"
	msgPasswordMismatch   = "Las contraseñas no coinciden"
	msgEmailTaken         = "El correo ya está registrado"
	msgRegisterFailed     = "No se pudo completar el registro. Inténtalo de nuevo"
)

// AuthHandler handles login, sign-up and logout.
type AuthHandler struct {
	credentials     *service.Credentials
	state           *session.State
	renderer        *render.Renderer
	loginProtection *middleware.LoginProtection
	logger          *slog.Logger
}

// NewAuthHandler creates a new AuthHandler. lp may be nil to disable lockouts.
func NewAuthHandler(creds *service.Credentials, state *session.State, renderer *render.Renderer, lp *middleware.LoginProtection, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		credentials:     creds,
		state:           state,
		renderer:        renderer,
		loginProtection: lp,
		logger:          logger.With("category", "auth"),
	}
}

// LoginForm renders the login page. Signed-in users go to the catalog.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	if h.state.IsAuthenticated(r.Context()) {
		redirect(w, r, RouteRoot)
		return
	}
	renderPage(w, r, h.renderer, pageLogin, render.TemplateData{
		Title: "Iniciar sesión",
		Data:  credentialsPage{},
	})
}

// Login handles the login form submission.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.loginError(w, r, "", msgInvalidCredentials)
		return
	}

	email := strings.TrimSpace(r.FormValue(fieldEmail))
	password := r.FormValue(fieldPassword)
	if email == "" || password == "" {
		h.loginError(w, r, email, string(errMissingFields))
		return
	}

	if h.loginProtection != nil {
		if locked, remaining := h.loginProtection.IsAccountLocked(email); locked {
			h.logger.Warn("login attempt on locked account", "email", email, "ip", middleware.ClientIP(r))
			h.loginError(w, r, email, lockedMessage(remaining))
			return
		}
	}

	user, err := h.credentials.Authenticate(r.Context(), email, password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			h.logger.Error("login failed", "error", err)
			h.loginError(w, r, email, msgInvalidCredentials)
			return
		}

		h.logger.Warn("login failed: invalid credentials", "email", email, "ip", middleware.ClientIP(r))
		if h.loginProtection != nil {
			if locked, lockDuration := h.loginProtection.RecordFailedAttempt(email); locked {
				h.loginError(w, r, email, lockedMessage(lockDuration))
				return
			}
			if remaining := h.loginProtection.GetRemainingAttempts(email); remaining > 0 && remaining <= 2 {
				h.loginError(w, r, email, fmt.Sprintf("%s. Intentos restantes: %d", msgInvalidCredentials, remaining))
				return
			}
		}
		h.loginError(w, r, email, msgInvalidCredentials)
		return
	}

	if h.loginProtection != nil {
		h.loginProtection.RecordSuccessfulLogin(email)
	}

	if err := h.state.SignIn(r.Context(), user); err != nil {
		logAndInternalError(w, "failed to start session", "error", err, "category", "auth")
		return
	}

	h.logger.Info("user logged in", "user_id", user.ID, "admin", user.IsAdmin)
	redirect(w, r, RouteRoot)
}

// loginError re-renders the login form with an inline message.
func (h *AuthHandler) loginError(w http.ResponseWriter, r *http.Request, email, message string) {
	renderPage(w, r, h.renderer, pageLogin, render.TemplateData{
		Title: "Iniciar sesión",
		Data:  credentialsPage{Email: email, Error: message},
	})
}

// lockedMessage formats the lockout notice.
func lockedMessage(d time.Duration) string {
	minutes := int(d.Round(time.Minute) / time.Minute)
	if minutes < 1 {
		minutes = 1
	}
	return fmt.Sprintf("Cuenta bloqueada temporalmente. Inténtalo de nuevo en %d min", minutes)
}

// RegisterForm renders the sign-up page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, pageRegister, render.TemplateData{
		Title: "Crear cuenta",
		Data:  credentialsPage{},
	})
}

// Register handles the sign-up form submission.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.registerError(w, r, credentialsPage{Error: string(errMissingFields)})
		return
	}

	reg := service.Registration{
		Name:            strings.TrimSpace(r.FormValue(fieldName)),
		Email:           strings.TrimSpace(r.FormValue(fieldEmail)),
		Password:        r.FormValue(fieldPassword),
		ConfirmPassword: r.FormValue(fieldPasswordConfirm),
	}
	page := credentialsPage{Name: reg.Name, Email: reg.Email}

	if reg.Name == "" || reg.Email == "" || reg.Password == "" {
		page.Error = string(errMissingFields)
		h.registerError(w, r, page)
		return
	}

	if _, err := h.credentials.Register(r.Context(), reg); err != nil {
		switch {
		case errors.Is(err, service.ErrPasswordMismatch):
			page.Error = msgPasswordMismatch
		case errors.Is(err, service.ErrEmailTaken):
			page.Error = msgEmailTaken
		default:
			h.logger.Error("registration failed", "error", err)
			page.Error = msgRegisterFailed
		}
		h.registerError(w, r, page)
		return
	}

	flashSuccess(w, r, h.renderer, RouteLogin, msgRegistered)
}

func (h *AuthHandler) registerError(w http.ResponseWriter, r *http.Request, page credentialsPage) {
	renderPage(w, r, h.renderer, pageRegister, render.TemplateData{
		Title: "Crear cuenta",
		Data:  page,
	})
}

// Logout destroys the session, cart included.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if id, ok := h.state.Identity(r.Context()); ok {
		h.logger.Info("user logged out", "user_id", id.UserID)
	}
	if err := h.state.SignOut(r.Context()); err != nil {
		h.logger.Error("failed to end session", "error", err)
	}
	redirect(w, r, RouteRoot)
}
