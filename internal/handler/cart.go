// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/gameatlas/internal/cart"
	"github.com/olegiv/gameatlas/internal/render"
	"github.com/olegiv/gameatlas/internal/service"
	"github.com/olegiv/gameatlas/internal/session"
)

// CartHandler handles the session cart and the mock checkout.
type CartHandler struct {
	catalog  *service.Catalog
	state    *session.State
	renderer *render.Renderer
	logger   *slog.Logger

	now      func() time.Time
	orderRef func() string
}

// NewCartHandler creates a new CartHandler.
func NewCartHandler(catalog *service.Catalog, state *session.State, renderer *render.Renderer, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		catalog:  catalog,
		state:    state,
		renderer: renderer,
		logger:   logger.With("category", "cart"),
		now:      time.Now,
		orderRef: uuid.NewString,
	}
}

// Add handles POST /agregar-carrito. The game's display fields are copied
// into the cart as they are now.
func (h *CartHandler) Add(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		redirect(w, r, RouteGames)
		return
	}

	id, err := parseID(r.FormValue(fieldGameID))
	if err != nil {
		redirect(w, r, RouteGames)
		return
	}

	game, err := h.catalog.FindByID(r.Context(), id)
	if err != nil {
		// Unknown ids and store failures both land back on the listing.
		redirect(w, r, RouteGames)
		return
	}

	h.state.AddToCart(r.Context(), cart.Item{
		ID:     game.ID,
		Name:   game.Name,
		Price:  game.Price,
		Genre:  game.Genre,
		Rating: game.Rating,
	})
	flashSuccess(w, r, h.renderer, RouteGames, "«"+game.Name+"» añadido al carrito")
}

// View handles GET /carrito.
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	c := h.state.Cart(r.Context())
	renderPage(w, r, h.renderer, pageCart, render.TemplateData{
		Title: "Carrito",
		Data:  cartPage{Items: c.Items, Total: c.Total()},
	})
}

// Remove handles POST /eliminar-carrito. Out-of-range or malformed indexes
// leave the cart unchanged.
func (h *CartHandler) Remove(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err == nil {
		if i, err := strconv.Atoi(strings.TrimSpace(r.FormValue(fieldIndex))); err == nil {
			h.state.RemoveFromCart(r.Context(), i)
		}
	}
	redirect(w, r, RouteCart)
}

// Clear handles GET /limpiar-carrito.
func (h *CartHandler) Clear(w http.ResponseWriter, r *http.Request) {
	h.state.ClearCart(r.Context())
	redirect(w, r, RouteCart)
}

// Checkout handles GET /pago. An empty cart goes back to /carrito.
func (h *CartHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	c := h.state.Cart(r.Context())
	if c.Empty() {
		redirect(w, r, RouteCart)
		return
	}

	renderPage(w, r, h.renderer, pageCheckout, render.TemplateData{
		Title: "Pago",
		Data:  cartPage{Items: c.Items, Total: c.Total()},
	})
}

// ProcessPayment handles POST /procesar-pago. No payment is taken: the cart
// is emptied and a receipt is shown.
func (h *CartHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	c := h.state.Cart(r.Context())
	if c.Empty() {
		redirect(w, r, RouteCart)
		return
	}

	if err := r.ParseForm(); err != nil {
		flashError(w, r, h.renderer, RouteCheckout, string(errMissingPayment))
		return
	}
	method := strings.TrimSpace(r.FormValue(fieldPaymentMethod))
	if method == "" {
		flashError(w, r, h.renderer, RouteCheckout, string(errMissingPayment))
		return
	}

	identity, _ := h.state.Identity(r.Context())
	receipt := receiptPage{
		OrderRef:  h.orderRef(),
		Method:    method,
		UserName:  identity.Name,
		PaidAt:    h.now(),
		ItemCount: c.Count(),
		Total:     c.Total(),
	}

	h.state.ClearCart(r.Context())
	h.logger.Info("checkout completed",
		"order", receipt.OrderRef,
		"user_id", identity.UserID,
		"items", receipt.ItemCount,
		"total", render.FormatPrice(receipt.Total),
		"method", method,
	)

	renderPage(w, r, h.renderer, pageCheckoutResult, render.TemplateData{
		Title: "Pago completado",
		Data:  receipt,
	})
}
