// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedInClient(t *testing.T, app *testApp) *testClient {
	t.Helper()
	app.createUser("ana", "a@x.com", "pw1", false)
	c := app.newClient()
	c.login("a@x.com", "pw1")
	return c
}

func addToCart(t *testing.T, c *testClient, id int64) {
	t.Helper()
	resp := c.postForm(RouteAddToCart, url.Values{fieldGameID: {strconv.FormatInt(id, 10)}})
	require.Equal(t, http.StatusSeeOther, resp.Code)
	require.Equal(t, RouteGames, resp.Location)
}

func TestCartRoutes_RequireUser(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()

	for _, path := range []string{RouteCart, RouteClearCart, RouteCheckout} {
		resp := c.get(path)
		assert.Equal(t, http.StatusSeeOther, resp.Code, path)
		assert.Equal(t, RouteLogin, resp.Location, path)
	}
	for _, path := range []string{RouteAddToCart, RouteRemoveFromCart, RouteProcessPayment} {
		resp := c.postForm(path, url.Values{})
		assert.Equal(t, http.StatusSeeOther, resp.Code, path)
		assert.Equal(t, RouteLogin, resp.Location, path)
	}
}

func TestCart_AddRemoveTotal(t *testing.T) {
	app := newTestApp(t)
	a := app.insertGame("Halo", 20)
	b := app.insertGame("Zelda", 59.5)
	c := signedInClient(t, app)

	addToCart(t, c, a)
	addToCart(t, c, b)

	resp := c.get(RouteGames)
	assert.Contains(t, resp.Body, "Carrito (2)")
	assert.Contains(t, resp.Body, "«Zelda» añadido al carrito")

	resp = c.postForm(RouteRemoveFromCart, url.Values{fieldIndex: {"0"}})
	assert.Equal(t, RouteCart, resp.Location)

	resp = c.get(RouteCart)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.NotContains(t, resp.Body, "<td>Halo</td>")
	assert.Contains(t, resp.Body, "<td>Zelda</td>")
	assert.Contains(t, resp.Body, "Carrito (1)")
	assert.Contains(t, resp.Body, "59.50 €")
}

func TestCart_SnapshotSurvivesCatalogChanges(t *testing.T) {
	app := newTestApp(t)
	id := app.insertGame("Halo", 20)
	c := signedInClient(t, app)
	addToCart(t, c, id)

	require.NoError(t, app.catalog.Delete(t.Context(), id))

	resp := c.get(RouteCart)
	assert.Contains(t, resp.Body, "<td>Halo</td>")
	assert.Contains(t, resp.Body, "20.00 €")
}

func TestCart_RemoveOutOfRangeIsNoop(t *testing.T) {
	app := newTestApp(t)
	a := app.insertGame("Halo", 20)
	b := app.insertGame("Zelda", 60)
	c := signedInClient(t, app)
	addToCart(t, c, a)
	addToCart(t, c, b)

	for _, idx := range []string{"5", "-1", "x"} {
		resp := c.postForm(RouteRemoveFromCart, url.Values{fieldIndex: {idx}})
		assert.Equal(t, RouteCart, resp.Location, idx)
	}

	resp := c.get(RouteCart)
	assert.Contains(t, resp.Body, "Carrito (2)")
	assert.Contains(t, resp.Body, "80.00 €")
}

func TestCart_AddUnknownGame(t *testing.T) {
	app := newTestApp(t)
	c := signedInClient(t, app)

	resp := c.postForm(RouteAddToCart, url.Values{fieldGameID: {"999"}})
	assert.Equal(t, RouteGames, resp.Location)

	resp = c.get(RouteCart)
	assert.Contains(t, resp.Body, "Tu carrito está vacío")
}

func TestCart_Clear(t *testing.T) {
	app := newTestApp(t)
	id := app.insertGame("Halo", 20)
	c := signedInClient(t, app)
	addToCart(t, c, id)

	resp := c.get(RouteClearCart)
	assert.Equal(t, http.StatusSeeOther, resp.Code)
	assert.Equal(t, RouteCart, resp.Location)

	resp = c.get(RouteCart)
	assert.Contains(t, resp.Body, "Carrito (0)")
}

func TestCheckout_EmptyCartRedirects(t *testing.T) {
	app := newTestApp(t)
	c := signedInClient(t, app)

	resp := c.get(RouteCheckout)
	assert.Equal(t, RouteCart, resp.Location)

	resp = c.postForm(RouteProcessPayment, url.Values{fieldPaymentMethod: {"tarjeta"}})
	assert.Equal(t, RouteCart, resp.Location)
}

func TestCheckout_ProcessPayment(t *testing.T) {
	app := newTestApp(t)
	a := app.insertGame("Halo", 20)
	b := app.insertGame("Zelda", 60)
	c := signedInClient(t, app)
	addToCart(t, c, a)
	addToCart(t, c, b)

	resp := c.get(RouteCheckout)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, "80.00 €")

	// A payment method is required.
	resp = c.postForm(RouteProcessPayment, url.Values{})
	assert.Equal(t, RouteCheckout, resp.Location)
	resp = c.get(RouteCheckout)
	assert.Contains(t, resp.Body, string(errMissingPayment))

	resp = c.postForm(RouteProcessPayment, url.Values{fieldPaymentMethod: {"paypal"}})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body, "Gracias por tu compra, ana.")
	assert.Contains(t, resp.Body, "<dd>paypal</dd>")
	assert.Contains(t, resp.Body, "<dd>2</dd>")
	assert.Regexp(t, regexp.MustCompile(`<dd>\d{2}/\d{2}/\d{4} \d{2}:\d{2}</dd>`), resp.Body)
	assert.Regexp(t, regexp.MustCompile(`<dd>[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}</dd>`), resp.Body)

	resp = c.get(RouteCart)
	assert.Contains(t, resp.Body, "Carrito (0)")
}
