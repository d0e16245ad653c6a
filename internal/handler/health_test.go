// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/gameatlas/internal/testutil"
	"github.com/olegiv/gameatlas/internal/version"
)

func TestHealth(t *testing.T) {
	app := newTestApp(t)

	resp := app.newClient().get(RouteHealth)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "application/json", resp.Header.Get("Content-Type"))

	var status HealthStatus
	require.NoError(t, json.Unmarshal([]byte(resp.Body), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, "v1.0.0", status.Version)
	assert.Equal(t, "healthy", status.Checks["database"].Status)
}

func TestHealth_DatabaseDown(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	cleanup()

	h := NewHealthHandler(db, version.Info{})
	w := httptest.NewRecorder()
	h.Health(w, httptest.NewRequest(http.MethodGet, RouteHealth, nil))

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	var status HealthStatus
	require.NoError(t, json.NewDecoder(w.Body).Decode(&status))
	assert.Equal(t, "degraded", status.Status)
	assert.Equal(t, "dev", status.Version)
	assert.Equal(t, "database unreachable", status.Checks["database"].Message)
}
