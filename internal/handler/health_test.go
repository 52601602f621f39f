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

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/middleware"
	"github.com/olegiv/newsdesk/internal/testutil"
)

func TestHealth_Public(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewHealthHandler(db, BuildInfo{Version: "v1.2.3", GitCommit: "abc1234", BuildTime: "unknown"})

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, RouteHealth, nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
}

func TestHealth_EditorDetails(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewHealthHandler(db, BuildInfo{Version: "v1.2.3", GitCommit: "abc1234", BuildTime: "unknown"})

	req := httptest.NewRequest(http.MethodGet, RouteHealth+"?verbose=true", nil)
	req = req.WithContext(middleware.WithIdentity(req.Context(), auth.NewIdentity(1, "ed", "ed@example.com", auth.GroupEditor)))
	rec := httptest.NewRecorder()
	h.Health(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "healthy", status.Status)
	assert.Equal(t, BuildInfo{Version: "v1.2.3", GitCommit: "abc1234"}, status.Build, "unknown placeholders are dropped")
	assert.Equal(t, "healthy", status.Checks["database"].Status)
	require.NotNil(t, status.System)
	assert.NotEmpty(t, status.System.GoVersion)
}

func TestHealth_DatabaseDown(t *testing.T) {
	db := testutil.TestDB(t)
	h := NewHealthHandler(db, BuildInfo{})
	require.NoError(t, db.Close())

	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, RouteHealth, nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.JSONEq(t, `{"status":"unhealthy"}`, rec.Body.String())
}

func TestBuildInfoNormalized(t *testing.T) {
	assert.Equal(t, BuildInfo{Version: "dev"}, BuildInfo{}.normalized())
	assert.Equal(t, BuildInfo{Version: "dev"}, BuildInfo{GitCommit: "unknown", BuildTime: "unknown"}.normalized())
	full := BuildInfo{Version: "v2.0.0", GitCommit: "f00dbab", BuildTime: "2026-01-30T12:00:00Z"}
	assert.Equal(t, full, full.normalized())
}

func TestLiveness(t *testing.T) {
	h := NewHealthHandler(nil, BuildInfo{})

	rec := httptest.NewRecorder()
	h.Liveness(rec, httptest.NewRequest(http.MethodGet, RouteHealthLive, nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"alive"}`, rec.Body.String())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.50 KB", formatBytes(1536))
	assert.Equal(t, "2.00 MB", formatBytes(2*1024*1024))
	assert.Equal(t, "1.00 GB", formatBytes(1024*1024*1024))
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(http.MethodGet, RouteHealth, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(http.MethodGet, RouteHealthLive, nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.request(http.MethodGet, RouteMetrics, nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "newsdesk_http_requests_total")

	rec = env.request(http.MethodGet, RouteRoot, nil, nil)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}
