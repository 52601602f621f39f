// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures the scs session manager backed by SQLite.
package session

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys shared by handlers and middleware.
const (
	KeyUserID    = "user_id"
	KeyFlash     = "flash"
	KeyFlashType = "flash_type"
)

// Lifetime is the absolute session lifetime.
const Lifetime = 24 * time.Hour

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	// Sessions table is created by the store migrations.
	sm.Store = sqlite3store.New(db)

	sm.Lifetime = Lifetime
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev
	if isDev {
		sm.Cookie.Name = "newsdesk_session"
	} else {
		// __Host- prefix requires Secure, Path=/ and no Domain.
		sm.Cookie.Name = "__Host-newsdesk_session"
	}

	return sm
}
