// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package session

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/olegiv/newsdesk/internal/testutil"
)

func TestNew_DevMode(t *testing.T) {
	sm := New(testutil.TestDB(t), true)

	if sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = false in dev mode")
	}
	if sm.Cookie.Name != "newsdesk_session" {
		t.Errorf("cookie name = %q", sm.Cookie.Name)
	}
}

func TestNew_ProductionMode(t *testing.T) {
	sm := New(testutil.TestDB(t), false)

	if !sm.Cookie.Secure {
		t.Error("expected Cookie.Secure = true in production mode")
	}
	if sm.Cookie.Name != "__Host-newsdesk_session" {
		t.Errorf("expected __Host- cookie name, got %q", sm.Cookie.Name)
	}
	if sm.Cookie.Path != "/" {
		t.Errorf("expected Cookie.Path = '/', got %q", sm.Cookie.Path)
	}
}

func TestNew_SessionSettings(t *testing.T) {
	sm := New(testutil.TestDB(t), true)

	if sm.Lifetime != Lifetime {
		t.Errorf("Lifetime = %v, want %v", sm.Lifetime, Lifetime)
	}
	if !sm.Cookie.HttpOnly {
		t.Error("expected Cookie.HttpOnly = true")
	}
	if sm.Cookie.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite = Lax, got %v", sm.Cookie.SameSite)
	}
	if sm.Store == nil {
		t.Error("expected Store to be initialized")
	}
}

func TestSession_PersistsAcrossRequests(t *testing.T) {
	sm := New(testutil.TestDB(t), true)

	put := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sm.Put(r.Context(), KeyUserID, int64(42))
	}))
	get := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := sm.GetInt64(r.Context(), KeyUserID); got != 42 {
			t.Errorf("user_id = %d, want 42", got)
		}
	}))

	rec := httptest.NewRecorder()
	put.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("got %d cookies, want 1", len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	get.ServeHTTP(httptest.NewRecorder(), req)
}
