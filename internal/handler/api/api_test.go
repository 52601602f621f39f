// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/newsdesk/internal/service"
)

func TestWriteError(t *testing.T) {
	w := httptest.NewRecorder()
	WriteValidationError(w, map[string]string{"title": "Title is required"})

	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want %d", w.Code, http.StatusUnprocessableEntity)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var resp ErrorResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Error.Code != "validation_error" {
		t.Errorf("code = %q, want validation_error", resp.Error.Code)
	}
	if resp.Error.Details["title"] != "Title is required" {
		t.Errorf("details = %v", resp.Error.Details)
	}
}

func TestWriteSuccess(t *testing.T) {
	w := httptest.NewRecorder()
	WriteSuccess(w, []string{}, &Meta{Total: 0})

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", w.Code, http.StatusOK)
	}
	want := `{"data":[],"meta":{"total":0}}` + "\n"
	if got := w.Body.String(); got != want {
		t.Errorf("body = %q, want %q", got, want)
	}
}

func TestWriteServiceError(t *testing.T) {
	verr := &service.ValidationError{Fields: map[string]string{"name": "Name is required"}}

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"unauthenticated", service.ErrUnauthenticated, http.StatusForbidden, "not_authenticated"},
		{"permission", fmt.Errorf("wrapped: %w", service.ErrPermissionDenied), http.StatusForbidden, "permission_denied"},
		{"not found", fmt.Errorf("publisher 9: %w", service.ErrNotFound), http.StatusNotFound, "not_found"},
		{"self subscription", service.ErrSelfSubscription, http.StatusUnprocessableEntity, "validation_error"},
		{"validation", verr, http.StatusUnprocessableEntity, "validation_error"},
		{"other", errors.New("disk on fire"), http.StatusInternalServerError, "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			writeServiceError(w, httptest.NewRequest(http.MethodGet, "/api/x/", nil), tt.err, "Thing")

			if w.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			var resp ErrorResponse
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if resp.Error.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", resp.Error.Code, tt.wantCode)
			}
		})
	}
}

func TestParseIDParam(t *testing.T) {
	tests := []struct {
		raw  string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{"0", 0, false},
		{"-1", 0, false},
		{"abc", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.raw)
			req = req.WithContext(contextWithRoute(req, rctx))

			got, ok := parseIDParam(req, "id")
			if got != tt.want || ok != tt.ok {
				t.Errorf("parseIDParam(%q) = %d, %v; want %d, %v", tt.raw, got, ok, tt.want, tt.ok)
			}
		})
	}
}

func contextWithRoute(r *http.Request, rctx *chi.Context) context.Context {
	return context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
}
