// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the JSON API handlers.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/newsdesk/internal/service"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	feed          *service.FeedService
	publishers    *service.PublisherService
	subscriptions *service.SubscriptionService
}

// NewHandler creates a new API handler.
func NewHandler(feed *service.FeedService, publishers *service.PublisherService, subscriptions *service.SubscriptionService) *Handler {
	return &Handler{
		feed:          feed,
		publishers:    publishers,
		subscriptions: subscriptions,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains list metadata.
type Meta struct {
	Total int64 `json:"total"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, code, message string) {
	WriteError(w, http.StatusForbidden, code, message, nil)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{
		Status:  "ok",
		Version: "v1",
	}, nil)
}

// parseIDParam parses a positive int64 route parameter.
func parseIDParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

// writeServiceError maps service errors to JSON error responses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error, what string) {
	var verr *service.ValidationError
	switch {
	case errors.Is(err, service.ErrUnauthenticated):
		WriteForbidden(w, "not_authenticated", "Authentication credentials were not provided.")
	case errors.Is(err, service.ErrPermissionDenied):
		WriteForbidden(w, "permission_denied", "You do not have permission to perform this action.")
	case errors.Is(err, service.ErrNotFound):
		WriteNotFound(w, what+" not found")
	case errors.Is(err, service.ErrSelfSubscription):
		WriteValidationError(w, map[string]string{"journalist": "You cannot subscribe to yourself"})
	case errors.As(err, &verr):
		WriteValidationError(w, verr.Fields)
	default:
		slog.Error("api request failed", "error", err, "path", r.URL.Path, "method", r.Method)
		WriteInternalError(w, "Failed to process request")
	}
}
