// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package logging provides a slog handler that mirrors WARN and above into
// the database-backed event log.
package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/olegiv/newsdesk/internal/model"
	"github.com/olegiv/newsdesk/internal/store"
)

// EventLogHandler wraps another slog.Handler and also writes records at or
// above its level to the events table.
type EventLogHandler struct {
	inner   slog.Handler
	queries *store.Queries
	level   slog.Level
	attrs   []slog.Attr
}

// NewEventLogHandler creates an EventLogHandler capturing WARN and above.
func NewEventLogHandler(inner slog.Handler, db *sql.DB) *EventLogHandler {
	return NewEventLogHandlerWithLevel(inner, db, slog.LevelWarn)
}

// NewEventLogHandlerWithLevel creates an EventLogHandler with a custom minimum level.
func NewEventLogHandlerWithLevel(inner slog.Handler, db *sql.DB, level slog.Level) *EventLogHandler {
	return &EventLogHandler{
		inner:   inner,
		queries: store.New(db),
		level:   level,
	}
}

// Enabled implements slog.Handler.
func (h *EventLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle implements slog.Handler.
func (h *EventLogHandler) Handle(ctx context.Context, r slog.Record) error {
	if err := h.inner.Handle(ctx, r); err != nil {
		return err
	}
	if r.Level >= h.level {
		h.writeToEventLog(r)
	}
	return nil
}

// WithAttrs implements slog.Handler.
func (h *EventLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	merged := make([]slog.Attr, 0, len(h.attrs)+len(attrs))
	merged = append(merged, h.attrs...)
	merged = append(merged, attrs...)
	return &EventLogHandler{
		inner:   h.inner.WithAttrs(attrs),
		queries: h.queries,
		level:   h.level,
		attrs:   merged,
	}
}

// WithGroup implements slog.Handler.
func (h *EventLogHandler) WithGroup(name string) slog.Handler {
	return &EventLogHandler{
		inner:   h.inner.WithGroup(name),
		queries: h.queries,
		level:   h.level,
		attrs:   h.attrs,
	}
}

func (h *EventLogHandler) writeToEventLog(r slog.Record) {
	category := ""
	var userID sql.NullInt64
	metadata := make(map[string]string)

	collect := func(a slog.Attr) bool {
		switch a.Key {
		case "category":
			category = a.Value.String()
		case "user_id":
			if a.Value.Kind() == slog.KindInt64 && a.Value.Int64() > 0 {
				userID = sql.NullInt64{Int64: a.Value.Int64(), Valid: true}
			}
			metadata[a.Key] = a.Value.String()
		default:
			metadata[a.Key] = a.Value.String()
		}
		return true
	}
	for _, a := range h.attrs {
		collect(a)
	}
	r.Attrs(collect)

	if category == "" {
		category = inferCategory(r.Message)
	}

	metadataJSON := "{}"
	if len(metadata) > 0 {
		if b, err := json.Marshal(metadata); err == nil {
			metadataJSON = string(b)
		}
	}

	created := r.Time
	if created.IsZero() {
		created = time.Now()
	}

	// Background context: the event must be stored even if the request was cancelled.
	_, _ = h.queries.CreateEvent(context.Background(), store.CreateEventParams{
		Level:     eventLevel(r.Level),
		Category:  category,
		Message:   r.Message,
		UserID:    userID,
		Metadata:  metadataJSON,
		CreatedAt: created.UTC(),
	})
}

func eventLevel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return model.EventLevelError
	case level >= slog.LevelWarn:
		return model.EventLevelWarning
	default:
		return model.EventLevelInfo
	}
}

func inferCategory(message string) string {
	msg := strings.ToLower(message)
	switch {
	case strings.Contains(msg, "auth") || strings.Contains(msg, "login") ||
		strings.Contains(msg, "logout") || strings.Contains(msg, "access denied"):
		return model.EventCategoryAuth
	case strings.Contains(msg, "notif") || strings.Contains(msg, "email") ||
		strings.Contains(msg, "social") || strings.Contains(msg, "broker"):
		return model.EventCategoryNotification
	case strings.Contains(msg, "approv"):
		return model.EventCategoryApproval
	case strings.Contains(msg, "subscri"):
		return model.EventCategorySubscription
	case strings.Contains(msg, "article"):
		return model.EventCategoryArticle
	default:
		return model.EventCategorySystem
	}
}
