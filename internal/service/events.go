// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the business logic of the newsroom: the
// subscription feed, the approval workflow, article authoring,
// subscriptions, publishers, users and the audit event log.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/olegiv/newsdesk/internal/model"
	"github.com/olegiv/newsdesk/internal/store"
)

// EventService provides event logging functionality.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
	}
}

// LogEvent creates a new event log entry.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil && *userID > 0 {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		jsonBytes, err := json.Marshal(metadata)
		if err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		Metadata:  metadataJSON,
		IpAddress: ipAddress,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		// Debug level keeps this out of the event log itself.
		slog.Default().Debug("failed to write event", "error", err, "message", message)
		return err
	}

	return nil
}

// LogInfo logs an info-level event.
func (s *EventService) LogInfo(ctx context.Context, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelInfo, category, message, userID, ipAddress, metadata)
}

// LogWarning logs a warning-level event.
func (s *EventService) LogWarning(ctx context.Context, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelWarning, category, message, userID, ipAddress, metadata)
}

// LogError logs an error-level event.
func (s *EventService) LogError(ctx context.Context, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, model.EventLevelError, category, message, userID, ipAddress, metadata)
}

// LogAuthEvent logs an authentication-related event.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryAuth, message, userID, ipAddress, metadata)
}

// LogArticleEvent logs an article-related event.
func (s *EventService) LogArticleEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryArticle, message, userID, ipAddress, metadata)
}

// LogApprovalEvent logs an approval-related event.
func (s *EventService) LogApprovalEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategoryApproval, message, userID, ipAddress, metadata)
}

// LogSubscriptionEvent logs a subscription-related event.
func (s *EventService) LogSubscriptionEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, model.EventCategorySubscription, message, userID, ipAddress, metadata)
}

// ListRecent returns the most recent events, newest first.
func (s *EventService) ListRecent(ctx context.Context, limit int64) ([]store.Event, error) {
	return s.queries.ListRecentEvents(ctx, limit)
}

// ListByCategory returns the most recent events of one category.
func (s *EventService) ListByCategory(ctx context.Context, category string, limit int64) ([]store.Event, error) {
	return s.queries.ListEventsByCategory(ctx, store.ListEventsByCategoryParams{Category: category, Limit: limit})
}

// DeleteOldEvents removes events older than the specified duration and
// returns how many were removed.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	return s.queries.DeleteEventsBefore(ctx, cutoff)
}
