// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"testing"
	"time"

	"github.com/olegiv/newsdesk/internal/model"
	"github.com/olegiv/newsdesk/internal/testutil"
)

func TestNewEventService(t *testing.T) {
	db := testutil.TestDB(t)

	svc := NewEventService(db)
	if svc == nil {
		t.Error("NewEventService returned nil")
	}
}

func TestLogEvent(t *testing.T) {
	db := testutil.TestDB(t)
	svc := NewEventService(db)
	ctx := context.Background()
	user := testutil.CreateUser(t, db, "ed", "ed@example.com")

	err := svc.LogEvent(ctx, model.EventLevelInfo, model.EventCategoryApproval, "Test message", &user.ID, "192.168.1.100", map[string]any{
		"key": "value",
	})
	if err != nil {
		t.Fatalf("LogEvent failed: %v", err)
	}

	events, err := svc.ListRecent(ctx, 10)
	if err != nil {
		t.Fatalf("ListRecent: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("event count = %d, want 1", len(events))
	}

	e := events[0]
	if e.Level != model.EventLevelInfo {
		t.Errorf("level = %q, want %q", e.Level, model.EventLevelInfo)
	}
	if e.Category != model.EventCategoryApproval {
		t.Errorf("category = %q, want %q", e.Category, model.EventCategoryApproval)
	}
	if !e.UserID.Valid || e.UserID.Int64 != user.ID {
		t.Errorf("user_id = %+v, want %d", e.UserID, user.ID)
	}
	if e.IpAddress != "192.168.1.100" {
		t.Errorf("ip_address = %q", e.IpAddress)
	}
	if e.Metadata != `{"key":"value"}` {
		t.Errorf("metadata = %q", e.Metadata)
	}
}

func TestLogEvent_NilUserAndMetadata(t *testing.T) {
	db := testutil.TestDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	if err := svc.LogError(ctx, model.EventCategorySystem, "boom", nil, "", nil); err != nil {
		t.Fatalf("LogError: %v", err)
	}

	events, _ := svc.ListRecent(ctx, 10)
	if len(events) != 1 {
		t.Fatalf("event count = %d, want 1", len(events))
	}
	if events[0].UserID.Valid {
		t.Error("user_id should be NULL")
	}
	if events[0].Metadata != "{}" {
		t.Errorf("metadata = %q, want {}", events[0].Metadata)
	}
}

func TestLogHelpers(t *testing.T) {
	db := testutil.TestDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	tests := []struct {
		name     string
		log      func() error
		level    string
		category string
	}{
		{"LogInfo", func() error { return svc.LogInfo(ctx, model.EventCategoryArticle, "info", nil, "", nil) }, model.EventLevelInfo, model.EventCategoryArticle},
		{"LogWarning", func() error { return svc.LogWarning(ctx, model.EventCategoryAuth, "warn", nil, "", nil) }, model.EventLevelWarning, model.EventCategoryAuth},
		{"LogAuthEvent", func() error { return svc.LogAuthEvent(ctx, model.EventLevelWarning, "auth", nil, "", nil) }, model.EventLevelWarning, model.EventCategoryAuth},
		{"LogArticleEvent", func() error { return svc.LogArticleEvent(ctx, model.EventLevelInfo, "article", nil, "", nil) }, model.EventLevelInfo, model.EventCategoryArticle},
		{"LogApprovalEvent", func() error { return svc.LogApprovalEvent(ctx, model.EventLevelInfo, "approval", nil, "", nil) }, model.EventLevelInfo, model.EventCategoryApproval},
		{"LogSubscriptionEvent", func() error {
			return svc.LogSubscriptionEvent(ctx, model.EventLevelInfo, "subscription", nil, "", nil)
		}, model.EventLevelInfo, model.EventCategorySubscription},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.log(); err != nil {
				t.Fatalf("%s: %v", tt.name, err)
			}
			events, err := svc.ListRecent(ctx, 1)
			if err != nil || len(events) != 1 {
				t.Fatalf("ListRecent: %v (%d events)", err, len(events))
			}
			if events[0].Level != tt.level || events[0].Category != tt.category {
				t.Errorf("got %s/%s, want %s/%s", events[0].Level, events[0].Category, tt.level, tt.category)
			}
		})
	}

	approvals, err := svc.ListByCategory(ctx, model.EventCategoryApproval, 10)
	if err != nil {
		t.Fatalf("ListByCategory: %v", err)
	}
	if len(approvals) != 1 {
		t.Errorf("approval events = %d, want 1", len(approvals))
	}
}

func TestDeleteOldEvents(t *testing.T) {
	db := testutil.TestDB(t)
	svc := NewEventService(db)
	ctx := context.Background()

	old := time.Now().UTC().Add(-48 * time.Hour)
	if _, err := db.Exec(`INSERT INTO events (level, category, message, metadata, ip_address, created_at) VALUES ('info', 'system', 'old', '{}', '', ?)`, old); err != nil {
		t.Fatalf("insert old event: %v", err)
	}
	if err := svc.LogInfo(ctx, model.EventCategorySystem, "new", nil, "", nil); err != nil {
		t.Fatalf("LogInfo: %v", err)
	}

	n, err := svc.DeleteOldEvents(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("DeleteOldEvents: %v", err)
	}
	if n != 1 {
		t.Errorf("deleted = %d, want 1", n)
	}

	events, _ := svc.ListRecent(ctx, 10)
	if len(events) != 1 || events[0].Message != "new" {
		t.Errorf("remaining events = %+v", events)
	}
}
