// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/newsdesk/internal/notify"
	"github.com/olegiv/newsdesk/internal/store"
)

// Job names.
const (
	JobReviewReminder = "review_reminder"
	JobEventRetention = "event_retention"
	JobRateLimitPrune = "rate_limit_prune"
)

// PendingCounter reports the size of the review queue.
type PendingCounter interface {
	PendingCount(ctx context.Context) (int64, error)
}

// EditorLister lists the users who review articles.
type EditorLister interface {
	ListEditors(ctx context.Context) ([]store.User, error)
}

// ReviewReminder configures the editor digest.
type ReviewReminder struct {
	Pending PendingCounter
	Editors EditorLister
	Mailer  notify.Mailer
	From    string
	BaseURL string
	Logger  *slog.Logger
}

// ReviewReminderSubject returns the digest subject for n pending articles.
func ReviewReminderSubject(n int64) string {
	if n == 1 {
		return "1 article awaiting review"
	}
	return fmt.Sprintf("%d articles awaiting review", n)
}

// Job returns the digest job. Nothing is sent while the queue is empty or
// when there are no editors with an email address.
func (rr ReviewReminder) Job() JobFunc {
	logger := rr.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context) error {
		n, err := rr.Pending.PendingCount(ctx)
		if err != nil {
			return fmt.Errorf("counting pending articles: %w", err)
		}
		if n == 0 {
			return nil
		}

		editors, err := rr.Editors.ListEditors(ctx)
		if err != nil {
			return fmt.Errorf("listing editors: %w", err)
		}
		recipients := make([]string, 0, len(editors))
		for _, e := range editors {
			if e.Email != "" {
				recipients = append(recipients, e.Email)
			}
		}
		if len(recipients) == 0 {
			logger.Warn("review reminder skipped: no editor has an email address", "pending", n)
			return nil
		}

		email := notify.Email{
			MessageID:  fmt.Sprintf("<%s@newsdesk>", uuid.NewString()),
			From:       rr.From,
			Recipients: recipients,
			Subject:    ReviewReminderSubject(n),
			Body:       fmt.Sprintf("%s.\n\nReview them at %s/editor/review/\n", ReviewReminderSubject(n), strings.TrimSuffix(rr.BaseURL, "/")),
		}
		if err := rr.Mailer.Send(ctx, email); err != nil {
			return fmt.Errorf("sending review reminder: %w", err)
		}
		logger.Info("review reminder sent", "pending", n, "recipients", len(recipients))
		return nil
	}
}

// EventPruner deletes old audit events.
type EventPruner interface {
	DeleteOldEvents(ctx context.Context, olderThan time.Duration) (int64, error)
}

// EventRetentionJob deletes events older than retention.
func EventRetentionJob(events EventPruner, retention time.Duration, logger *slog.Logger) JobFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context) error {
		n, err := events.DeleteOldEvents(ctx, retention)
		if err != nil {
			return fmt.Errorf("deleting old events: %w", err)
		}
		if n > 0 {
			logger.Info("old events deleted", "count", n, "retention", retention.String())
		}
		return nil
	}
}

// LimiterPruner drops idle rate limiters.
type LimiterPruner interface {
	Prune(maxSize int)
}

// RateLimitPruneJob bounds the memory held by per-client rate limiters.
func RateLimitPruneJob(limiter LimiterPruner, maxSize int) JobFunc {
	return func(context.Context) error {
		limiter.Prune(maxSize)
		return nil
	}
}
