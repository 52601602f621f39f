// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/metrics"
	"github.com/olegiv/newsdesk/internal/model"
	"github.com/olegiv/newsdesk/internal/notify"
	"github.com/olegiv/newsdesk/internal/store"
)

// Notifier receives approval events. notify.Dispatcher implements it.
type Notifier interface {
	ArticleApproved(ctx context.Context, ev notify.ApprovalEvent)
}

// ApprovalResult is the outcome of a successful Approve call.
type ApprovalResult int

const (
	// ResultApproved means this call moved the article to approved.
	ResultApproved ApprovalResult = iota + 1
	// ResultAlreadyApproved means the article was approved earlier; nothing changed.
	ResultAlreadyApproved
)

func (r ApprovalResult) String() string {
	switch r {
	case ResultApproved:
		return "approved"
	case ResultAlreadyApproved:
		return "already_approved"
	default:
		return "unknown"
	}
}

// ApprovalService runs the editorial approval workflow.
type ApprovalService struct {
	db       *sql.DB
	queries  *store.Queries
	notifier Notifier
	events   *EventService
	metrics  *metrics.Metrics
	baseURL  string
	logger   *slog.Logger
	now      func() time.Time
}

// ApprovalDeps are the collaborators of ApprovalService. Notifier, Events
// and Metrics may be nil.
type ApprovalDeps struct {
	Notifier Notifier
	Events   *EventService
	Metrics  *metrics.Metrics
	BaseURL  string
	Logger   *slog.Logger
}

// NewApprovalService creates a new ApprovalService.
func NewApprovalService(db *sql.DB, deps ApprovalDeps) *ApprovalService {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ApprovalService{
		db:       db,
		queries:  store.New(db),
		notifier: deps.Notifier,
		events:   deps.Events,
		metrics:  deps.Metrics,
		baseURL:  strings.TrimSuffix(deps.BaseURL, "/"),
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// ReviewQueue returns unapproved articles, oldest first.
func (s *ApprovalService) ReviewQueue(ctx context.Context, actor auth.Identity) ([]model.Article, error) {
	if err := authorize(actor, auth.OpReviewArticles); err != nil {
		return nil, err
	}
	rows, err := s.queries.ListUnapprovedArticles(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing unapproved articles: %w", err)
	}
	return model.ArticlesFromRows(rows), nil
}

// PendingCount returns the number of articles waiting for review.
func (s *ApprovalService) PendingCount(ctx context.Context) (int64, error) {
	return s.queries.CountUnapprovedArticles(ctx)
}

// Approve marks the article approved on behalf of actor. The transition is a
// single conditional update, so of any number of concurrent calls exactly
// one returns ResultApproved and triggers notification; the rest return
// ResultAlreadyApproved.
func (s *ApprovalService) Approve(ctx context.Context, articleID int64, actor auth.Identity) (ApprovalResult, error) {
	if err := authorize(actor, auth.OpApproveArticle); err != nil {
		return 0, err
	}

	row, err := s.queries.GetArticleRow(ctx, articleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("article %d: %w", articleID, ErrNotFound)
		}
		return 0, fmt.Errorf("loading article %d: %w", articleID, err)
	}

	if row.IsApproved {
		s.metrics.ApprovalRecorded(false)
		return ResultAlreadyApproved, nil
	}

	approvedAt := s.now()
	var n int64
	err = store.RunInTx(ctx, s.db, func(q *store.Queries) error {
		var err error
		n, err = q.ApproveArticle(ctx, store.ApproveArticleParams{
			ApprovedAt: approvedAt,
			ApprovedBy: sql.NullInt64{Int64: actor.UserID, Valid: true},
			ID:         articleID,
		})
		if err != nil || n == 0 || row.PublisherID.Valid {
			return err
		}
		return q.IncrementIndependentArticles(ctx, row.AuthorID)
	})
	if err != nil {
		return 0, fmt.Errorf("approving article %d: %w", articleID, err)
	}
	if n == 0 {
		s.metrics.ApprovalRecorded(false)
		return ResultAlreadyApproved, nil
	}
	s.metrics.ApprovalRecorded(true)

	ev := s.approvalEvent(row, actor, approvedAt)

	s.logger.Info("article approved", "article_id", articleID, "editor", actor.Username, "event_id", ev.ID)
	if s.events != nil {
		uid := actor.UserID
		_ = s.events.LogApprovalEvent(ctx, model.EventLevelInfo, "Article approved", &uid, "", map[string]any{
			"article_id": articleID,
			"title":      row.Title,
			"author":     row.AuthorUsername,
			"event_id":   ev.ID,
		})
	}

	if s.notifier != nil {
		s.notifier.ArticleApproved(ctx, ev)
	}

	return ResultApproved, nil
}

func (s *ApprovalService) approvalEvent(row store.ArticleRow, actor auth.Identity, approvedAt time.Time) notify.ApprovalEvent {
	ev := notify.ApprovalEvent{
		ID:             notify.NewEventID(),
		ArticleID:      row.ID,
		Title:          row.Title,
		Content:        row.Content,
		ArticleURL:     ArticleURL(s.baseURL, row.ID),
		AuthorID:       row.AuthorID,
		AuthorUsername: row.AuthorUsername,
		ApprovedBy:     actor.UserID,
		ApprovedAt:     approvedAt,
	}
	if row.PublisherID.Valid {
		ev.PublisherID = row.PublisherID.Int64
		ev.PublisherName = row.PublisherName.String
	}
	return ev
}

// ArticleURL returns the absolute URL of an article's detail page.
func ArticleURL(baseURL string, id int64) string {
	return strings.TrimSuffix(baseURL, "/") + "/articles/" + strconv.FormatInt(id, 10) + "/"
}
