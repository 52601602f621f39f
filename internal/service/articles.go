// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/model"
	"github.com/olegiv/newsdesk/internal/store"
)

// MaxTitleLength is the maximum article title length in characters.
const MaxTitleLength = 255

// ArticleInput is the editable part of an article.
type ArticleInput struct {
	Title       string
	Content     string
	PublisherID int64 // 0 publishes independently
}

// ArticleService handles article authoring, reading and deletion.
type ArticleService struct {
	queries *store.Queries
	events  *EventService
	logger  *slog.Logger
	now     func() time.Time
}

// NewArticleService creates a new ArticleService. events may be nil.
func NewArticleService(db *sql.DB, events *EventService, logger *slog.Logger) *ArticleService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ArticleService{
		queries: store.New(db),
		events:  events,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// validate trims input in place and checks it, including that the
// publisher exists.
func (s *ArticleService) validate(ctx context.Context, in *ArticleInput) error {
	in.Title = strings.TrimSpace(in.Title)
	in.Content = strings.TrimSpace(in.Content)

	verr := newValidationError(ErrInvalidArticle)
	switch {
	case in.Title == "":
		verr.add("title", "Title is required")
	case utf8.RuneCountInString(in.Title) > MaxTitleLength:
		verr.add("title", fmt.Sprintf("Title must be at most %d characters", MaxTitleLength))
	}
	if in.Content == "" {
		verr.add("content", "Content is required")
	}
	if in.PublisherID < 0 {
		verr.add("publisher", "Unknown publisher")
	} else if in.PublisherID > 0 {
		if _, err := s.queries.GetPublisherByID(ctx, in.PublisherID); err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("checking publisher: %w", err)
			}
			verr.add("publisher", "Unknown publisher")
		}
	}

	if verr.empty() {
		return nil
	}
	return verr
}

func publisherParam(id int64) sql.NullInt64 {
	return sql.NullInt64{Int64: id, Valid: id > 0}
}

// Create stores a new unapproved article authored by actor.
func (s *ArticleService) Create(ctx context.Context, actor auth.Identity, in ArticleInput) (store.Article, error) {
	if err := authorize(actor, auth.OpAuthorArticle); err != nil {
		return store.Article{}, err
	}
	if err := s.validate(ctx, &in); err != nil {
		return store.Article{}, err
	}

	now := s.now()
	article, err := s.queries.CreateArticle(ctx, store.CreateArticleParams{
		Title:       in.Title,
		Content:     in.Content,
		AuthorID:    actor.UserID,
		PublisherID: publisherParam(in.PublisherID),
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		return store.Article{}, fmt.Errorf("creating article: %w", err)
	}

	s.logger.Info("article submitted", "article_id", article.ID, "author", actor.Username)
	s.logEvent(ctx, actor, "Article submitted", article.ID, article.Title)
	return article, nil
}

// Update edits an article. Only the author or an editor may edit. The
// approval state is left untouched and no notification is sent.
func (s *ArticleService) Update(ctx context.Context, actor auth.Identity, id int64, in ArticleInput) (store.Article, error) {
	existing, err := s.editable(ctx, actor, id)
	if err != nil {
		return store.Article{}, err
	}
	if err := s.validate(ctx, &in); err != nil {
		return store.Article{}, err
	}

	if _, err := s.queries.UpdateArticleContent(ctx, store.UpdateArticleContentParams{
		Title:       in.Title,
		Content:     in.Content,
		PublisherID: publisherParam(in.PublisherID),
		UpdatedAt:   s.now(),
		ID:          existing.ID,
	}); err != nil {
		return store.Article{}, fmt.Errorf("updating article %d: %w", id, err)
	}

	s.logEvent(ctx, actor, "Article updated", id, in.Title)
	return s.queries.GetArticleByID(ctx, id)
}

// Delete removes an article. Editors may delete any article, authors only
// their own unapproved ones.
func (s *ArticleService) Delete(ctx context.Context, actor auth.Identity, id int64) error {
	if !actor.IsAuthenticated() {
		return ErrUnauthenticated
	}

	article, err := s.queries.GetArticleByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("article %d: %w", id, ErrNotFound)
		}
		return fmt.Errorf("loading article %d: %w", id, err)
	}

	ownPending := article.AuthorID == actor.UserID && !article.IsApproved
	if auth.Authorize(actor, auth.OpDeleteArticle) != auth.Allow && !ownPending {
		return ErrPermissionDenied
	}

	if _, err := s.queries.DeleteArticle(ctx, id); err != nil {
		return fmt.Errorf("deleting article %d: %w", id, err)
	}

	s.logger.Info("article deleted", "article_id", id, "by", actor.Username)
	s.logEvent(ctx, actor, "Article deleted", id, article.Title)
	return nil
}

// Get returns an article visible to actor: approved articles to everyone,
// unapproved ones only to their author and to editors.
func (s *ArticleService) Get(ctx context.Context, actor auth.Identity, id int64) (model.Article, error) {
	row, err := s.queries.GetArticleRow(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Article{}, fmt.Errorf("article %d: %w", id, ErrNotFound)
		}
		return model.Article{}, fmt.Errorf("loading article %d: %w", id, err)
	}
	if !row.IsApproved && row.AuthorID != actor.UserID && !actor.IsEditor() {
		return model.Article{}, fmt.Errorf("article %d: %w", id, ErrNotFound)
	}
	return model.ArticleFromRow(row), nil
}

// GetForEdit returns the stored article if actor may edit it.
func (s *ArticleService) GetForEdit(ctx context.Context, actor auth.Identity, id int64) (store.Article, error) {
	return s.editable(ctx, actor, id)
}

// ListOwn returns every article authored by actor, newest first.
func (s *ArticleService) ListOwn(ctx context.Context, actor auth.Identity) ([]model.Article, error) {
	if err := authorize(actor, auth.OpAuthorArticle); err != nil {
		return nil, err
	}
	rows, err := s.queries.ListArticlesByAuthor(ctx, actor.UserID)
	if err != nil {
		return nil, fmt.Errorf("listing own articles: %w", err)
	}
	return model.ArticlesFromRows(rows), nil
}

func (s *ArticleService) editable(ctx context.Context, actor auth.Identity, id int64) (store.Article, error) {
	if !actor.IsAuthenticated() {
		return store.Article{}, ErrUnauthenticated
	}
	article, err := s.queries.GetArticleByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.Article{}, fmt.Errorf("article %d: %w", id, ErrNotFound)
		}
		return store.Article{}, fmt.Errorf("loading article %d: %w", id, err)
	}
	if article.AuthorID != actor.UserID && !actor.IsEditor() {
		return store.Article{}, ErrPermissionDenied
	}
	return article, nil
}

func (s *ArticleService) logEvent(ctx context.Context, actor auth.Identity, message string, articleID int64, title string) {
	if s.events == nil {
		return
	}
	uid := actor.UserID
	_ = s.events.LogArticleEvent(ctx, model.EventLevelInfo, message, &uid, "", map[string]any{
		"article_id": articleID,
		"title":      title,
	})
}
