// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/olegiv/newsdesk/internal/model"
	"github.com/olegiv/newsdesk/internal/store"
)

// DefaultLatestLimit is the number of articles shown on the anonymous front page.
const DefaultLatestLimit = 20

// FeedService answers read-side article queries.
type FeedService struct {
	queries *store.Queries
}

// NewFeedService creates a new FeedService.
func NewFeedService(db *sql.DB) *FeedService {
	return &FeedService{queries: store.New(db)}
}

// SubscribedFeed returns the approved articles whose publisher the reader
// subscribes to or whose author the reader follows. Each article appears
// once, newest first. A reader without subscriptions gets an empty slice.
func (s *FeedService) SubscribedFeed(ctx context.Context, readerID int64) ([]model.Article, error) {
	rows, err := s.queries.ListSubscribedArticles(ctx, readerID)
	if err != nil {
		return nil, fmt.Errorf("listing subscribed articles: %w", err)
	}
	return model.ArticlesFromRows(rows), nil
}

// Latest returns the newest approved articles.
func (s *FeedService) Latest(ctx context.Context, limit int64) ([]model.Article, error) {
	if limit <= 0 {
		limit = DefaultLatestLimit
	}
	rows, err := s.queries.ListApprovedArticles(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("listing approved articles: %w", err)
	}
	return model.ArticlesFromRows(rows), nil
}

// ByPublisher returns approved articles of one publisher.
func (s *FeedService) ByPublisher(ctx context.Context, publisherID int64) ([]model.Article, error) {
	rows, err := s.queries.ListApprovedArticlesByPublisher(ctx, publisherID)
	if err != nil {
		return nil, fmt.Errorf("listing publisher articles: %w", err)
	}
	return model.ArticlesFromRows(rows), nil
}

// ByJournalist returns approved articles of one author.
func (s *FeedService) ByJournalist(ctx context.Context, journalistID int64) ([]model.Article, error) {
	rows, err := s.queries.ListApprovedArticlesByAuthor(ctx, journalistID)
	if err != nil {
		return nil, fmt.Errorf("listing journalist articles: %w", err)
	}
	return model.ArticlesFromRows(rows), nil
}
