// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package notify fans an article approval out to subscriber email, a social
// announcement and an optional message broker.
package notify

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalEvent describes an article that has just become approved. It is
// built once by the approval workflow and never re-emitted for the same
// article.
type ApprovalEvent struct {
	ID             string    `json:"id"`
	ArticleID      int64     `json:"article_id"`
	Title          string    `json:"title"`
	Content        string    `json:"content"`
	ArticleURL     string    `json:"url"`
	AuthorID       int64     `json:"author_id"`
	AuthorUsername string    `json:"author_username"`
	PublisherID    int64     `json:"publisher_id,omitempty"` // 0 for independent articles
	PublisherName  string    `json:"publisher_name,omitempty"`
	ApprovedBy     int64     `json:"approved_by"`
	ApprovedAt     time.Time `json:"approved_at"`
}

// NewEventID returns a fresh event identifier.
func NewEventID() string {
	return uuid.NewString()
}

// HasPublisher reports whether the article belongs to a publisher.
func (e ApprovalEvent) HasPublisher() bool {
	return e.PublisherID > 0
}
