// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const subscribeToPublisher = `
INSERT OR IGNORE INTO publisher_subscriptions (user_id, publisher_id, created_at)
VALUES (?, ?, ?)`

type PublisherSubscriptionParams struct {
	UserID      int64
	PublisherID int64
	CreatedAt   time.Time
}

func (q *Queries) SubscribeToPublisher(ctx context.Context, arg PublisherSubscriptionParams) error {
	_, err := q.db.ExecContext(ctx, subscribeToPublisher, arg.UserID, arg.PublisherID, arg.CreatedAt)
	return err
}

const unsubscribeFromPublisher = `
DELETE FROM publisher_subscriptions WHERE user_id = ? AND publisher_id = ?`

func (q *Queries) UnsubscribeFromPublisher(ctx context.Context, arg PublisherSubscriptionParams) error {
	_, err := q.db.ExecContext(ctx, unsubscribeFromPublisher, arg.UserID, arg.PublisherID)
	return err
}

const clearPublisherSubscriptions = `DELETE FROM publisher_subscriptions WHERE user_id = ?`

func (q *Queries) ClearPublisherSubscriptions(ctx context.Context, userID int64) error {
	_, err := q.db.ExecContext(ctx, clearPublisherSubscriptions, userID)
	return err
}

const subscribeToJournalist = `
INSERT OR IGNORE INTO journalist_subscriptions (subscriber_id, journalist_id, created_at)
VALUES (?, ?, ?)`

type JournalistSubscriptionParams struct {
	SubscriberID int64
	JournalistID int64
	CreatedAt    time.Time
}

func (q *Queries) SubscribeToJournalist(ctx context.Context, arg JournalistSubscriptionParams) error {
	_, err := q.db.ExecContext(ctx, subscribeToJournalist, arg.SubscriberID, arg.JournalistID, arg.CreatedAt)
	return err
}

const unsubscribeFromJournalist = `
DELETE FROM journalist_subscriptions WHERE subscriber_id = ? AND journalist_id = ?`

func (q *Queries) UnsubscribeFromJournalist(ctx context.Context, arg JournalistSubscriptionParams) error {
	_, err := q.db.ExecContext(ctx, unsubscribeFromJournalist, arg.SubscriberID, arg.JournalistID)
	return err
}

const listSubscribedPublishers = `
SELECT p.id, p.name, p.slug, p.description, p.created_at
FROM publishers p
JOIN publisher_subscriptions ps ON ps.publisher_id = p.id
WHERE ps.user_id = ?
ORDER BY p.name`

func (q *Queries) ListSubscribedPublishers(ctx context.Context, userID int64) ([]Publisher, error) {
	return collectPublishers(ctx, q, listSubscribedPublishers, userID)
}

const listSubscribedJournalists = `
SELECT u.id, u.username, u.email, u.password_hash, u.articles_published_independently,
	u.newsletters_published_independently, u.created_at, u.last_login_at
FROM users u
JOIN journalist_subscriptions js ON js.journalist_id = u.id
WHERE js.subscriber_id = ?
ORDER BY u.username`

func (q *Queries) ListSubscribedJournalists(ctx context.Context, userID int64) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listSubscribedJournalists, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

const listApprovalRecipients = `
SELECT u.email FROM users u
JOIN publisher_subscriptions ps ON ps.user_id = u.id
WHERE ps.publisher_id = ? AND u.email <> ''
UNION
SELECT u.email FROM users u
JOIN journalist_subscriptions js ON js.subscriber_id = u.id
WHERE js.journalist_id = ? AND u.email <> ''
ORDER BY 1`

type ListApprovalRecipientsParams struct {
	PublisherID sql.NullInt64
	AuthorID    int64
}

// ListApprovalRecipients returns the e-mail addresses of everyone subscribed
// to the publisher (when set) or to the author. UNION removes exact duplicates.
func (q *Queries) ListApprovalRecipients(ctx context.Context, arg ListApprovalRecipientsParams) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listApprovalRecipients, arg.PublisherID, arg.AuthorID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []string
	for rows.Next() {
		var email string
		if err := rows.Scan(&email); err != nil {
			return nil, err
		}
		items = append(items, email)
	}
	return items, rows.Err()
}
