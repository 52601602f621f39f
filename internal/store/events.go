// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const createEvent = `
INSERT INTO events (level, category, message, user_id, ip_address, metadata, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IpAddress string
	Metadata  string
	CreatedAt time.Time
}

func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, createEvent,
		arg.Level,
		arg.Category,
		arg.Message,
		arg.UserID,
		arg.IpAddress,
		arg.Metadata,
		arg.CreatedAt,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

const listEventsByCategory = `
SELECT id, level, category, message, user_id, ip_address, metadata, created_at
FROM events
WHERE category = ?
ORDER BY created_at DESC, id DESC
LIMIT ?`

type ListEventsByCategoryParams struct {
	Category string
	Limit    int64
}

func (q *Queries) ListEventsByCategory(ctx context.Context, arg ListEventsByCategoryParams) ([]Event, error) {
	return collectEvents(ctx, q, listEventsByCategory, arg.Category, arg.Limit)
}

const listRecentEvents = `
SELECT id, level, category, message, user_id, ip_address, metadata, created_at
FROM events
ORDER BY created_at DESC, id DESC
LIMIT ?`

func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]Event, error) {
	return collectEvents(ctx, q, listRecentEvents, limit)
}

func collectEvents(ctx context.Context, q *Queries, query string, args ...any) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(
			&e.ID,
			&e.Level,
			&e.Category,
			&e.Message,
			&e.UserID,
			&e.IpAddress,
			&e.Metadata,
			&e.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

const deleteEventsBefore = `DELETE FROM events WHERE created_at < ?`

func (q *Queries) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := q.db.ExecContext(ctx, deleteEventsBefore, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
