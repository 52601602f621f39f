// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const userColumns = `id, username, email, password_hash, articles_published_independently,
	newsletters_published_independently, created_at, last_login_at`

func scanUser(row interface{ Scan(...any) error }) (User, error) {
	var u User
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.ArticlesPublishedIndependently,
		&u.NewslettersPublishedIndependently,
		&u.CreatedAt,
		&u.LastLoginAt,
	)
	return u, err
}

const createUser = `
INSERT INTO users (username, email, password_hash, created_at)
VALUES (?, ?, ?, ?)`

type CreateUserParams struct {
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	result, err := q.db.ExecContext(ctx, createUser, arg.Username, arg.Email, arg.PasswordHash, arg.CreatedAt)
	if err != nil {
		return User{}, err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return User{}, err
	}
	return q.GetUserByID(ctx, id)
}

const getUserByID = `SELECT ` + userColumns + ` FROM users WHERE id = ?`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByID, id))
}

const getUserByUsername = `SELECT ` + userColumns + ` FROM users WHERE username = ?`

func (q *Queries) GetUserByUsername(ctx context.Context, username string) (User, error) {
	return scanUser(q.db.QueryRowContext(ctx, getUserByUsername, username))
}

const deleteUser = `DELETE FROM users WHERE id = ?`

func (q *Queries) DeleteUser(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, deleteUser, id)
	return err
}

const updateUserLastLogin = `UPDATE users SET last_login_at = ? WHERE id = ?`

type UpdateUserLastLoginParams struct {
	LastLoginAt sql.NullTime
	ID          int64
}

func (q *Queries) UpdateUserLastLogin(ctx context.Context, arg UpdateUserLastLoginParams) error {
	_, err := q.db.ExecContext(ctx, updateUserLastLogin, arg.LastLoginAt, arg.ID)
	return err
}

const incrementIndependentArticles = `
UPDATE users SET articles_published_independently = articles_published_independently + 1
WHERE id = ?`

// IncrementIndependentArticles bumps the author's count of approved
// articles published without a publisher.
func (q *Queries) IncrementIndependentArticles(ctx context.Context, userID int64) error {
	_, err := q.db.ExecContext(ctx, incrementIndependentArticles, userID)
	return err
}

const updateUserPassword = `UPDATE users SET password_hash = ? WHERE id = ?`

type UpdateUserPasswordParams struct {
	PasswordHash string
	ID           int64
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) error {
	_, err := q.db.ExecContext(ctx, updateUserPassword, arg.PasswordHash, arg.ID)
	return err
}

const addUserToGroup = `
INSERT OR IGNORE INTO user_groups (user_id, group_id)
SELECT ?, id FROM auth_groups WHERE name = ?`

type AddUserToGroupParams struct {
	UserID    int64
	GroupName string
}

// AddUserToGroup returns the number of memberships created (0 when the group
// does not exist or the user is already a member).
func (q *Queries) AddUserToGroup(ctx context.Context, arg AddUserToGroupParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, addUserToGroup, arg.UserID, arg.GroupName)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const removeUserFromGroup = `
DELETE FROM user_groups
WHERE user_id = ? AND group_id = (SELECT id FROM auth_groups WHERE name = ?)`

type RemoveUserFromGroupParams struct {
	UserID    int64
	GroupName string
}

func (q *Queries) RemoveUserFromGroup(ctx context.Context, arg RemoveUserFromGroupParams) error {
	_, err := q.db.ExecContext(ctx, removeUserFromGroup, arg.UserID, arg.GroupName)
	return err
}

const listUserGroupNames = `
SELECT g.name FROM auth_groups g
JOIN user_groups ug ON ug.group_id = g.id
WHERE ug.user_id = ?
ORDER BY g.name`

func (q *Queries) ListUserGroupNames(ctx context.Context, userID int64) ([]string, error) {
	rows, err := q.db.QueryContext(ctx, listUserGroupNames, userID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		items = append(items, name)
	}
	return items, rows.Err()
}

const listUsersInGroup = `
SELECT u.id, u.username, u.email, u.password_hash, u.articles_published_independently,
	u.newsletters_published_independently, u.created_at, u.last_login_at
FROM users u
JOIN user_groups ug ON ug.user_id = u.id
JOIN auth_groups g ON g.id = ug.group_id
WHERE g.name = ?
ORDER BY u.username`

func (q *Queries) ListUsersInGroup(ctx context.Context, groupName string) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsersInGroup, groupName)
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

const countUsers = `SELECT COUNT(*) FROM users`

func (q *Queries) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countUsers).Scan(&count)
	return count, err
}
