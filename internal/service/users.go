// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/store"
)

// UserService handles authentication and user lookups.
type UserService struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(db *sql.DB, logger *slog.Logger) *UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &UserService{queries: store.New(db), logger: logger}
}

// Authenticate verifies a username and password. On success the last login
// time is updated and outdated password hashes are upgraded.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (store.User, error) {
	user, err := s.queries.GetUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.User{}, ErrInvalidCredentials
		}
		return store.User{}, fmt.Errorf("loading user: %w", err)
	}

	ok, err := auth.CheckPassword(password, user.PasswordHash)
	if err != nil || !ok {
		return store.User{}, ErrInvalidCredentials
	}

	if auth.NeedsRehash(user.PasswordHash) {
		if hash, err := auth.HashPassword(password); err == nil {
			if err := s.queries.UpdateUserPassword(ctx, store.UpdateUserPasswordParams{PasswordHash: hash, ID: user.ID}); err != nil {
				s.logger.Warn("failed to upgrade password hash", "user_id", user.ID, "error", err)
			}
		}
	}

	if err := s.queries.UpdateUserLastLogin(ctx, store.UpdateUserLastLoginParams{
		LastLoginAt: sql.NullTime{Time: time.Now().UTC(), Valid: true},
		ID:          user.ID,
	}); err != nil {
		s.logger.Warn("failed to update last login", "user_id", user.ID, "error", err)
	}

	return user, nil
}

// LoadIdentity builds the identity of a stored user.
func (s *UserService) LoadIdentity(ctx context.Context, userID int64) (auth.Identity, error) {
	user, err := s.queries.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return auth.Anonymous, fmt.Errorf("user %d: %w", userID, ErrNotFound)
		}
		return auth.Anonymous, fmt.Errorf("loading user %d: %w", userID, err)
	}
	groups, err := s.queries.ListUserGroupNames(ctx, userID)
	if err != nil {
		return auth.Anonymous, fmt.Errorf("loading groups of %d: %w", userID, err)
	}
	return auth.NewIdentity(user.ID, user.Username, user.Email, groups...), nil
}

// GetJournalist returns a user that belongs to the Journalist group.
func (s *UserService) GetJournalist(ctx context.Context, id int64) (store.User, error) {
	user, err := s.queries.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return store.User{}, fmt.Errorf("journalist %d: %w", id, ErrNotFound)
		}
		return store.User{}, fmt.Errorf("loading journalist %d: %w", id, err)
	}
	groups, err := s.queries.ListUserGroupNames(ctx, id)
	if err != nil {
		return store.User{}, fmt.Errorf("loading groups of %d: %w", id, err)
	}
	if !slices.Contains(groups, auth.GroupJournalist) {
		return store.User{}, fmt.Errorf("user %d is not a journalist: %w", id, ErrNotFound)
	}
	return user, nil
}

// ListJournalists returns every journalist ordered by username.
func (s *UserService) ListJournalists(ctx context.Context) ([]JournalistRef, error) {
	users, err := s.queries.ListUsersInGroup(ctx, auth.GroupJournalist)
	if err != nil {
		return nil, fmt.Errorf("listing journalists: %w", err)
	}
	out := make([]JournalistRef, 0, len(users))
	for _, u := range users {
		out = append(out, JournalistRef{ID: u.ID, Username: u.Username})
	}
	return out, nil
}

// ListEditors returns every user in the Editor group.
func (s *UserService) ListEditors(ctx context.Context) ([]store.User, error) {
	return s.queries.ListUsersInGroup(ctx, auth.GroupEditor)
}
