// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"errors"
	"sort"
	"strings"

	"github.com/olegiv/newsdesk/internal/auth"
)

var (
	// ErrNotFound is returned when the requested entity does not exist or is
	// not visible to the caller.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied is returned when the caller may not perform the operation.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrUnauthenticated is returned for anonymous callers of protected operations.
	ErrUnauthenticated = errors.New("authentication required")
	// ErrSelfSubscription is returned when a user subscribes to themselves.
	ErrSelfSubscription = errors.New("cannot subscribe to yourself")
	// ErrInvalidArticle is returned when article input fails validation.
	ErrInvalidArticle = errors.New("invalid article")
	// ErrInvalidPublisher is returned when publisher input fails validation.
	ErrInvalidPublisher = errors.New("invalid publisher")
	// ErrInvalidCredentials is returned by Authenticate.
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// ValidationError carries per-field messages. It unwraps to the sentinel
// passed to newValidationError.
type ValidationError struct {
	Fields map[string]string
	kind   error
}

func newValidationError(kind error) *ValidationError {
	return &ValidationError{Fields: make(map[string]string), kind: kind}
}

func (e *ValidationError) add(field, msg string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = msg
	}
}

func (e *ValidationError) empty() bool {
	return len(e.Fields) == 0
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return e.kind.Error() + ": " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return e.kind
}

// authorize maps a gate decision to a service error.
func authorize(actor auth.Identity, op auth.Operation) error {
	switch auth.Authorize(actor, op) {
	case auth.Allow:
		return nil
	case auth.DenyUnauthenticated:
		return ErrUnauthenticated
	default:
		return ErrPermissionDenied
	}
}
