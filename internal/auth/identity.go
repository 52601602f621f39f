// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package auth provides identities, role-based authorization and argon2id
// password hashing.
package auth

// Group names. Roles are group memberships and are not exclusive.
const (
	GroupReader     = "Reader"
	GroupEditor     = "Editor"
	GroupJournalist = "Journalist"
)

// Identity is the requesting principal. The zero value is anonymous.
type Identity struct {
	UserID   int64
	Username string
	Email    string
	groups   map[string]struct{}
}

// Anonymous is the identity of an unauthenticated request.
var Anonymous = Identity{}

// NewIdentity builds an authenticated identity with the given group names.
func NewIdentity(userID int64, username, email string, groups ...string) Identity {
	id := Identity{
		UserID:   userID,
		Username: username,
		Email:    email,
		groups:   make(map[string]struct{}, len(groups)),
	}
	for _, g := range groups {
		id.groups[g] = struct{}{}
	}
	return id
}

// IsAuthenticated reports whether the identity belongs to a logged-in user.
func (i Identity) IsAuthenticated() bool {
	return i.UserID > 0
}

// HasGroup reports whether the identity is a member of group.
func (i Identity) HasGroup(group string) bool {
	_, ok := i.groups[group]
	return ok
}

// IsEditor is shorthand for HasGroup(GroupEditor).
func (i Identity) IsEditor() bool { return i.HasGroup(GroupEditor) }

// IsJournalist is shorthand for HasGroup(GroupJournalist).
func (i Identity) IsJournalist() bool { return i.HasGroup(GroupJournalist) }

// Groups returns the identity's group names in a stable order.
func (i Identity) Groups() []string {
	var out []string
	for _, g := range []string{GroupEditor, GroupJournalist, GroupReader} {
		if i.HasGroup(g) {
			out = append(out, g)
		}
	}
	return out
}
