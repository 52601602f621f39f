// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

// Operation is a protected action.
type Operation string

const (
	OpViewFeed            Operation = "view_feed"
	OpReviewArticles      Operation = "review_articles"
	OpApproveArticle      Operation = "approve_article"
	OpDeleteArticle       Operation = "delete_article"
	OpAuthorArticle       Operation = "author_article"
	OpEditArticle         Operation = "edit_article"
	OpManageSubscriptions Operation = "manage_subscriptions"
	OpManagePublishers    Operation = "manage_publishers"
)

// Decision is the outcome of Authorize.
type Decision int

const (
	Allow Decision = iota
	DenyUnauthenticated
	DenyForbidden
)

func (d Decision) String() string {
	switch d {
	case Allow:
		return "allow"
	case DenyUnauthenticated:
		return "deny_unauthenticated"
	default:
		return "deny_forbidden"
	}
}

// requiredGroup maps operations to the group they need. Operations with an
// empty group only require authentication. OpEditArticle is checked per
// article by the article service: authors edit their own, editors any.
var requiredGroup = map[Operation]string{
	OpViewFeed:            "",
	OpManageSubscriptions: "",
	OpEditArticle:         "",
	OpReviewArticles:      GroupEditor,
	OpApproveArticle:      GroupEditor,
	OpDeleteArticle:       GroupEditor,
	OpManagePublishers:    GroupEditor,
	OpAuthorArticle:       GroupJournalist,
}

// RequiredGroup returns the group needed for op, or "" when any
// authenticated user may perform it.
func RequiredGroup(op Operation) string {
	return requiredGroup[op]
}

// Authorize decides whether identity may perform op. Unknown operations are
// forbidden for everyone.
func Authorize(identity Identity, op Operation) Decision {
	if !identity.IsAuthenticated() {
		return DenyUnauthenticated
	}
	group, known := requiredGroup[op]
	if !known {
		return DenyForbidden
	}
	if group != "" && !identity.HasGroup(group) {
		return DenyForbidden
	}
	return Allow
}
