// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"path"
	"strings"
)

// AppendSlash redirects GET and HEAD requests for paths without a trailing
// slash to the slashed form (HTTP 301). Paths whose last segment looks like
// a file name, and the excluded prefixes, are passed through unchanged.
func AppendSlash(exclude ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p := r.URL.Path
			if strings.HasSuffix(p, "/") || (r.Method != http.MethodGet && r.Method != http.MethodHead) ||
				strings.Contains(path.Base(p), ".") || hasAnyPrefix(p, exclude) {
				next.ServeHTTP(w, r)
				return
			}

			newURL := p + "/"
			if r.URL.RawQuery != "" {
				newURL += "?" + r.URL.RawQuery
			}
			http.Redirect(w, r, newURL, http.StatusMovedPermanently)
		})
	}
}

func hasAnyPrefix(p string, prefixes []string) bool {
	for _, prefix := range prefixes {
		if p == prefix || strings.HasPrefix(p, prefix+"/") {
			return true
		}
	}
	return false
}
