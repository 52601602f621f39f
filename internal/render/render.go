// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render parses the HTML templates and renders pages with the
// shared layout, flash messages and the current identity.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"path"
	"slices"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/middleware"
	"github.com/olegiv/newsdesk/internal/model"
	"github.com/olegiv/newsdesk/internal/session"
)

// ExcerptLength is the number of characters shown in article lists.
const ExcerptLength = 200

// Renderer handles template rendering with caching.
type Renderer struct {
	templates      map[string]*template.Template
	sessionManager *scs.SessionManager
	isDev          bool
	md             goldmark.Markdown
	policy         *bluemonday.Policy
}

// Config holds renderer configuration.
type Config struct {
	TemplatesFS    fs.FS
	SessionManager *scs.SessionManager
	IsDev          bool
}

// New creates a new Renderer with parsed templates.
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		templates:      make(map[string]*template.Template),
		sessionManager: cfg.SessionManager,
		isDev:          cfg.IsDev,
		md:             goldmark.New(goldmark.WithExtensions(extension.GFM)),
		policy:         bluemonday.UGCPolicy(),
	}

	if err := r.parseTemplates(cfg.TemplatesFS); err != nil {
		return nil, err
	}

	return r, nil
}

// parseTemplates parses every page under pages/ together with the base
// layout and all partials. Pages are keyed by file name without extension.
func (r *Renderer) parseTemplates(templatesFS fs.FS) error {
	partials, err := templateFiles(templatesFS, "partials")
	if err != nil {
		return fmt.Errorf("getting partials: %w", err)
	}
	pages, err := templateFiles(templatesFS, "pages")
	if err != nil {
		return fmt.Errorf("getting pages: %w", err)
	}
	if len(pages) == 0 {
		return fmt.Errorf("no page templates found")
	}

	for _, page := range pages {
		name := strings.TrimSuffix(path.Base(page), ".html")

		files := append([]string{"layouts/base.html"}, partials...)
		files = append(files, page)

		tmpl, err := template.New("").Funcs(r.templateFuncs()).ParseFS(templatesFS, files...)
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}

	return nil
}

// templateFiles returns all .html files in a directory. A missing directory
// yields no files.
func templateFiles(templatesFS fs.FS, dir string) ([]string, error) {
	entries, err := fs.ReadDir(templatesFS, dir)
	if err != nil {
		return nil, nil
	}

	var files []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".html") {
			files = append(files, path.Join(dir, entry.Name()))
		}
	}
	return files, nil
}

// Markdown converts article markdown to sanitized HTML.
func (r *Renderer) Markdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		slog.Warn("markdown conversion failed", "error", err)
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(r.policy.SanitizeBytes(buf.Bytes())) //nolint:gosec // sanitized by bluemonday
}

// templateFuncs returns custom template functions.
func (r *Renderer) templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.Format("Jan 2, 2006")
		},
		"formatDateTime": func(t time.Time) string {
			return t.Format("Jan 2, 2006 3:04 PM")
		},
		"excerpt": func(s string) string {
			cut := model.Excerpt(s, ExcerptLength)
			if len(cut) < len(s) {
				return cut + "..."
			}
			return s
		},
		"markdown": r.Markdown,
		"can": func(identity auth.Identity, op string) bool {
			return auth.Authorize(identity, auth.Operation(op)) == auth.Allow
		},
		"contains": slices.Contains[[]int64, int64],
	}
}

// TemplateData holds data passed to templates.
type TemplateData struct {
	Title       string
	Identity    auth.Identity
	Data        any
	Flash       string
	FlashType   string
	CurrentPath string
	CurrentYear int
}

// Render renders a page with status 200.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, data TemplateData) error {
	return r.RenderStatus(w, req, http.StatusOK, name, data)
}

// RenderStatus renders a page with the given status code.
func (r *Renderer) RenderStatus(w http.ResponseWriter, req *http.Request, status int, name string, data TemplateData) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}

	data.CurrentYear = time.Now().Year()
	data.CurrentPath = req.URL.Path
	if !data.Identity.IsAuthenticated() {
		data.Identity = middleware.GetIdentity(req)
	}

	if r.sessionManager != nil {
		if flash := r.sessionManager.PopString(req.Context(), session.KeyFlash); flash != "" {
			data.Flash = flash
			data.FlashType = r.sessionManager.PopString(req.Context(), session.KeyFlashType)
			if data.FlashType == "" {
				data.FlashType = "info"
			}
		}
	}

	// Render to buffer first to catch errors
	buf := new(bytes.Buffer)
	if err := tmpl.ExecuteTemplate(buf, "base", data); err != nil {
		return fmt.Errorf("executing template %s: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
	return nil
}

// SetFlash sets a flash message in the session.
func (r *Renderer) SetFlash(req *http.Request, message, flashType string) {
	if r.sessionManager != nil {
		r.sessionManager.Put(req.Context(), session.KeyFlash, message)
		r.sessionManager.Put(req.Context(), session.KeyFlashType, flashType)
	}
}
