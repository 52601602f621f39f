// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"io/fs"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/olegiv/newsdesk/internal/auth"
	"github.com/olegiv/newsdesk/internal/middleware"
	"github.com/olegiv/newsdesk/internal/session"
	"github.com/olegiv/newsdesk/internal/testutil"
	"github.com/olegiv/newsdesk/web"
)

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"layouts/base.html": {Data: []byte(`{{define "base"}}[{{template "who" .}}|{{.Flash}}|{{template "content" .}}]{{end}}`)},
		"partials/who.html": {Data: []byte(`{{define "who"}}{{if .Identity.IsAuthenticated}}{{.Identity.Username}}{{else}}anon{{end}}{{end}}`)},
		"pages/hello.html":  {Data: []byte(`{{define "content"}}hello {{.Data}}{{end}}`)},
		"pages/md.html":     {Data: []byte(`{{define "content"}}{{markdown .Data}}{{end}}`)},
	}
}

func TestNew_ParsesEmbeddedTemplates(t *testing.T) {
	sub, err := fs.Sub(web.Templates, "templates")
	if err != nil {
		t.Fatal(err)
	}
	r, err := New(Config{TemplatesFS: sub})
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	for _, name := range []string{
		"login", "feed", "article", "publishers", "publisher", "journalist",
		"review", "my_articles", "article_form", "subscriptions", "error",
	} {
		if _, ok := r.templates[name]; !ok {
			t.Errorf("template %q not parsed", name)
		}
	}
}

func TestNew_NoPages(t *testing.T) {
	_, err := New(Config{TemplatesFS: fstest.MapFS{
		"layouts/base.html": {Data: []byte(`{{define "base"}}{{end}}`)},
	}})
	if err == nil {
		t.Error("expected error when no pages exist")
	}
}

func TestRender(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	if err != nil {
		t.Fatal(err)
	}

	t.Run("anonymous", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if err := r.Render(rec, req, "hello", TemplateData{Data: "world"}); err != nil {
			t.Fatal(err)
		}
		if got := rec.Body.String(); got != "[anon||hello world]" {
			t.Errorf("body = %q", got)
		}
		if ct := rec.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
			t.Errorf("Content-Type = %q", ct)
		}
	})

	t.Run("identity from request context", func(t *testing.T) {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(middleware.WithIdentity(req.Context(), auth.NewIdentity(4, "rita", "", auth.GroupReader)))
		if err := r.RenderStatus(rec, req, http.StatusNotFound, "hello", TemplateData{Data: "x"}); err != nil {
			t.Fatal(err)
		}
		if rec.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", rec.Code)
		}
		if !strings.HasPrefix(rec.Body.String(), "[rita|") {
			t.Errorf("body = %q", rec.Body.String())
		}
	})

	t.Run("unknown template", func(t *testing.T) {
		rec := httptest.NewRecorder()
		if err := r.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil), "missing", TemplateData{}); err == nil {
			t.Error("expected error for unknown template")
		}
		if rec.Body.Len() != 0 {
			t.Error("nothing should be written on error")
		}
	})
}

func TestRender_FlashIsPoppedOnce(t *testing.T) {
	sm := session.New(testutil.TestDB(t), true)
	r, err := New(Config{TemplatesFS: testFS(), SessionManager: sm})
	if err != nil {
		t.Fatal(err)
	}

	set := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		r.SetFlash(req, "Article approved", "success")
	}))
	var bodies []string
	show := sm.LoadAndSave(http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		rec := httptest.NewRecorder()
		if err := r.Render(rec, req, "hello", TemplateData{Data: "x"}); err != nil {
			t.Error(err)
		}
		bodies = append(bodies, rec.Body.String())
	}))

	rec := httptest.NewRecorder()
	set.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", nil))
	cookie := rec.Result().Cookies()[0]

	for range 2 {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(cookie)
		show.ServeHTTP(httptest.NewRecorder(), req)
	}

	if len(bodies) != 2 || bodies[0] != "[anon|Article approved|hello x]" || bodies[1] != "[anon||hello x]" {
		t.Errorf("bodies = %q", bodies)
	}
}

func TestMarkdown(t *testing.T) {
	r, err := New(Config{TemplatesFS: testFS()})
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		in      string
		want    []string
		notWant []string
	}{
		{"emphasis", "**bold** and _it_", []string{"<strong>bold</strong>", "<em>it</em>"}, nil},
		{"link", "[home](https://example.com)", []string{`href="https://example.com"`}, nil},
		{"script stripped", "hi <script>alert(1)</script>", nil, []string{"<script"}},
		{"javascript link stripped", "[x](javascript:alert(1))", nil, []string{"javascript:"}},
		{"strikethrough", "~~gone~~", []string{"<del>gone</del>"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := string(r.Markdown(tt.in))
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("Markdown(%q) = %q, missing %q", tt.in, got, w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("Markdown(%q) = %q, must not contain %q", tt.in, got, nw)
				}
			}
		})
	}
}

func TestTemplateFuncs(t *testing.T) {
	funcs := (&Renderer{}).templateFuncs()

	formatDate := funcs["formatDate"].(func(time.Time) string)
	if got := formatDate(time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC)); got != "Mar 15, 2025" {
		t.Errorf("formatDate() = %q", got)
	}

	excerpt := funcs["excerpt"].(func(string) string)
	if got := excerpt("short"); got != "short" {
		t.Errorf("excerpt(short) = %q", got)
	}
	long := strings.Repeat("ж", ExcerptLength+5)
	if got := excerpt(long); got != strings.Repeat("ж", ExcerptLength)+"..." {
		t.Errorf("excerpt(long) has %d bytes", len(got))
	}

	can := funcs["can"].(func(auth.Identity, string) bool)
	editor := auth.NewIdentity(1, "ed", "", auth.GroupEditor)
	if !can(editor, "manage_publishers") {
		t.Error("editor should manage publishers")
	}
	if can(auth.Anonymous, "manage_publishers") {
		t.Error("anonymous must not manage publishers")
	}

	contains := funcs["contains"].(func([]int64, int64) bool)
	if !contains([]int64{1, 2}, 2) || contains(nil, 1) {
		t.Error("contains() mismatch")
	}
}
