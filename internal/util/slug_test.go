// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package util

import (
	"errors"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "The Daily Post", "the-daily-post"},
		{"punctuation", "Tech, Weekly!", "tech-weekly"},
		{"digits", "Channel 4 News", "channel-4-news"},
		{"accents", "Café Ñoño", "cafe-nono"},
		{"cyrillic", "Новости Дня", "novosti-dnia"},
		{"runs of separators", "  Morning -- Herald  ", "morning-herald"},
		{"apostrophe", "Reader's Digest", "reader-s-digest"},
		{"only symbols", "!@#$%", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Slugify(tt.in); got != tt.want {
				t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSlugifyTruncatesAtWordBoundary(t *testing.T) {
	name := strings.Repeat("gazette ", 12) // 12 words, 95 bytes as a slug
	got := Slugify(name)

	if len(got) > MaxSlugLength {
		t.Fatalf("len = %d, want <= %d", len(got), MaxSlugLength)
	}
	if !IsValidSlug(got) {
		t.Errorf("Slugify() = %q is not a valid slug", got)
	}
	for _, word := range strings.Split(got, "-") {
		if word != "gazette" {
			t.Fatalf("word %q was split in %q", word, got)
		}
	}
}

func TestIsValidSlug(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"the-daily-post", true},
		{"post2", true},
		{"", false},
		{"-post", false},
		{"post-", false},
		{"daily--post", false},
		{"Daily-Post", false},
		{"daily_post", false},
		{strings.Repeat("a", MaxSlugLength+1), false},
	}
	for _, tt := range tests {
		if got := IsValidSlug(tt.in); got != tt.want {
			t.Errorf("IsValidSlug(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestUniqueSlug(t *testing.T) {
	used := map[string]bool{"the-daily-post": true, "the-daily-post-2": true}
	taken := func(s string) (bool, error) { return used[s], nil }

	got, err := UniqueSlug("tech-weekly", taken)
	if err != nil || got != "tech-weekly" {
		t.Errorf("free base: got %q, %v", got, err)
	}

	got, err = UniqueSlug("the-daily-post", taken)
	if err != nil || got != "the-daily-post-3" {
		t.Errorf("taken base: got %q, %v; want the-daily-post-3", got, err)
	}
}

func TestUniqueSlugKeepsLengthLimit(t *testing.T) {
	base := Slugify(strings.Repeat("gazette ", 12))
	got, err := UniqueSlug(base, func(s string) (bool, error) { return s == base, nil })
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasSuffix(got, "-2") || len(got) > MaxSlugLength || !IsValidSlug(got) {
		t.Errorf("UniqueSlug() = %q", got)
	}
}

func TestUniqueSlugErrors(t *testing.T) {
	boom := errors.New("db down")
	if _, err := UniqueSlug("x", func(string) (bool, error) { return false, boom }); !errors.Is(err, boom) {
		t.Errorf("err = %v, want %v", err, boom)
	}
	if _, err := UniqueSlug("x", func(string) (bool, error) { return true, nil }); !errors.Is(err, ErrSlugExhausted) {
		t.Errorf("err = %v, want ErrSlugExhausted", err)
	}
}
