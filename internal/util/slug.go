// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util derives URL slugs for publishers.
package util

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxSlugLength bounds generated slugs, suffix included.
const MaxSlugLength = 64

// maxSlugSuffix is the highest numeric suffix UniqueSlug tries.
const maxSlugSuffix = 100

// ErrSlugExhausted is returned when every suffixed candidate is taken.
var ErrSlugExhausted = errors.New("no free slug")

var (
	nonSlugRun = regexp.MustCompile(`[^a-z0-9]+`)
	validSlug  = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Slugify turns a publisher name into a lowercase ASCII slug of words joined
// by single hyphens. Accents are stripped and other scripts transliterated,
// so "Café Ñoño" becomes "cafe-nono" and "Новости Дня" "novosti-dnia". The
// result is cut at a word boundary to MaxSlugLength and may be empty.
func Slugify(name string) string {
	ascii, _, err := transform.String(stripMarks, name)
	if err != nil {
		ascii = name
	}
	ascii = strings.ToLower(unidecode.Unidecode(ascii))
	slug := strings.Trim(nonSlugRun.ReplaceAllString(ascii, "-"), "-")
	return truncateSlug(slug, MaxSlugLength)
}

// truncateSlug shortens slug to at most n bytes, preferring to cut at a
// hyphen so no word is split.
func truncateSlug(slug string, n int) string {
	if len(slug) <= n {
		return slug
	}
	cut := slug[:n]
	if i := strings.LastIndexByte(cut, '-'); i > 0 && slug[n] != '-' {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, "-")
}

// IsValidSlug reports whether s is a non-empty run of lowercase words joined
// by single hyphens.
func IsValidSlug(s string) bool {
	return len(s) <= MaxSlugLength && validSlug.MatchString(s)
}

// UniqueSlug returns base when it is free, otherwise the first free
// "base-2", "base-3", ... candidate. taken reports whether a candidate is
// already in use. The base is shortened when needed so the suffixed slug
// stays within MaxSlugLength.
func UniqueSlug(base string, taken func(candidate string) (bool, error)) (string, error) {
	for n := 1; n <= maxSlugSuffix; n++ {
		candidate := base
		if n > 1 {
			suffix := "-" + strconv.Itoa(n)
			candidate = truncateSlug(base, MaxSlugLength-len(suffix)) + suffix
		}
		used, err := taken(candidate)
		if err != nil {
			return "", err
		}
		if !used {
			return candidate, nil
		}
	}
	return "", ErrSlugExhausted
}
