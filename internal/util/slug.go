// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package util provides general-purpose utility functions including
// URL slug generation with Unicode normalization and transliteration.
package util

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// slugRegex matches non-alphanumeric characters (except hyphens)
	slugRegex = regexp.MustCompile(`[^a-z0-9-]+`)
	// multipleHyphens matches multiple consecutive hyphens
	multipleHyphens = regexp.MustCompile(`-{2,}`)
	// camelBoundary matches a lower-to-upper case transition
	camelBoundary = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// Slugify converts a string to a URL-friendly slug. Accented characters
// are decomposed, anything outside Latin script is transliterated, and
// the remainder is lowercased with hyphen separators.
func Slugify(s string) string {
	// Normalize unicode characters (decompose accents)
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)

	// Transliterate whatever survives with non-ASCII intact
	result = unidecode.Unidecode(result)

	result = strings.ToLower(result)
	result = strings.ReplaceAll(result, " ", "-")
	result = slugRegex.ReplaceAllString(result, "")
	result = multipleHyphens.ReplaceAllString(result, "-")
	result = strings.Trim(result, "-")

	return result
}

// SlugifyContext converts a TS context name like "FlickrUploader" to a
// hyphenated slug ("flickr-uploader") for use in API routes.
func SlugifyContext(name string) string {
	return Slugify(camelBoundary.ReplaceAllString(name, "$1 $2"))
}
