// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package plural maps a count value to the numerus form a language expects.
// The rule set covers the locales Photini catalogs ship in; anything else
// falls back to the Germanic one/other rule.
package plural

import (
	"strings"

	"golang.org/x/text/language"
)

// Rule selects a numerus form index for a count and declares how many
// forms a complete translation must provide.
type Rule struct {
	NForms int
	Index  func(n int) int
}

// rules is keyed by ISO 639-1 base language code.
var rules = map[string]Rule{
	// One form, no singular/plural distinction.
	"ja": {1, func(n int) int { return 0 }},
	"ko": {1, func(n int) int { return 0 }},
	"zh": {1, func(n int) int { return 0 }},
	"tr": {1, func(n int) int { return 0 }},

	// French counts zero as singular.
	"fr": {2, func(n int) int {
		if n <= 1 {
			return 0
		}
		return 1
	}},
	"pt": {2, func(n int) int {
		if n <= 1 {
			return 0
		}
		return 1
	}},

	// West Slavic: one / few (2-4) / other.
	"cs": {3, func(n int) int {
		switch {
		case n == 1:
			return 0
		case n >= 2 && n <= 4:
			return 1
		default:
			return 2
		}
	}},
	"sk": {3, func(n int) int {
		switch {
		case n == 1:
			return 0
		case n >= 2 && n <= 4:
			return 1
		default:
			return 2
		}
	}},

	// Polish: one / few (2-4 except 12-14) / other.
	"pl": {3, func(n int) int {
		switch {
		case n == 1:
			return 0
		case n%10 >= 2 && n%10 <= 4 && (n%100 < 12 || n%100 > 14):
			return 1
		default:
			return 2
		}
	}},

	// East Slavic: one (1, 21, 31... except 11) / few / other.
	"ru": {3, slavicIndex},
	"uk": {3, slavicIndex},
}

func slavicIndex(n int) int {
	switch {
	case n%10 == 1 && n%100 != 11:
		return 0
	case n%10 >= 2 && n%10 <= 4 && (n%100 < 12 || n%100 > 14):
		return 1
	default:
		return 2
	}
}

// germanic is the default one/other rule used by en, de, es, it, nl and
// most other catalog locales.
var germanic = Rule{2, func(n int) int {
	if n == 1 {
		return 0
	}
	return 1
}}

// RuleFor returns the plural rule for a language code. Region subtags are
// ignored: "pt-BR" uses the "pt" rule.
func RuleFor(lang string) Rule {
	base := baseCode(lang)
	if r, ok := rules[base]; ok {
		return r
	}
	return germanic
}

// Forms returns the number of numerus forms a complete translation needs.
func Forms(lang string) int {
	return RuleFor(lang).NForms
}

// Index returns which numerus form the count n selects. Negative counts
// use their magnitude, matching how counts surface in UI strings.
func Index(lang string, n int) int {
	if n < 0 {
		n = -n
	}
	return RuleFor(lang).Index(n)
}

// baseCode canonicalizes a language tag and strips everything but the base
// language. Unparseable tags keep whatever precedes the first separator.
func baseCode(lang string) string {
	if tag, err := language.Parse(lang); err == nil {
		base, _ := tag.Base()
		return base.String()
	}
	lang = strings.ToLower(lang)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	return lang
}
