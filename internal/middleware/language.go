// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"context"
	"net/http"

	"github.com/olegiv/otms-go/internal/catalog"
)

// ContextKeyLanguage is the context key for the negotiated language code.
const ContextKeyLanguage ContextKey = "language"

// Language negotiates the request language: an explicit lang query
// parameter wins, then the Accept-Language header, then the catalog's
// default language.
func Language(c *catalog.Catalog) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lang := r.URL.Query().Get("lang")
			if lang == "" {
				lang = c.MatchLanguage(r.Header.Get("Accept-Language"))
			} else {
				lang = c.MatchLanguage(lang)
			}

			ctx := context.WithValue(r.Context(), ContextKeyLanguage, lang)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LanguageFromContext returns the negotiated language code, or the empty
// string when the middleware did not run.
func LanguageFromContext(ctx context.Context) string {
	lang, _ := ctx.Value(ContextKeyLanguage).(string)
	return lang
}
