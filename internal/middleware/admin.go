// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"net/http"
	"strings"

	"github.com/olegiv/otms-go/internal/auth"
)

// RequireAdminToken guards key-management endpoints with the configured
// admin token. An empty hash disables the endpoints entirely.
func RequireAdminToken(tokenHash string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if tokenHash == "" {
				WriteAPIError(w, http.StatusNotFound, "not_found", "Admin endpoints are not enabled", nil)
				return
			}

			authHeader := r.Header.Get("Authorization")
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || parts[1] == "" {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing admin token", nil)
				return
			}

			if !auth.VerifyToken(tokenHash, parts[1]) {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid admin token", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
