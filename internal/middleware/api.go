// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// rate limiting, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/olegiv/otms-go/internal/model"
	"github.com/olegiv/otms-go/internal/store"
)

// ContextKey is the type for request context keys set by this package.
type ContextKey string

// ContextKeyAPIKey is the context key for API key data.
const ContextKeyAPIKey ContextKey = "api_key"

// APIError represents a JSON error response for the API.
type APIError struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message
	apiErr.Error.Details = details

	_ = json.NewEncoder(w).Encode(apiErr)
}

// validateAPIKey parses the Authorization header and validates the API key.
// The second return value reports whether an error response was written.
func validateAPIKey(w http.ResponseWriter, r *http.Request, queries *store.Queries) (*model.APIKey, bool) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing Authorization header", nil)
		return nil, true
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid Authorization header format. Use: Bearer <api_key>", nil)
		return nil, true
	}

	rawKey := parts[1]
	if rawKey == "" {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "API key is empty", nil)
		return nil, true
	}

	keyHash := model.HashAPIKey(rawKey)
	apiKey, err := queries.GetAPIKeyByHash(r.Context(), keyHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Invalid API key", nil)
		} else {
			slog.Error("failed to validate API key", "error", err)
			WriteAPIError(w, http.StatusInternalServerError, "internal_error", "Failed to validate API key", nil)
		}
		return nil, true
	}

	if !apiKey.IsValid() {
		WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "API key is inactive or expired", nil)
		return nil, true
	}

	_ = queries.TouchAPIKey(r.Context(), apiKey.ID)
	return &apiKey, false
}

// RequireAPIKey requires a valid API key with the given permission.
func RequireAPIKey(db *sql.DB, permission string) func(http.Handler) http.Handler {
	queries := store.New(db)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			apiKey, handled := validateAPIKey(w, r, queries)
			if handled {
				return
			}

			if permission != "" && !apiKey.HasPermission(permission) {
				WriteAPIError(w, http.StatusForbidden, "forbidden",
					"API key lacks required permission", map[string]string{"permission": permission})
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyAPIKey, apiKey)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// APIKeyFromContext returns the authenticated API key, if any.
func APIKeyFromContext(ctx context.Context) *model.APIKey {
	key, _ := ctx.Value(ContextKeyAPIKey).(*model.APIKey)
	return key
}
