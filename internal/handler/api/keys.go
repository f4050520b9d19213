// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/olegiv/otms-go/internal/model"
	"github.com/olegiv/otms-go/internal/store"
)

// CreateAPIKeyRequest is the body of POST /admin/keys.
type CreateAPIKeyRequest struct {
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
	ExpiresIn   string   `json:"expires_in,omitempty"` // Go duration, e.g. "720h"
}

// CreateAPIKeyResponse carries the raw key, shown exactly once.
type CreateAPIKeyResponse struct {
	Key    string       `json:"key"`
	APIKey model.APIKey `json:"api_key"`
}

// CreateAPIKey mints a new API key. The raw key is returned once and only
// its hash is stored.
func (h *Handler) CreateAPIKey(w http.ResponseWriter, r *http.Request) {
	var req CreateAPIKeyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", "Invalid JSON body")
		return
	}

	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}

	valid := make(map[string]struct{})
	for _, p := range model.AllPermissions() {
		valid[p] = struct{}{}
	}
	for _, p := range req.Permissions {
		if _, ok := valid[p]; !ok {
			WriteError(w, http.StatusBadRequest, "bad_request", "unknown permission: "+p)
			return
		}
	}

	var expiresAt *time.Time
	if req.ExpiresIn != "" {
		d, err := time.ParseDuration(req.ExpiresIn)
		if err != nil || d <= 0 {
			WriteError(w, http.StatusBadRequest, "bad_request", "expires_in must be a positive duration")
			return
		}
		t := time.Now().UTC().Add(d)
		expiresAt = &t
	}

	rawKey, prefix, err := model.GenerateAPIKey()
	if err != nil {
		h.logger.Error("generating API key failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to generate key")
		return
	}

	perms, _ := json.Marshal(req.Permissions)
	key, err := h.queries.CreateAPIKey(r.Context(), store.CreateAPIKeyParams{
		Name:        req.Name,
		KeyHash:     model.HashAPIKey(rawKey),
		KeyPrefix:   prefix,
		Permissions: string(perms),
		ExpiresAt:   expiresAt,
	})
	if err != nil {
		h.logger.Error("storing API key failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to store key")
		return
	}

	WriteCreated(w, CreateAPIKeyResponse{Key: rawKey, APIKey: key})
}
