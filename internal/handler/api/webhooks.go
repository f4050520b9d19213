// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/otms-go/internal/model"
	"github.com/olegiv/otms-go/internal/store"
)

// CreateWebhookRequest is the body of POST /webhooks.
type CreateWebhookRequest struct {
	Name   string   `json:"name"`
	URL    string   `json:"url"`
	Secret string   `json:"secret,omitempty"`
	Events []string `json:"events"`
}

// CreateWebhook registers a new notification endpoint.
func (h *Handler) CreateWebhook(w http.ResponseWriter, r *http.Request) {
	var req CreateWebhookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", "Invalid JSON body")
		return
	}

	if req.Name == "" {
		WriteError(w, http.StatusBadRequest, "bad_request", "name is required")
		return
	}
	u, err := url.Parse(req.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		WriteError(w, http.StatusBadRequest, "bad_request", "url must be a valid http(s) URL")
		return
	}
	if len(req.Events) == 0 {
		WriteError(w, http.StatusBadRequest, "bad_request", "at least one event is required")
		return
	}
	valid := make(map[string]struct{})
	for _, e := range model.AllWebhookEvents() {
		valid[e] = struct{}{}
	}
	for _, e := range req.Events {
		if _, ok := valid[e]; !ok {
			WriteError(w, http.StatusBadRequest, "bad_request", "unknown event: "+e)
			return
		}
	}

	events, _ := json.Marshal(req.Events)
	hook, err := h.queries.CreateWebhook(r.Context(), store.CreateWebhookParams{
		Name:   req.Name,
		URL:    req.URL,
		Secret: req.Secret,
		Events: string(events),
	})
	if err != nil {
		h.logger.Error("creating webhook failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to create webhook")
		return
	}

	WriteCreated(w, hook)
}

// ListDeliveries returns recent delivery attempts for one webhook.
func (h *Handler) ListDeliveries(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, http.StatusBadRequest, "bad_request", "Invalid webhook id")
		return
	}

	deliveries, err := h.queries.ListWebhookDeliveries(r.Context(), id, 100)
	if err != nil {
		h.logger.Error("listing deliveries failed", "webhook", id, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to list deliveries")
		return
	}

	WriteSuccess(w, deliveries, &Meta{Total: int64(len(deliveries))})
}
