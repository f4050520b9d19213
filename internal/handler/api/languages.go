// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/otms-go/internal/store"
)

// ListLanguages returns all stored catalog languages.
func (h *Handler) ListLanguages(w http.ResponseWriter, r *http.Request) {
	languages, err := h.queries.ListLanguages(r.Context())
	if err != nil {
		h.logger.Error("listing languages failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to list languages")
		return
	}
	WriteSuccess(w, languages, &Meta{Total: int64(len(languages))})
}

// Stats returns per-language catalog statistics.
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.catalogs.Stats(r.Context())
	if err != nil {
		h.logger.Error("computing stats failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to compute statistics")
		return
	}
	WriteSuccess(w, stats, nil)
}

// language resolves the {code} route parameter. A nil return means an
// error response was already written.
func (h *Handler) language(w http.ResponseWriter, r *http.Request) *languageRef {
	code := chi.URLParam(r, "code")
	language, err := h.queries.GetLanguageByCode(r.Context(), code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, http.StatusNotFound, "not_found", "Language not found")
		} else {
			h.logger.Error("loading language failed", "code", code, "error", err)
			WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to load language")
		}
		return nil
	}
	return &languageRef{ID: language.ID, Code: language.Code}
}

type languageRef struct {
	ID   int64
	Code string
}

// ListContexts returns the contexts of one language catalog.
func (h *Handler) ListContexts(w http.ResponseWriter, r *http.Request) {
	language := h.language(w, r)
	if language == nil {
		return
	}

	contexts, err := h.queries.ListContextsByLanguage(r.Context(), language.ID)
	if err != nil {
		h.logger.Error("listing contexts failed", "language", language.Code, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to list contexts")
		return
	}
	WriteSuccess(w, contexts, &Meta{Total: int64(len(contexts))})
}

// ListMessages returns a page of messages for one context, optionally
// filtered by status.
func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	language := h.language(w, r)
	if language == nil {
		return
	}

	slug := chi.URLParam(r, "slug")
	dbCtx, err := h.queries.GetContextBySlug(r.Context(), language.ID, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			WriteError(w, http.StatusNotFound, "not_found", "Context not found")
		} else {
			h.logger.Error("loading context failed", "slug", slug, "error", err)
			WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to load context")
		}
		return
	}

	status := r.URL.Query().Get("status")
	page, perPage := ParsePagination(r)

	total, err := h.queries.CountMessagesByContext(r.Context(), dbCtx.ID, status)
	if err != nil {
		h.logger.Error("counting messages failed", "context", dbCtx.Name, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to count messages")
		return
	}

	msgs, err := h.queries.ListMessagesByContext(r.Context(), store.ListMessagesByContextParams{
		ContextID: dbCtx.ID,
		Status:    status,
		Limit:     int64(perPage),
		Offset:    int64((page - 1) * perPage),
	})
	if err != nil {
		h.logger.Error("listing messages failed", "context", dbCtx.Name, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Failed to list messages")
		return
	}

	WriteSuccess(w, msgs, &Meta{
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pages(total, perPage),
	})
}
