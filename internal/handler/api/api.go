// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers for oTMS.
package api

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/olegiv/otms-go/internal/cache"
	"github.com/olegiv/otms-go/internal/catalog"
	"github.com/olegiv/otms-go/internal/config"
	"github.com/olegiv/otms-go/internal/middleware"
	"github.com/olegiv/otms-go/internal/model"
	"github.com/olegiv/otms-go/internal/service"
	"github.com/olegiv/otms-go/internal/store"
	"github.com/olegiv/otms-go/internal/transfer"
	"github.com/olegiv/otms-go/internal/webhook"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db         *sql.DB
	queries    *store.Queries
	cfg        *config.Config
	catalogs   *service.CatalogService
	cat        *catalog.Catalog
	trCache    *cache.TranslationCache
	exporter   *transfer.Exporter
	importer   *transfer.Importer
	dispatcher *webhook.Dispatcher
	logger     *slog.Logger
}

// NewHandler creates a new API handler.
func NewHandler(db *sql.DB, cfg *config.Config, cat *catalog.Catalog,
	catalogs *service.CatalogService, trCache *cache.TranslationCache,
	exporter *transfer.Exporter, importer *transfer.Importer,
	dispatcher *webhook.Dispatcher, logger *slog.Logger) *Handler {
	return &Handler{
		db:         db,
		queries:    store.New(db),
		cfg:        cfg,
		catalogs:   catalogs,
		cat:        cat,
		trCache:    trCache,
		exporter:   exporter,
		importer:   importer,
		dispatcher: dispatcher,
		logger:     logger,
	}
}

// Routes mounts all API endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(middleware.Language(h.cat))
		r.Get("/translate", h.Translate)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAPIKey(h.db, model.PermissionCatalogsRead))
		r.Get("/languages", h.ListLanguages)
		r.Get("/languages/{code}/contexts", h.ListContexts)
		r.Get("/languages/{code}/contexts/{slug}/messages", h.ListMessages)
		r.Get("/languages/{code}/export.ts", h.ExportTS)
		r.Get("/stats", h.Stats)
		r.Get("/export", h.ExportJSON)
		r.Get("/export.zip", h.ExportZip)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAPIKey(h.db, model.PermissionLintRead))
		r.Get("/languages/{code}/lint", h.Lint)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAPIKey(h.db, model.PermissionCatalogsWrite))
		r.Post("/import", h.Import)
		r.Post("/rescan", h.Rescan)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAPIKey(h.db, model.PermissionWebhooksWrite))
		r.Post("/webhooks", h.CreateWebhook)
		r.Get("/webhooks/{id}/deliveries", h.ListDeliveries)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdminToken(h.cfg.AdminTokenHash))
		r.Post("/admin/keys", h.CreateAPIKey)
	})
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains pagination and other metadata.
type Meta struct {
	Total   int64 `json:"total,omitempty"`
	Page    int   `json:"page,omitempty"`
	PerPage int   `json:"per_page,omitempty"`
	Pages   int   `json:"pages,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteError writes a JSON error response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string) {
	WriteJSON(w, statusCode, ErrorResponse{Error: ErrorDetail{Code: code, Message: message}})
}

// Pagination defaults.
const (
	DefaultPerPage = 50
	MaxPerPage     = 500
)

// ParsePagination reads page and per_page query parameters.
func ParsePagination(r *http.Request) (page, perPage int) {
	page = 1
	perPage = DefaultPerPage

	if v, err := strconv.Atoi(r.URL.Query().Get("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("per_page")); err == nil && v > 0 {
		perPage = v
		if perPage > MaxPerPage {
			perPage = MaxPerPage
		}
	}
	return page, perPage
}

// pages computes the page count for a total.
func pages(total int64, perPage int) int {
	if perPage <= 0 {
		return 0
	}
	n := int(total) / perPage
	if int(total)%perPage != 0 {
		n++
	}
	return n
}
