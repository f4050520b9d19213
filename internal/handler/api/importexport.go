// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"fmt"
	"net/http"

	"github.com/olegiv/otms-go/internal/model"
	"github.com/olegiv/otms-go/internal/transfer"
	"github.com/olegiv/otms-go/internal/ts"
)

// maxImportBody caps uploaded catalog size at 32 MB.
const maxImportBody = 32 << 20

// Import accepts either a TS catalog (Content-Type application/xml) or a
// JSON export document and stores its contents.
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBody)

	switch r.Header.Get("Content-Type") {
	case "application/json":
		data, err := transfer.ReadJSON(r.Body)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		summary, err := h.importer.Import(r.Context(), data)
		if err != nil {
			h.logger.Error("JSON import failed", "error", err)
			WriteError(w, http.StatusInternalServerError, "internal_error", "Import failed")
			return
		}
		h.afterImport(r)
		WriteCreated(w, summary)

	default:
		file, err := ts.Parse(r.Body)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		filename := fmt.Sprintf("photini.%s.ts", file.Language)
		result, err := h.catalogs.ImportCatalog(r.Context(), file, filename)
		if err != nil {
			h.logger.Error("TS import failed", "error", err)
			WriteError(w, http.StatusBadRequest, "bad_request", err.Error())
			return
		}
		h.afterImport(r)
		h.dispatcher.Dispatch(r.Context(), model.WebhookEventCatalogImported, result)
		WriteCreated(w, result)
	}
}

// Rescan reimports every catalog in the configured directory and reloads
// the in-memory lookup tables.
func (h *Handler) Rescan(w http.ResponseWriter, r *http.Request) {
	results, err := h.catalogs.ImportDir(r.Context(), h.cfg.CatalogDir)
	if err != nil {
		h.logger.Error("rescan failed", "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Rescan failed")
		return
	}

	h.afterImport(r)
	for i := range results {
		h.dispatcher.Dispatch(r.Context(), model.WebhookEventCatalogImported, results[i])
	}
	WriteSuccess(w, results, &Meta{Total: int64(len(results))})
}

// afterImport refreshes runtime state that derives from the store.
func (h *Handler) afterImport(r *http.Request) {
	if err := h.cat.Reload(); err != nil {
		h.logger.Warn("catalog reload after import failed", "error", err)
	}
	if err := h.trCache.Invalidate(r.Context()); err != nil {
		h.logger.Warn("cache invalidation after import failed", "error", err)
	}
}

// ExportJSON streams the full catalog set as a JSON export document.
func (h *Handler) ExportJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="otms-export.json"`)
	if err := h.exporter.WriteJSON(r.Context(), w); err != nil {
		h.logger.Error("JSON export failed", "error", err)
	}
}

// ExportZip streams a zip archive of per-locale TS files.
func (h *Handler) ExportZip(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="otms-catalogs.zip"`)
	if err := h.exporter.WriteZip(r.Context(), w); err != nil {
		h.logger.Error("zip export failed", "error", err)
	}
}

// ExportTS streams one language catalog as TS XML.
func (h *Handler) ExportTS(w http.ResponseWriter, r *http.Request) {
	language := h.language(w, r)
	if language == nil {
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="photini.%s.ts"`, language.Code))
	if err := h.catalogs.ExportLanguage(r.Context(), language.Code, w); err != nil {
		h.logger.Error("TS export failed", "language", language.Code, "error", err)
	}
}
