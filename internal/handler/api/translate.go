// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"
	"strconv"

	"github.com/olegiv/otms-go/internal/middleware"
)

// TranslateResponse is the payload of a translate lookup.
type TranslateResponse struct {
	Language    string `json:"language"`
	Context     string `json:"context"`
	Source      string `json:"source"`
	Translation string `json:"translation"`
	Count       *int   `json:"count,omitempty"`
	Cached      bool   `json:"cached"`
}

// Translate resolves one (context, source) pair for the negotiated
// language. With a count parameter the numerus form is selected. Missing
// translations fall back to the source text, so the endpoint never fails
// for an unknown string.
func (h *Handler) Translate(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tsContext := q.Get("context")
	source := q.Get("source")
	if tsContext == "" || source == "" {
		WriteError(w, http.StatusBadRequest, "bad_request", "context and source parameters are required")
		return
	}

	lang := middleware.LanguageFromContext(r.Context())
	if lang == "" {
		lang = h.cat.DefaultLanguage()
	}

	resp := TranslateResponse{
		Language: lang,
		Context:  tsContext,
		Source:   source,
	}

	if raw := q.Get("n"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "bad_request", "n must be an integer")
			return
		}
		resp.Count = &v
	}

	if cached, ok := h.trCache.Get(r.Context(), lang, tsContext, source, resp.Count); ok {
		resp.Translation = cached
		resp.Cached = true
		WriteSuccess(w, resp, nil)
		return
	}

	if resp.Count != nil {
		resp.Translation = h.cat.TrN(lang, tsContext, source, *resp.Count)
	} else {
		resp.Translation = h.cat.Tr(lang, tsContext, source)
	}

	h.trCache.Set(r.Context(), lang, tsContext, source, resp.Count, resp.Translation)
	WriteSuccess(w, resp, nil)
}
