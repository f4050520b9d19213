// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/olegiv/otms-go/internal/lint"
	"github.com/olegiv/otms-go/internal/model"
)

// LintReport is the payload of a lint run.
type LintReport struct {
	Language string       `json:"language"`
	Summary  lint.Summary `json:"summary"`
	Issues   []lint.Issue `json:"issues"`
}

// Lint runs the structural checks over one stored language catalog.
func (h *Handler) Lint(w http.ResponseWriter, r *http.Request) {
	language := h.language(w, r)
	if language == nil {
		return
	}

	issues, summary, err := h.catalogs.Lint(r.Context(), language.Code)
	if err != nil {
		h.logger.Error("lint failed", "language", language.Code, "error", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "Lint run failed")
		return
	}

	report := LintReport{
		Language: language.Code,
		Summary:  summary,
		Issues:   issues,
	}

	h.dispatcher.Dispatch(r.Context(), model.WebhookEventLintCompleted, report)
	WriteSuccess(w, report, nil)
}
