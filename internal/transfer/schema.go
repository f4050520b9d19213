// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package transfer provides import/export of the full catalog set as a
// single JSON document or a zip archive of per-locale TS files.
package transfer

import (
	"time"

	"github.com/olegiv/otms-go/internal/model"
)

// ExportVersion is the current version of the export format.
const ExportVersion = "1.0"

// ExportData represents the complete export structure.
type ExportData struct {
	Version    string           `json:"version"`
	ExportedAt time.Time        `json:"exported_at"`
	Languages  []ExportLanguage `json:"languages,omitempty"`
}

// ExportLanguage is one language catalog with all its contexts.
type ExportLanguage struct {
	Code        string          `json:"code"`
	Name        string          `json:"name"`
	NativeName  string          `json:"native_name"`
	IsSource    bool            `json:"is_source"`
	Direction   string          `json:"direction"`
	PluralForms int             `json:"plural_forms"`
	CatalogFile string          `json:"catalog_file,omitempty"`
	Contexts    []ExportContext `json:"contexts,omitempty"`
}

// ExportContext is one UI component's messages.
type ExportContext struct {
	Name     string          `json:"name"`
	Messages []ExportMessage `json:"messages,omitempty"`
}

// ExportMessage is one translation entry.
type ExportMessage struct {
	Source       string                  `json:"source"`
	Translation  string                  `json:"translation,omitempty"`
	Status       string                  `json:"status"`
	IsNumerus    bool                    `json:"is_numerus,omitempty"`
	NumerusForms []string                `json:"numerus_forms,omitempty"`
	Comment      string                  `json:"comment,omitempty"`
	Locations    []model.MessageLocation `json:"locations,omitempty"`
}
