// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/olegiv/otms-go/internal/model"
	"github.com/olegiv/otms-go/internal/service"
	"github.com/olegiv/otms-go/internal/ts"
)

// Importer loads a JSON export back into the store.
type Importer struct {
	catalogs *service.CatalogService
	logger   *slog.Logger
}

// NewImporter creates a new Importer instance.
func NewImporter(catalogs *service.CatalogService, logger *slog.Logger) *Importer {
	return &Importer{
		catalogs: catalogs,
		logger:   logger,
	}
}

// ImportResultSummary tallies an import run.
type ImportResultSummary struct {
	Languages int `json:"languages"`
	Messages  int `json:"messages"`
}

// ReadJSON decodes and validates an export document.
func ReadJSON(r io.Reader) (*ExportData, error) {
	var data ExportData
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding export: %w", err)
	}
	if err := Validate(&data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Validate checks an export document for structural problems before any
// database work starts.
func Validate(data *ExportData) error {
	if data.Version != ExportVersion {
		return fmt.Errorf("unsupported export version %q, want %q", data.Version, ExportVersion)
	}
	seen := make(map[string]struct{}, len(data.Languages))
	for _, lang := range data.Languages {
		if lang.Code == "" {
			return fmt.Errorf("export contains a language without a code")
		}
		if _, dup := seen[lang.Code]; dup {
			return fmt.Errorf("export contains language %q twice", lang.Code)
		}
		seen[lang.Code] = struct{}{}
		for _, ctx := range lang.Contexts {
			if ctx.Name == "" {
				return fmt.Errorf("language %q contains a context without a name", lang.Code)
			}
			for _, msg := range ctx.Messages {
				if msg.Source == "" {
					return fmt.Errorf("context %q of %q contains a message without a source", ctx.Name, lang.Code)
				}
			}
		}
	}
	return nil
}

// Import replaces the stored catalogs with the export contents, one
// language at a time.
func (im *Importer) Import(ctx context.Context, data *ExportData) (*ImportResultSummary, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	summary := &ImportResultSummary{}
	for _, lang := range data.Languages {
		file := toTSFile(&lang)

		filename := lang.CatalogFile
		if filename == "" {
			filename = fmt.Sprintf("photini.%s.ts", lang.Code)
		}

		res, err := im.catalogs.ImportCatalog(ctx, file, filename)
		if err != nil {
			return nil, fmt.Errorf("importing %s: %w", lang.Code, err)
		}
		summary.Languages++
		summary.Messages += res.Messages
	}

	im.logger.Info("export imported", "languages", summary.Languages, "messages", summary.Messages)
	return summary, nil
}

// toTSFile converts an exported language into the TS representation the
// catalog service imports.
func toTSFile(lang *ExportLanguage) *ts.File {
	file := &ts.File{
		Version:  "2.0",
		Language: lang.Code,
	}
	if lang.IsSource {
		file.SourceLanguage = lang.Code
	}

	for _, ec := range lang.Contexts {
		tsCtx := ts.Context{Name: ec.Name}
		for _, em := range ec.Messages {
			msg := ts.Message{
				Source:  em.Source,
				Comment: em.Comment,
				Translation: ts.Translation{
					Text:         em.Translation,
					NumerusForms: em.NumerusForms,
				},
			}
			if em.IsNumerus {
				msg.Numerus = "yes"
				msg.Translation.Text = ""
			}
			if em.Status != model.MessageStatusFinished {
				msg.Translation.Type = em.Status
			}
			for _, l := range em.Locations {
				msg.Locations = append(msg.Locations, ts.Location{Filename: l.Filename, Line: l.Line})
			}
			tsCtx.Messages = append(tsCtx.Messages, msg)
		}
		file.Contexts = append(file.Contexts, tsCtx)
	}
	return file
}

// toLocation converts a TS location to the export representation.
func toLocation(l ts.Location) model.MessageLocation {
	return model.MessageLocation{Filename: l.Filename, Line: l.Line}
}
