// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package transfer

import (
	"archive/zip"
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/olegiv/otms-go/internal/service"
	"github.com/olegiv/otms-go/internal/store"
	"github.com/olegiv/otms-go/internal/ts"
)

// Exporter handles exporting stored catalogs.
type Exporter struct {
	queries  *store.Queries
	catalogs *service.CatalogService
	logger   *slog.Logger
}

// NewExporter creates a new Exporter instance.
func NewExporter(db *sql.DB, catalogs *service.CatalogService, logger *slog.Logger) *Exporter {
	return &Exporter{
		queries:  store.New(db),
		catalogs: catalogs,
		logger:   logger,
	}
}

// Export generates the complete JSON export structure.
func (e *Exporter) Export(ctx context.Context) (*ExportData, error) {
	data := &ExportData{
		Version:    ExportVersion,
		ExportedAt: time.Now().UTC(),
	}

	languages, err := e.queries.ListLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing languages: %w", err)
	}

	for _, language := range languages {
		file, err := e.catalogs.BuildFile(ctx, language.Code)
		if err != nil {
			return nil, fmt.Errorf("building catalog %s: %w", language.Code, err)
		}

		exported := ExportLanguage{
			Code:        language.Code,
			Name:        language.Name,
			NativeName:  language.NativeName,
			IsSource:    language.IsSource,
			Direction:   language.Direction,
			PluralForms: language.PluralForms,
			CatalogFile: language.CatalogFile,
		}

		for _, tsCtx := range file.Contexts {
			ec := ExportContext{Name: tsCtx.Name}
			for i := range tsCtx.Messages {
				msg := &tsCtx.Messages[i]
				em := ExportMessage{
					Source:       msg.Source,
					Translation:  msg.Translation.Text,
					Status:       msg.Status(),
					IsNumerus:    msg.IsNumerus(),
					NumerusForms: msg.Translation.NumerusForms,
					Comment:      msg.Comment,
				}
				for _, l := range msg.Locations {
					em.Locations = append(em.Locations, toLocation(l))
				}
				ec.Messages = append(ec.Messages, em)
			}
			exported.Contexts = append(exported.Contexts, ec)
		}

		data.Languages = append(data.Languages, exported)
	}

	e.logger.Info("catalogs exported", "languages", len(data.Languages))
	return data, nil
}

// WriteJSON streams the export as indented JSON.
func (e *Exporter) WriteJSON(ctx context.Context, w io.Writer) error {
	data, err := e.Export(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(data); err != nil {
		return fmt.Errorf("encoding export: %w", err)
	}
	return nil
}

// WriteZip writes a zip archive with one TS file per stored language.
func (e *Exporter) WriteZip(ctx context.Context, w io.Writer) error {
	languages, err := e.queries.ListLanguages(ctx)
	if err != nil {
		return fmt.Errorf("listing languages: %w", err)
	}

	zw := zip.NewWriter(w)
	for _, language := range languages {
		file, err := e.catalogs.BuildFile(ctx, language.Code)
		if err != nil {
			return fmt.Errorf("building catalog %s: %w", language.Code, err)
		}

		name := language.CatalogFile
		if name == "" {
			name = fmt.Sprintf("photini.%s.ts", language.Code)
		}

		var buf bytes.Buffer
		if err := ts.Write(&buf, file); err != nil {
			return fmt.Errorf("serializing catalog %s: %w", language.Code, err)
		}

		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("creating zip entry %s: %w", name, err)
		}
		if _, err := fw.Write(buf.Bytes()); err != nil {
			return fmt.Errorf("writing zip entry %s: %w", name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing zip: %w", err)
	}
	return nil
}
