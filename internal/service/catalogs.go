// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service implements the business logic between the HTTP handlers
// and the store.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/olegiv/otms-go/internal/lint"
	"github.com/olegiv/otms-go/internal/model"
	"github.com/olegiv/otms-go/internal/plural"
	"github.com/olegiv/otms-go/internal/store"
	"github.com/olegiv/otms-go/internal/ts"
	"github.com/olegiv/otms-go/internal/util"
)

// CatalogService moves TS catalogs between disk and the store.
type CatalogService struct {
	db      *sql.DB
	queries *store.Queries
	logger  *slog.Logger
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(db *sql.DB, logger *slog.Logger) *CatalogService {
	return &CatalogService{
		db:      db,
		queries: store.New(db),
		logger:  logger,
	}
}

// ImportResult summarizes one catalog import.
type ImportResult struct {
	Language string   `json:"language"`
	File     string   `json:"file"`
	Contexts int      `json:"contexts"`
	Messages int      `json:"messages"`
	Stats    ts.Stats `json:"stats"`
}

// ImportFile parses a TS catalog from disk and stores it.
func (s *CatalogService) ImportFile(ctx context.Context, path string) (*ImportResult, error) {
	file, err := ts.ParseFile(path)
	if err != nil {
		return nil, err
	}
	return s.ImportCatalog(ctx, file, filepath.Base(path))
}

// ImportCatalog replaces the stored contents for the catalog's language.
// The replacement is transactional: a failed import leaves the previous
// catalog untouched.
func (s *CatalogService) ImportCatalog(ctx context.Context, file *ts.File, filename string) (*ImportResult, error) {
	lang := file.Language
	if lang == "" {
		// Same fallback the runtime loader applies: catalogs without a
		// language attribute carry their locale in the filename.
		lang = ts.LangFromFilename(filename)
	}
	if lang == "" {
		return nil, fmt.Errorf("%s: catalog declares no language", filename)
	}

	name, nativeName, direction := model.LanguageMeta(lang)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning import transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := s.queries.WithTx(tx)

	language, err := q.UpsertLanguage(ctx, store.UpsertLanguageParams{
		Code:        lang,
		Name:        name,
		NativeName:  nativeName,
		IsSource:    lang == file.SourceLanguage,
		Direction:   direction,
		PluralForms: plural.Forms(lang),
		CatalogFile: filename,
	})
	if err != nil {
		return nil, fmt.Errorf("upserting language %s: %w", lang, err)
	}

	if err := q.DeleteContextsByLanguage(ctx, language.ID); err != nil {
		return nil, fmt.Errorf("clearing previous catalog for %s: %w", lang, err)
	}

	messages := 0
	for _, tsCtx := range file.Contexts {
		dbCtx, err := q.UpsertContext(ctx, store.UpsertContextParams{
			LanguageID: language.ID,
			Name:       tsCtx.Name,
			Slug:       util.SlugifyContext(tsCtx.Name),
		})
		if err != nil {
			return nil, fmt.Errorf("upserting context %s: %w", tsCtx.Name, err)
		}

		for i := range tsCtx.Messages {
			msg := &tsCtx.Messages[i]
			if _, err := q.CreateMessage(ctx, messageParams(dbCtx.ID, msg)); err != nil {
				return nil, fmt.Errorf("inserting message in %s: %w", tsCtx.Name, err)
			}
			messages++
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}

	result := &ImportResult{
		Language: lang,
		File:     filename,
		Contexts: len(file.Contexts),
		Messages: messages,
		Stats:    file.Stats(),
	}

	s.logger.Info("catalog imported", "category", model.EventCategoryCatalog,
		"language", lang, "file", result.File,
		"contexts", result.Contexts, "messages", result.Messages)

	return result, nil
}

// messageParams converts a TS message to insert parameters. Numerus forms
// and locations are stored as JSON.
func messageParams(contextID int64, msg *ts.Message) store.CreateMessageParams {
	forms := "[]"
	if len(msg.Translation.NumerusForms) > 0 {
		if b, err := json.Marshal(msg.Translation.NumerusForms); err == nil {
			forms = string(b)
		}
	}

	locations := "[]"
	if len(msg.Locations) > 0 {
		locs := make([]model.MessageLocation, 0, len(msg.Locations))
		for _, l := range msg.Locations {
			locs = append(locs, model.MessageLocation{Filename: l.Filename, Line: l.Line})
		}
		if b, err := json.Marshal(locs); err == nil {
			locations = string(b)
		}
	}

	return store.CreateMessageParams{
		ContextID:    contextID,
		Source:       msg.Source,
		Translation:  msg.Translation.Text,
		Status:       msg.Status(),
		IsNumerus:    msg.IsNumerus(),
		NumerusForms: forms,
		Comment:      msg.Comment,
		Locations:    locations,
	}
}

// ImportDir imports every *.ts file in a directory. Individual file
// failures are logged and skipped so one broken catalog cannot block the
// rest of a rescan.
func (s *CatalogService) ImportDir(ctx context.Context, dir string) ([]ImportResult, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.ts"))
	if err != nil {
		return nil, fmt.Errorf("globbing %s: %w", dir, err)
	}
	sort.Strings(paths)

	var results []ImportResult
	for _, path := range paths {
		res, err := s.ImportFile(ctx, path)
		if err != nil {
			s.logger.Error("catalog import failed", "category", model.EventCategoryCatalog,
				"file", path, "error", err)
			continue
		}
		results = append(results, *res)
	}
	return results, nil
}

// BuildFile reconstructs the TS catalog of a language from the store.
func (s *CatalogService) BuildFile(ctx context.Context, code string) (*ts.File, error) {
	language, err := s.queries.GetLanguageByCode(ctx, code)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("language %q not found", code)
		}
		return nil, fmt.Errorf("loading language %s: %w", code, err)
	}

	contexts, err := s.queries.ListContextsByLanguage(ctx, language.ID)
	if err != nil {
		return nil, fmt.Errorf("listing contexts for %s: %w", code, err)
	}

	file := &ts.File{
		Version:        "2.0",
		Language:       language.Code,
		SourceLanguage: "en",
	}

	for _, dbCtx := range contexts {
		tsCtx := ts.Context{Name: dbCtx.Name}

		const pageSize = 500
		for offset := int64(0); ; offset += pageSize {
			msgs, err := s.queries.ListMessagesByContext(ctx, store.ListMessagesByContextParams{
				ContextID: dbCtx.ID,
				Limit:     pageSize,
				Offset:    offset,
			})
			if err != nil {
				return nil, fmt.Errorf("listing messages for %s: %w", dbCtx.Name, err)
			}
			for i := range msgs {
				tsCtx.Messages = append(tsCtx.Messages, toTSMessage(&msgs[i]))
			}
			if len(msgs) < pageSize {
				break
			}
		}

		file.Contexts = append(file.Contexts, tsCtx)
	}

	return file, nil
}

// toTSMessage converts a stored message back to its TS representation.
func toTSMessage(m *model.Message) ts.Message {
	msg := ts.Message{
		Source:  m.Source,
		Comment: m.Comment,
		Translation: ts.Translation{
			Text:         m.Translation,
			NumerusForms: m.GetNumerusForms(),
		},
	}
	if m.IsNumerus {
		msg.Numerus = "yes"
		msg.Translation.Text = ""
	}
	if m.Status != model.MessageStatusFinished {
		msg.Translation.Type = m.Status
	}
	for _, l := range m.GetLocations() {
		msg.Locations = append(msg.Locations, ts.Location{Filename: l.Filename, Line: l.Line})
	}
	return msg
}

// ExportLanguage writes the stored catalog of a language as TS XML.
func (s *CatalogService) ExportLanguage(ctx context.Context, code string, w io.Writer) error {
	file, err := s.BuildFile(ctx, code)
	if err != nil {
		return err
	}
	if err := ts.Write(w, file); err != nil {
		return err
	}

	s.logger.Info("catalog exported", "category", model.EventCategoryCatalog, "language", code)
	return nil
}

// ExportLanguageFile writes the stored catalog of a language to path.
func (s *CatalogService) ExportLanguageFile(ctx context.Context, code, path string) error {
	fh, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := s.ExportLanguage(ctx, code, fh); err != nil {
		_ = fh.Close()
		return err
	}
	return fh.Close()
}

// LanguageStats summarizes one stored language catalog.
type LanguageStats struct {
	Language model.Language      `json:"language"`
	Contexts int                 `json:"contexts"`
	Messages int64               `json:"messages"`
	ByStatus []store.StatusCount `json:"by_status"`
}

// Stats reports per-language catalog statistics.
func (s *CatalogService) Stats(ctx context.Context) ([]LanguageStats, error) {
	languages, err := s.queries.ListLanguages(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing languages: %w", err)
	}

	stats := make([]LanguageStats, 0, len(languages))
	for _, language := range languages {
		contexts, err := s.queries.ListContextsByLanguage(ctx, language.ID)
		if err != nil {
			return nil, fmt.Errorf("listing contexts for %s: %w", language.Code, err)
		}

		byStatus, err := s.queries.CountMessagesByStatus(ctx, language.ID)
		if err != nil {
			return nil, fmt.Errorf("counting messages for %s: %w", language.Code, err)
		}

		var total int64
		for _, sc := range byStatus {
			total += sc.Count
		}

		stats = append(stats, LanguageStats{
			Language: language,
			Contexts: len(contexts),
			Messages: total,
			ByStatus: byStatus,
		})
	}
	return stats, nil
}

// Lint rebuilds a language catalog from the store and runs all checks,
// recording the summary in the event log.
func (s *CatalogService) Lint(ctx context.Context, code string) ([]lint.Issue, lint.Summary, error) {
	file, err := s.BuildFile(ctx, code)
	if err != nil {
		return nil, lint.Summary{}, err
	}

	issues := lint.Check(file)
	summary := lint.Summarize(issues)

	level := slog.LevelInfo
	if summary.Errors > 0 {
		level = slog.LevelWarn
	}
	s.logger.Log(ctx, level, "lint completed", "category", model.EventCategoryLint,
		"language", code, "errors", summary.Errors,
		"warnings", summary.Warnings, "infos", summary.Infos)

	return issues, summary, nil
}
