// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/olegiv/otms-go/internal/model"
)

const languageColumns = `id, code, name, native_name, is_source, is_active,
	direction, plural_forms, catalog_file, created_at, updated_at`

func scanLanguage(row interface{ Scan(...any) error }) (model.Language, error) {
	var l model.Language
	err := row.Scan(&l.ID, &l.Code, &l.Name, &l.NativeName, &l.IsSource,
		&l.IsActive, &l.Direction, &l.PluralForms, &l.CatalogFile,
		&l.CreatedAt, &l.UpdatedAt)
	return l, err
}

// UpsertLanguageParams holds the fields for creating or refreshing a language.
type UpsertLanguageParams struct {
	Code        string
	Name        string
	NativeName  string
	IsSource    bool
	Direction   string
	PluralForms int
	CatalogFile string
}

// UpsertLanguage inserts a language or refreshes its metadata when the
// code already exists.
func (q *Queries) UpsertLanguage(ctx context.Context, arg UpsertLanguageParams) (model.Language, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO languages (code, name, native_name, is_source, direction, plural_forms, catalog_file)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (code) DO UPDATE SET
			name = excluded.name,
			native_name = excluded.native_name,
			is_source = excluded.is_source,
			direction = excluded.direction,
			plural_forms = excluded.plural_forms,
			catalog_file = excluded.catalog_file,
			updated_at = CURRENT_TIMESTAMP
		RETURNING `+languageColumns,
		arg.Code, arg.Name, arg.NativeName, arg.IsSource, arg.Direction,
		arg.PluralForms, arg.CatalogFile)
	return scanLanguage(row)
}

// GetLanguageByCode returns the language with the given code.
func (q *Queries) GetLanguageByCode(ctx context.Context, code string) (model.Language, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+languageColumns+` FROM languages WHERE code = ?`, code)
	return scanLanguage(row)
}

// ListLanguages returns all languages ordered with the source language first.
func (q *Queries) ListLanguages(ctx context.Context) ([]model.Language, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+languageColumns+` FROM languages ORDER BY is_source DESC, code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var langs []model.Language
	for rows.Next() {
		l, err := scanLanguage(rows)
		if err != nil {
			return nil, err
		}
		langs = append(langs, l)
	}
	return langs, rows.Err()
}

// DeleteLanguage removes a language and, through cascading, its contexts
// and messages.
func (q *Queries) DeleteLanguage(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM languages WHERE id = ?`, id)
	return err
}
