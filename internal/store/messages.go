// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"

	"github.com/olegiv/otms-go/internal/model"
)

// UpsertContextParams identifies a context within one language catalog.
type UpsertContextParams struct {
	LanguageID int64
	Name       string
	Slug       string
}

// UpsertContext inserts a context or returns the existing row for the
// (language, name) pair.
func (q *Queries) UpsertContext(ctx context.Context, arg UpsertContextParams) (model.Context, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO contexts (language_id, name, slug)
		VALUES (?, ?, ?)
		ON CONFLICT (language_id, name) DO UPDATE SET slug = excluded.slug
		RETURNING id, language_id, name, slug, created_at`,
		arg.LanguageID, arg.Name, arg.Slug)

	var c model.Context
	err := row.Scan(&c.ID, &c.LanguageID, &c.Name, &c.Slug, &c.CreatedAt)
	return c, err
}

// ListContextsByLanguage returns the contexts of a language catalog in
// name order.
func (q *Queries) ListContextsByLanguage(ctx context.Context, languageID int64) ([]model.Context, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, language_id, name, slug, created_at
		FROM contexts WHERE language_id = ? ORDER BY name`, languageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var contexts []model.Context
	for rows.Next() {
		var c model.Context
		if err := rows.Scan(&c.ID, &c.LanguageID, &c.Name, &c.Slug, &c.CreatedAt); err != nil {
			return nil, err
		}
		contexts = append(contexts, c)
	}
	return contexts, rows.Err()
}

// GetContextBySlug returns a context of a language catalog by its URL slug.
func (q *Queries) GetContextBySlug(ctx context.Context, languageID int64, slug string) (model.Context, error) {
	row := q.db.QueryRowContext(ctx, `
		SELECT id, language_id, name, slug, created_at
		FROM contexts WHERE language_id = ? AND slug = ?`, languageID, slug)

	var c model.Context
	err := row.Scan(&c.ID, &c.LanguageID, &c.Name, &c.Slug, &c.CreatedAt)
	return c, err
}

// DeleteContextsByLanguage removes all contexts (and messages) of a language.
func (q *Queries) DeleteContextsByLanguage(ctx context.Context, languageID int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM contexts WHERE language_id = ?`, languageID)
	return err
}

const messageColumns = `id, context_id, source, translation, status,
	is_numerus, numerus_forms, comment, locations, created_at, updated_at`

func scanMessage(row interface{ Scan(...any) error }) (model.Message, error) {
	var m model.Message
	err := row.Scan(&m.ID, &m.ContextID, &m.Source, &m.Translation, &m.Status,
		&m.IsNumerus, &m.NumerusForms, &m.Comment, &m.Locations,
		&m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// CreateMessageParams holds the fields of a new catalog message.
type CreateMessageParams struct {
	ContextID    int64
	Source       string
	Translation  string
	Status       string
	IsNumerus    bool
	NumerusForms string
	Comment      string
	Locations    string
}

// CreateMessage inserts a catalog message. Duplicate (context, source)
// pairs are expected and inserted as distinct rows.
func (q *Queries) CreateMessage(ctx context.Context, arg CreateMessageParams) (model.Message, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO messages (context_id, source, translation, status, is_numerus, numerus_forms, comment, locations)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+messageColumns,
		arg.ContextID, arg.Source, arg.Translation, arg.Status, arg.IsNumerus,
		arg.NumerusForms, arg.Comment, arg.Locations)
	return scanMessage(row)
}

// ListMessagesByContextParams pages through the messages of one context.
type ListMessagesByContextParams struct {
	ContextID int64
	Status    string // empty matches all states
	Limit     int64
	Offset    int64
}

// ListMessagesByContext returns a page of messages in insertion order.
func (q *Queries) ListMessagesByContext(ctx context.Context, arg ListMessagesByContextParams) ([]model.Message, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+messageColumns+` FROM messages
		WHERE context_id = ? AND (? = '' OR status = ?)
		ORDER BY id LIMIT ? OFFSET ?`,
		arg.ContextID, arg.Status, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		msgs = append(msgs, m)
	}
	return msgs, rows.Err()
}

// CountMessagesByContext returns the number of messages in a context,
// optionally restricted to one status.
func (q *Queries) CountMessagesByContext(ctx context.Context, contextID int64, status string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM messages
		WHERE context_id = ? AND (? = '' OR status = ?)`,
		contextID, status, status).Scan(&n)
	return n, err
}

// StatusCount is one row of a per-status message tally.
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// CountMessagesByStatus tallies the messages of a language by status.
func (q *Queries) CountMessagesByStatus(ctx context.Context, languageID int64) ([]StatusCount, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT m.status, COUNT(*)
		FROM messages m
		JOIN contexts c ON c.id = m.context_id
		WHERE c.language_id = ?
		GROUP BY m.status ORDER BY m.status`, languageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []StatusCount
	for rows.Next() {
		var sc StatusCount
		if err := rows.Scan(&sc.Status, &sc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, sc)
	}
	return counts, rows.Err()
}
