// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"

	"github.com/olegiv/otms-go/internal/model"
)

const webhookColumns = `id, name, url, secret, events, is_active, created_at, updated_at`

func scanWebhook(row interface{ Scan(...any) error }) (model.Webhook, error) {
	var w model.Webhook
	err := row.Scan(&w.ID, &w.Name, &w.URL, &w.Secret, &w.Events,
		&w.IsActive, &w.CreatedAt, &w.UpdatedAt)
	return w, err
}

// CreateWebhookParams holds the fields of a new webhook.
type CreateWebhookParams struct {
	Name   string
	URL    string
	Secret string
	Events string
}

// CreateWebhook inserts a webhook endpoint.
func (q *Queries) CreateWebhook(ctx context.Context, arg CreateWebhookParams) (model.Webhook, error) {
	if arg.Events == "" {
		arg.Events = "[]"
	}
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO webhooks (name, url, secret, events)
		VALUES (?, ?, ?, ?)
		RETURNING `+webhookColumns,
		arg.Name, arg.URL, arg.Secret, arg.Events)
	return scanWebhook(row)
}

// ListActiveWebhooks returns all active webhook endpoints.
func (q *Queries) ListActiveWebhooks(ctx context.Context) ([]model.Webhook, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+webhookColumns+` FROM webhooks WHERE is_active = 1 ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var hooks []model.Webhook
	for rows.Next() {
		w, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}
		hooks = append(hooks, w)
	}
	return hooks, rows.Err()
}

// CreateWebhookDeliveryParams holds the fields of a queued delivery.
type CreateWebhookDeliveryParams struct {
	DeliveryUID string
	WebhookID   int64
	Event       string
	Payload     string
}

// CreateWebhookDelivery records a delivery about to be attempted.
func (q *Queries) CreateWebhookDelivery(ctx context.Context, arg CreateWebhookDeliveryParams) (model.WebhookDelivery, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO webhook_deliveries (delivery_uid, webhook_id, event, payload)
		VALUES (?, ?, ?, ?)
		RETURNING id, delivery_uid, webhook_id, event, payload, status,
			status_code, error, attempts, created_at`,
		arg.DeliveryUID, arg.WebhookID, arg.Event, arg.Payload)

	var d model.WebhookDelivery
	err := row.Scan(&d.ID, &d.DeliveryUID, &d.WebhookID, &d.Event, &d.Payload,
		&d.Status, &d.StatusCode, &d.Error, &d.Attempts, &d.CreatedAt)
	return d, err
}

// FinishWebhookDeliveryParams records the outcome of a delivery attempt.
type FinishWebhookDeliveryParams struct {
	ID         int64
	Status     string
	StatusCode int
	Error      string
	Attempts   int
}

// FinishWebhookDelivery marks a delivery as completed or failed.
func (q *Queries) FinishWebhookDelivery(ctx context.Context, arg FinishWebhookDeliveryParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE webhook_deliveries
		SET status = ?, status_code = ?, error = ?, attempts = ?, completed_at = CURRENT_TIMESTAMP
		WHERE id = ?`,
		arg.Status, arg.StatusCode, arg.Error, arg.Attempts, arg.ID)
	return err
}

// ListWebhookDeliveries returns recent deliveries for a webhook, newest first.
func (q *Queries) ListWebhookDeliveries(ctx context.Context, webhookID int64, limit int64) ([]model.WebhookDelivery, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, delivery_uid, webhook_id, event, payload, status,
			status_code, error, attempts, created_at, completed_at
		FROM webhook_deliveries WHERE webhook_id = ?
		ORDER BY id DESC LIMIT ?`, webhookID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deliveries []model.WebhookDelivery
	for rows.Next() {
		var d model.WebhookDelivery
		var completed sql.NullTime
		if err := rows.Scan(&d.ID, &d.DeliveryUID, &d.WebhookID, &d.Event,
			&d.Payload, &d.Status, &d.StatusCode, &d.Error, &d.Attempts,
			&d.CreatedAt, &completed); err != nil {
			return nil, err
		}
		if completed.Valid {
			d.CompletedAt = completed.Time
		}
		deliveries = append(deliveries, d)
	}
	return deliveries, rows.Err()
}
