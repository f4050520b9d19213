// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"encoding/json"
	"time"
)

// Webhook event names fired by the catalog pipeline.
const (
	WebhookEventCatalogImported = "catalog.imported"
	WebhookEventCatalogExported = "catalog.exported"
	WebhookEventLintCompleted   = "lint.completed"
)

// AllWebhookEvents returns all event names a webhook can subscribe to.
func AllWebhookEvents() []string {
	return []string{
		WebhookEventCatalogImported,
		WebhookEventCatalogExported,
		WebhookEventLintCompleted,
	}
}

// Webhook is an outbound notification endpoint.
type Webhook struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	URL       string    `json:"url"`
	Secret    string    `json:"-"` // HMAC signing secret, never exposed
	Events    string    `json:"-"` // JSON array stored as string
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GetEvents parses the subscribed event names.
func (w *Webhook) GetEvents() []string {
	var events []string
	if w.Events == "" || w.Events == "[]" {
		return events
	}
	_ = json.Unmarshal([]byte(w.Events), &events)
	return events
}

// SubscribedTo reports whether the webhook wants the given event.
func (w *Webhook) SubscribedTo(event string) bool {
	for _, e := range w.GetEvents() {
		if e == event {
			return true
		}
	}
	return false
}

// Webhook delivery states.
const (
	DeliveryStatusPending = "pending"
	DeliveryStatusSuccess = "success"
	DeliveryStatusFailed  = "failed"
)

// WebhookDelivery records one delivery attempt.
type WebhookDelivery struct {
	ID          int64     `json:"id"`
	DeliveryUID string    `json:"delivery_uid"` // UUID sent in the delivery header
	WebhookID   int64     `json:"webhook_id"`
	Event       string    `json:"event"`
	Payload     string    `json:"payload"`
	Status      string    `json:"status"`
	StatusCode  int       `json:"status_code,omitempty"`
	Error       string    `json:"error,omitempty"`
	Attempts    int       `json:"attempts"`
	CreatedAt   time.Time `json:"created_at"`
	CompletedAt time.Time `json:"completed_at,omitempty"`
}
