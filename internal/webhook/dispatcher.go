// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook delivers signed JSON notifications to subscribed
// endpoints when catalogs change.
package webhook

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/olegiv/otms-go/internal/model"
	"github.com/olegiv/otms-go/internal/store"
)

// Dispatcher handles webhook event dispatching and queuing.
type Dispatcher struct {
	queries *store.Queries
	logger  *slog.Logger
	queue   chan *queuedDelivery
	workers int
	wg      sync.WaitGroup
	done    chan struct{}
	mu      sync.RWMutex
	running bool
}

// queuedDelivery represents a delivery queued for processing.
type queuedDelivery struct {
	deliveryID  int64
	deliveryUID string
	event       string
	payload     []byte
	url         string
	secret      string
}

// Config holds dispatcher configuration.
type Config struct {
	Workers int // Number of concurrent delivery workers
}

// DefaultConfig returns default dispatcher configuration.
func DefaultConfig() Config {
	return Config{Workers: 3}
}

// NewDispatcher creates a new webhook dispatcher.
func NewDispatcher(db *sql.DB, logger *slog.Logger, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		queries: store.New(db),
		logger:  logger,
		queue:   make(chan *queuedDelivery, 100),
		workers: cfg.Workers,
		done:    make(chan struct{}),
	}
}

// Start starts the dispatcher workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx)
	}

	d.logger.Info("webhook dispatcher started", "category", model.EventCategoryWebhook,
		"workers", d.workers)
}

// Stop drains the queue and waits for in-flight deliveries to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	close(d.done)
	d.wg.Wait()
}

// Dispatch fans an event out to every active webhook subscribed to it.
// Delivery happens asynchronously; Dispatch only records and queues.
func (d *Dispatcher) Dispatch(ctx context.Context, event string, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		d.logger.Error("webhook payload marshal failed", "category", model.EventCategoryWebhook,
			"event", event, "error", err)
		return
	}

	hooks, err := d.queries.ListActiveWebhooks(ctx)
	if err != nil {
		d.logger.Error("listing webhooks failed", "category", model.EventCategoryWebhook,
			"error", err)
		return
	}

	for i := range hooks {
		hook := &hooks[i]
		if !hook.SubscribedTo(event) {
			continue
		}

		uid := uuid.NewString()
		delivery, err := d.queries.CreateWebhookDelivery(ctx, store.CreateWebhookDeliveryParams{
			DeliveryUID: uid,
			WebhookID:   hook.ID,
			Event:       event,
			Payload:     string(body),
		})
		if err != nil {
			d.logger.Error("recording webhook delivery failed", "category", model.EventCategoryWebhook,
				"webhook", hook.ID, "error", err)
			continue
		}

		qd := &queuedDelivery{
			deliveryID:  delivery.ID,
			deliveryUID: uid,
			event:       event,
			payload:     body,
			url:         hook.URL,
			secret:      hook.Secret,
		}

		select {
		case d.queue <- qd:
		default:
			d.logger.Warn("webhook queue full, dropping delivery",
				"category", model.EventCategoryWebhook, "webhook", hook.ID, "event", event)
			_ = d.queries.FinishWebhookDelivery(ctx, store.FinishWebhookDeliveryParams{
				ID:     delivery.ID,
				Status: model.DeliveryStatusFailed,
				Error:  "queue full",
			})
		}
	}
}

// worker consumes the delivery queue until Stop is called.
func (d *Dispatcher) worker(ctx context.Context) {
	defer d.wg.Done()

	for {
		select {
		case <-d.done:
			// Drain whatever is already queued before exiting.
			for {
				select {
				case qd := <-d.queue:
					d.deliver(context.Background(), qd)
				default:
					return
				}
			}
		case <-ctx.Done():
			return
		case qd := <-d.queue:
			d.deliver(ctx, qd)
		}
	}
}

// deliveryTimestamp is overridable in tests.
var deliveryTimestamp = func() time.Time { return time.Now().UTC() }
