// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package service

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/olegiv/otms-go/internal/model"
	"github.com/olegiv/otms-go/internal/store"
)

// EventService reads and maintains the event log.
type EventService struct {
	queries *store.Queries
	logger  *slog.Logger
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB, logger *slog.Logger) *EventService {
	return &EventService{
		queries: store.New(db),
		logger:  logger,
	}
}

// List returns a page of events, newest first.
func (s *EventService) List(ctx context.Context, level, category string, limit, offset int64) ([]model.Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	events, err := s.queries.ListEvents(ctx, store.ListEventsParams{
		Level:    level,
		Category: category,
		Limit:    limit,
		Offset:   offset,
	})
	if err != nil {
		return nil, fmt.Errorf("listing events: %w", err)
	}
	return events, nil
}

// Purge deletes events older than the retention window and returns how
// many were removed.
func (s *EventService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-retention)
	removed, err := s.queries.PurgeEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purging events: %w", err)
	}
	if removed > 0 {
		s.logger.Info("event log purged", "category", model.EventCategorySystem,
			"removed", removed, "cutoff", cutoff)
	}
	return removed, nil
}
