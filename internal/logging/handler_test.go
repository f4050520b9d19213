// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package logging

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"testing"

	"github.com/olegiv/otms-go/internal/model"
	"github.com/olegiv/otms-go/internal/store"
	"github.com/olegiv/otms-go/internal/testutil"
)

func newLogger(t *testing.T) (*slog.Logger, *sql.DB) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	inner := slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelDebug})
	return slog.New(NewEventLogHandler(inner, db)), db
}

func lastEvent(t *testing.T, db *sql.DB) model.Event {
	t.Helper()
	events, err := store.New(db).ListEvents(context.Background(), store.ListEventsParams{Limit: 1})
	if err != nil {
		t.Fatalf("ListEvents: %v", err)
	}
	if len(events) == 0 {
		t.Fatal("no event written")
	}
	return events[0]
}

func eventCount(t *testing.T, db *sql.DB) int64 {
	t.Helper()
	n, err := store.New(db).CountEvents(context.Background())
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	return n
}

func TestHandle_WarnWritesEvent(t *testing.T) {
	logger, db := newLogger(t)

	logger.Warn("webhook delivery failed", "category", model.EventCategoryWebhook, "delivery", "abc-123")

	e := lastEvent(t, db)
	if e.Level != model.EventLevelWarning {
		t.Errorf("level = %q, want warning", e.Level)
	}
	if e.Category != model.EventCategoryWebhook {
		t.Errorf("category = %q, want webhook", e.Category)
	}
	if e.Message != "webhook delivery failed" {
		t.Errorf("message = %q", e.Message)
	}

	var meta map[string]string
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata is not valid JSON: %v (%s)", err, e.Metadata)
	}
	if meta["delivery"] != "abc-123" {
		t.Errorf("metadata = %v, want delivery attr", meta)
	}
	if _, ok := meta["category"]; ok {
		t.Error("category attr duplicated into metadata")
	}
}

func TestHandle_ErrorLevel(t *testing.T) {
	logger, db := newLogger(t)

	logger.Error("catalog reload failed")

	e := lastEvent(t, db)
	if e.Level != model.EventLevelError {
		t.Errorf("level = %q, want error", e.Level)
	}
}

func TestHandle_InfoNotPersisted(t *testing.T) {
	logger, db := newLogger(t)

	logger.Info("catalog loaded")
	logger.Debug("cache hit")

	if n := eventCount(t, db); n != 0 {
		t.Errorf("events = %d, want 0 below warn level", n)
	}
}

func TestExtractCategory_KeywordFallback(t *testing.T) {
	logger, db := newLogger(t)

	tests := []struct {
		msg  string
		want string
	}{
		{"catalog reimport failed", model.EventCategoryCatalog},
		{"lint run crashed", model.EventCategoryLint},
		{"webhook endpoint unreachable", model.EventCategoryWebhook},
		{"cache invalidation failed", model.EventCategoryCache},
		{"job overran its schedule", model.EventCategoryScheduler},
		{"disk almost full", model.EventCategorySystem},
	}

	for _, tt := range tests {
		logger.Warn(tt.msg)
		if e := lastEvent(t, db); e.Category != tt.want {
			t.Errorf("%q categorized as %q, want %q", tt.msg, e.Category, tt.want)
		}
	}
}

func TestWithAttrs_KeepsEventLog(t *testing.T) {
	logger, db := newLogger(t)

	logger.With("request_id", "req-1").Warn("webhook delivery failed",
		"category", model.EventCategoryWebhook)

	if n := eventCount(t, db); n != 1 {
		t.Fatalf("events = %d, want 1 after With", n)
	}
}

func TestMetadataEscaping(t *testing.T) {
	logger, db := newLogger(t)

	logger.Warn("webhook delivery failed", "category", model.EventCategoryWebhook,
		"error", "said \"no\"\nand gave up")

	e := lastEvent(t, db)
	var meta map[string]string
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil {
		t.Fatalf("metadata is not valid JSON: %v (%s)", err, e.Metadata)
	}
	if meta["error"] != "said \"no\"\nand gave up" {
		t.Errorf("metadata error = %q", meta["error"])
	}
}
