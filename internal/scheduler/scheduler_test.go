// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package scheduler

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/olegiv/otms-go/internal/catalog"
	"github.com/olegiv/otms-go/internal/config"
	"github.com/olegiv/otms-go/internal/service"
	"github.com/olegiv/otms-go/internal/store"
	"github.com/olegiv/otms-go/internal/testutil"
)

const csOneMessage = `<?xml version="1.0"?><!DOCTYPE TS>
<TS version="2.0" language="cs">
<context><name>App</name>
<message><source>Connect</source><translation>Připojit</translation></message>
</context>
</TS>
`

const csTwoMessages = `<?xml version="1.0"?><!DOCTYPE TS>
<TS version="2.0" language="cs">
<context><name>App</name>
<message><source>Connect</source><translation>Připojit</translation></message>
<message><source>Quit</source><translation>Ukončit</translation></message>
</context>
</TS>
`

func newScheduler(t *testing.T) (*Scheduler, *sql.DB, string) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	dir := t.TempDir()
	logger := testutil.TestLoggerSilent()

	cfg := &config.Config{
		CatalogDir:         dir,
		DefaultLang:        "en",
		RescanSchedule:     "*/5 * * * *",
		EventRetentionDays: 90,
	}

	catalogs := service.NewCatalogService(db, logger)
	events := service.NewEventService(db, logger)
	cat := catalog.New("en", logger)
	if err := cat.Load(dir); err != nil {
		t.Fatalf("Load: %v", err)
	}

	return New(cfg, catalogs, events, cat, nil, logger), db, dir
}

func messageCount(t *testing.T, db *sql.DB, code string) int {
	t.Helper()
	q := store.New(db)
	lang, err := q.GetLanguageByCode(context.Background(), code)
	if err != nil {
		t.Fatalf("GetLanguageByCode: %v", err)
	}
	counts, err := q.CountMessagesByStatus(context.Background(), lang.ID)
	if err != nil {
		t.Fatalf("CountMessagesByStatus: %v", err)
	}
	total := 0
	for _, c := range counts {
		total += int(c.Count)
	}
	return total
}

func TestRescanCatalogs_ImportsNewFile(t *testing.T) {
	s, db, dir := newScheduler(t)

	path := filepath.Join(dir, "photini.cs.ts")
	if err := os.WriteFile(path, []byte(csOneMessage), 0644); err != nil {
		t.Fatal(err)
	}

	if err := s.RescanCatalogs(); err != nil {
		t.Fatalf("RescanCatalogs: %v", err)
	}
	if got := messageCount(t, db, "cs"); got != 1 {
		t.Errorf("messages = %d, want 1", got)
	}
	if got := s.cat.Tr("cs", "App", "Connect"); got != "Připojit" {
		t.Errorf("lookup tables not reloaded, Tr = %q", got)
	}
}

func TestRescanCatalogs_SkipsUnchangedFile(t *testing.T) {
	s, db, dir := newScheduler(t)

	path := filepath.Join(dir, "photini.cs.ts")
	if err := os.WriteFile(path, []byte(csOneMessage), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.RescanCatalogs(); err != nil {
		t.Fatalf("RescanCatalogs: %v", err)
	}

	// Drop the stored catalog behind the scheduler's back. An unchanged
	// mtime means the next tick must not bring it back.
	q := store.New(db)
	lang, err := q.GetLanguageByCode(context.Background(), "cs")
	if err != nil {
		t.Fatalf("GetLanguageByCode: %v", err)
	}
	if err := q.DeleteContextsByLanguage(context.Background(), lang.ID); err != nil {
		t.Fatalf("DeleteContextsByLanguage: %v", err)
	}

	if err := s.RescanCatalogs(); err != nil {
		t.Fatalf("RescanCatalogs: %v", err)
	}
	if got := messageCount(t, db, "cs"); got != 0 {
		t.Errorf("messages = %d, want 0 (unchanged file reimported)", got)
	}
}

func TestRescanCatalogs_PicksUpTouchedFile(t *testing.T) {
	s, db, dir := newScheduler(t)

	path := filepath.Join(dir, "photini.cs.ts")
	if err := os.WriteFile(path, []byte(csOneMessage), 0644); err != nil {
		t.Fatal(err)
	}
	if err := s.RescanCatalogs(); err != nil {
		t.Fatalf("RescanCatalogs: %v", err)
	}

	if err := os.WriteFile(path, []byte(csTwoMessages), 0644); err != nil {
		t.Fatal(err)
	}
	// Filesystem mtime resolution can swallow a quick rewrite.
	future := time.Now().Add(2 * time.Second)
	if err := os.Chtimes(path, future, future); err != nil {
		t.Fatal(err)
	}

	if err := s.RescanCatalogs(); err != nil {
		t.Fatalf("RescanCatalogs: %v", err)
	}
	if got := messageCount(t, db, "cs"); got != 2 {
		t.Errorf("messages = %d, want 2 after reimport", got)
	}
	if got := s.cat.Tr("cs", "App", "Quit"); got != "Ukončit" {
		t.Errorf("lookup tables stale after reimport, Tr = %q", got)
	}
}

func TestPurgeEvents(t *testing.T) {
	s, db, _ := newScheduler(t)
	q := store.New(db)
	ctx := context.Background()

	old := store.CreateEventParams{
		Level:     "warning",
		Category:  "system",
		Message:   "stale",
		CreatedAt: time.Now().UTC().Add(-120 * 24 * time.Hour),
	}
	if _, err := q.CreateEvent(ctx, old); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	recent := store.CreateEventParams{Level: "warning", Category: "system", Message: "fresh"}
	if _, err := q.CreateEvent(ctx, recent); err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}

	if err := s.PurgeEvents(); err != nil {
		t.Fatalf("PurgeEvents: %v", err)
	}

	n, err := q.CountEvents(ctx)
	if err != nil {
		t.Fatalf("CountEvents: %v", err)
	}
	if n != 1 {
		t.Errorf("events after purge = %d, want 1", n)
	}
}

func TestStartStop(t *testing.T) {
	s, _, dir := newScheduler(t)

	// A catalog present before Start must not be reimported by the first
	// tick: Start records it as the baseline.
	path := filepath.Join(dir, "photini.cs.ts")
	if err := os.WriteFile(path, []byte(csOneMessage), 0644); err != nil {
		t.Fatal(err)
	}

	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	s.Stop()

	s.mu.Lock()
	_, seen := s.lastSeen[path]
	s.mu.Unlock()
	if !seen {
		t.Error("baseline did not record the existing catalog")
	}
}
