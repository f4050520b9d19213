// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the recurring background jobs: catalog directory
// rescans and event log retention.
package scheduler

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/otms-go/internal/cache"
	"github.com/olegiv/otms-go/internal/catalog"
	"github.com/olegiv/otms-go/internal/config"
	"github.com/olegiv/otms-go/internal/service"
)

// Scheduler handles recurring maintenance tasks.
type Scheduler struct {
	cfg      *config.Config
	catalogs *service.CatalogService
	events   *service.EventService
	cat      *catalog.Catalog
	trCache  *cache.TranslationCache
	cron     *cron.Cron
	logger   *slog.Logger

	mu       sync.Mutex
	lastSeen map[string]time.Time // catalog file path -> mtime at last import
}

// New creates a new scheduler instance.
func New(cfg *config.Config, catalogs *service.CatalogService, events *service.EventService, cat *catalog.Catalog, trCache *cache.TranslationCache, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		catalogs: catalogs,
		events:   events,
		cat:      cat,
		trCache:  trCache,
		cron:     cron.New(),
		logger:   logger,
		lastSeen: make(map[string]time.Time),
	}
}

// Start registers the jobs and begins the cron loop. The initial rescan
// baseline is taken from the current directory state so the first tick
// does not reimport catalogs loaded at startup.
func (s *Scheduler) Start() error {
	s.baseline()

	if _, err := s.cron.AddFunc(s.cfg.RescanSchedule, func() {
		if err := s.RescanCatalogs(); err != nil {
			s.logger.Error("catalog rescan failed", "error", err)
		}
	}); err != nil {
		return err
	}

	// Purge old events once a day, shortly after midnight.
	if _, err := s.cron.AddFunc("15 0 * * *", func() {
		if err := s.PurgeEvents(); err != nil {
			s.logger.Error("event purge failed", "error", err)
		}
	}); err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		"jobs", len(s.cron.Entries()),
		"rescan_schedule", s.cfg.RescanSchedule,
	)
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// baseline records current catalog file mtimes without importing.
func (s *Scheduler) baseline() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path, mtime := range s.scanDir() {
		s.lastSeen[path] = mtime
	}
}

// scanDir lists catalog files and their modification times.
func (s *Scheduler) scanDir() map[string]time.Time {
	found := make(map[string]time.Time)
	paths, err := filepath.Glob(filepath.Join(s.cfg.CatalogDir, "*.ts"))
	if err != nil {
		s.logger.Error("scanning catalog directory failed", "dir", s.cfg.CatalogDir, "error", err)
		return found
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		found[path] = info.ModTime()
	}
	return found
}

// RescanCatalogs reimports catalog files whose mtime changed since the
// last scan and refreshes the runtime lookup tables when any did.
func (s *Scheduler) RescanCatalogs() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ctx := context.Background()
	changed := 0

	for path, mtime := range s.scanDir() {
		if seen, ok := s.lastSeen[path]; ok && !mtime.After(seen) {
			continue
		}
		result, err := s.catalogs.ImportFile(ctx, path)
		if err != nil {
			s.logger.Error("reimporting changed catalog failed", "file", path, "error", err)
			continue
		}
		s.lastSeen[path] = mtime
		changed++
		s.logger.Info("reimported changed catalog",
			"file", filepath.Base(path),
			"language", result.Language,
			"messages", result.Messages,
		)
	}

	if changed == 0 {
		return nil
	}

	if err := s.cat.Reload(); err != nil {
		return err
	}
	if s.trCache != nil {
		if err := s.trCache.Invalidate(ctx); err != nil {
			s.logger.Warn("invalidating translation cache failed", "error", err)
		}
	}
	s.logger.Info("catalog rescan complete", "reimported", changed)
	return nil
}

// PurgeEvents deletes event log rows older than the retention window.
func (s *Scheduler) PurgeEvents() error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	retention := time.Duration(s.cfg.EventRetentionDays) * 24 * time.Hour
	purged, err := s.events.Purge(ctx, retention)
	if err != nil {
		return err
	}
	if purged > 0 {
		s.logger.Info("purged old events", "count", purged, "retention_days", s.cfg.EventRetentionDays)
	}
	return nil
}
