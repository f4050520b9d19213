// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/otms-go/internal/cache"
	"github.com/olegiv/otms-go/internal/catalog"
	"github.com/olegiv/otms-go/internal/config"
	"github.com/olegiv/otms-go/internal/handler"
	"github.com/olegiv/otms-go/internal/handler/api"
	"github.com/olegiv/otms-go/internal/logging"
	"github.com/olegiv/otms-go/internal/middleware"
	"github.com/olegiv/otms-go/internal/scheduler"
	"github.com/olegiv/otms-go/internal/service"
	"github.com/olegiv/otms-go/internal/store"
	"github.com/olegiv/otms-go/internal/transfer"
	"github.com/olegiv/otms-go/internal/version"
	"github.com/olegiv/otms-go/internal/webhook"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	flag.BoolVar(showVersion, "v", false, "Show version information (shorthand)")
	showHelp := flag.Bool("help", false, "Show help information")
	flag.BoolVar(showHelp, "h", false, "Show help information (shorthand)")
	importPath := flag.String("import", "", "Import a TS catalog file or directory and exit")
	exportLang := flag.String("export", "", "Export the catalog for a language code as TS XML to stdout and exit")
	lintLang := flag.String("lint", "", "Lint the catalog for a language code and exit (non-zero on errors)")

	flag.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "oTMS - Open Translation Management System\n\n")
		_, _ = fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		_, _ = fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		_, _ = fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OTMS_DB_PATH           SQLite database path (default: ./data/otms.db)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OTMS_CATALOG_DIR       Directory of *.ts catalogs (default: ./catalogs)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OTMS_DEFAULT_LANG      Source language code (default: en)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OTMS_SERVER_PORT       Server port (default: 8080)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OTMS_ADMIN_TOKEN_HASH  bcrypt hash guarding key management (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "  OTMS_REDIS_URL         Redis URL for distributed caching (optional)\n")
		_, _ = fmt.Fprintf(os.Stderr, "\nFor more information, see: https://github.com/olegiv/otms-go\n")
	}

	flag.Parse()

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if *showVersion {
		_, _ = fmt.Printf("otms %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(*importPath, *exportLang, *lintLang); err != nil {
		var lintErr *lintFailure
		if errors.As(err, &lintErr) {
			os.Exit(1)
		}
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

// lintFailure marks a clean run whose lint findings contain errors.
type lintFailure struct{ errors int }

func (e *lintFailure) Error() string {
	return fmt.Sprintf("lint found %d errors", e.errors)
}

func run(importPath, exportLang, lintLang string) error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Ensure data directory exists
	dbDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("initializing database: %w", err)
	}
	defer func(db *sql.DB) {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}(db)

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	slog.Info("database ready")

	catalogs := service.NewCatalogService(db, logger)

	// One-shot CLI modes run against the plain logger and exit before
	// the server stack comes up.
	switch {
	case importPath != "":
		return runImport(catalogs, importPath)
	case exportLang != "":
		return catalogs.ExportLanguage(context.Background(), exportLang, os.Stdout)
	case lintLang != "":
		return runLint(catalogs, lintLang)
	}

	return serve(cfg, db, catalogs, versionInfo, logLevel)
}

// runImport imports one catalog file, or every *.ts file in a directory.
func runImport(catalogs *service.CatalogService, path string) error {
	ctx := context.Background()

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	if info.IsDir() {
		results, err := catalogs.ImportDir(ctx, path)
		if err != nil {
			return err
		}
		for _, res := range results {
			_, _ = fmt.Printf("%s: %d messages (%d finished, %d unfinished)\n",
				res.File, res.Messages, res.Stats.Finished, res.Stats.Unfinished)
		}
		return nil
	}

	res, err := catalogs.ImportFile(ctx, path)
	if err != nil {
		return err
	}
	_, _ = fmt.Printf("%s: %d messages (%d finished, %d unfinished)\n",
		res.File, res.Messages, res.Stats.Finished, res.Stats.Unfinished)
	return nil
}

// runLint prints lint findings for one stored catalog.
func runLint(catalogs *service.CatalogService, code string) error {
	issues, summary, err := catalogs.Lint(context.Background(), code)
	if err != nil {
		return err
	}

	for _, issue := range issues {
		_, _ = fmt.Printf("%s: %s [%s] %q: %s\n",
			issue.Severity, issue.Rule, issue.Context, issue.Source, issue.Message)
	}
	_, _ = fmt.Printf("%d errors, %d warnings\n", summary.Errors, summary.Warnings)

	if summary.Errors > 0 {
		return &lintFailure{errors: summary.Errors}
	}
	return nil
}

func serve(cfg *config.Config, db *sql.DB, catalogs *service.CatalogService, versionInfo version.Info, logLevel slog.Level) error {
	// Upgrade logger to also write WARN and ERROR logs to the event log table
	textHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logging.NewEventLogHandler(textHandler, db))
	slog.SetDefault(logger)
	slog.Info("event log integration enabled", "min_level", "warn")

	ctx := context.Background()

	// Import catalogs from disk, then build the in-memory lookup tables.
	if _, err := os.Stat(cfg.CatalogDir); err == nil {
		results, err := catalogs.ImportDir(ctx, cfg.CatalogDir)
		if err != nil {
			slog.Warn("importing catalog directory failed", "dir", cfg.CatalogDir, "error", err)
		} else {
			slog.Info("catalog directory imported", "dir", cfg.CatalogDir, "catalogs", len(results))
		}
	} else {
		slog.Warn("catalog directory not found, starting empty", "dir", cfg.CatalogDir)
	}

	cat := catalog.New(cfg.DefaultLang, logger)
	if err := cat.Load(cfg.CatalogDir); err != nil {
		slog.Warn("loading runtime catalog failed", "error", err)
	}
	slog.Info("runtime catalog loaded", "languages", cat.Languages(), "default", cat.DefaultLanguage())

	trCache, err := cache.NewTranslationCache(cfg)
	if err != nil {
		return fmt.Errorf("initializing translation cache: %w", err)
	}
	if cfg.UseRedisCache() {
		slog.Info("translation cache initialized", "backend", "redis", "url", cfg.RedisURL)
	} else {
		slog.Info("translation cache initialized", "backend", "memory", "max_size", cfg.CacheMaxSize)
	}

	// Webhook dispatcher
	dispatcher := webhook.NewDispatcher(db, logger, webhook.DefaultConfig())
	dispatcher.Start(ctx)
	defer dispatcher.Stop()
	slog.Info("webhook dispatcher initialized")

	// Scheduler: catalog rescans and event retention
	events := service.NewEventService(db, logger)
	sched := scheduler.New(cfg, catalogs, events, cat, trCache, logger)
	if err := sched.Start(); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Router
	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(middleware.Timeout(30 * time.Second))

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)

	exporter := transfer.NewExporter(db, catalogs, logger)
	importer := transfer.NewImporter(catalogs, logger)
	apiHandler := api.NewHandler(db, cfg, cat, catalogs, trCache, exporter, importer, dispatcher, logger)
	healthHandler := handler.NewHealthHandler(db, cat, versionInfo)
	docsHandler := handler.NewDocsHandler()

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimiter.Middleware)
		apiHandler.Routes(r)
	})

	r.Get("/health", healthHandler.Public)
	r.Get("/health/details", healthHandler.Detailed)
	r.Get("/docs", docsHandler.Index)
	r.Get("/docs/{name}", docsHandler.Guide)

	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	// Graceful shutdown on SIGINT/SIGTERM
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server starting",
			"addr", cfg.ServerAddr(),
			"env", cfg.Env,
			"version", versionInfo.String(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case sig := <-stop:
		slog.Info("shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
