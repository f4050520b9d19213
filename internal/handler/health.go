// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package handler provides the non-API HTTP handlers: health checks and
// the rendered documentation pages.
package handler

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/olegiv/otms-go/internal/catalog"
	"github.com/olegiv/otms-go/internal/version"
)

// HealthHandler handles health check requests.
type HealthHandler struct {
	db          *sql.DB
	cat         *catalog.Catalog
	versionInfo version.Info
	startTime   time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(db *sql.DB, cat *catalog.Catalog, versionInfo version.Info) *HealthHandler {
	return &HealthHandler{
		db:          db,
		cat:         cat,
		versionInfo: versionInfo,
		startTime:   time.Now(),
	}
}

// HealthStatusPublic is the minimal health response for unauthenticated callers.
type HealthStatusPublic struct {
	Status string `json:"status"`
}

// Check is a single subsystem check result.
type Check struct {
	Status string `json:"status"`
	Detail string `json:"detail,omitempty"`
}

// HealthStatus is the detailed health response.
type HealthStatus struct {
	Status     string           `json:"status"`
	Timestamp  time.Time        `json:"timestamp"`
	Uptime     string           `json:"uptime"`
	Version    string           `json:"version"`
	Goroutines int              `json:"goroutines"`
	Languages  []string         `json:"languages"`
	Checks     map[string]Check `json:"checks"`
}

// Public responds to unauthenticated liveness probes.
func (h *HealthHandler) Public(w http.ResponseWriter, _ *http.Request) {
	writeHealth(w, http.StatusOK, HealthStatusPublic{Status: "ok"})
}

// Detailed reports subsystem state for operators.
func (h *HealthHandler) Detailed(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:     "ok",
		Timestamp:  time.Now().UTC(),
		Uptime:     time.Since(h.startTime).Round(time.Second).String(),
		Version:    h.versionInfo.String(),
		Goroutines: runtime.NumGoroutine(),
		Languages:  h.cat.Languages(),
		Checks:     make(map[string]Check),
	}

	if err := h.db.PingContext(r.Context()); err != nil {
		status.Status = "degraded"
		status.Checks["database"] = Check{Status: "fail", Detail: err.Error()}
	} else {
		status.Checks["database"] = Check{Status: "ok"}
	}

	if len(status.Languages) == 0 {
		status.Status = "degraded"
		status.Checks["catalog"] = Check{Status: "fail", Detail: "no catalogs loaded"}
	} else {
		status.Checks["catalog"] = Check{Status: "ok"}
	}

	code := http.StatusOK
	if status.Status != "ok" {
		code = http.StatusServiceUnavailable
	}
	writeHealth(w, code, status)
}

func writeHealth(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
