// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import "time"

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryCatalog   = "catalog"
	EventCategoryLint      = "lint"
	EventCategoryScheduler = "scheduler"
	EventCategorySystem    = "system"
	EventCategoryCache     = "cache"
	EventCategoryWebhook   = "webhook"
)

// Event represents a system event log entry.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	Metadata  string // JSON string
	CreatedAt time.Time
}
