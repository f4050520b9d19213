// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the application configuration loaded from environment variables.
type Config struct {
	DBPath      string `env:"OTMS_DB_PATH" envDefault:"./data/otms.db"`
	CatalogDir  string `env:"OTMS_CATALOG_DIR" envDefault:"./catalogs"`
	DefaultLang string `env:"OTMS_DEFAULT_LANG" envDefault:"en"`
	ServerHost  string `env:"OTMS_SERVER_HOST" envDefault:"localhost"`
	ServerPort  int    `env:"OTMS_SERVER_PORT" envDefault:"8080"`
	Env         string `env:"OTMS_ENV" envDefault:"development"`
	LogLevel    string `env:"OTMS_LOG_LEVEL" envDefault:"info"`

	// AdminToken protects key-management endpoints. Stored as a bcrypt
	// hash; empty disables those endpoints entirely.
	AdminTokenHash string `env:"OTMS_ADMIN_TOKEN_HASH"`

	// Cache configuration
	RedisURL     string `env:"OTMS_REDIS_URL"`                         // Optional Redis URL for distributed caching
	CachePrefix  string `env:"OTMS_CACHE_PREFIX" envDefault:"otms:"`   // Redis key prefix
	CacheTTL     int    `env:"OTMS_CACHE_TTL" envDefault:"3600"`       // Default cache TTL in seconds
	CacheMaxSize int    `env:"OTMS_CACHE_MAX_SIZE" envDefault:"10000"` // Max memory cache entries

	// Rate limiting for the public translate endpoint
	RateLimitRPS   float64 `env:"OTMS_RATE_LIMIT_RPS" envDefault:"50"`
	RateLimitBurst int     `env:"OTMS_RATE_LIMIT_BURST" envDefault:"100"`

	// Scheduler configuration
	RescanSchedule     string `env:"OTMS_RESCAN_SCHEDULE" envDefault:"*/5 * * * *"`
	EventRetentionDays int    `env:"OTMS_EVENT_RETENTION_DAYS" envDefault:"90"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// UseRedisCache returns true if Redis caching is configured.
func (c Config) UseRedisCache() bool {
	return c.RedisURL != ""
}

// AdminEnabled returns true if the admin token is configured.
func (c Config) AdminEnabled() bool {
	return c.AdminTokenHash != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.RateLimitRPS <= 0 {
		return nil, fmt.Errorf("OTMS_RATE_LIMIT_RPS must be positive, got %v", cfg.RateLimitRPS)
	}
	if cfg.EventRetentionDays < 1 {
		return nil, fmt.Errorf("OTMS_EVENT_RETENTION_DAYS must be at least 1, got %d", cfg.EventRetentionDays)
	}

	return cfg, nil
}
