// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/olegiv/otms-go/internal/config"
)

// TranslationCache memoizes translate-endpoint results on top of a Backend.
type TranslationCache struct {
	backend Backend
	ttl     time.Duration
}

// NewTranslationCache picks the backend from configuration: Redis when a
// URL is configured, an in-process cache otherwise.
func NewTranslationCache(cfg *config.Config) (*TranslationCache, error) {
	ttl := time.Duration(cfg.CacheTTL) * time.Second

	var backend Backend
	if cfg.UseRedisCache() {
		rc, err := NewRedisCache(cfg.RedisURL, cfg.CachePrefix+"tr:", ttl)
		if err != nil {
			return nil, err
		}
		backend = rc
	} else {
		backend = NewMemoryCache(ttl, cfg.CacheMaxSize)
	}

	return &TranslationCache{backend: backend, ttl: ttl}, nil
}

// NewTranslationCacheWithBackend wires an explicit backend (used in tests).
func NewTranslationCacheWithBackend(backend Backend, ttl time.Duration) *TranslationCache {
	return &TranslationCache{backend: backend, ttl: ttl}
}

// key builds the cache key. The count is part of the key because numerus
// lookups resolve to different forms; a count-less lookup gets a marker no
// integer can produce, so it never collides with an explicit count.
func (c *TranslationCache) key(lang, context, source string, n *int) string {
	count := "-"
	if n != nil {
		count = strconv.Itoa(*n)
	}
	return fmt.Sprintf("%s\x1f%s\x1f%s\x1f%s", lang, context, source, count)
}

// Get returns a cached lookup result. A nil count means the lookup carried
// no count parameter.
func (c *TranslationCache) Get(ctx context.Context, lang, tsContext, source string, n *int) (string, bool) {
	val, ok, err := c.backend.Get(ctx, c.key(lang, tsContext, source, n))
	if err != nil {
		// A failing cache backend must never fail a lookup.
		return "", false
	}
	return val, ok
}

// Set stores a lookup result.
func (c *TranslationCache) Set(ctx context.Context, lang, tsContext, source string, n *int, result string) {
	_ = c.backend.Set(ctx, c.key(lang, tsContext, source, n), result, c.ttl)
}

// Invalidate clears all cached lookups, called after a catalog reload.
func (c *TranslationCache) Invalidate(ctx context.Context) error {
	return c.backend.Clear(ctx)
}

// Stats exposes backend statistics.
func (c *TranslationCache) Stats() Stats {
	return c.backend.Stats()
}
