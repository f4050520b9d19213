// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type memoryItem struct {
	value     string
	expiresAt time.Time
}

// MemoryCache is an in-process Backend with lazy expiry and a hard entry cap.
type MemoryCache struct {
	mu         sync.RWMutex
	items      map[string]memoryItem
	defaultTTL time.Duration
	maxEntries int

	hits   atomic.Int64
	misses atomic.Int64
	sets   atomic.Int64
}

// NewMemoryCache creates a memory cache. maxEntries <= 0 means unbounded.
func NewMemoryCache(defaultTTL time.Duration, maxEntries int) *MemoryCache {
	return &MemoryCache{
		items:      make(map[string]memoryItem),
		defaultTTL: defaultTTL,
		maxEntries: maxEntries,
	}
}

// Get implements Backend.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.RLock()
	item, ok := c.items[key]
	c.mu.RUnlock()

	if !ok {
		c.misses.Add(1)
		return "", false, nil
	}
	if !item.expiresAt.IsZero() && time.Now().After(item.expiresAt) {
		c.mu.Lock()
		delete(c.items, key)
		c.mu.Unlock()
		c.misses.Add(1)
		return "", false, nil
	}

	c.hits.Add(1)
	return item.value, true, nil
}

// Set implements Backend.
func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	var expires time.Time
	if ttl > 0 {
		expires = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.ensureCapacity()
	c.items[key] = memoryItem{value: value, expiresAt: expires}
	c.sets.Add(1)
	return nil
}

// ensureCapacity evicts half the entries once the cap is reached.
// Must be called with the write lock held.
func (c *MemoryCache) ensureCapacity() {
	if c.maxEntries <= 0 || len(c.items) < c.maxEntries {
		return
	}
	count := 0
	for key := range c.items {
		if count > c.maxEntries/2 {
			break
		}
		delete(c.items, key)
		count++
	}
}

// Delete implements Backend.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	delete(c.items, key)
	c.mu.Unlock()
	return nil
}

// Clear implements Backend.
func (c *MemoryCache) Clear(_ context.Context) error {
	c.mu.Lock()
	c.items = make(map[string]memoryItem)
	c.mu.Unlock()
	return nil
}

// Stats implements Backend.
func (c *MemoryCache) Stats() Stats {
	c.mu.RLock()
	items := len(c.items)
	c.mu.RUnlock()

	return Stats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Sets:   c.sets.Load(),
		Items:  items,
	}
}
