package prep

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"

	"go.uber.org/zap"
)

// CacheStats counts cache traffic since construction.
type CacheStats struct {
	Hits      int64
	Misses    int64
	Evictions int64
}

type cacheEntry struct {
	step      ParsedStep
	expiresAt time.Time
}

// ParseCache memoizes semantic parse results per step so re-planning the
// same recipe does not re-spend completion tokens. Entries expire after the
// configured TTL.
type ParseCache struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry
	ttl     time.Duration
	stats   CacheStats
	logger  *zap.Logger
	now     func() time.Time
}

// NewParseCache creates a cache with the given TTL. A non-positive ttl
// disables expiry.
func NewParseCache(ttl time.Duration, logger *zap.Logger) *ParseCache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ParseCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Key derives the cache key for one step. Keying on recipe plus text means
// an edited instruction misses naturally.
func (c *ParseCache) Key(recipeID, stepText string) string {
	sum := sha256.Sum256([]byte(recipeID + "\x00" + stepText))
	return hex.EncodeToString(sum[:])
}

// Get returns the cached step, if present and unexpired.
func (c *ParseCache) Get(key string) (ParsedStep, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.mu.Lock()
		c.stats.Misses++
		c.mu.Unlock()
		return ParsedStep{}, false
	}

	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.stats.Misses++
		c.stats.Evictions++
		c.mu.Unlock()
		return ParsedStep{}, false
	}

	c.mu.Lock()
	c.stats.Hits++
	c.mu.Unlock()
	return entry.step, true
}

// Put stores a parsed step under key.
func (c *ParseCache) Put(key string, step ParsedStep) {
	entry := cacheEntry{step: step}
	if c.ttl > 0 {
		entry.expiresAt = c.now().Add(c.ttl)
	}

	c.mu.Lock()
	c.entries[key] = entry
	size := len(c.entries)
	c.mu.Unlock()

	c.logger.Debug("parse cache store", zap.String("key", key[:8]), zap.Int("size", size))
}

// Purge drops every expired entry and reports how many were removed.
func (c *ParseCache) Purge() int {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	for key, entry := range c.entries {
		if !entry.expiresAt.IsZero() && now.After(entry.expiresAt) {
			delete(c.entries, key)
			removed++
		}
	}
	c.stats.Evictions += int64(removed)
	return removed
}

// Stats returns a snapshot of the counters.
func (c *ParseCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.stats
}

// Len reports the number of live entries, expired or not.
func (c *ParseCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
