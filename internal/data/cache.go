package data

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"sync"
	"time"
)

// sweepThreshold is the map size above which Set evicts expired entries.
const sweepThreshold = 256

type windowEntry struct {
	resp    *WindowResponse
	expires time.Time
}

// WindowCache is an in-memory cache for schedule server windows.
//
// A published window for a fixed (series, start, hours) key never
// changes, so the TTL bounds memory growth rather than staleness.
// Expired entries are swept inline on insert; the cache owns no
// goroutine.
type WindowCache struct {
	mu    sync.RWMutex
	store map[string]windowEntry
	ttl   time.Duration
}

// NewWindowCache creates a standalone cache whose entries expire after
// ttl. Most callers should use GetCache instead.
func NewWindowCache(ttl time.Duration) *WindowCache {
	return &WindowCache{store: map[string]windowEntry{}, ttl: ttl}
}

var (
	globalCache *WindowCache
	cacheOnce   sync.Once
)

// GetCache returns the shared process cache, or nil when caching is
// off. Caching must be explicitly enabled with
// ENABLE_SCHEDULE_CACHE=true and is ignored when API_ENV=production.
func GetCache() *WindowCache {
	if !cacheEnabled() {
		return nil
	}
	cacheOnce.Do(func() {
		ttl := time.Hour
		if s := os.Getenv("SCHEDULE_CACHE_TTL"); s != "" {
			if d, err := time.ParseDuration(s); err == nil {
				ttl = d
			}
		}
		globalCache = NewWindowCache(ttl)
	})
	return globalCache
}

func cacheEnabled() bool {
	if os.Getenv("ENABLE_SCHEDULE_CACHE") != "true" {
		return false
	}
	return os.Getenv("API_ENV") != "production"
}

// Get returns the cached window for key, if present and unexpired.
// A nil cache misses everything.
func (c *WindowCache) Get(key string) (*WindowResponse, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.store[key]
	c.mu.RUnlock()
	if !ok || time.Now().After(entry.expires) {
		return nil, false
	}
	return entry.resp, true
}

// Set stores a window under key. A nil cache drops the write.
func (c *WindowCache) Set(key string, resp *WindowResponse) {
	if c == nil {
		return
	}
	now := time.Now()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.store) >= sweepThreshold {
		for k, e := range c.store {
			if now.After(e.expires) {
				delete(c.store, k)
			}
		}
	}
	c.store[key] = windowEntry{resp: resp, expires: now.Add(c.ttl)}
}

// Clear drops every entry.
func (c *WindowCache) Clear() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.store = map[string]windowEntry{}
	c.mu.Unlock()
}

// GenerateWindowKey derives the cache key for a window request. The
// start instant is normalized to UTC so equal instants key equally
// regardless of zone.
func GenerateWindowKey(params WindowParams) string {
	h := sha256.New()
	fmt.Fprintf(h, "%s:%s:%d",
		params.Series,
		params.Start.UTC().Format(time.RFC3339),
		params.Hours,
	)
	return hex.EncodeToString(h.Sum(nil))
}
