// Package resultcache is a digest-keyed in-memory cache for serialized
// analysis reports. The engine itself never caches; this lives on the
// caller's side of that contract for hosts that re-render the same
// history many times (UI widgets, request handlers).
package resultcache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/maypok86/otter/v2"
)

// Cache wraps an otter cache of serialized reports.
type Cache struct {
	cache  *otter.Cache[string, []byte]
	logger *slog.Logger
	ttl    time.Duration
}

// New builds a cache holding up to capacity entries for ttl each.
func New(capacity int, ttl time.Duration, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	cache := otter.Must(&otter.Options[string, []byte]{
		MaximumSize:      capacity,
		ExpiryCalculator: otter.ExpiryWriting[string, []byte](ttl),
	})
	return &Cache{cache: cache, logger: logger, ttl: ttl}
}

// Key digests any JSON-serializable input bundle into a stable cache key.
// Go's JSON encoder writes map keys in sorted order, so identical inputs
// digest identically.
func Key(inputs ...any) (string, error) {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, in := range inputs {
		if err := enc.Encode(in); err != nil {
			return "", fmt.Errorf("digesting cache key: %w", err)
		}
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the cached payload for key, if present and fresh.
func (c *Cache) Get(key string) ([]byte, bool) {
	data, ok := c.cache.GetIfPresent(key)
	if !ok {
		c.logger.Debug("report cache miss", "key", key[:12])
		return nil, false
	}
	c.logger.Debug("report cache hit", "key", key[:12], "size", len(data))
	return data, true
}

// Set stores a payload under key.
func (c *Cache) Set(key string, data []byte) {
	c.cache.Set(key, data)
	c.logger.Debug("report cache set", "key", key[:12], "size", len(data), "ttl", c.ttl)
}

// Len returns the estimated number of live entries.
func (c *Cache) Len() int {
	return c.cache.EstimatedSize()
}
