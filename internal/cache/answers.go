// Package cache holds recently computed answers keyed by query and document-set version.
package cache

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/hyperjump/kotae/internal/models"
)

const (
	DefaultTTL        = time.Hour
	DefaultMaxEntries = 1000
)

// Answer is a cached agent result.
type Answer struct {
	Result   string        `json:"result"`
	Steps    []models.Step `json:"steps"`
	CachedAt time.Time     `json:"cached_at"`
}

// Stats reports cache effectiveness since creation.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// AnswerCache is a TTL cache of answers. Safe for concurrent use.
type AnswerCache struct {
	cache      *gocache.Cache
	maxEntries int
	hits       atomic.Int64
	misses     atomic.Int64
}

// NewAnswerCache creates a cache whose entries expire after ttl. When the
// cache holds maxEntries items, expired entries are purged and, if it is
// still full, the cache is flushed.
func NewAnswerCache(ttl time.Duration, maxEntries int) *AnswerCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &AnswerCache{
		cache:      gocache.New(ttl, ttl/6),
		maxEntries: maxEntries,
	}
}

// Key builds the cache key. Queries differing only in case or surrounding
// whitespace share a key; a new document-set version never hits old entries.
func Key(query string, version uint64) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	return fmt.Sprintf("%d|%s", version, normalized)
}

// Get returns the cached answer for query at the given document-set version.
func (c *AnswerCache) Get(query string, version uint64) (*Answer, bool) {
	if x, found := c.cache.Get(Key(query, version)); found {
		c.hits.Add(1)
		return x.(*Answer), true
	}
	c.misses.Add(1)
	return nil, false
}

// Set stores an answer.
func (c *AnswerCache) Set(query string, version uint64, result string, steps []models.Step) {
	if c.cache.ItemCount() >= c.maxEntries {
		c.cache.DeleteExpired()
		if c.cache.ItemCount() >= c.maxEntries {
			c.cache.Flush()
		}
	}
	stepsCopy := make([]models.Step, len(steps))
	copy(stepsCopy, steps)
	c.cache.Set(Key(query, version), &Answer{
		Result:   result,
		Steps:    stepsCopy,
		CachedAt: time.Now(),
	}, gocache.DefaultExpiration)
}

// Invalidate drops every cached answer.
func (c *AnswerCache) Invalidate() {
	c.cache.Flush()
}

// Stats returns hit and miss counters and the current entry count.
func (c *AnswerCache) Stats() Stats {
	return Stats{
		Hits:    c.hits.Load(),
		Misses:  c.misses.Load(),
		Entries: c.cache.ItemCount(),
	}
}
