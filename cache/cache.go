// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cache provides the short-TTL response cache and the suggestion
// debounce gate. Both are safe for concurrent use.
package cache

import (
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/poiesic/seeker/core"
)

var (
	// ErrInvalidTTL indicates a non-positive TTL was configured.
	ErrInvalidTTL = errors.New("ttl must be positive")
	// ErrInvalidCapacity indicates a non-positive capacity was configured.
	ErrInvalidCapacity = errors.New("capacity must be positive")
)

const (
	// DefaultTTL is how long a cached result stays servable.
	DefaultTTL = 5 * time.Minute
	// DefaultCapacity bounds the number of cached results.
	DefaultCapacity = 1000
)

// Key derives the cache key for a query/options pair. The query is
// normalized so that leading/trailing whitespace and casing do not fragment
// the cache.
func Key(query string, opts *core.SearchOptions) core.CacheKey {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return core.KeyFromContent(normalized + "|" + opts.CanonicalString())
}

type entry struct {
	result     *core.SearchResult
	insertedAt time.Time
}

// ResultCache stores search result envelopes keyed by (query, options).
// Entries expire after the TTL; when the cache is full the oldest-inserted
// entry is evicted first. Insertion-order eviction, not LRU: with a short
// TTL the extra bookkeeping buys nothing.
type ResultCache struct {
	mu       sync.Mutex
	entries  map[core.CacheKey]*entry
	order    []core.CacheKey
	ttl      time.Duration
	capacity int
	now      func() time.Time
	logger   *slog.Logger
}

// CacheOption configures a ResultCache.
type CacheOption func(*ResultCache) error

// WithTTL overrides the default entry lifetime.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *ResultCache) error {
		if ttl <= 0 {
			return ErrInvalidTTL
		}
		c.ttl = ttl
		return nil
	}
}

// WithCapacity overrides the default maximum entry count.
func WithCapacity(capacity int) CacheOption {
	return func(c *ResultCache) error {
		if capacity <= 0 {
			return ErrInvalidCapacity
		}
		c.capacity = capacity
		return nil
	}
}

// WithClock injects the time source used for TTL checks. Intended for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *ResultCache) error {
		if now != nil {
			c.now = now
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) CacheOption {
	return func(c *ResultCache) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// NewResultCache creates an empty cache with the default TTL and capacity.
func NewResultCache(opts ...CacheOption) (*ResultCache, error) {
	c := &ResultCache{
		entries:  make(map[core.CacheKey]*entry),
		ttl:      DefaultTTL,
		capacity: DefaultCapacity,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Get returns the cached result for key if it exists and is younger than the
// TTL. An expired entry is evicted and reported as a miss.
func (c *ResultCache) Get(key core.CacheKey) (*core.SearchResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.insertedAt) >= c.ttl {
		c.removeLocked(key)
		return nil, false
	}
	return e.result, true
}

// Put stores a result under key, evicting the oldest-inserted entry when the
// cache is at capacity.
func (c *ResultCache) Put(key core.CacheKey, result *core.SearchResult) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.entries[key]; ok {
		c.entries[key] = &entry{result: result, insertedAt: c.now()}
		return
	}

	for len(c.entries) >= c.capacity && len(c.order) > 0 {
		oldest := c.order[0]
		c.removeLocked(oldest)
		c.logger.Debug("evicted oldest cache entry", "key", uint64(oldest))
	}

	c.entries[key] = &entry{result: result, insertedAt: c.now()}
	c.order = append(c.order, key)
}

// Invalidate drops every entry. Called after any index mutation so stale
// results are never served.
func (c *ResultCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[core.CacheKey]*entry)
	c.order = c.order[:0]
}

// Len reports the current entry count.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ResultCache) removeLocked(key core.CacheKey) {
	delete(c.entries, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}
