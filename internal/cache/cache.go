// Package cache provides the dashboard response cache: an in-memory map with
// a fixed TTL, checked lazily on read. Key cardinality is bounded by the
// filter combinations the UI exposes, so there is no size bound or LRU.
package cache

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/brightwater-dev/leadboard/internal/metrics"
)

// Store is what the dashboard service depends on. The interface exists so
// tests can substitute a deterministic implementation.
type Store interface {
	Get(key string) (any, bool)
	Set(key string, value any)
	Invalidate(key string)
	Clear()
}

type entry struct {
	value     any
	expiresAt time.Time
}

// TTLCache is the production Store. A clock function is injected so expiry is
// testable without sleeping.
type TTLCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
	done    chan struct{}
}

// Option configures a TTLCache.
type Option func(*TTLCache)

// WithClock replaces the time source. Tests use this.
func WithClock(now func() time.Time) Option {
	return func(c *TTLCache) { c.now = now }
}

// New creates a TTLCache and starts a background sweep that removes expired
// entries every ttl interval. Call Close to stop the sweep.
func New(ttl time.Duration, opts ...Option) *TTLCache {
	c := &TTLCache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.sweepLoop()
	return c
}

func (c *TTLCache) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		metrics.CacheMisses.Inc()
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		metrics.CacheMisses.Inc()
		metrics.CacheEvictions.Inc()
		return nil, false
	}
	metrics.CacheHits.Inc()
	return e.value, true
}

func (c *TTLCache) Set(key string, value any) {
	c.mu.Lock()
	c.entries[key] = entry{value: value, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

func (c *TTLCache) Invalidate(key string) {
	c.mu.Lock()
	delete(c.entries, key)
	c.mu.Unlock()
	metrics.CacheEvictions.Inc()
}

func (c *TTLCache) Clear() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]entry)
	c.mu.Unlock()
	metrics.CacheEvictions.Add(float64(n))
}

// Close stops the background sweep.
func (c *TTLCache) Close() {
	close(c.done)
}

func (c *TTLCache) sweepLoop() {
	t := time.NewTicker(c.ttl)
	defer t.Stop()
	for {
		select {
		case <-c.done:
			return
		case <-t.C:
			c.sweep()
		}
	}
}

func (c *TTLCache) sweep() {
	now := c.now()
	c.mu.Lock()
	defer c.mu.Unlock()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
			metrics.CacheEvictions.Inc()
		}
	}
}

// Key builds the deterministic cache key for one dashboard query. Exclusions
// are sorted so equivalent filter sets collide. The hash keeps keys compact
// when source names are long.
func Key(start, end time.Time, excludedSources []string, excludeAgents, excludeNoSource bool) string {
	names := make([]string, len(excludedSources))
	copy(names, excludedSources)
	sort.Strings(names)

	raw := fmt.Sprintf("%s|%s|%s|%t|%t",
		start.UTC().Format(time.RFC3339),
		end.UTC().Format(time.RFC3339),
		strings.Join(names, ","),
		excludeAgents, excludeNoSource)
	sum := sha256.Sum256([]byte(raw))
	return fmt.Sprintf("dashboard:%x", sum[:16])
}
