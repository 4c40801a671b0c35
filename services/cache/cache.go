// Package cache provides the keyed response cache shared by the retriever
// and the external API gateway: TTL expiry plus LRU eviction under a
// configurable entry cap.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// entry is a single cache entry with its own TTL.
type entry struct {
	key        string
	value      interface{}
	ttl        time.Duration
	insertedAt time.Time
	element    *list.Element // LRU tracking
}

// isExpired checks if the cache entry has expired.
func (e *entry) isExpired(now time.Time) bool {
	return now.Sub(e.insertedAt) >= e.ttl
}

// Cache is an in-memory LRU cache with per-entry TTL.
// Thread-safe; a single mutex guards all mutation.
type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	lruList *list.List // front = most recently used
	maxSize int
	hits    uint64
	misses  uint64

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Cache bounded to maxSize entries. maxSize must be positive.
func New(maxSize int) *Cache {
	if maxSize <= 0 {
		maxSize = 1
	}
	return &Cache{
		entries: make(map[string]*entry),
		lruList: list.New(),
		maxSize: maxSize,
		now:     time.Now,
	}
}

// Get retrieves a value from the cache. The second return reports whether the
// key was present and unexpired. Expired entries are removed lazily here.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[key]
	if !exists || e.isExpired(c.now()) {
		c.misses++
		if exists {
			c.removeEntry(key)
		}
		return nil, false
	}

	c.lruList.MoveToFront(e.element)
	c.hits++
	return e.value, true
}

// Put inserts or overwrites a value. Overwriting resets the expiry clock.
// When the cache is full the least-recently-used entry is evicted first.
func (c *Cache) Put(key string, value interface{}, ttl time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, exists := c.entries[key]; exists {
		e.value = value
		e.ttl = ttl
		e.insertedAt = c.now()
		c.lruList.MoveToFront(e.element)
		return
	}

	if c.lruList.Len() >= c.maxSize {
		c.evictLRU()
	}

	e := &entry{
		key:        key,
		value:      value,
		ttl:        ttl,
		insertedAt: c.now(),
	}
	e.element = c.lruList.PushFront(key)
	c.entries[key] = e
}

// Delete removes a specific entry.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.removeEntry(key)
}

// Clear removes all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]*entry)
	c.lruList.Init()
}

// Len returns the number of entries currently stored, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.lruList.Len()
}

// Stats returns cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Size:    c.lruList.Len(),
		MaxSize: c.maxSize,
		Hits:    c.hits,
		Misses:  c.misses,
		HitRate: c.calculateHitRate(),
	}
}

// Stats represents cache statistics.
type Stats struct {
	Size    int
	MaxSize int
	Hits    uint64
	Misses  uint64
	HitRate float64
}

func (c *Cache) calculateHitRate() float64 {
	total := c.hits + c.misses
	if total == 0 {
		return 0
	}
	return float64(c.hits) / float64(total)
}

// removeEntry removes an entry (must be called with lock held).
func (c *Cache) removeEntry(key string) {
	if e, exists := c.entries[key]; exists {
		c.lruList.Remove(e.element)
		delete(c.entries, key)
	}
}

// evictLRU evicts the least recently used entry (must be called with lock held).
func (c *Cache) evictLRU() {
	backElement := c.lruList.Back()
	if backElement == nil {
		return
	}
	key := backElement.Value.(string)
	c.lruList.Remove(backElement)
	delete(c.entries, key)
}

// EvictExpired removes all expired entries and returns how many were dropped.
// Expiry is also applied lazily on Get, so calling this is optional.
func (c *Cache) EvictExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	expired := make([]string, 0)
	for key, e := range c.entries {
		if e.isExpired(now) {
			expired = append(expired, key)
		}
	}
	for _, key := range expired {
		c.removeEntry(key)
	}
	return len(expired)
}

// StartCleanupWorker periodically evicts expired entries until stopCh closes.
func (c *Cache) StartCleanupWorker(interval time.Duration, stopCh <-chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.EvictExpired()
		case <-stopCh:
			return
		}
	}
}
