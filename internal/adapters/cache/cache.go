// Package cache provides a bounded in-memory TTL cache for upstream responses.
package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/pokerleague/pkg/metrics"
)

// Cache stores raw response bodies keyed by request URL.
type Cache interface {
	// Get returns a fresh value for key. Expired entries are dropped and
	// reported as misses.
	Get(ctx context.Context, key string) ([]byte, bool)

	// Set stores value under key, replacing any previous value and
	// restarting its TTL. When the cache is full the oldest entry is evicted.
	Set(ctx context.Context, key string, value []byte)

	// Delete removes key if present.
	Delete(ctx context.Context, key string)

	Size() int64
}

// node represents a single entry in the linked list
type node struct {
	key     string
	value   []byte
	expires time.Time
	next    *node
}

// reset clears the node state for reuse
func (n *node) reset() {
	n.key = ""
	n.value = nil
	n.expires = time.Time{}
	n.next = nil
}

// inMemoryCache keeps entries in a map plus a singly linked list ordered by
// insertion (head is the newest). Eviction removes the tail.
type inMemoryCache struct {
	mu       sync.Mutex
	entries  map[string]*node
	head     *node
	maxSize  int
	ttl      time.Duration
	now      func() time.Time
	size     atomic.Int64
	nodePool sync.Pool
}

// NewInMemoryCache creates a cache with configuration options.
func NewInMemoryCache(opts ...Option) Cache {
	c := &inMemoryCache{
		maxSize: 256,
		ttl:     time.Minute,
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	c.entries = make(map[string]*node)
	c.nodePool = sync.Pool{
		New: func() interface{} {
			return &node{}
		},
	}
	return c
}

// Get returns a fresh value for key.
func (c *inMemoryCache) Get(_ context.Context, key string) ([]byte, bool) {
	if c.maxSize <= 0 {
		return nil, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		metrics.RecordCacheMiss()
		return nil, false
	}
	if c.ttl > 0 && !c.now().Before(n.expires) {
		c.remove(n)
		metrics.RecordCacheMiss()
		return nil, false
	}
	metrics.RecordCacheHit()
	return n.value, true
}

// Set stores value under key.
func (c *inMemoryCache) Set(_ context.Context, key string, value []byte) {
	if c.maxSize <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	expires := c.now().Add(c.ttl)
	if n, ok := c.entries[key]; ok {
		n.value = value
		n.expires = expires
		return
	}

	if len(c.entries) >= c.maxSize {
		c.evictOldest()
	}

	n := c.nodePool.Get().(*node)
	n.key = key
	n.value = value
	n.expires = expires
	n.next = c.head

	c.head = n
	c.entries[key] = n
	c.size.Add(1)
	metrics.UpdateCacheSize(c.size.Load())
}

// Delete removes key if present.
func (c *inMemoryCache) Delete(_ context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		c.remove(n)
	}
}

// remove unlinks n. Must be called with c.mu held.
func (c *inMemoryCache) remove(target *node) {
	delete(c.entries, target.key)

	if c.head == target {
		c.head = target.next
	} else {
		current := c.head
		for current != nil && current.next != target {
			current = current.next
		}
		if current != nil {
			current.next = target.next
		}
	}

	target.reset()
	c.nodePool.Put(target)
	c.size.Add(-1)
	metrics.UpdateCacheSize(c.size.Load())
}

// evictOldest removes the tail of the list. Must be called with c.mu held.
func (c *inMemoryCache) evictOldest() {
	if c.head == nil {
		return
	}
	tail := c.head
	for tail.next != nil {
		tail = tail.next
	}
	c.remove(tail)
}

// Size returns the current number of entries.
func (c *inMemoryCache) Size() int64 {
	return c.size.Load()
}
