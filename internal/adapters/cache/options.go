package cache

import "time"

// Option applies a configuration option to the in-memory cache.
type Option func(*inMemoryCache)

// WithMaxSize bounds the number of entries. 0 or less disables caching.
func WithMaxSize(maxSize int) Option {
	return func(c *inMemoryCache) {
		c.maxSize = maxSize
	}
}

// WithTTL sets how long an entry stays fresh. 0 or less keeps entries until
// they are evicted.
func WithTTL(ttl time.Duration) Option {
	return func(c *inMemoryCache) {
		c.ttl = ttl
	}
}

// WithClock replaces the time source.
func WithClock(now func() time.Time) Option {
	return func(c *inMemoryCache) {
		if now != nil {
			c.now = now
		}
	}
}
