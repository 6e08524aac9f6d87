package style

// Cache is a memo table that counts lookups.
//
// Entries live until Clear is called; there is no other invalidation.
// Cache is not safe for concurrent use.
type Cache[K comparable, V any] struct {
	entries map[K]V
	hits    int
	misses  int
}

// NewCache creates an empty Cache.
func NewCache[K comparable, V any]() *Cache[K, V] {
	return &Cache[K, V]{entries: make(map[K]V)}
}

// Get returns the cached value for key and records a hit or a miss.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	v, ok := c.entries[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return v, ok
}

// Put stores value under key.
func (c *Cache[K, V]) Put(key K, value V) {
	c.entries[key] = value
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return len(c.entries)
}

// Stats returns the hit and miss counts since creation or the last Clear.
func (c *Cache[K, V]) Stats() (hits, misses int) {
	return c.hits, c.misses
}

// Clear drops every entry and resets the counters.
func (c *Cache[K, V]) Clear() {
	c.entries = make(map[K]V)
	c.hits, c.misses = 0, 0
}
