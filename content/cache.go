package content

import (
	"sync"
	"time"
)

type cacheKey struct {
	slug, lang string
}

type cacheEntry struct {
	post    Post
	fetched time.Time
}

// Cache keeps loaded posts in memory for a TTL. Misses are not cached, so
// a post created after a 404 is picked up on the next request.
type Cache struct {
	mu      sync.RWMutex
	entries map[cacheKey]cacheEntry
	ttl     time.Duration
	src     Source
}

// NewCache creates a Cache in front of src.
func NewCache(src Source, ttl time.Duration) *Cache {
	return &Cache{src: src, ttl: ttl, entries: make(map[cacheKey]cacheEntry)}
}

func (c *Cache) fresh(e cacheEntry) bool {
	return time.Since(e.fetched) < c.ttl
}

// Load returns the post for slug and lang, reading through on a miss. It
// tries a read lock first and only takes the write lock to reload.
func (c *Cache) Load(slug, lang string) (Post, error) {
	key := cacheKey{slug, lang}
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if ok && c.fresh(e) {
		return e.post, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok && c.fresh(e) {
		return e.post, nil
	}
	p, err := c.src.Load(slug, lang)
	if err != nil {
		delete(c.entries, key)
		return Post{}, err
	}
	c.entries[key] = cacheEntry{post: p, fetched: time.Now()}
	return p, nil
}

// Invalidate drops one post so the next read reloads it.
func (c *Cache) Invalidate(slug, lang string) {
	c.mu.Lock()
	delete(c.entries, cacheKey{slug, lang})
	c.mu.Unlock()
}

// InvalidateAll clears the cache.
func (c *Cache) InvalidateAll() {
	c.mu.Lock()
	c.entries = make(map[cacheKey]cacheEntry)
	c.mu.Unlock()
}

// Len reports how many posts are cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
