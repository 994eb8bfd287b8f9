package client

import (
	"container/list"
	"sync"
	"time"
)

// tagCache is a thread-safe response cache with TTL expiration, LRU
// eviction, and tag-based invalidation. Every cached GET response is filed
// under a resource tag ("workflow", "run", ...); a successful write
// invalidates its tag so readers refetch. Display code never edits entries
// directly.
type tagCache struct {
	mu       sync.Mutex
	items    map[string]*list.Element
	byTag    map[string]map[string]struct{} // tag -> set of keys
	eviction *list.List                     // front = most recently used
	maxSize  int
	ttl      time.Duration

	hits   int64
	misses int64
}

type cacheEntry struct {
	key       string
	tag       string
	body      []byte
	expiresAt time.Time
}

func newTagCache(maxSize int, ttl time.Duration) *tagCache {
	if maxSize <= 0 {
		maxSize = 256
	}
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	return &tagCache{
		items:    make(map[string]*list.Element, maxSize),
		byTag:    make(map[string]map[string]struct{}),
		eviction: list.New(),
		maxSize:  maxSize,
		ttl:      ttl,
	}
}

// get returns the cached body for key, or nil and false on miss/expiry.
func (c *tagCache) get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		c.misses++
		return nil, false
	}
	entry := elem.Value.(*cacheEntry)
	if time.Now().After(entry.expiresAt) {
		c.removeLocked(elem)
		c.misses++
		return nil, false
	}
	c.eviction.MoveToFront(elem)
	c.hits++
	return entry.body, true
}

// set stores body under key, filed under tag.
func (c *tagCache) set(key, tag string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, ok := c.items[key]; ok {
		entry := elem.Value.(*cacheEntry)
		c.untagLocked(entry)
		entry.tag = tag
		entry.body = body
		entry.expiresAt = time.Now().Add(c.ttl)
		c.tagLocked(key, tag)
		c.eviction.MoveToFront(elem)
		return
	}

	for c.eviction.Len() >= c.maxSize {
		c.removeLocked(c.eviction.Back())
	}

	entry := &cacheEntry{key: key, tag: tag, body: body, expiresAt: time.Now().Add(c.ttl)}
	c.items[key] = c.eviction.PushFront(entry)
	c.tagLocked(key, tag)
}

// invalidateTag drops every entry filed under tag.
func (c *tagCache) invalidateTag(tag string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.byTag[tag] {
		if elem, ok := c.items[key]; ok {
			c.removeLocked(elem)
		}
	}
	delete(c.byTag, tag)
}

// clear drops everything, used when the auth identity changes.
func (c *tagCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]*list.Element, c.maxSize)
	c.byTag = make(map[string]map[string]struct{})
	c.eviction.Init()
}

func (c *tagCache) tagLocked(key, tag string) {
	set, ok := c.byTag[tag]
	if !ok {
		set = make(map[string]struct{})
		c.byTag[tag] = set
	}
	set[key] = struct{}{}
}

func (c *tagCache) untagLocked(entry *cacheEntry) {
	if set, ok := c.byTag[entry.tag]; ok {
		delete(set, entry.key)
		if len(set) == 0 {
			delete(c.byTag, entry.tag)
		}
	}
}

func (c *tagCache) removeLocked(elem *list.Element) {
	entry := elem.Value.(*cacheEntry)
	c.untagLocked(entry)
	delete(c.items, entry.key)
	c.eviction.Remove(elem)
}
