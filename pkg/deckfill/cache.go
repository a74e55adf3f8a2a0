package deckfill

import (
	"container/list"
	"sync"
	"time"
)

// TemplateCache keeps the bytes of recently used templates in memory.
// Entries are evicted least recently used first and expire after the TTL.
type TemplateCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
	lru     *list.List
	maxSize int
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	key     string
	data    []byte
	expiry  time.Time
	element *list.Element
}

// NewTemplateCache creates a cache holding up to maxSize templates.
// A ttl of 0 means entries never expire; a maxSize of 0 disables caching.
func NewTemplateCache(maxSize int, ttl time.Duration) *TemplateCache {
	return &TemplateCache{
		entries: make(map[string]*cacheEntry),
		lru:     list.New(),
		maxSize: maxSize,
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached template for key
func (tc *TemplateCache) Get(key string) ([]byte, bool) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	entry, ok := tc.entries[key]
	if !ok {
		return nil, false
	}
	if tc.ttl > 0 && tc.now().After(entry.expiry) {
		tc.removeLocked(entry)
		return nil, false
	}
	tc.lru.MoveToFront(entry.element)
	return entry.data, true
}

// Set stores a template under key, evicting the least recently used entry when full
func (tc *TemplateCache) Set(key string, data []byte) {
	if tc.maxSize <= 0 {
		return
	}

	tc.mu.Lock()
	defer tc.mu.Unlock()

	expiry := time.Time{}
	if tc.ttl > 0 {
		expiry = tc.now().Add(tc.ttl)
	}

	if existing, ok := tc.entries[key]; ok {
		existing.data = data
		existing.expiry = expiry
		tc.lru.MoveToFront(existing.element)
		return
	}

	if tc.lru.Len() >= tc.maxSize {
		if oldest := tc.lru.Back(); oldest != nil {
			tc.removeLocked(oldest.Value.(*cacheEntry))
		}
	}

	entry := &cacheEntry{key: key, data: data, expiry: expiry}
	entry.element = tc.lru.PushFront(entry)
	tc.entries[key] = entry
}

// Remove drops key from the cache
func (tc *TemplateCache) Remove(key string) {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if entry, ok := tc.entries[key]; ok {
		tc.removeLocked(entry)
	}
}

func (tc *TemplateCache) removeLocked(entry *cacheEntry) {
	delete(tc.entries, entry.key)
	tc.lru.Remove(entry.element)
}

// Clear removes all templates from the cache
func (tc *TemplateCache) Clear() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	tc.entries = make(map[string]*cacheEntry)
	tc.lru.Init()
}

// Size returns the current number of cached templates
func (tc *TemplateCache) Size() int {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	return len(tc.entries)
}
