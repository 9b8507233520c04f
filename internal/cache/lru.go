package cache

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"

	"github.com/hupe1980/searchsimilar/internal/resource"
)

// LRUBlockCache implements a simple LRU BlockCache.
type LRUBlockCache struct {
	mu        sync.Mutex
	capacity  int64
	size      int64
	items     map[CacheKey]*list.Element
	evictList *list.List
	rc        *resource.Controller

	hits   atomic.Int64
	misses atomic.Int64
}

type entry struct {
	key   CacheKey
	value []byte
}

// NewLRUBlockCache creates a new LRU cache with the given capacity in bytes.
// If rc is provided, it will be used to track memory usage.
func NewLRUBlockCache(capacity int64, rc *resource.Controller) *LRUBlockCache {
	return &LRUBlockCache{
		capacity:  capacity,
		items:     make(map[CacheKey]*list.Element),
		evictList: list.New(),
		rc:        rc,
	}
}

// Get returns a cached block.
func (c *LRUBlockCache) Get(_ context.Context, key CacheKey) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.hits.Add(1)
		c.evictList.MoveToFront(ent)
		return ent.Value.(*entry).value, true
	}
	c.misses.Add(1)
	return nil, false
}

// Set caches a block.
func (c *LRUBlockCache) Set(_ context.Context, key CacheKey, b []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ent, ok := c.items[key]; ok {
		c.evictList.MoveToFront(ent)
		oldSize := int64(len(ent.Value.(*entry).value))
		newSize := int64(len(b))
		if newSize > oldSize && !c.rc.TryAcquireMemory(newSize-oldSize) {
			// Keep the old value if the controller denies the growth.
			return
		}
		if newSize < oldSize {
			c.rc.ReleaseMemory(oldSize - newSize)
		}

		c.size += newSize - oldSize
		ent.Value.(*entry).value = b
		c.evict()
		return
	}

	itemSize := int64(len(b))
	if itemSize > c.capacity {
		return
	}

	// Evict locally first so released memory is available to the controller.
	for c.size+itemSize > c.capacity {
		ent := c.evictList.Back()
		if ent == nil {
			break
		}
		c.removeElement(ent)
	}

	if !c.rc.TryAcquireMemory(itemSize) {
		return
	}

	element := c.evictList.PushFront(&entry{key, b})
	c.items[key] = element
	c.size += itemSize
}

// Invalidate removes entries matching the predicate.
func (c *LRUBlockCache) Invalidate(predicate func(key CacheKey) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var toRemove []*list.Element
	for key, element := range c.items {
		if predicate(key) {
			toRemove = append(toRemove, element)
		}
	}

	for _, e := range toRemove {
		c.removeElement(e)
	}
}

func (c *LRUBlockCache) evict() {
	for c.size > c.capacity {
		element := c.evictList.Back()
		if element == nil {
			break
		}
		c.removeElement(element)
	}
}

// Close drops all entries and returns their memory to the controller.
func (c *LRUBlockCache) Close() error {
	c.Invalidate(func(CacheKey) bool { return true })
	return nil
}

// Stats returns hit and miss counters.
func (c *LRUBlockCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

func (c *LRUBlockCache) removeElement(e *list.Element) {
	c.evictList.Remove(e)
	kv := e.Value.(*entry)
	delete(c.items, kv.key)
	itemSize := int64(len(kv.value))
	c.size -= itemSize
	c.rc.ReleaseMemory(itemSize)
}

// Size returns the current size of the cache in bytes.
func (c *LRUBlockCache) Size() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}
