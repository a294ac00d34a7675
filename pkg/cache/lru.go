// ABOUTME: LRUCache is the bounded first-tier cache: a page key to page
// ABOUTME: container map that evicts its least-recently-used entry to a
// ABOUTME: secondary tier once it reaches capacity, mirroring the
// ABOUTME: container/list-backed pager cache pattern. Exposes get, put,
// ABOUTME: put_all, remove, clear, size and an as_map snapshot.

package cache

import (
	"container/list"
	"sync"

	"github.com/bark/sirix/pkg/page"
)

// EvictFunc receives an entry evicted from the LRU tier so the caller
// can spill it to a secondary, unbounded tier.
type EvictFunc[K comparable, V any] func(page.PageKey, page.RecordPageContainer[K, V])

type lruEntry[K comparable, V any] struct {
	key       page.PageKey
	container page.RecordPageContainer[K, V]
}

// LRUCache is a fixed-capacity, thread-safe page container cache.
// Access (Get or Put) moves an entry to the front of the recency list;
// once Len() exceeds capacity, the back of the list is evicted via
// onEvict.
type LRUCache[K comparable, V any] struct {
	mu       sync.Mutex
	capacity int
	order    *list.List
	index    map[page.PageKey]*list.Element
	onEvict  EvictFunc[K, V]
	closed   bool
}

// NewLRUCache constructs an LRU tier with the given capacity. onEvict
// may be nil, in which case evicted entries are simply dropped.
func NewLRUCache[K comparable, V any](capacity int, onEvict EvictFunc[K, V]) *LRUCache[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LRUCache[K, V]{
		capacity: capacity,
		order:    list.New(),
		index:    make(map[page.PageKey]*list.Element),
		onEvict:  onEvict,
	}
}

// Get returns the container for key, promoting it to most-recently-used.
func (c *LRUCache[K, V]) Get(key page.PageKey) (page.RecordPageContainer[K, V], bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		return page.Empty[K, V](), false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*lruEntry[K, V]).container, true
}

// Put installs or overwrites the container for key, promoting it to
// most-recently-used, evicting the least-recently-used entry if the
// cache is now over capacity.
func (c *LRUCache[K, V]) Put(key page.PageKey, container page.RecordPageContainer[K, V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.put(key, container)
}

// PutAll installs or overwrites every (key, container) pair in entries.
func (c *LRUCache[K, V]) PutAll(entries map[page.PageKey]page.RecordPageContainer[K, V]) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key, container := range entries {
		c.put(key, container)
	}
}

// put is Put's body without locking. Caller must hold mu.
func (c *LRUCache[K, V]) put(key page.PageKey, container page.RecordPageContainer[K, V]) {
	if elem, ok := c.index[key]; ok {
		elem.Value.(*lruEntry[K, V]).container = container
		c.order.MoveToFront(elem)
		return
	}

	elem := c.order.PushFront(&lruEntry[K, V]{key: key, container: container})
	c.index[key] = elem

	if c.order.Len() > c.capacity {
		c.evictOldest()
	}
}

// Remove deletes key from the cache, reporting whether it was present.
func (c *LRUCache[K, V]) Remove(key page.PageKey) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.index[key]
	if !ok {
		return false
	}
	c.order.Remove(elem)
	delete(c.index, key)
	return true
}

// Clear empties the cache without spilling to the secondary tier.
func (c *LRUCache[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.index = make(map[page.PageKey]*list.Element)
}

// Len reports the number of entries currently held.
func (c *LRUCache[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// AsMap returns a snapshot of every entry currently held, in no
// particular order. Unlike Clear, this does not touch the cache: it is
// the read side of drain_to_secondary, which copies RAM into the
// persistent tier without evicting anything.
func (c *LRUCache[K, V]) AsMap() map[page.PageKey]page.RecordPageContainer[K, V] {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make(map[page.PageKey]page.RecordPageContainer[K, V], c.order.Len())
	for elem := c.order.Front(); elem != nil; elem = elem.Next() {
		entry := elem.Value.(*lruEntry[K, V])
		out[entry.key] = entry.container
	}
	return out
}

// evictOldest removes the least-recently-used entry, spilling it to the
// secondary tier via onEvict. Caller must hold mu.
func (c *LRUCache[K, V]) evictOldest() {
	back := c.order.Back()
	if back == nil {
		return
	}
	entry := back.Value.(*lruEntry[K, V])
	c.order.Remove(back)
	delete(c.index, entry.key)

	if c.onEvict != nil {
		c.onEvict(entry.key, entry.container)
	}
}
