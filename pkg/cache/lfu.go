package cache

import (
	"container/list"
	"sync"
)

// LFU is a thread-safe fixed-capacity cache that evicts the least
// frequently used entry when full. Entries with equal frequency are
// evicted in least-recently-used order.
type LFU[K comparable, V any] struct {
	mu sync.Mutex

	capacity int
	minFreq  int

	// entries maps keys to their element in the frequency bucket.
	entries map[K]*list.Element

	// buckets maps an access frequency to the list of entries at that
	// frequency, ordered from least to most recently used.
	buckets map[int]*list.List
}

type lfuEntry[K comparable, V any] struct {
	key   K
	value V
	freq  int
}

// NewLFU creates an LFU cache with the given capacity.
// A capacity below 1 is treated as 1.
func NewLFU[K comparable, V any](capacity int) *LFU[K, V] {
	if capacity < 1 {
		capacity = 1
	}
	return &LFU[K, V]{
		capacity: capacity,
		entries:  make(map[K]*list.Element),
		buckets:  make(map[int]*list.List),
	}
}

// Set adds or updates an item in the cache, evicting the least
// frequently used entry if the cache is at capacity.
func (c *LFU[K, V]) Set(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.entries[key]; ok {
		el.Value.(*lfuEntry[K, V]).value = value
		c.touch(el)
		return
	}

	if len(c.entries) >= c.capacity {
		c.evict()
	}

	ent := &lfuEntry[K, V]{key: key, value: value, freq: 1}
	bucket := c.bucket(1)
	c.entries[key] = bucket.PushBack(ent)
	c.minFreq = 1
}

// Get retrieves an item and bumps its access frequency.
func (c *LFU[K, V]) Get(key K) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	c.touch(el)
	return el.Value.(*lfuEntry[K, V]).value, true
}

// Del removes an item from the cache.
func (c *LFU[K, V]) Del(key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.entries[key]
	if !ok {
		return
	}
	ent := el.Value.(*lfuEntry[K, V])
	c.buckets[ent.freq].Remove(el)
	delete(c.entries, key)
}

// Len returns the number of items in the cache.
func (c *LFU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Capacity returns the maximum number of items the cache holds.
func (c *LFU[K, V]) Capacity() int {
	return c.capacity
}

// Keys returns all keys in the cache.
func (c *LFU[K, V]) Keys() []K {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]K, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys
}

// Clear removes all items from the cache.
func (c *LFU[K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[K]*list.Element)
	c.buckets = make(map[int]*list.List)
	c.minFreq = 0
}

// Contains checks if a key exists without bumping its frequency.
func (c *LFU[K, V]) Contains(key K) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}

// Internal helpers (assume lock is held)

// touch moves an entry to the next frequency bucket.
func (c *LFU[K, V]) touch(el *list.Element) {
	ent := el.Value.(*lfuEntry[K, V])
	old := c.buckets[ent.freq]
	old.Remove(el)

	if old.Len() == 0 && c.minFreq == ent.freq {
		c.minFreq++
	}

	ent.freq++
	c.entries[ent.key] = c.bucket(ent.freq).PushBack(ent)
}

// evict removes the least recently used entry of the lowest frequency.
func (c *LFU[K, V]) evict() {
	bucket, ok := c.buckets[c.minFreq]
	if !ok || bucket.Len() == 0 {
		// minFreq can go stale after Del; rescan.
		c.minFreq = 0
		for f, b := range c.buckets {
			if b.Len() > 0 && (c.minFreq == 0 || f < c.minFreq) {
				c.minFreq = f
			}
		}
		bucket, ok = c.buckets[c.minFreq]
		if !ok || bucket.Len() == 0 {
			return
		}
	}

	el := bucket.Front()
	ent := el.Value.(*lfuEntry[K, V])
	bucket.Remove(el)
	delete(c.entries, ent.key)
}

func (c *LFU[K, V]) bucket(freq int) *list.List {
	b, ok := c.buckets[freq]
	if !ok {
		b = list.New()
		c.buckets[freq] = b
	}
	return b
}
