// Package cache provides generic in-memory caches.
package cache

// Cache defines the basic interface for a generic cache
type Cache[K comparable, V any] interface {
	// Set adds or updates an item in the cache
	Set(key K, value V)
	// Get retrieves an item from the cache
	Get(key K) (V, bool)
	// Del removes an item from the cache
	Del(key K)
	// Len returns the number of items in the cache
	Len() int
	// Keys returns all keys in the cache
	Keys() []K
	// Clear removes all items from the cache
	Clear()
	// Contains checks if a key exists without touching access statistics
	Contains(key K) bool
}
