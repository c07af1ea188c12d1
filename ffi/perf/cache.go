package perf

import (
	"container/list"
	"sync"

	"github.com/obinexus/libpolycall/ffi/types"
)

type cacheEntry struct {
	functionName string
	fingerprint  string
	generation   uint64
	result       types.CanonicalValue
	elem         *list.Element
}

// Cache is the result cache described in spec.md §4.5: entries are keyed
// by function name + argument fingerprint and carry a generation counter
// bumped whenever the function is re-registered, so stale entries miss
// without needing to be swept eagerly. Eviction past capacity removes the
// least recently used entry, tracked in a container/list recency order.
type Cache struct {
	mu          sync.Mutex
	capacity    int
	entries     map[string]*cacheEntry // key: functionName + "\x00" + fingerprint
	generations map[string]uint64
	order       *list.List // front = most recently used
}

// NewCache creates a cache with the given entry capacity. capacity <= 0
// means unbounded.
func NewCache(capacity int) *Cache {
	return &Cache{
		capacity:    capacity,
		entries:     make(map[string]*cacheEntry),
		generations: make(map[string]uint64),
		order:       list.New(),
	}
}

func cacheKey(functionName, fingerprint string) string {
	return functionName + "\x00" + fingerprint
}

// Get returns the cached result for (functionName, fingerprint), if any
// and if it is not stale with respect to the function's current
// generation.
func (c *Cache) Get(functionName, fingerprint string) (types.CanonicalValue, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(functionName, fingerprint)
	entry, ok := c.entries[key]
	if !ok {
		return types.CanonicalValue{}, false
	}
	if entry.generation != c.generations[functionName] {
		c.removeLocked(key, entry)
		return types.CanonicalValue{}, false
	}
	c.order.MoveToFront(entry.elem)
	return entry.result, true
}

// Put stores result under (functionName, fingerprint) at the function's
// current generation, evicting the least-recently-used entry if the
// cache is at capacity.
func (c *Cache) Put(functionName, fingerprint string, result types.CanonicalValue) {
	c.mu.Lock()
	defer c.mu.Unlock()

	key := cacheKey(functionName, fingerprint)
	if existing, ok := c.entries[key]; ok {
		existing.result = result
		existing.generation = c.generations[functionName]
		c.order.MoveToFront(existing.elem)
		return
	}

	entry := &cacheEntry{
		functionName: functionName,
		fingerprint:  fingerprint,
		generation:   c.generations[functionName],
		result:       result,
	}
	entry.elem = c.order.PushFront(key)
	c.entries[key] = entry

	if c.capacity > 0 && len(c.entries) > c.capacity {
		c.evictOldestLocked()
	}
}

// BumpGeneration invalidates every cache entry for functionName,
// lazily: existing entries are left in place but will miss on next
// lookup, matching spec.md §4.5 "invalidation happens when the function
// is re-registered (generation bump)".
func (c *Cache) BumpGeneration(functionName string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generations[functionName]++
}

func (c *Cache) evictOldestLocked() {
	oldest := c.order.Back()
	if oldest == nil {
		return
	}
	key := oldest.Value.(string)
	if entry, ok := c.entries[key]; ok {
		c.removeLocked(key, entry)
	}
}

func (c *Cache) removeLocked(key string, entry *cacheEntry) {
	c.order.Remove(entry.elem)
	delete(c.entries, key)
}

// Len returns the number of live entries, including ones that would
// miss on lookup due to a generation bump.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
