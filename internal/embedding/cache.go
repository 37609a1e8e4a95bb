// File path: internal/embedding/cache.go
package embedding

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sync"

	"github.com/nicodishanthj/semmatch/internal/common"
)

const DefaultCacheSize = 1024

// VectorCache memoizes text-to-vector lookups behind a bounded LRU.
// Insertion and eviction are serialized; the compute function runs
// outside the lock, so concurrent misses on the same key may both
// compute and both store the same value.
type VectorCache struct {
	mu       sync.Mutex
	capacity int
	disabled bool
	items    map[string]*list.Element
	ll       *list.List
}

type cacheEntry struct {
	key   string
	value []float32
}

// NewVectorCache constructs a cache holding at most capacity vectors.
func NewVectorCache(capacity int) (*VectorCache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("embedding: cache capacity %d must be positive: %w",
			capacity, common.ErrConfiguration)
	}
	return &VectorCache{
		capacity: capacity,
		items:    make(map[string]*list.Element, capacity),
		ll:       list.New(),
	}, nil
}

// NewDisabledCache constructs a pass-through cache: GetOrCompute always
// invokes the compute function and stores nothing.
func NewDisabledCache() *VectorCache {
	return &VectorCache{disabled: true}
}

// Fingerprint derives the cache key for a text.
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}

// GetOrCompute returns the cached vector for key, invoking compute on a
// miss and caching the result.
func (c *VectorCache) GetOrCompute(key string, compute func() ([]float32, error)) ([]float32, error) {
	if c.disabled {
		return compute()
	}
	c.mu.Lock()
	if elem, ok := c.items[key]; ok {
		c.ll.MoveToFront(elem)
		value := elem.Value.(cacheEntry).value
		c.mu.Unlock()
		return value, nil
	}
	c.mu.Unlock()

	value, err := compute()
	if err != nil {
		return nil, err
	}
	c.put(key, value)
	return value, nil
}

func (c *VectorCache) put(key string, value []float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.items[key]; ok {
		elem.Value = cacheEntry{key: key, value: value}
		c.ll.MoveToFront(elem)
		return
	}
	elem := c.ll.PushFront(cacheEntry{key: key, value: value})
	c.items[key] = elem
	if c.ll.Len() > c.capacity {
		tail := c.ll.Back()
		if tail != nil {
			c.ll.Remove(tail)
			delete(c.items, tail.Value.(cacheEntry).key)
		}
	}
}

// Len reports the number of cached vectors.
func (c *VectorCache) Len() int {
	if c.disabled {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ll.Len()
}
