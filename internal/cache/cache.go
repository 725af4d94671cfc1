// Package cache holds a bounded least-recently-used map.
package cache

import (
	"container/list"
	"sync"
)

// LRU is safe for concurrent use. Putting past the capacity evicts the
// entry that was used least recently.
type LRU[K comparable, V any] struct {
	mu        sync.Mutex
	size      int
	evictList *list.List
	items     map[K]*list.Element
}

type entry[K comparable, V any] struct {
	key   K
	value V
}

// NewLRU returns a cache holding at most size entries. Sizes below one are
// raised to one.
func NewLRU[K comparable, V any](size int) *LRU[K, V] {
	return &LRU[K, V]{
		size:      max(size, 1),
		evictList: list.New(),
		items:     make(map[K]*list.Element),
	}
}

func (c *LRU[K, V]) Get(key K) (value V, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.items[key]; hit {
		c.evictList.MoveToFront(ele)
		return ele.Value.(*entry[K, V]).value, true
	}
	return value, false
}

func (c *LRU[K, V]) Put(key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if ele, hit := c.items[key]; hit {
		c.evictList.MoveToFront(ele)
		ele.Value.(*entry[K, V]).value = value
		return
	}

	c.items[key] = c.evictList.PushFront(&entry[K, V]{key, value})
	if c.evictList.Len() > c.size {
		c.removeOldest()
	}
}

func (c *LRU[K, V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evictList.Len()
}

func (c *LRU[K, V]) removeOldest() {
	if ele := c.evictList.Back(); ele != nil {
		c.evictList.Remove(ele)
		delete(c.items, ele.Value.(*entry[K, V]).key)
	}
}
