// Package cache provides a small in-memory LRU with TTL, used to avoid
// recomputing read-view replies between mutations.
package cache

import (
	"container/list"
	"sync"
	"time"
)

// LRU is a size-bounded cache with per-entry TTL and least-recently-used
// eviction. Safe for concurrent use.
type LRU[T any] struct {
	mu      sync.Mutex
	maxSize int
	ttl     time.Duration
	items   map[string]*list.Element
	lru     *list.List
}

type item[T any] struct {
	key       string
	data      T
	expiresAt time.Time
}

func NewLRU[T any](maxSize int, ttl time.Duration) *LRU[T] {
	return &LRU[T]{
		maxSize: maxSize,
		ttl:     ttl,
		items:   make(map[string]*list.Element),
		lru:     list.New(),
	}
}

func (c *LRU[T]) Get(key string) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T
	elem, exists := c.items[key]
	if !exists {
		return zero, false
	}

	it := elem.Value.(*item[T])
	if time.Now().After(it.expiresAt) {
		c.removeElement(elem)
		return zero, false
	}

	c.lru.MoveToFront(elem)
	return it.data, true
}

func (c *LRU[T]) Set(key string, data T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	it := &item[T]{key: key, data: data, expiresAt: time.Now().Add(c.ttl)}

	if elem, exists := c.items[key]; exists {
		elem.Value = it
		c.lru.MoveToFront(elem)
		return
	}

	elem := c.lru.PushFront(it)
	c.items[key] = elem

	if c.lru.Len() > c.maxSize {
		if oldest := c.lru.Back(); oldest != nil {
			c.removeElement(oldest)
		}
	}
}

func (c *LRU[T]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if elem, exists := c.items[key]; exists {
		c.removeElement(elem)
	}
}

func (c *LRU[T]) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}

// CleanExpired removes all expired entries and reports how many.
func (c *LRU[T]) CleanExpired() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	var toRemove []*list.Element
	for elem := c.lru.Front(); elem != nil; elem = elem.Next() {
		if now.After(elem.Value.(*item[T]).expiresAt) {
			toRemove = append(toRemove, elem)
		}
	}
	for _, elem := range toRemove {
		c.removeElement(elem)
	}
	return len(toRemove)
}

func (c *LRU[T]) removeElement(elem *list.Element) {
	it := elem.Value.(*item[T])
	delete(c.items, it.key)
	c.lru.Remove(elem)
}
