package translate

import (
	"container/list"
	"sync"
)

// Cache 保存翻译结果，实现需可并发使用。
type Cache interface {
	Get(key string) (string, bool)
	Set(key, value string)
}

// LRU 是容量固定的最近最少使用缓存。
type LRU struct {
	mu       sync.Mutex
	capacity int
	order    *list.List // 队首为最近使用
	items    map[string]*list.Element
}

type lruEntry struct {
	key   string
	value string
}

// NewLRU 创建容量为 capacity 的缓存，capacity 小于 1 时按 1 处理。
func NewLRU(capacity int) *LRU {
	if capacity < 1 {
		capacity = 1
	}
	return &LRU{
		capacity: capacity,
		order:    list.New(),
		items:    make(map[string]*list.Element, capacity),
	}
}

func (c *LRU) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	el, ok := c.items[key]
	if !ok {
		return "", false
	}
	c.order.MoveToFront(el)
	return el.Value.(*lruEntry).value, true
}

func (c *LRU) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if el, ok := c.items[key]; ok {
		el.Value.(*lruEntry).value = value
		c.order.MoveToFront(el)
		return
	}
	c.items[key] = c.order.PushFront(&lruEntry{key: key, value: value})
	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*lruEntry).key)
	}
}

// Len 返回当前条目数。
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}
