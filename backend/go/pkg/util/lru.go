package util

import (
	"container/list"
	"fmt"
	"sync"
	"time"
)

// CacheConfig 用于配置LRU缓存的行为。
type CacheConfig struct {
	// Capacity 是缓存的最大元素数量，必须大于 0。
	Capacity int
	// TTL 是元素自最后一次访问起的存活时间。如果为0，则元素永不过期。
	TTL time.Duration
	// Now 返回当前时间，为空时使用 time.Now。
	Now func() time.Time
}

type entry[K comparable, V any] struct {
	key        K
	value      V
	expiration time.Time
}

// LRUCache 是一个支持泛型、线程安全、按访问时间过期的LRU缓存。
type LRUCache[K comparable, V any] struct {
	capacity int
	ttl      time.Duration
	now      func() time.Time

	mu    sync.Mutex
	ll    *list.List
	items map[K]*list.Element
}

// NewWithConfig 使用指定的配置创建一个LRU缓存实例。
func NewWithConfig[K comparable, V any](config CacheConfig) (*LRUCache[K, V], error) {
	if config.Capacity <= 0 {
		return nil, fmt.Errorf("Capacity 必须大于 0")
	}
	now := config.Now
	if now == nil {
		now = time.Now
	}
	return &LRUCache[K, V]{
		capacity: config.Capacity,
		ttl:      config.TTL,
		now:      now,
		ll:       list.New(),
		items:    make(map[K]*list.Element),
	}, nil
}

// GetOrCreate 返回键对应的值，不存在或已过期时调用 create 生成并写入。
// 查找与写入在同一把锁内完成，并发调用只会创建一次。
func (c *LRUCache[K, V]) GetOrCreate(key K, create func() V) V {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.lookup(key); ok {
		return e.value
	}
	v := create()
	c.insert(key, v)
	return v
}

// lookup 查找未过期的条目并标记为最近使用。调用方必须持有锁。
func (c *LRUCache[K, V]) lookup(key K) (*entry[K, V], bool) {
	el, ok := c.items[key]
	if !ok {
		return nil, false
	}
	e := el.Value.(*entry[K, V])
	if c.ttl > 0 && c.now().After(e.expiration) {
		c.remove(el)
		return nil, false
	}
	c.touch(el)
	return e, true
}

func (c *LRUCache[K, V]) insert(key K, value V) {
	el := c.ll.PushFront(&entry[K, V]{key: key, value: value})
	c.items[key] = el
	c.touch(el)
	for c.ll.Len() > c.capacity {
		c.remove(c.ll.Back())
	}
}

func (c *LRUCache[K, V]) touch(el *list.Element) {
	if c.ttl > 0 {
		el.Value.(*entry[K, V]).expiration = c.now().Add(c.ttl)
	}
	c.ll.MoveToFront(el)
}

func (c *LRUCache[K, V]) remove(el *list.Element) {
	c.ll.Remove(el)
	delete(c.items, el.Value.(*entry[K, V]).key)
}
