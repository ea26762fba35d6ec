package cache

import (
	"sync"
	"time"
)

// LocalCache 进程内 TTL 缓存（L1 缓存）
//
// 读多写少的场景下用 sync.Map 避免读锁竞争；条目超过容量上限时
// 整体清空而不做 LRU，留言列表这类小缓存重建成本很低。
type LocalCache struct {
	data    sync.Map
	count   int64
	mu      sync.Mutex // 保护 count 和容量清理
	maxSize int
	ttl     time.Duration
	stop    chan struct{}
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// NewLocalCache 创建进程内缓存并启动后台清理
func NewLocalCache(maxSize int, ttl time.Duration) *LocalCache {
	c := &LocalCache{
		maxSize: maxSize,
		ttl:     ttl,
		stop:    make(chan struct{}),
	}
	go c.cleanupLoop()
	return c
}

// Get 获取缓存值，过期条目按未命中处理
func (c *LocalCache) Get(key string) ([]byte, bool) {
	val, ok := c.data.Load(key)
	if !ok {
		return nil, false
	}

	e := val.(*entry)
	if time.Now().After(e.expiresAt) {
		c.Delete(key)
		return nil, false
	}
	return e.value, true
}

// Set 写入缓存值，使用默认 TTL
func (c *LocalCache) Set(key string, value []byte) {
	c.mu.Lock()
	if c.maxSize > 0 && c.count >= int64(c.maxSize) {
		// 容量满时整体清空
		c.data.Range(func(k, _ interface{}) bool {
			c.data.Delete(k)
			return true
		})
		c.count = 0
	}
	if _, loaded := c.data.Load(key); !loaded {
		c.count++
	}
	c.mu.Unlock()

	c.data.Store(key, &entry{
		value:     value,
		expiresAt: time.Now().Add(c.ttl),
	})
}

// Delete 删除缓存条目
func (c *LocalCache) Delete(key string) {
	c.mu.Lock()
	if _, loaded := c.data.Load(key); loaded {
		c.data.Delete(key)
		c.count--
	}
	c.mu.Unlock()
}

// Flush 清空全部缓存条目
func (c *LocalCache) Flush() {
	c.mu.Lock()
	c.data.Range(func(k, _ interface{}) bool {
		c.data.Delete(k)
		return true
	})
	c.count = 0
	c.mu.Unlock()
}

// Close 停止后台清理
func (c *LocalCache) Close() {
	close(c.stop)
}

// cleanupLoop 周期清理过期条目
func (c *LocalCache) cleanupLoop() {
	interval := c.ttl
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			now := time.Now()
			c.data.Range(func(k, v interface{}) bool {
				if now.After(v.(*entry).expiresAt) {
					c.Delete(k.(string))
				}
				return true
			})
		case <-c.stop:
			return
		}
	}
}
