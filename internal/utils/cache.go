package utils

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/patrickmn/go-cache"
)

// Cooldown 基于 go-cache 的按 key 冷却标记
type Cooldown struct {
	c   *cache.Cache
	ttl time.Duration
}

// NewCooldown ttl <= 0 时冷却永远不会生效
func NewCooldown(ttl time.Duration) *Cooldown {
	cleanup := 2 * ttl
	if cleanup <= 0 {
		cleanup = time.Minute
	}
	return &Cooldown{c: cache.New(ttl, cleanup), ttl: ttl}
}

// Arm 开始冷却
func (d *Cooldown) Arm(key string) {
	if d.ttl <= 0 {
		return
	}
	d.c.Set(key, struct{}{}, d.ttl)
}

// Active 是否仍在冷却中
func (d *Cooldown) Active(key string) bool {
	_, ok := d.c.Get(key)
	return ok
}

// CacheItem 包装实际的数据，增加过期时间
type CacheItem[T any] struct {
	Value     T
	ExpiredAt time.Time
}

// SearchCache 带过期时间的 LRU 缓存
type SearchCache[T any] struct {
	storage *lru.Cache[string, CacheItem[T]]
	ttl     time.Duration
}

// NewSearchCache 初始化，size 是最大缓存条数（如 1000），ttl 是数据有效期（如 1小时）
func NewSearchCache[T any](size int, ttl time.Duration) *SearchCache[T] {
	if size <= 0 {
		size = 128
	}
	// lru.New 是线程安全的
	c, _ := lru.New[string, CacheItem[T]](size)
	return &SearchCache[T]{
		storage: c,
		ttl:     ttl,
	}
}

// Set 写入（LRU 中 Add 会自动处理更新）
func (c *SearchCache[T]) Set(key string, value T) {
	if c.ttl <= 0 {
		return
	}
	item := CacheItem[T]{
		Value:     value,
		ExpiredAt: time.Now().Add(c.ttl),
	}
	c.storage.Add(key, item)
}

// Get 读取（带过期检查）
func (c *SearchCache[T]) Get(key string) (T, bool) {
	var zero T // 定义泛型零值
	item, ok := c.storage.Get(key)
	if !ok {
		return zero, false
	}

	// 检查是否过期
	if time.Now().After(item.ExpiredAt) {
		c.storage.Remove(key) // 过期删除
		return zero, false
	}

	return item.Value, true
}
