// Package cache 缓存从网页抽取出的正文，避免重复抓取同一网址。
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "abridge:content:"

// RedisCache 把正文按网址的摘要值存入 Redis，并设置过期时间。
type RedisCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

// NewRedisCache 创建 RedisCache。ttl 不大于 0 时使用 10 分钟。
func NewRedisCache(rdb redis.Cmdable, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisCache{rdb: rdb, ttl: ttl}
}

// Key 返回网址对应的缓存键。
func Key(url string) string {
	sum := sha256.Sum256([]byte(url))
	return keyPrefix + hex.EncodeToString(sum[:])
}

// Get 读取缓存。未命中时返回 ok=false 且 err 为 nil。
func (c *RedisCache) Get(ctx context.Context, url string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, Key(url)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

// Set 写入缓存。
func (c *RedisCache) Set(ctx context.Context, url, content string) error {
	return c.rdb.Set(ctx, Key(url), content, c.ttl).Err()
}
