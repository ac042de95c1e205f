package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
)

// fakeRedis 只实现 Get 和 Set，其余方法调用时会因嵌入的 nil 接口而 panic。
type fakeRedis struct {
	redis.Cmdable
	data map[string]string
	ttl  map[string]time.Duration
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, ttl: map[string]time.Duration{}}
}

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	if v, ok := f.data[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = value.(string)
	f.ttl[key] = expiration
	cmd := redis.NewStatusCmd(ctx, "set", key, value)
	cmd.SetVal("OK")
	return cmd
}

func TestRedisCacheRoundTrip(t *testing.T) {
	rdb := newFakeRedis()
	c := NewRedisCache(rdb, time.Minute)
	ctx := context.Background()

	if _, ok, err := c.Get(ctx, "https://example.com"); ok || err != nil {
		t.Fatalf("Get() on empty cache = ok %v, err %v", ok, err)
	}
	if err := c.Set(ctx, "https://example.com", "body text"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	got, ok, err := c.Get(ctx, "https://example.com")
	if err != nil || !ok || got != "body text" {
		t.Fatalf("Get() = %q, %v, %v", got, ok, err)
	}

	key := Key("https://example.com")
	if !strings.HasPrefix(key, keyPrefix) {
		t.Errorf("key %q missing prefix", key)
	}
	if rdb.ttl[key] != time.Minute {
		t.Errorf("ttl = %v, want 1m", rdb.ttl[key])
	}
}

func TestDefaultTTL(t *testing.T) {
	if c := NewRedisCache(newFakeRedis(), 0); c.ttl != 10*time.Minute {
		t.Errorf("ttl = %v, want 10m", c.ttl)
	}
}
