package ratelimiter

import (
	"sync"
	"time"

	"Abridge_1.0/backend/go/pkg/util"
)

// TokenBucket implements the RateLimiter interface using the token bucket algorithm.
// It allows for bursts of requests up to the bucket's capacity.
type TokenBucket struct {
	rate          float64 // tokens per second
	capacity      float64
	tokens        float64
	lastTokenTime time.Time
	now           func() time.Time
	mutex         sync.Mutex
}

// NewTokenBucket creates a new, full TokenBucket.
// rate: the number of tokens to generate per second.
// capacity: the maximum number of tokens (burst size).
func NewTokenBucket(rate float64, capacity int) *TokenBucket {
	return newTokenBucket(rate, capacity, time.Now)
}

func newTokenBucket(rate float64, capacity int, now func() time.Time) *TokenBucket {
	return &TokenBucket{
		rate:          rate,
		capacity:      float64(capacity),
		tokens:        float64(capacity),
		lastTokenTime: now(),
		now:           now,
	}
}

// Allow refills the bucket for the elapsed time and consumes one token if available.
func (tb *TokenBucket) Allow() bool {
	tb.mutex.Lock()
	defer tb.mutex.Unlock()

	now := tb.now()
	if elapsed := now.Sub(tb.lastTokenTime); elapsed > 0 {
		tb.tokens += elapsed.Seconds() * tb.rate
		if tb.tokens > tb.capacity {
			tb.tokens = tb.capacity
		}
		tb.lastTokenTime = now
	}

	if tb.tokens >= 1 {
		tb.tokens--
		return true
	}
	return false
}

// PerClient keeps one TokenBucket per key. Buckets of idle clients are
// dropped after idleTTL, and at most maxClients buckets are kept.
type PerClient struct {
	rate     float64
	capacity int
	now      func() time.Time
	buckets  *util.LRUCache[string, *TokenBucket]
}

// NewPerClient creates a keyed token bucket limiter.
func NewPerClient(rate float64, capacity, maxClients int, idleTTL time.Duration) (*PerClient, error) {
	return newPerClient(rate, capacity, maxClients, idleTTL, time.Now)
}

func newPerClient(rate float64, capacity, maxClients int, idleTTL time.Duration, now func() time.Time) (*PerClient, error) {
	buckets, err := util.NewWithConfig[string, *TokenBucket](util.CacheConfig{
		Capacity: maxClients,
		TTL:      idleTTL,
		Now:      now,
	})
	if err != nil {
		return nil, err
	}
	return &PerClient{rate: rate, capacity: capacity, now: now, buckets: buckets}, nil
}

// Allow consumes a token from key's bucket.
func (p *PerClient) Allow(key string) bool {
	bucket := p.buckets.GetOrCreate(key, func() *TokenBucket {
		return newTokenBucket(p.rate, p.capacity, p.now)
	})
	return bucket.Allow()
}
