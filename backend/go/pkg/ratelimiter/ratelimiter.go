package ratelimiter

// RateLimiter is the interface for rate limiting.
type RateLimiter interface {
	// Allow returns true if the request is allowed, otherwise returns false.
	Allow() bool
}

// KeyedRateLimiter limits each key (client) independently.
type KeyedRateLimiter interface {
	Allow(key string) bool
}
