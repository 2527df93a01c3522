package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter caps requests per client IP with in-memory token
// buckets. Debates are expensive upstream, so the default is
// deliberately low.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[string]*tokenBucket
	requests int
	window   time.Duration
}

type tokenBucket struct {
	tokens     int
	lastRefill time.Time
}

// NewRateLimiter allows requests per window for each client IP.
func NewRateLimiter(requests int, window time.Duration) *RateLimiter {
	rl := &RateLimiter{
		buckets:  make(map[string]*tokenBucket),
		requests: requests,
		window:   window,
	}
	go rl.cleanupExpiredBuckets()
	return rl
}

func (rl *RateLimiter) cleanupExpiredBuckets() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		rl.mu.Lock()
		now := time.Now()
		for key, bucket := range rl.buckets {
			if now.Sub(bucket.lastRefill) > 10*time.Minute {
				delete(rl.buckets, key)
			}
		}
		rl.mu.Unlock()
	}
}

// allow consumes one token for key, refilling the bucket when the
// window has elapsed.
func (rl *RateLimiter) allow(key string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	bucket, ok := rl.buckets[key]
	if !ok {
		bucket = &tokenBucket{tokens: rl.requests, lastRefill: now}
		rl.buckets[key] = bucket
	}

	if elapsed := now.Sub(bucket.lastRefill); elapsed >= rl.window {
		bucket.tokens = rl.requests
		bucket.lastRefill = now
	}

	if bucket.tokens <= 0 {
		return false, rl.window - now.Sub(bucket.lastRefill)
	}
	bucket.tokens--
	return true, 0
}

// Middleware returns the gin handler enforcing the limit.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, retryAfter := rl.allow(c.ClientIP())
		if !ok {
			seconds := int(retryAfter.Seconds()) + 1
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "rate limit exceeded",
				"retry_after": seconds,
			})
			return
		}
		c.Next()
	}
}
