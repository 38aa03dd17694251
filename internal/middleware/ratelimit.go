package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// InMemoryRateLimiter limits requests per key (e.g. IP or user ID).
type InMemoryRateLimiter struct {
	mu       sync.Mutex
	requests map[string][]time.Time
	limit    int
	window   time.Duration
	now      func() time.Time
}

func NewInMemoryRateLimiter(limit int, window time.Duration) *InMemoryRateLimiter {
	return &InMemoryRateLimiter{
		requests: make(map[string][]time.Time),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (r *InMemoryRateLimiter) Allow(key string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	valid := prune(r.requests[key], now.Add(-r.window))
	if len(valid) >= r.limit {
		r.requests[key] = valid
		return false
	}
	r.requests[key] = append(valid, now)
	return true
}

// Run evicts idle keys every minute until ctx is done.
func (r *InMemoryRateLimiter) Run(ctx context.Context) {
	tick := time.NewTicker(time.Minute)
	defer tick.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-tick.C:
			r.cleanup()
		}
	}
}

func (r *InMemoryRateLimiter) cleanup() {
	r.mu.Lock()
	defer r.mu.Unlock()
	cutoff := r.now().Add(-r.window)
	for k, times := range r.requests {
		valid := prune(times, cutoff)
		if len(valid) == 0 {
			delete(r.requests, k)
		} else {
			r.requests[k] = valid
		}
	}
}

func prune(times []time.Time, cutoff time.Time) []time.Time {
	var valid []time.Time
	for _, t := range times {
		if t.After(cutoff) {
			valid = append(valid, t)
		}
	}
	return valid
}

// RateLimit returns a middleware that limits by authenticated user when
// known and by client IP otherwise.
func RateLimit(limiter *InMemoryRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if id := GetUserID(c); id != 0 {
			key = "user:" + strconv.FormatUint(uint64(id), 10)
		}
		if !limiter.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
