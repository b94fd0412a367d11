package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter is a fixed window limiter keyed by client
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*window
	limit   int
	window  time.Duration
	now     func() time.Time
}

type window struct {
	tokens    int
	lastReset time.Time
}

// NewRateLimiter creates a limiter allowing limit requests per window
func NewRateLimiter(limit int, every time.Duration) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*window),
		limit:   limit,
		window:  every,
		now:     time.Now,
	}
}

// Run evicts idle clients until ctx is done
func (rl *RateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(rl.window * 2)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.evict()
		}
	}
}

func (rl *RateLimiter) evict() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, w := range rl.clients {
		if now.Sub(w.lastReset) > rl.window*2 {
			delete(rl.clients, key)
		}
	}
}

// Allow consumes a token for key and reports whether the request may proceed,
// along with the tokens left in the current window.
func (rl *RateLimiter) Allow(key string) (bool, int) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	w, ok := rl.clients[key]
	if !ok || now.Sub(w.lastReset) >= rl.window {
		rl.clients[key] = &window{tokens: rl.limit - 1, lastReset: now}
		return true, rl.limit - 1
	}
	if w.tokens > 0 {
		w.tokens--
		return true, w.tokens
	}
	return false, 0
}

// RateLimit limits requests per client IP and actor
func RateLimit(limiter *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if actor := c.GetHeader(HeaderActor); actor != "" {
			key = actor + ":" + key
		}

		allowed, remaining := limiter.Allow(key)
		c.Header("X-RateLimit-Limit", strconv.Itoa(limiter.limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if !allowed {
			abortWithError(c, http.StatusTooManyRequests, "ERR_RATE_LIMITED",
				"Too many requests. Please try again later.")
			return
		}
		c.Next()
	}
}
