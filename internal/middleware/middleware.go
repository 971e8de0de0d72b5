package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter throttles each user to one request per interval, keyed on
// the X-User-ID header.
type RateLimiter struct {
	seen     map[string]time.Time
	mu       sync.Mutex
	interval time.Duration
}

func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{
		seen:     make(map[string]time.Time),
		interval: interval,
	}
}

func (r *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "X-User-ID header required"})
			c.Abort()
			return
		}
		r.mu.Lock()
		last, exists := r.seen[userID]
		if exists && time.Since(last) < r.interval {
			r.mu.Unlock()
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			c.Abort()
			return
		}
		r.seen[userID] = time.Now()
		r.mu.Unlock()
		c.Next()
	}
}
