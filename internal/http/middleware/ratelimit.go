// README: Per client IP rate limiter; redis_rate shares the budget across instances, MemoryLimiter covers single-process runs.
package middleware

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis_rate/v10"

	"roamgenie/internal/metrics"
)

// Allower is satisfied by *redis_rate.Limiter and MemoryLimiter.
type Allower interface {
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RateLimit allows limit requests per client IP per window. Limiter errors
// let the request through.
func RateLimit(limiter Allower, limit int, window time.Duration) gin.HandlerFunc {
	quota := redis_rate.Limit{Rate: limit, Burst: limit, Period: window}
	return func(c *gin.Context) {
		res, err := limiter.Allow(c.Request.Context(), "roamgenie:ip:"+c.ClientIP(), quota)
		if err != nil {
			logger.Printf("WARNING: rate limiter unavailable, allowing request: %v", err)
			c.Next()
			return
		}

		reset := res.ResetAfter
		if res.Allowed == 0 && res.RetryAfter > 0 {
			reset = res.RetryAfter
		}
		c.Header("RateLimit-Limit", strconv.Itoa(limit))
		c.Header("RateLimit-Remaining", strconv.Itoa(max(res.Remaining, 0)))
		c.Header("RateLimit-Reset", strconv.Itoa(int(reset.Seconds()+0.5)))

		if res.Allowed == 0 {
			c.Header("Retry-After", strconv.Itoa(int(reset.Seconds()+0.5)))
			metrics.RateLimited.Inc()
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests, please try again later."})
			return
		}
		c.Next()
	}
}

// MemoryLimiter is a single-process fixed-window Allower for deployments without redis.
type MemoryLimiter struct {
	mu      sync.Mutex
	windows map[string]*memoryWindow
	now     func() time.Time
}

type memoryWindow struct {
	count int
	reset time.Time
}

func NewMemoryLimiter() *MemoryLimiter {
	return &MemoryLimiter{windows: map[string]*memoryWindow{}, now: time.Now}
}

// Allow counts one request for key. Rate requests fit in each Period.
func (m *MemoryLimiter) Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.now()
	for k, w := range m.windows {
		if !t.Before(w.reset) {
			delete(m.windows, k)
		}
	}
	w, ok := m.windows[key]
	if !ok {
		w = &memoryWindow{reset: t.Add(limit.Period)}
		m.windows[key] = w
	}

	res := &redis_rate.Result{Limit: limit, ResetAfter: w.reset.Sub(t), RetryAfter: -1}
	if w.count >= limit.Rate {
		res.RetryAfter = res.ResetAfter
		return res, nil
	}
	w.count++
	res.Allowed = 1
	res.Remaining = limit.Rate - w.count
	return res, nil
}
