package middleware

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/2202030400009/maggic-mock-sub000/internal/response"
)

// RateLimiter is a token bucket per caller. Callers are keyed by token
// subject when authenticated, by client IP otherwise.
type RateLimiter struct {
	mu      sync.Mutex
	callers map[string]*bucket
	burst   float64
	perSec  float64
	now     func() time.Time
}

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

// NewRateLimiter allows burst requests, refilled at burst per interval.
func NewRateLimiter(burst int, interval time.Duration) *RateLimiter {
	return &RateLimiter{
		callers: make(map[string]*bucket),
		burst:   float64(burst),
		perSec:  float64(burst) / interval.Seconds(),
		now:     time.Now,
	}
}

// RunCleanup evicts idle callers every minute until ctx is done.
func (rl *RateLimiter) RunCleanup(ctx context.Context) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.cleanup(3 * time.Minute)
		}
	}
}

// Middleware rejects callers that ran out of tokens with 429.
func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		if claims := GetClaims(c); claims != nil {
			key = "user:" + claims.CurrentUserID()
		}

		if !rl.allow(key) {
			response.AbortFail(c, http.StatusTooManyRequests, response.ErrRateLimitExceeded)
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	b, ok := rl.callers[key]
	if !ok {
		b = &bucket{tokens: rl.burst, lastSeen: now}
		rl.callers[key] = b
	}

	b.tokens += now.Sub(b.lastSeen).Seconds() * rl.perSec
	if b.tokens > rl.burst {
		b.tokens = rl.burst
	}
	b.lastSeen = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (rl *RateLimiter) cleanup(idle time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	for key, b := range rl.callers {
		if now.Sub(b.lastSeen) > idle {
			delete(rl.callers, key)
		}
	}
}
