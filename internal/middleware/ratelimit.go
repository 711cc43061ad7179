package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimiter throttles requests per client IP. Limiters for idle clients
// are dropped after an hour so the map does not grow without bound.
type RateLimiter struct {
	limit rate.Limit
	burst int

	mu      sync.Mutex
	clients map[string]*clientLimiter
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewRateLimiter creates a per-IP limiter from a requests-per-minute
// budget. A non-positive budget disables limiting.
func NewRateLimiter(rpm int) *RateLimiter {
	if rpm <= 0 {
		return nil
	}
	return &RateLimiter{
		limit:   rate.Limit(float64(rpm) / 60.0),
		burst:   rpm,
		clients: make(map[string]*clientLimiter),
	}
}

// Handler returns the gin middleware enforcing the limit.
func (rl *RateLimiter) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":             "rate_limited",
				"error_description": "Too many requests.",
			})
			return
		}
		c.Next()
	}
}

func (rl *RateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	cl, ok := rl.clients[ip]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[ip] = cl
	}
	cl.lastSeen = now

	if len(rl.clients) > 1000 {
		for key, entry := range rl.clients {
			if now.Sub(entry.lastSeen) > time.Hour {
				delete(rl.clients, key)
			}
		}
	}

	return cl.limiter.Allow()
}
