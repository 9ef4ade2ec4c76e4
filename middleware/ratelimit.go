package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter holds one token bucket per client IP. Idle buckets expire.
type RateLimiter struct {
	clients *cache.Cache
	rps     rate.Limit
	burst   int
}

func NewRateLimiter(rps float64, burst int) *RateLimiter {
	return &RateLimiter{
		clients: cache.New(10*time.Minute, time.Minute),
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (rl *RateLimiter) limiterFor(ip string) *rate.Limiter {
	if l, ok := rl.clients.Get(ip); ok {
		rl.clients.SetDefault(ip, l)
		return l.(*rate.Limiter)
	}
	l := rate.NewLimiter(rl.rps, rl.burst)
	if err := rl.clients.Add(ip, l, cache.DefaultExpiration); err != nil {
		// Another request for the same IP won the race.
		if existing, ok := rl.clients.Get(ip); ok {
			return existing.(*rate.Limiter)
		}
	}
	return l
}

// Allow reports whether ip may make a request now.
func (rl *RateLimiter) Allow(ip string) bool {
	return rl.limiterFor(ip).Allow()
}

func (rl *RateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":       "Rate limit exceeded",
				"retry_after": (time.Duration(float64(time.Second) / float64(rl.rps))).Seconds(),
			})
			return
		}
		c.Next()
	}
}
