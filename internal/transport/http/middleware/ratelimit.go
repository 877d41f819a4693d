package middleware

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "store-rating/internal/transport/http/response"
)

// RateLimit global token bucket
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		if lim.Allow() {
			c.Next()
			return
		}
		resp.Abort(c, resp.CodeTooManyRequests, "too many requests")
	}
}

type ipBucket struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimitPerIP per-IP token buckets, idle ones swept
func RateLimitPerIP(rps rate.Limit, burst int, idleTTL time.Duration) gin.HandlerFunc {
	var (
		mu        sync.Mutex
		buckets   = make(map[string]*ipBucket)
		lastSweep = time.Now()
	)
	allow := func(ip string, now time.Time) bool {
		mu.Lock()
		defer mu.Unlock()
		if idleTTL > 0 && now.Sub(lastSweep) > idleTTL {
			for k, b := range buckets {
				if now.Sub(b.seen) > idleTTL {
					delete(buckets, k)
				}
			}
			lastSweep = now
		}
		b, ok := buckets[ip]
		if !ok {
			b = &ipBucket{lim: rate.NewLimiter(rps, burst)}
			buckets[ip] = b
		}
		b.seen = now
		return b.lim.AllowN(now, 1)
	}
	return func(c *gin.Context) {
		if allow(c.ClientIP(), time.Now()) {
			c.Next()
			return
		}
		resp.Abort(c, resp.CodeTooManyRequests, "too many requests")
	}
}
