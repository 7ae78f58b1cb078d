package middleware

import (
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"
)

// NewRateLimitPerIP limits every client IP to limit req/s with the given
// burst. Limiters live in an expirable LRU, so idle IPs are forgotten
// after ttl and at most cacheSize are kept.
func NewRateLimitPerIP(limit, burst, cacheSize int, ttl time.Duration) gin.HandlerFunc {
	visitors := lru.NewLRU[string, *rate.Limiter](cacheSize, nil, ttl)
	var mu sync.Mutex

	return func(c *gin.Context) {
		host, _, err := net.SplitHostPort(c.Request.RemoteAddr)
		if err != nil {
			host = c.Request.RemoteAddr
		}

		mu.Lock()
		lim, ok := visitors.Get(host)
		if !ok {
			lim = rate.NewLimiter(rate.Limit(limit), burst)
			visitors.Add(host, lim)
		}
		mu.Unlock()

		if !lim.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"message": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}
