package http

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

const (
	limiterIdleTimeout     = time.Hour
	limiterCleanupInterval = 5 * time.Minute
)

type limiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// IPRateLimiter keeps one token bucket per client IP
type IPRateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*limiterEntry
	rps      rate.Limit
	burst    int
	logger   *slog.Logger
}

// NewIPRateLimiter creates a limiter allowing rps requests per second with the given burst per IP
func NewIPRateLimiter(rps float64, burst int, logger *slog.Logger) *IPRateLimiter {
	return &IPRateLimiter{
		limiters: make(map[string]*limiterEntry),
		rps:      rate.Limit(rps),
		burst:    burst,
		logger:   logger,
	}
}

// Middleware rejects requests over the limit with 429 and a Retry-After header
func (l *IPRateLimiter) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		clientIP := c.ClientIP()
		reservation := l.limiterFor(clientIP).Reserve()

		if delay := reservation.Delay(); delay > 0 {
			// Rejected requests give their token back
			reservation.Cancel()
			retryAfter := int(math.Ceil(delay.Seconds()))

			l.logger.DebugContext(c.Request.Context(), "rate limit exceeded",
				slog.String("client_ip", clientIP),
				slog.Int("retry_after", retryAfter),
			)

			c.Header("Retry-After", strconv.Itoa(retryAfter))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}

		c.Next()
	}
}

// Run evicts idle limiters until ctx is done
func (l *IPRateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(limiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			l.evictIdle(now.Add(-limiterIdleTimeout))
		}
	}
}

func (l *IPRateLimiter) limiterFor(ip string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.limiters[ip]
	if !ok {
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.limiters[ip] = entry
	}
	entry.lastAccess = time.Now()

	return entry.limiter
}

func (l *IPRateLimiter) evictIdle(threshold time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for ip, entry := range l.limiters {
		if entry.lastAccess.Before(threshold) {
			delete(l.limiters, ip)
		}
	}
}
