package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/valpere/pogoda/pkg/metrics"
)

const (
	// RequestIDHeader carries the request ID in both directions.
	RequestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"

	limiterIdleTTL  = time.Hour
	cleanupInterval = 15 * time.Minute
)

// ClientRateLimiter manages rate limits per client key (the remote IP).
type ClientRateLimiter struct {
	limiters    map[string]*rateLimiterEntry
	mu          sync.Mutex
	rate        rate.Limit
	burst       int
	lastCleanup time.Time
	now         func() time.Time
}

// rateLimiterEntry holds a limiter with its last access time for cleanup
type rateLimiterEntry struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

func NewClientRateLimiter(r rate.Limit, b int) *ClientRateLimiter {
	return &ClientRateLimiter{
		limiters:    make(map[string]*rateLimiterEntry),
		rate:        r,
		burst:       b,
		lastCleanup: time.Now(),
		now:         time.Now,
	}
}

func (rl *ClientRateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	now := rl.now()
	if now.Sub(rl.lastCleanup) >= cleanupInterval {
		rl.cleanup(now)
	}

	entry, exists := rl.limiters[key]
	if !exists {
		entry = &rateLimiterEntry{limiter: rate.NewLimiter(rl.rate, rl.burst)}
		rl.limiters[key] = entry
	}
	entry.lastAccess = now
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// cleanup removes limiters idle for longer than limiterIdleTTL. Callers hold mu.
func (rl *ClientRateLimiter) cleanup(now time.Time) {
	cutoff := now.Add(-limiterIdleTTL)
	for key, entry := range rl.limiters {
		if entry.lastAccess.Before(cutoff) {
			delete(rl.limiters, key)
		}
	}
	rl.lastCleanup = now
}

// RequestID reuses the caller's X-Request-ID or assigns a new UUID.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

// GetRequestID returns the ID assigned by RequestID, or "".
func GetRequestID(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// Logging logs one line per request.
func Logging(logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		event := logger.Info()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		} else if status >= http.StatusBadRequest {
			event = logger.Warn()
		}

		event.
			Str("request_id", GetRequestID(c)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Str("client_ip", c.ClientIP()).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	}
}

// Metrics counts requests by matched route and status code.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.IncrementCounter(metrics.HTTPRequestsTotal, route, strconv.Itoa(c.Writer.Status()))
	}
}

// RateLimit rejects requests over the per-client limit with 429.
func RateLimit(rateLimiter *ClientRateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rateLimiter.Allow(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error": "Rate limit exceeded. Please try again later.",
			})
			return
		}
		c.Next()
	}
}
