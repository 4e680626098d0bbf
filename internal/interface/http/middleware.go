package http

import (
	"log/slog"
	"math"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/glucobot/internal/infra/config"
)

func errorHandlingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		httpErr := asHTTPError(c.Errors.Last().Err)
		message := httpErr.Message
		if message == "" {
			message = httpErr.Error()
		}

		level := slog.LevelWarn
		if httpErr.Status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(c.Request.Context(), level, "request failed", "code", httpErr.Code, "status", httpErr.Status, "path", c.Request.URL.Path, "error", httpErr.Err)

		c.JSON(httpErr.Status, gin.H{
			"error": gin.H{
				"code":    httpErr.Code,
				"message": message,
			},
		})
	}
}

// rateLimitMiddleware throttles per client IP with a token bucket.
func rateLimitMiddleware(cfg config.RateLimitConfig, logger *slog.Logger) gin.HandlerFunc {
	if !cfg.Enabled || cfg.RequestsPerMinute <= 0 {
		return func(c *gin.Context) { c.Next() }
	}

	limiter := newTokenBuckets(cfg, time.Now)
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if limiter.allow(ip) {
			c.Next()
			return
		}
		logger.Warn("rate limit exceeded", "ip", ip, "path", c.Request.URL.Path)
		abortWithError(c, NewHTTPError(http.StatusTooManyRequests, "rate_limit_exceeded", "too many requests", nil))
	}
}

type tokenBuckets struct {
	mu       sync.Mutex
	buckets  map[string]*bucket
	perMin   float64
	capacity float64
	idleTTL  time.Duration
	now      func() time.Time
	lastGC   time.Time
}

type bucket struct {
	tokens float64
	seen   time.Time
}

func newTokenBuckets(cfg config.RateLimitConfig, now func() time.Time) *tokenBuckets {
	capacity := float64(cfg.Burst)
	if capacity < 1 {
		capacity = 1
	}
	return &tokenBuckets{
		buckets:  make(map[string]*bucket),
		perMin:   float64(cfg.RequestsPerMinute),
		capacity: capacity,
		idleTTL:  5 * time.Minute,
		now:      now,
	}
}

func (l *tokenBuckets) allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := l.now()
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{tokens: l.capacity, seen: now}
		l.buckets[key] = b
	} else if elapsed := now.Sub(b.seen).Minutes(); elapsed > 0 {
		b.tokens = math.Min(l.capacity, b.tokens+elapsed*l.perMin)
		b.seen = now
	}
	if now.Sub(l.lastGC) > l.idleTTL {
		l.evictIdle(now)
	}
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

func (l *tokenBuckets) evictIdle(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.seen) > l.idleTTL {
			delete(l.buckets, key)
		}
	}
	l.lastGC = now
}
