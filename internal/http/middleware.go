package http

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/schoolhub/announcement-service/internal/helper"
	"github.com/schoolhub/announcement-service/internal/log"
	"github.com/schoolhub/announcement-service/internal/metrics"
	"github.com/schoolhub/announcement-service/internal/repo"
)

const RequestIDKey = "X-Request-ID"

// RequestID takes the caller's X-Request-ID or mints one, and echoes it back.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDKey)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(RequestIDKey, id)
		c.Writer.Header().Set(RequestIDKey, id)
		c.Next()
	}
}

// AccessLog writes one zap line per request, with Datadog correlation when a
// span is in the request context.
func AccessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.WithDD(c.Request.Context(), log.L()).Info("http",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("dur", time.Since(start)),
			zap.String("request_id", c.GetString(RequestIDKey)),
		)
	}
}

// Metrics feeds the prometheus vectors; route label is the template path so
// cardinality stays bounded.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		metrics.InFlight.Inc()
		start := time.Now()
		c.Next()
		metrics.InFlight.Dec()
		metrics.ReqDuration.WithLabelValues(route, c.Request.Method).Observe(time.Since(start).Seconds())
		metrics.RequestsTotal.WithLabelValues(route, c.Request.Method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}

type bucket struct {
	tokens  int
	updated time.Time
}

// RateLimiter is the in-memory fallback limiter (per client IP, fixed window).
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	rate    int
	window  time.Duration
}

func NewRateLimiter(rate int, window time.Duration) *RateLimiter {
	return &RateLimiter{buckets: make(map[string]*bucket), rate: rate, window: window}
}

func (rl *RateLimiter) Allow(ip string) bool {
	now := time.Now()
	rl.mu.Lock()
	defer rl.mu.Unlock()
	b, ok := rl.buckets[ip]
	if !ok || now.Sub(b.updated) > rl.window {
		rl.buckets[ip] = &bucket{tokens: 1, updated: now}
		return true
	}
	if b.tokens < rl.rate {
		b.tokens++
		b.updated = now
		return true
	}
	return false
}

func ClientIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		ip = "unknown"
	}
	host, _, err := net.SplitHostPort(ip)
	if err == nil && host != "" {
		return host
	}
	return ip
}

// RateLimitWrites limits the mutating announcement routes per client IP.
// With Redis configured the window is shared across replicas (INCR+EXPIRE on
// a per-minute key); otherwise the in-memory limiter covers a single process.
// perMin <= 0 disables limiting. Redis errors fail open.
func RateLimitWrites(rds *repo.Redis, rl *RateLimiter, perMin int) gin.HandlerFunc {
	return func(c *gin.Context) {
		if perMin <= 0 {
			c.Next()
			return
		}
		ip := ClientIP(c)
		if rds != nil {
			key := "rl:" + helper.Hash8(ip) + ":" + time.Now().Format("200601021504")
			n, err := rds.C.Incr(c.Request.Context(), key).Result()
			if err == nil {
				if n == 1 {
					rds.C.Expire(c.Request.Context(), key, time.Minute)
				}
				if n > int64(perMin) {
					c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
					return
				}
			}
			c.Next()
			return
		}
		if !rl.Allow(ip) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests"})
			return
		}
		c.Next()
	}
}
