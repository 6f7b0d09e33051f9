// Package handler provides the HTTP surface of the explainer: the explain
// and settings endpoints plus their middleware.
package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/hpn/hpn-explainer/internal/ui"
)

// Context keys shared between handlers and middleware.
const (
	ctxSource   = "explanation_source"
	ctxCacheHit = "cache_hit"
)

// CORSMiddleware allows calls from the browser extension. Origins are
// matched by prefix, so "chrome-extension://" admits every installed
// extension; an empty list allows any origin.
func CORSMiddleware(allowedOrigins ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" && originAllowed(origin, allowedOrigins) {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		}
		c.Header("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept, Origin, Cache-Control, X-Requested-With")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, OPTIONS")
		c.Header("Access-Control-Expose-Headers", SourceHeader)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

func originAllowed(origin string, allowed []string) bool {
	if len(allowed) == 0 {
		return true
	}
	for _, prefix := range allowed {
		if strings.HasPrefix(origin, prefix) {
			return true
		}
	}
	return false
}

// LoggingMiddleware logs one structured line per request, naming where the
// explanation came from when the explain handler ran.
func LoggingMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		latency := time.Since(start)
		source := c.GetString(ctxSource)

		logger.Info("request completed",
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("latency", latency),
			slog.String("client_ip", c.ClientIP()),
			slog.String("source", source),
			slog.Bool("cache_hit", c.GetBool(ctxCacheHit)),
			slog.String("user_agent", c.Request.UserAgent()),
		)

		ui.PrintRequest(c.Request.Method, path, c.Writer.Status(), latency, source)
	}
}

// RecoveryMiddleware returns a middleware that recovers from panics.
// It logs the error and returns a 500 response.
func RecoveryMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				logger.Error("panic recovered",
					slog.Any("error", err),
					slog.String("path", c.Request.URL.Path),
				)

				sendError(c, http.StatusInternalServerError, "server_error", "Internal server error")
			}
		}()

		c.Next()
	}
}

// LimiterIdleTTL is how long a client's bucket is kept after its last request.
const LimiterIdleTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client IP. Buckets idle for
// longer than LimiterIdleTTL are dropped at most once per CleanupInterval.
type RateLimiter struct {
	mu        sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastPrune time.Time
	now       func() time.Time
}

// NewRateLimiter allows perMinute sustained requests per client with the
// given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return &RateLimiter{
		clients:   make(map[string]*clientLimiter),
		limit:     rate.Limit(float64(perMinute) / 60),
		burst:     burst,
		lastPrune: time.Now(),
		now:       time.Now,
	}
}

// Allow reports whether client may make a request now.
func (l *RateLimiter) Allow(client string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.Sub(l.lastPrune) >= CleanupInterval {
		l.prune(now)
	}

	cl, ok := l.clients[client]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.clients[client] = cl
	}
	cl.lastSeen = now

	return cl.limiter.AllowN(now, 1)
}

// Clients returns the number of tracked clients.
func (l *RateLimiter) Clients() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.clients)
}

func (l *RateLimiter) prune(now time.Time) {
	for client, cl := range l.clients {
		if now.Sub(cl.lastSeen) > LimiterIdleTTL {
			delete(l.clients, client)
		}
	}
	l.lastPrune = now
}

// RateLimitMiddleware rejects requests above the client's budget with 429.
func RateLimitMiddleware(limiter *RateLimiter, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.Allow(c.ClientIP()) {
			logger.Warn("rate limit exceeded",
				slog.String("client_ip", c.ClientIP()),
				slog.String("path", c.Request.URL.Path),
			)
			c.Header("Retry-After", "60")
			sendError(c, http.StatusTooManyRequests, "rate_limit_error", "Too many requests. Please slow down.")
			return
		}
		c.Next()
	}
}

// sendError aborts with a JSON error body.
func sendError(c *gin.Context, status int, errType, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"message": message,
			"type":    errType,
		},
	})
}

// maskKey returns a masked version of the API key for display.
// Shows first 4 and last 4 characters.
func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 12 {
		return "***"
	}
	return key[:4] + "..." + key[len(key)-4:]
}
