package handler

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hpn/hpn-explainer/internal/domain"
	"github.com/hpn/hpn-explainer/internal/ui"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPLANATION CACHE
// ══════════════════════════════════════════════════════════════════════════════
//
// Key: SHA256 of the explain request body
// Value: the serialized explain response, provider answers only
// Entries are purged whenever settings change.
//
// ══════════════════════════════════════════════════════════════════════════════

const (
	// DefaultCacheTTL is the default time-to-live for cache entries.
	DefaultCacheTTL = 5 * time.Minute

	// CleanupInterval is how often the cache cleaner runs.
	CleanupInterval = 1 * time.Minute
)

// CacheEntry represents a cached response with expiration time.
type CacheEntry struct {
	Response  []byte    // Serialized JSON response
	Source    string    // Provider that produced the explanation
	ExpireAt  time.Time // When this entry expires
	CreatedAt time.Time // When this entry was created
}

// IsExpired returns true if the cache entry has expired.
func (e *CacheEntry) IsExpired() bool {
	return time.Now().After(e.ExpireAt)
}

// CacheStats is a point-in-time view of cache usage.
type CacheStats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Entries int   `json:"entries"`
}

// FlashCache is a thread-safe in-memory cache for explain responses.
type FlashCache struct {
	mu      sync.RWMutex
	entries map[string]*CacheEntry
	ttl     time.Duration
	logger  *slog.Logger
	done    chan struct{}
	once    sync.Once

	// generation advances on every Purge.
	generation uint64

	// Stats
	hits   int64
	misses int64
}

// FlashCacheOption is a functional option for configuring FlashCache.
type FlashCacheOption func(*FlashCache)

// WithCacheTTL sets a custom TTL for cache entries.
func WithCacheTTL(ttl time.Duration) FlashCacheOption {
	return func(c *FlashCache) {
		c.ttl = ttl
	}
}

// WithCacheLogger sets a custom logger.
func WithCacheLogger(logger *slog.Logger) FlashCacheOption {
	return func(c *FlashCache) {
		c.logger = logger
	}
}

// NewFlashCache creates a new FlashCache and starts its cleanup goroutine.
// Call Close to stop it.
func NewFlashCache(opts ...FlashCacheOption) *FlashCache {
	c := &FlashCache{
		entries: make(map[string]*CacheEntry),
		ttl:     DefaultCacheTTL,
		logger:  slog.Default(),
		done:    make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	go c.startCleanup()

	return c
}

// HashRequest generates a SHA256 hash of the request body.
// This hash is used as the cache key.
func HashRequest(body []byte) string {
	hash := sha256.Sum256(body)
	return hex.EncodeToString(hash[:])
}

// Get retrieves a cached entry by key.
func (c *FlashCache) Get(key string) (*CacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		c.misses++
		return nil, false
	}

	if entry.IsExpired() {
		delete(c.entries, key)
		c.misses++
		return nil, false
	}

	c.hits++
	return entry, true
}

// Set stores a response in the cache with the configured TTL.
func (c *FlashCache) Set(key, source string, response []byte) {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = &CacheEntry{
		Response:  response,
		Source:    source,
		ExpireAt:  now.Add(c.ttl),
		CreatedAt: now,
	}
}

// SetIfGeneration stores response like Set, unless the cache has been
// purged since gen was read. It reports whether the entry was stored.
func (c *FlashCache) SetIfGeneration(key, source string, response []byte, gen uint64) bool {
	now := time.Now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.generation != gen {
		return false
	}
	c.entries[key] = &CacheEntry{
		Response:  response,
		Source:    source,
		ExpireAt:  now.Add(c.ttl),
		CreatedAt: now,
	}
	return true
}

// Generation returns the purge counter.
func (c *FlashCache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Purge drops every entry. It is called when settings change, since a
// cached explanation reflects the provider and parameters that made it.
// Responses still in flight from before the purge are not stored.
func (c *FlashCache) Purge() {
	c.mu.Lock()
	n := len(c.entries)
	c.entries = make(map[string]*CacheEntry)
	c.generation++
	c.mu.Unlock()

	if n > 0 {
		c.logger.Debug("cache purged", slog.Int("entries", n))
	}
}

// Close stops the cleanup goroutine.
func (c *FlashCache) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *FlashCache) startCleanup() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.done:
			return
		}
	}
}

// cleanup removes all expired entries from the cache.
func (c *FlashCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	expired := 0

	for key, entry := range c.entries {
		if now.After(entry.ExpireAt) {
			delete(c.entries, key)
			expired++
		}
	}

	if expired > 0 {
		c.logger.Debug("cache cleanup",
			slog.Int("expired_entries", expired),
			slog.Int("remaining_entries", len(c.entries)),
		)
	}
}

// Stats returns cache hit/miss statistics.
func (c *FlashCache) Stats() CacheStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return CacheStats{Hits: c.hits, Misses: c.misses, Entries: len(c.entries)}
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE MIDDLEWARE
// ══════════════════════════════════════════════════════════════════════════════

// CacheMiddleware serves repeated explain requests from cache. Only 200
// responses whose SourceHeader names a provider are stored; fallback text is
// never cached, so adding a credential takes effect on the next request.
func CacheMiddleware(cache *FlashCache, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		bodyBytes, err := io.ReadAll(c.Request.Body)
		if err != nil {
			c.Next()
			return
		}
		c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

		cacheKey := HashRequest(bodyBytes)

		if entry, found := cache.Get(cacheKey); found {
			logger.Info("cache hit",
				slog.String("cache_key", cacheKey[:12]+"..."),
				slog.String("source", entry.Source),
				slog.Duration("age", time.Since(entry.CreatedAt)),
			)
			ui.PrintCacheHit(cacheKey, entry.Source)

			c.Set(ctxCacheHit, true)
			c.Set(ctxSource, entry.Source)
			c.Header(SourceHeader, entry.Source)
			c.Data(http.StatusOK, "application/json; charset=utf-8", entry.Response)
			c.Abort()
			return
		}

		generation := cache.Generation()

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           &bytes.Buffer{},
		}
		c.Writer = writer

		c.Next()

		source := writer.Header().Get(SourceHeader)
		if writer.Status() != http.StatusOK || source == "" || source == domain.SourceFallback {
			return
		}

		if !cache.SetIfGeneration(cacheKey, source, writer.body.Bytes(), generation) {
			logger.Debug("settings changed during request, response not cached",
				slog.String("cache_key", cacheKey[:12]+"..."),
			)
			return
		}
		logger.Debug("response cached",
			slog.String("cache_key", cacheKey[:12]+"..."),
			slog.Int("size_bytes", writer.body.Len()),
		)
	}
}

// responseWriter wraps gin.ResponseWriter to capture the response body.
type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

// Write captures the response body while writing to the original writer.
func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}
