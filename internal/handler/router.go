package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RouterConfig collects what NewRouter wires together. Cache and Limiter
// are optional.
type RouterConfig struct {
	Explainer      Explainer
	Settings       SettingsStore
	Logger         *slog.Logger
	Cache          *FlashCache
	Limiter        *RateLimiter
	Usage          *UsageTracker
	AllowedOrigins []string
}

// NewRouter builds the gin engine with middleware and all routes.
func NewRouter(rc RouterConfig) *gin.Engine {
	if rc.Logger == nil {
		rc.Logger = slog.Default()
	}
	if rc.Usage == nil {
		rc.Usage = NewUsageTracker()
	}

	router := gin.New()
	router.Use(RecoveryMiddleware(rc.Logger))
	router.Use(CORSMiddleware(rc.AllowedOrigins...))
	router.Use(LoggingMiddleware(rc.Logger))

	explain := NewExplainHandler(rc.Explainer, rc.Settings,
		WithLogger(rc.Logger),
		WithUsageTracker(rc.Usage),
	)

	explainChain := []gin.HandlerFunc{}
	if rc.Limiter != nil {
		explainChain = append(explainChain, RateLimitMiddleware(rc.Limiter, rc.Logger))
	}
	if rc.Cache != nil {
		explainChain = append(explainChain, CacheMiddleware(rc.Cache, rc.Logger))
	}
	explainChain = append(explainChain, explain.HandleExplain)

	var purge func()
	if rc.Cache != nil {
		purge = rc.Cache.Purge
	}
	settings := NewSettingsHandler(rc.Settings, rc.Logger, purge)

	v1 := router.Group("/v1")
	{
		v1.POST("/explain", explainChain...)
		v1.GET("/settings", settings.HandleGet)
		v1.PUT("/settings", settings.HandleSave)
		v1.PATCH("/settings/generation", settings.HandleGeneration)
		v1.PUT("/settings/audience", settings.HandleAudience)
	}

	router.GET("/health", func(c *gin.Context) {
		pc := rc.Settings.ProviderConfig()

		mode := "provider"
		if pc.UseMock() {
			mode = "fallback"
		}

		body := gin.H{
			"status":   "healthy",
			"mode":     mode,
			"provider": string(pc.Provider),
			"known":    pc.Provider.IsKnown(),
			"usage":    rc.Usage.Snapshot(),
		}
		if rc.Cache != nil {
			body["cache"] = rc.Cache.Stats()
		}
		c.JSON(http.StatusOK, body)
	})

	return router
}
