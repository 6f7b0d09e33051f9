// Package main is the entry point for the hpn-explainer server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hpn/hpn-explainer/internal/config"
	"github.com/hpn/hpn-explainer/internal/explainer"
	"github.com/hpn/hpn-explainer/internal/handler"
	"github.com/hpn/hpn-explainer/internal/security"
	"github.com/hpn/hpn-explainer/internal/ui"
)

func main() {
	configPath := flag.String("config", defaultConfigPath(), "path to the YAML settings file")
	flag.Parse()

	// =========================================================================
	// 1. Load configuration
	// =========================================================================
	holder, err := config.NewHolder(*configPath)
	if err != nil {
		slog.Error("failed to load configuration",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}
	cfg := holder.Config()

	// =========================================================================
	// 2. Setup structured logger
	// =========================================================================
	logger := setupLogger(cfg.Logging)

	pc := holder.ProviderConfig()
	logger.Info("configuration loaded",
		slog.String("path", holder.Path()),
		slog.String("addr", cfg.Server.Addr()),
		slog.String("provider", string(pc.Provider)),
		slog.Bool("use_mock", pc.UseMock()),
	)

	// =========================================================================
	// 3. Build the explainer and HTTP surface
	// =========================================================================
	if strings.ToLower(cfg.Logging.Level) != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	app := newApp(holder, logger)
	defer app.close()

	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      app.router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
	}

	// =========================================================================
	// 4. Start HTTP server with graceful shutdown
	// =========================================================================
	ui.PrintBanner()
	ui.PrintStartupInfo(srv.Addr, string(pc.Provider), pc.UseMock())
	ui.PrintInfo("Settings file: " + holder.Path())

	go func() {
		logger.Info("server starting", slog.String("address", srv.Addr))

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("shutdown signal received", slog.String("signal", sig.String()))
	ui.PrintShutdown()

	shutdownTimeout := time.Duration(cfg.Server.ShutdownTimeoutSeconds) * time.Second
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", slog.String("error", err.Error()))
		return
	}

	logger.Info("server stopped gracefully")
	ui.PrintGoodbye()
}

// app is the wired HTTP surface.
type app struct {
	router *gin.Engine
	cache  *handler.FlashCache
}

// newApp wires the dispatcher, cache and limiter from the holder's current
// configuration. Extra explainer options are applied after the defaults.
func newApp(holder *config.Holder, logger *slog.Logger, opts ...explainer.Option) *app {
	cfg := holder.Config()

	svcOpts := []explainer.Option{
		explainer.WithLogger(logger),
		explainer.WithTimeout(cfg.Provider.Timeout()),
	}
	svc := explainer.New(append(svcOpts, opts...)...)

	var cache *handler.FlashCache
	if ttl := cfg.Limits.CacheTTL(); ttl > 0 {
		cache = handler.NewFlashCache(
			handler.WithCacheTTL(ttl),
			handler.WithCacheLogger(logger),
		)
	}

	var limiter *handler.RateLimiter
	if cfg.Limits.RequestsPerMinute > 0 {
		limiter = handler.NewRateLimiter(cfg.Limits.RequestsPerMinute, cfg.Limits.Burst)
	}

	router := handler.NewRouter(handler.RouterConfig{
		Explainer:      svc,
		Settings:       holder,
		Logger:         logger,
		Cache:          cache,
		Limiter:        limiter,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	})

	return &app{router: router, cache: cache}
}

func (a *app) close() {
	if a.cache != nil {
		a.cache.Close()
	}
}

// defaultConfigPath honours EXPLAINER_CONFIG, then ~/.hpn-explainer/config.yaml.
func defaultConfigPath() string {
	if p := os.Getenv("EXPLAINER_CONFIG"); p != "" {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".hpn-explainer", "config.yaml")
}

// setupLogger creates a structured logger from config. Every handler is
// wrapped so provider credentials never reach the output.
func setupLogger(cfg config.LoggingConfig) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: parseLevel(cfg.Level),
	}

	var inner slog.Handler
	if strings.EqualFold(cfg.Format, "text") {
		inner = slog.NewTextHandler(os.Stdout, opts)
	} else {
		inner = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(security.NewRedactedHandler(inner))
	slog.SetDefault(logger)

	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
