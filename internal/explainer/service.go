// Package explainer dispatches one explanation request to the configured
// provider and degrades to the offline fallback when that is not possible.
package explainer

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hpn/hpn-explainer/internal/adapter"
	"github.com/hpn/hpn-explainer/internal/domain"
	"github.com/hpn/hpn-explainer/internal/fallback"
	"github.com/hpn/hpn-explainer/internal/prompt"
)

// Service turns a post into an explanation. It is safe for concurrent use;
// configuration is passed per call and never stored.
type Service struct {
	adapters map[domain.ProviderType]adapter.Adapter
	logger   *slog.Logger
}

// Option configures a Service.
type Option func(*settings)

type settings struct {
	logger     *slog.Logger
	httpClient *http.Client
	timeout    time.Duration
	overrides  map[domain.ProviderType]adapter.Adapter
}

// WithLogger sets the logger used for provider failure diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		s.logger = logger
	}
}

// WithHTTPClient sets the HTTP client shared by the built-in adapters.
func WithHTTPClient(client *http.Client) Option {
	return func(s *settings) {
		s.httpClient = client
	}
}

// WithTimeout bounds each provider call when no HTTP client is supplied.
func WithTimeout(timeout time.Duration) Option {
	return func(s *settings) {
		s.timeout = timeout
	}
}

// WithAdapter registers a for provider, replacing any built-in adapter.
func WithAdapter(provider domain.ProviderType, a adapter.Adapter) Option {
	return func(s *settings) {
		s.overrides[provider] = a
	}
}

// New creates a Service with an adapter registered for every known provider.
func New(opts ...Option) *Service {
	s := settings{
		logger:    slog.Default(),
		timeout:   adapter.DefaultTimeout,
		overrides: make(map[domain.ProviderType]adapter.Adapter),
	}
	for _, opt := range opts {
		opt(&s)
	}

	adapterOpts := []adapter.Option{adapter.WithTimeout(s.timeout)}
	if s.httpClient != nil {
		adapterOpts = append(adapterOpts, adapter.WithHTTPClient(s.httpClient))
	}

	registry := map[domain.ProviderType]adapter.Adapter{
		domain.ProviderOpenAI:    adapter.NewOpenAIAdapter(adapterOpts...),
		domain.ProviderAnthropic: adapter.NewAnthropicAdapter(adapterOpts...),
		domain.ProviderDeepSeek:  adapter.NewDeepSeekAdapter(adapterOpts...),
		domain.ProviderGoogle:    adapter.NewGeminiAdapter(adapterOpts...),
		domain.ProviderCustom:    adapter.NewCustomAdapter(adapterOpts...),
	}
	for provider, a := range s.overrides {
		registry[provider] = a
	}

	return &Service{
		adapters: registry,
		logger:   s.logger,
	}
}

// Explain produces an explanation of post for level using cfg. It always
// returns text: when cfg has no credential, names no registered provider, or
// the provider call fails, the text comes from the fallback generator and
// Result.Reason says why. At most one provider request is made.
func (s *Service) Explain(ctx context.Context, post domain.PostData, level domain.Level, cfg domain.ProviderConfig) domain.Result {
	if cfg.UseMock() {
		return fallbackResult(post, level, domain.ReasonNoCredential, nil)
	}

	text := prompt.Build(post, level, cfg.CustomAudience)

	a, ok := s.adapters[cfg.Provider]
	if !ok {
		s.logger.Warn("unknown provider, using fallback explanation",
			slog.String("provider", string(cfg.Provider)),
		)
		return fallbackResult(post, level, domain.ReasonUnknownProvider, nil)
	}

	start := time.Now()
	explanation, err := a.Call(ctx, text, level, cfg)
	if err != nil {
		s.logger.Warn("provider call failed, using fallback explanation",
			slog.String("provider", a.Name()),
			slog.String("kind", string(adapter.KindOf(err))),
			slog.Int("status", adapter.StatusCodeOf(err)),
			slog.Duration("duration", time.Since(start)),
			slog.Any("error", err),
		)
		result := fallbackResult(post, level, domain.ReasonProviderFailure, err)
		result.Prompt = text
		return result
	}

	s.logger.Debug("provider call succeeded",
		slog.String("provider", a.Name()),
		slog.Duration("duration", time.Since(start)),
		slog.Int("explanation_len", len(explanation)),
	)

	return domain.Result{
		Text:   explanation,
		Source: a.Name(),
		Prompt: text,
	}
}

// Providers lists the provider types with a registered adapter.
func (s *Service) Providers() []domain.ProviderType {
	providers := make([]domain.ProviderType, 0, len(s.adapters))
	for _, p := range domain.KnownProviders {
		if _, ok := s.adapters[p]; ok {
			providers = append(providers, p)
		}
	}
	return providers
}

func fallbackResult(post domain.PostData, level domain.Level, reason domain.FallbackReason, err error) domain.Result {
	return domain.Result{
		Text:   fallback.Generate(post, level),
		Source: domain.SourceFallback,
		Reason: reason,
		Err:    err,
	}
}
