// Package domain contains the core business entities and value objects.
// These structs are framework-agnostic and represent the heart of the application.
package domain

import "strings"

// ProviderType represents the language-model API an explanation is requested from.
type ProviderType string

const (
	ProviderOpenAI    ProviderType = "openai"
	ProviderAnthropic ProviderType = "anthropic"
	ProviderDeepSeek  ProviderType = "deepseek"
	ProviderGoogle    ProviderType = "google"
	ProviderCustom    ProviderType = "custom"
)

// KnownProviders lists every provider the dispatcher has an adapter for.
var KnownProviders = []ProviderType{
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderDeepSeek,
	ProviderGoogle,
	ProviderCustom,
}

// IsKnown reports whether p names a supported provider.
func (p ProviderType) IsKnown() bool {
	for _, known := range KnownProviders {
		if p == known {
			return true
		}
	}
	return false
}

// Generation bounds and defaults.
const (
	DefaultTemperature     = 0.3
	MinTemperature         = 0.0
	MaxTemperature         = 1.0
	DefaultMaxOutputTokens = 325
	MinMaxOutputTokens     = 1
	MaxMaxOutputTokens     = 4096
)

// ProviderConfig is an immutable snapshot of everything an adapter needs to
// perform one explanation request.
type ProviderConfig struct {
	// Provider selects the adapter.
	Provider ProviderType `json:"provider"`

	// Credential is the opaque API secret. Empty forces fallback mode.
	Credential string `json:"-"`

	// Endpoint is the user-supplied URL, only meaningful for ProviderCustom.
	Endpoint string `json:"endpoint,omitempty"`

	// Model overrides the per-provider default model when non-empty.
	Model string `json:"model,omitempty"`

	// Temperature controls sampling randomness.
	Temperature float64 `json:"temperature"`

	// MaxOutputTokens caps the generated explanation length.
	MaxOutputTokens int `json:"max_output_tokens"`

	// CustomAudience is the free-text audience used for LevelCustom.
	CustomAudience string `json:"custom_audience,omitempty"`
}

// UseMock reports whether explanations must come from the offline fallback.
// It is derived from the credential on every call so it cannot go stale.
func (c ProviderConfig) UseMock() bool {
	return strings.TrimSpace(c.Credential) == ""
}

// ModelOr returns the configured model override, or def when none is set.
func (c ProviderConfig) ModelOr(def string) string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	return def
}

// DefaultProviderConfig returns a config with every field at its default.
func DefaultProviderConfig() ProviderConfig {
	return ProviderConfig{
		Provider:        ProviderOpenAI,
		Temperature:     DefaultTemperature,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}
