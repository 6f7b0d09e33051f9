// Package config loads the explainer's configuration with Viper and holds the
// live snapshot the dispatcher reads on every request.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/hpn/hpn-explainer/internal/domain"
)

// Configuration holds all application configuration values.
type Configuration struct {
	// Server configuration
	Server ServerConfig `json:"server" mapstructure:"server" yaml:"server"`

	// Provider selects the language-model API and its credential.
	Provider ProviderConfig `json:"provider" mapstructure:"provider" yaml:"provider"`

	// Generation parameters sent with every provider request.
	Generation GenerationConfig `json:"generation" mapstructure:"generation" yaml:"generation"`

	// Audience holds the description used for the custom level.
	Audience AudienceConfig `json:"audience" mapstructure:"audience" yaml:"audience"`

	// Limits configures rate limiting and response caching.
	Limits LimitsConfig `json:"limits" mapstructure:"limits" yaml:"limits"`

	// Logging configuration
	Logging LoggingConfig `json:"logging" mapstructure:"logging" yaml:"logging"`
}

// ServerConfig holds server-specific configuration.
type ServerConfig struct {
	// Host is the server bind address.
	Host string `json:"host" mapstructure:"host" yaml:"host"`

	// Port is the server port number.
	Port int `json:"port" mapstructure:"port" yaml:"port"`

	// ReadTimeoutSeconds is the maximum duration for reading the entire request.
	ReadTimeoutSeconds int `json:"read_timeout_seconds" mapstructure:"read_timeout_seconds" yaml:"read_timeout_seconds"`

	// WriteTimeoutSeconds is the maximum duration before timing out writes of the response.
	WriteTimeoutSeconds int `json:"write_timeout_seconds" mapstructure:"write_timeout_seconds" yaml:"write_timeout_seconds"`

	// ShutdownTimeoutSeconds is the maximum duration to wait for active connections to finish.
	ShutdownTimeoutSeconds int `json:"shutdown_timeout_seconds" mapstructure:"shutdown_timeout_seconds" yaml:"shutdown_timeout_seconds"`

	// AllowedOrigins are CORS origin prefixes. Empty allows any origin.
	AllowedOrigins []string `json:"allowed_origins" mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// ProviderConfig is the persisted provider selection.
type ProviderConfig struct {
	// Name is one of openai, anthropic, deepseek, google, custom. Any other
	// value is accepted and served by the fallback generator.
	Name string `json:"name" mapstructure:"name" yaml:"name"`

	// APIKey is the provider credential. Empty selects the fallback generator.
	APIKey string `json:"-" mapstructure:"api_key" yaml:"api_key"`

	// Endpoint is the request URL for the custom provider.
	Endpoint string `json:"endpoint" mapstructure:"endpoint" yaml:"endpoint"`

	// Model overrides the provider's default model.
	Model string `json:"model" mapstructure:"model" yaml:"model"`

	// TimeoutSeconds bounds a single provider request.
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// GenerationConfig holds the sampling parameters.
type GenerationConfig struct {
	Temperature     float64 `json:"temperature" mapstructure:"temperature" yaml:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens" mapstructure:"max_output_tokens" yaml:"max_output_tokens"`
}

// AudienceConfig holds the free-text audience for the custom level.
type AudienceConfig struct {
	Custom string `json:"custom" mapstructure:"custom" yaml:"custom"`
}

// LimitsConfig holds rate limit and cache settings for the HTTP surface.
type LimitsConfig struct {
	// RequestsPerMinute is the sustained explain rate. Zero disables limiting.
	RequestsPerMinute int `json:"requests_per_minute" mapstructure:"requests_per_minute" yaml:"requests_per_minute"`

	// Burst is the number of requests allowed above the sustained rate.
	Burst int `json:"burst" mapstructure:"burst" yaml:"burst"`

	// CacheTTLSeconds is how long a provider explanation is reused. Zero disables caching.
	CacheTTLSeconds int `json:"cache_ttl_seconds" mapstructure:"cache_ttl_seconds" yaml:"cache_ttl_seconds"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the minimum log level (debug, info, warn, error).
	Level string `json:"level" mapstructure:"level" yaml:"level"`

	// Format is the log format (json, text).
	Format string `json:"format" mapstructure:"format" yaml:"format"`
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Timeout returns the provider request timeout.
func (p ProviderConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutSeconds) * time.Second
}

// CacheTTL returns the explanation cache lifetime.
func (l LimitsConfig) CacheTTL() time.Duration {
	return time.Duration(l.CacheTTLSeconds) * time.Second
}

// Validate validates the configuration and returns an error if required fields are missing.
func (c *Configuration) Validate() error {
	var validationErrors []string

	// Validate server configuration
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		validationErrors = append(validationErrors, "server.port must be between 1 and 65535")
	}

	if c.Provider.TimeoutSeconds <= 0 {
		validationErrors = append(validationErrors, "provider.timeout_seconds must be positive")
	}

	// Validate generation bounds
	if err := checkTemperature(c.Generation.Temperature); err != nil {
		validationErrors = append(validationErrors, err.Error())
	}
	if err := checkMaxOutputTokens(c.Generation.MaxOutputTokens); err != nil {
		validationErrors = append(validationErrors, err.Error())
	}

	if c.Limits.RequestsPerMinute < 0 {
		validationErrors = append(validationErrors, "limits.requests_per_minute cannot be negative")
	}
	if c.Limits.RequestsPerMinute > 0 && c.Limits.Burst <= 0 {
		validationErrors = append(validationErrors, "limits.burst must be positive when rate limiting is enabled")
	}
	if c.Limits.CacheTTLSeconds < 0 {
		validationErrors = append(validationErrors, "limits.cache_ttl_seconds cannot be negative")
	}

	// Validate logging configuration
	if c.Logging.Level != "" && !isValidLogLevel(c.Logging.Level) {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.level '%s' is invalid, must be one of: debug, info, warn, error",
			c.Logging.Level,
		))
	}
	if c.Logging.Format != "" && c.Logging.Format != "json" && c.Logging.Format != "text" {
		validationErrors = append(validationErrors, fmt.Sprintf(
			"logging.format '%s' is invalid, must be one of: json, text",
			c.Logging.Format,
		))
	}

	if len(validationErrors) > 0 {
		return &ValidationError{Errors: validationErrors}
	}

	return nil
}

func checkTemperature(t float64) error {
	if t < domain.MinTemperature || t > domain.MaxTemperature {
		return &InvalidValueError{
			Key:    "generation.temperature",
			Value:  t,
			Bounds: fmt.Sprintf("[%g, %g]", domain.MinTemperature, domain.MaxTemperature),
		}
	}
	return nil
}

func checkMaxOutputTokens(n int) error {
	if n < domain.MinMaxOutputTokens || n > domain.MaxMaxOutputTokens {
		return &InvalidValueError{
			Key:    "generation.max_output_tokens",
			Value:  n,
			Bounds: fmt.Sprintf("[%d, %d]", domain.MinMaxOutputTokens, domain.MaxMaxOutputTokens),
		}
	}
	return nil
}

// isValidLogLevel checks if the log level is valid.
func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}
