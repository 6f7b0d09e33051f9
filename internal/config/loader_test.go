package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpn/hpn-explainer/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, 8787, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1:8787", cfg.Server.Addr())
	assert.Equal(t, []string{"chrome-extension://", "moz-extension://"}, cfg.Server.AllowedOrigins)
	assert.Equal(t, "openai", cfg.Provider.Name)
	assert.Empty(t, cfg.Provider.APIKey)
	assert.Equal(t, 30, cfg.Provider.TimeoutSeconds)
	assert.Equal(t, domain.DefaultTemperature, cfg.Generation.Temperature)
	assert.Equal(t, domain.DefaultMaxOutputTokens, cfg.Generation.MaxOutputTokens)
	assert.Equal(t, 30, cfg.Limits.RequestsPerMinute)
	assert.Equal(t, 5, cfg.Limits.Burst)
	assert.Equal(t, 300, cfg.Limits.CacheTTLSeconds)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
provider:
  name: custom
  api_key: gsk_filekey
  endpoint: https://api.groq.com/openai/v1/chat/completions
  model: llama3-70b-8192
generation:
  temperature: 0.7
  max_output_tokens: 512
audience:
  custom: a product manager
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "custom", cfg.Provider.Name)
	assert.Equal(t, "gsk_filekey", cfg.Provider.APIKey)
	assert.Equal(t, "https://api.groq.com/openai/v1/chat/completions", cfg.Provider.Endpoint)
	assert.Equal(t, "llama3-70b-8192", cfg.Provider.Model)
	assert.Equal(t, 0.7, cfg.Generation.Temperature)
	assert.Equal(t, 512, cfg.Generation.MaxOutputTokens)
	assert.Equal(t, "a product manager", cfg.Audience.Custom)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, "provider:\n  name: openai\n  api_key: sk-file\n")
	t.Setenv("EXPLAINER_PROVIDER_NAME", "deepseek")
	t.Setenv("EXPLAINER_PROVIDER_API_KEY", "sk-env")
	t.Setenv("EXPLAINER_GENERATION_MAX_OUTPUT_TOKENS", "1000")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "deepseek", cfg.Provider.Name)
	assert.Equal(t, "sk-env", cfg.Provider.APIKey)
	assert.Equal(t, 1000, cfg.Generation.MaxOutputTokens)
}

func TestLoad_PrimaryAPIKey(t *testing.T) {
	t.Run("infers provider", func(t *testing.T) {
		t.Setenv(EnvAPIKey, " sk-ant-api03-abcdef ")

		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		require.NoError(t, err)

		assert.Equal(t, "sk-ant-api03-abcdef", cfg.Provider.APIKey)
		assert.Equal(t, "anthropic", cfg.Provider.Name)
	})

	t.Run("explicit provider wins", func(t *testing.T) {
		path := writeConfig(t, "provider:\n  name: custom\n  endpoint: https://example.com\n")
		t.Setenv(EnvAPIKey, "AIzaSyExample")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "AIzaSyExample", cfg.Provider.APIKey)
		assert.Equal(t, "custom", cfg.Provider.Name)
	})

	t.Run("stored key wins", func(t *testing.T) {
		path := writeConfig(t, "provider:\n  name: anthropic\n  api_key: sk-ant-stored\n")
		t.Setenv(EnvAPIKey, "sk-envkeyenvkeyenvkey")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "sk-ant-stored", cfg.Provider.APIKey)
		assert.Equal(t, "anthropic", cfg.Provider.Name)
	})

	t.Run("blank stored key uses env", func(t *testing.T) {
		path := writeConfig(t, "provider:\n  name: openai\n  api_key: \"\"\n")
		t.Setenv(EnvAPIKey, "sk-envkeyenvkeyenvkey")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, "sk-envkeyenvkeyenvkey", cfg.Provider.APIKey)
	})
}

func TestDetectProvider(t *testing.T) {
	tests := []struct {
		key  string
		want domain.ProviderType
		ok   bool
	}{
		{"sk-ant-api03-x", domain.ProviderAnthropic, true},
		{"sk-proj-x", domain.ProviderOpenAI, true},
		{"AIzaSyX", domain.ProviderGoogle, true},
		{"gsk_x", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			got, ok := DetectProvider(tt.key)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestLoad_UnknownProviderIsAccepted(t *testing.T) {
	path := writeConfig(t, "provider:\n  name: cohere\n  api_key: abc\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "cohere", cfg.Provider.Name)
}

func TestLoad_ValidationErrors(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 70000
generation:
  temperature: 1.5
  max_output_tokens: 0
logging:
  level: verbose
`)

	_, err := Load(path)
	require.Error(t, err)
	require.True(t, IsValidationError(err))

	var vErr *ValidationError
	require.ErrorAs(t, err, &vErr)
	assert.Len(t, vErr.Errors, 4)
	assert.True(t, vErr.HasError("server.port"))
	assert.True(t, vErr.HasError("generation.temperature"))
	assert.True(t, vErr.HasError("generation.max_output_tokens"))
	assert.True(t, vErr.HasError("logging.level"))
}

func TestLoad_MalformedFile(t *testing.T) {
	path := writeConfig(t, "provider: [unterminated\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, IsConfigError(err))
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t,
		"invalid value '1.5' for key 'generation.temperature', must be within [0, 1]",
		(&InvalidValueError{Key: "generation.temperature", Value: 1.5, Bounds: "[0, 1]"}).Error())
	assert.Equal(t,
		"invalid value 'x' for key 'provider.name', allowed values: openai, custom",
		(&InvalidValueError{Key: "provider.name", Value: "x", AllowedValues: []string{"openai", "custom"}}).Error())
	assert.Equal(t,
		"configuration validation failed: server.port must be between 1 and 65535",
		(&ValidationError{Errors: []string{"server.port must be between 1 and 65535"}}).Error())
}
