package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/hpn/hpn-explainer/internal/domain"
)

const (
	defaultConfigName = "config"
	defaultConfigType = "yaml"
	envPrefix         = "EXPLAINER"

	// EnvAPIKey is a shortcut for EXPLAINER_PROVIDER_API_KEY. When the
	// provider name is not configured explicitly, it is inferred from the
	// key's prefix.
	EnvAPIKey = "EXPLAINER_API_KEY"
)

// Load reads the configuration. Priority, highest first:
// 1. Environment variables (prefixed with EXPLAINER_, "." replaced by "_")
// 2. The YAML file at path, or config.yaml in the search paths when path is empty
// 3. EXPLAINER_API_KEY, for the credential only
// 4. Default values
//
// A missing file is not an error.
func Load(path string) (*Configuration, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName(defaultConfigName)
	v.SetConfigType(defaultConfigType)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("$HOME/.hpn-explainer")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil && !isNotFound(err) {
		return nil, &ConfigError{
			Op:  "read",
			Err: fmt.Errorf("failed to read config file: %w", err),
		}
	}

	var cfg Configuration
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, &ConfigError{
			Op:  "unmarshal",
			Err: fmt.Errorf("failed to unmarshal config: %w", err),
		}
	}

	applyPrimaryKey(v, &cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8787)
	v.SetDefault("server.read_timeout_seconds", 30)
	v.SetDefault("server.write_timeout_seconds", 60)
	v.SetDefault("server.shutdown_timeout_seconds", 15)
	v.SetDefault("server.allowed_origins", []string{"chrome-extension://", "moz-extension://"})

	// Provider defaults
	v.SetDefault("provider.name", string(domain.ProviderOpenAI))
	v.SetDefault("provider.api_key", "")
	v.SetDefault("provider.endpoint", "")
	v.SetDefault("provider.model", "")
	v.SetDefault("provider.timeout_seconds", 30)

	// Generation defaults
	v.SetDefault("generation.temperature", domain.DefaultTemperature)
	v.SetDefault("generation.max_output_tokens", domain.DefaultMaxOutputTokens)

	v.SetDefault("audience.custom", "")

	// Limits defaults
	v.SetDefault("limits.requests_per_minute", 30)
	v.SetDefault("limits.burst", 5)
	v.SetDefault("limits.cache_ttl_seconds", 300)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// applyPrimaryKey supplies the credential from EXPLAINER_API_KEY when the
// settings file holds none, so a key saved from the options page always
// wins. The provider is inferred from the key only when neither the file
// nor the environment names one.
func applyPrimaryKey(v *viper.Viper, cfg *Configuration) {
	key := strings.TrimSpace(os.Getenv(EnvAPIKey))
	if key == "" {
		return
	}
	if v.InConfig("provider.api_key") && strings.TrimSpace(cfg.Provider.APIKey) != "" {
		return
	}
	cfg.Provider.APIKey = key

	explicit := v.InConfig("provider.name") || os.Getenv(envPrefix+"_PROVIDER_NAME") != ""
	if explicit {
		return
	}
	if provider, ok := DetectProvider(key); ok {
		cfg.Provider.Name = string(provider)
	}
}

// DetectProvider identifies a provider from the shape of its API key.
func DetectProvider(key string) (domain.ProviderType, bool) {
	switch {
	case strings.HasPrefix(key, "sk-ant-"):
		return domain.ProviderAnthropic, true
	case strings.HasPrefix(key, "sk-"):
		return domain.ProviderOpenAI, true
	case strings.HasPrefix(key, "AIza"):
		return domain.ProviderGoogle, true
	default:
		return "", false
	}
}

// isNotFound reports whether err means there is no config file to read.
// Viper returns ConfigFileNotFoundError when searching paths, and the plain
// fs error when an explicit file is missing.
func isNotFound(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}
