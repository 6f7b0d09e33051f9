package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/hpn/hpn-explainer/internal/domain"
)

// GenerationParams is a partial update of the sampling parameters. Nil
// fields are left unchanged.
type GenerationParams struct {
	Temperature     *float64 `json:"temperature"`
	MaxOutputTokens *int     `json:"max_output_tokens"`
}

// Settings is what the options page edits.
type Settings struct {
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	Endpoint string `json:"endpoint"`
	Model    string `json:"model"`
}

// overrides are runtime values that take precedence over the file and
// survive a reload.
type overrides struct {
	temperature     *float64
	maxOutputTokens *int
	customAudience  *string
}

// Holder owns the loaded configuration. All methods are safe for concurrent
// use; readers always receive copies.
type Holder struct {
	mu        sync.RWMutex
	path      string
	cfg       *Configuration
	overrides overrides
}

// NewHolder creates a Holder for the file at path and loads it.
func NewHolder(path string) (*Holder, error) {
	h := &Holder{path: path}
	if err := h.Load(); err != nil {
		return nil, err
	}
	return h, nil
}

// Path returns the settings file location.
func (h *Holder) Path() string {
	return h.path
}

// Load reads the configuration from disk and the environment. On failure
// the previous snapshot is kept.
func (h *Holder) Load() error {
	cfg, err := Load(h.path)
	if err != nil {
		return err
	}

	h.mu.Lock()
	h.cfg = cfg
	h.mu.Unlock()
	return nil
}

// Reload is Load under the name callers use after the file changed.
func (h *Holder) Reload() error {
	return h.Load()
}

// Config returns a copy of the loaded configuration with runtime overrides
// applied.
func (h *Holder) Config() Configuration {
	h.mu.RLock()
	defer h.mu.RUnlock()

	cfg := *h.cfg
	if h.overrides.temperature != nil {
		cfg.Generation.Temperature = *h.overrides.temperature
	}
	if h.overrides.maxOutputTokens != nil {
		cfg.Generation.MaxOutputTokens = *h.overrides.maxOutputTokens
	}
	if h.overrides.customAudience != nil {
		cfg.Audience.Custom = *h.overrides.customAudience
	}
	return cfg
}

// ProviderConfig returns the snapshot handed to the dispatcher for one
// request.
func (h *Holder) ProviderConfig() domain.ProviderConfig {
	cfg := h.Config()
	return domain.ProviderConfig{
		Provider:        domain.ProviderType(strings.ToLower(strings.TrimSpace(cfg.Provider.Name))),
		Credential:      cfg.Provider.APIKey,
		Endpoint:        cfg.Provider.Endpoint,
		Model:           cfg.Provider.Model,
		Temperature:     cfg.Generation.Temperature,
		MaxOutputTokens: cfg.Generation.MaxOutputTokens,
		CustomAudience:  cfg.Audience.Custom,
	}
}

// UseMock reports whether explanations currently come from the fallback
// generator. It is derived from the credential on every call.
func (h *Holder) UseMock() bool {
	return h.ProviderConfig().UseMock()
}

// SetGenerationParams overrides temperature and/or max output tokens.
// Either may be nil. Nothing is changed when a value is out of range.
func (h *Holder) SetGenerationParams(p GenerationParams) error {
	if p.Temperature != nil {
		if err := checkTemperature(*p.Temperature); err != nil {
			return err
		}
	}
	if p.MaxOutputTokens != nil {
		if err := checkMaxOutputTokens(*p.MaxOutputTokens); err != nil {
			return err
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if p.Temperature != nil {
		t := *p.Temperature
		h.overrides.temperature = &t
	}
	if p.MaxOutputTokens != nil {
		n := *p.MaxOutputTokens
		h.overrides.maxOutputTokens = &n
	}
	return nil
}

// SetCustomAudience stores the audience description used by the custom level.
func (h *Holder) SetCustomAudience(text string) {
	text = strings.TrimSpace(text)

	h.mu.Lock()
	h.overrides.customAudience = &text
	h.mu.Unlock()
}

// Settings returns the current options page values.
func (h *Holder) Settings() Settings {
	cfg := h.Config()
	return Settings{
		Provider: cfg.Provider.Name,
		APIKey:   cfg.Provider.APIKey,
		Endpoint: cfg.Provider.Endpoint,
		Model:    cfg.Provider.Model,
	}
}

// SaveSettings validates s, writes it into the provider section of the
// settings file and reloads. The rest of the file is left as it was, so
// values injected from the environment are never persisted.
func (h *Holder) SaveSettings(s Settings) error {
	s.Provider = strings.ToLower(strings.TrimSpace(s.Provider))
	s.APIKey = strings.TrimSpace(s.APIKey)
	s.Endpoint = strings.TrimSpace(s.Endpoint)
	s.Model = strings.TrimSpace(s.Model)

	if err := validateSettings(s); err != nil {
		return err
	}
	if h.path == "" {
		return &ConfigError{Op: "write", Err: fmt.Errorf("no settings file configured")}
	}

	if err := writeSettings(h.path, s); err != nil {
		return err
	}
	return h.Reload()
}

func validateSettings(s Settings) error {
	if !domain.ProviderType(s.Provider).IsKnown() {
		allowed := make([]string, len(domain.KnownProviders))
		for i, p := range domain.KnownProviders {
			allowed[i] = string(p)
		}
		return &SettingsError{
			Message: "Please choose a supported AI provider.",
			Err:     &InvalidValueError{Key: "provider.name", Value: s.Provider, AllowedValues: allowed},
		}
	}
	if s.APIKey == "" {
		return &SettingsError{
			Message: "Please enter an API key.",
			Err:     &MissingKeyError{Key: "provider.api_key"},
		}
	}
	if domain.ProviderType(s.Provider) == domain.ProviderCustom && s.Endpoint == "" {
		return &SettingsError{
			Message: "Please enter a custom API endpoint.",
			Err:     &MissingKeyError{Key: "provider.endpoint"},
		}
	}
	return nil
}

// writeSettings merges s into the provider section of the YAML file at path.
func writeSettings(path string, s Settings) error {
	doc := make(map[string]any)

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return &ConfigError{Op: "write", Err: fmt.Errorf("failed to parse existing config: %w", err)}
		}
		if doc == nil {
			doc = make(map[string]any)
		}
	case !errors.Is(err, fs.ErrNotExist):
		return &ConfigError{Op: "write", Err: fmt.Errorf("failed to read existing config: %w", err)}
	}

	provider, _ := doc["provider"].(map[string]any)
	if provider == nil {
		provider = make(map[string]any)
	}
	provider["name"] = s.Provider
	provider["api_key"] = s.APIKey
	provider["endpoint"] = s.Endpoint
	provider["model"] = s.Model
	doc["provider"] = provider

	out, err := yaml.Marshal(doc)
	if err != nil {
		return &ConfigError{Op: "write", Err: fmt.Errorf("failed to marshal config: %w", err)}
	}
	return writeFile(path, out)
}

// writeFile replaces path with data. The file holds a credential, so it is
// written owner-only via a temp file and rename.
func writeFile(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return &ConfigError{Op: "write", Err: fmt.Errorf("failed to create config dir: %w", err)}
	}

	tmp, err := os.CreateTemp(dir, ".config-*.yaml")
	if err != nil {
		return &ConfigError{Op: "write", Err: fmt.Errorf("failed to create temp file: %w", err)}
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return &ConfigError{Op: "write", Err: fmt.Errorf("failed to write config: %w", err)}
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return &ConfigError{Op: "write", Err: fmt.Errorf("failed to chmod config: %w", err)}
	}
	if err := tmp.Close(); err != nil {
		return &ConfigError{Op: "write", Err: fmt.Errorf("failed to close config: %w", err)}
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return &ConfigError{Op: "write", Err: fmt.Errorf("failed to replace config: %w", err)}
	}
	return nil
}
