package adapter

import (
	"context"
	"fmt"
	"strings"

	"github.com/hpn/hpn-explainer/internal/domain"
	"github.com/hpn/hpn-explainer/internal/prompt"
)

// CustomAdapter implements Adapter for a user-supplied endpoint. The request
// envelope is chosen by sniffing the endpoint URL; the response is parsed
// with ExtractText.
type CustomAdapter struct {
	opts options
}

// NewCustomAdapter creates a new CustomAdapter. WithBaseURL is ignored; the
// endpoint always comes from the configuration.
func NewCustomAdapter(opts ...Option) *CustomAdapter {
	return &CustomAdapter{opts: newOptions("", opts)}
}

// Name returns the provider identifier.
func (c *CustomAdapter) Name() string {
	return string(domain.ProviderCustom)
}

// Call posts to cfg.Endpoint with bearer auth.
func (c *CustomAdapter) Call(ctx context.Context, text string, level domain.Level, cfg domain.ProviderConfig) (string, error) {
	endpoint := strings.TrimSpace(cfg.Endpoint)
	if endpoint == "" {
		return "", &Error{Provider: c.Name(), Kind: KindConfig, Err: ErrNoEndpoint}
	}

	vendor, _ := Sniff(endpoint)
	payload, headers := c.buildRequest(vendor, text, level, cfg)

	body, err := postJSON(ctx, c.opts.httpClient, c.Name(), endpoint, headers, payload)
	if err != nil {
		return "", err
	}

	explanation, err := ExtractText(body)
	if err != nil {
		return "", shapeError(c.Name(), fmt.Errorf("failed to decode %s response: %w", vendor.Name, err))
	}
	return explanation, nil
}

// buildRequest returns the body and extra headers for vendor.
func (c *CustomAdapter) buildRequest(vendor Vendor, text string, level domain.Level, cfg domain.ProviderConfig) (any, map[string]string) {
	headers := map[string]string{
		"Authorization": "Bearer " + cfg.Credential,
	}

	switch vendor.Envelope {
	case EnvelopeChat:
		return ChatRequest{
			Model:       cfg.ModelOr(vendor.DefaultModel),
			Messages:    chatMessages(prompt.SystemInstruction(level, cfg.CustomAudience), text),
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxOutputTokens,
		}, headers

	case EnvelopeAnthropic:
		for k, v := range anthropicHeaders(cfg.Credential) {
			headers[k] = v
		}
		return newAnthropicRequest(cfg.ModelOr(vendor.DefaultModel), text, level, cfg), headers

	default:
		return GenericRequest{
			Prompt:      text,
			Level:       string(level),
			Model:       strings.TrimSpace(cfg.Model),
			MaxTokens:   cfg.MaxOutputTokens,
			Temperature: cfg.Temperature,
			Messages:    chatMessages(prompt.SystemInstruction(level, cfg.CustomAudience), text),
		}, headers
	}
}
