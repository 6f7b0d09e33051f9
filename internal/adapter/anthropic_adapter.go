package adapter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/hpn/hpn-explainer/internal/domain"
	"github.com/hpn/hpn-explainer/internal/prompt"
)

const (
	// DefaultAnthropicBaseURL is the Anthropic API root.
	DefaultAnthropicBaseURL = "https://api.anthropic.com"

	// AnthropicVersion is sent as the anthropic-version header.
	AnthropicVersion = "2023-06-01"

	// DefaultAnthropicModel is used when no model override is configured.
	DefaultAnthropicModel = "claude-3-haiku-20240307"

	anthropicMessagesPath = "/v1/messages"
)

// AnthropicAdapter implements Adapter for the Anthropic Messages API.
type AnthropicAdapter struct {
	opts options
}

// NewAnthropicAdapter creates a new AnthropicAdapter.
func NewAnthropicAdapter(opts ...Option) *AnthropicAdapter {
	return &AnthropicAdapter{opts: newOptions(DefaultAnthropicBaseURL, opts)}
}

// Name returns the provider identifier.
func (a *AnthropicAdapter) Name() string {
	return string(domain.ProviderAnthropic)
}

// Call sends the prompt as a single user message, with the audience
// instruction appended inline, and returns the first content block's text.
func (a *AnthropicAdapter) Call(ctx context.Context, text string, level domain.Level, cfg domain.ProviderConfig) (string, error) {
	payload := newAnthropicRequest(cfg.ModelOr(DefaultAnthropicModel), text, level, cfg)

	body, err := postJSON(ctx, a.opts.httpClient, a.Name(), a.opts.baseURL+anthropicMessagesPath, anthropicHeaders(cfg.Credential), payload)
	if err != nil {
		return "", err
	}

	return parseAnthropicResponse(a.Name(), body)
}

// AnthropicRequest is the body for POST /v1/messages.
type AnthropicRequest struct {
	Model     string             `json:"model"`
	Messages  []AnthropicMessage `json:"messages"`
	MaxTokens int                `json:"max_tokens"`
}

// AnthropicMessage is a single message; content is sent as a plain string.
type AnthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// AnthropicResponse is the subset of the Messages response we read.
type AnthropicResponse struct {
	ID         string                  `json:"id"`
	Content    []AnthropicContentBlock `json:"content"`
	StopReason string                  `json:"stop_reason"`
}

// AnthropicContentBlock is one block of the response content array.
type AnthropicContentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func newAnthropicRequest(model, text string, level domain.Level, cfg domain.ProviderConfig) AnthropicRequest {
	return AnthropicRequest{
		Model: model,
		Messages: []AnthropicMessage{
			{
				Role:    "user",
				Content: text + prompt.AudienceSuffix(level, cfg.CustomAudience),
			},
		},
		MaxTokens: cfg.MaxOutputTokens,
	}
}

func anthropicHeaders(credential string) map[string]string {
	return map[string]string{
		"x-api-key":         credential,
		"anthropic-version": AnthropicVersion,
	}
}

func parseAnthropicResponse(provider string, body []byte) (string, error) {
	var resp AnthropicResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", shapeError(provider, fmt.Errorf("failed to unmarshal anthropic response: %w", err))
	}
	if len(resp.Content) == 0 {
		return "", shapeError(provider, fmt.Errorf("no content blocks in response: %w", ErrEmptyResponse))
	}
	return resp.Content[0].Text, nil
}
