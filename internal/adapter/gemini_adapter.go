package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/hpn/hpn-explainer/internal/domain"
)

const (
	// DefaultGeminiBaseURL is the default Gemini API endpoint.
	DefaultGeminiBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	// DefaultGeminiModel is used when no model override is configured.
	DefaultGeminiModel = "gemini-pro"
)

// GeminiAdapter implements Adapter for the Google Gemini generateContent API.
// The API key travels as a query parameter, not a header.
type GeminiAdapter struct {
	opts options
}

// NewGeminiAdapter creates a new GeminiAdapter.
func NewGeminiAdapter(opts ...Option) *GeminiAdapter {
	return &GeminiAdapter{opts: newOptions(DefaultGeminiBaseURL, opts)}
}

// Name returns the provider identifier.
func (g *GeminiAdapter) Name() string {
	return string(domain.ProviderGoogle)
}

// Call performs a generateContent request and returns the first candidate's
// first part. A response without candidates fails with ErrNoCandidates.
func (g *GeminiAdapter) Call(ctx context.Context, text string, level domain.Level, cfg domain.ProviderConfig) (string, error) {
	model := cfg.ModelOr(DefaultGeminiModel)

	body, err := postJSON(ctx, g.opts.httpClient, g.Name(), g.endpoint(model, cfg.Credential), nil, g.buildRequest(text, cfg))
	if err != nil {
		return "", err
	}

	var resp GeminiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", shapeError(g.Name(), fmt.Errorf("failed to unmarshal gemini response: %w", err))
	}

	return g.extractText(resp)
}

// endpoint builds the model-specific URL with the key as query parameter.
func (g *GeminiAdapter) endpoint(model, key string) string {
	return fmt.Sprintf("%s/models/%s:generateContent?key=%s", g.opts.baseURL, url.PathEscape(model), url.QueryEscape(key))
}

// buildRequest wraps the prompt in a single user content block.
func (g *GeminiAdapter) buildRequest(text string, cfg domain.ProviderConfig) GeminiRequest {
	temperature := cfg.Temperature
	maxTokens := cfg.MaxOutputTokens

	return GeminiRequest{
		Contents: []GeminiContent{
			{
				Role:  "user",
				Parts: []GeminiPart{{Text: text}},
			},
		},
		GenerationConfig: GeminiGenerationConfig{
			Temperature:     &temperature,
			MaxOutputTokens: &maxTokens,
		},
	}
}

func (g *GeminiAdapter) extractText(resp GeminiResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
			return "", shapeError(g.Name(), fmt.Errorf("%w (prompt blocked: %s)", ErrNoCandidates, resp.PromptFeedback.BlockReason))
		}
		return "", shapeError(g.Name(), ErrNoCandidates)
	}

	parts := resp.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", shapeError(g.Name(), fmt.Errorf("candidate has no parts (finish reason %q): %w", resp.Candidates[0].FinishReason, ErrEmptyResponse))
	}

	return parts[0].Text, nil
}

// ============================================================================
// Gemini API Types
// ============================================================================

// GeminiRequest represents a Gemini generateContent request.
type GeminiRequest struct {
	Contents         []GeminiContent        `json:"contents"`
	GenerationConfig GeminiGenerationConfig `json:"generationConfig"`
}

// GeminiContent represents a content block in Gemini format.
type GeminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []GeminiPart `json:"parts"`
}

// GeminiPart represents a part of a content block.
type GeminiPart struct {
	Text string `json:"text,omitempty"`
}

// GeminiGenerationConfig contains generation parameters.
type GeminiGenerationConfig struct {
	Temperature     *float64 `json:"temperature,omitempty"`
	MaxOutputTokens *int     `json:"maxOutputTokens,omitempty"`
}

// GeminiResponse represents a Gemini generateContent response.
type GeminiResponse struct {
	Candidates     []GeminiCandidate     `json:"candidates"`
	PromptFeedback *GeminiPromptFeedback `json:"promptFeedback,omitempty"`
}

// GeminiCandidate represents a single generated candidate.
type GeminiCandidate struct {
	Content      GeminiContent `json:"content"`
	FinishReason string        `json:"finishReason"`
	Index        int           `json:"index"`
}

// GeminiPromptFeedback reports why a prompt produced no candidates.
type GeminiPromptFeedback struct {
	BlockReason string `json:"blockReason"`
}
