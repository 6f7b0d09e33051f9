package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/hpn/hpn-explainer/internal/domain"
	"github.com/hpn/hpn-explainer/internal/prompt"
)

const (
	// DefaultOpenAIBaseURL is the OpenAI API root; the client appends /chat/completions.
	DefaultOpenAIBaseURL = "https://api.openai.com/v1"

	// DefaultOpenAIModel is used when no model override is configured.
	DefaultOpenAIModel = "gpt-3.5-turbo"

	// DefaultDeepSeekBaseURL is the DeepSeek API root.
	DefaultDeepSeekBaseURL = "https://api.deepseek.com"

	// DefaultDeepSeekModel is used when no model override is configured.
	DefaultDeepSeekModel = "deepseek-chat"
)

// ChatCompletionAdapter implements Adapter for OpenAI-compatible chat
// completion APIs. OpenAI and DeepSeek share it with different roots.
type ChatCompletionAdapter struct {
	name         string
	defaultModel string
	opts         options
}

// NewOpenAIAdapter creates the adapter for the OpenAI API.
func NewOpenAIAdapter(opts ...Option) *ChatCompletionAdapter {
	return &ChatCompletionAdapter{
		name:         string(domain.ProviderOpenAI),
		defaultModel: DefaultOpenAIModel,
		opts:         newOptions(DefaultOpenAIBaseURL, opts),
	}
}

// NewDeepSeekAdapter creates the adapter for the DeepSeek API.
func NewDeepSeekAdapter(opts ...Option) *ChatCompletionAdapter {
	return &ChatCompletionAdapter{
		name:         string(domain.ProviderDeepSeek),
		defaultModel: DefaultDeepSeekModel,
		opts:         newOptions(DefaultDeepSeekBaseURL, opts),
	}
}

// Name returns the provider identifier.
func (a *ChatCompletionAdapter) Name() string {
	return a.name
}

// Call sends a system+user chat completion and returns the first choice's
// content, trimmed.
func (a *ChatCompletionAdapter) Call(ctx context.Context, text string, level domain.Level, cfg domain.ProviderConfig) (string, error) {
	if err := canceled(ctx, a.name); err != nil {
		return "", err
	}

	clientCfg := openai.DefaultConfig(cfg.Credential)
	clientCfg.BaseURL = a.opts.baseURL
	clientCfg.HTTPClient = a.opts.httpClient
	client := openai.NewClientWithConfig(clientCfg)

	req := a.buildRequest(text, level, cfg)

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", a.classify(err)
	}

	if len(resp.Choices) == 0 {
		return "", shapeError(a.name, fmt.Errorf("no choices in response: %w", ErrEmptyResponse))
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// buildRequest converts the prompt into the SDK request.
func (a *ChatCompletionAdapter) buildRequest(text string, level domain.Level, cfg domain.ProviderConfig) openai.ChatCompletionRequest {
	return openai.ChatCompletionRequest{
		Model: cfg.ModelOr(a.defaultModel),
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: prompt.SystemInstruction(level, cfg.CustomAudience),
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: text,
			},
		},
		Temperature: wireTemperature(cfg.Temperature),
		MaxTokens:   cfg.MaxOutputTokens,
	}
}

// wireTemperature keeps a zero temperature on the wire. The SDK drops a
// zero value, which the API would read as its default of 1.
func wireTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// classify maps SDK errors onto the adapter failure kinds.
func (a *ChatCompletionAdapter) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Error{
			Provider:   a.name,
			Kind:       KindStatus,
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Err:        err,
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Error{
			Provider:   a.name,
			Kind:       KindStatus,
			StatusCode: reqErr.HTTPStatusCode,
			Body:       diagnosticBody(reqErr.Body),
			Err:        err,
		}
	}

	// The SDK rejects some model/parameter combinations before sending.
	if errors.Is(err, openai.ErrChatCompletionInvalidModel) ||
		errors.Is(err, openai.ErrReasoningModelMaxTokensDeprecated) ||
		errors.Is(err, openai.ErrReasoningModelLimitationsOther) {
		return &Error{Provider: a.name, Kind: KindConfig, Err: err}
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return shapeError(a.name, err)
	}

	return &Error{Provider: a.name, Kind: KindTransport, Err: err}
}
