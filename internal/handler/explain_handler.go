package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hpn/hpn-explainer/internal/domain"
	"github.com/hpn/hpn-explainer/internal/ui"
)

// SourceHeader carries Result.Source on explain responses.
const SourceHeader = "X-Explanation-Source"

// Explainer is the dispatch capability the explain endpoint needs.
type Explainer interface {
	Explain(ctx context.Context, post domain.PostData, level domain.Level, cfg domain.ProviderConfig) domain.Result
}

// ProviderConfigSource yields the configuration snapshot for one request.
type ProviderConfigSource interface {
	ProviderConfig() domain.ProviderConfig
}

// ExplainRequest is the body of POST /v1/explain.
type ExplainRequest struct {
	Post  *PostPayload `json:"post" binding:"required"`
	Level string       `json:"level" binding:"max=64"`
}

// PostPayload is the scraped post as the content extractor sends it.
type PostPayload struct {
	Title       string   `json:"title" binding:"max=1000"`
	PostContent string   `json:"postContent" binding:"max=100000"`
	TopComments []string `json:"topComments" binding:"max=50,dive,max=20000"`
}

// ExplainResponse is returned for every bindable explain request.
type ExplainResponse struct {
	Explanation string `json:"explanation"`
	Source      string `json:"source"`
	Fallback    bool   `json:"fallback"`
	Reason      string `json:"reason,omitempty"`
}

// ExplainHandler serves POST /v1/explain.
type ExplainHandler struct {
	explainer Explainer
	config    ProviderConfigSource
	usage     *UsageTracker
	logger    *slog.Logger
}

// ExplainHandlerOption is a functional option for configuring ExplainHandler.
type ExplainHandlerOption func(*ExplainHandler)

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) ExplainHandlerOption {
	return func(h *ExplainHandler) {
		h.logger = logger
	}
}

// WithUsageTracker shares a usage tracker with other handlers.
func WithUsageTracker(usage *UsageTracker) ExplainHandlerOption {
	return func(h *ExplainHandler) {
		h.usage = usage
	}
}

// NewExplainHandler creates a new ExplainHandler.
func NewExplainHandler(explainer Explainer, config ProviderConfigSource, opts ...ExplainHandlerOption) *ExplainHandler {
	h := &ExplainHandler{
		explainer: explainer,
		config:    config,
		usage:     NewUsageTracker(),
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// HandleExplain handles POST /v1/explain. Once the body binds the answer is
// always 200: provider problems surface as fallback text, not as errors.
func (h *ExplainHandler) HandleExplain(c *gin.Context) {
	var req ExplainRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "invalid_request_error", "Invalid request body: "+err.Error())
		return
	}

	post := domain.PostData{
		Title:       req.Post.Title,
		PostContent: req.Post.PostContent,
		TopComments: req.Post.TopComments,
	}
	level := domain.Level(req.Level)
	cfg := h.config.ProviderConfig()

	result := h.explainer.Explain(c.Request.Context(), post, level, cfg)

	promptTokens := EstimateTokens(result.Prompt)
	h.usage.Record(result)

	h.logger.Info("explanation served",
		slog.String("provider", string(cfg.Provider)),
		slog.String("level", string(level)),
		slog.String("source", result.Source),
		slog.String("reason", string(result.Reason)),
		slog.Int("prompt_tokens", promptTokens),
		slog.Int("explanation_tokens", EstimateTokens(result.Text)),
	)

	if result.IsFallback() {
		ui.PrintFallback(string(result.Reason))
	} else {
		ui.PrintExplained(result.Source, EstimateTokens(result.Text))
	}

	c.Set(ctxSource, result.Source)
	c.Header(SourceHeader, result.Source)
	c.JSON(http.StatusOK, ExplainResponse{
		Explanation: result.Text,
		Source:      result.Source,
		Fallback:    result.IsFallback(),
		Reason:      string(result.Reason),
	})
}
