package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hpn/hpn-explainer/internal/config"
	"github.com/hpn/hpn-explainer/internal/domain"
)

// SettingsStore is the subset of config.Holder the settings endpoints use.
type SettingsStore interface {
	ProviderConfigSource
	Settings() config.Settings
	SaveSettings(s config.Settings) error
	SetGenerationParams(p config.GenerationParams) error
	SetCustomAudience(text string)
}

// SettingsRequest is the body of PUT /v1/settings.
type SettingsRequest struct {
	Provider string `json:"provider" binding:"required,max=32"`
	APIKey   string `json:"api_key" binding:"max=512"`
	Endpoint string `json:"endpoint" binding:"max=2048"`
	Model    string `json:"model" binding:"max=128"`
}

// GenerationRequest is the body of PATCH /v1/settings/generation. Omitted
// fields keep their current value.
type GenerationRequest struct {
	Temperature     *float64 `json:"temperature" binding:"omitempty,gte=0,lte=1"`
	MaxOutputTokens *int     `json:"max_output_tokens" binding:"omitempty,gte=1,lte=4096"`
}

// AudienceRequest is the body of PUT /v1/settings/audience.
type AudienceRequest struct {
	Custom string `json:"custom" binding:"max=500"`
}

// GenerationView reports the effective sampling parameters.
type GenerationView struct {
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"max_output_tokens"`
}

// SettingsView is what GET /v1/settings returns. The credential is masked.
type SettingsView struct {
	Provider       string         `json:"provider"`
	APIKey         string         `json:"api_key"`
	Endpoint       string         `json:"endpoint"`
	Model          string         `json:"model"`
	HasCredential  bool           `json:"has_credential"`
	UseMock        bool           `json:"use_mock"`
	Generation     GenerationView `json:"generation"`
	CustomAudience string         `json:"custom_audience"`
	Providers      []string       `json:"providers"`
	Levels         []string       `json:"levels"`
}

// SettingsHandler serves the /v1/settings endpoints.
type SettingsHandler struct {
	store    SettingsStore
	logger   *slog.Logger
	onChange func()
}

// NewSettingsHandler creates a SettingsHandler. onChange, when not nil, runs
// after every successful update.
func NewSettingsHandler(store SettingsStore, logger *slog.Logger, onChange func()) *SettingsHandler {
	if onChange == nil {
		onChange = func() {}
	}
	return &SettingsHandler{store: store, logger: logger, onChange: onChange}
}

// HandleGet handles GET /v1/settings.
func (h *SettingsHandler) HandleGet(c *gin.Context) {
	c.JSON(http.StatusOK, h.view())
}

// HandleSave handles PUT /v1/settings.
func (h *SettingsHandler) HandleSave(c *gin.Context) {
	var req SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "invalid_request_error", "Invalid request body: "+err.Error())
		return
	}

	err := h.store.SaveSettings(config.Settings{
		Provider: req.Provider,
		APIKey:   req.APIKey,
		Endpoint: req.Endpoint,
		Model:    req.Model,
	})
	if err != nil {
		var settingsErr *config.SettingsError
		if errors.As(err, &settingsErr) {
			sendError(c, http.StatusBadRequest, "invalid_settings", settingsErr.Message)
			return
		}
		h.logger.Error("failed to save settings", slog.Any("error", err))
		sendError(c, http.StatusInternalServerError, "server_error", "Failed to save settings.")
		return
	}

	h.onChange()
	view := h.view()
	h.logger.Info("settings saved",
		slog.String("provider", view.Provider),
		slog.Bool("use_mock", view.UseMock),
	)
	c.JSON(http.StatusOK, view)
}

// HandleGeneration handles PATCH /v1/settings/generation.
func (h *SettingsHandler) HandleGeneration(c *gin.Context) {
	var req GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "invalid_request_error", "Invalid request body: "+err.Error())
		return
	}

	err := h.store.SetGenerationParams(config.GenerationParams{
		Temperature:     req.Temperature,
		MaxOutputTokens: req.MaxOutputTokens,
	})
	if err != nil {
		sendError(c, http.StatusBadRequest, "invalid_request_error", err.Error())
		return
	}

	h.onChange()
	c.JSON(http.StatusOK, h.view().Generation)
}

// HandleAudience handles PUT /v1/settings/audience.
func (h *SettingsHandler) HandleAudience(c *gin.Context) {
	var req AudienceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		sendError(c, http.StatusBadRequest, "invalid_request_error", "Invalid request body: "+err.Error())
		return
	}

	h.store.SetCustomAudience(req.Custom)

	h.onChange()
	c.JSON(http.StatusOK, gin.H{"custom_audience": h.store.ProviderConfig().CustomAudience})
}

func (h *SettingsHandler) view() SettingsView {
	s := h.store.Settings()
	pc := h.store.ProviderConfig()

	providers := make([]string, len(domain.KnownProviders))
	for i, p := range domain.KnownProviders {
		providers[i] = string(p)
	}
	levels := make([]string, len(domain.Levels))
	for i, l := range domain.Levels {
		levels[i] = string(l)
	}

	return SettingsView{
		Provider:      s.Provider,
		APIKey:        maskKey(s.APIKey),
		Endpoint:      s.Endpoint,
		Model:         s.Model,
		HasCredential: !pc.UseMock(),
		UseMock:       pc.UseMock(),
		Generation: GenerationView{
			Temperature:     pc.Temperature,
			MaxOutputTokens: pc.MaxOutputTokens,
		},
		CustomAudience: pc.CustomAudience,
		Providers:      providers,
		Levels:         levels,
	}
}
