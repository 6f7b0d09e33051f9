package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hpn/hpn-explainer/internal/domain"
)

func TestEstimateTokens(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"hello", 1},
		{"Why is the sky blue?", 6},
		{"   ...   ", 0},
		{"one two three four five six seven eight nine ten", 13},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, EstimateTokens(tt.text), tt.text)
	}
}

func TestUsageTracker(t *testing.T) {
	u := NewUsageTracker()

	u.Record(domain.Result{Text: "one two three four five six seven eight nine ten", Source: "openai", Prompt: "Why is the sky blue?"})
	u.Record(domain.Result{Text: "fallback", Source: domain.SourceFallback, Reason: domain.ReasonNoCredential})
	u.Record(domain.Result{Text: "fallback", Source: domain.SourceFallback, Reason: domain.ReasonProviderFailure, Prompt: "one two three four five six seven eight nine ten"})

	s := u.Snapshot()
	assert.Equal(t, int64(3), s.Requests)
	assert.Equal(t, int64(2), s.Fallbacks)
	assert.Equal(t, int64(6+13), s.PromptTokens)
	assert.Equal(t, int64(13), s.ExplanationTokens)
	assert.Equal(t, map[string]int64{"no-credential": 1, "provider-failure": 1}, s.ByReason)

	s.ByReason["no-credential"] = 99
	assert.Equal(t, int64(1), u.Snapshot().ByReason["no-credential"])
}
