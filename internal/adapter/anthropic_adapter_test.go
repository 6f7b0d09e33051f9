package adapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hpn/hpn-explainer/internal/domain"
)

func TestAnthropicAdapter_Call(t *testing.T) {
	var got AnthropicRequest
	var gotHeaders http.Header
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotHeaders = r.Header.Clone()
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Write([]byte(`{"id":"msg_1","content":[{"type":"text","text":"First block"},{"type":"text","text":"second"}],"stop_reason":"end_turn"}`))
	}))
	defer server.Close()

	cfg := testConfig(domain.ProviderAnthropic)
	a := NewAnthropicAdapter(WithBaseURL(server.URL))

	text, err := a.Call(context.Background(), "Title: x", domain.LevelAdvanced, cfg)
	require.NoError(t, err)

	assert.Equal(t, "First block", text)
	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "test-api-key", gotHeaders.Get("x-api-key"))
	assert.Equal(t, AnthropicVersion, gotHeaders.Get("anthropic-version"))
	assert.Empty(t, gotHeaders.Get("Authorization"))

	assert.Equal(t, DefaultAnthropicModel, got.Model)
	assert.Equal(t, domain.DefaultMaxOutputTokens, got.MaxTokens)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.True(t, strings.HasPrefix(got.Messages[0].Content, "Title: x\n\nExplain this Reddit post as if I were"))
	assert.Contains(t, got.Messages[0].Content, "an in-depth explanation")
}

func TestAnthropicAdapter_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"msg_1","content":[]}`))
	}))
	defer server.Close()

	a := NewAnthropicAdapter(WithBaseURL(server.URL))
	_, err := a.Call(context.Background(), "p", domain.LevelSimple, testConfig(domain.ProviderAnthropic))

	require.Error(t, err)
	assert.Equal(t, KindShape, KindOf(err))
	assert.True(t, errors.Is(err, ErrEmptyResponse))
}

func TestAnthropicAdapter_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(529)
		w.Write([]byte(`{"type":"error","error":{"type":"overloaded_error","message":"Overloaded"}}`))
	}))
	defer server.Close()

	a := NewAnthropicAdapter(WithBaseURL(server.URL))
	_, err := a.Call(context.Background(), "p", domain.LevelSimple, testConfig(domain.ProviderAnthropic))

	require.Error(t, err)
	assert.Equal(t, KindStatus, KindOf(err))
	assert.Equal(t, 529, StatusCodeOf(err))
	assert.Equal(t, "anthropic API error [529]: Overloaded", err.Error())
}
