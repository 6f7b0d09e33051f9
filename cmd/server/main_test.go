// End-to-end tests for the explainer server.
// These tests drive the full request flow: Client → Router → Dispatcher → Provider (mocked transport).
package main

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/hpn/hpn-explainer/internal/config"
	"github.com/hpn/hpn-explainer/internal/explainer"
	"github.com/hpn/hpn-explainer/internal/fallback"
	"github.com/hpn/hpn-explainer/internal/handler"
	"github.com/hpn/hpn-explainer/internal/ui"
)

const (
	// Key the mock provider accepts.
	testOpenAIKey = "sk-proj-e2etesttesttesttest1234"

	explainBody = `{"post":{"title":"Why is the sky blue?","postContent":"My kid asked and I had no idea.","topComments":["Rayleigh scattering","Shorter wavelengths scatter more"]},"level":"simple"}`

	openAISuccess = `{"id":"chatcmpl-e2e","object":"chat.completion","created":1,"model":"gpt-4o-mini","choices":[{"index":0,"message":{"role":"assistant","content":"Sunlight bounces off tiny bits of air, and blue bounces the most."},"finish_reason":"stop"}]}`
)

// ============================================================================
// SETUP HELPERS
// ============================================================================

// mockProvider is an http.RoundTripper that plays every provider API.
// It records each request host and answers with the current status and body.
type mockProvider struct {
	mu     sync.Mutex
	status int
	body   string
	hosts  []string
}

func (m *mockProvider) RoundTrip(r *http.Request) (*http.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.hosts = append(m.hosts, r.URL.Host)
	if r.Body != nil {
		io.Copy(io.Discard, r.Body)
		r.Body.Close()
	}

	return &http.Response{
		StatusCode: m.status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(m.body)),
		Request:    r,
	}, nil
}

func (m *mockProvider) respond(status int, body string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.status = status
	m.body = body
}

func (m *mockProvider) calls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.hosts...)
}

// setupApp builds the full router over a settings file in a temp dir. Rate
// limiting is disabled so tests can issue as many requests as they need.
func setupApp(t *testing.T, provider *mockProvider) (*app, *config.Holder) {
	t.Helper()
	t.Setenv(config.EnvAPIKey, "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("limits:\n  requests_per_minute: 0\n"), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	holder, err := config.NewHolder(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	a := newApp(holder, logger, explainer.WithHTTPClient(&http.Client{Transport: provider}))
	t.Cleanup(a.close)

	return a, holder
}

func doRequest(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeExplain(t *testing.T, w *httptest.ResponseRecorder) handler.ExplainResponse {
	t.Helper()
	if w.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp handler.ExplainResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Failed to parse response: %v", err)
	}
	return resp
}

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	ui.SetOutput(io.Discard)
	os.Exit(m.Run())
}

// ============================================================================
// TEST: FULL LIFECYCLE
// ============================================================================

// TestE2E_FallbackThenProvider walks the extension's lifecycle:
//  1. No API key → offline explanation, provider never contacted
//  2. Options page saves an OpenAI key → live explanation
//  3. Same post again → served from cache
//  4. Provider starts failing → offline explanation, still 200
func TestE2E_FallbackThenProvider(t *testing.T) {
	t.Log("=== TEST: Fallback then Provider ===")

	provider := &mockProvider{status: http.StatusOK, body: openAISuccess}
	a, _ := setupApp(t, provider)

	// Step 1: no credential.
	resp := decodeExplain(t, doRequest(a.router, http.MethodPost, "/v1/explain", explainBody))
	if !resp.Fallback || resp.Reason != "no-credential" {
		t.Errorf("Expected no-credential fallback, got %+v", resp)
	}
	if !strings.Contains(resp.Explanation, fallback.CredentialNotice) {
		t.Errorf("Expected credential notice in fallback text, got %q", resp.Explanation)
	}
	if n := len(provider.calls()); n != 0 {
		t.Fatalf("Expected no provider calls without a key, got %d", n)
	}
	t.Log("✓ Step 1: fallback served without contacting the provider")

	// Step 2: save a key.
	w := doRequest(a.router, http.MethodPut, "/v1/settings",
		`{"provider":"openai","api_key":"`+testOpenAIKey+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected settings save to succeed, got %d: %s", w.Code, w.Body.String())
	}
	if strings.Contains(w.Body.String(), testOpenAIKey) {
		t.Errorf("Settings response leaked the API key")
	}

	resp = decodeExplain(t, doRequest(a.router, http.MethodPost, "/v1/explain", explainBody))
	if resp.Fallback || resp.Source != "openai" {
		t.Fatalf("Expected openai explanation, got %+v", resp)
	}
	if resp.Explanation != "Sunlight bounces off tiny bits of air, and blue bounces the most." {
		t.Errorf("Unexpected explanation: %q", resp.Explanation)
	}
	if calls := provider.calls(); len(calls) != 1 || calls[0] != "api.openai.com" {
		t.Fatalf("Expected one call to api.openai.com, got %v", calls)
	}
	t.Log("✓ Step 2: live explanation from openai")

	// Step 3: cache hit.
	w = doRequest(a.router, http.MethodPost, "/v1/explain", explainBody)
	if got := w.Header().Get(handler.SourceHeader); got != "openai" {
		t.Errorf("Expected cached source header openai, got %q", got)
	}
	if n := len(provider.calls()); n != 1 {
		t.Errorf("Expected cached response, provider called %d times", n)
	}
	t.Log("✓ Step 3: repeated request served from cache")

	// Step 4: provider failure. Changing generation params purges the cache.
	provider.respond(http.StatusInternalServerError, `{"error":{"message":"The server had an error","type":"server_error"}}`)
	w = doRequest(a.router, http.MethodPatch, "/v1/settings/generation", `{"temperature":0.5}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected generation update to succeed, got %d: %s", w.Code, w.Body.String())
	}

	resp = decodeExplain(t, doRequest(a.router, http.MethodPost, "/v1/explain", explainBody))
	if !resp.Fallback || resp.Reason != "provider-failure" {
		t.Errorf("Expected provider-failure fallback, got %+v", resp)
	}
	if n := len(provider.calls()); n != 2 {
		t.Errorf("Expected exactly one more provider call, got %d total", n)
	}
	t.Log("✓ Step 4: provider failure served as fallback with 200")
}

// ============================================================================
// TEST: CUSTOM ENDPOINT
// ============================================================================

// TestE2E_CustomEndpoint verifies a custom Groq endpoint gets an
// OpenAI-style request and its answer is extracted.
func TestE2E_CustomEndpoint(t *testing.T) {
	t.Log("=== TEST: Custom Endpoint ===")

	provider := &mockProvider{status: http.StatusOK, body: openAISuccess}
	a, holder := setupApp(t, provider)

	w := doRequest(a.router, http.MethodPut, "/v1/settings",
		`{"provider":"custom","api_key":"gsk_e2etesttesttesttest","endpoint":"https://api.groq.com/openai/v1/chat/completions"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected settings save to succeed, got %d: %s", w.Code, w.Body.String())
	}
	if holder.ProviderConfig().Endpoint == "" {
		t.Fatalf("Expected endpoint to be persisted")
	}

	resp := decodeExplain(t, doRequest(a.router, http.MethodPost, "/v1/explain", explainBody))
	if resp.Source != "custom" || resp.Fallback {
		t.Errorf("Expected custom explanation, got %+v", resp)
	}
	if calls := provider.calls(); len(calls) != 1 || calls[0] != "api.groq.com" {
		t.Errorf("Expected one call to api.groq.com, got %v", calls)
	}

	t.Log("✓ Custom endpoint answered")
}

// ============================================================================
// TEST: SETTINGS PERSISTENCE
// ============================================================================

// TestE2E_SettingsSurviveRestart verifies a saved key is read back by a
// fresh holder, as after a server restart.
func TestE2E_SettingsSurviveRestart(t *testing.T) {
	t.Log("=== TEST: Settings Survive Restart ===")

	provider := &mockProvider{status: http.StatusOK, body: openAISuccess}
	a, holder := setupApp(t, provider)

	w := doRequest(a.router, http.MethodPut, "/v1/settings",
		`{"provider":"anthropic","api_key":"sk-ant-e2etesttesttesttest","model":"claude-3-haiku-20240307"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("Expected settings save to succeed, got %d: %s", w.Code, w.Body.String())
	}

	restarted, err := config.NewHolder(holder.Path())
	if err != nil {
		t.Fatalf("failed to reload config: %v", err)
	}

	pc := restarted.ProviderConfig()
	if pc.Provider != "anthropic" || pc.Credential != "sk-ant-e2etesttesttesttest" || pc.Model != "claude-3-haiku-20240307" {
		t.Errorf("Unexpected settings after restart: provider=%s model=%s", pc.Provider, pc.Model)
	}
	if restarted.Config().Limits.RequestsPerMinute != 0 {
		t.Errorf("Expected unrelated settings to be preserved")
	}

	t.Log("✓ Settings persisted to disk")
}

// ============================================================================
// TEST: CONCURRENCY
// ============================================================================

// TestE2E_ConcurrentRequests checks that parallel explain requests each
// get a complete answer.
func TestE2E_ConcurrentRequests(t *testing.T) {
	t.Log("=== TEST: Concurrent Requests ===")

	provider := &mockProvider{status: http.StatusOK, body: openAISuccess}
	a, _ := setupApp(t, provider)

	const workers = 20
	var wg sync.WaitGroup
	codes := make([]int, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			codes[id] = doRequest(a.router, http.MethodPost, "/v1/explain", explainBody).Code
		}(i)
	}
	wg.Wait()

	for i, code := range codes {
		if code != http.StatusOK {
			t.Errorf("Request %d: expected 200, got %d", i, code)
		}
	}

	t.Logf("✓ %d concurrent requests served", workers)
}

func TestParseLevel(t *testing.T) {
	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"WARN":    slog.LevelWarn,
		"error":   slog.LevelError,
		"info":    slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}

	for in, want := range tests {
		if got := parseLevel(in); got != want {
			t.Errorf("parseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestDefaultConfigPath(t *testing.T) {
	t.Setenv("EXPLAINER_CONFIG", "/tmp/explainer.yaml")

	if got := defaultConfigPath(); got != "/tmp/explainer.yaml" {
		t.Errorf("defaultConfigPath() = %q, want env override", got)
	}
}
