package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const (
	// maxResponseBytes bounds how much of a response body is read.
	maxResponseBytes = 1 << 20

	// maxDiagnosticBytes bounds the body kept on a status error.
	maxDiagnosticBytes = 4 << 10
)

// postJSON marshals payload, POSTs it to url and returns the body of a 2xx
// response. Every failure is an *Error tagged with provider.
func postJSON(ctx context.Context, client *http.Client, provider, url string, headers map[string]string, payload any) ([]byte, error) {
	if err := canceled(ctx, provider); err != nil {
		return nil, err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Provider: provider, Kind: KindConfig, Err: fmt.Errorf("failed to marshal request: %w", err)}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Provider: provider, Kind: KindConfig, Err: fmt.Errorf("failed to create http request: %w", err)}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &Error{Provider: provider, Kind: KindTransport, Err: fmt.Errorf("failed to execute request: %w", err)}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &Error{Provider: provider, Kind: KindTransport, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &Error{
			Provider:   provider,
			Kind:       KindStatus,
			StatusCode: resp.StatusCode,
			Message:    apiErrorMessage(respBody),
			Body:       diagnosticBody(respBody),
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	return respBody, nil
}

// canceled reports a done context as a transport failure before anything is
// sent. Transports are not required to check the context themselves.
func canceled(ctx context.Context, provider string) error {
	if err := ctx.Err(); err != nil {
		return &Error{Provider: provider, Kind: KindTransport, Err: fmt.Errorf("request not sent: %w", err)}
	}
	return nil
}

// apiErrorMessage pulls error.message out of an error body. OpenAI, Anthropic
// and Gemini all nest their message this way.
func apiErrorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return ""
	}
	return envelope.Error.Message
}

func diagnosticBody(body []byte) string {
	if len(body) > maxDiagnosticBytes {
		return string(body[:maxDiagnosticBytes]) + "..."
	}
	return string(body)
}
