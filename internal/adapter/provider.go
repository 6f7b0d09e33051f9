// Package adapter provides implementations for external AI provider integrations.
// It uses the Adapter pattern to hide each provider's wire format behind one
// explanation capability.
package adapter

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/hpn/hpn-explainer/internal/domain"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// Adapter defines the interface for provider adapters.
// All provider implementations must satisfy this interface.
type Adapter interface {
	// Call sends prompt to the provider and returns the extracted explanation.
	// Transport, status and shape problems are reported as *Error.
	Call(ctx context.Context, prompt string, level domain.Level, cfg domain.ProviderConfig) (string, error)

	// Name returns the provider's identifier string.
	Name() string
}

// Option is a functional option shared by every adapter constructor.
type Option func(*options)

type options struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// WithBaseURL overrides the provider's API root.
func WithBaseURL(url string) Option {
	return func(o *options) {
		o.baseURL = strings.TrimSuffix(url, "/")
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithTimeout sets the timeout of the adapter's own HTTP client. It has no
// effect when WithHTTPClient is also given.
func WithTimeout(timeout time.Duration) Option {
	return func(o *options) {
		o.timeout = timeout
	}
}

func newOptions(baseURL string, opts []Option) options {
	o := options{
		baseURL: baseURL,
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.httpClient == nil {
		o.httpClient = &http.Client{Timeout: o.timeout}
	}
	return o
}
