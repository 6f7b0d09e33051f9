package adapter

import (
	"errors"
	"fmt"
)

// Kind categorises an adapter failure.
type Kind string

const (
	// KindConfig means the request could not be built from the configuration.
	KindConfig Kind = "config"

	// KindTransport means the network call itself failed.
	KindTransport Kind = "transport"

	// KindStatus means the provider answered with a non-2xx status.
	KindStatus Kind = "status"

	// KindShape means the response decoded but lacked the expected fields.
	KindShape Kind = "shape"
)

var (
	// ErrNoCandidates is returned when a Gemini response has no candidates.
	ErrNoCandidates = errors.New("gemini response contains no candidates")

	// ErrNoEndpoint is returned when the custom provider has no endpoint URL.
	ErrNoEndpoint = errors.New("no custom endpoint provided")

	// ErrEmptyResponse is returned when a response has no content to extract.
	ErrEmptyResponse = errors.New("response contains no content")
)

// Error is the failure returned by every adapter.
type Error struct {
	Provider   string // Adapter name
	Kind       Kind   // Failure category
	StatusCode int    // HTTP status for KindStatus
	Message    string // Provider error message, when the body carried one
	Body       string // Truncated response body for diagnostics
	Err        error  // Underlying error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindStatus:
		if e.Message != "" {
			return fmt.Sprintf("%s API error [%d]: %s", e.Provider, e.StatusCode, e.Message)
		}
		return fmt.Sprintf("%s API error [%d]: %s", e.Provider, e.StatusCode, e.Body)
	default:
		return fmt.Sprintf("%s %s error: %v", e.Provider, e.Kind, e.Err)
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the category of err, or "" when err is not an *Error.
func KindOf(err error) Kind {
	var adapterErr *Error
	if errors.As(err, &adapterErr) {
		return adapterErr.Kind
	}
	return ""
}

// StatusCodeOf returns the HTTP status carried by err, or 0.
func StatusCodeOf(err error) int {
	var adapterErr *Error
	if errors.As(err, &adapterErr) {
		return adapterErr.StatusCode
	}
	return 0
}

func shapeError(provider string, err error) *Error {
	return &Error{Provider: provider, Kind: KindShape, Err: err}
}
