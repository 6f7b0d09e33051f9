package domain

// SourceFallback marks a Result produced by the offline fallback generator.
const SourceFallback = "fallback"

// FallbackReason explains why an explanation did not come from a provider.
type FallbackReason string

const (
	ReasonNone            FallbackReason = ""
	ReasonNoCredential    FallbackReason = "no-credential"
	ReasonUnknownProvider FallbackReason = "unknown-provider"
	ReasonProviderFailure FallbackReason = "provider-failure"
)

// Result is the outcome of one explanation request. It always carries text;
// failures are described, never returned.
type Result struct {
	// Text is the explanation shown to the user. It may be empty when a
	// custom endpoint answered with an unrecognised schema.
	Text string

	// Source is the provider that produced Text, or SourceFallback.
	Source string

	// Reason is set when Source is SourceFallback.
	Reason FallbackReason

	// Prompt is the text sent to the provider. It is empty when no provider
	// call was attempted.
	Prompt string

	// Err is the provider failure that caused the fallback, if any.
	Err error
}

// IsFallback reports whether the text came from the offline generator.
func (r Result) IsFallback() bool {
	return r.Source == SourceFallback
}
