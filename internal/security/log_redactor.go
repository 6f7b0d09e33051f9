// Package security keeps provider credentials out of log output.
package security

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
)

// RedactedPlaceholder replaces every credential found in a log record.
const RedactedPlaceholder = "[REDACTED]"

// credentialPatterns match the key shapes of the supported providers plus
// the generic ways a secret ends up inside a string. Order matters: the
// provider prefixes run before the catch-all.
var credentialPatterns = []*regexp.Regexp{
	// Anthropic: sk-ant-api03-...
	regexp.MustCompile(`sk-ant-[a-zA-Z0-9_-]{20,}`),
	// OpenAI and DeepSeek: sk-..., sk-proj-..., sk-svcacct-...
	regexp.MustCompile(`sk-[a-zA-Z0-9_-]{20,}`),
	// Groq: gsk_...
	regexp.MustCompile(`gsk_[a-zA-Z0-9]{20,}`),
	// Google AI Studio: AIza...
	regexp.MustCompile(`AIza[a-zA-Z0-9_-]{30,}`),
	regexp.MustCompile(`(?i)Bearer\s+[a-zA-Z0-9._-]{8,}`),
	regexp.MustCompile(`(?i)x-api-key:\s*[a-zA-Z0-9._-]{8,}`),
	// Gemini puts the key in the query string.
	regexp.MustCompile(`key=[a-zA-Z0-9_-]{8,}`),
	regexp.MustCompile(`[a-zA-Z0-9_-]{40,}`),
}

// Redact replaces every credential-looking substring of s.
func Redact(s string) string {
	for _, pattern := range credentialPatterns {
		s = pattern.ReplaceAllString(s, RedactedPlaceholder)
	}
	return s
}

// RedactedHandler wraps an slog.Handler and scrubs the message and every
// attribute of each record before passing it on.
type RedactedHandler struct {
	inner slog.Handler
}

// NewRedactedHandler wraps inner.
func NewRedactedHandler(inner slog.Handler) *RedactedHandler {
	return &RedactedHandler{inner: inner}
}

func (h *RedactedHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

func (h *RedactedHandler) Handle(ctx context.Context, r slog.Record) error {
	scrubbed := slog.NewRecord(r.Time, r.Level, Redact(r.Message), r.PC)
	r.Attrs(func(a slog.Attr) bool {
		scrubbed.AddAttrs(redactAttr(a))
		return true
	})
	return h.inner.Handle(ctx, scrubbed)
}

func (h *RedactedHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		redacted[i] = redactAttr(a)
	}
	return &RedactedHandler{inner: h.inner.WithAttrs(redacted)}
}

func (h *RedactedHandler) WithGroup(name string) slog.Handler {
	return &RedactedHandler{inner: h.inner.WithGroup(name)}
}

func redactAttr(a slog.Attr) slog.Attr {
	if isSensitiveKey(strings.ToLower(a.Key)) {
		return slog.String(a.Key, RedactedPlaceholder)
	}

	v := a.Value.Resolve()
	switch v.Kind() {
	case slog.KindString:
		return slog.String(a.Key, Redact(v.String()))
	case slog.KindGroup:
		group := v.Group()
		redacted := make([]any, len(group))
		for i, ga := range group {
			redacted[i] = redactAttr(ga)
		}
		return slog.Group(a.Key, redacted...)
	case slog.KindAny:
		switch x := v.Any().(type) {
		case error:
			return slog.String(a.Key, Redact(x.Error()))
		case []string:
			redacted := make([]string, len(x))
			for i, s := range x {
				redacted[i] = Redact(s)
			}
			return slog.Any(a.Key, redacted)
		}
	}
	return a
}

// containsKeys are sensitive anywhere in an attribute key.
var containsKeys = []string{
	"authorization",
	"api_key",
	"apikey",
	"api-key",
	"secret",
	"password",
	"credential",
}

// suffixKeys are sensitive only as a key suffix, so that counters such as
// prompt_tokens stay readable.
var suffixKeys = []string{
	"token",
	"bearer",
}

func isSensitiveKey(key string) bool {
	for _, k := range containsKeys {
		if strings.Contains(key, k) {
			return true
		}
	}
	for _, k := range suffixKeys {
		if strings.HasSuffix(key, k) {
			return true
		}
	}
	return false
}
