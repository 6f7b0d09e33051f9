// Package ui provides colorized console output for the explainer server:
// status badges, request lines and the startup banner.
package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/fatih/color"
)

// ══════════════════════════════════════════════════════════════════════════════
// OUTPUT & COLORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	outMu sync.Mutex
	out   io.Writer = color.Output
)

// SetOutput redirects console output, e.g. to io.Discard in tests.
func SetOutput(w io.Writer) {
	outMu.Lock()
	out = w
	outMu.Unlock()
}

// emit runs fn with the current writer, serialising concurrent lines.
func emit(fn func(w io.Writer)) {
	outMu.Lock()
	defer outMu.Unlock()
	fn(out)
}

var (
	// Badge colors
	successBadge = color.New(color.BgGreen, color.FgBlack, color.Bold)
	warningBadge = color.New(color.FgYellow, color.Bold)
	errorBadge   = color.New(color.BgRed, color.FgWhite, color.Bold)
	infoBadge    = color.New(color.FgCyan, color.Bold)
	debugBadge   = color.New(color.FgMagenta)

	// Text colors
	successText = color.New(color.FgGreen, color.Bold)
	warningText = color.New(color.FgYellow)
	errorText   = color.New(color.FgRed)
	infoText    = color.New(color.FgCyan)
	mutedText   = color.New(color.FgHiBlack)
	accentText  = color.New(color.FgMagenta, color.Bold)
	neonBlue    = color.New(color.FgHiCyan, color.Bold)

	// Method colors
	methodPOST  = color.New(color.BgHiMagenta, color.FgBlack, color.Bold)
	methodGET   = color.New(color.BgHiCyan, color.FgBlack, color.Bold)
	methodPUT   = color.New(color.BgHiYellow, color.FgBlack, color.Bold)
	methodPATCH = color.New(color.BgHiBlue, color.FgBlack, color.Bold)
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS LINES
// ══════════════════════════════════════════════════════════════════════════════

// PrintExplained reports an explanation produced by a provider.
// Format: ✓ [openai] ~120 tokens
func PrintExplained(source string, tokens int) {
	emit(func(w io.Writer) {
		successText.Fprint(w, "✓ ")
		accentText.Fprintf(w, "[%s]", source)
		mutedText.Fprintf(w, " ~%d tokens\n", tokens)
	})
}

// PrintFallback reports an offline explanation and why it was used.
// Format: ⚠️ [FALLBACK] no-credential
func PrintFallback(reason string) {
	emit(func(w io.Writer) {
		fmt.Fprint(w, "⚠️  ")
		warningBadge.Fprint(w, "[FALLBACK]")
		fmt.Fprint(w, " ")
		warningText.Fprintln(w, reason)
	})
}

// PrintInfo logs general server information.
// Format: [EXPLAINER] message
func PrintInfo(msg string) {
	emit(func(w io.Writer) {
		infoBadge.Fprint(w, "[EXPLAINER]")
		fmt.Fprint(w, " ")
		infoText.Fprintln(w, msg)
	})
}

// PrintCacheHit logs a cache hit with lightning styling.
// Format: ⚡ CACHE HIT | key:xxxx...xxxx | openai
func PrintCacheHit(cacheKey, source string) {
	emit(func(w io.Writer) {
		neonBlue.Fprint(w, "⚡ CACHE HIT ")
		fmt.Fprint(w, "| key:")
		mutedText.Fprint(w, shorten(cacheKey))
		fmt.Fprint(w, " | ")
		accentText.Fprintln(w, source)
	})
}

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST LOGGING
// ══════════════════════════════════════════════════════════════════════════════

// PrintRequest logs a request with styled output.
// Color-codes status, method, and latency for quick visual parsing.
func PrintRequest(method, path string, status int, latency time.Duration, source string) {
	emit(func(w io.Writer) {
		mutedText.Fprintf(w, "%s ", time.Now().Format("15:04:05"))

		printMethodBadge(w, method)
		fmt.Fprint(w, " ")

		fmt.Fprintf(w, "%-26s ", truncatePath(path, 26))

		printStatusBadge(w, status)
		fmt.Fprint(w, " ")

		printLatency(w, latency)

		if source != "" {
			mutedText.Fprintf(w, " via:%s", source)
		}

		fmt.Fprintln(w)
	})
}

func printMethodBadge(w io.Writer, method string) {
	switch method {
	case "POST":
		methodPOST.Fprintf(w, " %-5s ", method)
	case "GET":
		methodGET.Fprintf(w, " %-5s ", method)
	case "PUT":
		methodPUT.Fprintf(w, " %-5s ", method)
	case "PATCH":
		methodPATCH.Fprintf(w, " %-5s ", method)
	default:
		debugBadge.Fprintf(w, " %-5s ", method)
	}
}

func printStatusBadge(w io.Writer, status int) {
	switch {
	case status >= 200 && status < 300:
		successBadge.Fprintf(w, " %d ", status)
	case status >= 300 && status < 400:
		infoBadge.Fprintf(w, " %d ", status)
	case status >= 400 && status < 500:
		warningBadge.Fprintf(w, " %d ", status)
	default:
		errorBadge.Fprintf(w, " %d ", status)
	}
}

// printLatency prints latency with color gradient.
// Green: < 1s, Yellow: < 5s, Red: >= 5s. Provider calls are slow.
func printLatency(w io.Writer, latency time.Duration) {
	ms := latency.Milliseconds()
	latencyStr := fmt.Sprintf("%5dms", ms)

	switch {
	case ms < 1000:
		successText.Fprint(w, latencyStr)
	case ms < 5000:
		warningText.Fprint(w, latencyStr)
	default:
		errorText.Fprint(w, latencyStr)
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// UTILITY FUNCTIONS
// ══════════════════════════════════════════════════════════════════════════════

// shorten returns xxxx...xxxx for long identifiers.
func shorten(s string) string {
	if len(s) <= 8 {
		return s
	}
	return s[:4] + "..." + s[len(s)-4:]
}

// truncatePath truncates a path to maxLen characters.
func truncatePath(path string, maxLen int) string {
	if len(path) <= maxLen {
		return path
	}
	return path[:maxLen-3] + "..."
}

// ══════════════════════════════════════════════════════════════════════════════
// STARTUP MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// PrintStartupInfo prints the listen address and the active provider.
func PrintStartupInfo(addr, provider string, useMock bool) {
	emit(func(w io.Writer) {
		fmt.Fprintln(w)
		infoBadge.Fprint(w, "[EXPLAINER]")
		fmt.Fprint(w, " Server starting on ")
		neonBlue.Fprintf(w, "http://%s\n", addr)

		infoBadge.Fprint(w, "[EXPLAINER]")
		fmt.Fprint(w, " Provider: ")
		accentText.Fprint(w, provider)
		fmt.Fprint(w, " | Mode: ")
		if useMock {
			warningText.Fprintln(w, "fallback (no API key)")
		} else {
			successText.Fprintln(w, "live")
		}

		fmt.Fprintln(w)
		printEndpoints(w)
	})
}

func printEndpoints(w io.Writer) {
	endpoints := []struct {
		method string
		path   string
		desc   string
	}{
		{"POST", "/v1/explain", "Explain a post"},
		{"GET", "/v1/settings", "Current settings"},
		{"PUT", "/v1/settings", "Save provider and API key"},
		{"PATCH", "/v1/settings/generation", "Temperature / max tokens"},
		{"PUT", "/v1/settings/audience", "Custom audience"},
		{"GET", "/health", "Health check"},
	}

	mutedText.Fprintln(w, "  ┌──────────────────────────────────────────────────────────────────┐")
	for _, e := range endpoints {
		mutedText.Fprint(w, "  │ ")
		printMethodBadge(w, e.method)
		fmt.Fprintf(w, " %-25s ", e.path)
		mutedText.Fprintf(w, "%-26s", e.desc)
		mutedText.Fprintln(w, " │")
	}
	mutedText.Fprintln(w, "  └──────────────────────────────────────────────────────────────────┘")
	fmt.Fprintln(w)
}

// PrintShutdown prints a styled shutdown message.
func PrintShutdown() {
	emit(func(w io.Writer) {
		fmt.Fprintln(w)
		warningBadge.Fprint(w, "[SHUTDOWN]")
		warningText.Fprintln(w, " Graceful shutdown initiated...")
	})
}

// PrintGoodbye prints a styled goodbye message.
func PrintGoodbye() {
	emit(func(w io.Writer) {
		successBadge.Fprint(w, " OK ")
		fmt.Fprint(w, " ")
		successText.Fprintln(w, "Server stopped. Goodbye! 👋")
	})
}
