package handler

import (
	"sync"
	"unicode"

	"github.com/hpn/hpn-explainer/internal/domain"
)

// TokensPerWord is the approximation ratio (1 word ≈ 1.3 tokens).
const TokensPerWord = 1.3

// EstimateTokens estimates the number of tokens in a text string.
// Uses a lightweight approximation: 1 word ≈ 1.3 tokens.
func EstimateTokens(text string) int {
	if text == "" {
		return 0
	}

	wordCount := 0
	inWord := false

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			if !inWord {
				wordCount++
				inWord = true
			}
		} else {
			inWord = false
		}
	}

	tokens := int(float64(wordCount) * TokensPerWord)
	if tokens == 0 && wordCount > 0 {
		tokens = 1
	}

	return tokens
}

// UsageSnapshot is the running total reported by /health.
type UsageSnapshot struct {
	Requests          int64            `json:"requests"`
	Fallbacks         int64            `json:"fallbacks"`
	PromptTokens      int64            `json:"prompt_tokens"`
	ExplanationTokens int64            `json:"explanation_tokens"`
	ByReason          map[string]int64 `json:"by_reason,omitempty"`
}

// UsageTracker accumulates estimated token usage across requests.
type UsageTracker struct {
	mu       sync.Mutex
	snapshot UsageSnapshot
}

// NewUsageTracker creates an empty tracker.
func NewUsageTracker() *UsageTracker {
	return &UsageTracker{snapshot: UsageSnapshot{ByReason: make(map[string]int64)}}
}

// Record adds one served explanation. Prompt tokens count whenever a
// provider was asked, even if its answer was then discarded.
func (u *UsageTracker) Record(result domain.Result) {
	u.mu.Lock()
	defer u.mu.Unlock()

	u.snapshot.Requests++
	u.snapshot.PromptTokens += int64(EstimateTokens(result.Prompt))
	if result.IsFallback() {
		u.snapshot.Fallbacks++
		u.snapshot.ByReason[string(result.Reason)]++
		return
	}
	u.snapshot.ExplanationTokens += int64(EstimateTokens(result.Text))
}

// Snapshot returns a copy of the totals.
func (u *UsageTracker) Snapshot() UsageSnapshot {
	u.mu.Lock()
	defer u.mu.Unlock()

	s := u.snapshot
	s.ByReason = make(map[string]int64, len(u.snapshot.ByReason))
	for k, v := range u.snapshot.ByReason {
		s.ByReason[k] = v
	}
	return s
}
