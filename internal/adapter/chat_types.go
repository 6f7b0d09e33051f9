package adapter

// Wire types for endpoints reached through the custom provider.
// They mirror the public chat-completion and messages formats.

// ChatMessage represents a single message in a chat-style envelope.
type ChatMessage struct {
	// Role is one of: "system", "user", "assistant".
	Role string `json:"role"`

	// Content is the message text content.
	Content string `json:"content"`
}

// ChatRequest is the OpenAI-compatible chat completion envelope.
type ChatRequest struct {
	// Model specifies which model to use (e.g., "gpt-3.5-turbo", "llama3-8b-8192").
	Model string `json:"model"`

	// Messages contains the system instruction and the prompt.
	Messages []ChatMessage `json:"messages"`

	// Temperature controls randomness.
	Temperature float64 `json:"temperature"`

	// MaxTokens limits the response length.
	MaxTokens int `json:"max_tokens"`
}

// GenericRequest is sent to endpoints whose vendor could not be recognised.
// It carries the prompt both as a flat field and as a chat message array so
// that receivers expecting either shape can serve it.
type GenericRequest struct {
	Prompt      string        `json:"prompt"`
	Level       string        `json:"level"`
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
	Messages    []ChatMessage `json:"messages"`
}

// chatMessages builds the system+user pair shared by chat envelopes.
func chatMessages(system, prompt string) []ChatMessage {
	return []ChatMessage{
		{Role: "system", Content: system},
		{Role: "user", Content: prompt},
	}
}
