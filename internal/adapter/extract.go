package adapter

import (
	"encoding/json"
	"strings"
)

// fallbackFields are scanned, in order, when no known envelope matched.
var fallbackFields = []string{"explanation", "text", "content", "result", "response", "message"}

// ExtractText pulls an explanation out of a response of unknown schema.
// It tries, in order: choices[0].message.content, choices[0].text, an
// Anthropic-style content block array (joined with spaces), the flat
// fallbackFields, and output.text. A body that is valid JSON but matches none
// of these yields "" and no error; only undecodable bodies fail.
func ExtractText(body []byte) (string, error) {
	var data any
	if err := json.Unmarshal(body, &data); err != nil {
		return "", err
	}

	obj, ok := data.(map[string]any)
	if !ok {
		return "", nil
	}

	if choice, ok := firstChoice(obj); ok {
		if msg, ok := choice["message"].(map[string]any); ok {
			if content := stringField(msg, "content"); content != "" {
				return content, nil
			}
		}
		if text := stringField(choice, "text"); text != "" {
			return text, nil
		}
	}

	if blocks, ok := obj["content"].([]any); ok {
		if joined := joinTextBlocks(blocks); joined != "" {
			return joined, nil
		}
	}

	for _, field := range fallbackFields {
		if value := stringField(obj, field); value != "" {
			return value, nil
		}
	}

	if output, ok := obj["output"].(map[string]any); ok {
		if text := stringField(output, "text"); text != "" {
			return text, nil
		}
	}

	return "", nil
}

func firstChoice(obj map[string]any) (map[string]any, bool) {
	choices, ok := obj["choices"].([]any)
	if !ok || len(choices) == 0 {
		return nil, false
	}
	choice, ok := choices[0].(map[string]any)
	return choice, ok
}

func joinTextBlocks(blocks []any) string {
	texts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		block, ok := b.(map[string]any)
		if !ok {
			continue
		}
		if text := stringField(block, "text"); text != "" {
			texts = append(texts, text)
		}
	}
	return strings.Join(texts, " ")
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return s
}
