package adapter

import "strings"

// Envelope selects the request body shape sent to a custom endpoint.
type Envelope string

const (
	EnvelopeGeneric   Envelope = "generic"
	EnvelopeChat      Envelope = "chat"
	EnvelopeAnthropic Envelope = "anthropic"
)

// Vendor describes a recognised API behind a custom endpoint URL.
type Vendor struct {
	Name         string
	Match        string // substring looked for in the endpoint URL
	Envelope     Envelope
	DefaultModel string
}

// Vendors is checked in order; the first Match found in the URL wins.
var Vendors = []Vendor{
	{Name: "openai", Match: "api.openai.com", Envelope: EnvelopeChat, DefaultModel: DefaultOpenAIModel},
	{Name: "anthropic", Match: "api.anthropic.com", Envelope: EnvelopeAnthropic, DefaultModel: DefaultAnthropicModel},
	{Name: "deepseek", Match: "api.deepseek.com", Envelope: EnvelopeChat, DefaultModel: DefaultDeepSeekModel},
	{Name: "groq", Match: "api.groq.com", Envelope: EnvelopeChat, DefaultModel: "llama3-8b-8192"},
	{Name: "mistral", Match: "api.mistral.ai", Envelope: EnvelopeChat, DefaultModel: "mistral-small-latest"},
	{Name: "openrouter", Match: "openrouter.ai", Envelope: EnvelopeChat, DefaultModel: "openai/gpt-3.5-turbo"},
	{Name: "together", Match: "api.together.xyz", Envelope: EnvelopeChat, DefaultModel: "mistralai/Mixtral-8x7B-Instruct-v0.1"},
}

// genericVendor is used when no entry in Vendors matches.
var genericVendor = Vendor{Name: "generic", Envelope: EnvelopeGeneric}

// Sniff returns the vendor whose Match occurs in endpoint, case-insensitively.
// The boolean is false, and the generic vendor returned, when nothing matches.
func Sniff(endpoint string) (Vendor, bool) {
	lower := strings.ToLower(endpoint)
	for _, v := range Vendors {
		if strings.Contains(lower, v.Match) {
			return v, true
		}
	}
	return genericVendor, false
}
