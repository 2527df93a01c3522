// Package models holds the wire and domain types shared between the
// provider adapters, the debate orchestrator, and the HTTP surface.
package models

import "fmt"

// ProviderID identifies one of the supported text-generation backends.
// The set is closed: adding a provider means adding a constant here and
// a case to every switch that consumes it, which the compiler checks.
type ProviderID string

const (
	ProviderOpenAI    ProviderID = "openai"
	ProviderAnthropic ProviderID = "anthropic"
	ProviderGemini    ProviderID = "gemini"
	ProviderMistral   ProviderID = "mistral"
	ProviderOllama    ProviderID = "ollama"
)

// AllProviderIDs lists every supported provider in stable order.
func AllProviderIDs() []ProviderID {
	return []ProviderID{
		ProviderOpenAI,
		ProviderAnthropic,
		ProviderGemini,
		ProviderMistral,
		ProviderOllama,
	}
}

// ParseProviderID validates a wire-format provider name.
func ParseProviderID(s string) (ProviderID, error) {
	switch ProviderID(s) {
	case ProviderOpenAI, ProviderAnthropic, ProviderGemini, ProviderMistral, ProviderOllama:
		return ProviderID(s), nil
	default:
		return "", fmt.Errorf("unknown provider %q", s)
	}
}

// DisplayName returns the human-readable provider name used when a
// provider's answer is shown back to the other models.
func (id ProviderID) DisplayName() string {
	switch id {
	case ProviderOpenAI:
		return "OpenAI"
	case ProviderAnthropic:
		return "Claude"
	case ProviderGemini:
		return "Gemini"
	case ProviderMistral:
		return "Mistral"
	case ProviderOllama:
		return "Ollama"
	default:
		return string(id)
	}
}

// LLMRequest describes one generation call to a provider.
type LLMRequest struct {
	ID           string
	Prompt       string
	SystemPrompt string
	Model        string
	Temperature  float64
	MaxTokens    int
}

// Fragment is one incremental piece of a provider's streamed output.
// A fragment with Err set is terminal: no further fragments follow and
// the channel is closed. Text accumulated before the error is partial
// and must not be treated as a complete answer.
type Fragment struct {
	Text string
	Err  error
}
