package domain

import (
	"fmt"
	"strings"
)

// Provider is the capability tag of an LLM provider family. It is resolved
// once when a generation config is built and drives prompt formatting;
// nothing downstream inspects model id strings.
type Provider int

// Known provider families.
const (
	ProviderGeneric Provider = iota
	ProviderOpenAI
	ProviderAnthropic
	ProviderGemini
)

// ParseProvider converts a config string into a provider tag.
func ParseProvider(s string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "generic", "other":
		return ProviderGeneric, nil
	case "openai":
		return ProviderOpenAI, nil
	case "anthropic":
		return ProviderAnthropic, nil
	case "gemini", "google":
		return ProviderGemini, nil
	default:
		return ProviderGeneric, fmt.Errorf("unknown provider %q", s)
	}
}

// String returns the provider name for logs and metrics labels.
func (p Provider) String() string {
	switch p {
	case ProviderOpenAI:
		return "openai"
	case ProviderAnthropic:
		return "anthropic"
	case ProviderGemini:
		return "gemini"
	default:
		return "generic"
	}
}

// StructuredSystemParts reports whether the provider accepts the system
// prompt as a list of content parts, letting the invariant prefix be sent
// as a separate block.
func (p Provider) StructuredSystemParts() bool {
	return p == ProviderAnthropic || p == ProviderGemini
}

// SupportsPromptCaching reports whether the provider honors explicit
// cache_control markers on system content parts.
func (p Provider) SupportsPromptCaching() bool {
	return p == ProviderAnthropic
}

// GenerationConfig is the per-request model configuration. Provider is
// resolved from config at startup, not derived from the model id.
type GenerationConfig struct {
	Model       string
	Provider    Provider
	Temperature float32
	MaxTokens   int
}
