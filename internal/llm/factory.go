package llm

import (
	"fmt"

	"github.com/rohmatalpur/Wellness-and-Resilience-Diagnostic-AI/internal/config"
)

// NewProvider creates the completion provider named by cfg. The API key is
// read from the environment variable cfg.APIKeyEnv; a missing key is not an
// error here, the provider simply reports !Available().
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	name := cfg.Provider
	if name == "" {
		name = "groq"
	}

	pc := &ProviderConfig{
		Name:        name,
		Endpoint:    cfg.Endpoint,
		APIKey:      cfg.APIKey(),
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		Timeout:     cfg.Timeout,
	}

	switch name {
	case "groq":
		return NewGroqProvider(pc), nil
	case "openai":
		return NewOpenAIProvider(pc), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", name)
	}
}
