package llm

import "fmt"

// Config selects and authenticates a provider.
type Config struct {
	Provider     string // "anthropic", "openai" or "" for none
	Model        string
	AnthropicKey string
	OpenAIKey    string
}

const (
	defaultAnthropicModel = "claude-sonnet-4-20250514"
	defaultOpenAIModel    = "gpt-4o-mini"
)

// NewProvider builds the configured provider. An empty provider name
// returns ErrNotConfigured.
func NewProvider(cfg Config) (Provider, error) {
	switch cfg.Provider {
	case "", "none":
		return nil, ErrNotConfigured
	case "anthropic":
		if cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set")
		}
		return NewAnthropicProvider(cfg.AnthropicKey, modelOr(cfg.Model, defaultAnthropicModel)), nil
	case "openai":
		if cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("OPENAI_API_KEY is not set")
		}
		return NewOpenAIProvider(cfg.OpenAIKey, modelOr(cfg.Model, defaultOpenAIModel)), nil
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", cfg.Provider)
	}
}

func modelOr(model, fallback string) string {
	if model != "" {
		return model
	}
	return fallback
}
