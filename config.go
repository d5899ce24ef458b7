package appforge

import (
	"github.com/m-mizutani/appforge/llm"
	"github.com/m-mizutani/goerr/v2"
)

// Config selects and authenticates the model provider.
type Config struct {
	// APIKey is the provider credential. Required.
	APIKey string

	// Provider is one of "openai", "anthropic" (or "claude") and "gemini".
	// Empty selects openai.
	Provider string

	// Model is the provider model identifier. Empty selects the adapter's
	// default model (gpt-4o for openai).
	Model string

	// BaseURL points the openai provider at a compatible endpoint or proxy.
	// Other providers reject it.
	BaseURL string
}

// Validate checks the configuration without creating any client.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return goerr.Wrap(ErrMissingAPIKey, "set EMERGENT_LLM_KEY or Config.APIKey")
	}
	p, err := llm.ParseProvider(c.Provider)
	if err != nil {
		return err
	}
	if c.BaseURL != "" && p != llm.ProviderOpenAI {
		return goerr.Wrap(ErrInvalidParameter, "base URL is only supported by the openai provider",
			goerr.V("provider", c.Provider))
	}
	return nil
}

func (c Config) provider() llm.Provider {
	p, err := llm.ParseProvider(c.Provider)
	if err != nil {
		return ""
	}
	return p
}
