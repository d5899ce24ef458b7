package llm

import (
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrEmptyResponse is returned by an adapter when the provider answered
	// without any text content.
	ErrEmptyResponse = errors.New("empty response from model")

	// ErrUnsupportedProvider is returned for a provider name that has no adapter.
	ErrUnsupportedProvider = errors.New("unsupported provider")
)

// Provider identifies the backing model service.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGemini    Provider = "gemini"

	DefaultProvider = ProviderOpenAI
)

// ParseProvider normalizes a provider name. Empty input selects
// DefaultProvider and "claude" is accepted as an alias of anthropic.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "":
		return DefaultProvider, nil
	case string(ProviderOpenAI):
		return ProviderOpenAI, nil
	case string(ProviderAnthropic), "claude":
		return ProviderAnthropic, nil
	case string(ProviderGemini):
		return ProviderGemini, nil
	}

	return "", goerr.Wrap(ErrUnsupportedProvider, "unknown provider name", goerr.V("provider", name))
}
