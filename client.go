package appforge

import (
	"context"

	"github.com/m-mizutani/appforge/llm"
	"github.com/m-mizutani/appforge/llm/claude"
	"github.com/m-mizutani/appforge/llm/gemini"
	"github.com/m-mizutani/appforge/llm/openai"
	"github.com/m-mizutani/goerr/v2"
)

//go:generate go run github.com/matryer/moq@v0.5.3 -out mock/mock.go -pkg mock . ChatClient

// ChatClient is the external chat model. SendMessage is called exactly once
// per orchestrator operation. sessionID only namespaces the exchange.
type ChatClient interface {
	SendMessage(ctx context.Context, systemPrompt, userMessage, sessionID string) (string, error)
}

var _ ChatClient = llm.Client(nil)

func newChatClient(ctx context.Context, cfg Config) (ChatClient, error) {
	switch cfg.provider() {
	case llm.ProviderOpenAI:
		var options []openai.Option
		if cfg.Model != "" {
			options = append(options, openai.WithModel(cfg.Model))
		}
		if cfg.BaseURL != "" {
			options = append(options, openai.WithBaseURL(cfg.BaseURL))
		}
		return openai.New(ctx, cfg.APIKey, options...)

	case llm.ProviderAnthropic:
		var options []claude.Option
		if cfg.Model != "" {
			options = append(options, claude.WithModel(cfg.Model))
		}
		return claude.New(ctx, cfg.APIKey, options...)

	case llm.ProviderGemini:
		var options []gemini.Option
		if cfg.Model != "" {
			options = append(options, gemini.WithModel(cfg.Model))
		}
		return gemini.New(ctx, cfg.APIKey, options...)
	}

	return nil, goerr.Wrap(ErrUnsupportedProvider, "no adapter for provider", goerr.V("provider", cfg.Provider))
}
