package llm

import (
	"context"
)

// Client is implemented by every provider adapter under llm/. It sends a
// single system prompt and a single user message and returns the model's
// text reply. sessionID is a namespacing hint only; adapters never keep
// conversation state between calls.
type Client interface {
	SendMessage(ctx context.Context, systemPrompt, userMessage, sessionID string) (string, error)
}
