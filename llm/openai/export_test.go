package openai

import (
	"context"

	"github.com/sashabaranov/go-openai"
)

// Export for testing
type APIClient = apiClient

// APIClientFunc adapts a function to the apiClient interface.
type APIClientFunc func(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)

func (f APIClientFunc) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	return f(ctx, req)
}

// WithAPIClient replaces the real OpenAI client for testing.
func WithAPIClient(client APIClient) Option {
	return func(c *Client) {
		c.apiClient = client
	}
}
