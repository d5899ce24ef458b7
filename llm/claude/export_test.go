package claude

import (
	"context"

	"github.com/anthropics/anthropic-sdk-go"
)

type APIClient = apiClient

// APIClientFunc adapts a function to the apiClient interface.
type APIClientFunc func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error)

func (f APIClientFunc) MessagesNew(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	return f(ctx, params)
}

// WithAPIClient replaces the real Claude client for testing.
func WithAPIClient(client APIClient) Option {
	return func(c *Client) {
		c.apiClient = client
	}
}
