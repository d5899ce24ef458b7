package gemini

import (
	"context"

	genai "google.golang.org/genai"
)

type APIClient = apiClient

var ExtractText = extractText

// APIClientFunc adapts a function to the apiClient interface.
type APIClientFunc func(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)

func (f APIClientFunc) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	return f(ctx, model, contents, config)
}

// WithAPIClient replaces the real Gemini client for testing.
func WithAPIClient(client APIClient) Option {
	return func(c *Client) {
		c.apiClient = client
	}
}
