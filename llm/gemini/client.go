package gemini

import (
	"context"
	"strings"

	"github.com/m-mizutani/appforge/llm"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	genai "google.golang.org/genai"
)

var (
	geminiPromptScope   = ctxlog.NewScope("gemini_prompt", ctxlog.EnabledBy("APPFORGE_LOGGING_GEMINI_PROMPT"))
	geminiResponseScope = ctxlog.NewScope("gemini_response", ctxlog.EnabledBy("APPFORGE_LOGGING_GEMINI_RESPONSE"))
)

const DefaultModel = "gemini-2.5-flash"

// Client is a client for the Gemini API using an API key (Gemini Developer API backend).
type Client struct {
	apiClient apiClient

	// model is the model to use for content generation.
	model string

	temperature *float32
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the model to use for content generation.
// Default: [DefaultModel]
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.model = modelName
	}
}

// WithTemperature sets the temperature parameter for text generation.
func WithTemperature(temp float32) Option {
	return func(c *Client) {
		c.temperature = &temp
	}
}

// New creates a new client for the Gemini API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("apiKey is required")
	}

	client := &Client{
		model: DefaultModel,
	}

	for _, option := range options {
		option(client)
	}

	if client.apiClient == nil {
		newClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create Gemini client")
		}
		client.apiClient = &realAPIClient{client: newClient}
	}

	return client, nil
}

func (c *Client) createConfig(systemPrompt string) *genai.GenerateContentConfig {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      c.temperature,
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Role: "system",
			Parts: []*genai.Part{
				{Text: systemPrompt},
			},
		}
	}
	return config
}

// SendMessage sends one system prompt and one user message and returns the
// text parts of the first candidate that has any.
func (c *Client) SendMessage(ctx context.Context, systemPrompt, userMessage, sessionID string) (string, error) {
	config := c.createConfig(systemPrompt)
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: userMessage}},
		},
	}

	ctxlog.From(ctx, geminiPromptScope).Info("Gemini prompt",
		"model", c.model,
		"session_id", sessionID,
		"system_prompt", systemPrompt,
		"user_message", userMessage,
	)

	resp, err := c.apiClient.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate content",
			goerr.V("model", c.model),
			goerr.V("session_id", sessionID),
		)
	}

	text := extractText(resp)
	if text == "" {
		return "", goerr.Wrap(llm.ErrEmptyResponse, "no text part in response", goerr.V("model", c.model))
	}

	logger := ctxlog.From(ctx, geminiResponseScope)
	if resp.UsageMetadata != nil {
		logger = logger.With(
			"prompt_tokens", resp.UsageMetadata.PromptTokenCount,
			"candidates_tokens", resp.UsageMetadata.CandidatesTokenCount,
		)
	}
	logger.Info("Gemini response", "model", c.model, "session_id", sessionID, "text", text)

	return text, nil
}

func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}

		var b strings.Builder
		for _, part := range candidate.Content.Parts {
			if part != nil && part.Text != "" && !part.Thought {
				b.WriteString(part.Text)
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}

	return ""
}
