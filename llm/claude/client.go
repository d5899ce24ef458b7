package claude

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/m-mizutani/appforge/llm"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

var (
	claudePromptScope   = ctxlog.NewScope("claude_prompt", ctxlog.EnabledBy("APPFORGE_LOGGING_CLAUDE_PROMPT"))
	claudeResponseScope = ctxlog.NewScope("claude_response", ctxlog.EnabledBy("APPFORGE_LOGGING_CLAUDE_RESPONSE"))
)

const (
	DefaultModel     = "claude-sonnet-4-20250514"
	DefaultMaxTokens = 8192
)

// generationParameters represents the parameters for text generation.
type generationParameters struct {
	// Temperature controls randomness in the output.
	// Higher values make the output more random, lower values make it more focused.
	Temperature float64

	// MaxTokens limits the number of tokens to generate. Code generation
	// responses are large, so the default is higher than a chat client's.
	MaxTokens int64
}

// Client is a client for the Claude API.
type Client struct {
	apiClient apiClient

	// model is the model to use for messages.
	// It can be overridden using WithModel option.
	model string

	params generationParameters
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the model to use for messages.
// Default: [DefaultModel]
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.model = modelName
	}
}

// WithTemperature sets the temperature parameter for text generation.
// Range: 0.0 to 1.0
// Default: 0.7
func WithTemperature(temp float64) Option {
	return func(c *Client) {
		c.params.Temperature = temp
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
// Default: [DefaultMaxTokens]
func WithMaxTokens(maxTokens int64) Option {
	return func(c *Client) {
		c.params.MaxTokens = maxTokens
	}
}

// New creates a new client for the Claude API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("apiKey is required")
	}

	client := &Client{
		model: DefaultModel,
		params: generationParameters{
			Temperature: 0.7,
			MaxTokens:   DefaultMaxTokens,
		},
	}

	for _, option := range options {
		option(client)
	}

	if client.apiClient == nil {
		newClient := anthropic.NewClient(
			option.WithAPIKey(apiKey),
		)
		client.apiClient = &realAPIClient{client: &newClient}
	}

	return client, nil
}

// createRequest creates a single-turn message request. The system prompt
// goes to the dedicated System field as []anthropic.TextBlockParam.
func (c *Client) createRequest(systemPrompt, userMessage string) anthropic.MessageNewParams {
	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.params.MaxTokens,
		Temperature: anthropic.Float(c.params.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(userMessage)),
		},
	}
	if systemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: systemPrompt}}
	}
	return params
}

// SendMessage sends one system prompt and one user message and returns the
// concatenated text blocks of the reply.
func (c *Client) SendMessage(ctx context.Context, systemPrompt, userMessage, sessionID string) (string, error) {
	params := c.createRequest(systemPrompt, userMessage)

	ctxlog.From(ctx, claudePromptScope).Info("Claude prompt",
		"model", c.model,
		"session_id", sessionID,
		"system_prompt", systemPrompt,
		"user_message", userMessage,
	)

	resp, err := c.apiClient.MessagesNew(ctx, params)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create message",
			goerr.V("model", c.model),
			goerr.V("session_id", sessionID),
		)
	}

	var texts []string
	for _, content := range resp.Content {
		if content.Type == "text" {
			texts = append(texts, content.Text)
		}
	}
	if len(texts) == 0 {
		return "", goerr.Wrap(llm.ErrEmptyResponse, "no text block in message",
			goerr.V("model", c.model),
			goerr.V("stop_reason", resp.StopReason),
		)
	}

	text := strings.Join(texts, "")
	ctxlog.From(ctx, claudeResponseScope).Info("Claude response",
		"model", c.model,
		"session_id", sessionID,
		"stop_reason", resp.StopReason,
		"input_tokens", resp.Usage.InputTokens,
		"output_tokens", resp.Usage.OutputTokens,
		"text", text,
	)

	return text, nil
}
