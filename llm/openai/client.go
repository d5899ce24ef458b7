package openai

import (
	"context"

	"github.com/m-mizutani/appforge/llm"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/sashabaranov/go-openai"
)

var (
	// openaiPromptScope is the logging scope for OpenAI prompts
	openaiPromptScope = ctxlog.NewScope("openai_prompt", ctxlog.EnabledBy("APPFORGE_LOGGING_OPENAI_PROMPT"))

	// openaiResponseScope is the logging scope for OpenAI responses
	openaiResponseScope = ctxlog.NewScope("openai_response", ctxlog.EnabledBy("APPFORGE_LOGGING_OPENAI_RESPONSE"))
)

const DefaultModel = "gpt-4o"

// Client is a client for the OpenAI chat completion API.
type Client struct {
	apiClient apiClient

	// model is the model to use for chat completions.
	// It can be overridden using WithModel option.
	model string

	// baseURL is the custom base URL for the OpenAI API.
	// If empty, uses the default OpenAI API endpoints.
	baseURL string

	// Temperature controls randomness in the output. Zero leaves it to the API default.
	temperature float32

	// jsonMode requests a JSON object response format.
	jsonMode bool
}

// Option is a function that configures a Client.
type Option func(*Client)

// WithModel sets the model to use for chat completions.
// See default model in [DefaultModel].
func WithModel(modelName string) Option {
	return func(c *Client) {
		c.model = modelName
	}
}

// WithBaseURL sets the custom base URL for the OpenAI API.
// Allows usage with compatible endpoints, proxies, or self-hosted instances.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithTemperature sets the temperature parameter for text generation.
func WithTemperature(temp float32) Option {
	return func(c *Client) {
		c.temperature = temp
	}
}

// WithJSONMode toggles the JSON object response format. It is enabled by
// default; disable it for compatible endpoints that reject response_format.
func WithJSONMode(enabled bool) Option {
	return func(c *Client) {
		c.jsonMode = enabled
	}
}

// New creates a new client for the OpenAI API.
func New(ctx context.Context, apiKey string, options ...Option) (*Client, error) {
	if apiKey == "" {
		return nil, goerr.New("apiKey is required")
	}

	client := &Client{
		model:    DefaultModel,
		jsonMode: true,
	}

	for _, option := range options {
		option(client)
	}

	if client.apiClient == nil {
		config := openai.DefaultConfig(apiKey)
		if client.baseURL != "" {
			config.BaseURL = client.baseURL
		}
		client.apiClient = &realAPIClient{client: openai.NewClientWithConfig(config)}
	}

	return client, nil
}

// createRequest builds a single-turn chat completion request.
func (c *Client) createRequest(systemPrompt, userMessage, sessionID string) openai.ChatCompletionRequest {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: userMessage},
		},
		Temperature: c.temperature,
		User:        sessionID,
	}

	if c.jsonMode {
		req.ResponseFormat = &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		}
	}

	return req
}

// SendMessage sends one system prompt and one user message and returns the
// content of the first choice.
func (c *Client) SendMessage(ctx context.Context, systemPrompt, userMessage, sessionID string) (string, error) {
	req := c.createRequest(systemPrompt, userMessage, sessionID)

	ctxlog.From(ctx, openaiPromptScope).Info("OpenAI prompt",
		"model", c.model,
		"session_id", sessionID,
		"system_prompt", systemPrompt,
		"user_message", userMessage,
	)

	resp, err := c.apiClient.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", goerr.Wrap(err, "failed to create chat completion",
			goerr.V("model", c.model),
			goerr.V("session_id", sessionID),
		)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", goerr.Wrap(llm.ErrEmptyResponse, "no content in chat completion",
			goerr.V("model", c.model),
			goerr.V("choices", len(resp.Choices)),
		)
	}

	text := resp.Choices[0].Message.Content
	ctxlog.From(ctx, openaiResponseScope).Info("OpenAI response",
		"model", c.model,
		"session_id", sessionID,
		"finish_reason", resp.Choices[0].FinishReason,
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
		"text", text,
	)

	return text, nil
}
