package claude_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/m-mizutani/appforge/llm"
	"github.com/m-mizutani/appforge/llm/claude"
	"github.com/m-mizutani/gt"
)

func TestClaudeSendMessageLive(t *testing.T) {
	apiKey, ok := os.LookupEnv("TEST_CLAUDE_API_KEY")
	if !ok {
		t.Skip("TEST_CLAUDE_API_KEY is not set")
	}

	ctx := context.Background()
	client, err := claude.New(ctx, apiKey)
	gt.NoError(t, err)

	text, err := client.SendMessage(ctx, "Reply with JSON only.", `Return {"greeting": "hello"}`, "live-test")
	gt.NoError(t, err)
	gt.True(t, len(text) > 0)
}

func TestSendMessage(t *testing.T) {
	var captured anthropic.MessageNewParams
	api := claude.APIClientFunc(func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
		captured = params
		return &anthropic.Message{
			Content: []anthropic.ContentBlockUnion{
				{Type: "text", Text: `{"steps": [], `},
				{Type: "text", Text: `"dependencies": []}`},
			},
		}, nil
	})

	client, err := claude.New(context.Background(), "test-key", claude.WithAPIClient(api), claude.WithMaxTokens(1024))
	gt.NoError(t, err)

	text, err := client.SendMessage(context.Background(), "system prompt", "user message", "generate-plan-1")
	gt.NoError(t, err)
	gt.Equal(t, text, `{"steps": [], "dependencies": []}`)

	gt.Equal(t, string(captured.Model), claude.DefaultModel)
	gt.Equal(t, captured.MaxTokens, int64(1024))
	gt.Equal(t, len(captured.System), 1)
	gt.Equal(t, captured.System[0].Text, "system prompt")
	gt.Equal(t, len(captured.Messages), 1)
	gt.Equal(t, captured.Messages[0].Role, anthropic.MessageParamRoleUser)
}

func TestSendMessageErrors(t *testing.T) {
	t.Run("api error is wrapped", func(t *testing.T) {
		apiErr := errors.New("overloaded")
		api := claude.APIClientFunc(func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
			return nil, apiErr
		})
		client, err := claude.New(context.Background(), "test-key", claude.WithAPIClient(api))
		gt.NoError(t, err)

		_, err = client.SendMessage(context.Background(), "s", "u", "session")
		gt.True(t, errors.Is(err, apiErr))
	})

	t.Run("no text block", func(t *testing.T) {
		api := claude.APIClientFunc(func(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
			return &anthropic.Message{}, nil
		})
		client, err := claude.New(context.Background(), "test-key", claude.WithAPIClient(api))
		gt.NoError(t, err)

		_, err = client.SendMessage(context.Background(), "s", "u", "session")
		gt.True(t, errors.Is(err, llm.ErrEmptyResponse))
	})

	t.Run("missing api key", func(t *testing.T) {
		_, err := claude.New(context.Background(), "")
		gt.Error(t, err)
	})
}
