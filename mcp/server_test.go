package mcp_test

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/appforge"
	"github.com/m-mizutani/appforge/mcp"
	"github.com/m-mizutani/appforge/mock"
	"github.com/m-mizutani/gt"
	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

func newServer(t *testing.T, client *mock.ChatClientMock) *mcp.Server {
	t.Helper()
	o, err := appforge.New(context.Background(), appforge.Config{APIKey: "test-key"}, appforge.WithChatClient(client))
	gt.NoError(t, err)
	return mcp.New(o)
}

func resultText(t *testing.T, result *mcpgo.CallToolResult) string {
	t.Helper()
	gt.Equal(t, len(result.Content), 1)
	text, ok := result.Content[0].(mcpgo.TextContent)
	gt.True(t, ok)
	return text.Text
}

func TestServerInfo(t *testing.T) {
	o, err := appforge.New(context.Background(), appforge.Config{APIKey: "test-key"}, appforge.WithChatClient(&mock.ChatClientMock{}))
	gt.NoError(t, err)

	name, version := mcp.New(o).ServerInfo()
	gt.Equal(t, name, mcp.DefaultServerName)
	gt.Equal(t, version, mcp.DefaultServerVersion)

	name, version = mcp.New(o, mcp.WithServerInfo("forge", "1.2.3")).ServerInfo()
	gt.Equal(t, name, "forge")
	gt.Equal(t, version, "1.2.3")
}

func TestExtractIntentTool(t *testing.T) {
	client := &mock.ChatClientMock{
		SendMessageFunc: func(ctx context.Context, systemPrompt, userMessage, sessionID string) (string, error) {
			return `{"purpose":"Todo","features":["add"]}`, nil
		},
	}
	s := newServer(t, client)

	result, err := s.CallTool(context.Background(), "extract_intent", map[string]any{
		"prompt": "Build a todo app",
	})
	gt.NoError(t, err)
	gt.False(t, result.IsError)

	var intent appforge.Intent
	gt.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &intent))
	gt.Equal(t, intent.Purpose, "Todo")
	gt.Equal(t, intent.Features, []string{"add"})
}

func TestGenerateCodeToolForwardsContext(t *testing.T) {
	client := &mock.ChatClientMock{
		SendMessageFunc: func(ctx context.Context, systemPrompt, userMessage, sessionID string) (string, error) {
			return `{"files":[{"path":"main.go","content":"package main","language":"go"}]}`, nil
		},
	}
	s := newServer(t, client)

	result, err := s.CallTool(context.Background(), "generate_code", map[string]any{
		"plan":    map[string]any{"steps": []any{}, "dependencies": []any{}, "estimatedTime": 0},
		"context": "use chi router",
	})
	gt.NoError(t, err)
	gt.False(t, result.IsError)
	gt.True(t, strings.Contains(resultText(t, result), `"path":"main.go"`))

	calls := client.SendMessageCalls()
	gt.Equal(t, len(calls), 1)
	gt.True(t, strings.Contains(calls[0].UserMessage, "Additional context: use chi router"))
}

func TestGeneratePlanToolForwardsIntent(t *testing.T) {
	client := &mock.ChatClientMock{
		SendMessageFunc: func(ctx context.Context, systemPrompt, userMessage, sessionID string) (string, error) {
			return `{"steps":[],"estimatedTime":60}`, nil
		},
	}
	s := newServer(t, client)

	result, err := s.CallTool(context.Background(), "generate_plan", map[string]any{
		"intent": map[string]any{"purpose": "Chat", "features": "rooms", "locale": "ja"},
	})
	gt.NoError(t, err)
	gt.False(t, result.IsError)

	calls := client.SendMessageCalls()
	gt.Equal(t, len(calls), 1)
	gt.True(t, strings.Contains(calls[0].UserMessage, `"features": "rooms"`))
	gt.True(t, strings.Contains(calls[0].UserMessage, `"locale": "ja"`))
}

func TestToolErrors(t *testing.T) {
	t.Run("missing required argument", func(t *testing.T) {
		client := &mock.ChatClientMock{}
		s := newServer(t, client)

		result, err := s.CallTool(context.Background(), "generate_tests", map[string]any{})
		gt.NoError(t, err)
		gt.True(t, result.IsError)
		gt.Equal(t, len(client.SendMessageCalls()), 0)
	})

	t.Run("code that is not an object", func(t *testing.T) {
		client := &mock.ChatClientMock{}
		s := newServer(t, client)

		result, err := s.CallTool(context.Background(), "generate_tests", map[string]any{
			"code": "main.go",
		})
		gt.NoError(t, err)
		gt.True(t, result.IsError)
		gt.True(t, strings.Contains(resultText(t, result), "invalid parameter"))
		gt.Equal(t, len(client.SendMessageCalls()), 0)
	})

	t.Run("transport failure", func(t *testing.T) {
		client := &mock.ChatClientMock{
			SendMessageFunc: func(ctx context.Context, systemPrompt, userMessage, sessionID string) (string, error) {
				return "", errors.New("quota exceeded")
			},
		}
		s := newServer(t, client)

		result, err := s.CallTool(context.Background(), "extract_intent", map[string]any{
			"prompt": "x",
		})
		gt.NoError(t, err)
		gt.True(t, result.IsError)
		gt.True(t, strings.Contains(resultText(t, result), "quota exceeded"))
	})
}
