// Package mcp exposes the appforge operations as MCP tools.
package mcp

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/appforge"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	DefaultServerName    = "appforge"
	DefaultServerVersion = "0.1.0"
)

// Orchestrator is the set of operations served as tools.
type Orchestrator interface {
	ExtractIntent(ctx context.Context, prompt string) (*appforge.Intent, error)
	GeneratePlan(ctx context.Context, intent any) (*appforge.Plan, error)
	GenerateCode(ctx context.Context, plan any, codeContext string) (*appforge.CodeBundle, error)
	GenerateTests(ctx context.Context, code any) (*appforge.TestBundle, error)
}

type Server struct {
	orchestrator Orchestrator
	mcpServer    *server.MCPServer
	info         config
}

// Option configures the MCP server.
type Option func(*config)

type config struct {
	name    string
	version string
}

// WithServerInfo overrides the advertised server name and version.
func WithServerInfo(name, version string) Option {
	return func(c *config) {
		c.name = name
		c.version = version
	}
}

// New creates an MCP server with the extract_intent, generate_plan,
// generate_code and generate_tests tools.
func New(o Orchestrator, options ...Option) *Server {
	cfg := config{
		name:    DefaultServerName,
		version: DefaultServerVersion,
	}
	for _, opt := range options {
		opt(&cfg)
	}

	s := &Server{
		orchestrator: o,
		mcpServer:    server.NewMCPServer(cfg.name, cfg.version),
		info:         cfg,
	}

	s.mcpServer.AddTool(mcp.NewTool("extract_intent",
		mcp.WithDescription("Extract purpose, features, tech stack and constraints from a natural-language app request"),
		mcp.WithString("prompt", mcp.Required(), mcp.Description("Natural-language description of the app")),
	), s.handleExtractIntent)

	s.mcpServer.AddTool(mcp.NewTool("generate_plan",
		mcp.WithDescription("Generate an implementation plan from an intent"),
		mcp.WithObject("intent", mcp.Required(), mcp.Description("Intent returned by extract_intent")),
	), s.handleGeneratePlan)

	s.mcpServer.AddTool(mcp.NewTool("generate_code",
		mcp.WithDescription("Generate source files from a plan"),
		mcp.WithObject("plan", mcp.Required(), mcp.Description("Plan returned by generate_plan")),
		mcp.WithString("context", mcp.Description("Additional context for code generation")),
	), s.handleGenerateCode)

	s.mcpServer.AddTool(mcp.NewTool("generate_tests",
		mcp.WithDescription("Generate tests for a code bundle"),
		mcp.WithObject("code", mcp.Required(), mcp.Description("Code bundle returned by generate_code")),
	), s.handleGenerateTests)

	return s
}

// ServeStdio serves MCP over stdin/stdout until the input is closed.
func (x *Server) ServeStdio() error {
	if err := server.ServeStdio(x.mcpServer); err != nil {
		return goerr.Wrap(err, "failed to serve MCP over stdio")
	}
	return nil
}

// decodeArguments re-encodes tool arguments into a typed input.
func decodeArguments(args map[string]any, v any) error {
	raw, err := json.Marshal(args)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal tool arguments")
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return goerr.Wrap(appforge.ErrInvalidParameter, err.Error())
	}
	return nil
}

func isAbsent(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}

func toolResult(v any, err error) (*mcp.CallToolResult, error) {
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	raw, err := json.Marshal(v)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to marshal tool result")
	}
	return mcp.NewToolResultText(string(raw)), nil
}

func (x *Server) handleExtractIntent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input struct {
		Prompt *string `json:"prompt"`
	}
	if err := decodeArguments(req.Params.Arguments, &input); err != nil {
		return toolResult(nil, err)
	}
	if input.Prompt == nil {
		return mcp.NewToolResultError("prompt is required"), nil
	}

	return toolResult(x.orchestrator.ExtractIntent(ctx, *input.Prompt))
}

func (x *Server) handleGeneratePlan(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input struct {
		Intent json.RawMessage `json:"intent"`
	}
	if err := decodeArguments(req.Params.Arguments, &input); err != nil {
		return toolResult(nil, err)
	}
	if isAbsent(input.Intent) {
		return mcp.NewToolResultError("intent is required"), nil
	}

	return toolResult(x.orchestrator.GeneratePlan(ctx, input.Intent))
}

func (x *Server) handleGenerateCode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input struct {
		Plan    json.RawMessage `json:"plan"`
		Context string          `json:"context"`
	}
	if err := decodeArguments(req.Params.Arguments, &input); err != nil {
		return toolResult(nil, err)
	}
	if isAbsent(input.Plan) {
		return mcp.NewToolResultError("plan is required"), nil
	}

	return toolResult(x.orchestrator.GenerateCode(ctx, input.Plan, input.Context))
}

func (x *Server) handleGenerateTests(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var input struct {
		Code json.RawMessage `json:"code"`
	}
	if err := decodeArguments(req.Params.Arguments, &input); err != nil {
		return toolResult(nil, err)
	}
	if isAbsent(input.Code) {
		return mcp.NewToolResultError("code is required"), nil
	}

	return toolResult(x.orchestrator.GenerateTests(ctx, input.Code))
}
