package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
)

// CallTool invokes the named tool handler directly.
func (x *Server) CallTool(ctx context.Context, name string, args map[string]any) (*mcp.CallToolResult, error) {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args

	switch name {
	case "extract_intent":
		return x.handleExtractIntent(ctx, req)
	case "generate_plan":
		return x.handleGeneratePlan(ctx, req)
	case "generate_code":
		return x.handleGenerateCode(ctx, req)
	case "generate_tests":
		return x.handleGenerateTests(ctx, req)
	}
	return mcp.NewToolResultError("unknown tool"), nil
}

// ServerInfo returns the advertised server name and version.
func (x *Server) ServerInfo() (string, string) {
	return x.info.name, x.info.version
}
