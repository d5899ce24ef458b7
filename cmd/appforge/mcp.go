package main

import (
	"context"
	"io"

	"github.com/m-mizutani/appforge/mcp"
	"github.com/urfave/cli/v3"
)

func mcpCommand(cfg *globalConfig, stderr io.Writer, factory orchestratorFactory) *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve the generation operations as MCP tools over stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, o, log, err := cfg.setup(ctx, stderr, factory)
			if err != nil {
				return err
			}

			log.Info("starting MCP server on stdio")
			return mcp.New(o, mcp.WithServerInfo("appforge", version)).ServeStdio()
		},
	}
}
