package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/panbanda/pctl/internal/mcpserver"
)

func mcpCmd() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Start MCP (Model Context Protocol) server for LLM tool integration",
		Description: `Starts an MCP server over stdio transport that exposes pctl's percentile
engine as tools that LLMs can invoke.

To use with Claude Desktop, add to your config:
  {
    "mcpServers": {
      "pctl": {
        "command": "pctl",
        "args": ["mcp"]
      }
    }
  }

Available tools:
  - percentile   Percentiles along chosen axes with a choice of interpolation
  - describe     Quartiles, mean and spread of every element`,
		Action: runMCPCmd,
		Subcommands: []*cli.Command{
			{
				Name:  "manifest",
				Usage: "Print the MCP registry manifest",
				Action: func(c *cli.Context) error {
					data, err := mcpserver.GenerateManifest(version)
					if err != nil {
						return err
					}
					_, err = c.App.Writer.Write(append(data, '\n'))
					return err
				},
			},
		},
	}
}

func runMCPCmd(c *cli.Context) error {
	e, err := newEnv(c)
	if err != nil {
		return err
	}
	defer func() { _ = e.logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := mcpserver.NewServer(version, e.service)
	return server.Run(ctx)
}
