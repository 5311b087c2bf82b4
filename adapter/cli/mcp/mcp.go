// Package mcp holds the "nudge mcp" commands.
package mcp

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	mcpserver "github.com/felixgeelhaar/nudge/internal/mcp"
)

// Cmd is the MCP command group.
var Cmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose nudge to MCP clients",
}

func init() {
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the nudge tools over streamable HTTP until interrupted",
		RunE:  runServe,
	}
	serve.Flags().String("addr", "", "listen address (defaults to MCP_ADDR)")
	Cmd.AddCommand(serve)
}

func runServe(cmd *cobra.Command, _ []string) error {
	app, err := cli.RequireApp()
	if err != nil {
		return err
	}

	cfg := *app.Config
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.MCPAddr = addr
	}

	if err := mcpserver.Serve(cmd.Context(), &cfg, app, app.Logger); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
