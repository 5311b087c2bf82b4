// Package mcp exposes the nudge CLI to MCP clients: one tool per CLI
// command, read-only resources for the focus list and prompts for the two
// coaching workflows.
package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/pkg/observability"
)

// Register adds every nudge tool, resource and prompt to srv.
func Register(srv *mcp.Server, app *cli.App) error {
	if srv == nil {
		return errors.New("server is required")
	}
	if app == nil {
		return errors.New("app is required")
	}

	srv.Tool("cli.health").
		Description("Check store and broker connectivity").
		Handler(health(app))

	registerTaskTools(srv, app)
	registerFocusTools(srv, app)
	registerResources(srv, app)
	registerPrompts(srv)
	return nil
}

func health(app *cli.App) func(context.Context, struct{}) (observability.OverallHealth, error) {
	return func(ctx context.Context, _ struct{}) (observability.OverallHealth, error) {
		if app.Health == nil {
			return observability.OverallHealth{}, errNoStore
		}
		return app.Health.GetOverallHealth(ctx), nil
	}
}
