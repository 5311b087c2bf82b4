package mcp

import (
	"context"
	"encoding/json"

	"github.com/felixgeelhaar/mcp-go"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/queries"
)

type resource struct {
	uri         string
	name        string
	description string
	load        func(ctx context.Context, app *cli.App) (any, error)
}

var resources = []resource{
	{
		uri:         "nudge://focus",
		name:        "Focus",
		description: "The current ranking with the focus task first",
		load: func(ctx context.Context, app *cli.App) (any, error) {
			return rankTasks(app)(ctx, rankInput{})
		},
	},
	{
		uri:         "nudge://tasks/active",
		name:        "Active Tasks",
		description: "Open tasks that are not scheduled for a later day",
		load: func(ctx context.Context, app *cli.App) (any, error) {
			return listTasks(app)(ctx, taskListInput{View: queries.ViewActive})
		},
	},
	{
		uri:         "nudge://tasks/completed",
		name:        "Completed Tasks",
		description: "Most recently completed tasks",
		load: func(ctx context.Context, app *cli.App) (any, error) {
			return listTasks(app)(ctx, taskListInput{View: queries.ViewCompleted})
		},
	},
	{
		uri:         "nudge://leaderboard",
		name:        "Leaderboard",
		description: "Users with the most completed tasks",
		load: func(ctx context.Context, app *cli.App) (any, error) {
			return leaderboardTop(app)(ctx, leaderboardInput{})
		},
	},
}

func registerResources(srv *mcp.Server, app *cli.App) {
	for _, r := range resources {
		srv.Resource(r.uri).
			Name(r.name).
			Description(r.description).
			MimeType("application/json").
			Handler(func(ctx context.Context, uri string, _ map[string]string) (*mcp.ResourceContent, error) {
				return readResource(ctx, app, uri, r.load)
			})
	}
}

func readResource(ctx context.Context, app *cli.App, uri string, load func(context.Context, *cli.App) (any, error)) (*mcp.ResourceContent, error) {
	v, err := load(ctx, app)
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return &mcp.ResourceContent{URI: uri, MimeType: "application/json", Text: string(data)}, nil
}
