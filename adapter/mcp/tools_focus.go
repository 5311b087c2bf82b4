package mcp

import (
	"context"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/commands"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/queries"
)

type rankInput struct {
	Limit int `json:"limit,omitempty"`
}

type pinInput struct {
	TaskID string `json:"task_id,omitempty"`
}

type leaderboardInput struct {
	Limit int `json:"limit,omitempty"`
}

type pinOutput struct {
	PinnedTaskID string `json:"pinned_task_id,omitempty"`
	FocusTaskID  string `json:"focus_task_id,omitempty"`
}

func registerFocusTools(srv *mcp.Server, app *cli.App) {
	srv.Tool("focus.rank").
		Description("Rank the active tasks; the first entry is the focus task").
		Handler(rankTasks(app))

	srv.Tool("focus.explain").
		Description("Show the score breakdown of one task").
		Handler(explainTask(app))

	srv.Tool("focus.pin").
		Description("Pin a task as the focus task; an empty task_id clears the pin").
		Handler(pinTask(app))

	srv.Tool("leaderboard.top").
		Description("List the users with the most completed tasks").
		Handler(leaderboardTop(app))
}

func rankTasks(app *cli.App) func(context.Context, rankInput) (*queries.RankTasksResult, error) {
	return func(ctx context.Context, input rankInput) (*queries.RankTasksResult, error) {
		if app == nil || app.RankTasksHandler == nil {
			return nil, errNoStore
		}
		return app.RankTasksHandler.Handle(ctx, queries.RankTasksQuery{Reload: true, Limit: input.Limit})
	}
}

func explainTask(app *cli.App) func(context.Context, taskIDInput) (*queries.RankedTaskDTO, error) {
	return func(ctx context.Context, input taskIDInput) (*queries.RankedTaskDTO, error) {
		if app == nil || app.ExplainTaskHandler == nil {
			return nil, errNoStore
		}
		if _, err := app.RankTasksHandler.Handle(ctx, queries.RankTasksQuery{Reload: true}); err != nil {
			return nil, err
		}
		id, err := app.ResolveTaskID(ctx, input.TaskID)
		if err != nil {
			return nil, err
		}
		return app.ExplainTaskHandler.Handle(ctx, queries.ExplainTaskQuery{TaskID: id})
	}
}

func pinTask(app *cli.App) func(context.Context, pinInput) (*pinOutput, error) {
	return func(ctx context.Context, input pinInput) (*pinOutput, error) {
		if app == nil || app.PinTaskHandler == nil {
			return nil, errNoStore
		}
		if err := app.LoadSession(ctx); err != nil {
			return nil, err
		}
		id := ""
		if input.TaskID != "" {
			var err error
			if id, err = app.ResolveTaskID(ctx, input.TaskID); err != nil {
				return nil, err
			}
		}
		if err := app.PinTaskHandler.Handle(ctx, commands.PinTaskCommand{TaskID: id}); err != nil {
			return nil, err
		}
		return &pinOutput{PinnedTaskID: id, FocusTaskID: app.Tracker.Last().TopID()}, nil
	}
}

func leaderboardTop(app *cli.App) func(context.Context, leaderboardInput) ([]queries.LeaderboardEntryDTO, error) {
	return func(ctx context.Context, input leaderboardInput) ([]queries.LeaderboardEntryDTO, error) {
		if app == nil || app.LeaderboardHandler == nil {
			return nil, errNoStore
		}
		return app.LeaderboardHandler.Handle(ctx, queries.LeaderboardQuery{Limit: input.Limit})
	}
}
