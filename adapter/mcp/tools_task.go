package mcp

import (
	"context"
	"errors"

	"github.com/felixgeelhaar/mcp-go"
	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/commands"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/queries"
)

type taskCreateInput struct {
	Text     string   `json:"text" jsonschema:"required"`
	Priority string   `json:"priority,omitempty"`
	Every    []int    `json:"every,omitempty"`
	On       string   `json:"on,omitempty"`
	Subtasks []string `json:"subtasks,omitempty"`
}

type taskListInput struct {
	View  string `json:"view,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

type taskIDInput struct {
	TaskID string `json:"task_id" jsonschema:"required"`
}

func registerTaskTools(srv *mcp.Server, app *cli.App) {
	srv.Tool("task.create").
		Description("Create a task. priority is lowest, medium, high or urgent; every lists reminder cadences in minutes; on hides the task until YYYY-MM-DD").
		Handler(createTask(app))

	srv.Tool("task.list").
		Description("List tasks. view is active (default), future, completed or all").
		Handler(listTasks(app))

	srv.Tool("task.get").
		Description("Get one task by id or id prefix").
		Handler(getTask(app))

	srv.Tool("task.complete").
		Description("Mark a task as done").
		Handler(completeTask(app))

	srv.Tool("task.delete").
		Description("Delete a task").
		Handler(deleteTask(app))

	srv.Tool("task.reschedule").
		Description("Snooze a task until its next reminder").
		Handler(rescheduleTask(app))
}

func createTask(app *cli.App) func(context.Context, taskCreateInput) (*commands.CreateTaskResult, error) {
	return func(ctx context.Context, input taskCreateInput) (*commands.CreateTaskResult, error) {
		if app == nil || app.CreateTaskHandler == nil {
			return nil, errNoStore
		}
		if input.Text == "" {
			return nil, errors.New("text is required")
		}
		on, err := parseOptionalDate(input.On)
		if err != nil {
			return nil, err
		}
		return app.CreateTaskHandler.Handle(ctx, commands.CreateTaskCommand{
			UserID:       app.CurrentUserID,
			Text:         input.Text,
			Priority:     input.Priority,
			Intervals:    input.Every,
			ScheduledFor: on,
			Subtasks:     input.Subtasks,
		})
	}
}

func listTasks(app *cli.App) func(context.Context, taskListInput) ([]queries.TaskDTO, error) {
	return func(ctx context.Context, input taskListInput) ([]queries.TaskDTO, error) {
		if app == nil || app.ListTasksHandler == nil {
			return nil, errNoStore
		}
		if input.View == queries.ViewCompleted {
			return app.CompletedTasksHandler.Handle(ctx, queries.CompletedTasksQuery{
				UserID: app.CurrentUserID,
				Limit:  input.Limit,
			})
		}
		return app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
			UserID: app.CurrentUserID,
			View:   input.View,
			Limit:  input.Limit,
		})
	}
}

func getTask(app *cli.App) func(context.Context, taskIDInput) (*queries.TaskDTO, error) {
	return func(ctx context.Context, input taskIDInput) (*queries.TaskDTO, error) {
		if app == nil || app.GetTaskHandler == nil {
			return nil, errNoStore
		}
		id, err := app.ResolveTaskID(ctx, input.TaskID)
		if err != nil {
			return nil, err
		}
		return app.GetTaskHandler.Handle(ctx, queries.GetTaskQuery{TaskID: id, UserID: app.CurrentUserID})
	}
}

func completeTask(app *cli.App) func(context.Context, taskIDInput) (*lifecycleOutput, error) {
	return func(ctx context.Context, input taskIDInput) (*lifecycleOutput, error) {
		if app == nil || app.LifecycleHandler == nil {
			return nil, errNoStore
		}
		id, err := resolveTask(ctx, app, input.TaskID)
		if err != nil {
			return nil, err
		}
		res, err := app.LifecycleHandler.Complete(ctx, commands.CompleteTaskCommand{TaskID: id})
		if err != nil {
			return nil, err
		}
		return toLifecycleOutput(app, res), nil
	}
}

func deleteTask(app *cli.App) func(context.Context, taskIDInput) (*lifecycleOutput, error) {
	return func(ctx context.Context, input taskIDInput) (*lifecycleOutput, error) {
		if app == nil || app.LifecycleHandler == nil {
			return nil, errNoStore
		}
		id, err := resolveTask(ctx, app, input.TaskID)
		if err != nil {
			return nil, err
		}
		res, err := app.LifecycleHandler.Delete(ctx, commands.DeleteTaskCommand{TaskID: id})
		if err != nil {
			return nil, err
		}
		return toLifecycleOutput(app, res), nil
	}
}

func rescheduleTask(app *cli.App) func(context.Context, taskIDInput) (*lifecycleOutput, error) {
	return func(ctx context.Context, input taskIDInput) (*lifecycleOutput, error) {
		if app == nil || app.LifecycleHandler == nil {
			return nil, errNoStore
		}
		id, err := resolveTask(ctx, app, input.TaskID)
		if err != nil {
			return nil, err
		}
		res, err := app.LifecycleHandler.Reschedule(ctx, commands.RescheduleTaskCommand{TaskID: id})
		if err != nil {
			return nil, err
		}
		return toLifecycleOutput(app, res), nil
	}
}
