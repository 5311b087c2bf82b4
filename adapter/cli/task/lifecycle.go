package task

import (
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/commands"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/services"
	"github.com/spf13/cobra"
)

var completeCmd = &cobra.Command{
	Use:     "complete [id]",
	Short:   "Mark a task as done",
	Aliases: []string{"done"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, id, err := prepare(cmd, args[0])
		if err != nil {
			return err
		}
		res, err := app.LifecycleHandler.Complete(cmd.Context(), commands.CompleteTaskCommand{TaskID: id})
		if err != nil {
			return lifecycleError(res, err)
		}
		ui.Ok(cmd.OutOrStdout(), "done: "+res.Task.Text())
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete [id]",
	Short:   "Delete a task",
	Aliases: []string{"rm"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, id, err := prepare(cmd, args[0])
		if err != nil {
			return err
		}
		res, err := app.LifecycleHandler.Delete(cmd.Context(), commands.DeleteTaskCommand{TaskID: id})
		if err != nil {
			return lifecycleError(res, err)
		}
		ui.Ok(cmd.OutOrStdout(), "deleted: "+res.Task.Text())
		return nil
	},
}

var rescheduleCmd = &cobra.Command{
	Use:     "reschedule [id]",
	Short:   "Snooze a task until its next reminder",
	Aliases: []string{"snooze"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, id, err := prepare(cmd, args[0])
		if err != nil {
			return err
		}
		res, err := app.LifecycleHandler.Reschedule(cmd.Context(), commands.RescheduleTaskCommand{TaskID: id})
		if err != nil {
			return lifecycleError(res, err)
		}

		msg := "snoozed: " + res.Task.Text()
		if r := res.Task.Reminder(); r != nil && !r.NextReminderAt.IsZero() {
			msg += " (" + ui.IconBell + ui.When(r.NextReminderAt, time.Now()) + ")"
		}
		ui.Ok(cmd.OutOrStdout(), msg)
		return nil
	},
}

// prepare loads the session so the lifecycle adapter sees the same tasks
// the ranking does.
func prepare(cmd *cobra.Command, prefix string) (*cli.App, string, error) {
	app, err := cli.RequireApp()
	if err != nil {
		return nil, "", err
	}
	ctx := cmd.Context()
	if err := app.LoadSession(ctx); err != nil {
		return nil, "", fmt.Errorf("failed to load tasks: %w", err)
	}
	id, err := app.ResolveTaskID(ctx, prefix)
	if err != nil {
		return nil, "", err
	}
	return app, id, nil
}

func lifecycleError(res services.Result, err error) error {
	switch {
	case errors.Is(err, services.ErrAlreadyProcessing):
		return fmt.Errorf("task is busy, try again: %w", err)
	case errors.Is(err, services.ErrStoreFailure) && res.RolledBack:
		return fmt.Errorf("could not save, nothing changed: %w", err)
	default:
		return fmt.Errorf("failed to %s task: %w", res.Op, err)
	}
}
