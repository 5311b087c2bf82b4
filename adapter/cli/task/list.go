package task

import (
	"fmt"
	"time"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/queries"
	"github.com/spf13/cobra"
)

var (
	view  string
	limit int
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	Long: `List tasks, oldest first.

Views:
  active     open tasks that are not scheduled for a later day (default)
  future     open tasks scheduled for a later day
  completed  most recently completed first
  all        everything`,
	Aliases: []string{"ls"},
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		var tasks []queries.TaskDTO
		if view == queries.ViewCompleted {
			tasks, err = app.CompletedTasksHandler.Handle(ctx, queries.CompletedTasksQuery{
				UserID: app.CurrentUserID,
				Limit:  limit,
			})
		} else {
			tasks, err = app.ListTasksHandler.Handle(ctx, queries.ListTasksQuery{
				UserID: app.CurrentUserID,
				View:   view,
				Limit:  limit,
			})
		}
		if err != nil {
			return fmt.Errorf("failed to list tasks: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(tasks) == 0 {
			ui.Info(out, "No tasks found.")
			return nil
		}

		ui.Header(out, fmt.Sprintf("Tasks (%d)", len(tasks)))
		now := time.Now()
		for _, t := range tasks {
			printTaskLine(out, t, now)
		}
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&view, "view", queries.ViewActive, "which tasks to show (active, future, completed, all)")
	listCmd.Flags().IntVarP(&limit, "limit", "n", 0, "max number of tasks to show (0 = no limit)")
}
