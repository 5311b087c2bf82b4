package task

import (
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/commands"
	"github.com/spf13/cobra"
)

var (
	priority  string
	intervals []int
	on        string
	subtasks  []string
)

var addCmd = &cobra.Command{
	Use:   "add [text]",
	Short: "Add a task",
	Long: `Add a task. Words after the command are joined into the task text.

Examples:
  nudge task add "call the dentist" -p high
  nudge task add water plants --every 60 --every 240
  nudge task add "file taxes" --on 2026-04-10 --subtask "find receipts"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		text := strings.Join(args, " ")
		create := commands.CreateTaskCommand{
			UserID:    app.CurrentUserID,
			Text:      text,
			Priority:  priority,
			Intervals: intervals,
			Subtasks:  subtasks,
		}
		if on != "" {
			day, err := time.ParseInLocation("2006-01-02", on, time.Local)
			if err != nil {
				return fmt.Errorf("invalid --on date (use YYYY-MM-DD): %w", err)
			}
			create.ScheduledFor = &day
		}

		result, err := app.CreateTaskHandler.Handle(cmd.Context(), create)
		if err != nil {
			return fmt.Errorf("failed to add task: %w", err)
		}

		out := cmd.OutOrStdout()
		ui.Ok(out, "added "+text)
		ui.Kv(out, "id", ui.ShortID(result.TaskID))
		if priority != "" {
			ui.Kv(out, "priority", priority)
		}
		return nil
	},
}

func init() {
	addCmd.Flags().StringVarP(&priority, "priority", "p", "", "priority (lowest, medium, high, urgent)")
	addCmd.Flags().IntSliceVarP(&intervals, "every", "e", nil, "reminder cadence in minutes, repeatable")
	addCmd.Flags().StringVar(&on, "on", "", "hide the task until this date (YYYY-MM-DD)")
	addCmd.Flags().StringArrayVarP(&subtasks, "subtask", "s", nil, "subtask text, repeatable")
}
