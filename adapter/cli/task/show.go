package task

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/queries"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show [id]",
	Short: "Show a task",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := cli.RequireApp()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		id, err := app.ResolveTaskID(ctx, args[0])
		if err != nil {
			return err
		}
		t, err := app.GetTaskHandler.Handle(ctx, queries.GetTaskQuery{TaskID: id, UserID: app.CurrentUserID})
		if err != nil {
			return fmt.Errorf("failed to load task: %w", err)
		}

		out := cmd.OutOrStdout()
		now := time.Now()
		ui.Header(out, t.Text)
		ui.Kv(out, "id", t.ID)
		ui.Kv(out, "priority", ui.Badge(t.Priority))
		ui.Kv(out, "created", ui.When(t.CreatedAt, now))
		if len(t.Intervals) > 0 {
			every := make([]string, len(t.Intervals))
			for i, m := range t.Intervals {
				every[i] = strconv.Itoa(m) + "m"
			}
			ui.Kv(out, "every", strings.Join(every, ", "))
		}
		if t.ScheduledFor != nil {
			ui.Kv(out, "scheduled", t.ScheduledFor.Local().Format("2006-01-02"))
		}
		if t.NextReminderAt != nil {
			ui.Kv(out, "next reminder", ui.When(*t.NextReminderAt, now))
		}
		ui.Kv(out, "snoozed", strconv.Itoa(t.RescheduleCount))
		ui.Kv(out, "subtasks", strconv.Itoa(t.Subtasks))
		if t.Completed && t.CompletedAt != nil {
			ui.Kv(out, "completed", ui.When(*t.CompletedAt, now))
		}
		return nil
	},
}
