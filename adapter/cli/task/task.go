package task

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/felixgeelhaar/nudge/adapter/cli/ui"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/queries"
	"github.com/spf13/cobra"
)

// Cmd is the task command group
var Cmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
	Long:  `Add, list, complete, delete and snooze your tasks.`,
}

func init() {
	Cmd.AddCommand(addCmd)
	Cmd.AddCommand(listCmd)
	Cmd.AddCommand(showCmd)
	Cmd.AddCommand(completeCmd)
	Cmd.AddCommand(deleteCmd)
	Cmd.AddCommand(rescheduleCmd)
}

func printTaskLine(w io.Writer, t queries.TaskDTO, now time.Time) {
	mark := ui.IconDot
	if t.Completed {
		mark = ui.IconOk
	}

	var extra []string
	if t.NextReminderAt != nil {
		extra = append(extra, ui.IconBell+ui.When(*t.NextReminderAt, now))
	}
	if t.ScheduledFor != nil {
		extra = append(extra, "on "+t.ScheduledFor.Local().Format("2006-01-02"))
	}
	if t.Subtasks > 0 {
		extra = append(extra, fmt.Sprintf("%d subtasks", t.Subtasks))
	}
	if t.TimerActive {
		extra = append(extra, ui.IconTimer+"timer")
	}

	line := fmt.Sprintf("%s%s %s %s", mark, ui.Muted.Render(ui.ShortID(t.ID)), ui.Badge(t.Priority), t.Text)
	if len(extra) > 0 {
		line += " " + ui.Muted.Render(strings.Join(extra, " · "))
	}
	fmt.Fprintln(w, line)
}
