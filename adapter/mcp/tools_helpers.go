package mcp

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/nudge/adapter/cli"
	"github.com/felixgeelhaar/nudge/internal/productivity/application/services"
)

const dateLayout = "2006-01-02"

var errNoStore = errors.New("this tool requires a database connection")

func parseOptionalDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	parsed, err := time.ParseInLocation(dateLayout, value, time.Local)
	if err != nil {
		return nil, fmt.Errorf("invalid date format, use YYYY-MM-DD: %w", err)
	}
	return &parsed, nil
}

// resolveTask loads the session and expands an id or id prefix.
func resolveTask(ctx context.Context, app *cli.App, prefix string) (string, error) {
	if prefix == "" {
		return "", errors.New("task_id is required")
	}
	if err := app.LoadSession(ctx); err != nil {
		return "", err
	}
	return app.ResolveTaskID(ctx, prefix)
}

type lifecycleOutput struct {
	TaskID         string     `json:"task_id"`
	Operation      string     `json:"operation"`
	Text           string     `json:"text"`
	Completed      bool       `json:"completed"`
	NextReminderAt *time.Time `json:"next_reminder_at,omitempty"`
	FocusTaskID    string     `json:"focus_task_id,omitempty"`
}

func toLifecycleOutput(app *cli.App, res services.Result) *lifecycleOutput {
	out := &lifecycleOutput{
		TaskID:      res.Task.ID(),
		Operation:   string(res.Op),
		Text:        res.Task.Text(),
		Completed:   res.Task.IsCompleted(),
		FocusTaskID: app.Tracker.Last().TopID(),
	}
	if r := res.Task.Reminder(); r != nil && !r.NextReminderAt.IsZero() {
		next := r.NextReminderAt
		out.NextReminderAt = &next
	}
	return out
}
