package task

import (
	"context"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/value_objects"
)

// Field names a persisted task attribute.
type Field string

const (
	FieldID              Field = "id"
	FieldUserID          Field = "userId"
	FieldText            Field = "text"
	FieldPriority        Field = "priority"
	FieldIntervals       Field = "intervals"
	FieldInterval        Field = "interval"
	FieldScheduledFor    Field = "scheduledFor"
	FieldDueDate         Field = "dueDate"
	FieldCreatedAt       Field = "createdAt"
	FieldUpdatedAt       Field = "updatedAt"
	FieldRescheduleCount Field = "rescheduleCount"
	FieldSubtasks        Field = "subtasks"
	FieldCompleted       Field = "completed"
	FieldCompletedAt     Field = "completedAt"
	FieldNotificationID  Field = "notificationId"
	FieldNextReminderAt  Field = "nextReminderAt"
	FieldTimerActive     Field = "timerActive"
	FieldVersion         Field = "version"
)

// Repository defines the interface for task persistence.
type Repository interface {
	// Save creates or replaces the whole task.
	Save(ctx context.Context, task *Task) error
	// Patch writes only the given fields of the task.
	Patch(ctx context.Context, task *Task, fields ...Field) error
	FindByID(ctx context.Context, userID, id string) (*Task, error)
	FindByUserID(ctx context.Context, userID string) ([]*Task, error)
	// FindCompleted returns completed tasks, most recent first.
	FindCompleted(ctx context.Context, userID string, limit int) ([]*Task, error)
	Delete(ctx context.Context, task *Task) error
}

// ReminderScheduler schedules and cancels task reminders.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, taskID string, after value_objects.ReminderInterval) (Reminder, error)
	CancelReminder(ctx context.Context, notificationID string) error
}
