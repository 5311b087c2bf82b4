package task

import (
	"time"

	"github.com/felixgeelhaar/nudge/internal/shared/domain"
)

const (
	AggregateType = "Task"
	FocusType     = "Focus"

	RoutingKeyCreated      = "core.task.created"
	RoutingKeyCompleted    = "core.task.completed"
	RoutingKeyDeleted      = "core.task.deleted"
	RoutingKeyRescheduled  = "core.task.rescheduled"
	RoutingKeyFocusChanged = "core.focus.changed"
	RoutingKeyReminderDue  = "core.reminder.due"
)

// TaskCreated is emitted when a new task is created.
type TaskCreated struct {
	domain.BaseEvent
	Text     string `json:"text"`
	Priority string `json:"priority"`
}

// NewTaskCreated creates a TaskCreated event.
func NewTaskCreated(taskID, text, priority string, at time.Time) TaskCreated {
	return TaskCreated{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCreated, at),
		Text:      text,
		Priority:  priority,
	}
}

// TaskCompleted is emitted when a task is completed.
type TaskCompleted struct {
	domain.BaseEvent
	CompletedAt time.Time `json:"completed_at"`
}

// NewTaskCompleted creates a TaskCompleted event.
func NewTaskCompleted(taskID string, at time.Time) TaskCompleted {
	return TaskCompleted{
		BaseEvent:   domain.NewBaseEvent(taskID, AggregateType, RoutingKeyCompleted, at),
		CompletedAt: at,
	}
}

// TaskDeleted is emitted when a task is removed.
type TaskDeleted struct {
	domain.BaseEvent
}

// NewTaskDeleted creates a TaskDeleted event.
func NewTaskDeleted(taskID string, at time.Time) TaskDeleted {
	return TaskDeleted{
		BaseEvent: domain.NewBaseEvent(taskID, AggregateType, RoutingKeyDeleted, at),
	}
}

// TaskRescheduled is emitted when a task is deferred to its next reminder.
type TaskRescheduled struct {
	domain.BaseEvent
	RescheduleCount int       `json:"reschedule_count"`
	NotificationID  string    `json:"notification_id"`
	NextReminderAt  time.Time `json:"next_reminder_at"`
}

// NewTaskRescheduled creates a TaskRescheduled event.
func NewTaskRescheduled(taskID string, count int, reminder Reminder, at time.Time) TaskRescheduled {
	return TaskRescheduled{
		BaseEvent:       domain.NewBaseEvent(taskID, AggregateType, RoutingKeyRescheduled, at),
		RescheduleCount: count,
		NotificationID:  reminder.NotificationID,
		NextReminderAt:  reminder.NextReminderAt,
	}
}

// FocusChanged is emitted when a different task becomes the focus task.
// The aggregate is the user's focus; TaskID is empty when nothing is in focus.
type FocusChanged struct {
	domain.BaseEvent
	PreviousTaskID string  `json:"previous_task_id,omitempty"`
	TaskID         string  `json:"task_id,omitempty"`
	Score          float64 `json:"score"`
}

// NewFocusChanged creates a FocusChanged event.
func NewFocusChanged(userID, previousTaskID, taskID string, score float64, at time.Time) FocusChanged {
	return FocusChanged{
		BaseEvent:      domain.NewBaseEvent(userID, FocusType, RoutingKeyFocusChanged, at),
		PreviousTaskID: previousTaskID,
		TaskID:         taskID,
		Score:          score,
	}
}

// ReminderDue is emitted when a scheduled reminder fires.
type ReminderDue struct {
	domain.BaseEvent
	NotificationID string    `json:"notification_id"`
	DueAt          time.Time `json:"due_at"`
}

// NewReminderDue creates a ReminderDue event.
func NewReminderDue(taskID, notificationID string, dueAt, at time.Time) ReminderDue {
	return ReminderDue{
		BaseEvent:      domain.NewBaseEvent(taskID, AggregateType, RoutingKeyReminderDue, at),
		NotificationID: notificationID,
		DueAt:          dueAt,
	}
}
