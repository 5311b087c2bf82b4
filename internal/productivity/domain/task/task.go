package task

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/nudge/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrEmptyText            = errors.New("task text cannot be empty")
	ErrTaskAlreadyCompleted = errors.New("task is already completed")
	ErrTaskNotFound         = errors.New("task not found")
)

// Microtask is the smallest step of a subtask.
type Microtask struct {
	ID   string `json:"id"`
	Text string `json:"text"`
}

// Subtask is an ordered decomposition step of a task.
type Subtask struct {
	ID         string      `json:"id"`
	Text       string      `json:"text"`
	Microtasks []Microtask `json:"microtasks,omitempty"`
}

// Reminder is the next scheduled nudge for a task.
type Reminder struct {
	NotificationID string
	NextReminderAt time.Time
}

// Task represents a unit of work to be done.
type Task struct {
	domain.BaseAggregateRoot
	userID          string
	text            string
	priority        value_objects.Priority
	intervals       []value_objects.ReminderInterval
	scheduledFor    *time.Time
	rescheduleCount int
	subtasks        []Subtask
	completed       bool
	completedAt     *time.Time
	reminder        *Reminder
	timerActive     bool
}

// NewTask creates a new task with the given text.
func NewTask(userID, text string, now time.Time) (*Task, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrEmptyText
	}

	t := &Task{
		BaseAggregateRoot: domain.NewBaseAggregateRoot(now),
		userID:            userID,
		text:              text,
		priority:          value_objects.PriorityLowest,
	}

	created := NewTaskCreated(t.ID(), t.text, t.priority.String(), now)
	t.AddDomainEvent(&created)

	return t, nil
}

// Getters

func (t *Task) UserID() string                                { return t.userID }
func (t *Task) Text() string                                  { return t.text }
func (t *Task) Priority() value_objects.Priority              { return t.priority }
func (t *Task) Intervals() []value_objects.ReminderInterval   { return slices.Clone(t.intervals) }
func (t *Task) ScheduledFor() *time.Time                      { return t.scheduledFor }
func (t *Task) RescheduleCount() int                          { return t.rescheduleCount }
func (t *Task) Subtasks() []Subtask                           { return slices.Clone(t.subtasks) }
func (t *Task) SubtaskCount() int                             { return len(t.subtasks) }
func (t *Task) IsCompleted() bool                             { return t.completed }
func (t *Task) CompletedAt() *time.Time                       { return t.completedAt }
func (t *Task) Reminder() *Reminder                           { return t.reminder }
func (t *Task) TimerActive() bool                             { return t.timerActive }

// EffectiveInterval returns the shortest reminder cadence.
func (t *Task) EffectiveInterval() (value_objects.ReminderInterval, bool) {
	return value_objects.Shortest(t.intervals)
}

// IsFuture reports whether the task is scheduled for a later calendar day
// than now. Times are compared in now's location.
func (t *Task) IsFuture(now time.Time) bool {
	if t.scheduledFor == nil || t.scheduledFor.IsZero() {
		return false
	}
	return dateOf(t.scheduledFor.In(now.Location())).After(dateOf(now))
}

// IsActive reports whether the task belongs in the current ranked set.
func (t *Task) IsActive(now time.Time) bool {
	return t.ID() != "" && !t.completed && !t.IsFuture(now)
}

func dateOf(ts time.Time) time.Time {
	y, m, d := ts.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, ts.Location())
}

// SetText updates the task text.
func (t *Task) SetText(text string, now time.Time) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyText
	}
	t.text = text
	t.Touch(now)
	return nil
}

// SetPriority updates the task priority.
func (t *Task) SetPriority(priority value_objects.Priority, now time.Time) {
	if !priority.IsValid() {
		priority = value_objects.PriorityLowest
	}
	t.priority = priority
	t.Touch(now)
}

// SetIntervals replaces the reminder cadences.
func (t *Task) SetIntervals(intervals []value_objects.ReminderInterval, now time.Time) {
	t.intervals = slices.Clone(intervals)
	t.Touch(now)
}

// SetScheduledFor updates the scheduled date. Nil clears it.
func (t *Task) SetScheduledFor(scheduledFor *time.Time, now time.Time) {
	t.scheduledFor = scheduledFor
	t.Touch(now)
}

// AddSubtask appends a subtask and returns it.
func (t *Task) AddSubtask(text string, microtasks []string, now time.Time) (Subtask, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Subtask{}, ErrEmptyText
	}
	st := Subtask{ID: uuid.NewString(), Text: text}
	for _, m := range microtasks {
		if m = strings.TrimSpace(m); m != "" {
			st.Microtasks = append(st.Microtasks, Microtask{ID: uuid.NewString(), Text: m})
		}
	}
	t.subtasks = append(t.subtasks, st)
	t.Touch(now)
	return st, nil
}

// Complete marks the task as completed.
func (t *Task) Complete(now time.Time) error {
	if t.completed {
		return ErrTaskAlreadyCompleted
	}

	t.completed = true
	t.completedAt = &now
	t.timerActive = false
	t.Touch(now)

	completed := NewTaskCompleted(t.ID(), now)
	t.AddDomainEvent(&completed)

	return nil
}

// MarkDeleted records the deletion of the task.
func (t *Task) MarkDeleted(now time.Time) {
	t.Touch(now)
	deleted := NewTaskDeleted(t.ID(), now)
	t.AddDomainEvent(&deleted)
}

// Reschedule defers the task to its next reminder.
// The reschedule count only ever grows.
func (t *Task) Reschedule(reminder Reminder, now time.Time) error {
	if t.completed {
		return ErrTaskAlreadyCompleted
	}

	t.rescheduleCount++
	t.reminder = &reminder
	t.timerActive = true
	t.Touch(now)

	rescheduled := NewTaskRescheduled(t.ID(), t.rescheduleCount, reminder, now)
	t.AddDomainEvent(&rescheduled)

	return nil
}

// StopTimer clears the transient timer state.
func (t *Task) StopTimer() {
	t.timerActive = false
}

// Snapshot is the full persisted state of a task.
type Snapshot struct {
	ID              string
	UserID          string
	Text            string
	Priority        value_objects.Priority
	Intervals       []value_objects.ReminderInterval
	ScheduledFor    *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
	RescheduleCount int
	Subtasks        []Subtask
	Completed       bool
	CompletedAt     *time.Time
	NotificationID  string
	NextReminderAt  *time.Time
	TimerActive     bool
	Version         int
}

// Snapshot captures the current state.
func (t *Task) Snapshot() Snapshot {
	s := Snapshot{
		ID:              t.ID(),
		UserID:          t.userID,
		Text:            t.text,
		Priority:        t.priority,
		Intervals:       slices.Clone(t.intervals),
		ScheduledFor:    t.scheduledFor,
		CreatedAt:       t.CreatedAt(),
		UpdatedAt:       t.UpdatedAt(),
		RescheduleCount: t.rescheduleCount,
		Subtasks:        slices.Clone(t.subtasks),
		Completed:       t.completed,
		CompletedAt:     t.completedAt,
		TimerActive:     t.timerActive,
		Version:         t.Version(),
	}
	if t.reminder != nil {
		s.NotificationID = t.reminder.NotificationID
		next := t.reminder.NextReminderAt
		s.NextReminderAt = &next
	}
	return s
}

// Clone returns an independent copy with the same pending events.
// Mutating the copy leaves t untouched.
func (t *Task) Clone() *Task {
	c := Rehydrate(t.Snapshot())
	for _, e := range t.DomainEvents() {
		c.AddDomainEvent(e)
	}
	return c
}

// Rehydrate recreates a task from persisted state.
func Rehydrate(s Snapshot) *Task {
	t := &Task{}
	t.applySnapshot(s)
	return t
}

func (t *Task) applySnapshot(s Snapshot) {
	t.BaseAggregateRoot = domain.RehydrateBaseAggregateRoot(
		domain.RehydrateBaseEntity(s.ID, s.CreatedAt, s.UpdatedAt),
		s.Version,
	)
	priority := s.Priority
	if !priority.IsValid() {
		priority = value_objects.PriorityLowest
	}
	t.userID = s.UserID
	t.text = s.Text
	t.priority = priority
	t.intervals = slices.Clone(s.Intervals)
	t.scheduledFor = s.ScheduledFor
	t.rescheduleCount = max(s.RescheduleCount, 0)
	t.subtasks = slices.Clone(s.Subtasks)
	t.completed = s.Completed
	t.completedAt = s.CompletedAt
	t.timerActive = s.TimerActive
	t.reminder = nil
	if s.NotificationID != "" || s.NextReminderAt != nil {
		r := Reminder{NotificationID: s.NotificationID}
		if s.NextReminderAt != nil {
			r.NextReminderAt = *s.NextReminderAt
		}
		t.reminder = &r
	}
}
