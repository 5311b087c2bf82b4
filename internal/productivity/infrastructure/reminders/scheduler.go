// Package reminders schedules task nudges and turns due reminders into
// core.reminder.due events.
package reminders

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/value_objects"
)

// Due is a reminder whose time has come.
type Due struct {
	NotificationID string
	TaskID         string
	UserID         string
	DueAt          time.Time
}

// Source hands out due reminders. A reminder is returned at most once.
type Source interface {
	TakeDue(ctx context.Context, now time.Time) ([]Due, error)
}

// MemoryScheduler keeps reminders in process.
type MemoryScheduler struct {
	userID string
	clock  func() time.Time

	mu      sync.Mutex
	pending map[string]Due
}

// NewMemoryScheduler creates a scheduler for the user's reminders.
func NewMemoryScheduler(userID string, clock func() time.Time) *MemoryScheduler {
	if clock == nil {
		clock = time.Now
	}
	return &MemoryScheduler{
		userID:  userID,
		clock:   clock,
		pending: make(map[string]Due),
	}
}

// ScheduleReminder books a reminder after the interval.
func (s *MemoryScheduler) ScheduleReminder(ctx context.Context, taskID string, after value_objects.ReminderInterval) (task.Reminder, error) {
	due := Due{
		NotificationID: uuid.NewString(),
		TaskID:         taskID,
		UserID:         s.userID,
		DueAt:          s.clock().Add(after.Duration()),
	}

	s.mu.Lock()
	s.pending[due.NotificationID] = due
	s.mu.Unlock()

	return task.Reminder{NotificationID: due.NotificationID, NextReminderAt: due.DueAt}, nil
}

// CancelReminder drops a reminder. Unknown ids are ignored.
func (s *MemoryScheduler) CancelReminder(ctx context.Context, notificationID string) error {
	s.mu.Lock()
	delete(s.pending, notificationID)
	s.mu.Unlock()
	return nil
}

// Pending returns the number of booked reminders.
func (s *MemoryScheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// TakeDue removes and returns reminders due at or before now, earliest first.
func (s *MemoryScheduler) TakeDue(ctx context.Context, now time.Time) ([]Due, error) {
	s.mu.Lock()
	var due []Due
	for id, d := range s.pending {
		if !d.DueAt.After(now) {
			due = append(due, d)
			delete(s.pending, id)
		}
	}
	s.mu.Unlock()

	sort.Slice(due, func(i, j int) bool {
		if !due[i].DueAt.Equal(due[j].DueAt) {
			return due[i].DueAt.Before(due[j].DueAt)
		}
		return due[i].NotificationID < due[j].NotificationID
	})
	return due, nil
}
