package subscribers

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/eventbus"
	"github.com/felixgeelhaar/nudge/pkg/observability"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 12, 10, 30, 0, 0, time.UTC)

type mockTaskRepo struct {
	task.Repository
	mock.Mock
}

func (m *mockTaskRepo) FindByID(ctx context.Context, userID, id string) (*task.Task, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func reminderEvent(t *testing.T, taskID, notificationID string) *eventbus.ConsumedEvent {
	t.Helper()
	payload, err := json.Marshal(reminderDuePayload{NotificationID: notificationID, DueAt: now})
	require.NoError(t, err)
	return eventbus.NewConsumedEvent(uuid.New(), taskID, task.AggregateType, task.RoutingKeyReminderDue, payload, "user-1")
}

func reminderTask(mutate func(*task.Snapshot)) *task.Task {
	s := task.Snapshot{
		ID:             "task-1",
		UserID:         "user-1",
		Text:           "water the plants",
		CreatedAt:      now,
		UpdatedAt:      now,
		NotificationID: "n-1",
		NextReminderAt: &now,
	}
	if mutate != nil {
		mutate(&s)
	}
	return task.Rehydrate(s)
}

func TestReminderNudger(t *testing.T) {
	ctx := context.Background()

	t.Run("nudges for an open task", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("FindByID", ctx, "user-1", "task-1").Return(reminderTask(nil), nil)
		metrics := observability.NewInMemoryMetrics()
		var got []Nudge
		nudger := NewReminderNudger(repo, func(_ context.Context, n Nudge) { got = append(got, n) }, nil, metrics)

		err := nudger.Handle(ctx, reminderEvent(t, "task-1", "n-1"))

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "water the plants", got[0].Text)
		assert.Equal(t, "n-1", got[0].NotificationID)
		assert.True(t, now.Equal(got[0].DueAt))
		assert.Equal(t, int64(1), metrics.GetCounter(observability.MetricEventsConsumed,
			observability.T("routing_key", task.RoutingKeyReminderDue)))
	})

	t.Run("drops stale reminders", func(t *testing.T) {
		tests := []struct {
			name string
			task *task.Task
			err  error
		}{
			{name: "task gone", err: task.ErrTaskNotFound},
			{name: "task completed", task: reminderTask(func(s *task.Snapshot) { s.Completed = true })},
			{name: "task rescheduled", task: reminderTask(func(s *task.Snapshot) { s.NotificationID = "n-2" })},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				repo := new(mockTaskRepo)
				if tt.task != nil {
					repo.On("FindByID", ctx, "user-1", "task-1").Return(tt.task, nil)
				} else {
					repo.On("FindByID", ctx, "user-1", "task-1").Return(nil, tt.err)
				}
				called := false
				nudger := NewReminderNudger(repo, func(context.Context, Nudge) { called = true }, nil, nil)

				require.NoError(t, nudger.Handle(ctx, reminderEvent(t, "task-1", "n-1")))
				assert.False(t, called)
			})
		}
	})

	t.Run("returns store errors for redelivery", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("FindByID", ctx, "user-1", "task-1").Return(nil, errors.New("store down"))
		nudger := NewReminderNudger(repo, nil, nil, nil)

		assert.Error(t, nudger.Handle(ctx, reminderEvent(t, "task-1", "n-1")))
	})

	t.Run("rejects a malformed payload", func(t *testing.T) {
		nudger := NewReminderNudger(new(mockTaskRepo), nil, nil, nil)
		event := reminderEvent(t, "task-1", "n-1")
		event.Payload = json.RawMessage(`"not an object"`)

		assert.Error(t, nudger.Handle(ctx, event))
	})

	t.Run("handles reminder due events only", func(t *testing.T) {
		nudger := NewReminderNudger(nil, nil, nil, nil)
		assert.Equal(t, []string{task.RoutingKeyReminderDue}, nudger.EventTypes())
	})
}
