package queries

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/value_objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestListTasksHandler_Handle(t *testing.T) {
	ctx := context.Background()
	tasks := []*task.Task{
		newTask("today", func(s *task.Snapshot) { s.Priority = value_objects.PriorityHigh }),
		newTask("later", func(s *task.Snapshot) { s.ScheduledFor = at(now.Add(48 * time.Hour)) }),
		newTask("done", func(s *task.Snapshot) {
			s.Completed = true
			s.CompletedAt = at(now.Add(-time.Hour))
		}),
		newTask("tonight", func(s *task.Snapshot) { s.ScheduledFor = at(now.Add(5 * time.Hour)) }),
	}

	tests := []struct {
		name  string
		query ListTasksQuery
		want  []string
	}{
		{name: "active is the default view", query: ListTasksQuery{UserID: "user-1"}, want: []string{"today", "tonight"}},
		{name: "future tasks", query: ListTasksQuery{UserID: "user-1", View: ViewFuture}, want: []string{"later"}},
		{name: "completed tasks", query: ListTasksQuery{UserID: "user-1", View: ViewCompleted}, want: []string{"done"}},
		{name: "everything", query: ListTasksQuery{UserID: "user-1", View: ViewAll}, want: []string{"today", "later", "done", "tonight"}},
		{name: "limit applies after filtering", query: ListTasksQuery{UserID: "user-1", View: ViewAll, Limit: 2}, want: []string{"today", "later"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(mockTaskRepo)
			repo.On("FindByUserID", ctx, "user-1").Return(tasks, nil)
			handler := NewListTasksHandler(repo)
			handler.clock = func() time.Time { return now }

			got, err := handler.Handle(ctx, tt.query)

			require.NoError(t, err)
			ids := make([]string, len(got))
			for i, dto := range got {
				ids[i] = dto.ID
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	t.Run("maps task fields", func(t *testing.T) {
		repo := new(mockTaskRepo)
		reminded := newTask("r", func(s *task.Snapshot) {
			s.Intervals = []value_objects.ReminderInterval{30, 10}
			s.NotificationID = "n1"
			s.NextReminderAt = at(now.Add(10 * time.Minute))
			s.RescheduleCount = 2
			s.TimerActive = true
		})
		repo.On("FindByUserID", ctx, "user-1").Return([]*task.Task{reminded}, nil)
		handler := NewListTasksHandler(repo)
		handler.clock = func() time.Time { return now }

		got, err := handler.Handle(ctx, ListTasksQuery{UserID: "user-1"})

		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "task r", got[0].Text)
		assert.Equal(t, "lowest", got[0].Priority)
		assert.Equal(t, []int{30, 10}, got[0].Intervals)
		assert.Equal(t, 2, got[0].RescheduleCount)
		assert.True(t, got[0].TimerActive)
		require.NotNil(t, got[0].NextReminderAt)
		assert.True(t, got[0].NextReminderAt.Equal(now.Add(10*time.Minute)))
	})

	t.Run("rejects an unknown view", func(t *testing.T) {
		repo := new(mockTaskRepo)
		handler := NewListTasksHandler(repo)

		_, err := handler.Handle(ctx, ListTasksQuery{UserID: "user-1", View: "someday"})

		assert.Error(t, err)
		repo.AssertNotCalled(t, "FindByUserID", mock.Anything, mock.Anything)
	})

	t.Run("returns repository errors", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("FindByUserID", ctx, "user-1").Return(nil, errors.New("disk gone"))
		handler := NewListTasksHandler(repo)

		_, err := handler.Handle(ctx, ListTasksQuery{UserID: "user-1"})

		assert.EqualError(t, err, "disk gone")
	})
}

func TestGetTaskHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the task", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("FindByID", ctx, "user-1", "t1").Return(newTask("t1", nil), nil)

		got, err := NewGetTaskHandler(repo).Handle(ctx, GetTaskQuery{TaskID: "t1", UserID: "user-1"})

		require.NoError(t, err)
		assert.Equal(t, "t1", got.ID)
		assert.Equal(t, "task t1", got.Text)
		repo.AssertExpectations(t)
	})

	t.Run("hides tasks of other users", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("FindByID", ctx, "user-2", "t1").Return(newTask("t1", nil), nil)

		_, err := NewGetTaskHandler(repo).Handle(ctx, GetTaskQuery{TaskID: "t1", UserID: "user-2"})

		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("passes not found through", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("FindByID", ctx, "user-1", "missing").Return(nil, task.ErrTaskNotFound)

		_, err := NewGetTaskHandler(repo).Handle(ctx, GetTaskQuery{TaskID: "missing", UserID: "user-1"})

		assert.ErrorIs(t, err, ErrTaskNotFound)
	})

	t.Run("rejects an empty id", func(t *testing.T) {
		repo := new(mockTaskRepo)

		_, err := NewGetTaskHandler(repo).Handle(ctx, GetTaskQuery{UserID: "user-1"})

		assert.ErrorIs(t, err, ErrTaskNotFound)
		repo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything, mock.Anything)
	})
}
