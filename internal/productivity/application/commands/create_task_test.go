package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/application/services"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/value_objects"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTracker() *services.FocusTracker {
	engine := services.NewPriorityEngine(services.DefaultWeights())
	return services.NewFocusTracker(services.NewSession("user-1"), services.NewRanker(engine, nil),
		services.WithClock(func() time.Time { return now }))
}

func TestCreateTaskHandler_Handle(t *testing.T) {
	ctx := context.Background()

	t.Run("saves the task and records the created event", func(t *testing.T) {
		repo := new(mockTaskRepo)
		outboxRepo := outbox.NewInMemoryRepository()
		uow := newUnitOfWork()
		tracker := newTracker()
		var saved *task.Task
		repo.On("Save", mock.Anything, mock.AnythingOfType("*task.Task")).
			Run(func(args mock.Arguments) { saved = args.Get(1).(*task.Task) }).
			Return(nil)

		handler := NewCreateTaskHandler(repo, outboxRepo, uow, tracker)
		handler.clock = func() time.Time { return now }
		tomorrow := now.Add(24 * time.Hour)

		result, err := handler.Handle(ctx, CreateTaskCommand{
			UserID:       "user-1",
			Text:         "  file taxes ",
			Priority:     "high",
			Intervals:    []int{30, 10},
			ScheduledFor: &tomorrow,
			Subtasks:     []string{"find receipts", "open portal"},
		})

		require.NoError(t, err)
		require.NotNil(t, saved)
		assert.Equal(t, saved.ID(), result.TaskID)
		assert.Equal(t, "file taxes", saved.Text())
		assert.Equal(t, value_objects.PriorityHigh, saved.Priority())
		assert.Equal(t, []value_objects.ReminderInterval{30, 10}, saved.Intervals())
		assert.Equal(t, 2, saved.SubtaskCount())
		assert.True(t, saved.CreatedAt().Equal(now))
		assert.Empty(t, saved.DomainEvents())

		msgs := outboxRepo.Messages()
		require.Len(t, msgs, 1)
		assert.Equal(t, task.RoutingKeyCreated, msgs[0].RoutingKey)
		assert.Equal(t, saved.ID(), msgs[0].AggregateID)

		_, inSession := tracker.Session().Get(saved.ID())
		assert.True(t, inSession, "future tasks still join the session")
		assert.Empty(t, tracker.Last().Ordered, "but are not ranked yet")
		uow.AssertCalled(t, "Commit", mock.Anything)
	})

	t.Run("ranks a task due today right away", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		tracker := newTracker()
		handler := NewCreateTaskHandler(repo, outbox.NewInMemoryRepository(), newUnitOfWork(), tracker)
		handler.clock = func() time.Time { return now }

		result, err := handler.Handle(ctx, CreateTaskCommand{UserID: "user-1", Text: "stretch"})

		require.NoError(t, err)
		assert.Equal(t, result.TaskID, tracker.Last().TopID())
	})

	t.Run("keeps other users' tasks out of the session", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("Save", mock.Anything, mock.Anything).Return(nil)
		tracker := newTracker()
		handler := NewCreateTaskHandler(repo, outbox.NewInMemoryRepository(), newUnitOfWork(), tracker)

		_, err := handler.Handle(ctx, CreateTaskCommand{UserID: "user-2", Text: "stretch"})

		require.NoError(t, err)
		assert.Zero(t, tracker.Session().Len())
	})

	invalid := []struct {
		name    string
		cmd     CreateTaskCommand
		wantErr error
	}{
		{name: "empty text", cmd: CreateTaskCommand{UserID: "user-1", Text: "  "}, wantErr: task.ErrEmptyText},
		{name: "unknown priority", cmd: CreateTaskCommand{UserID: "user-1", Text: "a", Priority: "whenever"}, wantErr: value_objects.ErrInvalidPriority},
		{name: "zero interval", cmd: CreateTaskCommand{UserID: "user-1", Text: "a", Intervals: []int{0}}, wantErr: value_objects.ErrInvalidInterval},
		{name: "blank subtask", cmd: CreateTaskCommand{UserID: "user-1", Text: "a", Subtasks: []string{""}}, wantErr: task.ErrEmptyText},
	}
	for _, tt := range invalid {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			repo := new(mockTaskRepo)
			uow := new(mockUnitOfWork)
			handler := NewCreateTaskHandler(repo, outbox.NewInMemoryRepository(), uow, nil)

			_, err := handler.Handle(ctx, tt.cmd)

			assert.ErrorIs(t, err, tt.wantErr)
			repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
			uow.AssertNotCalled(t, "Begin", mock.Anything)
		})
	}

	t.Run("rolls back when saving fails", func(t *testing.T) {
		repo := new(mockTaskRepo)
		repo.On("Save", mock.Anything, mock.Anything).Return(errors.New("disk full"))
		outboxRepo := outbox.NewInMemoryRepository()
		uow := newUnitOfWork()
		tracker := newTracker()
		handler := NewCreateTaskHandler(repo, outboxRepo, uow, tracker)

		_, err := handler.Handle(ctx, CreateTaskCommand{UserID: "user-1", Text: "a"})

		assert.EqualError(t, err, "disk full")
		assert.Empty(t, outboxRepo.Messages())
		assert.Zero(t, tracker.Session().Len())
		uow.AssertCalled(t, "Rollback", mock.Anything)
		uow.AssertNotCalled(t, "Commit", mock.Anything)
	})
}
