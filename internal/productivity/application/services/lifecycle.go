package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/leaderboard"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/value_objects"
	sharedApplication "github.com/felixgeelhaar/nudge/internal/shared/application"
	"github.com/felixgeelhaar/nudge/internal/shared/infrastructure/outbox"
	"github.com/felixgeelhaar/nudge/pkg/observability"
)

// DefaultRescheduleInterval is used for tasks without a reminder cadence.
const DefaultRescheduleInterval value_objects.ReminderInterval = 15

// Result reports the outcome of a lifecycle operation.
type Result struct {
	Op         Operation
	Task       *task.Task
	RolledBack bool
}

// LifecycleAdapter applies complete, delete and reschedule transitions.
//
// Local state changes first so the next ranking pass reflects the
// transition without waiting for the store. When the store write fails
// the local change is rolled back and a *StoreFailure is returned.
// The task passed in is never modified; Result.Task holds the new state.
type LifecycleAdapter struct {
	session     *Session
	repo        task.Repository
	reminders   task.ReminderScheduler
	uow         sharedApplication.UnitOfWork
	outboxRepo  outbox.Repository
	leaderboard leaderboard.Repository
	tracker     *FocusTracker

	clock           func() time.Time
	defaultInterval value_objects.ReminderInterval
	logger          *slog.Logger
	metrics         observability.Metrics
}

// LifecycleOption configures a LifecycleAdapter.
type LifecycleOption func(*LifecycleAdapter)

// WithUnitOfWork runs each store write and its outbox messages in one unit of work.
func WithUnitOfWork(uow sharedApplication.UnitOfWork) LifecycleOption {
	return func(a *LifecycleAdapter) { a.uow = uow }
}

// WithOutbox records domain events in the outbox.
func WithOutbox(repo outbox.Repository) LifecycleOption {
	return func(a *LifecycleAdapter) { a.outboxRepo = repo }
}

// WithLeaderboard counts completions.
func WithLeaderboard(repo leaderboard.Repository) LifecycleOption {
	return func(a *LifecycleAdapter) { a.leaderboard = repo }
}

// WithTracker recomputes the ranking after every local change.
func WithTracker(tracker *FocusTracker) LifecycleOption {
	return func(a *LifecycleAdapter) { a.tracker = tracker }
}

// WithLifecycleClock overrides time.Now.
func WithLifecycleClock(clock func() time.Time) LifecycleOption {
	return func(a *LifecycleAdapter) { a.clock = clock }
}

// WithDefaultInterval sets the reminder cadence for tasks that have none.
func WithDefaultInterval(iv value_objects.ReminderInterval) LifecycleOption {
	return func(a *LifecycleAdapter) {
		if iv > 0 {
			a.defaultInterval = iv
		}
	}
}

// WithLifecycleLogger sets the logger.
func WithLifecycleLogger(logger *slog.Logger) LifecycleOption {
	return func(a *LifecycleAdapter) { a.logger = logger }
}

// WithLifecycleMetrics sets the metrics sink.
func WithLifecycleMetrics(metrics observability.Metrics) LifecycleOption {
	return func(a *LifecycleAdapter) { a.metrics = metrics }
}

// NewLifecycleAdapter creates a lifecycle adapter for a session.
func NewLifecycleAdapter(
	session *Session,
	repo task.Repository,
	reminders task.ReminderScheduler,
	opts ...LifecycleOption,
) *LifecycleAdapter {
	a := &LifecycleAdapter{
		session:         session,
		repo:            repo,
		reminders:       reminders,
		clock:           time.Now,
		defaultInterval: DefaultRescheduleInterval,
		logger:          slog.Default(),
		metrics:         observability.NoopMetrics{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Complete marks a task completed and removes it from the active set.
func (a *LifecycleAdapter) Complete(ctx context.Context, t *task.Task) (Result, error) {
	return a.execute(ctx, OpComplete, t)
}

// Delete removes a task.
func (a *LifecycleAdapter) Delete(ctx context.Context, t *task.Task) (Result, error) {
	return a.execute(ctx, OpDelete, t)
}

// Reschedule defers a task to its next reminder. The task stays active
// with a larger reschedule penalty and a running timer.
func (a *LifecycleAdapter) Reschedule(ctx context.Context, t *task.Task) (Result, error) {
	return a.execute(ctx, OpReschedule, t)
}

// Submit runs an operation in the background. done is called with the
// outcome unless ctx was canceled first; the store write itself is not
// abandoned when ctx is canceled. The returned channel closes when the
// operation has finished.
func (a *LifecycleAdapter) Submit(ctx context.Context, op Operation, t *task.Task, done func(Result, error)) <-chan struct{} {
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		res, err := a.execute(ctx, op, t)
		if done != nil && ctx.Err() == nil {
			done(res, err)
		}
	}()
	return finished
}

func (a *LifecycleAdapter) execute(ctx context.Context, op Operation, t *task.Task) (Result, error) {
	if t == nil || t.ID() == "" {
		a.metrics.Counter(observability.MetricLifecycleRejected, 1, observability.T("op", string(op)), observability.T("reason", "invalid"))
		return Result{Op: op, Task: t}, fmt.Errorf("%s: %w", op, ErrInvalidTask)
	}
	if !a.session.claim(t.ID()) {
		a.metrics.Counter(observability.MetricLifecycleRejected, 1, observability.T("op", string(op)), observability.T("reason", "in_flight"))
		return Result{Op: op, Task: t}, fmt.Errorf("%s task %s: %w", op, t.ID(), ErrAlreadyProcessing)
	}
	defer a.session.release(t.ID())

	ctx = context.WithoutCancel(ctx)
	switch op {
	case OpComplete:
		return a.complete(ctx, t)
	case OpDelete:
		return a.delete(ctx, t)
	case OpReschedule:
		return a.reschedule(ctx, t)
	default:
		return Result{Op: op, Task: t}, fmt.Errorf("unknown lifecycle operation %q", op)
	}
}

func (a *LifecycleAdapter) complete(ctx context.Context, t *task.Task) (Result, error) {
	now := a.clock()
	done := t.Clone()
	if err := done.Complete(now); err != nil {
		return Result{Op: OpComplete, Task: t}, fmt.Errorf("complete task %s: %w: %w", t.ID(), ErrInvalidTask, err)
	}
	prev := a.session.take(t.ID())
	a.recompute()

	err := a.persist(ctx, done, func(txCtx context.Context) error {
		return a.repo.Patch(txCtx, done,
			task.FieldCompleted, task.FieldCompletedAt, task.FieldTimerActive, task.FieldUpdatedAt, task.FieldVersion)
	})
	if err != nil {
		a.putBack(prev)
		return a.storeFailure(OpComplete, t, err)
	}
	done.ClearDomainEvents()
	a.session.finish(t.ID())

	a.cancelReminder(ctx, notificationID(t))
	if a.leaderboard != nil {
		if _, err := a.leaderboard.RecordCompletion(ctx, t.UserID(), now); err != nil {
			a.logger.Warn("failed to record completion on leaderboard", "task_id", t.ID(), "error", err)
		}
	}

	a.metrics.Counter(observability.MetricTasksCompleted, 1)
	a.logger.Info("task completed", "task_id", t.ID(), "user_id", t.UserID())
	return Result{Op: OpComplete, Task: done}, nil
}

func (a *LifecycleAdapter) delete(ctx context.Context, t *task.Task) (Result, error) {
	now := a.clock()
	gone := t.Clone()
	gone.MarkDeleted(now)
	prev := a.session.take(t.ID())
	a.recompute()

	err := a.persist(ctx, gone, func(txCtx context.Context) error {
		return a.repo.Delete(txCtx, gone)
	})
	if err != nil {
		a.putBack(prev)
		return a.storeFailure(OpDelete, t, err)
	}
	gone.ClearDomainEvents()
	a.session.finish(t.ID())
	a.cancelReminder(ctx, notificationID(t))

	a.metrics.Counter(observability.MetricTasksDeleted, 1)
	a.logger.Info("task deleted", "task_id", t.ID(), "user_id", t.UserID())
	return Result{Op: OpDelete, Task: gone}, nil
}

func (a *LifecycleAdapter) reschedule(ctx context.Context, t *task.Task) (Result, error) {
	if t.IsCompleted() {
		return Result{Op: OpReschedule, Task: t}, fmt.Errorf("reschedule task %s: %w: %w", t.ID(), ErrInvalidTask, task.ErrTaskAlreadyCompleted)
	}

	interval, ok := t.EffectiveInterval()
	if !ok {
		interval = a.defaultInterval
	}
	reminder, err := a.reminders.ScheduleReminder(ctx, t.ID(), interval)
	if err != nil {
		return a.storeFailure(OpReschedule, t, fmt.Errorf("schedule reminder: %w", err))
	}
	a.metrics.Counter(observability.MetricRemindersScheduled, 1)

	next := t.Clone()
	if err := next.Reschedule(reminder, a.clock()); err != nil {
		a.cancelReminder(ctx, reminder.NotificationID)
		return Result{Op: OpReschedule, Task: t}, fmt.Errorf("reschedule task %s: %w: %w", t.ID(), ErrInvalidTask, err)
	}
	prevTimer := a.session.StartTimer(t.ID())
	prev := a.session.swap(next)
	a.recompute()

	err = a.persist(ctx, next, func(txCtx context.Context) error {
		return a.repo.Patch(txCtx, next,
			task.FieldRescheduleCount, task.FieldNotificationID, task.FieldNextReminderAt,
			task.FieldTimerActive, task.FieldUpdatedAt, task.FieldVersion)
	})
	if err != nil {
		if prev != nil {
			a.session.swap(prev)
		}
		a.session.StartTimer(prevTimer)
		a.cancelReminder(ctx, reminder.NotificationID)
		a.recompute()
		return a.storeFailure(OpReschedule, t, err)
	}
	next.ClearDomainEvents()
	if old := notificationID(t); old != reminder.NotificationID {
		a.cancelReminder(ctx, old)
	}

	a.metrics.Counter(observability.MetricTasksRescheduled, 1)
	a.logger.Info("task rescheduled",
		"task_id", t.ID(),
		"reschedule_count", next.RescheduleCount(),
		"next_reminder_at", reminder.NextReminderAt,
	)
	return Result{Op: OpReschedule, Task: next}, nil
}

// putBack returns a task taken out by a failed operation.
func (a *LifecycleAdapter) putBack(prev *task.Task) {
	if prev != nil {
		a.session.Add(prev)
	}
	a.recompute()
}

func notificationID(t *task.Task) string {
	if r := t.Reminder(); r != nil {
		return r.NotificationID
	}
	return ""
}

// persist runs write and records the task's pending events in the outbox
// within one unit of work.
func (a *LifecycleAdapter) persist(ctx context.Context, t *task.Task, write func(ctx context.Context) error) error {
	fn := func(txCtx context.Context) error {
		if err := write(txCtx); err != nil {
			return err
		}
		return a.recordEvents(txCtx, t)
	}
	timer := observability.StartTimer(observability.MetricStoreOperations, a.metrics)
	var err error
	if a.uow == nil {
		err = fn(ctx)
	} else {
		err = sharedApplication.WithUnitOfWork(ctx, a.uow, fn)
	}
	timer.StopWithError(err)
	if err != nil {
		a.metrics.Counter(observability.MetricStoreFailures, 1)
	}
	return err
}

func (a *LifecycleAdapter) recordEvents(ctx context.Context, t *task.Task) error {
	if a.outboxRepo == nil {
		return nil
	}
	events := t.DomainEvents()
	if len(events) == 0 {
		return nil
	}
	sharedApplication.ApplyEventMetadata(events, sharedApplication.NewEventMetadata(ctx, t.UserID()))

	msgs := make([]*outbox.Message, 0, len(events))
	for _, event := range events {
		msg, err := outbox.NewMessage(event)
		if err != nil {
			return err
		}
		msgs = append(msgs, msg)
	}
	return a.outboxRepo.SaveBatch(ctx, msgs)
}

func (a *LifecycleAdapter) cancelReminder(ctx context.Context, notificationID string) {
	if notificationID == "" {
		return
	}
	if err := a.reminders.CancelReminder(ctx, notificationID); err != nil {
		a.logger.Warn("failed to cancel reminder", "notification_id", notificationID, "error", err)
		return
	}
	a.metrics.Counter(observability.MetricRemindersCanceled, 1)
}

func (a *LifecycleAdapter) storeFailure(op Operation, t *task.Task, err error) (Result, error) {
	a.metrics.Counter(observability.MetricLifecycleRollbacks, 1, observability.T("op", string(op)))
	a.logger.Warn("lifecycle operation rolled back",
		"op", op,
		"task_id", t.ID(),
		"error", err,
	)
	return Result{Op: op, Task: t, RolledBack: true}, &StoreFailure{Op: op, TaskID: t.ID(), Err: err}
}

func (a *LifecycleAdapter) recompute() {
	if a.tracker != nil {
		a.tracker.Recompute()
	}
}
