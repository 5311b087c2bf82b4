package services

import (
	"context"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/felixgeelhaar/nudge/pkg/observability"
)

// DefaultFocusTick is how often the ranking is refreshed for the clock alone.
const DefaultFocusTick = time.Minute

// Observer receives ranking results.
type Observer interface {
	OnFocusChanged(top *RankedTask)
	OnRankingUpdated(ordered []RankedTask)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are skipped.
type ObserverFuncs struct {
	FocusChanged   func(top *RankedTask)
	RankingUpdated func(ordered []RankedTask)
}

func (o ObserverFuncs) OnFocusChanged(top *RankedTask) {
	if o.FocusChanged != nil {
		o.FocusChanged(top)
	}
}

func (o ObserverFuncs) OnRankingUpdated(ordered []RankedTask) {
	if o.RankingUpdated != nil {
		o.RankingUpdated(ordered)
	}
}

// FocusTracker recomputes the ranking of a session on explicit triggers
// and tells observers about the result.
type FocusTracker struct {
	session *Session
	ranker  *Ranker
	clock   func() time.Time
	logger  *slog.Logger
	metrics observability.Metrics

	passMu sync.Mutex
	last   RankResult

	obsMu     sync.Mutex
	observers map[int]Observer
	nextObsID int
}

// FocusTrackerOption configures a FocusTracker.
type FocusTrackerOption func(*FocusTracker)

// WithClock overrides time.Now.
func WithClock(clock func() time.Time) FocusTrackerOption {
	return func(f *FocusTracker) { f.clock = clock }
}

// WithTrackerLogger sets the logger.
func WithTrackerLogger(logger *slog.Logger) FocusTrackerOption {
	return func(f *FocusTracker) { f.logger = logger }
}

// WithTrackerMetrics sets the metrics sink.
func WithTrackerMetrics(metrics observability.Metrics) FocusTrackerOption {
	return func(f *FocusTracker) { f.metrics = metrics }
}

// NewFocusTracker creates a tracker for a session.
func NewFocusTracker(session *Session, ranker *Ranker, opts ...FocusTrackerOption) *FocusTracker {
	f := &FocusTracker{
		session:   session,
		ranker:    ranker,
		clock:     time.Now,
		logger:    slog.Default(),
		metrics:   observability.NoopMetrics{},
		observers: make(map[int]Observer),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Subscribe registers an observer. The returned function disposes it; a
// disposed observer receives no further callbacks.
func (f *FocusTracker) Subscribe(o Observer) (unsubscribe func()) {
	f.obsMu.Lock()
	id := f.nextObsID
	f.nextObsID++
	f.observers[id] = o
	f.obsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			f.obsMu.Lock()
			delete(f.observers, id)
			f.obsMu.Unlock()
		})
	}
}

// Recompute runs one ranking pass over the session at the current time.
func (f *FocusTracker) Recompute() RankResult {
	f.passMu.Lock()
	defer f.passMu.Unlock()

	now := f.clock()
	timer := observability.StartTimer(observability.MetricRankDuration, f.metrics)
	result := f.ranker.Rank(f.session.Tasks(), now, f.session.Focus())
	timer.Stop()

	f.metrics.Counter(observability.MetricRankPasses, 1, observability.T("strategy", f.ranker.Strategy().Name()))
	f.metrics.Gauge(observability.MetricRankedTasks, float64(len(result.Ordered)))
	f.last = result

	prev, changed := f.session.swapTop(result.TopID())

	for _, o := range f.snapshotObservers() {
		o.OnRankingUpdated(result.Ordered)
	}
	if changed {
		f.metrics.Counter(observability.MetricFocusChanges, 1)
		f.logger.Info("focus changed",
			"user_id", f.session.UserID(),
			"previous_task_id", prev,
			"task_id", result.TopID(),
		)
		for _, o := range f.snapshotObservers() {
			o.OnFocusChanged(result.Top)
		}
	}
	return result
}

// Last returns the result of the latest pass.
func (f *FocusTracker) Last() RankResult {
	f.passMu.Lock()
	defer f.passMu.Unlock()
	return f.last
}

// Session returns the tracked session.
func (f *FocusTracker) Session() *Session { return f.session }

// Strategy returns the name of the scoring strategy in use.
func (f *FocusTracker) Strategy() string { return f.ranker.Strategy().Name() }

// Score scores one task the way the next pass would.
func (f *FocusTracker) Score(t *task.Task) Score {
	return f.ranker.Strategy().Score(t, f.clock(), f.session.Focus())
}

// Run recomputes on every tick until ctx is canceled.
func (f *FocusTracker) Run(ctx context.Context, tick time.Duration) error {
	if tick <= 0 {
		tick = DefaultFocusTick
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	f.Recompute()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			f.Recompute()
		}
	}
}

func (f *FocusTracker) snapshotObservers() []Observer {
	f.obsMu.Lock()
	defer f.obsMu.Unlock()
	ids := make([]int, 0, len(f.observers))
	for id := range f.observers {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	out := make([]Observer, len(ids))
	for i, id := range ids {
		out[i] = f.observers[id]
	}
	return out
}
