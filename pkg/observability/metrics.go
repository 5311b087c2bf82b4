package observability

import (
	"slices"
	"strings"
	"sync"
	"time"
)

// Metrics records counters, gauges and timings. Tags label a series; the
// same tags in any order address the same series.
type Metrics interface {
	Counter(name string, value int64, tags ...Tag)
	Gauge(name string, value float64, tags ...Tag)
	Timing(name string, duration time.Duration, tags ...Tag)
}

// Tag is one metric label.
type Tag struct {
	Key   string
	Value string
}

// T is shorthand for Tag{Key: key, Value: value}.
func T(key, value string) Tag {
	return Tag{Key: key, Value: value}
}

// NoopMetrics discards everything.
type NoopMetrics struct{}

func (NoopMetrics) Counter(string, int64, ...Tag)        {}
func (NoopMetrics) Gauge(string, float64, ...Tag)        {}
func (NoopMetrics) Timing(string, time.Duration, ...Tag) {}

// InMemoryMetrics keeps every series in process for the lifetime of the
// container.
type InMemoryMetrics struct {
	mu       sync.RWMutex
	counters map[string]int64
	gauges   map[string]float64
	timings  map[string][]time.Duration
}

func NewInMemoryMetrics() *InMemoryMetrics {
	return &InMemoryMetrics{
		counters: make(map[string]int64),
		gauges:   make(map[string]float64),
		timings:  make(map[string][]time.Duration),
	}
}

func (m *InMemoryMetrics) Counter(name string, value int64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.counters[seriesKey(name, tags)] += value
}

func (m *InMemoryMetrics) Gauge(name string, value float64, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gauges[seriesKey(name, tags)] = value
}

func (m *InMemoryMetrics) Timing(name string, duration time.Duration, tags ...Tag) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := seriesKey(name, tags)
	m.timings[key] = append(m.timings[key], duration)
}

func (m *InMemoryMetrics) GetCounter(name string, tags ...Tag) int64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counters[seriesKey(name, tags)]
}

func (m *InMemoryMetrics) GetGauge(name string, tags ...Tag) float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gauges[seriesKey(name, tags)]
}

// GetTimings returns a copy of the recorded durations, oldest first.
func (m *InMemoryMetrics) GetTimings(name string, tags ...Tag) []time.Duration {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return slices.Clone(m.timings[seriesKey(name, tags)])
}

// seriesKey renders name{k1=v1,k2=v2} with tags sorted by key.
func seriesKey(name string, tags []Tag) string {
	if len(tags) == 0 {
		return name
	}
	sorted := slices.Clone(tags)
	slices.SortFunc(sorted, func(a, b Tag) int { return strings.Compare(a.Key, b.Key) })

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, tag := range sorted {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(tag.Key)
		b.WriteByte('=')
		b.WriteString(tag.Value)
	}
	b.WriteByte('}')
	return b.String()
}

const (
	MetricOperationErrors = "nudge.operation.errors"

	MetricRankPasses      = "nudge.rank.passes"
	MetricRankDuration    = "nudge.rank.duration"
	MetricRankedTasks     = "nudge.rank.tasks"
	MetricFocusChanges    = "nudge.rank.focus_changes"
	MetricWeightsReloaded = "nudge.rank.weights_reloaded"

	MetricTasksCompleted     = "nudge.lifecycle.completed"
	MetricTasksDeleted       = "nudge.lifecycle.deleted"
	MetricTasksRescheduled   = "nudge.lifecycle.rescheduled"
	MetricLifecycleRejected  = "nudge.lifecycle.rejected"
	MetricLifecycleRollbacks = "nudge.lifecycle.rollbacks"

	MetricRemindersScheduled = "nudge.reminders.scheduled"
	MetricRemindersCanceled  = "nudge.reminders.canceled"
	MetricRemindersFired     = "nudge.reminders.fired"

	MetricStoreOperations = "nudge.store.operations"
	MetricStoreFailures   = "nudge.store.failures"

	MetricEventsPublished = "nudge.events.published"
	MetricEventsConsumed  = "nudge.events.consumed"
)
