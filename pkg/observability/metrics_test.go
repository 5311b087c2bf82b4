package observability

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestInMemoryMetrics(t *testing.T) {
	t.Run("counters accumulate", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Counter(MetricTasksCompleted, 1)
		m.Counter(MetricTasksCompleted, 2)

		assert.Equal(t, int64(3), m.GetCounter(MetricTasksCompleted))
		assert.Zero(t, m.GetCounter(MetricTasksDeleted))
	})

	t.Run("tags separate series", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Counter(MetricEventsConsumed, 1, T("routing_key", "core.reminder.due"))
		m.Counter(MetricEventsConsumed, 1, T("routing_key", "core.task.completed"))
		m.Counter(MetricEventsConsumed, 1, T("routing_key", "core.reminder.due"))

		assert.Equal(t, int64(2), m.GetCounter(MetricEventsConsumed, T("routing_key", "core.reminder.due")))
		assert.Equal(t, int64(1), m.GetCounter(MetricEventsConsumed, T("routing_key", "core.task.completed")))
		assert.Zero(t, m.GetCounter(MetricEventsConsumed))
	})

	t.Run("tag order does not matter", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Counter(MetricOperationErrors, 1, T("metric", "store"), T("op", "patch"))

		assert.Equal(t, int64(1), m.GetCounter(MetricOperationErrors, T("op", "patch"), T("metric", "store")))
	})

	t.Run("gauges keep the last value", func(t *testing.T) {
		m := NewInMemoryMetrics()

		m.Gauge(MetricRankedTasks, 4)
		m.Gauge(MetricRankedTasks, 2)

		assert.Equal(t, 2.0, m.GetGauge(MetricRankedTasks))
	})

	t.Run("timings are returned as a copy", func(t *testing.T) {
		m := NewInMemoryMetrics()
		m.Timing(MetricRankDuration, 10*time.Millisecond)
		m.Timing(MetricRankDuration, 20*time.Millisecond)

		timings := m.GetTimings(MetricRankDuration)
		timings[0] = 0

		assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, m.GetTimings(MetricRankDuration))
	})

	t.Run("noop metrics accept anything", func(t *testing.T) {
		var m Metrics = NoopMetrics{}

		assert.NotPanics(t, func() {
			m.Counter("x", 1)
			m.Gauge("x", 1)
			m.Timing("x", time.Second)
		})
	})
}

func TestSeriesKey(t *testing.T) {
	tests := []struct {
		name     string
		tags     []Tag
		expected string
	}{
		{"no tags", nil, "nudge.rank.passes"},
		{"one tag", []Tag{T("user", "u1")}, "nudge.rank.passes{user=u1}"},
		{"tags sorted by key", []Tag{T("user", "u1"), T("strategy", "weighted")}, "nudge.rank.passes{strategy=weighted,user=u1}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, seriesKey(MetricRankPasses, tt.tags))
		})
	}
}
