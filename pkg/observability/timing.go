package observability

import (
	"time"
)

// Timer measures one operation and reports it as a timing metric.
type Timer struct {
	metric  string
	start   time.Time
	metrics Metrics
	tags    []Tag
	now     func() time.Time
}

// StartTimer starts measuring the operation reported under metric.
// A nil metrics collector is replaced by NoopMetrics.
func StartTimer(metric string, metrics Metrics, tags ...Tag) *Timer {
	if metrics == nil {
		metrics = NoopMetrics{}
	}
	return &Timer{
		metric:  metric,
		start:   time.Now(),
		metrics: metrics,
		tags:    tags,
		now:     time.Now,
	}
}

// Stop records the elapsed time and returns it.
func (t *Timer) Stop() time.Duration {
	d := t.now().Sub(t.start)
	t.metrics.Timing(t.metric, d, t.tags...)
	return d
}

// StopWithError records the elapsed time and, when err is non-nil, bumps
// the operation error counter under the same tags.
func (t *Timer) StopWithError(err error) time.Duration {
	d := t.Stop()
	if err != nil {
		tags := append([]Tag{T("metric", t.metric)}, t.tags...)
		t.metrics.Counter(MetricOperationErrors, 1, tags...)
	}
	return d
}
