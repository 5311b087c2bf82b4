package services

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/felixgeelhaar/nudge/internal/productivity/domain/value_objects"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 5, 12, 10, 30, 0, 0, time.UTC)

// newTask builds a stored task created at now; mutate adjusts the snapshot.
func newTask(id string, mutate func(s *task.Snapshot)) *task.Task {
	s := task.Snapshot{
		ID:        id,
		UserID:    "user-1",
		Text:      "task " + id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if mutate != nil {
		mutate(&s)
	}
	return task.Rehydrate(s)
}

func at(ts time.Time) *time.Time { return &ts }

func TestPriorityEngine_ComputeScore(t *testing.T) {
	engine := NewPriorityEngine(DefaultWeights())

	t.Run("scores only the priority of a bare task", func(t *testing.T) {
		tsk := newTask("t1", func(s *task.Snapshot) { s.Priority = value_objects.PriorityMedium })

		score := engine.ComputeScore(tsk, now)

		assert.InDelta(t, 0.525, score.Value, 1e-9)
		assert.InDelta(t, 0.525, score.Breakdown[ComponentPriority], 1e-9)
		assert.Zero(t, score.Breakdown[ComponentInterval])
		assert.Zero(t, score.Breakdown[ComponentAge])
		assert.Zero(t, score.Breakdown[ComponentDeadline])
		assert.Zero(t, score.Breakdown[ComponentSubtask])
		assert.Zero(t, score.Breakdown[ComponentPenalty])
	})

	t.Run("uses the shortest interval", func(t *testing.T) {
		tsk := newTask("t1", func(s *task.Snapshot) {
			s.Intervals = []value_objects.ReminderInterval{30, 10, 15}
		})

		score := engine.ComputeScore(tsk, now)

		assert.InDelta(t, 0.3*0.2, score.Breakdown[ComponentInterval], 1e-9)
	})

	t.Run("ignores intervals without a weight", func(t *testing.T) {
		tsk := newTask("t1", func(s *task.Snapshot) {
			s.Intervals = []value_objects.ReminderInterval{45}
		})

		assert.Zero(t, engine.ComputeScore(tsk, now).Breakdown[ComponentInterval])
	})

	t.Run("grows with age and caps the age component", func(t *testing.T) {
		tenDays := newTask("t1", func(s *task.Snapshot) { s.CreatedAt = now.Add(-10 * day) })
		ancient := newTask("t2", func(s *task.Snapshot) { s.CreatedAt = now.Add(-400 * day) })

		assert.InDelta(t, 0.2*0.1, engine.ComputeScore(tenDays, now).Breakdown[ComponentAge], 1e-9)
		assert.InDelta(t, 0.1, engine.ComputeScore(ancient, now).Breakdown[ComponentAge], 1e-9)
	})

	t.Run("gives no age to tasks created in the future", func(t *testing.T) {
		tsk := newTask("t1", func(s *task.Snapshot) { s.CreatedAt = now.Add(time.Hour) })

		assert.Zero(t, engine.ComputeScore(tsk, now).Breakdown[ComponentAge])
	})

	t.Run("amplifies a deadline within a day", func(t *testing.T) {
		tsk := newTask("t1", func(s *task.Snapshot) { s.ScheduledFor = at(now.Add(12 * time.Hour)) })

		score := engine.ComputeScore(tsk, now)

		assert.InDelta(t, 0.95*1.5*0.2, score.Breakdown[ComponentDeadline], 1e-9)
	})

	t.Run("does not amplify a distant deadline", func(t *testing.T) {
		tsk := newTask("t1", func(s *task.Snapshot) { s.ScheduledFor = at(now.Add(3 * day)) })

		assert.InDelta(t, 0.7*0.2, engine.ComputeScore(tsk, now).Breakdown[ComponentDeadline], 1e-9)
	})

	t.Run("drops the deadline component beyond ten days", func(t *testing.T) {
		tsk := newTask("t1", func(s *task.Snapshot) { s.ScheduledFor = at(now.Add(20 * day)) })

		assert.Zero(t, engine.ComputeScore(tsk, now).Breakdown[ComponentDeadline])
	})

	t.Run("amplifies an overdue task", func(t *testing.T) {
		tsk := newTask("t1", func(s *task.Snapshot) { s.ScheduledFor = at(now.Add(-2 * day)) })

		assert.InDelta(t, 1.2*1.5*0.2, engine.ComputeScore(tsk, now).Breakdown[ComponentDeadline], 1e-9)
	})

	t.Run("counts subtasks", func(t *testing.T) {
		tsk := newTask("t1", func(s *task.Snapshot) {
			s.Subtasks = []task.Subtask{{ID: "a", Text: "a"}, {ID: "b", Text: "b"}}
		})

		assert.InDelta(t, 2*0.15*0.15, engine.ComputeScore(tsk, now).Breakdown[ComponentSubtask], 1e-9)
	})

	t.Run("clamps to one", func(t *testing.T) {
		tsk := newTask("t1", func(s *task.Snapshot) {
			s.Priority = value_objects.PriorityUrgent
			s.Intervals = []value_objects.ReminderInterval{5}
		})

		score := engine.ComputeScore(tsk, now)

		assert.Equal(t, 1.0, score.Value)
		assert.InDelta(t, 1.13, score.Breakdown[ComponentRaw], 1e-9)
	})

	t.Run("clamps a penalty above one to zero", func(t *testing.T) {
		tsk := newTask("t1", func(s *task.Snapshot) { s.RescheduleCount = 40 })

		score := engine.ComputeScore(tsk, now)

		assert.Equal(t, 0.0, score.Value)
		assert.InDelta(t, 2.0, score.Breakdown[ComponentPenalty], 1e-9)
	})

	t.Run("scores a nil task as zero", func(t *testing.T) {
		assert.Equal(t, 0.0, engine.ComputeScore(nil, now).Value)
	})

	t.Run("replaces non-finite intermediate values", func(t *testing.T) {
		w := DefaultWeights()
		w.DeadlineWeight = math.Inf(1)
		inf := NewPriorityEngine(w)
		tsk := newTask("t1", func(s *task.Snapshot) { s.ScheduledFor = at(now) })

		score := inf.ComputeScore(tsk, now)

		assert.False(t, math.IsNaN(score.Value))
		assert.Zero(t, score.Breakdown[ComponentDeadline])
	})
}

func TestPriorityEngine_Scenarios(t *testing.T) {
	engine := NewPriorityEngine(DefaultWeights())

	t.Run("three reschedules take fifteen percent off", func(t *testing.T) {
		c := newTask("c", func(s *task.Snapshot) { s.Priority = value_objects.PriorityMedium })
		s0 := engine.ComputeScore(c, now).Value

		rescheduled := newTask("c", func(s *task.Snapshot) {
			s.Priority = value_objects.PriorityMedium
			s.RescheduleCount = 3
		})
		s3 := engine.ComputeScore(rescheduled, now).Value

		assert.LessOrEqual(t, s3, s0)
		assert.InDelta(t, s0*0.85, s3, 1e-9)
	})

	t.Run("boosts the priority of a task due within a day", func(t *testing.T) {
		d := newTask("d", func(s *task.Snapshot) {
			s.Priority = value_objects.PriorityMedium
			s.ScheduledFor = at(now.Add(12 * time.Hour))
		})
		e := newTask("e", func(s *task.Snapshot) {
			s.Priority = value_objects.PriorityMedium
			s.ScheduledFor = at(now.Add(3 * day))
		})

		dp := engine.ComputeScore(d, now).Breakdown[ComponentPriority]
		ep := engine.ComputeScore(e, now).Breakdown[ComponentPriority]

		assert.InDelta(t, ep*1.5, dp, 1e-9)
	})

	t.Run("an unreadable createdAt scores a finite value without age", func(t *testing.T) {
		tsk, malformed, ok := task.FromDocument(task.Document{
			"id":        "bad",
			"text":      "Broken date",
			"priority":  "medium",
			"createdAt": "yesterday-ish",
		})
		require.True(t, ok)
		require.Len(t, malformed, 1)
		assert.Equal(t, task.FieldCreatedAt, malformed[0].Field)

		var score Score
		require.NotPanics(t, func() { score = engine.ComputeScore(tsk, now) })

		assert.False(t, math.IsNaN(score.Value) || math.IsInf(score.Value, 0))
		assert.Zero(t, score.Breakdown[ComponentAge])
		assert.InDelta(t, 0.525, score.Value, 1e-9)
	})
}

func TestPriorityEngine_Properties(t *testing.T) {
	engine := NewPriorityEngine(DefaultWeights())
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		base := randomSnapshot(rng)

		tsk := task.Rehydrate(base)
		score := engine.ComputeScore(tsk, now).Value
		require.GreaterOrEqual(t, score, 0.0)
		require.LessOrEqual(t, score, 1.0)

		higher := base
		if base.Priority < value_objects.PriorityUrgent {
			higher.Priority = base.Priority + 1
		}
		require.GreaterOrEqual(t, engine.ComputeScore(task.Rehydrate(higher), now).Value, score,
			"raising the priority lowered the score")

		more := base
		more.RescheduleCount++
		require.LessOrEqual(t, engine.ComputeScore(task.Rehydrate(more), now).Value, score,
			"another reschedule raised the score")
	}
}

func randomSnapshot(rng *rand.Rand) task.Snapshot {
	intervals := []value_objects.ReminderInterval{5, 10, 15, 30, 45}
	s := task.Snapshot{
		ID:              "rand",
		UserID:          "user-1",
		Text:            "random",
		Priority:        value_objects.Priority(rng.Intn(4)),
		CreatedAt:       now.Add(-time.Duration(rng.Int63n(int64(90 * day)))),
		RescheduleCount: rng.Intn(25),
	}
	for n := rng.Intn(3); n > 0; n-- {
		s.Intervals = append(s.Intervals, intervals[rng.Intn(len(intervals))])
	}
	for n := rng.Intn(8); n > 0; n-- {
		s.Subtasks = append(s.Subtasks, task.Subtask{ID: "s", Text: "s"})
	}
	if rng.Intn(2) == 0 {
		s.ScheduledFor = at(now.Add(time.Duration(rng.Int63n(int64(30*day))) - 15*day))
	}
	return s
}

func TestPriorityEngine_SetWeights(t *testing.T) {
	engine := NewPriorityEngine(DefaultWeights())
	tsk := newTask("t1", func(s *task.Snapshot) { s.Priority = value_objects.PriorityMedium })

	w := DefaultWeights()
	w.PriorityWeights.Medium = 2.0
	engine.SetWeights(w)

	assert.Equal(t, 2.0, engine.Weights().PriorityWeights.Medium)
	assert.InDelta(t, 0.7, engine.ComputeScore(tsk, now).Value, 1e-9)
}

func TestPriorityEngine_Explain(t *testing.T) {
	engine := NewPriorityEngine(DefaultWeights())
	tsk := newTask("t1", func(s *task.Snapshot) { s.Priority = value_objects.PriorityMedium })

	explanation := engine.Explain(tsk, now)

	assert.Equal(t,
		"score=0.525 priority=0.525 interval=0.000 age=0.000 deadline=0.000 subtask=0.000 raw=0.525 penalty=0.000",
		explanation)
}
