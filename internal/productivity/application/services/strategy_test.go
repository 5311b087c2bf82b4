package services

import (
	"testing"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
	"github.com/stretchr/testify/assert"
)

func TestDisplayStrategy_Score(t *testing.T) {
	engine := NewPriorityEngine(DefaultWeights())
	strategy := NewDisplayStrategy(engine)

	t.Run("adds the pin bonus", func(t *testing.T) {
		score := strategy.Score(newTask("t1", nil), now, Focus{PinnedID: "t1"})

		assert.InDelta(t, 1000.35, score.Value, 1e-9)
		assert.Equal(t, 1000.0, score.Breakdown[ComponentPin])
		assert.NotContains(t, score.Breakdown, ComponentTimer)
	})

	t.Run("adds the timer bonus for the session timer", func(t *testing.T) {
		score := strategy.Score(newTask("t1", nil), now, Focus{TimerTaskID: "t1"})

		assert.InDelta(t, 500.35, score.Value, 1e-9)
	})

	t.Run("falls back to the stored timer flag", func(t *testing.T) {
		tsk := newTask("t1", func(s *task.Snapshot) { s.TimerActive = true })

		assert.InDelta(t, 500.35, strategy.Score(tsk, now, Focus{}).Value, 1e-9)
	})

	t.Run("ignores the stored flag once the session runs a timer elsewhere", func(t *testing.T) {
		tsk := newTask("t1", func(s *task.Snapshot) { s.TimerActive = true })

		assert.InDelta(t, 0.35, strategy.Score(tsk, now, Focus{TimerTaskID: "t2"}).Value, 1e-9)
	})

	t.Run("stacks both bonuses", func(t *testing.T) {
		score := strategy.Score(newTask("t1", nil), now, Focus{PinnedID: "t1", TimerTaskID: "t1"})

		assert.InDelta(t, 1500.35, score.Value, 1e-9)
	})

	t.Run("does not share the breakdown with the engine", func(t *testing.T) {
		tsk := newTask("t1", nil)
		strategy.Score(tsk, now, Focus{PinnedID: "t1"})

		assert.NotContains(t, engine.ComputeScore(tsk, now).Breakdown, ComponentPin)
	})
}

func TestAnalyticalStrategy_IgnoresFocus(t *testing.T) {
	engine := NewPriorityEngine(DefaultWeights())
	strategy := NewAnalyticalStrategy(engine)
	tsk := newTask("t1", nil)

	score := strategy.Score(tsk, now, Focus{PinnedID: "t1", TimerTaskID: "t1"})

	assert.Equal(t, engine.ComputeScore(tsk, now), score)
	assert.Equal(t, StrategyAnalytical, strategy.Name())
}

func TestStrategyByName(t *testing.T) {
	engine := NewPriorityEngine(DefaultWeights())

	assert.Equal(t, StrategyDisplay, StrategyByName("display", engine).Name())
	assert.Equal(t, StrategyAnalytical, StrategyByName("analytical", engine).Name())
	assert.Equal(t, StrategyAnalytical, StrategyByName("", engine).Name())
}
