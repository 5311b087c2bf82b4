package services

import (
	"maps"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
)

// Strategy names.
const (
	StrategyAnalytical = "analytical"
	StrategyDisplay    = "display"
)

// Focus is a read-only view of the session's focus state.
type Focus struct {
	PinnedID    string
	TimerTaskID string
}

// ScoringStrategy turns a task into a sortable score.
type ScoringStrategy interface {
	Name() string
	Score(t *task.Task, now time.Time, focus Focus) Score
}

// AnalyticalStrategy ranks purely by the computed score.
type AnalyticalStrategy struct {
	engine *PriorityEngine
}

// NewAnalyticalStrategy creates the pure scoring strategy.
func NewAnalyticalStrategy(engine *PriorityEngine) *AnalyticalStrategy {
	return &AnalyticalStrategy{engine: engine}
}

func (s *AnalyticalStrategy) Name() string { return StrategyAnalytical }

func (s *AnalyticalStrategy) Score(t *task.Task, now time.Time, _ Focus) Score {
	return s.engine.ComputeScore(t, now)
}

// DisplayStrategy keeps the pinned task and the task with a running timer
// at the top of a rendered list. Its scores are not bounded to [0,1].
type DisplayStrategy struct {
	engine *PriorityEngine
}

// NewDisplayStrategy creates the list-stable strategy.
func NewDisplayStrategy(engine *PriorityEngine) *DisplayStrategy {
	return &DisplayStrategy{engine: engine}
}

func (s *DisplayStrategy) Name() string { return StrategyDisplay }

func (s *DisplayStrategy) Score(t *task.Task, now time.Time, focus Focus) Score {
	base := s.engine.ComputeScore(t, now)
	if t == nil {
		return base
	}
	w := s.engine.Weights()

	b := maps.Clone(base.Breakdown)
	value := base.Value
	if focus.PinnedID != "" && t.ID() == focus.PinnedID {
		b[ComponentPin] = w.PinBonus
		value += w.PinBonus
	}
	if timerRunning(t, focus) {
		b[ComponentTimer] = w.ActiveTimerBonus
		value += w.ActiveTimerBonus
	}
	return Score{Value: value, Breakdown: b}
}

// timerRunning prefers the session's timer; the stored flag only counts
// when the session has not started one yet.
func timerRunning(t *task.Task, focus Focus) bool {
	if focus.TimerTaskID != "" {
		return t.ID() == focus.TimerTaskID
	}
	return t.TimerActive()
}

// StrategyByName resolves a strategy name, defaulting to analytical.
func StrategyByName(name string, engine *PriorityEngine) ScoringStrategy {
	if name == StrategyDisplay {
		return NewDisplayStrategy(engine)
	}
	return NewAnalyticalStrategy(engine)
}
