package services

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"sync/atomic"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
)

// Breakdown component names.
const (
	ComponentPriority = "priority"
	ComponentInterval = "interval"
	ComponentAge      = "age"
	ComponentDeadline = "deadline"
	ComponentSubtask  = "subtask"
	ComponentRaw      = "raw"
	ComponentPenalty  = "penalty"
	ComponentPin      = "pin"
	ComponentTimer    = "timer"
)

const day = 24 * time.Hour

// Breakdown holds per-component contributions to a score. It is diagnostic
// output only and is never persisted.
type Breakdown map[string]float64

// Score is the result of scoring one task.
type Score struct {
	Value     float64
	Breakdown Breakdown
}

// PriorityEngine computes task scores from the current weights.
// Weights can be swapped at runtime.
type PriorityEngine struct {
	weights atomic.Pointer[Weights]
}

// NewPriorityEngine creates a new engine with the given weights.
func NewPriorityEngine(w Weights) *PriorityEngine {
	e := &PriorityEngine{}
	e.SetWeights(w)
	return e
}

// Weights returns the weights in effect.
func (e *PriorityEngine) Weights() Weights {
	return *e.weights.Load()
}

// SetWeights replaces the weights used by later passes.
func (e *PriorityEngine) SetWeights(w Weights) {
	e.weights.Store(&w)
}

// ComputeScore scores a task at the given instant. It never fails: values
// that cannot be interpreted contribute zero.
func (e *PriorityEngine) ComputeScore(t *task.Task, now time.Time) Score {
	w := e.Weights()
	if t == nil {
		return Score{Breakdown: Breakdown{}}
	}

	priority := safe(e.priorityComponent(w, t, now))
	interval := safe(e.intervalComponent(w, t))
	age := safe(e.ageComponent(w, t, now))
	deadline := safe(e.deadlineComponent(w, t, now))
	subtask := safe(float64(t.SubtaskCount()) * w.SubtaskWeight)

	b := Breakdown{
		ComponentPriority: safe(priority * w.Mix.Priority),
		ComponentInterval: safe(interval * w.Mix.Interval),
		ComponentAge:      safe(age * w.Mix.Age),
		ComponentDeadline: safe(deadline * w.Mix.Deadline),
		ComponentSubtask:  safe(subtask * w.Mix.Subtask),
	}
	raw := safe(b[ComponentPriority] + b[ComponentInterval] + b[ComponentAge] + b[ComponentDeadline] + b[ComponentSubtask])
	penalty := safe(float64(t.RescheduleCount()) * w.ReschedulePenaltyWeight)
	b[ComponentRaw] = raw
	b[ComponentPenalty] = penalty

	return Score{
		Value:     clamp01(safe(raw * (1 - penalty))),
		Breakdown: b,
	}
}

// Explain renders a score as a single human-readable line.
func (e *PriorityEngine) Explain(t *task.Task, now time.Time) string {
	return e.ComputeScore(t, now).String()
}

func (s Score) String() string {
	return fmt.Sprintf("score=%.3f %s", s.Value, s.Breakdown.String())
}

func (b Breakdown) String() string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		return componentOrder(keys[i]) < componentOrder(keys[j]) ||
			(componentOrder(keys[i]) == componentOrder(keys[j]) && keys[i] < keys[j])
	})
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%.3f", k, b[k])
	}
	return strings.Join(parts, " ")
}

var breakdownOrder = []string{
	ComponentPriority, ComponentInterval, ComponentAge, ComponentDeadline,
	ComponentSubtask, ComponentRaw, ComponentPenalty, ComponentPin, ComponentTimer,
}

func componentOrder(name string) int {
	for i, n := range breakdownOrder {
		if n == name {
			return i
		}
	}
	return len(breakdownOrder)
}

func (e *PriorityEngine) priorityComponent(w Weights, t *task.Task, now time.Time) float64 {
	base := w.PriorityWeights.Weight(t.Priority())
	if due := t.ScheduledFor(); due != nil && !due.IsZero() {
		delta := due.Sub(now)
		if delta <= w.ImminentWindow && delta >= -w.ImminentWindow {
			base *= w.ImminentBoost
		}
	}
	return base
}

func (e *PriorityEngine) intervalComponent(w Weights, t *task.Task) float64 {
	shortest, ok := t.EffectiveInterval()
	if !ok {
		return 0
	}
	return w.IntervalWeights[shortest.Minutes()]
}

func (e *PriorityEngine) ageComponent(w Weights, t *task.Task, now time.Time) float64 {
	created := t.CreatedAt()
	if created.IsZero() {
		return 0
	}
	ageDays := float64(now.Sub(created)) / float64(day)
	if ageDays <= 0 {
		return 0
	}
	return math.Min(ageDays*w.AgeWeight, 1)
}

func (e *PriorityEngine) deadlineComponent(w Weights, t *task.Task, now time.Time) float64 {
	due := t.ScheduledFor()
	if due == nil || due.IsZero() {
		return 0
	}
	daysUntilDue := float64(due.Sub(now)) / float64(day)
	value := math.Max(0, 1-daysUntilDue*w.DeadlineWeight)
	if daysUntilDue <= 1 {
		value *= w.DeadlineAmplifier
	}
	return value
}

// safe replaces NaN and infinities with zero.
func safe(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clamp01(value float64) float64 {
	if value < 0 {
		return 0
	}
	if value > 1 {
		return 1
	}
	return value
}
