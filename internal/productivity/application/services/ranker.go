package services

import (
	"sort"
	"time"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
)

// RankedTask is a task with its score for one ranking pass.
type RankedTask struct {
	Task      *task.Task
	Score     float64
	Breakdown Breakdown
	Rank      int
}

// RankResult is the outcome of one ranking pass.
type RankResult struct {
	Ordered []RankedTask
	Top     *RankedTask
	At      time.Time
}

// TopID returns the focus task id, or "" when the list is empty.
func (r RankResult) TopID() string {
	if r.Top == nil {
		return ""
	}
	return r.Top.Task.ID()
}

// Ranker orders tasks by score.
type Ranker struct {
	engine   *PriorityEngine
	strategy ScoringStrategy
}

// NewRanker creates a ranker using the given strategy.
func NewRanker(engine *PriorityEngine, strategy ScoringStrategy) *Ranker {
	if strategy == nil {
		strategy = NewAnalyticalStrategy(engine)
	}
	return &Ranker{engine: engine, strategy: strategy}
}

// Strategy returns the scoring strategy in use.
func (r *Ranker) Strategy() ScoringStrategy { return r.strategy }

// Rank scores and orders the tasks that are active at now. Tasks without an
// id, completed tasks, future tasks and repeated ids are left out. The input
// slice is not modified and the same input always yields the same order.
func (r *Ranker) Rank(tasks []*task.Task, now time.Time, focus Focus) RankResult {
	w := r.engine.Weights()

	seen := make(map[string]struct{}, len(tasks))
	ranked := make([]RankedTask, 0, len(tasks))
	for _, t := range tasks {
		if t == nil || !t.IsActive(now) {
			continue
		}
		if _, dup := seen[t.ID()]; dup {
			continue
		}
		seen[t.ID()] = struct{}{}

		s := r.strategy.Score(t, now, focus)
		ranked = append(ranked, RankedTask{Task: t, Score: s.Value, Breakdown: s.Breakdown})
	}

	// Start from id order so input order never leaks into equal scores.
	sort.Slice(ranked, func(i, j int) bool {
		return ranked[i].Task.ID() < ranked[j].Task.ID()
	})
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	orderNearTies(w, ranked)

	result := RankResult{Ordered: ranked, At: now}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	if len(ranked) > 0 {
		result.Top = &ranked[0]
	}
	return result
}

// orderNearTies reorders score-sorted tasks whose scores lie within
// epsilon of the first score of their group. Closeness is measured
// against the group's first score, not the neighbour, so every pair in a
// group is a near tie and tasks in different groups keep score order.
func orderNearTies(w Weights, ranked []RankedTask) {
	for start := 0; start < len(ranked); {
		end := start + 1
		for end < len(ranked) && ranked[start].Score-ranked[end].Score < w.Epsilon {
			end++
		}
		group := ranked[start:end]
		sort.Slice(group, func(i, j int) bool {
			return tieLess(w, group[i], group[j])
		})
		start = end
	}
}

// tieLess orders near ties by priority weight, then creation time (older
// first, unknown last), then id.
func tieLess(w Weights, a, b RankedTask) bool {
	pa := w.PriorityWeights.Weight(a.Task.Priority())
	pb := w.PriorityWeights.Weight(b.Task.Priority())
	if pa != pb {
		return pa > pb
	}

	ca, cb := a.Task.CreatedAt(), b.Task.CreatedAt()
	switch {
	case ca.IsZero() && !cb.IsZero():
		return false
	case !ca.IsZero() && cb.IsZero():
		return true
	case !ca.Equal(cb):
		return ca.Before(cb)
	}

	return a.Task.ID() < b.Task.ID()
}
