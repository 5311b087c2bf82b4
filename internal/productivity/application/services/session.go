package services

import (
	"sort"
	"sync"

	"github.com/felixgeelhaar/nudge/internal/productivity/domain/task"
)

// Session is the shared state of one user's task list: the active tasks,
// the focus state and the ids with a lifecycle operation in flight.
// Pass one Session to the ranker, tracker and lifecycle adapter that
// serve the same list.
//
// Tasks in the session are never mutated once added; the lifecycle
// adapter works on a clone and swaps it in.
type Session struct {
	mu          sync.Mutex
	userID      string
	tasks       map[string]*task.Task
	pinnedID    string
	timerTaskID string
	topID       string
	processing  map[string]struct{}
	finished    map[string]struct{}
}

// NewSession creates an empty session for a user.
func NewSession(userID string) *Session {
	return &Session{
		userID:     userID,
		tasks:      make(map[string]*task.Task),
		processing: make(map[string]struct{}),
		finished:   make(map[string]struct{}),
	}
}

// UserID returns the owner of the session.
func (s *Session) UserID() string { return s.userID }

// Load replaces the task set with tasks read from the store. Completed
// tasks are not kept. An id with an operation in flight keeps the
// session's own entry, or stays out when the operation took it out, and
// ids completed or deleted through this session never come back.
func (s *Session) Load(tasks []*task.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	loaded := make(map[string]*task.Task, len(tasks))
	for _, t := range tasks {
		if t == nil || t.ID() == "" || t.IsCompleted() {
			continue
		}
		if s.settledLocked(t.ID()) {
			continue
		}
		loaded[t.ID()] = t
	}
	for id := range s.processing {
		if t, ok := s.tasks[id]; ok {
			loaded[id] = t
		}
	}
	s.tasks = loaded
}

// settledLocked reports whether the stored row for id must not replace
// the session's view.
func (s *Session) settledLocked(id string) bool {
	if _, busy := s.processing[id]; busy {
		return true
	}
	_, done := s.finished[id]
	return done
}

// Add puts a task into the set. Completed tasks and tasks finished
// through this session are ignored.
func (s *Session) Add(t *task.Task) bool {
	if t == nil || t.ID() == "" || t.IsCompleted() {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, done := s.finished[t.ID()]; done {
		return false
	}
	s.tasks[t.ID()] = t
	return true
}

// Remove drops a task and reports whether it was present.
func (s *Session) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.tasks[id]
	delete(s.tasks, id)
	return ok
}

// take removes a task and returns the entry it held.
func (s *Session) take(id string) *task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.tasks[id]
	delete(s.tasks, id)
	return t
}

// swap replaces the entry for t's id and returns the previous one. It
// does nothing when the id is not in the set.
func (s *Session) swap(t *task.Task) *task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev, ok := s.tasks[t.ID()]
	if ok {
		s.tasks[t.ID()] = t
	}
	return prev
}

// Get returns a task by id.
func (s *Session) Get(id string) (*task.Task, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.tasks[id]
	return t, ok
}

// Tasks returns the set ordered by id.
func (s *Session) Tasks() []*task.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*task.Task, 0, len(s.tasks))
	for _, t := range s.tasks {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// Len returns the number of tasks in the set.
func (s *Session) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tasks)
}

// Pin makes a task the pinned focus task.
func (s *Session) Pin(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pinnedID = id
}

// Unpin clears the pinned focus task.
func (s *Session) Unpin() {
	s.Pin("")
}

// Focus returns the current focus state.
func (s *Session) Focus() Focus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Focus{PinnedID: s.pinnedID, TimerTaskID: s.timerTaskID}
}

// StartTimer marks id as the task with a running timer and returns the
// previous one.
func (s *Session) StartTimer(id string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev := s.timerTaskID
	s.timerTaskID = id
	return prev
}

// finish drops a completed or deleted task for good and clears the pin
// and timer it held.
func (s *Session) finish(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tasks, id)
	s.finished[id] = struct{}{}
	if s.pinnedID == id {
		s.pinnedID = ""
	}
	if s.timerTaskID == id {
		s.timerTaskID = ""
	}
}

// TopID returns the focus task id seen by the last ranking pass.
func (s *Session) TopID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.topID
}

// swapTop records the new top id and returns the previous one.
func (s *Session) swapTop(id string) (prev string, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	prev = s.topID
	s.topID = id
	return prev, prev != id
}

// claim marks id as in flight. It fails when id is already in flight.
func (s *Session) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.processing[id]; busy {
		return false
	}
	s.processing[id] = struct{}{}
	return true
}

func (s *Session) release(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.processing, id)
}

// Processing reports whether id has an operation in flight.
func (s *Session) Processing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, busy := s.processing[id]
	return busy
}
