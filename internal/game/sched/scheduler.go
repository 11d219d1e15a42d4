// Package sched provides a simulated-time task scheduler. Tasks are keyed by
// a caller-chosen identity so an owner can cancel its pending work
// deterministically, and run only when the driving loop advances the clock.
package sched

import (
	"errors"
	"fmt"
	"time"
)

// ErrPending is returned by Schedule when a task with the same key is
// already waiting to run.
var ErrPending = errors.New("sched: task already pending")

// task is one deferred continuation.
type task struct {
	key string
	due time.Duration
	seq uint64
	fn  func()
}

// Scheduler runs deferred tasks against a simulated clock.
//
// Invariant: at most one pending task per key.
// Invariant: Now() only moves forward and only inside Advance.
//
// Concurrency: Scheduler is not safe for concurrent use. It is owned by a
// single simulation goroutine, the same one that calls Advance.
type Scheduler struct {
	now   time.Duration
	seq   uint64
	tasks map[string]*task
}

// New returns an empty Scheduler with its clock at zero.
//
// Postcondition: Now() == 0 and Len() == 0.
func New() *Scheduler {
	return &Scheduler{tasks: make(map[string]*task)}
}

// Now returns the elapsed simulated time.
func (s *Scheduler) Now() time.Duration { return s.now }

// Len returns the number of pending tasks.
func (s *Scheduler) Len() int { return len(s.tasks) }

// Schedule arranges for fn to run once the clock has advanced by delay.
// A negative delay is treated as zero; a zero-delay task runs on the next
// Advance call.
//
// Precondition: key must be non-empty; fn must not be nil (panics otherwise).
// Postcondition: Pending(key) is true on success; returns ErrPending without
// modifying the existing task when key is already pending.
func (s *Scheduler) Schedule(key string, delay time.Duration, fn func()) error {
	if key == "" {
		panic("sched: Schedule: key must not be empty")
	}
	if fn == nil {
		panic(fmt.Sprintf("sched: Schedule: fn must not be nil (key %q)", key))
	}
	if _, exists := s.tasks[key]; exists {
		return fmt.Errorf("scheduling %q: %w", key, ErrPending)
	}
	if delay < 0 {
		delay = 0
	}
	s.seq++
	s.tasks[key] = &task{key: key, due: s.now + delay, seq: s.seq, fn: fn}
	return nil
}

// Cancel removes the pending task for key without running it.
//
// Postcondition: Pending(key) is false; returns true iff a task was removed.
func (s *Scheduler) Cancel(key string) bool {
	if _, ok := s.tasks[key]; !ok {
		return false
	}
	delete(s.tasks, key)
	return true
}

// Pending reports whether a task is waiting under key.
func (s *Scheduler) Pending(key string) bool {
	_, ok := s.tasks[key]
	return ok
}

// Remaining returns the simulated time left before the task under key runs.
//
// Postcondition: ok is false when no task is pending under key.
func (s *Scheduler) Remaining(key string) (time.Duration, bool) {
	t, ok := s.tasks[key]
	if !ok {
		return 0, false
	}
	return t.due - s.now, true
}

// Advance moves the clock forward by dt and runs every task that falls due,
// earliest deadline first and in scheduling order among equal deadlines.
// The clock reads each task's deadline while that task runs. A task may
// schedule new work, including under its own key; new work that falls due
// within this window runs before Advance returns.
//
// Postcondition: Now() has increased by max(dt, 0); returns the number of
// tasks run.
func (s *Scheduler) Advance(dt time.Duration) int {
	if dt < 0 {
		dt = 0
	}
	target := s.now + dt
	ran := 0
	for {
		next := s.nextDue(target)
		if next == nil {
			break
		}
		delete(s.tasks, next.key)
		s.now = next.due
		next.fn()
		ran++
	}
	s.now = target
	return ran
}

// nextDue returns the earliest task with due <= limit, or nil.
func (s *Scheduler) nextDue(limit time.Duration) *task {
	var best *task
	for _, t := range s.tasks {
		if t.due > limit {
			continue
		}
		if best == nil || t.due < best.due || (t.due == best.due && t.seq < best.seq) {
			best = t
		}
	}
	return best
}
