// Package schedule runs deferred work on the simulation goroutine.
//
// Tasks are not backed by timers. The owner polls RunDue once per tick,
// so a task never fires concurrently with the simulation.
package schedule

import (
	"sort"
	"sync"
	"time"
)

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

// Now returns time.Now().
func (SystemClock) Now() time.Time { return time.Now() }

// ManualClock only moves when told to.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock returns a clock stopped at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current manual time.
func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Task is a handle to one scheduled callback.
type Task struct {
	name      string
	due       time.Time
	seq       uint64
	fn        func()
	cancelled bool
	done      bool
}

// Cancel stops the task from running. Cancelling a finished task is a no-op.
func (t *Task) Cancel() {
	if t != nil {
		t.cancelled = true
	}
}

// Pending reports whether the task will still run.
func (t *Task) Pending() bool {
	return t != nil && !t.cancelled && !t.done
}

// Due returns when the task becomes runnable.
func (t *Task) Due() time.Time { return t.due }

// Name returns the label the task was scheduled with.
func (t *Task) Name() string { return t.name }

// Scheduler holds the queued tasks.
type Scheduler struct {
	clock Clock
	tasks []*Task
	seq   uint64
}

// New creates a scheduler reading time from clock.
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock{}
	}
	return &Scheduler{clock: clock}
}

// Now returns the scheduler clock's time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// After queues fn to run on the first RunDue at least d from now.
func (s *Scheduler) After(name string, d time.Duration, fn func()) *Task {
	s.seq++
	t := &Task{name: name, due: s.clock.Now().Add(d), seq: s.seq, fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

// RunDue runs every due task in due order and returns how many ran.
// Tasks scheduled by a running task wait for the next call.
func (s *Scheduler) RunDue() int {
	now := s.clock.Now()

	var due, rest []*Task
	for _, t := range s.tasks {
		switch {
		case t.cancelled:
		case !t.due.After(now):
			due = append(due, t)
		default:
			rest = append(rest, t)
		}
	}
	s.tasks = rest

	sort.Slice(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})

	ran := 0
	for _, t := range due {
		// an earlier task in this batch may have cancelled it
		if t.cancelled {
			continue
		}
		t.done = true
		t.fn()
		ran++
	}
	return ran
}

// CancelAll cancels and drops every queued task.
func (s *Scheduler) CancelAll() {
	for _, t := range s.tasks {
		t.cancelled = true
	}
	s.tasks = nil
}

// Pending returns how many tasks are still queued.
func (s *Scheduler) Pending() int {
	n := 0
	for _, t := range s.tasks {
		if !t.cancelled {
			n++
		}
	}
	return n
}
