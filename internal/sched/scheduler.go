// Package sched runs suspendable generator work across the editor's
// idle ticks. Tasks are externally polled state machines: no stack
// switching, a task just does a bounded amount of work per Resume.
package sched

import (
	"fmt"
	"sync"
	"time"

	"github.com/matcha-sh/matcha/internal/logger"
)

// Task is a suspendable unit of computation. Resume performs one slice
// of work and reports whether the task finished. Results become visible
// to the caller only after completion; until then the spawning
// generator answers "no answer yet".
type Task interface {
	Resume() (done bool, err error)
}

// TaskFunc adapts a function to Task.
type TaskFunc func() (bool, error)

// Resume implements Task.
func (f TaskFunc) Resume() (bool, error) { return f() }

// Options configures one spawned task.
type Options struct {
	// Interval is the minimum gap between resumes; zero means every
	// idle tick.
	Interval time.Duration
	// RunToCompletion keeps the task alive when the edit session ends.
	RunToCompletion bool
	// OnDone runs after the task completes or fails, so the editor can
	// re-trigger a match refresh.
	OnDone func(err error)
}

// Handle tracks one live task.
type Handle struct {
	mu       sync.Mutex
	task     Task
	opts     Options
	spawned  time.Time
	lastRun  time.Time
	done     bool
	canceled bool
	err      error
}

// Done reports whether the task finished (successfully or not).
func (h *Handle) Done() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.done
}

// Err returns the task's terminal error, if any. Only meaningful once
// Done reports true.
func (h *Handle) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

// Canceled reports whether the task was canceled before completing.
func (h *Handle) Canceled() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.canceled
}

// Cancel stops the task. Idempotent; a finished task stays finished.
func (h *Handle) Cancel() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.done {
		h.canceled = true
		h.done = true
	}
}

// Scheduler owns the live task set for one edit session and resumes
// due tasks from the editor's idle tick. Everything runs on the
// editor's thread; the locks only cover bookkeeping.
type Scheduler struct {
	mu    sync.Mutex
	tasks []*Handle
	log   *logger.Logger

	// Tasks alive longer than throttleAfter get their resume interval
	// clamped to at least throttleFloor, bounding what a runaway
	// background lookup can consume.
	throttleAfter time.Duration
	throttleFloor time.Duration
}

// New creates a scheduler with the given throttling policy. Zero
// durations disable throttling.
func New(throttleAfter, throttleFloor time.Duration, log *logger.Logger) *Scheduler {
	if log == nil {
		log = logger.Nop()
	}
	return &Scheduler{
		log:           log,
		throttleAfter: throttleAfter,
		throttleFloor: throttleFloor,
	}
}

// Spawn registers a task. It will first run on the next tick.
func (s *Scheduler) Spawn(t Task, opts Options) *Handle {
	h := &Handle{task: t, opts: opts, spawned: time.Now()}
	s.mu.Lock()
	s.tasks = append(s.tasks, h)
	s.mu.Unlock()
	return h
}

// Tick resumes every due task once and returns the number of tasks
// still live. The editor calls this from its idle loop.
func (s *Scheduler) Tick(now time.Time) int {
	s.mu.Lock()
	due := make([]*Handle, len(s.tasks))
	copy(due, s.tasks)
	s.mu.Unlock()

	live := 0
	for _, h := range due {
		if h.Done() {
			continue
		}
		if !s.resumeIfDue(h, now) {
			live++
		}
	}

	s.prune()
	return live
}

// resumeIfDue runs one task slice when its interval allows, reporting
// whether the task is now finished.
func (s *Scheduler) resumeIfDue(h *Handle, now time.Time) bool {
	h.mu.Lock()
	interval := h.opts.Interval
	if s.throttleAfter > 0 && now.Sub(h.spawned) > s.throttleAfter && interval < s.throttleFloor {
		interval = s.throttleFloor
	}
	if !h.lastRun.IsZero() && now.Sub(h.lastRun) < interval {
		h.mu.Unlock()
		return false
	}
	h.lastRun = now
	h.mu.Unlock()

	done, err := s.resume(h)
	if !done {
		return false
	}

	h.mu.Lock()
	h.done = true
	h.err = err
	onDone := h.opts.OnDone
	h.mu.Unlock()

	if err != nil {
		s.log.Warn().Err(err).Msg("background task failed")
	}
	if onDone != nil {
		onDone(err)
	}
	return true
}

// resume isolates a panicking task: it is canceled alone, other tasks
// and the synchronous generators are unaffected.
func (s *Scheduler) resume(h *Handle) (done bool, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			done = true
			err = fmt.Errorf("background task panicked: %v", rec)
		}
	}()
	return h.task.Resume()
}

// prune drops finished tasks from the live set.
func (s *Scheduler) prune() {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.tasks[:0]
	for _, h := range s.tasks {
		if !h.Done() {
			kept = append(kept, h)
		}
	}
	s.tasks = kept
}

// Close ends the edit session: outstanding tasks are canceled unless
// they opted into run-to-completion, which are drained on the spot.
func (s *Scheduler) Close() {
	s.mu.Lock()
	tasks := make([]*Handle, len(s.tasks))
	copy(tasks, s.tasks)
	s.tasks = nil
	s.mu.Unlock()

	for _, h := range tasks {
		if h.Done() {
			continue
		}
		if !h.opts.RunToCompletion {
			h.Cancel()
			continue
		}
		for !h.Done() {
			done, err := s.resume(h)
			if done {
				h.mu.Lock()
				h.done = true
				h.err = err
				onDone := h.opts.OnDone
				h.mu.Unlock()
				if onDone != nil {
					onDone(err)
				}
			}
		}
	}
}

// Live returns the number of unfinished tasks.
func (s *Scheduler) Live() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	live := 0
	for _, h := range s.tasks {
		if !h.Done() {
			live++
		}
	}
	return live
}
