package crawl

import (
	"runtime/debug"
	"sync"
	"sync/atomic"

	"github.com/fwojciec/webcrawl"
	"golang.org/x/sync/errgroup"
)

// Executor runs tasks on a fixed number of goroutines.
// Submit blocks while all slots are busy, so a full pool pushes back on
// the submitter instead of rejecting work.
type Executor struct {
	name string
	logf LogFunc

	mu     sync.RWMutex
	closed bool

	g       errgroup.Group
	running atomic.Int64
}

// NewExecutor creates an Executor that runs at most size tasks at once.
// The name identifies the pool in errors and log messages.
func NewExecutor(name string, size int, logf LogFunc) *Executor {
	if logf == nil {
		logf = func(string, ...any) {}
	}
	e := &Executor{name: name, logf: logf}
	e.g.SetLimit(size)
	return e
}

// Submit schedules fn, blocking until a slot is free.
// Returns ECLOSED once Close has been called.
func (e *Executor) Submit(fn func()) error {
	e.mu.RLock()
	defer e.mu.RUnlock()

	if e.closed {
		return webcrawl.Errorf(webcrawl.ECLOSED, "%s pool is closed", e.name)
	}

	e.g.Go(func() error {
		e.running.Add(1)
		defer e.running.Add(-1)
		safeRun(fn, e.name, e.logf)
		return nil
	})
	return nil
}

// Running returns the number of tasks currently executing.
func (e *Executor) Running() int {
	return int(e.running.Load())
}

// Close stops accepting tasks and waits for running ones to return.
// Submissions blocked on a full pool are allowed to finish first.
func (e *Executor) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	_ = e.g.Wait()
}

// safeRun calls fn and converts a panic into a log line so that one bad
// task cannot take the pool's goroutine down with it.
func safeRun(fn func(), pool string, logf LogFunc) {
	defer func() {
		if r := recover(); r != nil {
			logf("%s task panicked: %v\n%s", pool, r, debug.Stack())
		}
	}()
	fn()
}
