// Package schedule runs a function once after a delay, returning an explicit
// cancellation handle. The loader's deferred preloads keep their original
// fire-and-forget semantics by simply not using the handle; owners that need
// a clean shutdown (tests, Close) cancel through it.
package schedule

import (
	"sync"
	"time"
)

// Handle is the cancellation token for one scheduled task.
type Handle struct {
	timer *time.Timer

	mu       sync.Mutex
	done     chan struct{}
	finished bool
}

// After schedules fn to run once after d. The returned handle can cancel the
// task while the delay is still pending; once fn has started it runs to
// completion.
func After(d time.Duration, fn func()) *Handle {
	h := &Handle{done: make(chan struct{})}
	h.timer = time.AfterFunc(d, func() {
		defer h.finish()
		fn()
	})
	return h
}

// Cancel stops the task if its delay has not elapsed yet. It reports whether
// the task was prevented from running. Safe to call more than once.
func (h *Handle) Cancel() bool {
	stopped := h.timer.Stop()
	if stopped {
		h.finish()
	}
	return stopped
}

// Done is closed once the task has either completed or been canceled.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

func (h *Handle) finish() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.finished {
		h.finished = true
		close(h.done)
	}
}
