package search

import (
	"sync"
	"time"
)

// DebounceQuiet is the minimum quiescence before a debounced call fires.
const DebounceQuiet = 300 * time.Millisecond

// Debouncer coalesces rapid calls: only the last function passed to Do runs,
// after the quiet period elapses with no further calls. One goroutine at a
// time; the fired function runs on the timer goroutine.
type Debouncer struct {
	quiet time.Duration

	mu    sync.Mutex
	timer *time.Timer
}

func NewDebouncer(quiet time.Duration) *Debouncer {
	if quiet <= 0 {
		quiet = DebounceQuiet
	}
	return &Debouncer{quiet: quiet}
}

// Do schedules fn, replacing any previously scheduled call.
func (d *Debouncer) Do(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.quiet, fn)
}

// Stop cancels any pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
