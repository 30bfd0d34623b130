package suggest

import (
	"sync"
	"time"
)

// Debouncer runs the most recently triggered function once input has been
// quiet for the interval.
type Debouncer struct {
	interval time.Duration

	mu      sync.Mutex
	timer   *time.Timer
	pending func()

	// runMu is held while a triggered function runs.
	runMu sync.Mutex
}

func NewDebouncer(interval time.Duration) *Debouncer {
	return &Debouncer{interval: interval}
}

func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	var timer *time.Timer
	timer = time.AfterFunc(d.interval, func() {
		d.mu.Lock()
		if d.timer != timer {
			d.mu.Unlock()
			return
		}
		d.timer = nil
		d.pending = nil
		d.mu.Unlock()

		d.runMu.Lock()
		defer d.runMu.Unlock()
		fn()
	})
	d.timer = timer
	d.pending = fn
}

// Stop cancels a pending call. It reports whether one was pending.
func (d *Debouncer) Stop() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer == nil {
		return false
	}
	stopped := d.timer.Stop()
	d.timer = nil
	d.pending = nil
	return stopped
}

// Flush runs a pending call right away instead of waiting out the interval,
// then waits for any call already running. It reports whether a pending call
// was run.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = nil
	d.pending = nil
	d.mu.Unlock()

	d.runMu.Lock()
	defer d.runMu.Unlock()
	if fn == nil {
		return false
	}
	fn()
	return true
}
