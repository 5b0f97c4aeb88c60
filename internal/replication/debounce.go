package replication

import (
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

// Debouncer coalesces bursts of triggers into one call, made wait after
// the last trigger (trailing edge).  Time comes from an injected clock so
// tests can drive it without sleeping.
type Debouncer struct {
	clk  clock.Clock
	wait time.Duration
	fn   func()

	mu    sync.Mutex
	timer *clock.Timer
	gen   uint64
}

// NewDebouncer returns a debouncer that calls fn.
func NewDebouncer(clk clock.Clock, wait time.Duration, fn func()) *Debouncer {
	if clk == nil {
		clk = clock.New()
	}
	return &Debouncer{clk: clk, wait: wait, fn: fn}
}

// Trigger (re)starts the wait.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	gen := d.gen
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = d.clk.AfterFunc(d.wait, func() { d.fire(gen) })
}

// Stop cancels a pending call.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// fire runs fn unless a later Trigger or Stop superseded this timer.
func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fn()
}
