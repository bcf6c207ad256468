// Package debounce collapses bursts of calls into a single trailing call.
package debounce

import (
	"sync"
	"time"
)

// Debouncer runs action once the caller has stopped calling Trigger for
// delay. Only the arguments of the last Trigger in a burst are used; earlier
// scheduled calls are discarded, not queued.
type Debouncer[T any] struct {
	delay  time.Duration
	action func(T)

	mu      sync.Mutex
	idle    *sync.Cond
	timer   *time.Timer
	arg     T
	seq     uint64
	running int
	stopped bool
}

func New[T any](delay time.Duration, action func(T)) *Debouncer[T] {
	d := &Debouncer[T]{
		delay:  delay,
		action: action,
	}
	d.idle = sync.NewCond(&d.mu)
	return d
}

// Trigger cancels the pending call, if any, and schedules a new one with v.
func (d *Debouncer[T]) Trigger(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.arg = v
	d.timer = time.AfterFunc(d.delay, func() { d.fire(seq) })
}

// Flush runs the pending call immediately on the calling goroutine.
// It reports whether there was anything to run.
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.stopped || d.timer == nil {
		d.mu.Unlock()
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.seq++
	arg := d.arg
	d.mu.Unlock()

	d.action(arg)
	return true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop drops the pending call and makes further Triggers no-ops.
// A call that has already started is not interrupted.
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer[T]) fire(seq uint64) {
	d.mu.Lock()
	// timer.Stop may lose the race with an already expired timer
	if d.stopped || seq != d.seq {
		d.mu.Unlock()
		return
	}
	arg := d.arg
	d.timer = nil
	d.running++
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.running--
		d.idle.Broadcast()
		d.mu.Unlock()
	}()
	d.action(arg)
}

// Wait blocks until calls already started by the timer have returned.
// It does not wait for calls that are still scheduled.
func (d *Debouncer[T]) Wait() {
	d.mu.Lock()
	defer d.mu.Unlock()
	for d.running > 0 {
		d.idle.Wait()
	}
}
