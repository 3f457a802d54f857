package debounce

import (
	"sync"
	"time"
)

// DefaultDelay is the delay used for search and filter input.
const DefaultDelay = 300 * time.Millisecond

// Clock schedules functions to run later.
type Clock interface {
	// AfterFunc runs f after d, unless the returned Timer is stopped first.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a scheduled function call.
type Timer interface {
	// Stop prevents the call from running. Returns false if it already ran or was stopped.
	Stop() bool
}

// Option is custom configuration of Debouncer.
type Option func(d *Debouncer)

// WithClock sets clock used to schedule calls.
func WithClock(clock Clock) Option {
	return func(d *Debouncer) {
		d.clock = clock
	}
}

// Debouncer delays calls so that only the last one scheduled within the delay runs.
type Debouncer struct {
	delay time.Duration
	clock Clock

	mu         sync.Mutex
	generation uint64
	pending    func()
	timer      Timer
}

// New returns new Debouncer.
func New(delay time.Duration, ops ...Option) *Debouncer {
	deb := &Debouncer{
		delay: delay,
		clock: systemClock{},
	}

	for _, op := range ops {
		op(deb)
	}

	return deb
}

// Schedule cancels pending call and schedules fn to run after the delay.
func (d *Debouncer) Schedule(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	generation := d.resetLocked()
	d.pending = fn
	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(generation) })
}

// Cancel drops pending call. A call whose timer fired concurrently doesn't run either.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.resetLocked()
}

// Flush runs pending call immediately. Returns false when there was nothing to run.
func (d *Debouncer) Flush() bool {
	d.mu.Lock()
	fn := d.pending
	d.resetLocked()
	d.mu.Unlock()

	if fn == nil {
		return false
	}
	fn()

	return true
}

// Pending reports whether a call is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.pending != nil
}

// fire runs pending call if it still belongs to generation.
func (d *Debouncer) fire(generation uint64) {
	d.mu.Lock()
	if generation != d.generation || d.pending == nil {
		d.mu.Unlock()
		return
	}
	fn := d.pending
	d.pending = nil
	d.timer = nil
	d.mu.Unlock()

	fn()
}

// resetLocked stops the timer, drops pending call and starts new generation.
func (d *Debouncer) resetLocked() uint64 {
	if d.timer != nil {
		_ = d.timer.Stop()
	}
	d.timer = nil
	d.pending = nil
	d.generation++

	return d.generation
}
