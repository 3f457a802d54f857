package debouncetesting

import (
	"sort"
	"sync"
	"time"

	"github.com/MichalMitros/flyer-shopper/internal/debounce"
)

// FakeClock is a debounce.Clock whose time moves only on Advance.
// Due functions run synchronously on the goroutine calling Advance.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

// NewFakeClock returns FakeClock starting at a fixed time.
func NewFakeClock() *FakeClock {
	return &FakeClock{now: time.Date(2024, time.January, 1, 12, 0, 0, 0, time.UTC)}
}

// Now returns clock's current time.
func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.now
}

// AfterFunc schedules f to run once the clock is advanced by d.
func (c *FakeClock) AfterFunc(d time.Duration, f func()) debounce.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()

	timer := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, timer)

	return timer
}

// Advance moves the clock forward by d, running every function due in deadline order.
func (c *FakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		timer := c.popDueLocked(target)
		if timer == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		c.now = timer.at
		c.mu.Unlock()

		timer.f()
	}
}

// Pending returns number of scheduled functions which haven't run or been stopped.
func (c *FakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.timers)
}

func (c *FakeClock) popDueLocked(target time.Time) *fakeTimer {
	sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at.Before(c.timers[j].at) })
	if len(c.timers) == 0 || c.timers[0].at.After(target) {
		return nil
	}

	timer := c.timers[0]
	c.timers = c.timers[1:]

	return timer
}

func (c *FakeClock) removeLocked(timer *fakeTimer) bool {
	for i, t := range c.timers {
		if t == timer {
			c.timers = append(c.timers[:i], c.timers[i+1:]...)
			return true
		}
	}
	return false
}

type fakeTimer struct {
	clock *FakeClock
	at    time.Time
	f     func()
}

// Stop removes timer from clock.
func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	return t.clock.removeLocked(t)
}
