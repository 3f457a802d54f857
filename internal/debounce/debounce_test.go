package debounce_test

import (
	"testing"
	"time"

	"github.com/MichalMitros/flyer-shopper/internal/debounce"
	"github.com/MichalMitros/flyer-shopper/internal/debounce/debouncetesting"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const delay = 300 * time.Millisecond

func TestUnitSchedule(t *testing.T) {
	clock := debouncetesting.NewFakeClock()
	deb := debounce.New(delay, debounce.WithClock(clock))
	calls := []string{}

	deb.Schedule(func() { calls = append(calls, "first") })
	clock.Advance(delay - time.Millisecond)
	assert.Empty(t, calls, "shouldn't run before delay")

	clock.Advance(time.Millisecond)
	assert.Equal(t, []string{"first"}, calls, "should run after delay")
	assert.False(t, deb.Pending(), "shouldn't have pending call")

	clock.Advance(time.Hour)
	assert.Equal(t, []string{"first"}, calls, "should run only once")
}

func TestUnitScheduleRunsOnlyLastCall(t *testing.T) {
	clock := debouncetesting.NewFakeClock()
	deb := debounce.New(delay, debounce.WithClock(clock))
	calls := []string{}

	for _, query := range []string{"a", "ap", "app", "appl", "apple"} {
		deb.Schedule(func() { calls = append(calls, query) })
		clock.Advance(delay / 2)
	}
	assert.Empty(t, calls, "shouldn't run while input keeps coming")
	assert.Equal(t, 1, clock.Pending(), "should keep only one scheduled call")

	clock.Advance(delay)
	assert.Equal(t, []string{"apple"}, calls, "should run only the last scheduled call")
}

func TestUnitCancel(t *testing.T) {
	clock := debouncetesting.NewFakeClock()
	deb := debounce.New(delay, debounce.WithClock(clock))
	ran := false

	deb.Schedule(func() { ran = true })
	deb.Cancel()
	clock.Advance(delay)

	assert.False(t, ran, "shouldn't run canceled call")
	assert.False(t, deb.Pending(), "shouldn't have pending call")
	assert.Zero(t, clock.Pending(), "should stop timer")
}

func TestUnitCancelAfterTimerFired(t *testing.T) {
	clock := &manualClock{}
	deb := debounce.New(delay, debounce.WithClock(clock))
	calls := []string{}

	deb.Schedule(func() { calls = append(calls, "stale") })
	deb.Schedule(func() { calls = append(calls, "fresh") })
	require.Len(t, clock.scheduled, 2)

	// timers already fired, so stopping them had no effect
	clock.scheduled[0]()
	assert.Empty(t, calls, "shouldn't run replaced call")

	clock.scheduled[1]()
	assert.Equal(t, []string{"fresh"}, calls, "should run current call")

	deb.Schedule(func() { calls = append(calls, "canceled") })
	deb.Cancel()
	clock.scheduled[2]()
	assert.Equal(t, []string{"fresh"}, calls, "shouldn't run canceled call")
}

func TestUnitFlush(t *testing.T) {
	clock := debouncetesting.NewFakeClock()
	deb := debounce.New(delay, debounce.WithClock(clock))
	runs := 0

	assert.False(t, deb.Flush(), "shouldn't flush without pending call")

	deb.Schedule(func() { runs++ })
	assert.True(t, deb.Flush(), "should flush pending call")
	assert.Equal(t, 1, runs, "should run call immediately")

	clock.Advance(delay)
	assert.Equal(t, 1, runs, "shouldn't run flushed call again")
}

func TestUnitScheduleFromCallback(t *testing.T) {
	clock := debouncetesting.NewFakeClock()
	deb := debounce.New(delay, debounce.WithClock(clock))
	runs := 0

	var schedule func()
	schedule = func() {
		runs++
		if runs < 3 {
			deb.Schedule(schedule)
		}
	}
	deb.Schedule(schedule)
	clock.Advance(10 * delay)

	assert.Equal(t, 3, runs, "should allow rescheduling from running call")
}

func TestUnitSystemClockDebouncer(t *testing.T) {
	deb := debounce.New(5 * time.Millisecond)
	done := make(chan string, 2)

	deb.Schedule(func() { done <- "first" })
	deb.Schedule(func() { done <- "second" })

	select {
	case got := <-done:
		assert.Equal(t, "second", got, "should run last call")
	case <-time.After(time.Second):
		t.Fatal("should run scheduled call")
	}
}

// manualClock records scheduled functions without ever running them.
type manualClock struct {
	scheduled []func()
}

func (c *manualClock) AfterFunc(_ time.Duration, f func()) debounce.Timer {
	c.scheduled = append(c.scheduled, f)
	return firedTimer{}
}

type firedTimer struct{}

func (firedTimer) Stop() bool { return false }
