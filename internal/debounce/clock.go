package debounce

import "time"

type systemClock struct{}

// AfterFunc runs f in its own goroutine after d.
func (c systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
