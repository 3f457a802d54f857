package preferences

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

//go:generate mockery --name Store --filename store.go

const (
	// DarkModeKey stores "true" or "false".
	DarkModeKey = "darkMode"
	// ViewModeKey stores one of ViewGrid, ViewList.
	ViewModeKey = "viewMode"
)

// View modes of the flyer listing.
const (
	ViewGrid = "grid"
	ViewList = "list"
)

// ErrInvalidViewMode is returned when view mode is neither ViewGrid nor ViewList.
var ErrInvalidViewMode = errors.New("invalid view mode")

// Store is durable key-value storage.
type Store interface {
	// Get returns value of key, false when it was never set.
	Get(ctx context.Context, key string) (string, bool, error)
	// Set stores value of key.
	Set(ctx context.Context, key, value string) error
}

// Preferences reads and writes shopper's display preferences.
type Preferences struct {
	store Store
}

// New returns new Preferences.
func New(store Store) Preferences {
	return Preferences{store: store}
}

// DarkMode returns whether dark mode is on. Defaults to false, also for unreadable values.
func (p Preferences) DarkMode(ctx context.Context) (bool, error) {
	value, ok, err := p.store.Get(ctx, DarkModeKey)
	if err != nil {
		return false, fmt.Errorf("can't read dark mode: %w", err)
	}
	if !ok {
		return false, nil
	}

	on, err := strconv.ParseBool(value)
	if err != nil {
		return false, nil
	}

	return on, nil
}

// SetDarkMode turns dark mode on or off.
func (p Preferences) SetDarkMode(ctx context.Context, on bool) error {
	if err := p.store.Set(ctx, DarkModeKey, strconv.FormatBool(on)); err != nil {
		return fmt.Errorf("can't save dark mode: %w", err)
	}
	return nil
}

// ToggleDarkMode flips dark mode and returns the new value.
func (p Preferences) ToggleDarkMode(ctx context.Context) (bool, error) {
	on, err := p.DarkMode(ctx)
	if err != nil {
		return false, err
	}

	if err := p.SetDarkMode(ctx, !on); err != nil {
		return on, err
	}

	return !on, nil
}

// ViewMode returns stored view mode, ViewGrid when unset or unknown.
func (p Preferences) ViewMode(ctx context.Context) (string, error) {
	value, ok, err := p.store.Get(ctx, ViewModeKey)
	if err != nil {
		return ViewGrid, fmt.Errorf("can't read view mode: %w", err)
	}
	if !ok || !validViewMode(value) {
		return ViewGrid, nil
	}

	return value, nil
}

// SetViewMode stores view mode.
func (p Preferences) SetViewMode(ctx context.Context, mode string) error {
	if !validViewMode(mode) {
		return fmt.Errorf("can't save view mode %q: %w", mode, ErrInvalidViewMode)
	}

	if err := p.store.Set(ctx, ViewModeKey, mode); err != nil {
		return fmt.Errorf("can't save view mode: %w", err)
	}

	return nil
}

func validViewMode(mode string) bool {
	return mode == ViewGrid || mode == ViewList
}
