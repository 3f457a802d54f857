package preferences_test

import (
	"context"
	"testing"

	"github.com/MichalMitros/flyer-shopper/internal/platform/storage"
	"github.com/MichalMitros/flyer-shopper/internal/platform/storage/storagetesting"
	"github.com/MichalMitros/flyer-shopper/internal/preferences"
	"github.com/MichalMitros/flyer-shopper/internal/preferences/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	ctx                            = context.TODO()
	errShouldContainAssertErrorMsg = "should return error containing assert.AnError"
)

func TestUnitDarkMode(t *testing.T) {
	tests := map[string]struct {
		stored  string
		found   bool
		getErr  error
		want    bool
		wantErr error
	}{
		"unset": {
			want: false,
		},
		"on": {
			stored: "true",
			found:  true,
			want:   true,
		},
		"off": {
			stored: "false",
			found:  true,
			want:   false,
		},
		"unreadable value": {
			stored: "dark",
			found:  true,
			want:   false,
		},
		"store error": {
			getErr:  assert.AnError,
			wantErr: assert.AnError,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			store := mocks.NewStore(t)
			store.On("Get", ctx, preferences.DarkModeKey).Return(tt.stored, tt.found, tt.getErr).Once()

			got, err := preferences.New(store).DarkMode(ctx)

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr, errShouldContainAssertErrorMsg)
				return
			}
			require.NoError(t, err, "should not return any error")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnitToggleDarkMode(t *testing.T) {
	store := mocks.NewStore(t)
	store.On("Get", ctx, preferences.DarkModeKey).Return("", false, nil).Once()
	store.On("Set", ctx, preferences.DarkModeKey, "true").Return(nil).Once()

	got, err := preferences.New(store).ToggleDarkMode(ctx)

	require.NoError(t, err, "should not return any error")
	assert.True(t, got, "should turn dark mode on")
}

func TestUnitToggleDarkModeSaveFailure(t *testing.T) {
	store := mocks.NewStore(t)
	store.On("Get", ctx, preferences.DarkModeKey).Return("true", true, nil).Once()
	store.On("Set", ctx, preferences.DarkModeKey, "false").Return(assert.AnError).Once()

	got, err := preferences.New(store).ToggleDarkMode(ctx)

	require.ErrorIs(t, err, assert.AnError, errShouldContainAssertErrorMsg)
	assert.True(t, got, "should return unchanged value")
}

func TestUnitViewMode(t *testing.T) {
	tests := map[string]struct {
		stored string
		found  bool
		want   string
	}{
		"unset": {
			want: preferences.ViewGrid,
		},
		"list": {
			stored: "list",
			found:  true,
			want:   preferences.ViewList,
		},
		"grid": {
			stored: "grid",
			found:  true,
			want:   preferences.ViewGrid,
		},
		"unknown value": {
			stored: "table",
			found:  true,
			want:   preferences.ViewGrid,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			store := mocks.NewStore(t)
			store.On("Get", ctx, preferences.ViewModeKey).Return(tt.stored, tt.found, nil).Once()

			got, err := preferences.New(store).ViewMode(ctx)

			require.NoError(t, err, "should not return any error")
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestUnitSetViewMode(t *testing.T) {
	store := mocks.NewStore(t)
	store.On("Set", ctx, preferences.ViewModeKey, "list").Return(nil).Once()
	prefs := preferences.New(store)

	require.NoError(t, prefs.SetViewMode(ctx, preferences.ViewList), "should store valid mode")

	err := prefs.SetViewMode(ctx, "table")
	require.ErrorIs(t, err, preferences.ErrInvalidViewMode, "should reject unknown mode")
}

func TestUnitPreferencesSQLite(t *testing.T) {
	prefs := preferences.New(storage.NewSQLite(storagetesting.OpenSQLite(t)))

	on, err := prefs.ToggleDarkMode(ctx)
	require.NoError(t, err)
	assert.True(t, on)
	require.NoError(t, prefs.SetViewMode(ctx, preferences.ViewList))

	on, err = prefs.DarkMode(ctx)
	require.NoError(t, err)
	assert.True(t, on, "should read stored dark mode")
	mode, err := prefs.ViewMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, preferences.ViewList, mode, "should read stored view mode")
}
