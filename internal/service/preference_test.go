package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/litreads/internal/domain"
	"github.com/utafrali/litreads/internal/repository/memory"
	apperrors "github.com/utafrali/litreads/pkg/errors"
)

func TestPreferences_DefaultIsLight(t *testing.T) {
	svc := NewPreferenceService(memory.NewStore(0), newTestLogger())
	assert.False(t, svc.Get(context.Background(), visitor).DarkMode)
}

func TestPreferences_ToggleRoundTrip(t *testing.T) {
	store := memory.NewStore(0)
	svc := NewPreferenceService(store, newTestLogger())
	ctx := context.Background()

	prefs, err := svc.ToggleDarkMode(ctx, visitor)
	require.NoError(t, err)
	assert.True(t, prefs.DarkMode)

	raw, err := store.Get(ctx, visitor, domain.DarkModeKey)
	require.NoError(t, err)
	assert.Equal(t, "on", string(raw))
	assert.True(t, svc.Get(ctx, visitor).DarkMode)

	prefs, err = svc.ToggleDarkMode(ctx, visitor)
	require.NoError(t, err)
	assert.False(t, prefs.DarkMode)

	raw, err = store.Get(ctx, visitor, domain.DarkModeKey)
	require.NoError(t, err)
	assert.Equal(t, "off", string(raw))
}

func TestPreferences_UnknownValueIsLight(t *testing.T) {
	store := new(mockStore)
	store.On("Get", mock.Anything, visitor, domain.DarkModeKey).Return([]byte("true"), nil)

	svc := NewPreferenceService(store, newTestLogger())
	assert.False(t, svc.Get(context.Background(), visitor).DarkMode)
}

func TestPreferences_StorageFailureFallsBack(t *testing.T) {
	store := new(mockStore)
	store.On("Get", mock.Anything, visitor, domain.DarkModeKey).Return(nil, errors.New("timeout"))
	store.On("Set", mock.Anything, visitor, domain.DarkModeKey, []byte("on")).Return(errors.New("timeout"))

	svc := NewPreferenceService(store, newTestLogger())
	assert.False(t, svc.Get(context.Background(), visitor).DarkMode)

	_, err := svc.ToggleDarkMode(context.Background(), visitor)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "save dark mode")
}

func TestPreferences_RequiresVisitor(t *testing.T) {
	svc := NewPreferenceService(memory.NewStore(0), newTestLogger())
	_, err := svc.SetDarkMode(context.Background(), "", true)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
