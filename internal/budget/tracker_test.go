package budget_test

import (
	"context"
	"testing"
	"time"

	"github.com/hareba/catres/internal/budget"
	"github.com/hareba/catres/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTracker_CapEnforced(t *testing.T) {
	store := testutil.SetupTestStore(t)
	tracker := budget.NewTracker(store, 2)
	ctx := context.Background()

	assert.True(t, tracker.CanCall(ctx))

	ok, err := tracker.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = tracker.TryAcquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	assert.False(t, tracker.CanCall(ctx))

	ok, err = tracker.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	remaining, err := tracker.Remaining(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestTracker_ZeroCapNeverCalls(t *testing.T) {
	store := testutil.SetupTestStore(t)
	tracker := budget.NewTracker(store, 0)
	ctx := context.Background()

	assert.False(t, tracker.CanCall(ctx))

	ok, err := tracker.TryAcquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	remaining, err := tracker.Remaining(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, remaining)
}

func TestTracker_ReleaseRestoresBudget(t *testing.T) {
	store := testutil.SetupTestStore(t)
	tracker := budget.NewTracker(store, 1)
	ctx := context.Background()

	ok, err := tracker.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, tracker.CanCall(ctx))

	require.NoError(t, tracker.Release(ctx))
	assert.True(t, tracker.CanCall(ctx))
}

func TestTracker_ResetsAtDayBoundary(t *testing.T) {
	store := testutil.SetupTestStore(t)

	now := time.Date(2026, 9, 1, 23, 0, 0, 0, time.UTC)
	tracker := budget.NewTracker(store, 1, budget.WithClock(func() time.Time { return now }))
	ctx := context.Background()

	ok, err := tracker.TryAcquire(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, tracker.CanCall(ctx))

	// Crossing UTC midnight resets the counter.
	now = now.Add(2 * time.Hour)
	assert.True(t, tracker.CanCall(ctx))

	remaining, err := tracker.Remaining(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, remaining)
}
