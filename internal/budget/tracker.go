// Package budget enforces the daily cap on external suggestion calls.
package budget

import (
	"context"
	"log/slog"
	"time"

	"github.com/hareba/catres/internal/service"
)

// Store is the subset of the persistence layer the tracker needs. The
// counter lives in the database so it survives restarts within the same
// day and stays consistent across concurrent resolutions.
type Store interface {
	CallCount(ctx context.Context, day string) (int, error)
	TryAcquireCall(ctx context.Context, day string, maxCalls int) (bool, error)
	ReleaseCall(ctx context.Context, day string) error
}

// Tracker implements service.BudgetTracker over a persisted daily
// counter. The clock is injectable so tests can cross day boundaries.
type Tracker struct {
	store     Store
	now       func() time.Time
	maxPerDay int
}

var _ service.BudgetTracker = (*Tracker)(nil)

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock overrides the tracker's time source.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) {
		t.now = now
	}
}

// NewTracker creates a budget tracker with the given daily cap. A cap of
// zero disables external calls entirely.
func NewTracker(store Store, maxPerDay int, opts ...Option) *Tracker {
	t := &Tracker{
		store:     store,
		maxPerDay: maxPerDay,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// day returns the UTC day key; the daily boundary is fixed at UTC
// midnight.
func (t *Tracker) day() string {
	return t.now().UTC().Format("2006-01-02")
}

// CanCall reports whether budget remains today.
func (t *Tracker) CanCall(ctx context.Context) bool {
	if t.maxPerDay <= 0 {
		return false
	}
	count, err := t.store.CallCount(ctx, t.day())
	if err != nil {
		slog.Error("Failed to read call budget", "error", err)
		return false
	}
	return count < t.maxPerDay
}

// TryAcquire atomically consumes one call from today's budget.
func (t *Tracker) TryAcquire(ctx context.Context) (bool, error) {
	if t.maxPerDay <= 0 {
		return false, nil
	}
	return t.store.TryAcquireCall(ctx, t.day(), t.maxPerDay)
}

// Release returns one call to the budget after a failed round-trip.
func (t *Tracker) Release(ctx context.Context) error {
	return t.store.ReleaseCall(ctx, t.day())
}

// Remaining returns the number of calls left today.
func (t *Tracker) Remaining(ctx context.Context) (int, error) {
	if t.maxPerDay <= 0 {
		return 0, nil
	}
	count, err := t.store.CallCount(ctx, t.day())
	if err != nil {
		return 0, err
	}
	remaining := t.maxPerDay - count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}
