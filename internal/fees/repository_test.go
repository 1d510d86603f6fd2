package fees

import (
	"testing"

	"github.com/hareba/catres/internal/service"
	"github.com/stretchr/testify/assert"
)

func TestLookup_KnownCategory(t *testing.T) {
	repo := NewDefaultRepository()

	schedule, ok := repo.Lookup("9355")
	assert.True(t, ok)
	assert.InDelta(t, 13.25, schedule.FeePercent, 0.001)
	assert.Contains(t, schedule.RequiredAttributes, "Brand")
	assert.Contains(t, schedule.RequiredAttributes["Storage Capacity"], "256 GB")
}

func TestLookup_UnknownCategory(t *testing.T) {
	repo := NewDefaultRepository()

	_, ok := repo.Lookup("999999")
	assert.False(t, ok)
}

func TestLookup_WatchesCarryHigherRate(t *testing.T) {
	repo := NewDefaultRepository()

	schedule, ok := repo.Lookup("14324")
	assert.True(t, ok)
	assert.InDelta(t, 15.0, schedule.FeePercent, 0.001)
}

func TestNewStaticRepository_NilMap(t *testing.T) {
	repo := NewStaticRepository(nil)

	_, ok := repo.Lookup("9355")
	assert.False(t, ok)
}

func TestNewStaticRepository_CustomSchedule(t *testing.T) {
	repo := NewStaticRepository(map[string]service.FeeSchedule{
		"42": {FeePercent: 10.0},
	})

	schedule, ok := repo.Lookup("42")
	assert.True(t, ok)
	assert.InDelta(t, 10.0, schedule.FeePercent, 0.001)
}
