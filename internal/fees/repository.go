// Package fees maps marketplace categories to final-value fee rates and
// required structured attributes.
package fees

import "github.com/hareba/catres/internal/service"

// DefaultFeePercent applies when a category has no fee schedule on file.
const DefaultFeePercent = 13.25

// DefaultFeeConfidence is the fee confidence reported for the default
// rate. The category assignment itself is unaffected.
const DefaultFeeConfidence = 50

// KnownFeeConfidence is the fee confidence for categories with a
// schedule on file.
const KnownFeeConfidence = 90

// StaticRepository is a FeeRepository backed by a fixed schedule table.
type StaticRepository struct {
	schedules map[string]service.FeeSchedule
}

var _ service.FeeRepository = (*StaticRepository)(nil)

// NewStaticRepository creates a repository from the given schedules. A
// nil map yields a repository that always falls back to the default fee.
func NewStaticRepository(schedules map[string]service.FeeSchedule) *StaticRepository {
	if schedules == nil {
		schedules = make(map[string]service.FeeSchedule)
	}
	return &StaticRepository{schedules: schedules}
}

// NewDefaultRepository creates a repository with the built-in schedule
// table.
func NewDefaultRepository() *StaticRepository {
	return NewStaticRepository(defaultSchedules())
}

// Lookup resolves the fee schedule for a category ID.
func (r *StaticRepository) Lookup(categoryID string) (service.FeeSchedule, bool) {
	schedule, ok := r.schedules[categoryID]
	return schedule, ok
}
