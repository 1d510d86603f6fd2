// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/hareba/catres/internal/model"
)

// PatternMatch pairs a learned pattern with the score it earned against a
// particular query.
type PatternMatch struct {
	Pattern    model.LearnedPattern
	Score      float64
	Confidence int
}

// PatternStore is the engine's long-term memory: learned patterns,
// unknown-pattern backlog and the correction audit trail.
type PatternStore interface {
	// FindBestMatch scores stored patterns against the query and returns
	// the top scorer, or nil when nothing clears the minimum score. A
	// returned match has already had its usage count incremented.
	FindBestMatch(ctx context.Context, query model.ProductQuery) (*PatternMatch, error)

	// RecordLearning upserts a pattern keyed by the query's title hash.
	// On conflict the usage count is incremented; existing statistics are
	// preserved.
	RecordLearning(ctx context.Context, query model.ProductQuery, categoryID, categoryName string, confidence int, source model.LearningSource) error

	// GetPattern fetches a pattern by title hash.
	GetPattern(ctx context.Context, titleHash string) (*model.LearnedPattern, error)

	// RecordOutcome adjusts a pattern's success rate after downstream
	// confirmation or rejection of its category.
	RecordOutcome(ctx context.Context, titleHash string, success bool) error

	// ListPatterns returns learned patterns, most recently updated
	// first.
	ListPatterns(ctx context.Context, limit int) ([]model.LearnedPattern, error)

	// RecordUnknown creates or increments the unknown-pattern row for the
	// query's title hash.
	RecordUnknown(ctx context.Context, query model.ProductQuery) error

	// ListLearningTargets returns unknown patterns still needing
	// learning, highest priority first.
	ListLearningTargets(ctx context.Context, limit int) ([]model.UnknownPattern, error)

	// ClearNeedsLearning marks an unknown pattern as handled.
	ClearNeedsLearning(ctx context.Context, titleHash string) error

	// AppendAudit records a manual correction.
	AppendAudit(ctx context.Context, entry model.CorrectionAudit) error

	// ListAuditEntries returns correction audit rows, newest first.
	ListAuditEntries(ctx context.Context, limit int) ([]model.CorrectionAudit, error)

	// Stats summarizes the store for operational dashboards.
	Stats(ctx context.Context) (*StoreStats, error)

	// Database management.
	Migrate(ctx context.Context) error
	Close() error
}

// Cache memoizes resolution results by query fingerprint. Last-writer-wins
// semantics are acceptable: entries are idempotent recomputations.
type Cache interface {
	Get(ctx context.Context, fingerprint string) (*model.ResolutionResult, error)
	Put(ctx context.Context, fingerprint string, result *model.ResolutionResult, ttl time.Duration) error
	Close() error
}

// Suggester calls the external category-suggestion service.
type Suggester interface {
	// Configured reports whether credentials and an endpoint are present.
	// An unconfigured suggester never consumes budget.
	Configured() bool

	// Suggest returns ranked candidates for the query, or an error on
	// timeout, non-2xx response or malformed payload.
	Suggest(ctx context.Context, query model.ProductQuery) ([]model.CategoryCandidate, error)
}

// BudgetTracker enforces the daily cap on external suggestion calls. The
// counter is shared process-wide and persisted across restarts within the
// same day.
type BudgetTracker interface {
	// CanCall reports whether budget remains today.
	CanCall(ctx context.Context) bool

	// TryAcquire atomically consumes one call from today's budget,
	// returning false when the cap is reached.
	TryAcquire(ctx context.Context) (bool, error)

	// Release returns one call to the budget after a failed round-trip.
	Release(ctx context.Context) error

	// Remaining returns the number of calls left today.
	Remaining(ctx context.Context) (int, error)
}

// FeeSchedule is the fee and attribute data attached to a category.
type FeeSchedule struct {
	RequiredAttributes map[string][]string
	FeePercent         float64
}

// FeeRepository resolves fee percentage and required structured
// attributes by category ID.
type FeeRepository interface {
	Lookup(categoryID string) (FeeSchedule, bool)
}

// CandidateSource is a pipeline stage capable of proposing category
// candidates, best first. An empty slice with nil error means the stage
// has nothing to offer and the orchestrator moves on.
type CandidateSource interface {
	Name() string
	Resolve(ctx context.Context, query model.ProductQuery) ([]model.CategoryCandidate, error)
}

// StoreStats summarizes the learning store for dashboards.
type StoreStats struct {
	LearnedPatterns  int
	LearnedToday     int
	UnknownBacklog   int
	AvgSuccessRate   float64
	PatternsWithUses int
}

// EngineStats extends store statistics with the remaining daily budget.
type EngineStats struct {
	StoreStats
	BudgetRemaining int
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
