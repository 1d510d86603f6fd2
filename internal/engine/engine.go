// Package engine orchestrates category resolution: cache, learned
// patterns, external suggestions, rule classification and the fallback,
// in that order, with fee enrichment on the way out.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/hareba/catres/internal/cache"
	"github.com/hareba/catres/internal/common"
	"github.com/hareba/catres/internal/fees"
	"github.com/hareba/catres/internal/model"
	"github.com/hareba/catres/internal/rules"
	"github.com/hareba/catres/internal/service"
	"github.com/hareba/catres/internal/telemetry"
)

const (
	// HighConfidenceThreshold short-circuits the pipeline: a learned
	// match at or above it is returned without consulting later stages.
	HighConfidenceThreshold = 85

	// ExternalConsultThreshold gates the suggestion service: it is only
	// consulted when no learned match reached this confidence.
	ExternalConsultThreshold = 70

	// ManualConfidence is assigned to operator corrections.
	ManualConfidence = 95

	maxAlternates = 3
)

// Engine is the resolution orchestrator.
type Engine struct {
	store    service.PatternStore
	cache    service.Cache
	budget   service.BudgetTracker
	fees     service.FeeRepository
	learned  service.CandidateSource
	external service.CandidateSource
	rule     service.CandidateSource
	fallback service.CandidateSource

	suggesterConfigured func() bool
	cacheTTL            time.Duration
}

// Option configures an Engine.
type Option func(*Engine)

// WithCacheTTL overrides the default result cache TTL.
func WithCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.cacheTTL = ttl
	}
}

// New creates a resolution engine over the given collaborators.
func New(store service.PatternStore, resultCache service.Cache, suggester service.Suggester, budget service.BudgetTracker, feeRepo service.FeeRepository, classifier *rules.Classifier, opts ...Option) *Engine {
	e := &Engine{
		store:               store,
		cache:               resultCache,
		budget:              budget,
		fees:                feeRepo,
		learned:             &learnedSource{store: store},
		external:            &externalSource{suggester: suggester, budget: budget, store: store},
		rule:                &ruleSource{classifier: classifier, store: store},
		fallback:            &fallbackSource{store: store},
		suggesterConfigured: suggester.Configured,
		cacheTTL:            cache.DefaultTTL,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Resolve runs the full pipeline for one query.
func (e *Engine) Resolve(ctx context.Context, query model.ProductQuery) (*model.ResolutionResult, error) {
	if query.Title == "" {
		return nil, common.NewUserError("a product title is required to resolve a category", common.ErrEmptyTitle)
	}

	start := time.Now()
	fingerprint := query.Fingerprint()

	if cached := e.cachedResult(ctx, fingerprint); cached != nil {
		cached.Best.Source = model.SourceCache
		cached.ProcessingTimeMs = time.Since(start).Milliseconds()
		e.observe(cached, start)
		return cached, nil
	}

	var candidates []model.CategoryCandidate

	learned, err := e.learned.Resolve(ctx, query)
	if err != nil {
		slog.Warn("learned stage failed", "title_hash", query.TitleHash(), "error", err)
	}
	candidates = append(candidates, learned...)

	if len(learned) > 0 && learned[0].Confidence >= HighConfidenceThreshold {
		return e.finish(ctx, fingerprint, candidates, start)
	}

	if e.shouldConsultExternal(ctx, learned) {
		external, err := e.external.Resolve(ctx, query)
		if err != nil {
			slog.Warn("external stage failed", "title_hash", query.TitleHash(), "error", err)
		}
		candidates = append(candidates, external...)
	}

	ruled, err := e.rule.Resolve(ctx, query)
	if err != nil {
		slog.Warn("rule stage failed", "title_hash", query.TitleHash(), "error", err)
	}
	candidates = append(candidates, ruled...)

	if len(candidates) == 0 {
		// Fallback never errors.
		candidates, _ = e.fallback.Resolve(ctx, query)
	}

	return e.finish(ctx, fingerprint, candidates, start)
}

// shouldConsultExternal applies the budget and confidence gates for the
// suggestion service.
func (e *Engine) shouldConsultExternal(ctx context.Context, learned []model.CategoryCandidate) bool {
	if !e.suggesterConfigured() {
		return false
	}
	if len(learned) > 0 && learned[0].Confidence >= ExternalConsultThreshold {
		return false
	}
	return e.budget.CanCall(ctx)
}

func (e *Engine) cachedResult(ctx context.Context, fingerprint string) *model.ResolutionResult {
	result, err := e.cache.Get(ctx, fingerprint)
	if err != nil {
		slog.Warn("cache lookup failed", "error", err)
		return nil
	}
	return result
}

// finish ranks the collected candidates, enriches the winner and caches
// everything but fallback answers. Fallback stays uncached so repeated
// sightings keep feeding the unknown-pattern backlog.
func (e *Engine) finish(ctx context.Context, fingerprint string, candidates []model.CategoryCandidate, start time.Time) (*model.ResolutionResult, error) {
	ranked := rankCandidates(candidates)
	best := ranked[0]

	alternates := ranked[1:]
	if len(alternates) > maxAlternates {
		alternates = alternates[:maxAlternates]
	}

	result := &model.ResolutionResult{
		Best:             best,
		Alternates:       alternates,
		ProcessingTimeMs: time.Since(start).Milliseconds(),
	}
	e.enrich(result)

	if best.Source != model.SourceFallback {
		if err := e.cache.Put(ctx, fingerprint, result, e.cacheTTL); err != nil {
			slog.Warn("cache store failed", "error", err)
		}
	}

	e.observe(result, start)
	slog.Debug("resolved query",
		"category_id", best.CategoryID,
		"confidence", best.Confidence,
		"source", best.Source)

	return result, nil
}

// enrich attaches fee rate and required attributes for the winning
// category.
func (e *Engine) enrich(result *model.ResolutionResult) {
	schedule, ok := e.fees.Lookup(result.Best.CategoryID)
	if !ok {
		result.Fee = model.FeeInfo{
			FeePercent: fees.DefaultFeePercent,
			Confidence: fees.DefaultFeeConfidence,
		}
		return
	}
	result.Fee = model.FeeInfo{
		FeePercent: schedule.FeePercent,
		Confidence: fees.KnownFeeConfidence,
	}
	result.RequiredAttributes = schedule.RequiredAttributes
}

func (e *Engine) observe(result *model.ResolutionResult, start time.Time) {
	telemetry.ResolutionsTotal.WithLabelValues(string(result.Best.Source)).Inc()
	telemetry.ResolutionDuration.Observe(time.Since(start).Seconds())
	if remaining, err := e.budget.Remaining(context.Background()); err == nil {
		telemetry.ExternalBudgetRemaining.Set(float64(remaining))
	}
}

// rankCandidates orders candidates by confidence, highest first,
// keeping only the first occurrence of each category. Sort stability
// preserves pipeline order among ties, so earlier stages win them.
func rankCandidates(candidates []model.CategoryCandidate) []model.CategoryCandidate {
	ranked := make([]model.CategoryCandidate, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Confidence > ranked[j].Confidence
	})

	seen := make(map[string]bool, len(ranked))
	deduped := ranked[:0]
	for _, c := range ranked {
		if seen[c.CategoryID] {
			continue
		}
		seen[c.CategoryID] = true
		deduped = append(deduped, c)
	}
	return deduped
}

// BatchItem pairs one input query with its outcome.
type BatchItem struct {
	Query  model.ProductQuery
	Result *model.ResolutionResult
	Err    error
}

// PriceOrder returns query indices ordered highest-priced first. Sort
// stability preserves input order among equal prices. Batch callers
// share this so the external budget is always spent on the items where
// a wrong category costs the most.
func PriceOrder(queries []model.ProductQuery) []int {
	order := make([]int, len(queries))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return queries[order[a]].Price > queries[order[b]].Price
	})
	return order
}

// ResolveBatch resolves many queries, spending the external budget on
// the highest-priced items first. Results are returned in input order
// and one failure never stops the rest.
func (e *Engine) ResolveBatch(ctx context.Context, queries []model.ProductQuery) []BatchItem {
	order := PriceOrder(queries)

	items := make([]BatchItem, len(queries))
	for _, idx := range order {
		query := queries[idx]
		result, err := e.Resolve(ctx, query)
		items[idx] = BatchItem{Query: query, Result: result, Err: err}
	}
	return items
}

// RecordManualCorrection stores an operator-supplied category for the
// query, clears any matching backlog entry and refreshes the result
// cache so the correction takes effect immediately.
func (e *Engine) RecordManualCorrection(ctx context.Context, query model.ProductQuery, categoryID, categoryName string) error {
	if query.Title == "" {
		return common.NewUserError("a product title is required to record a correction", common.ErrEmptyTitle)
	}
	if categoryID == "" || categoryName == "" {
		return common.NewUserError("a category ID and name are required to record a correction", common.ErrInvalidConfig)
	}

	// A correction is a verdict on whatever the store believed before:
	// same category confirms it, a different one counts as a miss and
	// drags the pattern's success rate down.
	if existing, err := e.store.GetPattern(ctx, query.TitleHash()); err == nil {
		if err := e.store.RecordOutcome(ctx, query.TitleHash(), existing.CategoryID == categoryID); err != nil {
			slog.Warn("failed to record correction outcome", "error", err)
		}
	} else if !errors.Is(err, common.ErrNotFound) {
		slog.Warn("failed to load pattern for correction outcome", "error", err)
	}

	learnErr := e.store.RecordLearning(ctx, query, categoryID, categoryName, ManualConfidence, model.LearnedFromManual)

	audit := model.CorrectionAudit{
		ID:           uuid.New().String(),
		Query:        query,
		CategoryID:   categoryID,
		CategoryName: categoryName,
		Success:      learnErr == nil,
		CreatedAt:    time.Now(),
	}
	if err := e.store.AppendAudit(ctx, audit); err != nil {
		slog.Warn("failed to append correction audit", "error", err)
	}

	if learnErr != nil {
		return fmt.Errorf("failed to record correction: %w", learnErr)
	}

	if err := e.store.ClearNeedsLearning(ctx, query.TitleHash()); err != nil && !errors.Is(err, common.ErrNotFound) {
		slog.Warn("failed to clear learning backlog entry", "error", err)
	}

	corrected := &model.ResolutionResult{
		Best: model.CategoryCandidate{
			CategoryID:   categoryID,
			CategoryName: categoryName,
			Confidence:   ManualConfidence,
			Source:       model.SourceLearned,
		},
	}
	e.enrich(corrected)
	if err := e.cache.Put(ctx, query.Fingerprint(), corrected, e.cacheTTL); err != nil {
		slog.Warn("failed to refresh cached result after correction", "error", err)
	}

	telemetry.CorrectionsTotal.Inc()
	return nil
}

// Stats reports store statistics plus the remaining external budget.
func (e *Engine) Stats(ctx context.Context) (*service.EngineStats, error) {
	storeStats, err := e.store.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load store stats: %w", err)
	}
	remaining, err := e.budget.Remaining(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load budget: %w", err)
	}
	return &service.EngineStats{
		StoreStats:      *storeStats,
		BudgetRemaining: remaining,
	}, nil
}

// Close releases the engine's cache and store.
func (e *Engine) Close() error {
	return errors.Join(e.cache.Close(), e.store.Close())
}
