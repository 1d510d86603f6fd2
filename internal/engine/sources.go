package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hareba/catres/internal/model"
	"github.com/hareba/catres/internal/rules"
	"github.com/hareba/catres/internal/service"
	"github.com/hareba/catres/internal/telemetry"
)

// learnedSource proposes candidates from the learned pattern store.
type learnedSource struct {
	store service.PatternStore
}

var _ service.CandidateSource = (*learnedSource)(nil)

func (s *learnedSource) Name() string { return "learned" }

func (s *learnedSource) Resolve(ctx context.Context, query model.ProductQuery) ([]model.CategoryCandidate, error) {
	match, err := s.store.FindBestMatch(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("learned pattern lookup: %w", err)
	}
	if match == nil {
		return nil, nil
	}

	return []model.CategoryCandidate{{
		CategoryID:   match.Pattern.CategoryID,
		CategoryName: match.Pattern.CategoryName,
		RawScore:     match.Score,
		Confidence:   match.Confidence,
		Source:       model.SourceLearned,
	}}, nil
}

// externalSource consults the suggestion service under budget control.
// Gating (configuration, remaining budget, learned-confidence trigger)
// happens in the orchestrator; this stage only spends and refunds.
type externalSource struct {
	suggester service.Suggester
	budget    service.BudgetTracker
	store     service.PatternStore
}

var _ service.CandidateSource = (*externalSource)(nil)

func (s *externalSource) Name() string { return "external" }

func (s *externalSource) Resolve(ctx context.Context, query model.ProductQuery) ([]model.CategoryCandidate, error) {
	acquired, err := s.budget.TryAcquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("budget acquire: %w", err)
	}
	if !acquired {
		telemetry.ExternalCallsTotal.WithLabelValues("budget_exhausted").Inc()
		return nil, nil
	}

	candidates, err := s.suggester.Suggest(ctx, query)
	if err != nil {
		// The call never happened or produced nothing usable; the
		// budget slot goes back.
		if releaseErr := s.budget.Release(ctx); releaseErr != nil {
			slog.Warn("failed to release budget slot", "error", releaseErr)
		}
		telemetry.ExternalCallsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("external suggestion: %w", err)
	}
	if len(candidates) == 0 {
		// Nothing usable came back; refund the slot and let the
		// later stages answer.
		if releaseErr := s.budget.Release(ctx); releaseErr != nil {
			slog.Warn("failed to release budget slot", "error", releaseErr)
		}
		telemetry.ExternalCallsTotal.WithLabelValues("empty").Inc()
		return nil, nil
	}
	telemetry.ExternalCallsTotal.WithLabelValues("ok").Inc()

	// Persist the top suggestion so the next similar query resolves
	// without spending budget.
	best := candidates[0]
	if err := s.store.RecordLearning(ctx, query, best.CategoryID, best.CategoryName, best.Confidence, model.LearnedFromExternal); err != nil {
		slog.Warn("failed to record external learning",
			"title_hash", query.TitleHash(),
			"error", err)
	}

	return candidates, nil
}

// ruleSource proposes candidates from the deterministic keyword
// classifier.
type ruleSource struct {
	classifier *rules.Classifier
	store      service.PatternStore
}

var _ service.CandidateSource = (*ruleSource)(nil)

func (s *ruleSource) Name() string { return "rule" }

func (s *ruleSource) Resolve(ctx context.Context, query model.ProductQuery) ([]model.CategoryCandidate, error) {
	candidate := s.classifier.Classify(query)
	if candidate == nil {
		return nil, nil
	}

	// Every rule win feeds the store at the rule's own confidence, so
	// repeat sightings of even weak matches graduate to learned
	// patterns.
	if err := s.store.RecordLearning(ctx, query, candidate.CategoryID, candidate.CategoryName, candidate.Confidence, model.LearnedFromFeedback); err != nil {
		slog.Warn("failed to record rule feedback",
			"title_hash", query.TitleHash(),
			"error", err)
	}

	return []model.CategoryCandidate{*candidate}, nil
}

// fallbackSource is the terminal stage: it always answers, files the
// query in the unknown-pattern backlog and never errors.
type fallbackSource struct {
	store service.PatternStore
}

var _ service.CandidateSource = (*fallbackSource)(nil)

// Fallback category returned when no stage produces a candidate.
const (
	FallbackCategoryID   = "99"
	FallbackCategoryName = "Other"
	FallbackConfidence   = 28
)

func (s *fallbackSource) Name() string { return "fallback" }

func (s *fallbackSource) Resolve(ctx context.Context, query model.ProductQuery) ([]model.CategoryCandidate, error) {
	if err := s.store.RecordUnknown(ctx, query); err != nil {
		slog.Warn("failed to record unknown pattern",
			"title_hash", query.TitleHash(),
			"error", err)
	}
	telemetry.UnknownPatternsTotal.Inc()

	return []model.CategoryCandidate{{
		CategoryID:   FallbackCategoryID,
		CategoryName: FallbackCategoryName,
		Confidence:   FallbackConfidence,
		Source:       model.SourceFallback,
	}}, nil
}
