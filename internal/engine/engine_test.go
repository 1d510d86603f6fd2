package engine_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hareba/catres/internal/budget"
	"github.com/hareba/catres/internal/cache"
	"github.com/hareba/catres/internal/common"
	"github.com/hareba/catres/internal/engine"
	"github.com/hareba/catres/internal/fees"
	"github.com/hareba/catres/internal/model"
	"github.com/hareba/catres/internal/rules"
	"github.com/hareba/catres/internal/storage"
	"github.com/hareba/catres/internal/testutil"
)

// stubSuggester is a scriptable external service double.
type stubSuggester struct {
	configured bool
	candidates []model.CategoryCandidate
	err        error
	calls      []string
}

func (s *stubSuggester) Configured() bool { return s.configured }

func (s *stubSuggester) Suggest(_ context.Context, query model.ProductQuery) ([]model.CategoryCandidate, error) {
	s.calls = append(s.calls, query.Title)
	if s.err != nil {
		return nil, s.err
	}
	return s.candidates, nil
}

func externalCandidates() []model.CategoryCandidate {
	return []model.CategoryCandidate{
		{
			CategoryID:   "625",
			CategoryName: "Cameras & Photo",
			RawScore:     93,
			Confidence:   93,
			Source:       model.SourceExternal,
		},
		{
			CategoryID:   "293",
			CategoryName: "Consumer Electronics",
			RawScore:     58,
			Confidence:   58,
			Source:       model.SourceExternal,
		},
	}
}

func setupEngine(t *testing.T, suggester *stubSuggester, maxCalls int) (*engine.Engine, *storage.SQLiteStorage) {
	t.Helper()
	store := testutil.SetupTestStore(t)
	e := engine.New(
		store,
		cache.NewMemoryCache(),
		suggester,
		budget.NewTracker(store, maxCalls),
		fees.NewDefaultRepository(),
		rules.NewDefaultClassifier(),
	)
	return e, store
}

func smartphoneQuery() model.ProductQuery {
	return model.ProductQuery{
		Title: "iPhone 15 Pro Max 256GB",
		Brand: "Apple",
		Price: 180000,
	}
}

func todayKey() string {
	return time.Now().UTC().Format("2006-01-02")
}

// obscureQuery matches no classification rule.
func obscureQuery() model.ProductQuery {
	return model.ProductQuery{
		Title: "Mysterious Artifact Doohickey",
		Price: 4500,
	}
}

func TestResolve_RuleClassifiesSmartphone(t *testing.T) {
	ctx := context.Background()
	e, store := setupEngine(t, &stubSuggester{}, 10)

	result, err := e.Resolve(ctx, smartphoneQuery())
	require.NoError(t, err)

	assert.Equal(t, "9355", result.Best.CategoryID)
	assert.Equal(t, model.SourceRule, result.Best.Source)
	assert.GreaterOrEqual(t, result.Best.Confidence, 70)
	assert.Equal(t, 13.25, result.Fee.FeePercent)
	assert.Equal(t, fees.KnownFeeConfidence, result.Fee.Confidence)
	assert.Contains(t, result.RequiredAttributes, "Brand")

	// A confident rule answer feeds the learning loop.
	pattern, err := store.GetPattern(ctx, smartphoneQuery().TitleHash())
	require.NoError(t, err)
	assert.Equal(t, model.LearnedFromFeedback, pattern.LearningSource)
}

func TestResolve_EmptyTitle(t *testing.T) {
	e, _ := setupEngine(t, &stubSuggester{}, 10)

	_, err := e.Resolve(context.Background(), model.ProductQuery{Price: 100})
	require.Error(t, err)
	assert.True(t, errors.Is(err, common.ErrEmptyTitle))
}

func TestResolve_CacheHitOnRepeat(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t, &stubSuggester{}, 10)
	query := smartphoneQuery()

	first, err := e.Resolve(ctx, query)
	require.NoError(t, err)
	require.Equal(t, model.SourceRule, first.Best.Source)

	second, err := e.Resolve(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, model.SourceCache, second.Best.Source)
	assert.Equal(t, first.Best.CategoryID, second.Best.CategoryID)
	assert.Equal(t, first.Fee, second.Fee)
}

func TestResolve_LearnedShortCircuit(t *testing.T) {
	ctx := context.Background()
	suggester := &stubSuggester{configured: true, candidates: externalCandidates()}
	e, store := setupEngine(t, suggester, 10)
	query := model.ProductQuery{Title: "Nikon D850 body only", Price: 250000}

	err := store.RecordLearning(ctx, query, "625", "Cameras & Photo", 95, model.LearnedFromManual)
	require.NoError(t, err)

	result, err := e.Resolve(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, "625", result.Best.CategoryID)
	assert.Equal(t, model.SourceLearned, result.Best.Source)
	assert.GreaterOrEqual(t, result.Best.Confidence, 95)
	// High-confidence learned matches never spend budget.
	assert.Empty(t, suggester.calls)
}

func TestResolve_ExternalConsulted(t *testing.T) {
	ctx := context.Background()
	suggester := &stubSuggester{configured: true, candidates: externalCandidates()}
	e, store := setupEngine(t, suggester, 5)
	query := obscureQuery()

	result, err := e.Resolve(ctx, query)
	require.NoError(t, err)

	assert.Equal(t, "625", result.Best.CategoryID)
	assert.Equal(t, model.SourceExternal, result.Best.Source)
	assert.Equal(t, 93, result.Best.Confidence)
	require.NotEmpty(t, result.Alternates)
	assert.Equal(t, "293", result.Alternates[0].CategoryID)

	// One budget slot spent, suggestion persisted for next time.
	count, err := store.CallCount(ctx, todayKey())
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	pattern, err := store.GetPattern(ctx, query.TitleHash())
	require.NoError(t, err)
	assert.Equal(t, model.LearnedFromExternal, pattern.LearningSource)
	assert.Equal(t, "625", pattern.CategoryID)
}

func TestResolve_ZeroBudgetSkipsExternal(t *testing.T) {
	ctx := context.Background()
	suggester := &stubSuggester{configured: true, candidates: externalCandidates()}
	e, _ := setupEngine(t, suggester, 0)

	result, err := e.Resolve(ctx, obscureQuery())
	require.NoError(t, err)

	assert.Empty(t, suggester.calls)
	assert.Equal(t, "99", result.Best.CategoryID)
	assert.Equal(t, "Other", result.Best.CategoryName)
	assert.Equal(t, model.SourceFallback, result.Best.Source)
	assert.Equal(t, 28, result.Best.Confidence)
	assert.Equal(t, fees.DefaultFeePercent, result.Fee.FeePercent)
	assert.Equal(t, fees.DefaultFeeConfidence, result.Fee.Confidence)
}

func TestResolve_EmptySuggestionReleasesBudget(t *testing.T) {
	ctx := context.Background()
	// A well-behaved suggester can answer with no suggestions at all.
	suggester := &stubSuggester{configured: true}
	e, store := setupEngine(t, suggester, 3)

	result, err := e.Resolve(ctx, obscureQuery())
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, result.Best.Source)

	// The call happened but the slot went back.
	require.Len(t, suggester.calls, 1)
	count, err := store.CallCount(ctx, todayKey())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestResolve_SuggesterFailureReleasesBudget(t *testing.T) {
	ctx := context.Background()
	suggester := &stubSuggester{configured: true, err: common.ErrSuggesterUnavailable}
	e, store := setupEngine(t, suggester, 3)

	result, err := e.Resolve(ctx, obscureQuery())
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, result.Best.Source)

	require.Len(t, suggester.calls, 1)
	count, err := store.CallCount(ctx, todayKey())
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestResolve_FallbackNotCached(t *testing.T) {
	ctx := context.Background()
	e, store := setupEngine(t, &stubSuggester{}, 10)
	query := obscureQuery()

	first, err := e.Resolve(ctx, query)
	require.NoError(t, err)
	require.Equal(t, model.SourceFallback, first.Best.Source)

	// The repeat must run the pipeline again so the backlog entry keeps
	// accumulating sightings.
	second, err := e.Resolve(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, model.SourceFallback, second.Best.Source)

	unknown, err := store.GetUnknownPattern(ctx, query.TitleHash())
	require.NoError(t, err)
	assert.Equal(t, 2, unknown.OccurrenceCount)
	assert.True(t, unknown.NeedsLearning)
	assert.Greater(t, unknown.PriorityScore, model.BasePriority(query.Price))
}

func TestRecordManualCorrection(t *testing.T) {
	ctx := context.Background()
	e, store := setupEngine(t, &stubSuggester{}, 10)
	query := obscureQuery()

	// Seed a backlog entry the correction should clear.
	_, err := e.Resolve(ctx, query)
	require.NoError(t, err)

	err = e.RecordManualCorrection(ctx, query, "14324", "Wristwatches")
	require.NoError(t, err)

	pattern, err := store.GetPattern(ctx, query.TitleHash())
	require.NoError(t, err)
	assert.Equal(t, "14324", pattern.CategoryID)
	assert.Equal(t, model.LearnedFromManual, pattern.LearningSource)
	assert.Equal(t, 95, pattern.ConfidenceScore)

	entries, err := store.ListAuditEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "14324", entries[0].CategoryID)
	assert.True(t, entries[0].Success)
	assert.NotEmpty(t, entries[0].ID)

	targets, err := store.ListLearningTargets(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, targets)

	// The same engine answers from the refreshed cache.
	corrected, err := e.Resolve(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, "14324", corrected.Best.CategoryID)
	assert.GreaterOrEqual(t, corrected.Best.Confidence, 95)

	// A cold engine over the same store answers from the learned
	// pattern at the corrected confidence.
	cold := engine.New(
		store,
		cache.NewMemoryCache(),
		&stubSuggester{},
		budget.NewTracker(store, 10),
		fees.NewDefaultRepository(),
		rules.NewDefaultClassifier(),
	)
	relearned, err := cold.Resolve(ctx, query)
	require.NoError(t, err)
	assert.Equal(t, "14324", relearned.Best.CategoryID)
	assert.Equal(t, model.SourceLearned, relearned.Best.Source)
	assert.GreaterOrEqual(t, relearned.Best.Confidence, 95)
}

func TestRecordManualCorrection_AdjustsSuccessRate(t *testing.T) {
	ctx := context.Background()
	e, store := setupEngine(t, &stubSuggester{}, 10)
	query := obscureQuery()

	err := store.RecordLearning(ctx, query, "293", "Consumer Electronics", 80, model.LearnedFromExternal)
	require.NoError(t, err)

	// Correcting to a different category counts as a miss for the
	// stored pattern.
	err = e.RecordManualCorrection(ctx, query, "14324", "Wristwatches")
	require.NoError(t, err)

	pattern, err := store.GetPattern(ctx, query.TitleHash())
	require.NoError(t, err)
	assert.Equal(t, "14324", pattern.CategoryID)
	assert.InDelta(t, 90.0, pattern.SuccessRate, 0.01)

	// Re-confirming the same category nudges the rate back up.
	err = e.RecordManualCorrection(ctx, query, "14324", "Wristwatches")
	require.NoError(t, err)

	pattern, err = store.GetPattern(ctx, query.TitleHash())
	require.NoError(t, err)
	assert.InDelta(t, 92.0, pattern.SuccessRate, 0.01)
}

func TestRecordManualCorrection_Validation(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t, &stubSuggester{}, 10)

	err := e.RecordManualCorrection(ctx, model.ProductQuery{}, "625", "Cameras & Photo")
	assert.True(t, errors.Is(err, common.ErrEmptyTitle))

	err = e.RecordManualCorrection(ctx, obscureQuery(), "", "Cameras & Photo")
	assert.True(t, errors.Is(err, common.ErrInvalidConfig))
}

func TestResolve_RanksAcrossStages(t *testing.T) {
	ctx := context.Background()
	suggester := &stubSuggester{configured: true, candidates: externalCandidates()}
	e, store := setupEngine(t, suggester, 5)
	query := model.ProductQuery{Title: "Curious Brass Contraption"}

	// A weak learned pattern alone should not win against a strong
	// external suggestion, but it stays visible as an alternate.
	err := store.RecordLearning(ctx, query, "293", "Consumer Electronics", 55, model.LearnedFromExternal)
	require.NoError(t, err)

	result, err := e.Resolve(ctx, query)
	require.NoError(t, err)

	assert.Equal(t, "625", result.Best.CategoryID)
	assert.Equal(t, model.SourceExternal, result.Best.Source)
	require.NotEmpty(t, result.Alternates)
	assert.Equal(t, "293", result.Alternates[0].CategoryID)
}

func TestResolve_WeakRuleWinStillLearns(t *testing.T) {
	ctx := context.Background()
	e, store := setupEngine(t, &stubSuggester{}, 10)
	// One keyword, no price: the weakest possible rule win.
	query := model.ProductQuery{Title: "Vintage ukulele gig kit"}

	result, err := e.Resolve(ctx, query)
	require.NoError(t, err)
	require.Equal(t, model.SourceRule, result.Best.Source)
	require.Equal(t, "619", result.Best.CategoryID)
	assert.Equal(t, 50, result.Best.Confidence)

	// Even weak wins feed the store so repeats can graduate.
	pattern, err := store.GetPattern(ctx, query.TitleHash())
	require.NoError(t, err)
	assert.Equal(t, model.LearnedFromFeedback, pattern.LearningSource)
	assert.Equal(t, "619", pattern.CategoryID)
	assert.Equal(t, 50, pattern.ConfidenceScore)
}

func TestPriceOrder(t *testing.T) {
	queries := []model.ProductQuery{
		{Title: "a", Price: 100},
		{Title: "b", Price: 90000},
		{Title: "c", Price: 5000},
		{Title: "d", Price: 5000},
	}

	// Priciest first, input order preserved among equal prices.
	assert.Equal(t, []int{1, 2, 3, 0}, engine.PriceOrder(queries))
	assert.Empty(t, engine.PriceOrder(nil))
}

func TestResolveBatch_HigherPriceFirst(t *testing.T) {
	ctx := context.Background()
	suggester := &stubSuggester{configured: true, candidates: externalCandidates()}
	e, _ := setupEngine(t, suggester, 10)

	queries := []model.ProductQuery{
		{Title: "Odd Trinket Alpha", Price: 100},
		{Title: "Odd Trinket Bravo", Price: 90000},
		{Title: "Odd Trinket Charlie", Price: 5000},
	}

	items := e.ResolveBatch(ctx, queries)
	require.Len(t, items, 3)

	// Output order follows input order.
	for i, item := range items {
		assert.Equal(t, queries[i].Title, item.Query.Title)
		require.NoError(t, item.Err)
		require.NotNil(t, item.Result)
	}

	// Budget is spent on the priciest items first.
	assert.Equal(t, []string{
		"Odd Trinket Bravo",
		"Odd Trinket Charlie",
		"Odd Trinket Alpha",
	}, suggester.calls)
}

func TestResolveBatch_ContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	e, _ := setupEngine(t, &stubSuggester{}, 10)

	items := e.ResolveBatch(ctx, []model.ProductQuery{
		{Title: "", Price: 100},
		smartphoneQuery(),
	})
	require.Len(t, items, 2)
	assert.Error(t, items[0].Err)
	require.NoError(t, items[1].Err)
	assert.Equal(t, "9355", items[1].Result.Best.CategoryID)
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	suggester := &stubSuggester{configured: true, candidates: externalCandidates()}
	e, _ := setupEngine(t, suggester, 5)

	_, err := e.Resolve(ctx, obscureQuery())
	require.NoError(t, err)

	stats, err := e.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, stats.BudgetRemaining)
	assert.GreaterOrEqual(t, stats.LearnedPatterns, 1)
}
