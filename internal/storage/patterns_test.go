package storage_test

import (
	"context"
	"testing"

	"github.com/hareba/catres/internal/common"
	"github.com/hareba/catres/internal/model"
	"github.com/hareba/catres/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func phoneQuery() model.ProductQuery {
	return model.ProductQuery{
		Title:          "iPhone 15 Pro Max 256GB",
		Brand:          "Apple",
		SourceCategory: "Mobile Phones",
		Price:          180000,
	}
}

func TestRecordLearningAndGetPattern(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	query := phoneQuery()

	err := store.RecordLearning(ctx, query, "9355", "Cell Phones & Smartphones", 85, model.LearnedFromExternal)
	require.NoError(t, err)

	pattern, err := store.GetPattern(ctx, query.TitleHash())
	require.NoError(t, err)

	assert.Equal(t, "iphone 15 pro max 256gb", pattern.TitlePattern)
	assert.Equal(t, "9355", pattern.CategoryID)
	assert.Equal(t, "Cell Phones & Smartphones", pattern.CategoryName)
	assert.Equal(t, 85, pattern.ConfidenceScore)
	assert.Equal(t, model.LearnedFromExternal, pattern.LearningSource)
	assert.Equal(t, "apple", pattern.Brand)
	assert.Contains(t, pattern.Keywords, "iphone")
	assert.InDelta(t, 90000, pattern.PriceRangeMin, 0.001)
	assert.InDelta(t, 270000, pattern.PriceRangeMax, 0.001)
	assert.InDelta(t, 100.0, pattern.SuccessRate, 0.001)
	assert.Equal(t, 0, pattern.UsageCount)
}

func TestRecordLearning_ConflictIncrementsUsage(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	query := phoneQuery()

	require.NoError(t, store.RecordLearning(ctx, query, "9355", "Cell Phones & Smartphones", 85, model.LearnedFromExternal))
	require.NoError(t, store.RecordLearning(ctx, query, "1234", "Something Else", 40, model.LearnedFromFeedback))

	pattern, err := store.GetPattern(ctx, query.TitleHash())
	require.NoError(t, err)

	// Statistics preserved, usage bumped, category untouched.
	assert.Equal(t, "9355", pattern.CategoryID)
	assert.Equal(t, 85, pattern.ConfidenceScore)
	assert.Equal(t, 1, pattern.UsageCount)
}

func TestRecordLearning_ManualCorrectionOverwrites(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	query := phoneQuery()

	require.NoError(t, store.RecordLearning(ctx, query, "9355", "Cell Phones & Smartphones", 60, model.LearnedFromFeedback))
	require.NoError(t, store.RecordLearning(ctx, query, "267", "Books & Magazines", 95, model.LearnedFromManual))

	pattern, err := store.GetPattern(ctx, query.TitleHash())
	require.NoError(t, err)

	assert.Equal(t, "267", pattern.CategoryID)
	assert.Equal(t, "Books & Magazines", pattern.CategoryName)
	assert.Equal(t, 95, pattern.ConfidenceScore)
	assert.Equal(t, model.LearnedFromManual, pattern.LearningSource)
	assert.Equal(t, 1, pattern.UsageCount)
}

func TestGetPattern_NotFound(t *testing.T) {
	store := testutil.SetupTestStore(t)

	_, err := store.GetPattern(context.Background(), "deadbeef")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestFindBestMatch(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordLearning(ctx, phoneQuery(), "9355", "Cell Phones & Smartphones", 85, model.LearnedFromExternal))
	require.NoError(t, store.RecordLearning(ctx, model.ProductQuery{
		Title: "Vintage oak dining table", Price: 30000,
	}, "38204", "Furniture", 70, model.LearnedFromExternal))

	m, err := store.FindBestMatch(ctx, phoneQuery())
	require.NoError(t, err)
	require.NotNil(t, m)

	assert.Equal(t, "9355", m.Pattern.CategoryID)
	assert.GreaterOrEqual(t, m.Confidence, 85)
	assert.Equal(t, 1, m.Pattern.UsageCount, "usage incremented on match")

	// And again: the counter is monotonically non-decreasing.
	m, err = store.FindBestMatch(ctx, phoneQuery())
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, 2, m.Pattern.UsageCount)
}

func TestFindBestMatch_NothingClearsMinimum(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordLearning(ctx, phoneQuery(), "9355", "Cell Phones & Smartphones", 85, model.LearnedFromExternal))

	m, err := store.FindBestMatch(ctx, model.ProductQuery{Title: "Handmade ceramic vase"})
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestFindBestMatch_PriceRangeSensitivity(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordLearning(ctx, phoneQuery(), "9355", "Cell Phones & Smartphones", 85, model.LearnedFromExternal))

	inRange := phoneQuery()
	outOfRange := phoneQuery()
	outOfRange.Price = 900000

	mIn, err := store.FindBestMatch(ctx, inRange)
	require.NoError(t, err)
	require.NotNil(t, mIn)

	mOut, err := store.FindBestMatch(ctx, outOfRange)
	require.NoError(t, err)
	require.NotNil(t, mOut)

	// The in-range query earns the 15-point price term. The second
	// lookup also sees one extra usage point from the first lookup's
	// increment, so the gap is at least 13.
	assert.GreaterOrEqual(t, mIn.Score-mOut.Score, 13.0)
}

func TestListPatterns(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.RecordLearning(ctx, phoneQuery(), "9355", "Cell Phones & Smartphones", 85, model.LearnedFromExternal))
	require.NoError(t, store.RecordLearning(ctx, model.ProductQuery{
		Title: "Vintage oak dining table", Price: 30000,
	}, "38204", "Furniture", 70, model.LearnedFromExternal))

	patterns, err := store.ListPatterns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, patterns, 2)

	ids := []string{patterns[0].CategoryID, patterns[1].CategoryID}
	assert.ElementsMatch(t, []string{"9355", "38204"}, ids)

	limited, err := store.ListPatterns(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestRecordOutcome(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()
	query := phoneQuery()

	require.NoError(t, store.RecordLearning(ctx, query, "9355", "Cell Phones & Smartphones", 85, model.LearnedFromExternal))
	require.NoError(t, store.RecordOutcome(ctx, query.TitleHash(), false))

	pattern, err := store.GetPattern(ctx, query.TitleHash())
	require.NoError(t, err)
	assert.InDelta(t, 90.0, pattern.SuccessRate, 0.001)

	require.NoError(t, store.RecordOutcome(ctx, query.TitleHash(), true))
	pattern, err = store.GetPattern(ctx, query.TitleHash())
	require.NoError(t, err)
	assert.InDelta(t, 92.0, pattern.SuccessRate, 0.001)
}
