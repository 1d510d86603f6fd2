package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/hareba/catres/internal/model"
	"github.com/hareba/catres/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditAppendAndList(t *testing.T) {
	store := testutil.SetupTestStore(t)
	ctx := context.Background()

	first := model.CorrectionAudit{
		ID:           uuid.NewString(),
		Query:        model.ProductQuery{Title: "Some paperback novel", Price: 800},
		CategoryID:   "267",
		CategoryName: "Books & Magazines",
		Success:      true,
		CreatedAt:    time.Now().Add(-time.Hour),
	}
	second := model.CorrectionAudit{
		ID:           uuid.NewString(),
		Query:        model.ProductQuery{Title: "Old film camera", Brand: "Nikon", Price: 22000},
		CategoryID:   "625",
		CategoryName: "Cameras & Photo",
		Success:      true,
	}

	require.NoError(t, store.AppendAudit(ctx, first))
	require.NoError(t, store.AppendAudit(ctx, second))

	entries, err := store.ListAuditEntries(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	// Newest first.
	assert.Equal(t, second.ID, entries[0].ID)
	assert.Equal(t, "Old film camera", entries[0].Query.Title)
	assert.Equal(t, "Nikon", entries[0].Query.Brand)
	assert.Equal(t, first.ID, entries[1].ID)
}

func TestAuditRejectsEmptyQuery(t *testing.T) {
	store := testutil.SetupTestStore(t)

	err := store.AppendAudit(context.Background(), model.CorrectionAudit{
		ID:           uuid.NewString(),
		CategoryID:   "267",
		CategoryName: "Books & Magazines",
	})
	assert.Error(t, err)
}
