package review

import (
	"context"
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetbot/reviewq/internal/storage"
	"github.com/meetbot/reviewq/internal/storage/memory"
	"github.com/meetbot/reviewq/internal/types"
)

func candidate(key, text string) *types.ReviewItem {
	return &types.ReviewItem{
		Text:      text,
		Direction: types.DirectionTheirs,
		Key:       key,
		Status:    types.StatusPending,
	}
}

func TestUpsertCreateThenUpdate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	upserter := NewUpserter(store, zerolog.Nop())

	// First sighting creates a pending record.
	res, err := upserter.Upsert(ctx, candidate("k1", "prepare the report"), "mtg-1")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	require.NotEmpty(t, res.RecordID)

	stored, err := store.Get(ctx, res.RecordID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, stored.Status)
	assert.Equal(t, "mtg-1", stored.MeetingRef)

	// The same key from a later meeting overwrites the open record in place.
	updated := candidate("k1", "prepare the report by friday")
	updated.Assignees = []string{"maria"}
	res, err = upserter.Upsert(ctx, updated, "mtg-2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, res.Outcome)
	assert.Equal(t, stored.ID, res.RecordID)

	stored, err = store.Get(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, "prepare the report by friday", stored.Text)
	assert.Equal(t, []string{"maria"}, stored.Assignees)
	assert.Equal(t, "mtg-2", stored.MeetingRef)
	assert.Equal(t, types.StatusPending, stored.Status)

	// Still exactly one record for the key.
	assert.Equal(t, 1, store.Len())
}

func TestUpsertClosedRecordDoesNotMatch(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	upserter := NewUpserter(store, zerolog.Nop())

	resolved := candidate("k1", "prepare the report")
	resolved.ID = "old-1"
	resolved.Status = types.StatusResolved
	resolved.LinkedCommitID = "commit-9"
	store.Seed(resolved)

	res, err := upserter.Upsert(ctx, candidate("k1", "prepare the report again"), "mtg-3")
	require.NoError(t, err)
	assert.Equal(t, OutcomeCreated, res.Outcome)
	assert.NotEqual(t, "old-1", res.RecordID)

	// The resolved record keeps its resolution metadata untouched.
	old, err := store.Get(ctx, "old-1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusResolved, old.Status)
	assert.Equal(t, "commit-9", old.LinkedCommitID)
	assert.Equal(t, 2, store.Len())
}

func TestUpsertUpdatePreservesStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	upserter := NewUpserter(store, zerolog.Nop())

	escalated := candidate("k1", "prepare the report")
	escalated.ID = "rec-1"
	escalated.Status = types.StatusNeedsReview
	store.Seed(escalated)

	res, err := upserter.Upsert(ctx, candidate("k1", "prepare the full report"), "mtg-2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeUpdated, res.Outcome)

	stored, err := store.Get(ctx, "rec-1")
	require.NoError(t, err)
	// An update must not demote needs-review back to pending.
	assert.Equal(t, types.StatusNeedsReview, stored.Status)
	assert.Equal(t, "prepare the full report", stored.Text)
}

func TestUpsertRequiresKey(t *testing.T) {
	store := memory.New()
	upserter := NewUpserter(store, zerolog.Nop())

	_, err := upserter.Upsert(context.Background(), candidate("", "prepare the report"), "mtg-1")
	require.Error(t, err)
	assert.Equal(t, 0, store.Len())
}

func TestUpsertBatchIdempotent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	upserter := NewUpserter(store, zerolog.Nop())

	items := []*types.ReviewItem{
		candidate("k1", "prepare the report"),
		candidate("k2", "send the agenda"),
	}

	first := upserter.UpsertBatch(ctx, items, "mtg-1")
	assert.Equal(t, 2, first.Created)
	assert.Equal(t, 0, first.Updated)
	assert.Equal(t, 0, first.Errors)
	assert.Len(t, first.CreatedIDs, 2)

	second := upserter.UpsertBatch(ctx, items, "mtg-1")
	assert.Equal(t, 0, second.Created)
	assert.Equal(t, 2, second.Updated)
	assert.Equal(t, 0, second.Errors)
	assert.Equal(t, 2, store.Len())
}

func TestUpsertBatchContinuesPastFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	upserter := NewUpserter(store, zerolog.Nop())

	poisoned := candidate("k1", "prepare the report")
	poisoned.ID = "rec-1"
	store.Seed(poisoned)
	store.FailUpdates = map[string]bool{"rec-1": true}

	result := upserter.UpsertBatch(ctx, []*types.ReviewItem{
		candidate("k1", "prepare the report again"), // update fails
		candidate("k2", "send the agenda"),          // still created
		candidate("", "no key"),                     // rejected, still counted
	}, "mtg-1")

	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 0, result.Updated)
	assert.Equal(t, 2, result.Errors)
	assert.Len(t, result.CreatedIDs, 1)
}

func TestUpsertBatchParallelSameKey(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	upserter := NewUpserter(store, zerolog.Nop())
	upserter.Parallelism = 8

	var items []*types.ReviewItem
	for i := 0; i < 24; i++ {
		items = append(items, candidate("k1", fmt.Sprintf("prepare the report v%d", i)))
	}

	result := upserter.UpsertBatch(ctx, items, "mtg-1")

	// The per-key lock serializes the check-then-act sequence, so a burst of
	// identical keys yields exactly one record: one create, the rest updates.
	assert.Equal(t, 1, result.Created)
	assert.Equal(t, 23, result.Updated)
	assert.Equal(t, 0, result.Errors)
	assert.Equal(t, 1, store.Len())

	open, err := store.Query(ctx, storage.Filter{Key: "k1", OpenOnly: true})
	require.NoError(t, err)
	require.Len(t, open, 1)
}

func TestUpsertBatchEmpty(t *testing.T) {
	upserter := NewUpserter(memory.New(), zerolog.Nop())
	result := upserter.UpsertBatch(context.Background(), nil, "mtg-1")
	assert.Zero(t, result.Created)
	assert.Zero(t, result.Updated)
	assert.Zero(t, result.Errors)
}
