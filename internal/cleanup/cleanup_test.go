package cleanup

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meetbot/reviewq/internal/storage/memory"
	"github.com/meetbot/reviewq/internal/types"
)

var frozen = time.Date(2024, 6, 12, 10, 0, 0, 0, time.UTC)

func pinnedClock() func() time.Time {
	return func() time.Time { return frozen }
}

func seedAged(store *memory.Store, id string, status types.Status, ageDays int) {
	modified := frozen.AddDate(0, 0, -ageDays)
	store.Seed(&types.ReviewItem{
		ID:             id,
		Text:           "task " + id,
		Direction:      types.DirectionMine,
		Key:            "key-" + id,
		Status:         status,
		LastModifiedAt: modified,
	})
}

func TestArchiveOlderThan(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Now = pinnedClock()
	seedAged(store, "old-resolved", types.StatusResolved, 20)
	seedAged(store, "old-dropped", types.StatusDropped, 30)
	seedAged(store, "fresh-resolved", types.StatusResolved, 5)
	seedAged(store, "old-pending", types.StatusPending, 40)

	cleaner := New(store, zerolog.Nop(), WithClock(pinnedClock()))
	stats := cleaner.ArchiveOlderThan(ctx, 14, false)

	assert.Equal(t, 3, stats.Scanned, "only closed records are scanned")
	assert.Equal(t, 2, stats.Archived)
	assert.Equal(t, 0, stats.Errors)
	assert.Equal(t, 1, stats.ByPriorStatus[types.StatusResolved])
	assert.Equal(t, 1, stats.ByPriorStatus[types.StatusDropped])
	assert.False(t, stats.DryRun)

	for id, want := range map[string]types.Status{
		"old-resolved":   types.StatusArchived,
		"old-dropped":    types.StatusArchived,
		"fresh-resolved": types.StatusResolved,
		"old-pending":    types.StatusPending,
	} {
		item, err := store.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, item.Status, "record %s", id)
	}
}

func TestArchiveOlderThanSkipsUnstamped(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Seed(&types.ReviewItem{
		ID:        "no-stamp",
		Text:      "task",
		Direction: types.DirectionMine,
		Key:       "k1",
		Status:    types.StatusResolved,
	})

	cleaner := New(store, zerolog.Nop(), WithClock(pinnedClock()))
	stats := cleaner.ArchiveOlderThan(ctx, 14, false)

	assert.Equal(t, 1, stats.Scanned)
	assert.Equal(t, 0, stats.Archived, "unstamped records are not infinitely old")
}

func TestArchiveDryRunParity(t *testing.T) {
	ctx := context.Background()

	build := func() *memory.Store {
		store := memory.New()
		store.Now = pinnedClock()
		seedAged(store, "a", types.StatusResolved, 20)
		seedAged(store, "b", types.StatusDropped, 20)
		seedAged(store, "c", types.StatusResolved, 5)
		return store
	}

	// Dry run: identical counts, zero mutations.
	dryStore := build()
	dry := New(dryStore, zerolog.Nop(), WithClock(pinnedClock())).ArchiveOlderThan(ctx, 14, true)
	assert.True(t, dry.DryRun)
	for _, id := range []string{"a", "b", "c"} {
		item, err := dryStore.Get(ctx, id)
		require.NoError(t, err)
		assert.NotEqual(t, types.StatusArchived, item.Status, "dry run archived %s", id)
	}

	real := New(build(), zerolog.Nop(), WithClock(pinnedClock())).ArchiveOlderThan(ctx, 14, false)
	assert.Equal(t, dry.Scanned, real.Scanned)
	assert.Equal(t, dry.Archived, real.Archived)
	assert.Equal(t, dry.ByPriorStatus, real.ByPriorStatus)
}

func TestCleanupByStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Now = pinnedClock()
	seedAged(store, "d1", types.StatusDropped, 1)
	seedAged(store, "d2", types.StatusDropped, 100)
	seedAged(store, "r1", types.StatusResolved, 1)

	cleaner := New(store, zerolog.Nop(), WithClock(pinnedClock()))
	stats := cleaner.CleanupByStatus(ctx, types.StatusDropped, false)

	// Age is irrelevant here: every dropped record goes.
	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 2, stats.Archived)

	item, err := store.Get(ctx, "r1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusResolved, item.Status)
}

func TestCleanupByStatusIllegalTargets(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	seedAged(store, "p1", types.StatusPending, 50)

	cleaner := New(store, zerolog.Nop(), WithClock(pinnedClock()))

	for _, target := range []types.Status{
		types.StatusPending,
		types.StatusNeedsReview,
		types.StatusArchived,
		types.Status("bogus"),
	} {
		t.Run(string(target), func(t *testing.T) {
			stats := cleaner.CleanupByStatus(ctx, target, false)
			assert.Equal(t, 1, stats.Errors)
			assert.Zero(t, stats.Archived)
		})
	}

	item, err := store.Get(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, types.StatusPending, item.Status)
}

func TestFindDuplicates(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Seed(&types.ReviewItem{
		ID: "aaa", Text: "prepare the quarterly report",
		Direction: types.DirectionMine, Key: "k1", Status: types.StatusPending,
	})
	store.Seed(&types.ReviewItem{
		ID: "bbb", Text: "prepare the quarterly report",
		Direction: types.DirectionMine, Key: "k2", Status: types.StatusNeedsReview,
	})
	store.Seed(&types.ReviewItem{
		ID: "ccc", Text: "prepare the quarterly report",
		Direction: types.DirectionMine, Key: "k3", Status: types.StatusResolved,
	})

	cleaner := New(store, zerolog.Nop(), WithClock(pinnedClock()))
	stats := cleaner.FindDuplicates(ctx, 0)

	// Only the open queue is scanned, so the resolved copy is invisible.
	assert.Equal(t, 2, stats.Scanned)
	assert.Equal(t, 1, stats.DuplicatesFound)
	require.Len(t, stats.Pairs, 1)
	assert.Equal(t, "aaa", stats.Pairs[0].IDA)
	assert.Equal(t, "bbb", stats.Pairs[0].IDB)
	assert.True(t, stats.DryRun, "duplicate scans never mutate")
	assert.Equal(t, 3, store.Len())
}

func TestComprehensiveCleanup(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Now = pinnedClock()
	seedAged(store, "old-1", types.StatusResolved, 20)
	seedAged(store, "old-2", types.StatusResolved, 20)
	store.Seed(&types.ReviewItem{
		ID: "dup-1", Text: "send the agenda",
		Direction: types.DirectionMine, Key: "k1", Status: types.StatusPending,
	})
	store.Seed(&types.ReviewItem{
		ID: "dup-2", Text: "send the agenda",
		Direction: types.DirectionMine, Key: "k2", Status: types.StatusPending,
	})

	cleaner := New(store, zerolog.Nop(), WithClock(pinnedClock()))
	summary := cleaner.ComprehensiveCleanup(ctx, 14, 0, false)

	assert.Equal(t, 2, summary.Archive.Archived)
	assert.Equal(t, 1, summary.Duplicates.DuplicatesFound)
}

func TestComprehensiveCleanupIsolatesFailures(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	store.Now = pinnedClock()
	seedAged(store, "old-1", types.StatusResolved, 20)
	seedAged(store, "old-2", types.StatusResolved, 20)
	store.Seed(&types.ReviewItem{
		ID: "dup-1", Text: "send the agenda",
		Direction: types.DirectionMine, Key: "k1", Status: types.StatusPending,
	})
	store.Seed(&types.ReviewItem{
		ID: "dup-2", Text: "send the agenda",
		Direction: types.DirectionMine, Key: "k2", Status: types.StatusPending,
	})
	store.FailUpdates = map[string]bool{"old-1": true}

	cleaner := New(store, zerolog.Nop(), WithClock(pinnedClock()))
	summary := cleaner.ComprehensiveCleanup(ctx, 14, 0, false)

	// The archive phase absorbs the per-record failure and the duplicate
	// scan still runs to completion.
	assert.Equal(t, 1, summary.Archive.Archived)
	assert.GreaterOrEqual(t, summary.Archive.Errors, 1)
	assert.Equal(t, 1, summary.Duplicates.DuplicatesFound)
}

func TestCleanerDuration(t *testing.T) {
	// A stepping clock proves Duration comes from the injected clock.
	current := frozen
	step := func() time.Time {
		now := current
		current = current.Add(time.Second)
		return now
	}

	cleaner := New(memory.New(), zerolog.Nop(), WithClock(step))
	stats := cleaner.ArchiveOlderThan(context.Background(), 14, true)
	assert.Equal(t, time.Second, stats.Duration)
}
