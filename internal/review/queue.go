package review

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/meetbot/reviewq/internal/storage"
	"github.com/meetbot/reviewq/internal/types"
)

// Queue provides read access to the open part of the review queue.
type Queue struct {
	store storage.Store
	log   zerolog.Logger
}

// NewQueue creates a queue view over the store.
func NewQueue(store storage.Store, log zerolog.Logger) *Queue {
	return &Queue{store: store, log: log.With().Str("component", "queue").Logger()}
}

// ListOpen returns up to limit open items (pending/needs-review). The open
// check is re-applied app-side: store filters are trusted but cheap to
// re-verify, and a store that returns extra rows must not leak closed items
// to operators.
func (q *Queue) ListOpen(ctx context.Context, limit int) ([]*types.ReviewItem, error) {
	items, err := q.store.Query(ctx, storage.Filter{OpenOnly: true})
	if err != nil {
		return nil, fmt.Errorf("failed to list open reviews: %w", err)
	}

	open := items[:0]
	for _, item := range items {
		if item.Status.IsOpen() {
			open = append(open, item)
		}
	}
	if limit > 0 && len(open) > limit {
		open = open[:limit]
	}

	q.log.Debug().Int("open", len(open)).Int("fetched", len(items)).Msg("listed open reviews")
	return open, nil
}

// StatsSnapshot summarizes the open queue.
type StatsSnapshot struct {
	TotalOpen int                  `json:"total_open"`
	ByStatus  map[types.Status]int `json:"by_status"`
}

// Stats returns the open-queue breakdown by status.
func (q *Queue) Stats(ctx context.Context) (StatsSnapshot, error) {
	open, err := q.ListOpen(ctx, 0)
	if err != nil {
		return StatsSnapshot{}, err
	}

	snap := StatsSnapshot{ByStatus: make(map[types.Status]int)}
	for _, item := range open {
		snap.TotalOpen++
		snap.ByStatus[item.Status]++
	}
	return snap, nil
}
