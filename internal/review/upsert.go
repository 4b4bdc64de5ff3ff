package review

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/meetbot/reviewq/internal/storage"
	"github.com/meetbot/reviewq/internal/types"
)

// Outcome says whether an upsert created a new record or updated an open one.
type Outcome string

const (
	OutcomeCreated Outcome = "created"
	OutcomeUpdated Outcome = "updated"
)

// UpsertResult is the outcome of a single upsert.
type UpsertResult struct {
	Outcome  Outcome `json:"outcome"`
	RecordID string  `json:"record_id"`
}

// BatchResult accumulates per-item outcomes of an upsert batch. Batches are
// best-effort: a store failure on one item is tallied here and the remaining
// items still run.
type BatchResult struct {
	Created    int      `json:"created"`
	Updated    int      `json:"updated"`
	Errors     int      `json:"errors"`
	CreatedIDs []string `json:"created_ids,omitempty"`
	UpdatedIDs []string `json:"updated_ids,omitempty"`
}

func (r *BatchResult) add(res UpsertResult, err error) {
	if err != nil {
		r.Errors++
		return
	}
	switch res.Outcome {
	case OutcomeCreated:
		r.Created++
		r.CreatedIDs = append(r.CreatedIDs, res.RecordID)
	case OutcomeUpdated:
		r.Updated++
		r.UpdatedIDs = append(r.UpdatedIDs, res.RecordID)
	}
}

// Upserter is the dedup-upsert engine. It guarantees at most one open record
// per dedup key: an incoming item either overwrites the open record sharing
// its key or creates a new pending one.
//
// The find-by-key-then-write sequence is a check-then-act critical section,
// so it always runs under a per-key lock. With Parallelism <= 1 batches are
// processed sequentially in caller order; higher values process items
// concurrently while items with equal keys remain serialized.
type Upserter struct {
	store storage.Store
	log   zerolog.Logger

	// Parallelism bounds concurrent upserts within a batch. Default 1.
	Parallelism int

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewUpserter creates an upsert engine over the store.
func NewUpserter(store storage.Store, log zerolog.Logger) *Upserter {
	return &Upserter{
		store:       store,
		log:         log.With().Str("component", "upsert").Logger(),
		Parallelism: 1,
		locks:       make(map[string]*sync.Mutex),
	}
}

// Upsert creates or updates the record for item.Key and reports which
// happened. On a key match the open record inherits all of the item's field
// values, including the new meeting ref; its status and id are preserved.
// Closed records never match, so a recurring key whose record was resolved
// gets a fresh pending record and the old one keeps its resolution metadata.
func (u *Upserter) Upsert(ctx context.Context, item *types.ReviewItem, meetingRef string) (UpsertResult, error) {
	if item.Key == "" {
		return UpsertResult{}, fmt.Errorf("item has no dedup key")
	}

	lock := u.keyLock(item.Key)
	lock.Lock()
	defer lock.Unlock()

	open, err := u.store.Query(ctx, storage.Filter{Key: item.Key, OpenOnly: true})
	if err != nil {
		return UpsertResult{}, fmt.Errorf("failed to query open record for key: %w", err)
	}

	if len(open) > 0 {
		existing := open[0]
		updated := *item
		updated.ID = existing.ID
		updated.Status = existing.Status // stays open; upsert never closes
		updated.LinkedCommitID = existing.LinkedCommitID
		updated.MeetingRef = meetingRef

		if err := u.store.Update(ctx, existing.ID, &updated); err != nil {
			return UpsertResult{}, fmt.Errorf("failed to update record %s: %w", existing.Short(), err)
		}
		u.log.Debug().Str("key", item.Key).Str("id", existing.Short()).Msg("updated open record")
		return UpsertResult{Outcome: OutcomeUpdated, RecordID: existing.ID}, nil
	}

	created := *item
	created.Status = types.StatusPending
	created.MeetingRef = meetingRef

	id, err := u.store.Create(ctx, &created)
	if err != nil {
		return UpsertResult{}, fmt.Errorf("failed to create record for key: %w", err)
	}
	u.log.Debug().Str("key", item.Key).Str("id", id).Msg("created pending record")
	return UpsertResult{Outcome: OutcomeCreated, RecordID: id}, nil
}

// UpsertBatch applies Upsert to each item in caller-supplied order,
// accumulating created/updated counts and ids. It never aborts: store
// failures are logged and counted, and the batch always completes.
func (u *Upserter) UpsertBatch(ctx context.Context, items []*types.ReviewItem, meetingRef string) BatchResult {
	var result BatchResult
	if len(items) == 0 {
		return result
	}

	if u.Parallelism <= 1 {
		for _, item := range items {
			res, err := u.Upsert(ctx, item, meetingRef)
			if err != nil {
				u.log.Error().Err(err).Str("key", item.Key).Msg("upsert failed, continuing batch")
			}
			result.add(res, err)
		}
	} else {
		var (
			mu sync.Mutex
			g  errgroup.Group
		)
		g.SetLimit(u.Parallelism)
		for _, item := range items {
			g.Go(func() error {
				res, err := u.Upsert(ctx, item, meetingRef)
				if err != nil {
					u.log.Error().Err(err).Str("key", item.Key).Msg("upsert failed, continuing batch")
				}
				mu.Lock()
				result.add(res, err)
				mu.Unlock()
				return nil // errors are accounted, never propagated
			})
		}
		_ = g.Wait()
	}

	u.log.Info().
		Int("created", result.Created).
		Int("updated", result.Updated).
		Int("errors", result.Errors).
		Str("meeting", meetingRef).
		Msg("upsert batch complete")
	return result
}

func (u *Upserter) keyLock(key string) *sync.Mutex {
	u.mu.Lock()
	defer u.mu.Unlock()
	lock, ok := u.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		u.locks[key] = lock
	}
	return lock
}
