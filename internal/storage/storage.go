package storage

import (
	"context"
	"errors"

	"github.com/meetbot/reviewq/internal/types"
)

// ErrNotFound is returned when a referenced record id does not exist.
var ErrNotFound = errors.New("record not found")

// Filter narrows a Query. Zero value means fetch everything.
type Filter struct {
	// Key selects records with an exactly matching dedup key.
	Key string

	// Statuses selects records in any of the given statuses.
	Statuses []types.Status

	// OpenOnly restricts results to pending/needs-review records.
	// Combines with Key for the upsert engine's open-record lookup.
	OpenOnly bool
}

// Matches reports whether an item passes the filter.
func (f Filter) Matches(item *types.ReviewItem) bool {
	if f.Key != "" && item.Key != f.Key {
		return false
	}
	if f.OpenOnly && !item.Status.IsOpen() {
		return false
	}
	if len(f.Statuses) > 0 {
		ok := false
		for _, s := range f.Statuses {
			if item.Status == s {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	return true
}

// BulkResult reports the outcome of a bulk status update. The store applies
// the update per record, so Updated+Errors may be less than the requested set
// only if ids were missing.
type BulkResult struct {
	Updated int `json:"updated"`
	Errors  int `json:"errors"`
}

// Store is the record store the review queue engine runs against.
//
// The hosted workspace backing the production deployment is reached through an
// implementation of this interface; the sqlite and memory backends implement
// the same contract for self-hosted use and tests. Implementations must
// populate LastModifiedAt on every write and return defensive copies.
type Store interface {
	// Query returns records matching the filter, in stable store order.
	Query(ctx context.Context, filter Filter) ([]*types.ReviewItem, error)

	// Get returns a single record by id, or ErrNotFound.
	Get(ctx context.Context, id string) (*types.ReviewItem, error)

	// Create inserts a new record and returns the assigned id.
	Create(ctx context.Context, item *types.ReviewItem) (string, error)

	// Update overwrites the record's fields in place, preserving the id.
	Update(ctx context.Context, id string, item *types.ReviewItem) error

	// BulkUpdateStatus sets the status on each id, counting per-record
	// successes and failures instead of aborting on the first error.
	BulkUpdateStatus(ctx context.Context, ids []string, status types.Status) (BulkResult, error)

	// FetchAll returns every record, optionally restricted to the given
	// statuses, with LastModifiedAt populated.
	FetchAll(ctx context.Context, statuses ...types.Status) ([]*types.ReviewItem, error)

	// Close releases backend resources.
	Close() error
}
