// Package memory provides an in-memory Store used by tests, the demo REPL,
// and anything else that needs queue semantics without a backing service.
// Writes are mutex-guarded; the clock is injectable so tests control time.
package memory

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meetbot/reviewq/internal/storage"
	"github.com/meetbot/reviewq/internal/types"
)

// Store is a mutex-guarded in-memory record store.
type Store struct {
	mu    sync.Mutex
	items map[string]*types.ReviewItem
	order []string // insertion order, for stable Query/FetchAll results

	// Now returns the current time. Tests override it to make
	// LastModifiedAt deterministic.
	Now func() time.Time

	// FailUpdates, when non-empty, makes Update and BulkUpdateStatus fail
	// for the listed ids. Tests use it to exercise best-effort batch paths.
	FailUpdates map[string]bool
}

var _ storage.Store = (*Store)(nil)

var errInjected = errors.New("injected store failure")

// New creates an empty in-memory store.
func New() *Store {
	return &Store{
		items: make(map[string]*types.ReviewItem),
		Now:   time.Now,
	}
}

func (s *Store) Query(ctx context.Context, filter storage.Filter) ([]*types.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*types.ReviewItem
	for _, id := range s.order {
		item := s.items[id]
		if filter.Matches(item) {
			out = append(out, copyItem(item))
		}
	}
	return out, nil
}

func (s *Store) Get(ctx context.Context, id string) (*types.ReviewItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item, ok := s.items[id]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return copyItem(item), nil
}

func (s *Store) Create(ctx context.Context, item *types.ReviewItem) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyItem(item)
	stored.ID = uuid.NewString()
	stored.LastModifiedAt = s.Now()

	s.items[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	return stored.ID, nil
}

func (s *Store) Update(ctx context.Context, id string, item *types.ReviewItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailUpdates[id] {
		return errInjected
	}
	if _, ok := s.items[id]; !ok {
		return storage.ErrNotFound
	}

	stored := copyItem(item)
	stored.ID = id
	stored.LastModifiedAt = s.Now()
	s.items[id] = stored
	return nil
}

func (s *Store) BulkUpdateStatus(ctx context.Context, ids []string, status types.Status) (storage.BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res storage.BulkResult
	for _, id := range ids {
		item, ok := s.items[id]
		if !ok || s.FailUpdates[id] {
			res.Errors++
			continue
		}
		item.Status = status
		item.LastModifiedAt = s.Now()
		res.Updated++
	}
	return res, nil
}

func (s *Store) FetchAll(ctx context.Context, statuses ...types.Status) ([]*types.ReviewItem, error) {
	return s.Query(ctx, storage.Filter{Statuses: statuses})
}

func (s *Store) Close() error {
	return nil
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Seed inserts an item as-is, keeping its id and LastModifiedAt. Test helper.
func (s *Store) Seed(item *types.ReviewItem) string {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := copyItem(item)
	if stored.ID == "" {
		stored.ID = uuid.NewString()
	}
	s.items[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	return stored.ID
}

func copyItem(item *types.ReviewItem) *types.ReviewItem {
	dup := *item
	dup.Assignees = append([]string(nil), item.Assignees...)
	dup.Requesters = append([]string(nil), item.Requesters...)
	dup.Reasons = append([]string(nil), item.Reasons...)
	if item.DueDate != nil {
		due := *item.DueDate
		dup.DueDate = &due
	}
	return &dup
}
