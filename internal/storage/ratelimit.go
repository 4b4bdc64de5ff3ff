package storage

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/meetbot/reviewq/internal/types"
)

// RateLimited wraps a Store so that every call waits on a shared rate
// limiter. Hosted workspace APIs cap integrations around 3 requests per
// second; running cleanup scans without a limiter trips their 429s.
type RateLimited struct {
	inner   Store
	limiter *rate.Limiter
}

// NewRateLimited wraps store with a limiter of rps requests per second and
// a burst of one.
func NewRateLimited(store Store, rps float64) *RateLimited {
	return &RateLimited{
		inner:   store,
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

var _ Store = (*RateLimited)(nil)

func (r *RateLimited) Query(ctx context.Context, filter Filter) ([]*types.ReviewItem, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Query(ctx, filter)
}

func (r *RateLimited) Get(ctx context.Context, id string) (*types.ReviewItem, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.Get(ctx, id)
}

func (r *RateLimited) Create(ctx context.Context, item *types.ReviewItem) (string, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return r.inner.Create(ctx, item)
}

func (r *RateLimited) Update(ctx context.Context, id string, item *types.ReviewItem) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return err
	}
	return r.inner.Update(ctx, id, item)
}

func (r *RateLimited) BulkUpdateStatus(ctx context.Context, ids []string, status types.Status) (BulkResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return BulkResult{}, err
	}
	return r.inner.BulkUpdateStatus(ctx, ids, status)
}

func (r *RateLimited) FetchAll(ctx context.Context, statuses ...types.Status) ([]*types.ReviewItem, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return r.inner.FetchAll(ctx, statuses...)
}

func (r *RateLimited) Close() error {
	return r.inner.Close()
}
