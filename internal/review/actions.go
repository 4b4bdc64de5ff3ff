package review

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/meetbot/reviewq/internal/storage"
	"github.com/meetbot/reviewq/internal/types"
)

// ValidationError reports an action rejected by ValidateAction. The Reason is
// operator-facing and precise about what was wrong.
type ValidationError struct {
	Action types.Action
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("action %q rejected: %s", e.Action, e.Reason)
}

// Actions applies operator decisions to review items. Every mutation is gated
// by ValidateAction; a missing id surfaces as storage.ErrNotFound before any
// validation runs.
type Actions struct {
	store storage.Store
	log   zerolog.Logger
}

// NewActions creates an action applier over the store.
func NewActions(store storage.Store, log zerolog.Logger) *Actions {
	return &Actions{store: store, log: log.With().Str("component", "actions").Logger()}
}

// Confirm resolves the item and links it to the commitment record created
// from it. LinkedCommitID is set here and nowhere else.
func (a *Actions) Confirm(ctx context.Context, id, commitID string) error {
	item, err := a.gated(ctx, id, types.ActionConfirm)
	if err != nil {
		return err
	}

	item.Status = types.StatusResolved
	item.LinkedCommitID = commitID
	if err := a.store.Update(ctx, id, item); err != nil {
		return fmt.Errorf("failed to confirm %s: %w", item.Short(), err)
	}
	a.log.Info().Str("id", item.Short()).Str("commit", commitID).Msg("review confirmed")
	return nil
}

// Flip toggles the item's direction between mine and theirs.
func (a *Actions) Flip(ctx context.Context, id string) error {
	item, err := a.gated(ctx, id, types.ActionFlip)
	if err != nil {
		return err
	}

	item.Direction = item.Direction.Flip()
	if err := a.store.Update(ctx, id, item); err != nil {
		return fmt.Errorf("failed to flip %s: %w", item.Short(), err)
	}
	return nil
}

// Assign replaces the item's assignee list.
func (a *Actions) Assign(ctx context.Context, id string, assignees []string) error {
	item, err := a.gated(ctx, id, types.ActionAssign)
	if err != nil {
		return err
	}

	item.Assignees = append([]string(nil), assignees...)
	if err := a.store.Update(ctx, id, item); err != nil {
		return fmt.Errorf("failed to assign %s: %w", item.Short(), err)
	}
	return nil
}

// Drop closes the item as dropped. Dropped records are later archived by the
// cleanup orchestrator; they are never deleted here.
func (a *Actions) Drop(ctx context.Context, id string) error {
	item, err := a.gated(ctx, id, types.ActionDelete)
	if err != nil {
		return err
	}

	item.Status = types.StatusDropped
	if err := a.store.Update(ctx, id, item); err != nil {
		return fmt.Errorf("failed to drop %s: %w", item.Short(), err)
	}
	a.log.Info().Str("id", item.Short()).Msg("review dropped")
	return nil
}

func (a *Actions) gated(ctx context.Context, id string, action types.Action) (*types.ReviewItem, error) {
	item, err := a.store.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load review %s: %w", id, err)
	}
	if ok, reason := ValidateAction(item, action); !ok {
		return nil, &ValidationError{Action: action, Reason: reason}
	}
	return item, nil
}
