package review

import (
	"fmt"
	"strings"

	"github.com/meetbot/reviewq/internal/types"
)

// ValidateAction decides whether an operator action is legal for the item's
// current state. It is a pure function: no store access, no side effects.
// Callers resolve NotFound before calling (a nil item is reported, not
// panicked on, as a safety net).
//
// Every action requires an open item. Confirm additionally requires non-empty
// text and a valid direction, each with its own reason so the presentation
// layer can show a precise message.
func ValidateAction(item *types.ReviewItem, action types.Action) (bool, string) {
	if item == nil {
		return false, "review item not found"
	}
	if !action.IsValid() {
		return false, fmt.Sprintf("unknown action: %q", action)
	}

	if item.Status.IsClosed() {
		return false, fmt.Sprintf("action %q is not available on a closed record (status: %s)",
			action, item.Status)
	}

	if action == types.ActionConfirm {
		if strings.TrimSpace(item.Text) == "" {
			return false, "cannot confirm a record with empty text"
		}
		if !item.Direction.IsValid() {
			return false, fmt.Sprintf("invalid direction: %q", item.Direction)
		}
	}

	return true, ""
}
