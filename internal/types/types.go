package types

import (
	"fmt"
	"strings"
	"time"
)

// ReviewItem represents one candidate commitment waiting for an operator
// decision in the review queue.
type ReviewItem struct {
	// ID is the store-assigned opaque identifier. Empty until created.
	ID string `json:"id" yaml:"id,omitempty"`

	// Text is the free-form commitment description. Required to confirm.
	Text string `json:"text" yaml:"text"`

	// Direction says whose commitment this is: ours or the counterparty's.
	Direction Direction `json:"direction" yaml:"direction"`

	// Assignees is the ordered list of person identifiers. May be empty.
	Assignees []string `json:"assignees,omitempty" yaml:"assignees,omitempty"`

	// Requesters lists who asked for the commitment.
	Requesters []string `json:"requesters,omitempty" yaml:"requesters,omitempty"`

	// DueDate is the optional calendar deadline.
	DueDate *time.Time `json:"due_date,omitempty" yaml:"due_date,omitempty"`

	// Confidence is the extractor's confidence score (0.0-1.0).
	Confidence float64 `json:"confidence" yaml:"confidence"`

	// Reasons explains why the item landed in the review queue.
	Reasons []string `json:"reasons,omitempty" yaml:"reasons,omitempty"`

	// Context is an optional transcript snippet around the commitment.
	Context string `json:"context,omitempty" yaml:"context,omitempty"`

	// Key is the stable fingerprint of normalized text + assignees + due date.
	// The upsert engine guarantees at most one OPEN item per key.
	Key string `json:"key" yaml:"key"`

	// Status is the item's position in the review lifecycle.
	Status Status `json:"status" yaml:"status,omitempty"`

	// MeetingRef is the id of the meeting the item was extracted from.
	// On key collisions across meetings the most recent meeting wins.
	MeetingRef string `json:"meeting_ref" yaml:"meeting_ref,omitempty"`

	// LastModifiedAt is populated by the store on every write.
	LastModifiedAt time.Time `json:"last_modified_at" yaml:"last_modified_at,omitempty"`

	// LinkedCommitID is set only when the item transitions to resolved.
	LinkedCommitID string `json:"linked_commit_id,omitempty" yaml:"linked_commit_id,omitempty"`
}

// Short returns the display suffix of the store id (first 8 characters),
// used in operator-facing output.
func (i *ReviewItem) Short() string {
	if len(i.ID) <= 8 {
		return i.ID
	}
	return i.ID[:8]
}

// Validate checks if the item has valid field values.
func (i *ReviewItem) Validate() error {
	if strings.TrimSpace(i.Key) == "" {
		return fmt.Errorf("key is required")
	}
	if !i.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", i.Status)
	}
	if !i.Direction.IsValid() {
		return fmt.Errorf("invalid direction: %s", i.Direction)
	}
	if i.Confidence < 0.0 || i.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0 (got %.2f)", i.Confidence)
	}
	if i.LinkedCommitID != "" && i.Status != StatusResolved {
		return fmt.Errorf("linked_commit_id is only valid on resolved items (status: %s)", i.Status)
	}
	return nil
}

// Status represents the current state of a review item.
type Status string

const (
	StatusPending     Status = "pending"
	StatusNeedsReview Status = "needs-review"
	StatusResolved    Status = "resolved"
	StatusDropped     Status = "dropped"
	StatusArchived    Status = "archived"
)

// AllStatuses lists every valid status, open first.
func AllStatuses() []Status {
	return []Status{StatusPending, StatusNeedsReview, StatusResolved, StatusDropped, StatusArchived}
}

// OpenStatuses lists the statuses that count as awaiting an operator decision.
func OpenStatuses() []Status {
	return []Status{StatusPending, StatusNeedsReview}
}

// IsValid checks if the status value is valid.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusNeedsReview, StatusResolved, StatusDropped, StatusArchived:
		return true
	}
	return false
}

// IsOpen reports whether an item with this status is still awaiting a decision.
func (s Status) IsOpen() bool {
	switch s {
	case StatusPending, StatusNeedsReview:
		return true
	case StatusResolved, StatusDropped, StatusArchived:
		return false
	}
	return false
}

// IsClosed reports whether the status is resolved, dropped, or archived.
func (s Status) IsClosed() bool {
	return s.IsValid() && !s.IsOpen()
}

// IsTerminal reports whether the status permits no further transitions.
// Only archived is terminal; it is reachable only from resolved/dropped.
func (s Status) IsTerminal() bool {
	return s == StatusArchived
}

// ParseStatus converts a string to a Status, rejecting unknown values.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	if !st.IsValid() {
		return "", fmt.Errorf("unknown status: %q", s)
	}
	return st, nil
}

// Direction says whether the commitment is owed by us or to us.
type Direction string

const (
	DirectionMine   Direction = "mine"
	DirectionTheirs Direction = "theirs"
)

// IsValid checks if the direction value is valid.
func (d Direction) IsValid() bool {
	switch d {
	case DirectionMine, DirectionTheirs:
		return true
	}
	return false
}

// Flip returns the opposite direction. Invalid values are returned unchanged.
func (d Direction) Flip() Direction {
	switch d {
	case DirectionMine:
		return DirectionTheirs
	case DirectionTheirs:
		return DirectionMine
	}
	return d
}

// Action is an operator action on a review item.
type Action string

const (
	ActionConfirm Action = "confirm"
	ActionFlip    Action = "flip"
	ActionAssign  Action = "assign"
	ActionDelete  Action = "delete"
)

// IsValid checks if the action value is valid.
func (a Action) IsValid() bool {
	switch a {
	case ActionConfirm, ActionFlip, ActionAssign, ActionDelete:
		return true
	}
	return false
}
