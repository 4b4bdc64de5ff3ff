package types

import (
	"testing"
	"time"
)

func TestStatusValidity(t *testing.T) {
	tests := []struct {
		status Status
		valid  bool
		open   bool
	}{
		{StatusPending, true, true},
		{StatusNeedsReview, true, true},
		{StatusResolved, true, false},
		{StatusDropped, true, false},
		{StatusArchived, true, false},
		{Status("confirmed"), false, false},
		{Status(""), false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			if got := tt.status.IsValid(); got != tt.valid {
				t.Errorf("IsValid() = %v, want %v", got, tt.valid)
			}
			if got := tt.status.IsOpen(); got != tt.open {
				t.Errorf("IsOpen() = %v, want %v", got, tt.open)
			}
		})
	}
}

func TestStatusPartition(t *testing.T) {
	// Every valid status is exactly one of open/closed.
	for _, status := range AllStatuses() {
		if status.IsOpen() == status.IsClosed() {
			t.Errorf("status %s: IsOpen=%v IsClosed=%v, want exactly one", status, status.IsOpen(), status.IsClosed())
		}
	}

	// Invalid statuses are neither.
	bogus := Status("bogus")
	if bogus.IsOpen() || bogus.IsClosed() {
		t.Errorf("invalid status must be neither open nor closed")
	}
}

func TestStatusTerminal(t *testing.T) {
	for _, status := range AllStatuses() {
		want := status == StatusArchived
		if got := status.IsTerminal(); got != want {
			t.Errorf("IsTerminal(%s) = %v, want %v", status, got, want)
		}
	}
}

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    Status
		wantErr bool
	}{
		{"pending", StatusPending, false},
		{"  Needs-Review ", StatusNeedsReview, false},
		{"ARCHIVED", StatusArchived, false},
		{"open", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		got, err := ParseStatus(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseStatus(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseStatus(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestDirectionFlip(t *testing.T) {
	if DirectionMine.Flip() != DirectionTheirs {
		t.Errorf("mine should flip to theirs")
	}
	if DirectionTheirs.Flip() != DirectionMine {
		t.Errorf("theirs should flip to mine")
	}
	if d := Direction("sideways"); d.Flip() != d {
		t.Errorf("invalid direction should flip to itself")
	}
}

func TestReviewItemValidate(t *testing.T) {
	valid := func() *ReviewItem {
		return &ReviewItem{
			Text:      "send the follow-up",
			Direction: DirectionMine,
			Key:       "k1",
			Status:    StatusPending,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ReviewItem)
		wantErr bool
	}{
		{"valid item", func(i *ReviewItem) {}, false},
		{"missing key", func(i *ReviewItem) { i.Key = "  " }, true},
		{"bad status", func(i *ReviewItem) { i.Status = "unknown" }, true},
		{"bad direction", func(i *ReviewItem) { i.Direction = "both" }, true},
		{"confidence too high", func(i *ReviewItem) { i.Confidence = 1.2 }, true},
		{"confidence negative", func(i *ReviewItem) { i.Confidence = -0.1 }, true},
		{"linked commit on pending", func(i *ReviewItem) { i.LinkedCommitID = "c1" }, true},
		{"linked commit on resolved", func(i *ReviewItem) {
			i.Status = StatusResolved
			i.LinkedCommitID = "c1"
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			item := valid()
			tt.mutate(item)
			err := item.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestShort(t *testing.T) {
	item := &ReviewItem{ID: "0123456789abcdef"}
	if got := item.Short(); got != "01234567" {
		t.Errorf("Short() = %q, want %q", got, "01234567")
	}

	item.ID = "abc"
	if got := item.Short(); got != "abc" {
		t.Errorf("Short() on short id = %q, want %q", got, "abc")
	}
}

func TestStatusTimestamps(t *testing.T) {
	// DueDate is a date pointer; the zero item must not alias a shared value.
	due := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	a := ReviewItem{DueDate: &due}
	b := a
	*b.DueDate = due.AddDate(0, 0, 1)
	if !a.DueDate.Equal(*b.DueDate) {
		t.Fatal("shallow copies share the due date pointer; stores must deep-copy")
	}
}
