package storage

import (
	"testing"

	"github.com/meetbot/reviewq/internal/types"
)

func TestFilterMatches(t *testing.T) {
	pending := &types.ReviewItem{Key: "k1", Status: types.StatusPending}
	resolved := &types.ReviewItem{Key: "k1", Status: types.StatusResolved}
	other := &types.ReviewItem{Key: "k2", Status: types.StatusNeedsReview}

	tests := []struct {
		name   string
		filter Filter
		item   *types.ReviewItem
		want   bool
	}{
		{"zero filter matches everything", Filter{}, resolved, true},
		{"key match", Filter{Key: "k1"}, pending, true},
		{"key mismatch", Filter{Key: "k1"}, other, false},
		{"open only accepts pending", Filter{OpenOnly: true}, pending, true},
		{"open only accepts needs-review", Filter{OpenOnly: true}, other, true},
		{"open only rejects resolved", Filter{OpenOnly: true}, resolved, false},
		{"status list", Filter{Statuses: []types.Status{types.StatusResolved, types.StatusDropped}}, resolved, true},
		{"status list mismatch", Filter{Statuses: []types.Status{types.StatusDropped}}, resolved, false},
		{"key and open combine", Filter{Key: "k1", OpenOnly: true}, resolved, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.filter.Matches(tt.item); got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}
