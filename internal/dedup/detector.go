package dedup

import (
	"github.com/meetbot/reviewq/internal/types"
)

// Pair is one reported duplicate: two record ids with IDA < IDB and their
// combined similarity score.
type Pair struct {
	IDA   string  `json:"id_a"`
	IDB   string  `json:"id_b"`
	Score float64 `json:"score"`
}

// Report carries the outcome of one duplicate scan.
type Report struct {
	// Scanned is the size of the working set after the MaxItems cut.
	Scanned int `json:"scanned"`

	// Comparisons is the number of pairwise similarity checks performed.
	Comparisons int `json:"comparisons"`

	// Pairs holds every pair at or above the threshold. Each unordered pair
	// appears at most once; self-pairs are never reported.
	Pairs []Pair `json:"pairs"`
}

// FindDuplicates scans open items for near-duplicate texts. It never mutates
// the items and never fails: items with empty normalized text simply land in
// no reportable pair. Output is deterministic for a fixed input ordering;
// within a pair the lexically lower id comes first.
func FindDuplicates(items []*types.ReviewItem, cfg Config) Report {
	var report Report

	if len(items) > cfg.MaxItems {
		items = items[:cfg.MaxItems]
	}
	report.Scanned = len(items)
	if len(items) < 2 {
		return report
	}

	// Bucket items by content fingerprint, preserving first-seen order so
	// the scan is deterministic.
	buckets := make(map[string][]*types.ReviewItem)
	var bucketOrder []string
	for _, item := range items {
		if NormalizeText(item.Text) == "" {
			continue
		}
		fp := cfg.Bucket(item.Text)
		if _, seen := buckets[fp]; !seen {
			bucketOrder = append(bucketOrder, fp)
		}
		buckets[fp] = append(buckets[fp], item)
	}

	for _, fp := range bucketOrder {
		group := buckets[fp]
		if len(group) < 2 {
			continue
		}
		for i := 0; i < len(group); i++ {
			for j := i + 1; j < len(group); j++ {
				report.Comparisons++
				score := Similarity(group[i].Text, group[j].Text)
				if score >= cfg.Threshold {
					report.Pairs = append(report.Pairs, orderedPair(group[i].ID, group[j].ID, score))
				}
			}
		}
	}
	return report
}

func orderedPair(a, b string, score float64) Pair {
	if b < a {
		a, b = b, a
	}
	return Pair{IDA: a, IDB: b, Score: score}
}
