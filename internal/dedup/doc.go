// Package dedup detects near-duplicate review items by text content.
//
// Key-based idempotent upsert (internal/review) catches exact re-extractions
// of the same commitment; this package catches the rest: items whose dedup
// keys differ but whose texts say the same thing.
//
// The scan is bucketed: items are grouped by a short fingerprint of their
// normalized text and only items sharing a bucket are compared pairwise.
// That bounds cost on large queues but means paraphrases with different
// fingerprints are never compared. The bucketing function is a tunable on
// Config for callers that want to trade performance for recall.
//
// Within a bucket, every pair is scored as
//
//	0.6 × sequence ratio + 0.4 × token Jaccard
//
// over the normalized texts, and pairs at or above the threshold are
// reported with the lexically lower id first. The scan is read-only and
// deterministic for a fixed input ordering.
package dedup
