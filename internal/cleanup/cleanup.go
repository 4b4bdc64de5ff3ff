// Package cleanup ages out closed review records, purges by status, and
// surfaces duplicate scans. Everything is dry-run-first and
// error-accumulating: orchestrator calls never fail, every run returns a
// Stats object, and store failures are tallied, not raised.
package cleanup

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/meetbot/reviewq/internal/dedup"
	"github.com/meetbot/reviewq/internal/storage"
	"github.com/meetbot/reviewq/internal/types"
)

// DefaultArchiveDays is the default age threshold for archiving closed records.
const DefaultArchiveDays = 14

// Stats accumulates the outcome of one cleanup operation.
type Stats struct {
	// Scanned is how many records the operation considered.
	Scanned int `json:"scanned"`

	// Archived is how many records were archived (or would have been, in a
	// dry run). Dry-run and real runs over identical input report the same
	// count unless the store fails mid-bulk.
	Archived int `json:"archived"`

	// Errors counts per-record store failures. The run completes regardless.
	Errors int `json:"errors"`

	// ByPriorStatus breaks the archived set down by the status each record
	// held before archiving.
	ByPriorStatus map[types.Status]int `json:"by_prior_status,omitempty"`

	// DuplicatesFound / Comparisons / Pairs carry duplicate-scan results.
	DuplicatesFound int          `json:"duplicates_found,omitempty"`
	Comparisons     int          `json:"comparisons,omitempty"`
	Pairs           []dedup.Pair `json:"pairs,omitempty"`

	// DryRun records whether the run mutated anything.
	DryRun bool `json:"dry_run"`

	// Duration is the wall-clock time of the run.
	Duration time.Duration `json:"duration"`
}

// Summary is the result of a comprehensive cleanup: the archive phase and the
// duplicate scan, each with its own stats. A failure in one phase never
// blocks the other.
type Summary struct {
	Archive    Stats `json:"archive"`
	Duplicates Stats `json:"duplicates"`
}

// Cleaner orchestrates bulk maintenance over the review store.
type Cleaner struct {
	store    storage.Store
	log      zerolog.Logger
	now      func() time.Time
	dedupCfg dedup.Config
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithClock overrides the cleaner's clock. Tests use it to pin "now".
func WithClock(now func() time.Time) Option {
	return func(c *Cleaner) { c.now = now }
}

// WithDedupConfig overrides the duplicate-scan configuration.
func WithDedupConfig(cfg dedup.Config) Option {
	return func(c *Cleaner) { c.dedupCfg = cfg }
}

// New creates a cleanup orchestrator over the store.
func New(store storage.Store, log zerolog.Logger, opts ...Option) *Cleaner {
	c := &Cleaner{
		store:    store,
		log:      log.With().Str("component", "cleanup").Logger(),
		now:      time.Now,
		dedupCfg: dedup.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ArchiveOlderThan archives closed records (resolved/dropped) whose
// LastModifiedAt is older than now−days. In dry-run mode it only counts.
func (c *Cleaner) ArchiveOlderThan(ctx context.Context, days int, dryRun bool) Stats {
	start := c.now()
	stats := Stats{DryRun: dryRun, ByPriorStatus: make(map[types.Status]int)}

	c.log.Info().Int("days", days).Bool("dry_run", dryRun).Msg("starting auto-archive")

	records, err := c.store.FetchAll(ctx, types.StatusResolved, types.StatusDropped)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to fetch closed records")
		stats.Errors++
		stats.Duration = c.now().Sub(start)
		return stats
	}
	stats.Scanned = len(records)

	cutoff := start.AddDate(0, 0, -days)
	var toArchive []string
	for _, record := range records {
		// Records the store never stamped are skipped rather than treated
		// as infinitely old.
		if record.LastModifiedAt.IsZero() {
			continue
		}
		if record.LastModifiedAt.Before(cutoff) {
			toArchive = append(toArchive, record.ID)
			stats.ByPriorStatus[record.Status]++
		}
	}

	c.archive(ctx, toArchive, &stats)
	stats.Duration = c.now().Sub(start)

	c.log.Info().
		Int("scanned", stats.Scanned).
		Int("archived", stats.Archived).
		Int("errors", stats.Errors).
		Msg("auto-archive complete")
	return stats
}

// CleanupByStatus archives every record currently in the target status
// regardless of age, an explicit operator-directed purge. Only closed,
// non-terminal statuses (resolved/dropped) are legal targets: archiving an
// open record directly would bypass the review lifecycle.
func (c *Cleaner) CleanupByStatus(ctx context.Context, target types.Status, dryRun bool) Stats {
	start := c.now()
	stats := Stats{DryRun: dryRun, ByPriorStatus: make(map[types.Status]int)}

	if target != types.StatusResolved && target != types.StatusDropped {
		c.log.Error().Str("status", string(target)).Msg("illegal purge target")
		stats.Errors++
		stats.Duration = c.now().Sub(start)
		return stats
	}

	c.log.Info().Str("status", string(target)).Bool("dry_run", dryRun).Msg("starting status cleanup")

	records, err := c.store.FetchAll(ctx, target)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to fetch records by status")
		stats.Errors++
		stats.Duration = c.now().Sub(start)
		return stats
	}
	stats.Scanned = len(records)

	toArchive := make([]string, 0, len(records))
	for _, record := range records {
		toArchive = append(toArchive, record.ID)
		stats.ByPriorStatus[record.Status]++
	}

	c.archive(ctx, toArchive, &stats)
	stats.Duration = c.now().Sub(start)

	c.log.Info().
		Int("scanned", stats.Scanned).
		Int("archived", stats.Archived).
		Int("errors", stats.Errors).
		Msg("status cleanup complete")
	return stats
}

// FindDuplicates runs a read-only duplicate scan over the open queue.
// Results are surfaced for operator review; nothing is auto-deleted.
// A threshold of 0 uses the configured default.
func (c *Cleaner) FindDuplicates(ctx context.Context, threshold float64) Stats {
	start := c.now()
	stats := Stats{DryRun: true}

	cfg := c.dedupCfg
	if threshold > 0 {
		cfg.Threshold = threshold
	}

	c.log.Info().Float64("threshold", cfg.Threshold).Msg("starting duplicate scan")

	open, err := c.store.FetchAll(ctx, types.OpenStatuses()...)
	if err != nil {
		c.log.Error().Err(err).Msg("failed to fetch open records")
		stats.Errors++
		stats.Duration = c.now().Sub(start)
		return stats
	}

	report := dedup.FindDuplicates(open, cfg)
	stats.Scanned = report.Scanned
	stats.Comparisons = report.Comparisons
	stats.DuplicatesFound = len(report.Pairs)
	stats.Pairs = report.Pairs
	stats.Duration = c.now().Sub(start)

	c.log.Info().
		Int("scanned", stats.Scanned).
		Int("comparisons", stats.Comparisons).
		Int("duplicates", stats.DuplicatesFound).
		Msg("duplicate scan complete")
	return stats
}

// ComprehensiveCleanup runs the archive phase then the duplicate scan.
// Failures in either phase are already absorbed into that phase's stats, so
// one phase going wrong never blocks the other.
func (c *Cleaner) ComprehensiveCleanup(ctx context.Context, days int, threshold float64, dryRun bool) Summary {
	c.log.Info().Bool("dry_run", dryRun).Msg("starting comprehensive cleanup")

	summary := Summary{
		Archive:    c.ArchiveOlderThan(ctx, days, dryRun),
		Duplicates: c.FindDuplicates(ctx, threshold),
	}

	c.log.Info().
		Int("archived", summary.Archive.Archived).
		Int("duplicates", summary.Duplicates.DuplicatesFound).
		Int("errors", summary.Archive.Errors+summary.Duplicates.Errors).
		Msg("comprehensive cleanup complete")
	return summary
}

// archive performs (or, dry-run, simulates) the bulk transition to archived.
func (c *Cleaner) archive(ctx context.Context, ids []string, stats *Stats) {
	if len(ids) == 0 {
		return
	}
	if stats.DryRun {
		stats.Archived = len(ids)
		return
	}

	result, err := c.store.BulkUpdateStatus(ctx, ids, types.StatusArchived)
	if err != nil {
		c.log.Error().Err(err).Msg("bulk archive failed")
		stats.Errors++
		return
	}
	stats.Archived = result.Updated
	stats.Errors += result.Errors
}
