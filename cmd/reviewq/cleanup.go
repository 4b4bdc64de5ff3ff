package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/meetbot/reviewq/internal/cleanup"
	"github.com/meetbot/reviewq/internal/dedup"
	"github.com/meetbot/reviewq/internal/types"
)

var (
	cleanupDays      int
	cleanupThreshold float64
	cleanupApply     bool
	cleanupStatus    string
)

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Archive old records and scan for duplicates",
	Long: `Bulk maintenance over the review queue.

All destructive operations run in dry-run mode by default and only report
what they would change. Pass --apply to perform the mutation.

Examples:
  reviewq cleanup old                    # Preview archiving closed records older than 14 days
  reviewq cleanup old --days 30 --apply  # Actually archive records older than 30 days
  reviewq cleanup dups --threshold 0.9   # Scan open items for near-duplicates (read-only)
  reviewq cleanup status --status dropped --apply
  reviewq cleanup all --apply            # Archive phase + duplicate scan`,
}

var cleanupOldCmd = &cobra.Command{
	Use:   "old",
	Short: "Archive closed records older than --days",
	Run: func(cmd *cobra.Command, args []string) {
		guardParams(cleanup.ModeArchive)
		warnDryRun()

		cleaner := newCleaner()
		stats := cleaner.ArchiveOlderThan(context.Background(), cleanupDays, !cleanupApply)
		printArchiveStats(stats)
		exitOnErrors(stats.Errors)
	},
}

var cleanupDupsCmd = &cobra.Command{
	Use:   "dups",
	Short: "Scan open records for near-duplicate texts (read-only)",
	Run: func(cmd *cobra.Command, args []string) {
		guardParams(cleanup.ModeDuplicates)
		warnCost()

		cleaner := newCleaner()
		stats := cleaner.FindDuplicates(context.Background(), cleanupThreshold)
		printDupStats(stats)
		exitOnErrors(stats.Errors)
	},
}

var cleanupStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Archive every record in one closed status, regardless of age",
	Run: func(cmd *cobra.Command, args []string) {
		target, err := types.ParseStatus(cleanupStatus)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		warnDryRun()

		cleaner := newCleaner()
		stats := cleaner.CleanupByStatus(context.Background(), target, !cleanupApply)
		printArchiveStats(stats)
		exitOnErrors(stats.Errors)
	},
}

var cleanupAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Run the archive phase and the duplicate scan",
	Run: func(cmd *cobra.Command, args []string) {
		guardParams(cleanup.ModeAll)
		warnDryRun()

		cleaner := newCleaner()
		summary := cleaner.ComprehensiveCleanup(context.Background(), cleanupDays, cleanupThreshold, !cleanupApply)

		bold := color.New(color.Bold).SprintFunc()
		fmt.Printf("%s\n", bold("Archive phase"))
		printArchiveStats(summary.Archive)
		fmt.Printf("\n%s\n", bold("Duplicate scan"))
		printDupStats(summary.Duplicates)
		exitOnErrors(summary.Archive.Errors + summary.Duplicates.Errors)
	},
}

func newCleaner() *cleanup.Cleaner {
	opts := []cleanup.Option{}
	if cfg, err := dedup.ConfigFromEnv(); err == nil {
		opts = append(opts, cleanup.WithDedupConfig(cfg))
	} else {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
	}
	return cleanup.New(store, logger, opts...)
}

func guardParams(mode cleanup.Mode) {
	if ok, reason := cleanup.ValidateParams(mode, cleanupDays, cleanupThreshold); !ok {
		fmt.Fprintf(os.Stderr, "Error: %s\n", reason)
		os.Exit(1)
	}
}

func warnDryRun() {
	if !cleanupApply {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("%s\n\n", yellow("DRY RUN MODE - no records will be modified (pass --apply to archive)"))
	}
}

func warnCost() {
	// Quadratic mode: tell the operator what they signed up for.
	items, err := store.FetchAll(context.Background(), types.OpenStatuses()...)
	if err != nil {
		return
	}
	est := cleanup.EstimateCost(cleanup.ModeDuplicates, len(items))
	if est.ExpectedSeconds > 10 {
		yellow := color.New(color.FgYellow).SprintFunc()
		fmt.Printf("%s scan is %s over %d records, expect ~%.0fs\n\n",
			yellow("⚠"), est.ComplexityClass, est.Records, est.ExpectedSeconds)
	}
}

func printArchiveStats(stats cleanup.Stats) {
	fmt.Printf("Scanned:  %d\n", stats.Scanned)
	fmt.Printf("Archived: %d\n", stats.Archived)
	fmt.Printf("Errors:   %d\n", stats.Errors)
	for status, n := range stats.ByPriorStatus {
		fmt.Printf("  from %-10s %d\n", string(status)+":", n)
	}
	fmt.Printf("Duration: %s\n", stats.Duration.Round(time.Millisecond))
}

func printDupStats(stats cleanup.Stats) {
	fmt.Printf("Scanned:     %d\n", stats.Scanned)
	fmt.Printf("Comparisons: %d\n", stats.Comparisons)
	fmt.Printf("Duplicates:  %d\n", stats.DuplicatesFound)
	cyan := color.New(color.FgCyan).SprintFunc()
	for _, pair := range stats.Pairs {
		fmt.Printf("  %s ~ %s (score %.3f)\n", cyan(short(pair.IDA)), cyan(short(pair.IDB)), pair.Score)
	}
}

func exitOnErrors(errors int) {
	if errors > 0 {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Printf("\n%s completed with %d error(s)\n", red("⚠"), errors)
	}
}

func short(id string) string {
	if len(id) <= 8 {
		return id
	}
	return id[:8]
}

func init() {
	cleanupCmd.PersistentFlags().IntVar(&cleanupDays, "days", cleanup.DefaultArchiveDays, "Age threshold in days for archiving closed records")
	cleanupCmd.PersistentFlags().Float64Var(&cleanupThreshold, "threshold", 0.85, "Similarity threshold for duplicate detection (0.0-1.0)")
	cleanupCmd.PersistentFlags().BoolVar(&cleanupApply, "apply", false, "Perform mutations instead of the default dry run")
	cleanupStatusCmd.Flags().StringVar(&cleanupStatus, "status", "", "Status to purge (resolved or dropped)")

	cleanupCmd.AddCommand(cleanupOldCmd)
	cleanupCmd.AddCommand(cleanupDupsCmd)
	cleanupCmd.AddCommand(cleanupStatusCmd)
	cleanupCmd.AddCommand(cleanupAllCmd)
	rootCmd.AddCommand(cleanupCmd)
}
