// Command reviewq is the operator CLI for the meeting-commitment review
// queue: batch upserts, queue stats, duplicate scans, and bulk cleanup.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/meetbot/reviewq/internal/storage"
	"github.com/meetbot/reviewq/internal/storage/memory"
	"github.com/meetbot/reviewq/internal/storage/sqlite"
)

var (
	// Shared across subcommands, initialized in PersistentPreRunE.
	store  storage.Store
	logger zerolog.Logger

	dbPath    string
	storeKind string
	rateRPS   float64
	verbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "reviewq",
	Short: "Review queue engine for meeting commitments",
	Long: `reviewq manages the review queue that meeting-transcript extraction feeds:
candidate commitments waiting for an operator to confirm, reassign, flip,
or drop them.

The queue lives in a record store (SQLite locally; the hosted workspace in
production). reviewq guarantees one open record per commitment key, finds
near-duplicate records that slipped past key matching, and ages closed
records out into the archive.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level := zerolog.InfoLevel
		if verbose {
			level = zerolog.DebugLevel
		}
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
			Level(level).
			With().Timestamp().Logger()

		var err error
		store, err = openStore()
		if err != nil {
			return fmt.Errorf("failed to open store: %w", err)
		}
		if rateRPS > 0 {
			store = storage.NewRateLimited(store, rateRPS)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
		}
	},
}

func openStore() (storage.Store, error) {
	switch storeKind {
	case "sqlite":
		return sqlite.New(dbPath)
	case "memory":
		// Useful for demos and REPL experiments; contents vanish on exit.
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q (use sqlite or memory)", storeKind)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", ".reviewq/reviewq.db", "SQLite database path")
	rootCmd.PersistentFlags().StringVar(&storeKind, "store", "sqlite", "Store backend (sqlite, memory)")
	rootCmd.PersistentFlags().Float64Var(&rateRPS, "rate", 0, "Store request rate limit in req/s (0 = unlimited)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
