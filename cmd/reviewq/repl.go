package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meetbot/reviewq/internal/cleanup"
	"github.com/meetbot/reviewq/internal/repl"
	"github.com/meetbot/reviewq/internal/review"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Start the interactive operator console",
	Long: `Start an interactive console over the review queue.

The console offers the same operations as the chat-facing admin commands:
listing open items, queue stats, duplicate scans, dry-run archival, and
per-item confirm/flip/drop decisions.

Type 'help' in the console for available commands.`,
	Run: func(cmd *cobra.Command, args []string) {
		r, err := repl.New(&repl.Config{
			Store:   store,
			Queue:   review.NewQueue(store, logger),
			Actions: review.NewActions(store, logger),
			Cleaner: cleanup.New(store, logger),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to create console: %v\n", err)
			os.Exit(1)
		}

		if err := r.Run(context.Background()); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}
