package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/meetbot/reviewq/internal/review"
	"github.com/meetbot/reviewq/internal/types"
)

var (
	upsertFile        string
	upsertMeeting     string
	upsertParallelism int
)

var upsertCmd = &cobra.Command{
	Use:   "upsert",
	Short: "Create or update review items from a batch file",
	Long: `Apply a batch of candidate commitments against the queue.

Each item is matched by its dedup key against the OPEN records in the store:
a match overwrites the open record in place, anything else creates a new
pending record. One failing item never aborts the batch.

The input file is a YAML list of items:

  - text: "prepare the quarterly report"
    direction: theirs
    assignees: [maria]
    confidence: 0.9
    key: "a1b2c3d4e5f60718"

Examples:
  reviewq upsert -f items.yaml --meeting mtg-2024-06-12
  reviewq upsert -f items.yaml --meeting mtg-2024-06-12 --parallel 4`,
	Run: func(cmd *cobra.Command, args []string) {
		if upsertMeeting == "" {
			fmt.Fprintln(os.Stderr, "Error: --meeting is required")
			os.Exit(1)
		}

		data, err := os.ReadFile(upsertFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read %s: %v\n", upsertFile, err)
			os.Exit(1)
		}

		var items []*types.ReviewItem
		if err := yaml.Unmarshal(data, &items); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to parse %s: %v\n", upsertFile, err)
			os.Exit(1)
		}
		for i, item := range items {
			if item.Status == "" {
				item.Status = types.StatusPending
			}
			if err := item.Validate(); err != nil {
				fmt.Fprintf(os.Stderr, "Error: item %d: %v\n", i+1, err)
				os.Exit(1)
			}
		}

		upserter := review.NewUpserter(store, logger)
		if upsertParallelism > 1 {
			upserter.Parallelism = upsertParallelism
		}

		result := upserter.UpsertBatch(context.Background(), items, upsertMeeting)

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Created %d, updated %d", green("✓"), result.Created, result.Updated)
		if result.Errors > 0 {
			red := color.New(color.FgRed).SprintFunc()
			fmt.Printf(", %s", red(fmt.Sprintf("%d failed", result.Errors)))
		}
		fmt.Println()
		for _, id := range result.CreatedIDs {
			fmt.Printf("  + %s\n", short(id))
		}
		for _, id := range result.UpdatedIDs {
			fmt.Printf("  ~ %s\n", short(id))
		}
	},
}

func init() {
	upsertCmd.Flags().StringVarP(&upsertFile, "file", "f", "", "YAML file with candidate items (required)")
	upsertCmd.Flags().StringVar(&upsertMeeting, "meeting", "", "Meeting reference the items came from (required)")
	upsertCmd.Flags().IntVar(&upsertParallelism, "parallel", 1, "Concurrent upserts within the batch")
	_ = upsertCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(upsertCmd)
}
