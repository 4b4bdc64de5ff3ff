package main

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/meetbot/reviewq/internal/review"
	"github.com/meetbot/reviewq/internal/types"
)

var statsLimit int

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show the open review queue",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		queue := review.NewQueue(store, logger)

		snap, err := queue.Stats(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		bold := color.New(color.Bold).SprintFunc()
		fmt.Printf("%s %d\n", bold("Open items:"), snap.TotalOpen)
		for _, status := range types.OpenStatuses() {
			if n := snap.ByStatus[status]; n > 0 {
				fmt.Printf("  %-14s %d\n", status, n)
			}
		}

		if statsLimit <= 0 {
			return
		}
		items, err := queue.ListOpen(ctx, statsLimit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if len(items) > 0 {
			fmt.Println()
			cyan := color.New(color.FgCyan).SprintFunc()
			for _, item := range items {
				fmt.Printf("%s [%s/%s] %s\n", cyan(item.Short()), item.Status, item.Direction, item.Text)
			}
		}
	},
}

func init() {
	statsCmd.Flags().IntVar(&statsLimit, "list", 5, "Also list up to this many open items (0 to disable)")
	rootCmd.AddCommand(statsCmd)
}
