package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/meetbot/reviewq/internal/cleanup"
)

var (
	estimateMode    string
	estimateRecords int
)

var estimateCmd = &cobra.Command{
	Use:   "estimate",
	Short: "Estimate the cost of a cleanup run before starting it",
	Long: `Predict how long a cleanup mode will take over an approximate record count.

Archive and status cleanup scale linearly; the duplicate scan is quadratic
within fingerprint buckets, so large open queues get expensive fast.

Examples:
  reviewq estimate --mode dups --records 500
  reviewq estimate --mode old --records 2000`,
	Run: func(cmd *cobra.Command, args []string) {
		mode := cleanup.Mode(estimateMode)
		if !mode.IsValid() {
			fmt.Fprintf(os.Stderr, "Error: unknown mode %q (use old, dups, status, or all)\n", estimateMode)
			os.Exit(1)
		}

		est := cleanup.EstimateCost(mode, estimateRecords)
		fmt.Printf("Mode:       %s\n", mode)
		fmt.Printf("Records:    %d\n", est.Records)
		fmt.Printf("Complexity: %s\n", est.ComplexityClass)
		if est.ExpectedSeconds >= 60 {
			fmt.Printf("Expected:   ~%.1f minutes\n", est.ExpectedSeconds/60)
		} else {
			fmt.Printf("Expected:   ~%.1f seconds\n", est.ExpectedSeconds)
		}
	},
}

func init() {
	estimateCmd.Flags().StringVar(&estimateMode, "mode", string(cleanup.ModeAll), "Cleanup mode (old, dups, status, all)")
	estimateCmd.Flags().IntVar(&estimateRecords, "records", 100, "Approximate record count")
	rootCmd.AddCommand(estimateCmd)
}
