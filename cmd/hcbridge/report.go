// ABOUTME: CLI command printing the daily text report.
// ABOUTME: Defaults to yesterday; --date selects another day.
package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var reportDate string

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Print the daily text report",
	RunE: func(cmd *cobra.Command, args []string) error {
		var text string
		var err error
		if reportDate == "" {
			text, err = reporter.Yesterday()
		} else {
			if _, perr := time.Parse("2006-01-02", reportDate); perr != nil {
				return fmt.Errorf("invalid date: %s (want YYYY-MM-DD)", reportDate)
			}
			text, err = reporter.ForDay(reportDate)
		}
		if err != nil {
			return fmt.Errorf("failed to build report: %w", err)
		}
		fmt.Print(text)
		return nil
	},
}

func init() {
	reportCmd.Flags().StringVar(&reportDate, "date", "", "local date (YYYY-MM-DD), defaults to yesterday")
	rootCmd.AddCommand(reportCmd)
}
