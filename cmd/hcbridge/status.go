// ABOUTME: CLI command showing database and sync status.
// ABOUTME: DB path, record counts by type, last received sync.
package main

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/hcbridge/internal/models"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database and sync status",
	RunE: func(cmd *cobra.Command, args []string) error {
		total, err := db.CountRecords()
		if err != nil {
			return fmt.Errorf("failed to count records: %w", err)
		}
		byType, err := db.CountRecordsByType()
		if err != nil {
			return fmt.Errorf("failed to count by type: %w", err)
		}

		fmt.Printf("Database: %s\n", db.Path())
		fmt.Printf("Records:  %d\n", total)

		if len(byType) > 0 {
			types := make([]string, 0, len(byType))
			for t := range byType {
				types = append(types, t)
			}
			sort.Strings(types)
			for _, t := range types {
				fmt.Printf("  %-30s %d\n", t, byType[t])
			}
		}

		run, err := db.LastSyncRun()
		switch {
		case errors.Is(err, models.ErrNotFound):
			color.Yellow("No syncs received yet")
		case err != nil:
			return fmt.Errorf("failed to read last sync: %w", err)
		default:
			color.Green("✓ Last sync %s from %s", run.SyncID, run.DeviceID)
			fmt.Printf("  received %s, %d record(s), %d upserted, %d skipped\n",
				run.ReceivedAt.Local().Format(time.RFC3339),
				run.RecordCount, run.UpsertedCount, run.SkippedCount)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
