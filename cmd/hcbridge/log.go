// ABOUTME: CLI command for logging nutrition events.
// ABOUTME: Catalog aliases by name, free-form items via flags.
package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/hcbridge/internal/nutrition"
)

var (
	logAt       string
	logLabel    string
	logKcal     float64
	logProteinG float64
	logFatG     float64
	logCarbsG   float64
	logNote     string
)

var logCmd = &cobra.Command{
	Use:   "log [alias] [count]",
	Short: "Log a nutrition event",
	Long: `Log a nutrition event, either a catalog alias or a free-form label.

Examples:
  hcbridge log protein                  # One unit of a catalog item
  hcbridge log fish_oil 2               # Two units
  hcbridge log protein --at "2025-06-01 08:30"
  hcbridge log --label "ramen" --kcal 650 --carbs 90 --fat 20`,
	Args: cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		count := 1.0
		if len(args) > 1 {
			v, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid count: %s", args[1])
			}
			count = v
		}

		var at *time.Time
		if logAt != "" {
			t, err := parseTime(logAt)
			if err != nil {
				return fmt.Errorf("invalid timestamp: %s", logAt)
			}
			at = &t
		}
		var note *string
		if logNote != "" {
			note = &logNote
		}

		if len(args) > 0 {
			ev, err := nutritionSvc.LogAlias(args[0], at, count, note)
			if err != nil {
				return fmt.Errorf("failed to log: %w", err)
			}
			color.Green("✓ Logged %s", ev.Label)
			fmt.Printf("  %s x%g (ID: %d)\n", ev.LocalDate, ev.Count, ev.ID)
			return nil
		}

		if logLabel == "" {
			return fmt.Errorf("provide an alias or --label")
		}
		in := nutrition.EventInput{
			ConsumedAt: at,
			Label:      logLabel,
			Count:      count,
			Note:       note,
		}
		if cmd.Flags().Changed("kcal") {
			in.Kcal = &logKcal
		}
		if cmd.Flags().Changed("protein") {
			in.ProteinG = &logProteinG
		}
		if cmd.Flags().Changed("fat") {
			in.FatG = &logFatG
		}
		if cmd.Flags().Changed("carbs") {
			in.CarbsG = &logCarbsG
		}
		ev, err := nutritionSvc.LogEvent(in)
		if err != nil {
			return fmt.Errorf("failed to log: %w", err)
		}
		color.Green("✓ Logged %s", ev.Label)
		fmt.Printf("  %s x%g (ID: %d)\n", ev.LocalDate, ev.Count, ev.ID)
		return nil
	},
}

// parseTime accepts RFC3339 or a local "YYYY-MM-DD HH:MM".
func parseTime(s string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.ParseInLocation("2006-01-02 15:04", s, nutritionSvc.Location())
}

func init() {
	logCmd.Flags().StringVar(&logAt, "at", "", "timestamp (RFC3339 or 'YYYY-MM-DD HH:MM'), defaults to now")
	logCmd.Flags().StringVar(&logLabel, "label", "", "free-form label when no alias applies")
	logCmd.Flags().Float64Var(&logKcal, "kcal", 0, "calories per unit")
	logCmd.Flags().Float64Var(&logProteinG, "protein", 0, "protein grams per unit")
	logCmd.Flags().Float64Var(&logFatG, "fat", 0, "fat grams per unit")
	logCmd.Flags().Float64Var(&logCarbsG, "carbs", 0, "carb grams per unit")
	logCmd.Flags().StringVar(&logNote, "notes", "", "optional note")
	rootCmd.AddCommand(logCmd)
}
