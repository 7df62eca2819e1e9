// ABOUTME: CLI command printing the aggregated summary.
// ABOUTME: Compact terminal view by default, full JSON with --json.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/hcbridge/internal/summary"
)

var summaryJSON bool

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show the aggregated health summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := summaryEngine.Build()
		if err != nil {
			return fmt.Errorf("failed to build summary: %w", err)
		}

		if summaryJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		}

		fmt.Printf("Records: %d\n\n", s.TotalRecords)
		printTail("Steps", s.StepsByDate, "", 0)
		printTail("Active burn", s.ActiveCaloriesByDate, " kcal", 0)
		printTail("Total burn", s.TotalCaloriesByDate, " kcal", 0)
		printTail("Intake", s.IntakeCaloriesByDate, " kcal", 0)
		printTail("Balance", s.CalorieBalanceByDate, " kcal", 0)
		printTail("Sleep", s.SleepHoursByDate, " h", 1)
		printTail("Weight", s.WeightByDate, " kg", 1)

		d := s.Diet
		fmt.Printf("\nWeight trend: %s", d.Trend)
		if d.MA7Delta7d != nil {
			fmt.Printf(" (%+.2f kg over 7 days)", *d.MA7Delta7d)
		}
		fmt.Println()
		if d.EstimatedDeficitKcalPerDay != nil {
			fmt.Printf("Estimated deficit: %.0f kcal/day\n", *d.EstimatedDeficitKcalPerDay)
		}

		if len(s.Insights) > 0 {
			fmt.Println()
			for _, in := range s.Insights {
				if in.Level == summary.LevelWarn {
					color.Yellow("  ! %s", in.Message)
				} else {
					fmt.Printf("  - %s\n", in.Message)
				}
			}
		}
		return nil
	},
}

// printTail shows the last few days of a series.
func printTail(label string, points []summary.Point, unit string, decimals int) {
	const tail = 7
	start := len(points) - tail
	if start < 0 {
		start = 0
	}
	if len(points) == 0 {
		return
	}
	fmt.Printf("%s:\n", label)
	for _, p := range points[start:] {
		if p.Value == nil {
			fmt.Printf("  %s  -\n", p.Date)
			continue
		}
		fmt.Printf("  %s  %.*f%s\n", p.Date, decimals, *p.Value, unit)
	}
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryJSON, "json", false, "print the full summary as JSON")
	rootCmd.AddCommand(summaryCmd)
}
