// ABOUTME: CLI command showing one day's nutrition events and totals.
// ABOUTME: Defaults to today; --date selects another local day.
package main

import (
	"fmt"
	"sort"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var dayDate string

var dayCmd = &cobra.Command{
	Use:   "day",
	Short: "Show nutrition events and totals for a day",
	RunE: func(cmd *cobra.Command, args []string) error {
		date := dayDate
		if date == "" {
			date = nutritionSvc.LocalDate(time.Now())
		} else if _, err := time.Parse("2006-01-02", date); err != nil {
			return fmt.Errorf("invalid date: %s (want YYYY-MM-DD)", date)
		}

		events, err := nutritionSvc.DayEvents(date)
		if err != nil {
			return fmt.Errorf("failed to list events: %w", err)
		}
		totals, err := nutritionSvc.DayTotals(date)
		if err != nil {
			return fmt.Errorf("failed to compute totals: %w", err)
		}

		fmt.Printf("Nutrition for %s\n\n", date)
		if len(events) == 0 {
			color.Yellow("No events logged")
		}
		for _, ev := range events {
			line := fmt.Sprintf("  %s  %-40s x%g",
				ev.ConsumedAt.In(nutritionSvc.Location()).Format("15:04"), ev.Label, ev.Count)
			fmt.Print(line)
			if ev.Kcal != nil {
				fmt.Printf("  %.0f kcal", *ev.Kcal*ev.Count)
			}
			fmt.Printf("  %s\n", color.New(color.Faint).Sprintf("(ID: %d)", ev.ID))
		}

		fmt.Println()
		printTotal := func(name string, v *float64, unit string) {
			if v != nil {
				fmt.Printf("  %-12s %.1f %s\n", name, *v, unit)
			}
		}
		printTotal("Calories", totals.Kcal, "kcal")
		printTotal("Protein", totals.ProteinG, "g")
		printTotal("Fat", totals.FatG, "g")
		printTotal("Carbs", totals.CarbsG, "g")

		if len(totals.Micros) > 0 {
			keys := make([]string, 0, len(totals.Micros))
			for k := range totals.Micros {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			fmt.Println("  Micros:")
			for _, k := range keys {
				fmt.Printf("    %-24s %.2f\n", k, totals.Micros[k])
			}
		}
		return nil
	},
}

func init() {
	dayCmd.Flags().StringVar(&dayDate, "date", "", "local date (YYYY-MM-DD), defaults to today")
	rootCmd.AddCommand(dayCmd)
}
