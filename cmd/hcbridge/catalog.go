// ABOUTME: CLI command listing nutrition catalog aliases.
// ABOUTME: Shows alias, label, and per-unit calories.
package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List nutrition catalog aliases",
	RunE: func(cmd *cobra.Command, args []string) error {
		cat := nutritionSvc.Catalog()
		for _, alias := range cat.Aliases() {
			item, _ := cat.Lookup(alias)
			kcal := "-"
			if item.Kcal != nil {
				kcal = fmt.Sprintf("%.1f kcal", *item.Kcal)
			}
			fmt.Printf("  %-14s %-50s %s\n", alias, item.Label, kcal)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}
