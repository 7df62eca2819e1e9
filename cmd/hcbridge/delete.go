// ABOUTME: CLI command for deleting a logged nutrition event.
// ABOUTME: Removes the event and its exploded nutrient rows.
package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/hcbridge/internal/models"
)

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a nutrition event by id",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid id: %s", args[0])
		}
		if err := nutritionSvc.DeleteEvent(id); err != nil {
			if errors.Is(err, models.ErrNotFound) {
				return fmt.Errorf("no event with id %d", id)
			}
			return fmt.Errorf("failed to delete: %w", err)
		}
		color.Green("✓ Deleted event %d", id)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
}
