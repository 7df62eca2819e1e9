// ABOUTME: CLI command for viewing and updating the user profile.
// ABOUTME: Partial updates; unset flags leave stored fields untouched.
package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/harperreed/hcbridge/internal/models"
)

var (
	profileName   string
	profileHeight float64
	profileBirth  int
	profileSex    string
	profileGoal   float64
)

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the user profile",
	Long: `Show the stored profile, or update fields with flags. Only the
flags you pass change; everything else keeps its stored value.

Examples:
  hcbridge profile
  hcbridge profile --goal-weight 72.5
  hcbridge profile --name "H" --height 180 --birth-year 1990`,
	RunE: func(cmd *cobra.Command, args []string) error {
		update := &models.Profile{}
		changed := false
		if cmd.Flags().Changed("name") {
			update.Name = &profileName
			changed = true
		}
		if cmd.Flags().Changed("height") {
			update.HeightCm = &profileHeight
			changed = true
		}
		if cmd.Flags().Changed("birth-year") {
			update.BirthYear = &profileBirth
			changed = true
		}
		if cmd.Flags().Changed("sex") {
			update.Sex = &profileSex
			changed = true
		}
		if cmd.Flags().Changed("goal-weight") {
			update.GoalWeightKg = &profileGoal
			changed = true
		}

		var p *models.Profile
		var err error
		if changed {
			p, err = db.UpsertProfile(update)
			if err != nil {
				return fmt.Errorf("failed to update profile: %w", err)
			}
			color.Green("✓ Profile updated")
		} else {
			p, err = db.GetProfile()
			if errors.Is(err, models.ErrNotFound) {
				color.Yellow("No profile stored yet")
				return nil
			}
			if err != nil {
				return fmt.Errorf("failed to read profile: %w", err)
			}
		}

		printField := func(name string, v any, set bool) {
			if !set {
				fmt.Printf("  %-12s -\n", name)
				return
			}
			fmt.Printf("  %-12s %v\n", name, v)
		}
		printField("Name", deref(p.Name), p.Name != nil)
		printField("Height", deref(p.HeightCm), p.HeightCm != nil)
		printField("Birth year", deref(p.BirthYear), p.BirthYear != nil)
		printField("Sex", deref(p.Sex), p.Sex != nil)
		printField("Goal weight", deref(p.GoalWeightKg), p.GoalWeightKg != nil)
		return nil
	},
}

func deref[T any](p *T) any {
	if p == nil {
		return nil
	}
	return *p
}

func init() {
	profileCmd.Flags().StringVar(&profileName, "name", "", "display name")
	profileCmd.Flags().Float64Var(&profileHeight, "height", 0, "height in cm")
	profileCmd.Flags().IntVar(&profileBirth, "birth-year", 0, "birth year")
	profileCmd.Flags().StringVar(&profileSex, "sex", "", "sex")
	profileCmd.Flags().Float64Var(&profileGoal, "goal-weight", 0, "goal weight in kg")
	rootCmd.AddCommand(profileCmd)
}
