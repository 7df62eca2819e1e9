// ABOUTME: CLI command exporting records and summaries.
// ABOUTME: CSV of raw records; JSON/YAML of the summary; public payload.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	exportFormat string
	exportType   string
	exportOut    string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export records or the summary",
	Long: `Export data to stdout or a file.

Formats:
  csv     raw health records (optionally filtered with --type)
  json    the full aggregated summary
  yaml    the full aggregated summary
  public  the privacy-filtered shareable summary (relative day labels,
          rounded values, no raw payloads)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var data []byte
		var err error

		switch exportFormat {
		case "csv":
			data, err = db.ExportRecordsCSV(exportType)
		case "json":
			var s any
			if s, err = summaryEngine.Build(); err == nil {
				data, err = json.MarshalIndent(s, "", "  ")
			}
		case "yaml":
			var s any
			if s, err = summaryEngine.Build(); err == nil {
				data, err = yaml.Marshal(s)
			}
		case "public":
			goal := cfg.GoalWeightKg
			if p, perr := db.GetProfile(); perr == nil && p.GoalWeightKg != nil {
				goal = p.GoalWeightKg
			}
			var pub any
			if pub, err = reporter.PublicSummary(goal); err == nil {
				data, err = json.MarshalIndent(pub, "", "  ")
			}
		default:
			return fmt.Errorf("unknown format: %s (want csv, json, yaml, or public)", exportFormat)
		}
		if err != nil {
			return fmt.Errorf("export failed: %w", err)
		}

		if exportOut == "" {
			_, err = os.Stdout.Write(data)
			return err
		}
		if err := os.WriteFile(exportOut, data, 0600); err != nil {
			return fmt.Errorf("failed to write %s: %w", exportOut, err)
		}
		fmt.Printf("Wrote %s (%d bytes)\n", exportOut, len(data))
		return nil
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "csv", "export format: csv, json, yaml, public")
	exportCmd.Flags().StringVar(&exportType, "type", "", "record type filter (csv only)")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file, defaults to stdout")
	rootCmd.AddCommand(exportCmd)
}
