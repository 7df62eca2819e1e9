// ABOUTME: Root Cobra command for the hcbridge CLI.
// ABOUTME: Opens config, database, and core services for subcommands.
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harperreed/hcbridge/internal/catalog"
	"github.com/harperreed/hcbridge/internal/config"
	"github.com/harperreed/hcbridge/internal/ingest"
	"github.com/harperreed/hcbridge/internal/nutrition"
	"github.com/harperreed/hcbridge/internal/report"
	"github.com/harperreed/hcbridge/internal/storage"
	"github.com/harperreed/hcbridge/internal/summary"
	"github.com/harperreed/hcbridge/internal/syncer"
)

var (
	cfg           *config.Config
	db            *storage.DB
	nutritionSvc  *nutrition.Service
	summaryEngine *summary.Engine
	reporter      *report.Reporter
	ingestor      *ingest.Ingestor
	syncApplier   *syncer.Syncer
)

var rootCmd = &cobra.Command{
	Use:   "hcbridge",
	Short: "Personal health data bridge",
	Long: `hcbridge receives health records pushed from a phone, keeps them
deduplicated in SQLite, and turns them into daily series, a weight trend,
and plain advice.

QUICK START:

  $ hcbridge serve                      # Run the sync API (and discovery)
  $ hcbridge status                     # DB path, record counts, last sync
  $ hcbridge summary                    # Aggregated series and weight trend
  $ hcbridge report                     # Yesterday's text report

NUTRITION:

  $ hcbridge log protein                # Log a catalog item by alias
  $ hcbridge log --label "ramen" --kcal 650
  $ hcbridge day                        # Today's events and nutrient totals
  $ hcbridge delete 42                  # Remove a logged event
  $ hcbridge catalog                    # List known aliases

AUTOMATION:

  $ hcbridge ingest payload.json        # Idempotent nutrition/intake ingest
  $ hcbridge ingest --legacy old.jsonl  # Replay a legacy JSONL log once

MCP INTEGRATION:

  Run 'hcbridge mcp' to start the Model Context Protocol server for use
  with MCP-compatible AI assistants:

  {
    "mcpServers": {
      "hcbridge": { "command": "hcbridge", "args": ["mcp"] }
    }
  }

DATA STORAGE:

  Records live in SQLite at ~/.local/share/hcbridge/hcbridge.db.
  Configuration is read from ~/.config/hcbridge/config.json.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Help and version do not need the database.
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		db, err = storage.Open(cfg.GetDBPath())
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}

		cat := catalog.Default()
		if cfg.CatalogPath != "" {
			cat, err = catalog.LoadFile(config.ExpandPath(cfg.CatalogPath))
			if err != nil {
				return fmt.Errorf("failed to load catalog: %w", err)
			}
		}

		loc := cfg.GetLocation()
		nutritionSvc = nutrition.NewService(db, cat, loc)
		summaryEngine = summary.NewEngine(db, loc, cfg.GetBMRKcalPerDay())
		reporter = report.NewReporter(summaryEngine, nutritionSvc, loc)
		ingestor = ingest.New(db, nutritionSvc)
		syncApplier = syncer.New(db)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if db != nil {
			return db.Close()
		}
		return nil
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}
