// ABOUTME: CLI command for starting the MCP server.
// ABOUTME: Runs a stdio-based MCP server for AI assistant integration.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/harperreed/hcbridge/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP server",
	Long: `Start the Model Context Protocol (MCP) server. The server talks
over stdin/stdout, so run it from an MCP-compatible client, not a shell.

AVAILABLE TOOLS:

  get_summary             Full aggregated summary with trend and insights
  get_report              Plain-text daily report for a date
  log_nutrition           Log a nutrition event by alias or label
  get_day                 Nutrition events and totals for one day
  delete_nutrition_event  Delete a logged event by id

AVAILABLE RESOURCES:

  hcbridge://summary      Aggregated summary (JSON)
  hcbridge://today        Today's nutrition (JSON)
  hcbridge://yesterday    Yesterday's report (text)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		server, err := mcp.NewServer(summaryEngine, nutritionSvc, reporter)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			cancel()
		}()

		return server.Serve(ctx)
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
