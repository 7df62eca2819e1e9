// ABOUTME: CLI command for idempotent nutrition/intake ingestion.
// ABOUTME: Single JSON payloads and legacy JSONL replay with derived ids.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/harperreed/hcbridge/internal/ingest"
	"github.com/harperreed/hcbridge/internal/models"
)

var ingestLegacy bool

var ingestCmd = &cobra.Command{
	Use:   "ingest [file]",
	Short: "Ingest an automation payload",
	Long: `Ingest a nutrition/intake payload exactly once.

The payload is JSON read from the file argument or stdin. A payload
without an event_id gets a fresh one, so piping the same file twice
creates duplicates; automations should set their own stable event_id.

With --legacy the input is JSONL: one payload per line, each assigned a
deterministic id derived from the file name, line number, and line
content. Replaying the same legacy file is therefore a no-op.

Examples:
  hcbridge ingest payload.json
  echo '{"items":[{"alias":"protein"}]}' | hcbridge ingest
  hcbridge ingest --legacy automation-log.jsonl`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if ingestLegacy {
			if len(args) == 0 {
				return fmt.Errorf("--legacy requires a file argument")
			}
			return ingestLegacyFile(args[0])
		}

		var data []byte
		var err error
		if len(args) > 0 {
			data, err = os.ReadFile(args[0])
		} else {
			data, err = io.ReadAll(os.Stdin)
		}
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}

		var p ingest.Payload
		if err := json.Unmarshal(data, &p); err != nil {
			return fmt.Errorf("invalid payload JSON: %w", err)
		}
		if p.EventID == "" {
			p.EventID = uuid.NewString()
		}

		res, err := ingestor.Ingest(&p)
		if err != nil {
			return fmt.Errorf("ingest failed: %w", err)
		}
		if res.Duplicate > 0 {
			color.Yellow("Duplicate event %s, nothing applied", res.EventID)
			return nil
		}
		color.Green("✓ Ingested event %s", res.EventID)
		return nil
	},
}

// ingestLegacyFile replays a JSONL automation log with derived event ids.
func ingestLegacyFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	name := filepath.Base(path)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)

	ingested, duplicates, failed := 0, 0, 0
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var p ingest.Payload
		if err := json.Unmarshal([]byte(line), &p); err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "line %d: invalid JSON: %v\n", lineNo, err)
			continue
		}
		if p.EventID == "" {
			p.EventID = ingest.LegacyEventID(name, lineNo, line)
		}

		res, err := ingestor.Ingest(&p)
		switch {
		case models.IsValidation(err):
			failed++
			fmt.Fprintf(os.Stderr, "line %d: %v\n", lineNo, err)
		case err != nil:
			return fmt.Errorf("line %d: %w", lineNo, err)
		case res.Duplicate > 0:
			duplicates++
		default:
			ingested++
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	color.Green("✓ Legacy replay done")
	fmt.Printf("  %d ingested, %d duplicate(s), %d failed\n", ingested, duplicates, failed)
	return nil
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestLegacy, "legacy", false, "treat input as legacy JSONL with derived event ids")
	rootCmd.AddCommand(ingestCmd)
}
