// ABOUTME: MCP tool implementations for the health bridge.
// ABOUTME: Summary, report, nutrition logging, day view, event deletion.
package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/harperreed/hcbridge/internal/models"
	"github.com/harperreed/hcbridge/internal/nutrition"
	"github.com/harperreed/hcbridge/internal/summary"
)

func (s *Server) registerTools() {
	// get_summary
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_summary",
		Description: "Get the full aggregated health summary (daily series, weight trend, insights)",
	}, s.handleGetSummary)

	// get_report
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_report",
		Description: "Get the plain-text daily health report for a given date (defaults to yesterday)",
	}, s.handleGetReport)

	// log_nutrition
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "log_nutrition",
		Description: "Log a nutrition event by catalog alias or free-form label",
	}, s.handleLogNutrition)

	// get_day
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_day",
		Description: "Get the nutrition events and nutrient totals for one day",
	}, s.handleGetDay)

	// delete_nutrition_event
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_nutrition_event",
		Description: "Delete a logged nutrition event by id",
	}, s.handleDeleteNutritionEvent)
}

// Tool input/output types

type getSummaryInput struct{}

type getReportInput struct {
	Date string `json:"date,omitempty" jsonschema:"Date (YYYY-MM-DD), defaults to yesterday"`
}

type reportOutput struct {
	Date   string `json:"date"`
	Report string `json:"report"`
}

type logNutritionInput struct {
	Alias      string             `json:"alias,omitempty" jsonschema:"Catalog alias (protein, vitamin_d, multivitamin, fish_oil, ...)"`
	Label      string             `json:"label,omitempty" jsonschema:"Free-form label when no alias applies"`
	Count      float64            `json:"count,omitempty" jsonschema:"Number of units, defaults to 1"`
	ConsumedAt string             `json:"consumed_at,omitempty" jsonschema:"Timestamp (ISO 8601), defaults to now"`
	Kcal       *float64           `json:"kcal,omitempty" jsonschema:"Calories per unit"`
	ProteinG   *float64           `json:"protein_g,omitempty" jsonschema:"Protein grams per unit"`
	FatG       *float64           `json:"fat_g,omitempty" jsonschema:"Fat grams per unit"`
	CarbsG     *float64           `json:"carbs_g,omitempty" jsonschema:"Carb grams per unit"`
	Micros     map[string]float64 `json:"micros,omitempty" jsonschema:"Micronutrient amounts per unit"`
	Note       string             `json:"note,omitempty" jsonschema:"Optional note"`
}

type logNutritionOutput struct {
	ID      int64  `json:"id"`
	Label   string `json:"label"`
	Date    string `json:"date"`
	Message string `json:"message"`
}

type getDayInput struct {
	Date string `json:"date,omitempty" jsonschema:"Date (YYYY-MM-DD), defaults to today"`
}

type deleteEventInput struct {
	ID int64 `json:"id" jsonschema:"Nutrition event id"`
}

type simpleOutput struct {
	Message string `json:"message"`
}

// Tool handlers

func (s *Server) handleGetSummary(ctx context.Context, req *mcp.CallToolRequest, input getSummaryInput) (*mcp.CallToolResult, *summary.Summary, error) {
	sum, err := s.engine.Build()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build summary: %w", err)
	}
	return nil, sum, nil
}

func (s *Server) handleGetReport(ctx context.Context, req *mcp.CallToolRequest, input getReportInput) (*mcp.CallToolResult, reportOutput, error) {
	date := input.Date
	var text string
	var err error
	if date == "" {
		text, err = s.reporter.Yesterday()
	} else {
		if _, perr := time.Parse("2006-01-02", date); perr != nil {
			return nil, reportOutput{}, fmt.Errorf("date must be YYYY-MM-DD")
		}
		text, err = s.reporter.ForDay(date)
	}
	if err != nil {
		return nil, reportOutput{}, fmt.Errorf("failed to build report: %w", err)
	}
	return nil, reportOutput{Date: date, Report: text}, nil
}

func (s *Server) handleLogNutrition(ctx context.Context, req *mcp.CallToolRequest, input logNutritionInput) (*mcp.CallToolResult, logNutritionOutput, error) {
	count := input.Count
	if count == 0 {
		count = 1
	}

	var consumedAt *time.Time
	if input.ConsumedAt != "" {
		t, err := time.Parse(time.RFC3339, input.ConsumedAt)
		if err != nil {
			return nil, logNutritionOutput{}, fmt.Errorf("consumed_at must be ISO 8601")
		}
		consumedAt = &t
	}

	var note *string
	if input.Note != "" {
		note = &input.Note
	}

	var ev *models.NutritionEvent
	var err error
	if input.Alias != "" {
		ev, err = s.nutrition.LogAlias(input.Alias, consumedAt, count, note)
	} else {
		ev, err = s.nutrition.LogEvent(nutrition.EventInput{
			ConsumedAt: consumedAt,
			Label:      input.Label,
			Count:      count,
			Kcal:       input.Kcal,
			ProteinG:   input.ProteinG,
			FatG:       input.FatG,
			CarbsG:     input.CarbsG,
			Micros:     input.Micros,
			Note:       note,
		})
	}
	if err != nil {
		return nil, logNutritionOutput{}, fmt.Errorf("failed to log nutrition: %w", err)
	}

	return nil, logNutritionOutput{
		ID:      ev.ID,
		Label:   ev.Label,
		Date:    ev.LocalDate,
		Message: fmt.Sprintf("Logged %s x%g on %s (ID: %d)", ev.Label, ev.Count, ev.LocalDate, ev.ID),
	}, nil
}

func (s *Server) handleGetDay(ctx context.Context, req *mcp.CallToolRequest, input getDayInput) (*mcp.CallToolResult, any, error) {
	date := input.Date
	if date == "" {
		date = s.nutrition.LocalDate(time.Now())
	} else if _, err := time.Parse("2006-01-02", date); err != nil {
		return nil, nil, fmt.Errorf("date must be YYYY-MM-DD")
	}

	events, err := s.nutrition.DayEvents(date)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list day events: %w", err)
	}
	totals, err := s.nutrition.DayTotals(date)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to compute day totals: %w", err)
	}

	return nil, map[string]any{
		"date":   date,
		"events": events,
		"totals": totals,
	}, nil
}

func (s *Server) handleDeleteNutritionEvent(ctx context.Context, req *mcp.CallToolRequest, input deleteEventInput) (*mcp.CallToolResult, simpleOutput, error) {
	if err := s.nutrition.DeleteEvent(input.ID); err != nil {
		return nil, simpleOutput{}, fmt.Errorf("failed to delete event: %w", err)
	}
	return nil, simpleOutput{Message: fmt.Sprintf("Deleted nutrition event %d", input.ID)}, nil
}
