// ABOUTME: MCP resource implementations for the health bridge.
// ABOUTME: Provides hcbridge://summary, hcbridge://today, hcbridge://yesterday.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerResources() {
	// hcbridge://summary - full aggregated summary
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "hcbridge://summary",
		Name:        "Health Summary",
		Description: "Aggregated daily series, weight trend, and insights",
		MIMEType:    "application/json",
	}, s.handleSummaryResource)

	// hcbridge://today - today's nutrition events and totals
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "hcbridge://today",
		Name:        "Today's Nutrition",
		Description: "Nutrition events and nutrient totals for today",
		MIMEType:    "application/json",
	}, s.handleTodayResource)

	// hcbridge://yesterday - yesterday's text report
	s.mcpServer.AddResource(&mcp.Resource{
		URI:         "hcbridge://yesterday",
		Name:        "Yesterday's Report",
		Description: "Plain-text daily report for yesterday",
		MIMEType:    "text/plain",
	}, s.handleYesterdayResource)
}

// Resource handlers

func (s *Server) handleSummaryResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	sum, err := s.engine.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build summary: %w", err)
	}

	data, err := json.MarshalIndent(sum, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal summary: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "hcbridge://summary",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleTodayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	date := s.nutrition.LocalDate(time.Now())

	events, err := s.nutrition.DayEvents(date)
	if err != nil {
		return nil, fmt.Errorf("failed to list day events: %w", err)
	}
	totals, err := s.nutrition.DayTotals(date)
	if err != nil {
		return nil, fmt.Errorf("failed to compute day totals: %w", err)
	}

	data, err := json.MarshalIndent(map[string]any{
		"date":   date,
		"events": events,
		"totals": totals,
	}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal day view: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "hcbridge://today",
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func (s *Server) handleYesterdayResource(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	text, err := s.reporter.Yesterday()
	if err != nil {
		return nil, fmt.Errorf("failed to build report: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      "hcbridge://yesterday",
			MIMEType: "text/plain",
			Text:     text,
		}},
	}, nil
}
