// ABOUTME: Tests for the bridge MCP server, tools, and resources.
// ABOUTME: Covers NewServer, tool handlers, and resource handlers.
package mcp

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harperreed/hcbridge/internal/catalog"
	"github.com/harperreed/hcbridge/internal/nutrition"
	"github.com/harperreed/hcbridge/internal/report"
	"github.com/harperreed/hcbridge/internal/storage"
	"github.com/harperreed/hcbridge/internal/summary"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	db, err := storage.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	svc := nutrition.NewService(db, catalog.Default(), time.UTC)
	engine := summary.NewEngine(db, time.UTC, 1680)
	reporter := report.NewReporter(engine, svc, time.UTC)

	server, err := NewServer(engine, svc, reporter)
	if err != nil {
		t.Fatalf("NewServer failed: %v", err)
	}
	return server
}

func TestNewServer(t *testing.T) {
	server := setupTestServer(t)
	if server.mcpServer == nil {
		t.Error("Expected non-nil mcpServer")
	}
	if server.engine == nil || server.nutrition == nil || server.reporter == nil {
		t.Error("Expected all services wired")
	}
}

func TestHandleLogNutritionAlias(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, out, err := server.handleLogNutrition(ctx, nil, logNutritionInput{
		Alias:      "protein",
		Count:      2,
		ConsumedAt: "2025-06-01T12:00:00Z",
	})
	if err != nil {
		t.Fatalf("handleLogNutrition failed: %v", err)
	}
	if out.ID == 0 || out.Date != "2025-06-01" {
		t.Errorf("output = %+v", out)
	}
}

func TestHandleLogNutritionUnknownAlias(t *testing.T) {
	server := setupTestServer(t)
	_, _, err := server.handleLogNutrition(context.Background(), nil, logNutritionInput{Alias: "nope"})
	if err == nil {
		t.Fatal("expected error for unknown alias")
	}
}

func TestHandleLogNutritionLabel(t *testing.T) {
	server := setupTestServer(t)
	kcal := 650.0
	_, out, err := server.handleLogNutrition(context.Background(), nil, logNutritionInput{
		Label: "ramen", Kcal: &kcal,
	})
	if err != nil {
		t.Fatalf("handleLogNutrition failed: %v", err)
	}
	if out.Label != "ramen" {
		t.Errorf("label = %q", out.Label)
	}
}

func TestHandleGetDay(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	if _, _, err := server.handleLogNutrition(ctx, nil, logNutritionInput{
		Alias: "protein", ConsumedAt: "2025-06-01T12:00:00Z",
	}); err != nil {
		t.Fatalf("log: %v", err)
	}

	_, out, err := server.handleGetDay(ctx, nil, getDayInput{Date: "2025-06-01"})
	if err != nil {
		t.Fatalf("handleGetDay failed: %v", err)
	}
	view, ok := out.(map[string]any)
	if !ok {
		t.Fatalf("unexpected output type %T", out)
	}
	if view["date"] != "2025-06-01" {
		t.Errorf("date = %v", view["date"])
	}

	if _, _, err := server.handleGetDay(ctx, nil, getDayInput{Date: "bogus"}); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestHandleDeleteNutritionEvent(t *testing.T) {
	server := setupTestServer(t)
	ctx := context.Background()

	_, logged, err := server.handleLogNutrition(ctx, nil, logNutritionInput{Alias: "protein"})
	if err != nil {
		t.Fatalf("log: %v", err)
	}
	if _, _, err := server.handleDeleteNutritionEvent(ctx, nil, deleteEventInput{ID: logged.ID}); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, _, err := server.handleDeleteNutritionEvent(ctx, nil, deleteEventInput{ID: logged.ID}); err == nil {
		t.Error("expected error deleting missing event")
	}
}

func TestHandleGetSummary(t *testing.T) {
	server := setupTestServer(t)
	_, sum, err := server.handleGetSummary(context.Background(), nil, getSummaryInput{})
	if err != nil {
		t.Fatalf("handleGetSummary failed: %v", err)
	}
	if sum == nil || sum.TotalRecords != 0 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestHandleGetReport(t *testing.T) {
	server := setupTestServer(t)
	_, out, err := server.handleGetReport(context.Background(), nil, getReportInput{Date: "2025-06-01"})
	if err != nil {
		t.Fatalf("handleGetReport failed: %v", err)
	}
	if !strings.Contains(out.Report, "2025-06-01") {
		t.Errorf("report = %q", out.Report)
	}

	if _, _, err := server.handleGetReport(context.Background(), nil, getReportInput{Date: "bogus"}); err == nil {
		t.Error("expected error for bad date")
	}
}

func TestYesterdayResource(t *testing.T) {
	server := setupTestServer(t)
	res, err := server.handleYesterdayResource(context.Background(), nil)
	if err != nil {
		t.Fatalf("resource failed: %v", err)
	}
	if len(res.Contents) != 1 || res.Contents[0].URI != "hcbridge://yesterday" {
		t.Errorf("contents = %+v", res.Contents)
	}
}

func TestSummaryResource(t *testing.T) {
	server := setupTestServer(t)
	res, err := server.handleSummaryResource(context.Background(), nil)
	if err != nil {
		t.Fatalf("resource failed: %v", err)
	}
	if len(res.Contents) != 1 || res.Contents[0].MIMEType != "application/json" {
		t.Errorf("contents = %+v", res.Contents)
	}
}
