package client

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func TestReports_ExportReturnsOpaqueBytes(t *testing.T) {
	csv := []byte("id,title\n1,Site A\n")
	var format string
	e := echo.New()
	e.GET("/v1/reports/defects/export", func(c echo.Context) error {
		format = c.QueryParam("format")
		return c.Blob(http.StatusOK, "text/csv", csv)
	})
	c := newTestClient(t, e)

	blob, err := c.Reports.Export(context.Background(), "tok", ExportCSV)
	if err != nil {
		t.Fatalf("Export returned error: %v", err)
	}
	if format != "csv" {
		t.Fatalf("format query %q, want csv", format)
	}
	// No envelope unwrapping on binary responses: bytes come back verbatim.
	if !bytes.Equal(blob, csv) {
		t.Fatalf("blob mangled: %q", blob)
	}
}

func TestReports_ExportErrorStillNormalized(t *testing.T) {
	e := echo.New()
	e.GET("/v1/reports/defects/export", func(c echo.Context) error {
		return c.JSON(http.StatusForbidden, map[string]string{"detail": "Not authorized"})
	})
	c := newTestClient(t, e)

	_, err := c.Reports.Export(context.Background(), "tok", ExportXLSX)
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %v", err)
	}
	if apiErr.Message != "Not authorized" {
		t.Fatalf("unexpected message %q", apiErr.Message)
	}
}

func TestReports_ExportRejectsUnknownFormat(t *testing.T) {
	c := New(Options{BaseURL: "http://unused.invalid"})

	_, err := c.Reports.Export(context.Background(), "tok", "pdf")
	if _, ok := err.(*ValidationError); !ok {
		t.Fatalf("expected *ValidationError, got %v", err)
	}
}

func TestReports_CreationTrendDays(t *testing.T) {
	var days string
	e := echo.New()
	e.GET("/v1/reports/analytics/creation-trend", func(c echo.Context) error {
		days = c.QueryParam("days")
		return c.JSON(http.StatusOK, map[string]any{
			"success": true,
			"data":    []DefectCreationTrendItem{{Date: "2025-10-01", Count: 2}},
		})
	})
	c := newTestClient(t, e)

	trend, err := c.Reports.CreationTrend(context.Background(), "tok", 7)
	if err != nil {
		t.Fatalf("CreationTrend returned error: %v", err)
	}
	if days != "7" {
		t.Fatalf("days query %q, want 7", days)
	}
	if len(trend) != 1 || trend[0].Count != 2 {
		t.Fatalf("unexpected trend: %+v", trend)
	}
}

func TestReports_SummaryDateFilter(t *testing.T) {
	var start, end string
	e := echo.New()
	e.GET("/v1/reports/analytics/summary", func(c echo.Context) error {
		start = c.QueryParam("start_date")
		end = c.QueryParam("end_date")
		return c.JSON(http.StatusOK, AnalyticsSummary{TotalDefects: 12, ActiveProjects: 3})
	})
	c := newTestClient(t, e)

	filter := &ReportFilter{
		StartDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2025, 9, 30, 0, 0, 0, 0, time.UTC),
	}
	summary, err := c.Reports.Summary(context.Background(), "tok", filter)
	if err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	if start != "2025-09-01T00:00:00Z" || end != "2025-09-30T00:00:00Z" {
		t.Fatalf("date filter not sent: start=%q end=%q", start, end)
	}
	if summary.TotalDefects != 12 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
}

func TestReports_SummaryWithoutFilter(t *testing.T) {
	var rawQuery string
	e := echo.New()
	e.GET("/v1/reports/analytics/summary", func(c echo.Context) error {
		rawQuery = c.Request().URL.RawQuery
		return c.JSON(http.StatusOK, AnalyticsSummary{})
	})
	c := newTestClient(t, e)

	if _, err := c.Reports.Summary(context.Background(), "tok", nil); err != nil {
		t.Fatalf("Summary returned error: %v", err)
	}
	if rawQuery != "" {
		t.Fatalf("expected empty query, got %q", rawQuery)
	}
}
