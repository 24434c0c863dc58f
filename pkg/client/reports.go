package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Export formats accepted by the backend.
const (
	ExportCSV  = "csv"
	ExportXLSX = "xlsx"
)

// ReportFilter narrows an analytics report to a date window. Zero fields are
// omitted from the query.
type ReportFilter struct {
	StartDate time.Time
	EndDate   time.Time
}

func (f *ReportFilter) query() url.Values {
	q := url.Values{}
	if f == nil {
		return q
	}
	if !f.StartDate.IsZero() {
		q.Set("start_date", f.StartDate.Format(time.RFC3339))
	}
	if !f.EndDate.IsZero() {
		q.Set("end_date", f.EndDate.Format(time.RFC3339))
	}
	return q
}

// ReportsService covers analytics aggregates and the defect export.
type ReportsService struct {
	c *Client
}

// Summary returns top-line defect counts and completion percentage.
func (s *ReportsService) Summary(ctx context.Context, token string, filter *ReportFilter) (*AnalyticsSummary, error) {
	var summary AnalyticsSummary
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/reports/analytics/summary",
		query:  filter.query(),
		token:  token,
	}, &summary)
	if err != nil {
		return nil, err
	}
	return &summary, nil
}

// StatusDistribution returns defect counts bucketed by status.
func (s *ReportsService) StatusDistribution(ctx context.Context, token string, filter *ReportFilter) ([]DefectCountByStatus, error) {
	var dist []DefectCountByStatus
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/reports/analytics/status-distribution",
		query:  filter.query(),
		token:  token,
	}, &dist)
	if err != nil {
		return nil, err
	}
	return dist, nil
}

// PriorityDistribution returns defect counts bucketed by priority.
func (s *ReportsService) PriorityDistribution(ctx context.Context, token string, filter *ReportFilter) ([]DefectCountByPriority, error) {
	var dist []DefectCountByPriority
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/reports/analytics/priority-distribution",
		query:  filter.query(),
		token:  token,
	}, &dist)
	if err != nil {
		return nil, err
	}
	return dist, nil
}

// CreationTrend returns per-day defect creation counts over the trailing
// window. The backend default is 30 days; days <= 0 falls back to it.
func (s *ReportsService) CreationTrend(ctx context.Context, token string, days int) ([]DefectCreationTrendItem, error) {
	query := url.Values{}
	if days > 0 {
		query.Set("days", strconv.Itoa(days))
	}

	var trend []DefectCreationTrendItem
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/reports/analytics/creation-trend",
		query:  query,
		token:  token,
	}, &trend)
	if err != nil {
		return nil, err
	}
	return trend, nil
}

// ProjectPerformance returns per-project completion rates.
func (s *ReportsService) ProjectPerformance(ctx context.Context, token string, filter *ReportFilter) ([]ProjectPerformanceItem, error) {
	var perf []ProjectPerformanceItem
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/reports/analytics/project-performance",
		query:  filter.query(),
		token:  token,
	}, &perf)
	if err != nil {
		return nil, err
	}
	return perf, nil
}

// Export downloads the defect list as csv or xlsx. Successful responses are
// opaque bytes and bypass envelope normalization; error responses are JSON
// and still go through it.
func (s *ReportsService) Export(ctx context.Context, token, format string) ([]byte, error) {
	if format != ExportCSV && format != ExportXLSX {
		return nil, &ValidationError{Message: fmt.Sprintf("format must be %s or %s", ExportCSV, ExportXLSX)}
	}

	query := url.Values{}
	query.Set("format", format)

	var blob []byte
	err := s.c.do(ctx, request{
		method: http.MethodGet,
		path:   "/reports/defects/export",
		query:  query,
		token:  token,
		raw:    true,
	}, &blob)
	if err != nil {
		return nil, err
	}
	return blob, nil
}
