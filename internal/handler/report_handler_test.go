package handler

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/content-review-api/internal/dto"
	"github.com/noah-isme/content-review-api/internal/service"
	appErrors "github.com/noah-isme/content-review-api/pkg/errors"
)

type reportServiceStub struct {
	filter   dto.ReviewReportFilter
	actor    string
	kind     string
	exported dto.ReportFormat
}

func (s *reportServiceStub) report(kind string, filter dto.ReviewReportFilter, actorID string) *dto.ReviewReport {
	s.kind, s.filter, s.actor = kind, filter, actorID
	return &dto.ReviewReport{
		Title:       "Pages due for review",
		GeneratedAt: time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC),
		Rows:        []dto.ReviewReportRow{{PageID: "p-1", Title: "About"}},
	}
}

func (s *reportServiceStub) PagesDueForReview(_ context.Context, filter dto.ReviewReportFilter, actorID string) (*dto.ReviewReport, error) {
	return s.report("due", filter, actorID), nil
}

func (s *reportServiceStub) PagesWithoutSchedule(_ context.Context, filter dto.ReviewReportFilter, actorID string) (*dto.ReviewReport, error) {
	return s.report("unscheduled", filter, actorID), nil
}

func (s *reportServiceStub) Export(_ *dto.ReviewReport, format dto.ReportFormat) (*service.ReportFile, error) {
	s.exported = format
	if format != dto.ReportFormatCSV {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported report format")
	}
	return &service.ReportFile{Filename: "pages-due-for-review-2024-03-15.csv", ContentType: "text/csv", Data: []byte("Page name\nAbout\n")}, nil
}

func TestReportHandlerJSONBindsFilter(t *testing.T) {
	stub := &reportServiceStub{}
	c, w := testContext(http.MethodGet, "/reports/due-for-review?review_date_before=2024-03-31&only_mine=true&owner_name=ann", "")

	NewReportHandler(stub).DueForReview(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "due", stub.kind)
	assert.Equal(t, "u-1", stub.actor)
	assert.Equal(t, "2024-03-31", stub.filter.ReviewDateBefore)
	assert.True(t, stub.filter.OnlyMine)
	assert.Equal(t, "ann", stub.filter.OwnerName)
	assert.Empty(t, stub.exported)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestReportHandlerCSVDownload(t *testing.T) {
	stub := &reportServiceStub{}
	c, w := testContext(http.MethodGet, "/reports/without-schedule?format=csv", "")

	NewReportHandler(stub).WithoutSchedule(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "unscheduled", stub.kind)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="pages-due-for-review-2024-03-15.csv"`, w.Header().Get("Content-Disposition"))
	assert.Equal(t, "Page name\nAbout\n", w.Body.String())
}

func TestReportHandlerExportError(t *testing.T) {
	stub := &reportServiceStub{}
	c, w := testContext(http.MethodGet, "/reports/due-for-review?format=xml", "")

	NewReportHandler(stub).DueForReview(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, dto.ReportFormat("xml"), stub.exported)
}
