package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/content-review-api/internal/dto"
	"github.com/noah-isme/content-review-api/internal/service"
	appErrors "github.com/noah-isme/content-review-api/pkg/errors"
	"github.com/noah-isme/content-review-api/pkg/response"
)

type reportService interface {
	PagesDueForReview(ctx context.Context, filter dto.ReviewReportFilter, actorID string) (*dto.ReviewReport, error)
	PagesWithoutSchedule(ctx context.Context, filter dto.ReviewReportFilter, actorID string) (*dto.ReviewReport, error)
	Export(report *dto.ReviewReport, format dto.ReportFormat) (*service.ReportFile, error)
}

type reportBuilder func(ctx context.Context, filter dto.ReviewReportFilter, actorID string) (*dto.ReviewReport, error)

// ReportHandler exposes the review reports.
type ReportHandler struct {
	reports reportService
}

// NewReportHandler constructs handler.
func NewReportHandler(reports reportService) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// DueForReview godoc
// @Summary Pages due for review
// @Tags Reports
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param review_date_after query string false "Due on or after (YYYY-MM-DD)"
// @Param review_date_before query string false "Due on or before (YYYY-MM-DD)"
// @Param show_virtual query bool false "Include virtual pages"
// @Param owner_name query string false "Owner name contains"
// @Param only_mine query bool false "Only pages owned by the caller"
// @Param format query string false "json, csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /reports/due-for-review [get]
func (h *ReportHandler) DueForReview(c *gin.Context) {
	h.serve(c, h.reports.PagesDueForReview)
}

// WithoutSchedule godoc
// @Summary Pages without a review schedule
// @Tags Reports
// @Produce json
// @Produce text/csv
// @Produce application/pdf
// @Param show_virtual query bool false "Include virtual pages"
// @Param owner_name query string false "Owner name contains"
// @Param format query string false "json, csv or pdf"
// @Success 200 {object} response.Envelope
// @Router /reports/without-schedule [get]
func (h *ReportHandler) WithoutSchedule(c *gin.Context) {
	h.serve(c, h.reports.PagesWithoutSchedule)
}

func (h *ReportHandler) serve(c *gin.Context, build reportBuilder) {
	var filter dto.ReviewReportFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid report filter"))
		return
	}
	report, err := build(c.Request.Context(), filter, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	if filter.Format == "" || filter.Format == dto.ReportFormatJSON {
		response.JSON(c, http.StatusOK, report, map[string]interface{}{"total": len(report.Rows)})
		return
	}
	file, err := h.reports.Export(report, filter.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}
