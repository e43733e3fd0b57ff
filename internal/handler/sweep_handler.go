package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/content-review-api/internal/models"
	"github.com/noah-isme/content-review-api/pkg/response"
)

type sweepService interface {
	Trigger(source string) (string, error)
	LastReport(ctx context.Context) (*models.SweepReport, error)
}

// SweepHandler exposes manual sweep triggering and the last sweep report.
type SweepHandler struct {
	sweeps sweepService
}

// NewSweepHandler constructs handler.
func NewSweepHandler(sweeps sweepService) *SweepHandler {
	return &SweepHandler{sweeps: sweeps}
}

// Trigger godoc
// @Summary Queue a review notification sweep
// @Tags Sweeps
// @Produce json
// @Success 202 {object} response.Envelope
// @Router /sweeps [post]
func (h *SweepHandler) Trigger(c *gin.Context) {
	jobID, err := h.sweeps.Trigger("api:" + actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Accepted(c, gin.H{"job_id": jobID})
}

// Last godoc
// @Summary Last review sweep report
// @Tags Sweeps
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /sweeps/last [get]
func (h *SweepHandler) Last(c *gin.Context) {
	report, err := h.sweeps.LastReport(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, report, nil)
}
