package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/content-review-api/internal/dto"
	"github.com/noah-isme/content-review-api/internal/models"
	appErrors "github.com/noah-isme/content-review-api/pkg/errors"
	"github.com/noah-isme/content-review-api/pkg/response"
)

type reviewService interface {
	Status(ctx context.Context, pageID, actorID string) (*dto.ReviewStatus, error)
	SubmitReview(ctx context.Context, pageID, actorID string, req dto.SubmitReviewRequest) (*dto.SubmitReviewResponse, error)
	GetSettings(ctx context.Context, pageID string) (*dto.PageReviewSettings, error)
	UpdateSettings(ctx context.Context, pageID string, req dto.UpdatePageReviewSettingsRequest, actorID string) (*dto.PageReviewSettings, error)
}

// ReviewHandler exposes the per-page review endpoints.
type ReviewHandler struct {
	service reviewService
}

// NewReviewHandler builds a new handler.
func NewReviewHandler(service reviewService) *ReviewHandler {
	return &ReviewHandler{service: service}
}

// Status godoc
// @Summary Review status of a page
// @Tags Review
// @Produce json
// @Param id path string true "Page ID"
// @Success 200 {object} response.Envelope
// @Router /pages/{id}/review [get]
func (h *ReviewHandler) Status(c *gin.Context) {
	status, err := h.service.Status(c.Request.Context(), c.Param("id"), actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// Submit godoc
// @Summary Mark a page as reviewed
// @Tags Review
// @Accept json
// @Produce json
// @Param id path string true "Page ID"
// @Param payload body dto.SubmitReviewRequest false "Review note"
// @Success 201 {object} response.Envelope
// @Router /pages/{id}/review [post]
func (h *ReviewHandler) Submit(c *gin.Context) {
	var req dto.SubmitReviewRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review payload"))
			return
		}
	}
	result, err := h.service.SubmitReview(c.Request.Context(), c.Param("id"), actorID(c), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, result)
}

// GetSettings godoc
// @Summary Review settings of a page
// @Tags Review
// @Produce json
// @Param id path string true "Page ID"
// @Success 200 {object} response.Envelope
// @Router /pages/{id}/review-settings [get]
func (h *ReviewHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.GetSettings(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// UpdateSettings godoc
// @Summary Update review settings of a page
// @Tags Review
// @Accept json
// @Produce json
// @Param id path string true "Page ID"
// @Param payload body dto.UpdatePageReviewSettingsRequest true "Review settings"
// @Success 200 {object} response.Envelope
// @Router /pages/{id}/review-settings [put]
func (h *ReviewHandler) UpdateSettings(c *gin.Context) {
	var req dto.UpdatePageReviewSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid review settings payload"))
		return
	}
	settings, err := h.service.UpdateSettings(c.Request.Context(), c.Param("id"), req, actorID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Schedule godoc
// @Summary Review frequency presets
// @Tags Review
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /review/schedule [get]
func (h *ReviewHandler) Schedule(c *gin.Context) {
	response.JSON(c, http.StatusOK, models.SchedulePresets(), nil)
}
