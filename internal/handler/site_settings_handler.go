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

type siteSettingsService interface {
	Get(ctx context.Context) (*dto.SiteReviewSettings, error)
	Update(ctx context.Context, req dto.UpdateSiteReviewSettingsRequest, actor *models.User) (*dto.SiteReviewSettings, error)
}

// SiteSettingsHandler exposes the site-wide review defaults.
type SiteSettingsHandler struct {
	service siteSettingsService
}

// NewSiteSettingsHandler builds a new handler.
func NewSiteSettingsHandler(service siteSettingsService) *SiteSettingsHandler {
	return &SiteSettingsHandler{service: service}
}

// Get godoc
// @Summary Site review defaults
// @Tags Site
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /site/review-settings [get]
func (h *SiteSettingsHandler) Get(c *gin.Context) {
	settings, err := h.service.Get(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}

// Update godoc
// @Summary Update site review defaults
// @Tags Site
// @Accept json
// @Produce json
// @Param payload body dto.UpdateSiteReviewSettingsRequest true "Site review settings"
// @Success 200 {object} response.Envelope
// @Router /site/review-settings [put]
func (h *SiteSettingsHandler) Update(c *gin.Context) {
	var req dto.UpdateSiteReviewSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid site settings payload"))
		return
	}
	settings, err := h.service.Update(c.Request.Context(), req, actorFromClaims(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, settings, nil)
}
