package dto

import (
	"time"

	"github.com/noah-isme/content-review-api/internal/models"
)

// ReviewStatus is the review panel shown for a page.
type ReviewStatus struct {
	PageID           string              `json:"page_id"`
	Title            string              `json:"title"`
	Policy           models.ReviewPolicy `json:"review_policy"`
	SettingsSource   string              `json:"settings_source"`
	ReviewPeriodDays int                 `json:"review_period_days"`
	ScheduleLabel    string              `json:"schedule_label"`
	NextReviewDate   *time.Time          `json:"next_review_date,omitempty"`
	Overdue          bool                `json:"overdue"`
	OwnerNames       string              `json:"owner_names"`
	CanReview        bool                `json:"can_review"`
	CanSubmit        bool                `json:"can_submit"`
	CanEditSettings  bool                `json:"can_edit_settings"`
	RecentReviews    []models.ReviewLog  `json:"recent_reviews"`
}

// SubmitReviewRequest is the payload for POST /pages/:id/review.
type SubmitReviewRequest struct {
	Note string `json:"note" validate:"max=4000"`
}

// SubmitReviewResponse reports the recorded log and the rescheduled date.
type SubmitReviewResponse struct {
	Log            models.ReviewLog `json:"log"`
	Rescheduled    bool             `json:"rescheduled"`
	NextReviewDate *time.Time       `json:"next_review_date,omitempty"`
}

// PageReviewSettings exposes the editable review fields of a page.
type PageReviewSettings struct {
	PageID           string              `json:"page_id"`
	Policy           models.ReviewPolicy `json:"review_policy"`
	ReviewPeriodDays int                 `json:"review_period_days"`
	NextReviewDate   *time.Time          `json:"next_review_date,omitempty"`
	OwnerUserIDs     []string            `json:"owner_user_ids"`
	OwnerGroupIDs    []string            `json:"owner_group_ids"`
	OwnerNames       string              `json:"owner_names"`
	LastEditedByName string              `json:"last_edited_by_name"`
	SettingsSource   string              `json:"settings_source"`
}

// UpdatePageReviewSettingsRequest describes payload for PUT /pages/:id/review-settings.
// NextReviewDate uses the YYYY-MM-DD layout; an empty string clears it.
type UpdatePageReviewSettingsRequest struct {
	Policy           models.ReviewPolicy `json:"review_policy" validate:"required,oneof=Inherit Disabled Custom"`
	ReviewPeriodDays int                 `json:"review_period_days" validate:"min=0"`
	NextReviewDate   string              `json:"next_review_date" validate:"omitempty,datetime=2006-01-02"`
	OwnerUserIDs     []string            `json:"owner_user_ids" validate:"omitempty,dive,required"`
	OwnerGroupIDs    []string            `json:"owner_group_ids" validate:"omitempty,dive,required"`
}
