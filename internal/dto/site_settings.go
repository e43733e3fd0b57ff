package dto

import "time"

// SiteReviewSettings represents the site-wide review defaults exposed via API.
type SiteReviewSettings struct {
	ReviewPeriodDays int       `json:"review_period_days"`
	ScheduleLabel    string    `json:"schedule_label"`
	ReviewFrom       string    `json:"review_from"`
	EffectiveFrom    string    `json:"effective_from"`
	ReviewSubject    string    `json:"review_subject"`
	ReviewBody       string    `json:"review_body"`
	OwnerUserIDs     []string  `json:"owner_user_ids"`
	OwnerGroupIDs    []string  `json:"owner_group_ids"`
	OwnerNames       string    `json:"owner_names"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// UpdateSiteReviewSettingsRequest describes payload for PUT /site/review-settings.
type UpdateSiteReviewSettingsRequest struct {
	ReviewPeriodDays int      `json:"review_period_days" validate:"min=0"`
	ReviewFrom       string   `json:"review_from" validate:"omitempty,email"`
	ReviewSubject    string   `json:"review_subject" validate:"max=255"`
	ReviewBody       string   `json:"review_body"`
	OwnerUserIDs     []string `json:"owner_user_ids" validate:"omitempty,dive,required"`
	OwnerGroupIDs    []string `json:"owner_group_ids" validate:"omitempty,dive,required"`
}
