package models

import "time"

const (
	DefaultReviewSubject = "Page(s) are due for content review"
	DefaultReviewBody    = "## Page(s) due for review\n\nThere are {{.PagesCount}} pages that are due for review today by you."
)

// SiteSettings is the site-wide fallback reached when inheritance climbs past the root page.
type SiteSettings struct {
	ReviewPeriodDays int       `db:"review_period_days" json:"review_period_days"`
	ReviewFrom       string    `db:"review_from" json:"review_from"`
	ReviewSubject    string    `db:"review_subject" json:"review_subject"`
	ReviewBody       string    `db:"review_body" json:"review_body"`
	OwnerUserIDs     []string  `db:"-" json:"owner_user_ids"`
	OwnerGroupIDs    []string  `db:"-" json:"owner_group_ids"`
	UpdatedAt        time.Time `db:"updated_at" json:"updated_at"`
}

// Subject returns the configured subject or the built-in default.
func (s *SiteSettings) Subject() string {
	if s == nil || s.ReviewSubject == "" {
		return DefaultReviewSubject
	}
	return s.ReviewSubject
}

// Body returns the configured body template or the built-in default.
func (s *SiteSettings) Body() string {
	if s == nil || s.ReviewBody == "" {
		return DefaultReviewBody
	}
	return s.ReviewBody
}

// From returns the configured sender, falling back to adminEmail.
func (s *SiteSettings) From(adminEmail string) string {
	if s == nil || s.ReviewFrom == "" {
		return adminEmail
	}
	return s.ReviewFrom
}
