package dto

import "time"

// ReportFormat is the output format of a review report.
type ReportFormat string

const (
	ReportFormatJSON ReportFormat = "json"
	ReportFormatCSV  ReportFormat = "csv"
	ReportFormatPDF  ReportFormat = "pdf"
)

// ReviewReportFilter captures the query string of the review reports.
type ReviewReportFilter struct {
	ReviewDateAfter  string       `form:"review_date_after" json:"review_date_after,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ReviewDateBefore string       `form:"review_date_before" json:"review_date_before,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ShowVirtual      bool         `form:"show_virtual" json:"show_virtual,omitempty"`
	OwnerName        string       `form:"owner_name" json:"owner_name,omitempty"`
	OnlyMine         bool         `form:"only_mine" json:"only_mine,omitempty"`
	Format           ReportFormat `form:"format" json:"format,omitempty" validate:"omitempty,oneof=json csv pdf"`
}

// ReviewReportRow is one page in a review report.
type ReviewReportRow struct {
	PageID           string     `json:"page_id"`
	Title            string     `json:"title"`
	NextReviewDate   *time.Time `json:"next_review_date,omitempty"`
	OwnerNames       string     `json:"owner_names"`
	SettingsSource   string     `json:"settings_source"`
	ReviewPeriodDays int        `json:"review_period_days"`
	LastEditedByName string     `json:"last_edited_by_name"`
	LastReviewedAt   *time.Time `json:"last_reviewed_at,omitempty"`
	LastReviewer     string     `json:"last_reviewer,omitempty"`
}

// ReviewReport is the payload of a review report.
type ReviewReport struct {
	Title       string            `json:"title"`
	GeneratedAt time.Time         `json:"generated_at"`
	Rows        []ReviewReportRow `json:"rows"`
}
