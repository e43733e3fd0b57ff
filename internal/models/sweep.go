package models

import "time"

// SweepReport summarises one run of the overdue notification sweep.
type SweepReport struct {
	RunID             string         `json:"run_id"`
	StartedAt         time.Time      `json:"started_at"`
	FinishedAt        time.Time      `json:"finished_at"`
	Candidates        int            `json:"candidates"`
	SkippedReviewed   int            `json:"skipped_reviewed"`
	Ineligible        int            `json:"ineligible"`
	NotifiedOwners    int            `json:"notified_owners"`
	NotifiedPages     int            `json:"notified_pages"`
	InvalidRecipients []OwnerFailure `json:"invalid_recipients,omitempty"`
	DeliveryErrors    []OwnerFailure `json:"delivery_errors,omitempty"`
	PageErrors        []PageFailure  `json:"page_errors,omitempty"`
}

// OwnerFailure records an owner whose notification was skipped.
type OwnerFailure struct {
	OwnerID string   `json:"owner_id"`
	Email   string   `json:"email"`
	PageIDs []string `json:"page_ids"`
	Reason  string   `json:"reason"`
}

// PageFailure records a page that could not be processed.
type PageFailure struct {
	PageID string `json:"page_id"`
	Reason string `json:"reason"`
}

// Failed reports whether any isolated failure was recorded.
func (r *SweepReport) Failed() bool {
	return len(r.InvalidRecipients) > 0 || len(r.DeliveryErrors) > 0 || len(r.PageErrors) > 0
}
