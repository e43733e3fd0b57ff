package models

import "time"

// NoCommentsNote is stored when a reviewer submits without a note.
const NoCommentsNote = "(no comments)"

// ReviewLog records a single "mark as reviewed" action.
type ReviewLog struct {
	ID           string    `db:"id" json:"id"`
	PageID       string    `db:"page_id" json:"page_id"`
	ReviewerID   string    `db:"reviewer_id" json:"reviewer_id"`
	ReviewerName string    `db:"reviewer_name" json:"reviewer_name,omitempty"`
	Note         string    `db:"note" json:"note"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}
