package models

import "time"

// ReviewPolicy controls where a page takes its review settings from.
type ReviewPolicy string

const (
	ReviewPolicyInherit  ReviewPolicy = "Inherit"
	ReviewPolicyDisabled ReviewPolicy = "Disabled"
	ReviewPolicyCustom   ReviewPolicy = "Custom"
)

// Valid reports whether p is one of the known policies.
func (p ReviewPolicy) Valid() bool {
	switch p {
	case ReviewPolicyInherit, ReviewPolicyDisabled, ReviewPolicyCustom:
		return true
	default:
		return false
	}
}

// Page is a node of the CMS page tree together with its review settings.
type Page struct {
	ID               string       `db:"id" json:"id"`
	ParentID         *string      `db:"parent_id" json:"parent_id,omitempty"`
	Title            string       `db:"title" json:"title"`
	URLSegment       string       `db:"url_segment" json:"url_segment"`
	IsVirtual        bool         `db:"is_virtual" json:"is_virtual"`
	SortOrder        int          `db:"sort_order" json:"sort_order"`
	Policy           ReviewPolicy `db:"review_policy" json:"review_policy"`
	ReviewPeriodDays int          `db:"review_period_days" json:"review_period_days"`
	NextReviewDate   *time.Time   `db:"next_review_date" json:"next_review_date,omitempty"`
	LastEditedByName string       `db:"last_edited_by_name" json:"last_edited_by_name"`
	OwnerNames       string       `db:"owner_names" json:"owner_names"`
	OwnerUserIDs     []string     `db:"-" json:"owner_user_ids"`
	OwnerGroupIDs    []string     `db:"-" json:"owner_group_ids"`
	CreatedAt        time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time    `db:"updated_at" json:"updated_at"`
}

// IsRoot reports whether the page sits at the top of the tree.
func (p *Page) IsRoot() bool {
	return p.ParentID == nil || *p.ParentID == ""
}

// HasReviewDate reports whether an explicit next review date is set.
func (p *Page) HasReviewDate() bool {
	return p != nil && p.NextReviewDate != nil && !p.NextReviewDate.IsZero()
}

// Clone returns a deep copy so callers can diff before/after states.
func (p *Page) Clone() *Page {
	if p == nil {
		return nil
	}
	c := *p
	if p.ParentID != nil {
		parent := *p.ParentID
		c.ParentID = &parent
	}
	if p.NextReviewDate != nil {
		next := *p.NextReviewDate
		c.NextReviewDate = &next
	}
	c.OwnerUserIDs = append([]string(nil), p.OwnerUserIDs...)
	c.OwnerGroupIDs = append([]string(nil), p.OwnerGroupIDs...)
	return &c
}
