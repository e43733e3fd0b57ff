package models

import (
	"strings"
	"time"
)

// UserRole represents the CMS roles relevant to content review.
type UserRole string

const (
	RoleAdmin  UserRole = "ADMIN"
	RoleEditor UserRole = "EDITOR"
	RoleAuthor UserRole = "AUTHOR"
)

// User represents a CMS member stored in the users table.
type User struct {
	ID        string    `db:"id" json:"id"`
	Email     string    `db:"email" json:"email"`
	FirstName string    `db:"first_name" json:"first_name"`
	Surname   string    `db:"surname" json:"surname"`
	Role      UserRole  `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// Name returns the display name, falling back to the email address.
func (u *User) Name() string {
	name := strings.TrimSpace(u.FirstName + " " + u.Surname)
	if name == "" {
		return u.Email
	}
	return name
}

// CanEdit reports whether the member may edit pages.
func (u *User) CanEdit() bool {
	return u != nil && (u.Role == RoleAdmin || u.Role == RoleEditor)
}

// CanEditReviewFields reports whether the member may change review settings.
func (u *User) CanEditReviewFields() bool {
	return u != nil && u.Role == RoleAdmin
}

// Group is a security group; groups nest through ParentID.
type Group struct {
	ID        string    `db:"id" json:"id"`
	ParentID  *string   `db:"parent_id" json:"parent_id,omitempty"`
	Title     string    `db:"title" json:"title"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Breadcrumbs is the "Parent > Child" path, only populated by FindByIDs.
	Breadcrumbs string `db:"breadcrumbs" json:"breadcrumbs,omitempty"`
}
