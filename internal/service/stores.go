package service

import (
	"context"
	"time"

	"github.com/noah-isme/content-review-api/internal/models"
)

// PageStore is the page tree as seen by the review engine.
type PageStore interface {
	FindByID(ctx context.Context, id string) (*models.Page, error)
	// Parent returns nil when page is a root.
	Parent(ctx context.Context, page *models.Page) (*models.Page, error)
	Exists(ctx context.Context, id string) (bool, error)
	ListAll(ctx context.Context) ([]models.Page, error)
	ListDue(ctx context.Context, day time.Time) ([]models.Page, error)
	Save(ctx context.Context, page *models.Page) error
}

// GroupStore exposes the group hierarchy and memberships.
type GroupStore interface {
	ExpandFamily(ctx context.Context, groupID string) ([]models.Group, error)
	MembersOf(ctx context.Context, groupIDs []string) ([]models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.Group, error)
}

// UserStore loads CMS members.
type UserStore interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
	FindByIDs(ctx context.Context, ids []string) ([]models.User, error)
}

// ReviewLogStore is the append-only review history.
type ReviewLogStore interface {
	Create(ctx context.Context, log *models.ReviewLog) error
	// Latest returns nil when the page has never been reviewed.
	Latest(ctx context.Context, pageID string) (*models.ReviewLog, error)
	ListByPage(ctx context.Context, pageID string, limit int) ([]models.ReviewLog, error)
}

// ReviewRecorder commits a submitted review: the page's new date and its log entry are
// written together or not at all.
type ReviewRecorder interface {
	RecordReview(ctx context.Context, page *models.Page, log *models.ReviewLog) error
}

// SiteSettingsStore persists the site-wide defaults.
type SiteSettingsStore interface {
	Get(ctx context.Context) (*models.SiteSettings, error)
	Save(ctx context.Context, settings *models.SiteSettings) error
}
