package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/noah-isme/content-review-api/internal/models"
)

// ReviewCache memoises group expansion, members, users and site settings for one
// request or one sweep. It is not safe for concurrent use and must not outlive its scope.
type ReviewCache struct {
	families map[string][]string
	members  map[string][]models.User
	users    map[string]*models.User
	site     *models.SiteSettings
}

// NewReviewCache returns an empty cache.
func NewReviewCache() *ReviewCache {
	return &ReviewCache{
		families: make(map[string][]string),
		members:  make(map[string][]models.User),
		users:    make(map[string]*models.User),
	}
}

func cacheOrNew(c *ReviewCache) *ReviewCache {
	if c == nil {
		return NewReviewCache()
	}
	return c
}

func (c *ReviewCache) siteSettings(ctx context.Context, store SiteSettingsStore) (*models.SiteSettings, error) {
	if c.site != nil {
		return c.site, nil
	}
	site, err := store.Get(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		site, err = &models.SiteSettings{}, nil
	}
	if err != nil {
		return nil, err
	}
	c.site = site
	return site, nil
}
