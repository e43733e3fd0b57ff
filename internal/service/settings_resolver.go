package service

import (
	"context"
	"fmt"

	"github.com/noah-isme/content-review-api/internal/models"
	appErrors "github.com/noah-isme/content-review-api/pkg/errors"
)

// DefaultMaxDepth bounds the ancestor walk when no limit is configured.
const DefaultMaxDepth = 64

// SettingsResolver finds the settings that govern a page by walking up its ancestors.
type SettingsResolver struct {
	pages    PageStore
	site     SiteSettingsStore
	maxDepth int
}

// NewSettingsResolver constructs a resolver. maxDepth <= 0 uses DefaultMaxDepth.
func NewSettingsResolver(pages PageStore, site SiteSettingsStore, maxDepth int) *SettingsResolver {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &SettingsResolver{pages: pages, site: site, maxDepth: maxDepth}
}

// Resolve returns Custom(page or ancestor), Disabled, or SiteDefault. A walk that exceeds
// the depth bound or revisits a page fails with ErrConfiguration. Nothing is written.
func (r *SettingsResolver) Resolve(ctx context.Context, cache *ReviewCache, page *models.Page) (models.EffectiveSettings, error) {
	if page == nil {
		return models.DisabledSettings(), nil
	}
	switch page.Policy {
	case models.ReviewPolicyCustom:
		return models.CustomSettings(page), nil
	case models.ReviewPolicyDisabled:
		return models.DisabledSettings(), nil
	}

	cache = cacheOrNew(cache)
	visited := map[string]struct{}{page.ID: {}}
	current := page
	for depth := 0; depth < r.maxDepth; depth++ {
		parent, err := r.pages.Parent(ctx, current)
		if err != nil {
			return models.EffectiveSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load parent page")
		}
		if parent == nil {
			site, err := cache.siteSettings(ctx, r.site)
			if err != nil {
				return models.EffectiveSettings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load site review settings")
			}
			return models.SiteDefaultSettings(site), nil
		}
		if _, seen := visited[parent.ID]; seen {
			return models.EffectiveSettings{}, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("page %s has a cyclic ancestry through %s", page.ID, parent.ID))
		}
		visited[parent.ID] = struct{}{}

		switch parent.Policy {
		case models.ReviewPolicyCustom:
			return models.CustomSettings(parent), nil
		case models.ReviewPolicyDisabled:
			return models.DisabledSettings(), nil
		}
		current = parent
	}
	return models.EffectiveSettings{}, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("page %s is nested deeper than %d levels", page.ID, r.maxDepth))
}
