package service

import (
	"context"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/content-review-api/internal/dto"
	"github.com/noah-isme/content-review-api/internal/models"
	appErrors "github.com/noah-isme/content-review-api/pkg/errors"
)

// SiteSettingsServiceConfig tunes runtime behaviour.
type SiteSettingsServiceConfig struct {
	AdminEmail string
}

// SiteSettingsService reads and updates the site-wide review defaults.
type SiteSettingsService struct {
	repo      SiteSettingsStore
	owners    *OwnerResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       SiteSettingsServiceConfig
}

// NewSiteSettingsService constructs a SiteSettingsService.
func NewSiteSettingsService(repo SiteSettingsStore, owners *OwnerResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger, cfg SiteSettingsServiceConfig) *SiteSettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SiteSettingsService{repo: repo, owners: owners, cache: cache, validator: validate, logger: logger, cfg: cfg}
}

// Get returns the stored defaults, or empty defaults when none were saved yet.
func (s *SiteSettingsService) Get(ctx context.Context) (*dto.SiteReviewSettings, error) {
	cache := NewReviewCache()
	site, err := cache.siteSettings(ctx, s.repo)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to get site review settings")
	}
	return s.toDTO(ctx, cache, site)
}

// Update replaces the site defaults. Only members allowed to edit review fields may call it.
func (s *SiteSettingsService) Update(ctx context.Context, req dto.UpdateSiteReviewSettingsRequest, actor *models.User) (*dto.SiteReviewSettings, error) {
	if actor == nil {
		return nil, appErrors.ErrUnauthorized
	}
	if !actor.CanEditReviewFields() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "insufficient permission to edit review settings")
	}
	req.ReviewFrom = strings.TrimSpace(req.ReviewFrom)
	req.ReviewSubject = strings.TrimSpace(req.ReviewSubject)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid site review settings payload")
	}
	if !models.IsSchedulePreset(req.ReviewPeriodDays) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "review_period_days must be one of the schedule presets")
	}

	site := &models.SiteSettings{
		ReviewPeriodDays: req.ReviewPeriodDays,
		ReviewFrom:       req.ReviewFrom,
		ReviewSubject:    req.ReviewSubject,
		ReviewBody:       req.ReviewBody,
		OwnerUserIDs:     uniqueIDs(req.OwnerUserIDs),
		OwnerGroupIDs:    uniqueIDs(req.OwnerGroupIDs),
	}
	if err := s.repo.Save(ctx, site); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update site review settings")
	}
	s.cache.InvalidateReports(ctx)
	s.logger.Info("site review settings updated",
		zap.String("actor_id", actor.ID),
		zap.Int("review_period_days", site.ReviewPeriodDays),
	)
	return s.toDTO(ctx, NewReviewCache(), site)
}

func (s *SiteSettingsService) toDTO(ctx context.Context, cache *ReviewCache, site *models.SiteSettings) (*dto.SiteReviewSettings, error) {
	names, err := s.owners.DescribeOwners(ctx, cache, site.OwnerUserIDs, site.OwnerGroupIDs)
	if err != nil {
		return nil, err
	}
	return &dto.SiteReviewSettings{
		ReviewPeriodDays: site.ReviewPeriodDays,
		ScheduleLabel:    models.ScheduleLabel(site.ReviewPeriodDays),
		ReviewFrom:       site.ReviewFrom,
		EffectiveFrom:    site.From(s.cfg.AdminEmail),
		ReviewSubject:    site.Subject(),
		ReviewBody:       site.Body(),
		OwnerUserIDs:     nonNil(site.OwnerUserIDs),
		OwnerGroupIDs:    nonNil(site.OwnerGroupIDs),
		OwnerNames:       names,
		UpdatedAt:        site.UpdatedAt,
	}, nil
}

// uniqueIDs trims and deduplicates ids keeping the first occurrence.
func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
