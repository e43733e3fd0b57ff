package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/content-review-api/internal/models"
	appErrors "github.com/noah-isme/content-review-api/pkg/errors"
)

// ReviewScheduleService computes and advances next review dates.
//
// A parent's date change is never pushed to its descendants. Inherit pages pick up
// a date the next time they are saved without one.
type ReviewScheduleService struct {
	pages    PageStore
	resolver *SettingsResolver
	owners   *OwnerResolver
	clock    Clock
	logger   *zap.Logger
}

// NewReviewScheduleService constructs the service.
func NewReviewScheduleService(pages PageStore, resolver *SettingsResolver, owners *OwnerResolver, clock Clock, logger *zap.Logger) *ReviewScheduleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewScheduleService{pages: pages, resolver: resolver, owners: owners, clock: clockOrSystem(clock), logger: logger}
}

// ComputeReviewDate returns baseline's explicit date when set, otherwise today plus the
// settings period, otherwise nil.
func (s *ReviewScheduleService) ComputeReviewDate(settings models.EffectiveSettings, baseline *models.Page) *time.Time {
	return computeReviewDate(settings, baseline, s.clock.Now())
}

func computeReviewDate(settings models.EffectiveSettings, baseline *models.Page, now time.Time) *time.Time {
	if baseline.HasReviewDate() {
		d := models.DateOf(*baseline.NextReviewDate)
		return &d
	}
	if period := settings.PeriodDays(); period > 0 {
		d := models.AddDays(now, period)
		return &d
	}
	return nil
}

// AdvanceReviewDate moves page to its next review date and persists it. It reports
// whether a new date was scheduled; disabled or unscheduled pages get their date cleared.
func (s *ReviewScheduleService) AdvanceReviewDate(ctx context.Context, cache *ReviewCache, page *models.Page) (bool, error) {
	return s.advanceAt(ctx, cache, page, s.clock.Now())
}

func (s *ReviewScheduleService) advanceAt(ctx context.Context, cache *ReviewCache, page *models.Page, now time.Time) (bool, error) {
	scheduled, settings, err := s.nextAfterReview(ctx, cache, page, now)
	if err != nil {
		return false, err
	}

	if err := s.pages.Save(ctx, page); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, appErrors.Clone(appErrors.ErrNotFound, "page not found")
		}
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save review date")
	}
	s.logger.Debug("review date advanced",
		zap.String("page_id", page.ID),
		zap.Bool("scheduled", scheduled),
		zap.String("settings", string(settings.Kind)),
	)
	return scheduled, nil
}

// nextAfterReview sets the date that follows a review on page without persisting it.
func (s *ReviewScheduleService) nextAfterReview(ctx context.Context, cache *ReviewCache, page *models.Page, now time.Time) (bool, models.EffectiveSettings, error) {
	settings, err := s.resolver.Resolve(ctx, cache, page)
	if err != nil {
		return false, settings, err
	}
	page.NextReviewDate = nil
	if period := settings.PeriodDays(); period > 0 {
		next := models.AddDays(now, period)
		page.NextReviewDate = &next
		return true, settings, nil
	}
	return false, settings, nil
}

// ApplyChanges runs the save-time side effects on after, given the stored state before
// (nil for a page that had no review fields yet). It mutates after but does not persist it.
func (s *ReviewScheduleService) ApplyChanges(ctx context.Context, cache *ReviewCache, before, after *models.Page) error {
	cache = cacheOrNew(cache)
	now := s.clock.Now()

	policyChanged := before == nil || before.Policy != after.Policy
	if policyChanged {
		switch after.Policy {
		case models.ReviewPolicyDisabled:
			after.NextReviewDate = nil
		case models.ReviewPolicyCustom:
			if !after.HasReviewDate() {
				after.NextReviewDate = computeReviewDate(models.CustomSettings(after), after, now)
			}
		default:
			if err := s.defaultInheritedDate(ctx, cache, after, now); err != nil {
				return err
			}
		}
	}

	if after.Policy == models.ReviewPolicyInherit && !after.HasReviewDate() {
		if err := s.defaultInheritedDate(ctx, cache, after, now); err != nil {
			return err
		}
	}

	// A stored page whose own period changed restarts from now, whatever its policy.
	if before != nil && before.ReviewPeriodDays != after.ReviewPeriodDays {
		next := models.AddDays(now, after.ReviewPeriodDays)
		after.NextReviewDate = &next
	}

	if after.NextReviewDate != nil {
		d := models.DateOf(*after.NextReviewDate)
		after.NextReviewDate = &d
	}

	settings, err := s.resolver.Resolve(ctx, cache, after)
	if err != nil {
		return err
	}
	names, err := s.owners.DescribeOwners(ctx, cache, settings.OwnerUserIDs(), settings.OwnerGroupIDs())
	if err != nil {
		return err
	}
	after.OwnerNames = names
	return nil
}

// defaultInheritedDate gives an Inherit page a date from the settings it inherits:
// a Custom ancestor's own date (or its period), or the site period.
func (s *ReviewScheduleService) defaultInheritedDate(ctx context.Context, cache *ReviewCache, page *models.Page, now time.Time) error {
	if page.HasReviewDate() {
		return nil
	}
	settings, err := s.resolver.Resolve(ctx, cache, page)
	if err != nil {
		return err
	}
	switch settings.Kind {
	case models.SettingsCustom:
		page.NextReviewDate = computeReviewDate(settings, settings.Page, now)
	case models.SettingsSiteDefault:
		page.NextReviewDate = computeReviewDate(settings, page, now)
	default:
		page.NextReviewDate = nil
	}
	return nil
}
