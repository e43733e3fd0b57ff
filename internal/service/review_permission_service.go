package service

import (
	"context"

	"github.com/noah-isme/content-review-api/internal/models"
)

// ContentReviewPermission lets a deployment decide per page who may review content.
// When registered it replaces the edit-permission fallback.
type ContentReviewPermission interface {
	CanReviewContent(ctx context.Context, page *models.Page, member *models.User) bool
}

// ReviewDecision is the outcome of evaluating a page for review.
type ReviewDecision struct {
	Reviewable bool
	Settings   models.EffectiveSettings
	Owners     []models.User
}

// ReviewPermissionService decides whether a page is due and who may review it.
type ReviewPermissionService struct {
	resolver *SettingsResolver
	owners   *OwnerResolver
	clock    Clock
	hook     ContentReviewPermission
}

// NewReviewPermissionService constructs the evaluator. hook may be nil.
func NewReviewPermissionService(resolver *SettingsResolver, owners *OwnerResolver, clock Clock, hook ContentReviewPermission) *ReviewPermissionService {
	return &ReviewPermissionService{resolver: resolver, owners: owners, clock: clockOrSystem(clock), hook: hook}
}

// CanBeReviewedBy reports whether page is due and member is one of its owners.
// A nil member asks only whether the page is due and has owners at all.
func (s *ReviewPermissionService) CanBeReviewedBy(ctx context.Context, cache *ReviewCache, page *models.Page, member *models.User) (bool, error) {
	decision, err := s.Evaluate(ctx, cache, page, member)
	if err != nil {
		return false, err
	}
	return decision.Reviewable, nil
}

// Evaluate is CanBeReviewedBy returning the resolved settings and owners as well.
func (s *ReviewPermissionService) Evaluate(ctx context.Context, cache *ReviewCache, page *models.Page, member *models.User) (ReviewDecision, error) {
	var decision ReviewDecision
	if page == nil || !page.HasReviewDate() {
		return decision, nil
	}
	today := models.DateOf(s.clock.Now())
	if models.DateOf(*page.NextReviewDate).After(today) {
		return decision, nil
	}

	cache = cacheOrNew(cache)
	settings, err := s.resolver.Resolve(ctx, cache, page)
	if err != nil {
		return decision, err
	}
	decision.Settings = settings
	if settings.Disabled() {
		return decision, nil
	}

	owners, err := s.owners.Resolve(ctx, cache, settings.OwnerUserIDs(), settings.OwnerGroupIDs())
	if err != nil {
		return decision, err
	}
	decision.Owners = owners
	if len(owners) == 0 {
		return decision, nil
	}
	if member == nil {
		decision.Reviewable = true
		return decision, nil
	}
	if s.hook != nil && !s.hook.CanReviewContent(ctx, page, member) {
		return decision, nil
	}
	for _, owner := range owners {
		if owner.ID == member.ID {
			decision.Reviewable = true
			break
		}
	}
	return decision, nil
}

// CanSubmitReview is the edit-style check: the hook when registered, else edit rights.
func (s *ReviewPermissionService) CanSubmitReview(ctx context.Context, page *models.Page, member *models.User) bool {
	if member == nil {
		return false
	}
	if s.hook != nil {
		return s.hook.CanReviewContent(ctx, page, member)
	}
	return member.CanEdit()
}

// CanUseReviewContent reports whether member may use the review action at all:
// either through CanSubmitReview or by being a due reviewer of page.
func (s *ReviewPermissionService) CanUseReviewContent(ctx context.Context, cache *ReviewCache, page *models.Page, member *models.User) (bool, error) {
	if s.CanSubmitReview(ctx, page, member) {
		return true, nil
	}
	if member == nil {
		return false, nil
	}
	return s.CanBeReviewedBy(ctx, cache, page, member)
}
