package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/content-review-api/internal/dto"
	"github.com/noah-isme/content-review-api/internal/models"
	appErrors "github.com/noah-isme/content-review-api/pkg/errors"
)

const recentReviewLimit = 10

// ReviewService serves the interactive review panel: status, "mark as reviewed" and
// per-page review settings.
type ReviewService struct {
	pages       PageStore
	users       UserStore
	logs        ReviewLogStore
	recorder    ReviewRecorder
	resolver    *SettingsResolver
	owners      *OwnerResolver
	schedule    *ReviewScheduleService
	permissions *ReviewPermissionService
	cache       *CacheService
	validator   *validator.Validate
	clock       Clock
	logger      *zap.Logger
}

// NewReviewService constructs a ReviewService.
func NewReviewService(
	pages PageStore,
	users UserStore,
	logs ReviewLogStore,
	recorder ReviewRecorder,
	resolver *SettingsResolver,
	owners *OwnerResolver,
	schedule *ReviewScheduleService,
	permissions *ReviewPermissionService,
	cache *CacheService,
	validate *validator.Validate,
	clock Clock,
	logger *zap.Logger,
) *ReviewService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReviewService{
		pages:       pages,
		users:       users,
		logs:        logs,
		recorder:    recorder,
		resolver:    resolver,
		owners:      owners,
		schedule:    schedule,
		permissions: permissions,
		cache:       cache,
		validator:   validate,
		clock:       clockOrSystem(clock),
		logger:      logger,
	}
}

// Status describes the review state of a page as seen by actorID.
func (s *ReviewService) Status(ctx context.Context, pageID, actorID string) (*dto.ReviewStatus, error) {
	page, err := s.loadPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	actor, err := s.loadMember(ctx, actorID)
	if err != nil {
		return nil, err
	}

	cache := NewReviewCache()
	settings, err := s.resolver.Resolve(ctx, cache, page)
	if err != nil {
		return nil, err
	}
	canReview, err := s.permissions.CanBeReviewedBy(ctx, cache, page, actor)
	if err != nil {
		return nil, err
	}
	names, err := s.owners.DescribeOwners(ctx, cache, settings.OwnerUserIDs(), settings.OwnerGroupIDs())
	if err != nil {
		return nil, err
	}
	logs, err := s.logs.ListByPage(ctx, page.ID, recentReviewLimit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list review logs")
	}
	if logs == nil {
		logs = []models.ReviewLog{}
	}

	today := models.DateOf(s.clock.Now())
	return &dto.ReviewStatus{
		PageID:           page.ID,
		Title:            page.Title,
		Policy:           page.Policy,
		SettingsSource:   settings.Source(page),
		ReviewPeriodDays: settings.PeriodDays(),
		ScheduleLabel:    models.ScheduleLabel(settings.PeriodDays()),
		NextReviewDate:   page.NextReviewDate,
		Overdue:          page.HasReviewDate() && !models.DateOf(*page.NextReviewDate).After(today),
		OwnerNames:       names,
		CanReview:        canReview,
		CanSubmit:        s.permissions.CanSubmitReview(ctx, page, actor),
		CanEditSettings:  actor.CanEditReviewFields(),
		RecentReviews:    logs,
	}, nil
}

// SubmitReview marks a page as reviewed by actorID: the note is logged and the next
// review date advanced in one write. Nothing is written when the page or member is
// unknown, the member may not review the page, or the write fails.
func (s *ReviewService) SubmitReview(ctx context.Context, pageID, actorID string, req dto.SubmitReviewRequest) (*dto.SubmitReviewResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review payload")
	}
	page, err := s.loadPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	actor, err := s.loadMember(ctx, actorID)
	if err != nil {
		return nil, err
	}

	cache := NewReviewCache()
	allowed, err := s.permissions.CanUseReviewContent(ctx, cache, page, actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "you cannot review this page")
	}

	log := s.newLog(page.ID, actor, req.Note)
	scheduled, _, err := s.schedule.nextAfterReview(ctx, cache, page, log.CreatedAt)
	if err != nil {
		return nil, err
	}
	if err := s.recorder.RecordReview(ctx, page, log); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "page not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record review")
	}
	s.cache.InvalidateReports(ctx)

	s.logger.Info("page reviewed",
		zap.String("page_id", page.ID),
		zap.String("reviewer_id", actor.ID),
		zap.Bool("rescheduled", scheduled),
	)
	return &dto.SubmitReviewResponse{Log: *log, Rescheduled: scheduled, NextReviewDate: page.NextReviewDate}, nil
}

// AddReviewNote appends a review log entry without touching the schedule. An empty
// note is stored as models.NoCommentsNote.
func (s *ReviewService) AddReviewNote(ctx context.Context, pageID, reviewerID, note string) (*models.ReviewLog, error) {
	exists, err := s.pages.Exists(ctx, pageID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check page")
	}
	if !exists {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "page not found")
	}
	reviewer, err := s.loadMember(ctx, reviewerID)
	if err != nil {
		return nil, err
	}
	log := s.newLog(pageID, reviewer, note)
	if err := s.logs.Create(ctx, log); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to record review")
	}
	return log, nil
}

// newLog builds a log entry; an empty note becomes models.NoCommentsNote.
func (s *ReviewService) newLog(pageID string, reviewer *models.User, note string) *models.ReviewLog {
	note = strings.TrimSpace(note)
	if note == "" {
		note = models.NoCommentsNote
	}
	return &models.ReviewLog{
		PageID:       pageID,
		ReviewerID:   reviewer.ID,
		ReviewerName: reviewer.Name(),
		Note:         note,
		CreatedAt:    s.clock.Now(),
	}
}

// GetSettings returns the editable review fields of a page.
func (s *ReviewService) GetSettings(ctx context.Context, pageID string) (*dto.PageReviewSettings, error) {
	page, err := s.loadPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	settings, err := s.resolver.Resolve(ctx, NewReviewCache(), page)
	if err != nil {
		return nil, err
	}
	return toPageSettingsDTO(page, settings), nil
}

// UpdateSettings saves new review fields for a page and applies the scheduling side effects.
func (s *ReviewService) UpdateSettings(ctx context.Context, pageID string, req dto.UpdatePageReviewSettingsRequest, actorID string) (*dto.PageReviewSettings, error) {
	actor, err := s.loadMember(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.CanEditReviewFields() {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "insufficient permission to edit review settings")
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review settings payload")
	}
	if !models.IsSchedulePreset(req.ReviewPeriodDays) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "review_period_days must be one of the schedule presets")
	}

	before, err := s.loadPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	after := before.Clone()
	after.Policy = req.Policy
	after.ReviewPeriodDays = req.ReviewPeriodDays
	after.OwnerUserIDs = uniqueIDs(req.OwnerUserIDs)
	after.OwnerGroupIDs = uniqueIDs(req.OwnerGroupIDs)
	after.NextReviewDate = nil
	if req.NextReviewDate != "" {
		next, err := time.Parse("2006-01-02", req.NextReviewDate)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid next_review_date")
		}
		after.NextReviewDate = &next
	}
	after.LastEditedByName = actor.Name()

	cache := NewReviewCache()
	if err := s.schedule.ApplyChanges(ctx, cache, before, after); err != nil {
		return nil, err
	}
	if err := s.pages.Save(ctx, after); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "page not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save review settings")
	}
	s.cache.InvalidateReports(ctx)

	settings, err := s.resolver.Resolve(ctx, cache, after)
	if err != nil {
		return nil, err
	}
	s.logger.Info("page review settings updated",
		zap.String("page_id", after.ID),
		zap.String("actor_id", actor.ID),
		zap.String("policy", string(after.Policy)),
	)
	return toPageSettingsDTO(after, settings), nil
}

func (s *ReviewService) loadPage(ctx context.Context, id string) (*models.Page, error) {
	page, err := s.pages.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "page not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load page")
	}
	return page, nil
}

func (s *ReviewService) loadMember(ctx context.Context, id string) (*models.User, error) {
	if id == "" {
		return nil, appErrors.ErrUnauthorized
	}
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "member not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load member")
	}
	return user, nil
}

func toPageSettingsDTO(page *models.Page, settings models.EffectiveSettings) *dto.PageReviewSettings {
	return &dto.PageReviewSettings{
		PageID:           page.ID,
		Policy:           page.Policy,
		ReviewPeriodDays: page.ReviewPeriodDays,
		NextReviewDate:   page.NextReviewDate,
		OwnerUserIDs:     nonNil(page.OwnerUserIDs),
		OwnerGroupIDs:    nonNil(page.OwnerGroupIDs),
		OwnerNames:       page.OwnerNames,
		LastEditedByName: page.LastEditedByName,
		SettingsSource:   settings.Source(page),
	}
}
