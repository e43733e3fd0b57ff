package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/content-review-api/internal/models"
	appErrors "github.com/noah-isme/content-review-api/pkg/errors"
)

// Notification is one rendered reminder for one owner covering all of their due pages.
type Notification struct {
	From    string
	Owner   models.User
	Pages   []models.Page
	Subject string
	Body    string
	Text    string
}

// Notifier delivers review reminders.
type Notifier interface {
	Send(ctx context.Context, n Notification) error
}

// EmailValidator checks address syntax.
type EmailValidator interface {
	IsValid(address string) bool
}

// NotificationConfig carries the sweep's static inputs.
type NotificationConfig struct {
	AdminEmail string
}

// NotificationService runs the daily overdue sweep.
type NotificationService struct {
	pages       PageStore
	logs        ReviewLogStore
	site        SiteSettingsStore
	schedule    *ReviewScheduleService
	permissions *ReviewPermissionService
	renderer    *EmailRenderer
	notifier    Notifier
	validator   EmailValidator
	metrics     *MetricsService
	clock       Clock
	cfg         NotificationConfig
	logger      *zap.Logger
}

// NewNotificationService wires the sweep.
func NewNotificationService(
	pages PageStore,
	logs ReviewLogStore,
	site SiteSettingsStore,
	schedule *ReviewScheduleService,
	permissions *ReviewPermissionService,
	renderer *EmailRenderer,
	notifier Notifier,
	validator EmailValidator,
	metrics *MetricsService,
	clock Clock,
	cfg NotificationConfig,
	logger *zap.Logger,
) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if renderer == nil {
		renderer = NewEmailRenderer("")
	}
	return &NotificationService{
		pages:       pages,
		logs:        logs,
		site:        site,
		schedule:    schedule,
		permissions: permissions,
		renderer:    renderer,
		notifier:    notifier,
		validator:   validator,
		metrics:     metrics,
		clock:       clockOrSystem(clock),
		cfg:         cfg,
		logger:      logger,
	}
}

// RunDailySweep loads every page due by today and sweeps them.
func (s *NotificationService) RunDailySweep(ctx context.Context) (*models.SweepReport, error) {
	now := s.clock.Now()
	pages, err := s.pages.ListDue(ctx, models.DateOf(now))
	if err != nil {
		s.metrics.ObserveSweep(nil, 0)
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pages due for review")
	}
	return s.Sweep(ctx, pages, now)
}

type ownerBucket struct {
	owner models.User
	pages []models.Page
}

// Sweep notifies the owners of every overdue page in pages, one notification per owner.
// Pages already reviewed since their due date are advanced instead. Failures for a
// single page or owner are recorded on the report; only an unusable sender aborts.
func (s *NotificationService) Sweep(ctx context.Context, pages []models.Page, now time.Time) (*models.SweepReport, error) {
	start := time.Now()
	report := &models.SweepReport{RunID: uuid.NewString(), StartedAt: now}
	cache := NewReviewCache()
	log := s.logger.With(zap.String("run_id", report.RunID))

	site, err := cache.siteSettings(ctx, s.site)
	if err != nil {
		s.metrics.ObserveSweep(nil, time.Since(start))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load site review settings")
	}
	from := site.From(s.cfg.AdminEmail)
	if !s.validator.IsValid(from) {
		s.metrics.ObserveSweep(nil, time.Since(start))
		return nil, appErrors.Clone(appErrors.ErrConfiguration, fmt.Sprintf("review sender %q is not a valid email address", from))
	}

	log.Info("review sweep started", zap.Int("pages", len(pages)), zap.Time("now", now))

	today := models.DateOf(now)
	var order []string
	buckets := make(map[string]*ownerBucket)

	for i := range pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := pages[i]
		if !page.HasReviewDate() || models.DateOf(*page.NextReviewDate).After(today) {
			continue
		}
		report.Candidates++

		reviewed, err := s.reviewedSinceDue(ctx, &page)
		if err != nil {
			s.pageFailed(log, report, page.ID, err)
			continue
		}
		if reviewed {
			if _, err := s.schedule.advanceAt(ctx, cache, &page, now); err != nil {
				s.pageFailed(log, report, page.ID, err)
				continue
			}
			report.SkippedReviewed++
			continue
		}

		decision, err := s.permissions.Evaluate(ctx, cache, &page, nil)
		if err != nil {
			s.pageFailed(log, report, page.ID, err)
			continue
		}
		if !decision.Reviewable {
			report.Ineligible++
			continue
		}

		for _, owner := range decision.Owners {
			bucket, ok := buckets[owner.ID]
			if !ok {
				bucket = &ownerBucket{owner: owner}
				buckets[owner.ID] = bucket
				order = append(order, owner.ID)
			}
			bucket.pages = append(bucket.pages, page)
		}
	}

	for _, ownerID := range order {
		bucket := buckets[ownerID]
		if err := s.notify(ctx, site, from, bucket); err != nil {
			failure := models.OwnerFailure{
				OwnerID: bucket.owner.ID,
				Email:   bucket.owner.Email,
				PageIDs: pageIDs(bucket.pages),
				Reason:  err.Error(),
			}
			if errors.Is(err, appErrors.ErrInvalidRecipient) {
				report.InvalidRecipients = append(report.InvalidRecipients, failure)
			} else {
				report.DeliveryErrors = append(report.DeliveryErrors, failure)
			}
			log.Warn("review notification skipped",
				zap.String("owner_id", bucket.owner.ID),
				zap.String("email", bucket.owner.Email),
				zap.Error(err),
			)
			continue
		}
		report.NotifiedOwners++
		report.NotifiedPages += len(bucket.pages)
	}

	report.FinishedAt = s.clock.Now()
	s.metrics.ObserveSweep(report, time.Since(start))
	log.Info("review sweep finished",
		zap.Int("candidates", report.Candidates),
		zap.Int("skipped_reviewed", report.SkippedReviewed),
		zap.Int("ineligible", report.Ineligible),
		zap.Int("notified_owners", report.NotifiedOwners),
		zap.Int("invalid_recipients", len(report.InvalidRecipients)),
		zap.Int("delivery_errors", len(report.DeliveryErrors)),
		zap.Int("page_errors", len(report.PageErrors)),
	)
	return report, nil
}

func (s *NotificationService) reviewedSinceDue(ctx context.Context, page *models.Page) (bool, error) {
	latest, err := s.logs.Latest(ctx, page.ID)
	if err != nil {
		return false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest review")
	}
	if latest == nil {
		return false, nil
	}
	return !latest.CreatedAt.Before(*page.NextReviewDate), nil
}

func (s *NotificationService) notify(ctx context.Context, site *models.SiteSettings, from string, bucket *ownerBucket) error {
	if !s.validator.IsValid(bucket.owner.Email) {
		return appErrors.Clone(appErrors.ErrInvalidRecipient, fmt.Sprintf("owner %s has an invalid email address %q", bucket.owner.ID, bucket.owner.Email))
	}
	email, err := s.renderer.Render(site, from, bucket.owner, bucket.pages)
	if err != nil {
		return err
	}
	return s.notifier.Send(ctx, Notification{
		From:    from,
		Owner:   bucket.owner,
		Pages:   bucket.pages,
		Subject: email.Subject,
		Body:    email.HTML,
		Text:    email.Text,
	})
}

func (s *NotificationService) pageFailed(log *zap.Logger, report *models.SweepReport, pageID string, err error) {
	report.PageErrors = append(report.PageErrors, models.PageFailure{PageID: pageID, Reason: err.Error()})
	log.Warn("review sweep page failed", zap.String("page_id", pageID), zap.Error(err))
}

func pageIDs(pages []models.Page) []string {
	ids := make([]string, 0, len(pages))
	for _, p := range pages {
		ids = append(ids, p.ID)
	}
	return ids
}
