package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/content-review-api/internal/dto"
	"github.com/noah-isme/content-review-api/internal/models"
	appErrors "github.com/noah-isme/content-review-api/pkg/errors"
	"github.com/noah-isme/content-review-api/pkg/export"
)

const (
	reportDueForReview     = "due-for-review"
	reportWithoutSchedule  = "without-schedule"
	reportDateLayout       = "2006-01-02"
	reportFilenameTemplate = "%s-%s.%s"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
	ContentType() string
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
	ContentType() string
}

// ReportFile is an exported report ready to be streamed.
type ReportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ReportServiceConfig tunes report caching.
type ReportServiceConfig struct {
	CacheTTL time.Duration
}

// ReportService builds the "pages due for review" and "pages without schedule" reports.
type ReportService struct {
	pages     PageStore
	logs      ReviewLogStore
	users     UserStore
	resolver  *SettingsResolver
	owners    *OwnerResolver
	csv       csvRenderer
	pdf       pdfRenderer
	cache     *CacheService
	validator *validator.Validate
	clock     Clock
	logger    *zap.Logger
	cfg       ReportServiceConfig
}

// NewReportService constructs a ReportService.
func NewReportService(
	pages PageStore,
	logs ReviewLogStore,
	users UserStore,
	resolver *SettingsResolver,
	owners *OwnerResolver,
	csv csvRenderer,
	pdf pdfRenderer,
	cache *CacheService,
	validate *validator.Validate,
	clock Clock,
	logger *zap.Logger,
	cfg ReportServiceConfig,
) *ReportService {
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		pages:     pages,
		logs:      logs,
		users:     users,
		resolver:  resolver,
		owners:    owners,
		csv:       csv,
		pdf:       pdf,
		cache:     cache,
		validator: validate,
		clock:     clockOrSystem(clock),
		logger:    logger,
		cfg:       cfg,
	}
}

// PagesDueForReview lists pages whose review date falls in the filter's range. Without
// a range it lists everything due by today.
func (s *ReportService) PagesDueForReview(ctx context.Context, filter dto.ReviewReportFilter, actorID string) (*dto.ReviewReport, error) {
	return s.build(ctx, reportDueForReview, "Pages due for review", filter, actorID)
}

// PagesWithoutSchedule lists pages with no review date or with nobody to review them.
func (s *ReportService) PagesWithoutSchedule(ctx context.Context, filter dto.ReviewReportFilter, actorID string) (*dto.ReviewReport, error) {
	return s.build(ctx, reportWithoutSchedule, "Pages without review schedule", filter, actorID)
}

func (s *ReportService) build(ctx context.Context, kind, title string, filter dto.ReviewReportFilter, actorID string) (*dto.ReviewReport, error) {
	if err := s.validator.Struct(filter); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid report filter")
	}
	if filter.OnlyMine && actorID == "" {
		return nil, appErrors.ErrUnauthorized
	}
	now := s.clock.Now()
	key := s.cacheKey(kind, filter, actorID, now)

	var cached dto.ReviewReport
	if s.cache.Get(ctx, key, &cached) {
		return &cached, nil
	}

	pages, err := s.pages.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list pages")
	}

	var match func(page *models.Page, owners []models.User) bool
	switch kind {
	case reportDueForReview:
		inRange, err := dueRange(filter, now)
		if err != nil {
			return nil, err
		}
		match = func(page *models.Page, _ []models.User) bool {
			return page.HasReviewDate() && inRange(models.DateOf(*page.NextReviewDate))
		}
	default:
		match = func(page *models.Page, owners []models.User) bool {
			return !page.HasReviewDate() || len(owners) == 0
		}
	}

	cache := NewReviewCache()
	ownerName := strings.ToLower(strings.TrimSpace(filter.OwnerName))
	rows := make([]dto.ReviewReportRow, 0)
	for i := range pages {
		page := &pages[i]
		if page.IsVirtual && !filter.ShowVirtual {
			continue
		}
		settings, err := s.resolver.Resolve(ctx, cache, page)
		if err != nil {
			s.logger.Warn("report skipped page", zap.String("report", kind), zap.String("page_id", page.ID), zap.Error(err))
			continue
		}
		// The stored OwnerNames of an Inherit page can lag behind its ancestors.
		names, err := s.owners.DescribeOwners(ctx, cache, settings.OwnerUserIDs(), settings.OwnerGroupIDs())
		if err != nil {
			return nil, err
		}
		if ownerName != "" && !strings.Contains(strings.ToLower(names), ownerName) {
			continue
		}
		owners, err := s.owners.Resolve(ctx, cache, settings.OwnerUserIDs(), settings.OwnerGroupIDs())
		if err != nil {
			return nil, err
		}
		if !match(page, owners) {
			continue
		}
		if filter.OnlyMine && !containsUser(owners, actorID) {
			continue
		}
		row, err := s.row(ctx, page, settings, names)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].NextReviewDate, rows[j].NextReviewDate
		switch {
		case a == nil && b == nil:
			return rows[i].Title < rows[j].Title
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})

	report := &dto.ReviewReport{Title: title, GeneratedAt: now, Rows: rows}
	s.cache.Set(ctx, key, report, s.cfg.CacheTTL)
	return report, nil
}

func (s *ReportService) row(ctx context.Context, page *models.Page, settings models.EffectiveSettings, ownerNames string) (dto.ReviewReportRow, error) {
	row := dto.ReviewReportRow{
		PageID:           page.ID,
		Title:            page.Title,
		NextReviewDate:   page.NextReviewDate,
		OwnerNames:       ownerNames,
		SettingsSource:   settings.Source(page),
		ReviewPeriodDays: settings.PeriodDays(),
		LastEditedByName: page.LastEditedByName,
	}
	latest, err := s.logs.Latest(ctx, page.ID)
	if err != nil {
		return row, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load latest review")
	}
	if latest != nil {
		reviewedAt := latest.CreatedAt
		row.LastReviewedAt = &reviewedAt
		row.LastReviewer = latest.ReviewerName
		if row.LastReviewer == "" {
			if reviewer, err := s.users.FindByID(ctx, latest.ReviewerID); err == nil {
				row.LastReviewer = reviewer.Name()
			}
		}
	}
	return row, nil
}

// Export renders report in format. JSON is left to the caller.
func (s *ReportService) Export(report *dto.ReviewReport, format dto.ReportFormat) (*ReportFile, error) {
	dataset := export.Dataset{
		Headers: []string{"Page name", "Review date", "Owner", "Last edited by", "Last reviewed", "Settings are"},
	}
	for _, row := range report.Rows {
		dataset.Rows = append(dataset.Rows, []string{
			row.Title,
			formatReportDate(row.NextReviewDate),
			row.OwnerNames,
			row.LastEditedByName,
			formatReportDate(row.LastReviewedAt),
			row.SettingsSource,
		})
	}
	slug := strings.ReplaceAll(strings.ToLower(report.Title), " ", "-")
	stamp := report.GeneratedAt.Format(reportDateLayout)

	switch format {
	case dto.ReportFormatCSV:
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv report")
		}
		return &ReportFile{Filename: fmt.Sprintf(reportFilenameTemplate, slug, stamp, "csv"), ContentType: s.csv.ContentType(), Data: data}, nil
	case dto.ReportFormatPDF:
		subtitle := fmt.Sprintf("Generated %s, %d page(s)", report.GeneratedAt.Format("2 Jan 2006 15:04 MST"), len(report.Rows))
		data, err := s.pdf.Render(dataset, report.Title, subtitle)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf report")
		}
		return &ReportFile{Filename: fmt.Sprintf(reportFilenameTemplate, slug, stamp, "pdf"), ContentType: s.pdf.ContentType(), Data: data}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}
}

func (s *ReportService) cacheKey(kind string, filter dto.ReviewReportFilter, actorID string, now time.Time) string {
	owner := ""
	if filter.OnlyMine {
		owner = actorID
	}
	return fmt.Sprintf("%s%s:%s:%s:%s:%t:%s:%s",
		cacheKeyReports, kind, models.DateOf(now).Format(reportDateLayout),
		filter.ReviewDateAfter, filter.ReviewDateBefore, filter.ShowVirtual,
		strings.ToLower(strings.TrimSpace(filter.OwnerName)), owner)
}

// dueRange returns the inclusive day predicate for the due report.
func dueRange(filter dto.ReviewReportFilter, now time.Time) (func(time.Time) bool, error) {
	if filter.ReviewDateAfter == "" && filter.ReviewDateBefore == "" {
		today := models.DateOf(now)
		return func(d time.Time) bool { return !d.After(today) }, nil
	}
	var after, before *time.Time
	if filter.ReviewDateAfter != "" {
		d, err := time.Parse(reportDateLayout, filter.ReviewDateAfter)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review_date_after")
		}
		after = &d
	}
	if filter.ReviewDateBefore != "" {
		d, err := time.Parse(reportDateLayout, filter.ReviewDateBefore)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid review_date_before")
		}
		before = &d
	}
	if after != nil && before != nil && after.After(*before) {
		return nil, appErrors.Clone(appErrors.ErrValidation, "review_date_after must not be later than review_date_before")
	}
	return func(d time.Time) bool {
		if after != nil && d.Before(*after) {
			return false
		}
		if before != nil && d.After(*before) {
			return false
		}
		return true
	}, nil
}

func containsUser(users []models.User, id string) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

func formatReportDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(reportDateLayout)
}
