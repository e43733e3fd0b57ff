package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/content-review-api/internal/dto"
	"github.com/noah-isme/content-review-api/internal/models"
	"github.com/noah-isme/content-review-api/internal/repository"
	appErrors "github.com/noah-isme/content-review-api/pkg/errors"
)

func newTestCacheService(t *testing.T) (*CacheService, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	repo := repository.NewCacheRepository(client, "test:", nil)
	return NewCacheService(repo, NewMetricsService(), 0, nil, true), s
}

func reportFixture(t *testing.T) (*reviewEngine, *ReportService) {
	t.Helper()
	e := newReviewEngine(t,
		&models.Page{ID: "due", Title: "Due", Policy: models.ReviewPolicyCustom, OwnerUserIDs: []string{"a"}, OwnerNames: "Ann Tester", NextReviewDate: day(-1)},
		&models.Page{ID: "virtual", Title: "Mirror", IsVirtual: true, Policy: models.ReviewPolicyCustom, OwnerUserIDs: []string{"a"}, NextReviewDate: day(-2)},
		&models.Page{ID: "later", Title: "Later", Policy: models.ReviewPolicyCustom, OwnerUserIDs: []string{"b"}, OwnerNames: "Ben Tester", NextReviewDate: day(10)},
		&models.Page{ID: "unowned", Title: "Unowned", Policy: models.ReviewPolicyCustom, NextReviewDate: day(3)},
		&models.Page{ID: "undated", Title: "Undated", Policy: models.ReviewPolicyCustom, OwnerUserIDs: []string{"a"}},
	)
	e.dir.addUser("a", "a@example.com", "Ann", models.RoleEditor)
	e.dir.addUser("b", "b@example.com", "Ben", models.RoleEditor)
	svc := NewReportService(e.pages, e.logs, e.users, e.resolver, e.owners, nil, nil, nil, nil, e.clock, nil, ReportServiceConfig{})
	return e, svc
}

func reportIDs(r *dto.ReviewReport) []string {
	ids := make([]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		ids = append(ids, row.PageID)
	}
	return ids
}

func TestPagesDueForReview(t *testing.T) {
	e, svc := reportFixture(t)
	ctx := context.Background()
	require.NoError(t, e.logs.Create(ctx, &models.ReviewLog{PageID: "due", ReviewerID: "a", ReviewerName: "Ann Tester", CreatedAt: *day(-40)}))

	report, err := svc.PagesDueForReview(ctx, dto.ReviewReportFilter{}, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"due"}, reportIDs(report))
	assert.Equal(t, "Ann Tester", report.Rows[0].LastReviewer)
	assert.Equal(t, "Custom", report.Rows[0].SettingsSource)

	report, err = svc.PagesDueForReview(ctx, dto.ReviewReportFilter{ShowVirtual: true}, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"virtual", "due"}, reportIDs(report))

	report, err = svc.PagesDueForReview(ctx, dto.ReviewReportFilter{ReviewDateAfter: "2024-03-14", ReviewDateBefore: "2024-03-25"}, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"due", "unowned", "later"}, reportIDs(report))

	report, err = svc.PagesDueForReview(ctx, dto.ReviewReportFilter{ReviewDateAfter: "2024-03-01", OwnerName: "ben"}, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"later"}, reportIDs(report))

	report, err = svc.PagesDueForReview(ctx, dto.ReviewReportFilter{ReviewDateAfter: "2024-03-01", OnlyMine: true}, "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"later"}, reportIDs(report))
}

func TestPagesDueForReviewMatchesInheritedOwnerNames(t *testing.T) {
	e, svc := reportFixture(t)
	e.pages.add(&models.Page{ID: "section", Title: "Section", Policy: models.ReviewPolicyCustom, OwnerUserIDs: []string{"b"}, OwnerNames: "Ben Tester", NextReviewDate: day(40)})
	e.pages.add(&models.Page{ID: "child", Title: "Child", ParentID: strPtr("section"), Policy: models.ReviewPolicyInherit, OwnerNames: "Ann Tester", NextReviewDate: day(-3)})
	ctx := context.Background()

	report, err := svc.PagesDueForReview(ctx, dto.ReviewReportFilter{OwnerName: "ben"}, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"child"}, reportIDs(report))
	assert.Equal(t, "Ben Tester", report.Rows[0].OwnerNames)

	report, err = svc.PagesDueForReview(ctx, dto.ReviewReportFilter{OwnerName: "ann"}, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"due"}, reportIDs(report))
}

func TestPagesDueForReviewRejectsBadFilters(t *testing.T) {
	_, svc := reportFixture(t)
	ctx := context.Background()

	_, err := svc.PagesDueForReview(ctx, dto.ReviewReportFilter{ReviewDateAfter: "14/03/2024"}, "a")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.PagesDueForReview(ctx, dto.ReviewReportFilter{ReviewDateAfter: "2024-03-20", ReviewDateBefore: "2024-03-10"}, "a")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.PagesDueForReview(ctx, dto.ReviewReportFilter{OnlyMine: true}, "")
	assert.True(t, errors.Is(err, appErrors.ErrUnauthorized))
}

func TestPagesWithoutSchedule(t *testing.T) {
	_, svc := reportFixture(t)

	report, err := svc.PagesWithoutSchedule(context.Background(), dto.ReviewReportFilter{}, "a")
	require.NoError(t, err)
	assert.Equal(t, []string{"unowned", "undated"}, reportIDs(report))
}

func TestReportIsCachedUntilInvalidated(t *testing.T) {
	e, svc := reportFixture(t)
	cacheSvc, _ := newTestCacheService(t)
	svc.cache = cacheSvc
	ctx := context.Background()

	first, err := svc.PagesDueForReview(ctx, dto.ReviewReportFilter{}, "a")
	require.NoError(t, err)
	require.Len(t, first.Rows, 1)

	e.pages.add(&models.Page{ID: "new", Policy: models.ReviewPolicyCustom, OwnerUserIDs: []string{"a"}, NextReviewDate: day(-1)})
	cached, err := svc.PagesDueForReview(ctx, dto.ReviewReportFilter{}, "a")
	require.NoError(t, err)
	assert.Len(t, cached.Rows, 1)

	cacheSvc.InvalidateReports(ctx)
	fresh, err := svc.PagesDueForReview(ctx, dto.ReviewReportFilter{}, "a")
	require.NoError(t, err)
	assert.Len(t, fresh.Rows, 2)
}

func TestReportExport(t *testing.T) {
	_, svc := reportFixture(t)
	report, err := svc.PagesDueForReview(context.Background(), dto.ReviewReportFilter{ShowVirtual: true}, "a")
	require.NoError(t, err)

	file, err := svc.Export(report, dto.ReportFormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "pages-due-for-review-2024-03-15.csv", file.Filename)
	assert.True(t, strings.HasPrefix(string(file.Data), "Page name,Review date,Owner"))
	assert.Contains(t, string(file.Data), "Due,2024-03-14,Ann Tester")

	file, err = svc.Export(report, dto.ReportFormatPDF)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, strings.HasPrefix(string(file.Data), "%PDF"))

	_, err = svc.Export(report, "xlsx")
	assert.True(t, errors.Is(err, appErrors.ErrValidation))
}
