package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/content-review-api/internal/models"
)

func newMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	sqlxdb := sqlx.NewDb(db, "postgres")
	return sqlxdb, mock, func() {
		db.Close()
	}
}

var pageColumns = []string{
	"id", "parent_id", "title", "url_segment", "is_virtual", "sort_order", "review_policy",
	"review_period_days", "next_review_date", "last_edited_by_name", "owner_names", "created_at", "updated_at",
	"owner_user_ids", "owner_group_ids",
}

func TestPageRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPageRepository(db)

	now := time.Now()
	due := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(pageColumns).
		AddRow("p1", "root", "About", "about", false, 1, "Custom", 30, due, "Jane", "Editors", now, now, "{u1,u2}", "{g1}")
	mock.ExpectQuery(`FROM pages p WHERE p.id = \$1`).WithArgs("p1").WillReturnRows(rows)

	page, err := repo.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, models.ReviewPolicyCustom, page.Policy)
	assert.Equal(t, "root", *page.ParentID)
	assert.Equal(t, []string{"u1", "u2"}, page.OwnerUserIDs)
	assert.Equal(t, []string{"g1"}, page.OwnerGroupIDs)
	require.NotNil(t, page.NextReviewDate)
	assert.True(t, due.Equal(*page.NextReviewDate))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPageRepository(db)

	mock.ExpectQuery(`FROM pages p WHERE p.id = \$1`).WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestPageRepositoryParent(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPageRepository(db)

	parent, err := repo.Parent(context.Background(), &models.Page{ID: "root"})
	require.NoError(t, err)
	assert.Nil(t, parent)

	orphanParent := "gone"
	mock.ExpectQuery(`FROM pages p WHERE p.id = \$1`).WithArgs("gone").WillReturnError(sql.ErrNoRows)
	parent, err = repo.Parent(context.Background(), &models.Page{ID: "orphan", ParentID: &orphanParent})
	require.NoError(t, err)
	assert.Nil(t, parent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageRepositoryListDue(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPageRepository(db)

	now := time.Now()
	day := time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows(pageColumns).
		AddRow("p1", nil, "Home", "home", false, 0, "Inherit", 0, day, "", "", now, now, "{}", "{}")
	mock.ExpectQuery(`WHERE p.next_review_date IS NOT NULL AND p.next_review_date <= \$1`).WithArgs(day).WillReturnRows(rows)

	pages, err := repo.ListDue(context.Background(), day)
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.True(t, pages[0].IsRoot())
	assert.Empty(t, pages[0].OwnerUserIDs)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageRepositorySaveReplacesOwners(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPageRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE pages SET review_policy`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM page_owner_users WHERE page_id = $1`)).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`INSERT INTO page_owner_users`).WithArgs("p1", sqlmock.AnyArg()).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM page_owner_groups WHERE page_id = $1`)).WithArgs("p1").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	page := &models.Page{ID: "p1", Policy: models.ReviewPolicyCustom, ReviewPeriodDays: 7, OwnerUserIDs: []string{"u1"}}
	require.NoError(t, repo.Save(context.Background(), page))
	assert.False(t, page.UpdatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageRepositorySaveUnknownPage(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPageRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE pages SET review_policy`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Save(context.Background(), &models.Page{ID: "ghost", Policy: models.ReviewPolicyInherit})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageRepositoryRecordReview(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPageRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE pages SET next_review_date`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(`INSERT INTO review_logs`).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	next := time.Date(2024, 4, 14, 0, 0, 0, 0, time.UTC)
	page := &models.Page{ID: "p1", NextReviewDate: &next}
	log := &models.ReviewLog{PageID: "p1", ReviewerID: "u1", Note: "ok"}
	require.NoError(t, repo.RecordReview(context.Background(), page, log))
	assert.NotEmpty(t, log.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPageRepositoryRecordReviewUnknownPage(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewPageRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE pages SET next_review_date`).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.RecordReview(context.Background(), &models.Page{ID: "ghost"}, &models.ReviewLog{PageID: "ghost", ReviewerID: "u1"})
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
