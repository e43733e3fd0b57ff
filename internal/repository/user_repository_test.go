package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/content-review-api/internal/models"
)

var userRowColumns = []string{"id", "email", "first_name", "surname", "role", "created_at", "updated_at"}

func TestUserRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).AddRow("1", "user@example.com", "Jo", "Doe", string(models.RoleAdmin), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, email, first_name, surname, role, created_at, updated_at FROM users WHERE id = $1 LIMIT 1")).
		WithArgs("1").
		WillReturnRows(rows)

	user, err := repo.FindByID(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", user.Email)
	assert.True(t, user.CanEditReviewFields())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByIDMissing(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery("FROM users WHERE id").WillReturnError(sql.ErrNoRows)
	_, err := repo.FindByID(context.Background(), "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryFindByIDs(t *testing.T) {
	db, mock, cleanup := newMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows(userRowColumns).
		AddRow("1", "a@example.com", "", "", "EDITOR", now, now).
		AddRow("2", "b@example.com", "Bo", "", "AUTHOR", now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE id = ANY($1) ORDER BY id")).WithArgs(sqlmock.AnyArg()).WillReturnRows(rows)

	users, err := repo.FindByIDs(context.Background(), []string{"1", "2", "3"})
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "a@example.com", users[0].Name())
	assert.NoError(t, mock.ExpectationsWereMet())
}
