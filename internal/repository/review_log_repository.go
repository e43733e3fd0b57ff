package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/content-review-api/internal/models"
)

// ReviewLogRepository stores the append-only review history of pages.
type ReviewLogRepository struct {
	db *sqlx.DB
}

// NewReviewLogRepository creates a new ReviewLogRepository.
func NewReviewLogRepository(db *sqlx.DB) *ReviewLogRepository {
	return &ReviewLogRepository{db: db}
}

const insertReviewLog = `INSERT INTO review_logs (id, page_id, reviewer_id, note, created_at) VALUES (:id, :page_id, :reviewer_id, :note, :created_at)`

// Create appends a review log entry.
func (r *ReviewLogRepository) Create(ctx context.Context, log *models.ReviewLog) error {
	return createReviewLog(ctx, r.db, log)
}

func createReviewLog(ctx context.Context, db sqlx.ExtContext, log *models.ReviewLog) error {
	if log.ID == "" {
		log.ID = uuid.NewString()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}
	if _, err := sqlx.NamedExecContext(ctx, db, insertReviewLog, log); err != nil {
		return fmt.Errorf("create review log: %w", err)
	}
	return nil
}

// Latest returns the newest log for pageID, or nil when the page was never reviewed.
func (r *ReviewLogRepository) Latest(ctx context.Context, pageID string) (*models.ReviewLog, error) {
	const query = `SELECT id, page_id, reviewer_id, note, created_at FROM review_logs WHERE page_id = $1 ORDER BY created_at DESC, id DESC LIMIT 1`
	var log models.ReviewLog
	if err := r.db.GetContext(ctx, &log, query, pageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest review log: %w", err)
	}
	return &log, nil
}

// ListByPage returns up to limit logs for pageID, newest first.
func (r *ReviewLogRepository) ListByPage(ctx context.Context, pageID string, limit int) ([]models.ReviewLog, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	query := fmt.Sprintf(`SELECT l.id, l.page_id, l.reviewer_id, COALESCE(NULLIF(TRIM(u.first_name || ' ' || u.surname), ''), u.email, '') AS reviewer_name, l.note, l.created_at
FROM review_logs l LEFT JOIN users u ON u.id = l.reviewer_id
WHERE l.page_id = $1 ORDER BY l.created_at DESC, l.id DESC LIMIT %d`, limit)
	var logs []models.ReviewLog
	if err := r.db.SelectContext(ctx, &logs, query, pageID); err != nil {
		return nil, fmt.Errorf("list review logs: %w", err)
	}
	return logs, nil
}
