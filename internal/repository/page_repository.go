package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/content-review-api/internal/models"
)

const pageSelect = `SELECT p.id, p.parent_id, p.title, p.url_segment, p.is_virtual, p.sort_order, p.review_policy,
p.review_period_days, p.next_review_date, p.last_edited_by_name, p.owner_names, p.created_at, p.updated_at,
COALESCE((SELECT array_agg(pu.user_id ORDER BY pu.user_id) FROM page_owner_users pu WHERE pu.page_id = p.id), '{}') AS owner_user_ids,
COALESCE((SELECT array_agg(pg.group_id ORDER BY pg.group_id) FROM page_owner_groups pg WHERE pg.page_id = p.id), '{}') AS owner_group_ids
FROM pages p`

type pageRow struct {
	models.Page
	OwnerUsers  pq.StringArray `db:"owner_user_ids"`
	OwnerGroups pq.StringArray `db:"owner_group_ids"`
}

func (r pageRow) toModel() models.Page {
	page := r.Page
	page.OwnerUserIDs = []string(r.OwnerUsers)
	page.OwnerGroupIDs = []string(r.OwnerGroups)
	return page
}

// PageRepository reads and writes the page tree and its review settings.
type PageRepository struct {
	db *sqlx.DB
}

// NewPageRepository creates a new PageRepository.
func NewPageRepository(db *sqlx.DB) *PageRepository {
	return &PageRepository{db: db}
}

// FindByID returns a page with its owner references. sql.ErrNoRows is returned unwrapped.
func (r *PageRepository) FindByID(ctx context.Context, id string) (*models.Page, error) {
	var row pageRow
	if err := r.db.GetContext(ctx, &row, pageSelect+` WHERE p.id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("find page by id: %w", err)
	}
	page := row.toModel()
	return &page, nil
}

// Parent returns the parent page, or nil when page is a root or its parent row is gone.
func (r *PageRepository) Parent(ctx context.Context, page *models.Page) (*models.Page, error) {
	if page == nil || page.IsRoot() {
		return nil, nil
	}
	parent, err := r.FindByID(ctx, *page.ParentID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return parent, err
}

// Exists reports whether a page with id is stored.
func (r *PageRepository) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM pages WHERE id = $1)`, id); err != nil {
		return false, fmt.Errorf("page exists: %w", err)
	}
	return exists, nil
}

// ListAll returns every page in tree order.
func (r *PageRepository) ListAll(ctx context.Context) ([]models.Page, error) {
	return r.list(ctx, pageSelect+` ORDER BY p.sort_order ASC, p.id ASC`)
}

// ListDue returns pages whose next review date is on or before day.
func (r *PageRepository) ListDue(ctx context.Context, day time.Time) ([]models.Page, error) {
	return r.list(ctx, pageSelect+` WHERE p.next_review_date IS NOT NULL AND p.next_review_date <= $1 ORDER BY p.sort_order ASC, p.id ASC`, day)
}

func (r *PageRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Page, error) {
	var rows []pageRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pages: %w", err)
	}
	pages := make([]models.Page, 0, len(rows))
	for _, row := range rows {
		pages = append(pages, row.toModel())
	}
	return pages, nil
}

// Save persists the review fields of page and replaces its owner links in one transaction.
func (r *PageRepository) Save(ctx context.Context, page *models.Page) error {
	page.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save page tx: %w", err)
	}

	const update = `UPDATE pages SET review_policy = :review_policy, review_period_days = :review_period_days,
next_review_date = :next_review_date, last_edited_by_name = :last_edited_by_name, owner_names = :owner_names,
updated_at = :updated_at WHERE id = :id`
	res, err := tx.NamedExecContext(ctx, update, page)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update page: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		_ = tx.Rollback()
		return sql.ErrNoRows
	}

	if err := replaceLinks(ctx, tx, "page_owner_users", "page_id", "user_id", page.ID, page.OwnerUserIDs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := replaceLinks(ctx, tx, "page_owner_groups", "page_id", "group_id", page.ID, page.OwnerGroupIDs); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save page tx: %w", err)
	}
	return nil
}

// RecordReview stores the advanced review date of page and appends log in one transaction.
// sql.ErrNoRows is returned when the page row is gone; nothing is written then.
func (r *PageRepository) RecordReview(ctx context.Context, page *models.Page, log *models.ReviewLog) error {
	page.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin record review tx: %w", err)
	}

	const update = `UPDATE pages SET next_review_date = :next_review_date, updated_at = :updated_at WHERE id = :id`
	res, err := tx.NamedExecContext(ctx, update, page)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("update review date: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		_ = tx.Rollback()
		return sql.ErrNoRows
	}
	if err := createReviewLog(ctx, tx, log); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit record review tx: %w", err)
	}
	return nil
}

// replaceLinks rewrites a join table for owner; table and column names are package constants.
func replaceLinks(ctx context.Context, tx *sqlx.Tx, table, ownerCol, refCol, ownerID string, refs []string) error {
	del := fmt.Sprintf(`DELETE FROM %s WHERE %s = $1`, table, ownerCol)
	if _, err := tx.ExecContext(ctx, del, ownerID); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if len(refs) == 0 {
		return nil
	}
	ins := fmt.Sprintf(`INSERT INTO %s (%s, %s) SELECT $1, unnest($2::text[]) ON CONFLICT DO NOTHING`, table, ownerCol, refCol)
	if _, err := tx.ExecContext(ctx, ins, ownerID, pq.Array(refs)); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
