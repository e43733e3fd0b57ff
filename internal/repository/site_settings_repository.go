package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/content-review-api/internal/models"
)

type siteSettingsRow struct {
	models.SiteSettings
	OwnerUsers  pq.StringArray `db:"owner_user_ids"`
	OwnerGroups pq.StringArray `db:"owner_group_ids"`
}

// SiteSettingsRepository persists the singleton site-wide review defaults.
type SiteSettingsRepository struct {
	db *sqlx.DB
}

// NewSiteSettingsRepository constructs the repository.
func NewSiteSettingsRepository(db *sqlx.DB) *SiteSettingsRepository {
	return &SiteSettingsRepository{db: db}
}

// Get loads the site settings row seeded by the initial migration.
func (r *SiteSettingsRepository) Get(ctx context.Context) (*models.SiteSettings, error) {
	const query = `SELECT s.review_period_days, s.review_from, s.review_subject, s.review_body, s.updated_at,
COALESCE((SELECT array_agg(user_id ORDER BY user_id) FROM site_owner_users), '{}') AS owner_user_ids,
COALESCE((SELECT array_agg(group_id ORDER BY group_id) FROM site_owner_groups), '{}') AS owner_group_ids
FROM site_review_settings s WHERE s.id = 1`
	var row siteSettingsRow
	if err := r.db.GetContext(ctx, &row, query); err != nil {
		return nil, err
	}
	settings := row.SiteSettings
	settings.OwnerUserIDs = []string(row.OwnerUsers)
	settings.OwnerGroupIDs = []string(row.OwnerGroups)
	return &settings, nil
}

// Save upserts the settings row and replaces the site owner lists.
func (r *SiteSettingsRepository) Save(ctx context.Context, settings *models.SiteSettings) error {
	settings.UpdatedAt = time.Now().UTC()
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin site settings tx: %w", err)
	}
	const upsert = `INSERT INTO site_review_settings (id, review_period_days, review_from, review_subject, review_body, updated_at)
VALUES (1, :review_period_days, :review_from, :review_subject, :review_body, :updated_at)
ON CONFLICT (id)
DO UPDATE SET review_period_days = EXCLUDED.review_period_days, review_from = EXCLUDED.review_from,
              review_subject = EXCLUDED.review_subject, review_body = EXCLUDED.review_body, updated_at = EXCLUDED.updated_at`
	if _, err := tx.NamedExecContext(ctx, upsert, settings); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert site settings: %w", err)
	}
	if err := replaceSiteOwners(ctx, tx, "site_owner_users", "user_id", settings.OwnerUserIDs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := replaceSiteOwners(ctx, tx, "site_owner_groups", "group_id", settings.OwnerGroupIDs); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit site settings tx: %w", err)
	}
	return nil
}

func replaceSiteOwners(ctx context.Context, tx *sqlx.Tx, table, col string, ids []string) error {
	if _, err := tx.ExecContext(ctx, fmt.Sprintf(`DELETE FROM %s`, table)); err != nil {
		return fmt.Errorf("clear %s: %w", table, err)
	}
	if len(ids) == 0 {
		return nil
	}
	ins := fmt.Sprintf(`INSERT INTO %s (%s) SELECT unnest($1::text[]) ON CONFLICT DO NOTHING`, table, col)
	if _, err := tx.ExecContext(ctx, ins, pq.Array(ids)); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}
