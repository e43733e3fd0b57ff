package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/content-review-api/internal/models"
)

// GroupRepository traverses the security group hierarchy.
type GroupRepository struct {
	db *sqlx.DB
}

// NewGroupRepository creates a new GroupRepository.
func NewGroupRepository(db *sqlx.DB) *GroupRepository {
	return &GroupRepository{db: db}
}

// ExpandFamily returns the group itself plus every descendant group.
// UNION (not UNION ALL) keeps the recursion finite when the hierarchy is cyclic.
func (r *GroupRepository) ExpandFamily(ctx context.Context, groupID string) ([]models.Group, error) {
	const query = `WITH RECURSIVE family AS (
    SELECT id, parent_id, title, created_at FROM groups WHERE id = $1
    UNION
    SELECT g.id, g.parent_id, g.title, g.created_at FROM groups g JOIN family f ON g.parent_id = f.id
)
SELECT id, parent_id, title, created_at FROM family ORDER BY id`
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query, groupID); err != nil {
		return nil, fmt.Errorf("expand group family: %w", err)
	}
	return groups, nil
}

// MembersOf returns the distinct members of the given groups.
func (r *GroupRepository) MembersOf(ctx context.Context, groupIDs []string) ([]models.User, error) {
	if len(groupIDs) == 0 {
		return nil, nil
	}
	const query = `SELECT DISTINCT u.id, u.email, u.first_name, u.surname, u.role, u.created_at, u.updated_at
FROM users u JOIN group_members gm ON gm.user_id = u.id
WHERE gm.group_id = ANY($1) ORDER BY u.id`
	var users []models.User
	if err := r.db.SelectContext(ctx, &users, query, pq.Array(groupIDs)); err != nil {
		return nil, fmt.Errorf("list group members: %w", err)
	}
	return users, nil
}

// FindByIDs loads groups with their breadcrumb path.
func (r *GroupRepository) FindByIDs(ctx context.Context, ids []string) ([]models.Group, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	const query = `WITH RECURSIVE lineage AS (
    SELECT id AS root_id, id, parent_id, title, 0 AS depth FROM groups WHERE id = ANY($1)
    UNION ALL
    SELECT l.root_id, g.id, g.parent_id, g.title, l.depth + 1
    FROM groups g JOIN lineage l ON g.id = l.parent_id
    WHERE l.depth < 32
)
SELECT g.id, g.parent_id, g.title, g.created_at,
       (SELECT string_agg(l.title, ' > ' ORDER BY l.depth DESC) FROM lineage l WHERE l.root_id = g.id) AS breadcrumbs
FROM groups g WHERE g.id = ANY($1) ORDER BY g.title, g.id`
	var groups []models.Group
	if err := r.db.SelectContext(ctx, &groups, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("find groups: %w", err)
	}
	return groups, nil
}
