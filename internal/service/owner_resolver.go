package service

import (
	"context"
	"strings"

	"github.com/noah-isme/content-review-api/internal/models"
	appErrors "github.com/noah-isme/content-review-api/pkg/errors"
)

// OwnerResolver turns owner user and group references into concrete members.
type OwnerResolver struct {
	groups GroupStore
	users  UserStore
}

// NewOwnerResolver constructs an OwnerResolver.
func NewOwnerResolver(groups GroupStore, users UserStore) *OwnerResolver {
	return &OwnerResolver{groups: groups, users: users}
}

// Resolve returns the members of every group (sub-groups included) followed by the
// direct users, deduplicated by ID with the first occurrence kept.
func (r *OwnerResolver) Resolve(ctx context.Context, cache *ReviewCache, userIDs, groupIDs []string) ([]models.User, error) {
	cache = cacheOrNew(cache)
	seen := make(map[string]struct{})
	var owners []models.User

	add := func(u models.User) {
		if _, ok := seen[u.ID]; ok {
			return
		}
		seen[u.ID] = struct{}{}
		owners = append(owners, u)
	}

	members, err := r.groupMembers(ctx, cache, groupIDs)
	if err != nil {
		return nil, err
	}
	for _, m := range members {
		add(m)
	}

	direct, err := r.loadUsers(ctx, cache, userIDs)
	if err != nil {
		return nil, err
	}
	for _, u := range direct {
		add(u)
	}
	return owners, nil
}

// IsMember reports whether userID is a direct owner or belongs to an owner group.
func (r *OwnerResolver) IsMember(ctx context.Context, cache *ReviewCache, userID string, userIDs, groupIDs []string) (bool, error) {
	for _, id := range userIDs {
		if id == userID {
			return true, nil
		}
	}
	members, err := r.groupMembers(ctx, cacheOrNew(cache), groupIDs)
	if err != nil {
		return false, err
	}
	for _, m := range members {
		if m.ID == userID {
			return true, nil
		}
	}
	return false, nil
}

// DescribeOwners renders owner references for display: group breadcrumbs, then user names.
func (r *OwnerResolver) DescribeOwners(ctx context.Context, cache *ReviewCache, userIDs, groupIDs []string) (string, error) {
	var names []string
	if len(groupIDs) > 0 {
		groups, err := r.groups.FindByIDs(ctx, groupIDs)
		if err != nil {
			return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load owner groups")
		}
		for _, g := range groups {
			if g.Breadcrumbs != "" {
				names = append(names, g.Breadcrumbs)
			} else {
				names = append(names, g.Title)
			}
		}
	}
	users, err := r.loadUsers(ctx, cacheOrNew(cache), userIDs)
	if err != nil {
		return "", err
	}
	for _, u := range users {
		names = append(names, u.Name())
	}
	return strings.Join(names, ", "), nil
}

func (r *OwnerResolver) groupMembers(ctx context.Context, cache *ReviewCache, groupIDs []string) ([]models.User, error) {
	var members []models.User
	for _, groupID := range groupIDs {
		if cached, ok := cache.members[groupID]; ok {
			members = append(members, cached...)
			continue
		}
		family, err := r.expand(ctx, cache, groupID)
		if err != nil {
			return nil, err
		}
		found, err := r.groups.MembersOf(ctx, family)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load group members")
		}
		cache.members[groupID] = found
		members = append(members, found...)
	}
	return members, nil
}

func (r *OwnerResolver) expand(ctx context.Context, cache *ReviewCache, groupID string) ([]string, error) {
	if ids, ok := cache.families[groupID]; ok {
		return ids, nil
	}
	groups, err := r.groups.ExpandFamily(ctx, groupID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to expand owner group")
	}
	ids := make([]string, 0, len(groups))
	for _, g := range groups {
		ids = append(ids, g.ID)
	}
	cache.families[groupID] = ids
	return ids, nil
}

// loadUsers returns users in the order of ids, skipping unknown ones.
func (r *OwnerResolver) loadUsers(ctx context.Context, cache *ReviewCache, ids []string) ([]models.User, error) {
	var missing []string
	for _, id := range ids {
		if _, ok := cache.users[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		found, err := r.users.FindByIDs(ctx, missing)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load owner users")
		}
		for i := range found {
			u := found[i]
			cache.users[u.ID] = &u
		}
		for _, id := range missing {
			if _, ok := cache.users[id]; !ok {
				cache.users[id] = nil
			}
		}
	}
	users := make([]models.User, 0, len(ids))
	for _, id := range ids {
		if u := cache.users[id]; u != nil {
			users = append(users, *u)
		}
	}
	return users, nil
}
