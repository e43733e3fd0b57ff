package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/content-review-api/internal/models"
)

func userIDs(users []models.User) []string {
	ids := make([]string, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	return ids
}

func TestOwnerResolverDeduplicatesDirectAndGroupOwners(t *testing.T) {
	e := newReviewEngine(t)
	e.dir.addUser("a", "a@example.com", "Ann", models.RoleEditor)
	e.dir.addGroup("g", "Editors", "", "a")

	owners, err := e.owners.Resolve(context.Background(), nil, []string{"a"}, []string{"g"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, userIDs(owners))
}

func TestOwnerResolverExpandsSubGroupsRecursively(t *testing.T) {
	e := newReviewEngine(t)
	e.dir.addUser("a", "a@example.com", "Ann", models.RoleEditor)
	e.dir.addUser("b", "b@example.com", "Ben", models.RoleEditor)
	e.dir.addUser("c", "c@example.com", "Cat", models.RoleAuthor)
	e.dir.addUser("d", "d@example.com", "Dan", models.RoleAuthor)
	e.dir.addGroup("top", "Content", "", "a")
	e.dir.addGroup("mid", "News", "top", "b", "a")
	e.dir.addGroup("leaf", "Sport", "mid", "c")
	e.dir.addGroup("other", "Other", "", "d")

	owners, err := e.owners.Resolve(context.Background(), nil, []string{"d", "c"}, []string{"top"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, userIDs(owners))
}

func TestOwnerResolverEmptyInputs(t *testing.T) {
	e := newReviewEngine(t)

	owners, err := e.owners.Resolve(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, owners)

	owners, err = e.owners.Resolve(context.Background(), nil, []string{"ghost"}, []string{"missing"})
	require.NoError(t, err)
	assert.Empty(t, owners)
}

func TestOwnerResolverReusesCacheAcrossCalls(t *testing.T) {
	e := newReviewEngine(t)
	e.dir.addUser("a", "a@example.com", "Ann", models.RoleEditor)
	e.dir.addUser("b", "b@example.com", "Ben", models.RoleEditor)
	e.dir.addGroup("g", "Editors", "", "a")

	cache := NewReviewCache()
	for i := 0; i < 3; i++ {
		owners, err := e.owners.Resolve(context.Background(), cache, []string{"b"}, []string{"g"})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "b"}, userIDs(owners))
	}
	assert.Equal(t, 1, e.dir.expandCalls)
	assert.Equal(t, 1, e.dir.userCalls)

	_, err := e.owners.Resolve(context.Background(), NewReviewCache(), nil, []string{"g"})
	require.NoError(t, err)
	assert.Equal(t, 2, e.dir.expandCalls)
}

func TestOwnerResolverIsMember(t *testing.T) {
	e := newReviewEngine(t)
	e.dir.addUser("a", "a@example.com", "Ann", models.RoleEditor)
	e.dir.addUser("b", "b@example.com", "Ben", models.RoleEditor)
	e.dir.addGroup("top", "Content", "")
	e.dir.addGroup("sub", "News", "top", "a")

	ok, err := e.owners.IsMember(context.Background(), nil, "a", nil, []string{"top"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.owners.IsMember(context.Background(), nil, "b", []string{"b"}, nil)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = e.owners.IsMember(context.Background(), nil, "b", []string{"a"}, []string{"top"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestOwnerResolverDescribeOwners(t *testing.T) {
	e := newReviewEngine(t)
	e.dir.addUser("a", "a@example.com", "Ann", models.RoleEditor)
	e.dir.addUser("b", "nobody@example.com", "", models.RoleEditor)
	e.dir.users["b"] = models.User{ID: "b", Email: "nobody@example.com"}
	e.dir.addGroup("top", "Content", "")
	e.dir.addGroup("sub", "News", "top")

	names, err := e.owners.DescribeOwners(context.Background(), nil, []string{"a", "b"}, []string{"sub"})
	require.NoError(t, err)
	assert.Equal(t, "Content > News, Ann Tester, nobody@example.com", names)
}
