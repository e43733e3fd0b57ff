package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/content-review-api/internal/models"
	appErrors "github.com/noah-isme/content-review-api/pkg/errors"
)

func TestSettingsResolverCustomAndDisabledAreTerminal(t *testing.T) {
	custom := &models.Page{ID: "p1", Policy: models.ReviewPolicyCustom, ReviewPeriodDays: 10}
	disabled := &models.Page{ID: "p2", Policy: models.ReviewPolicyDisabled}
	e := newReviewEngine(t, custom, disabled)

	got, err := e.resolver.Resolve(context.Background(), nil, custom)
	require.NoError(t, err)
	assert.Equal(t, models.SettingsCustom, got.Kind)
	assert.Equal(t, "p1", got.Page.ID)

	got, err = e.resolver.Resolve(context.Background(), nil, disabled)
	require.NoError(t, err)
	assert.True(t, got.Disabled())
}

func TestSettingsResolverWalksToNearestCustomAncestor(t *testing.T) {
	root := &models.Page{ID: "root", Policy: models.ReviewPolicyCustom, ReviewPeriodDays: 30, OwnerUserIDs: []string{"u1"}}
	mid := &models.Page{ID: "mid", ParentID: strPtr("root")}
	leaf := &models.Page{ID: "leaf", ParentID: strPtr("mid")}
	e := newReviewEngine(t, root, mid, leaf)

	got, err := e.resolver.Resolve(context.Background(), nil, leaf)
	require.NoError(t, err)
	assert.Equal(t, models.SettingsCustom, got.Kind)
	assert.Equal(t, "root", got.Page.ID)
	assert.Equal(t, 30, got.PeriodDays())
	assert.Equal(t, []string{"u1"}, got.OwnerUserIDs())
	assert.Equal(t, "Inherited from "+root.Title, got.Source(leaf))
}

func TestSettingsResolverDisabledAncestorShortCircuits(t *testing.T) {
	top := &models.Page{ID: "top", Policy: models.ReviewPolicyCustom, ReviewPeriodDays: 7, OwnerUserIDs: []string{"u1"}}
	q := &models.Page{ID: "q", ParentID: strPtr("top"), Policy: models.ReviewPolicyDisabled}
	p := &models.Page{ID: "p", ParentID: strPtr("q"), NextReviewDate: day(-1)}
	e := newReviewEngine(t, top, q, p)
	u := e.dir.addUser("u1", "u1@example.com", "Una", models.RoleEditor)

	got, err := e.resolver.Resolve(context.Background(), nil, p)
	require.NoError(t, err)
	assert.Equal(t, models.SettingsDisabled, got.Kind)

	ok, err := e.permissions.CanBeReviewedBy(context.Background(), nil, p, &u)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSettingsResolverRootFallsBackToSiteDefault(t *testing.T) {
	p := &models.Page{ID: "p"}
	e := newReviewEngine(t, p)
	e.site.settings = &models.SiteSettings{ReviewPeriodDays: 30, OwnerGroupIDs: []string{"g"}}

	got, err := e.resolver.Resolve(context.Background(), nil, p)
	require.NoError(t, err)
	assert.Equal(t, models.SettingsSiteDefault, got.Kind)
	assert.Equal(t, 30, got.PeriodDays())
	assert.Equal(t, []string{"g"}, got.OwnerGroupIDs())
	assert.Equal(t, "Inherited from Settings", got.Source(p))
}

func TestSettingsResolverMissingSiteRowIsEmptyDefault(t *testing.T) {
	p := &models.Page{ID: "p"}
	e := newReviewEngine(t, p)
	e.site.settings = nil

	got, err := e.resolver.Resolve(context.Background(), nil, p)
	require.NoError(t, err)
	assert.Equal(t, models.SettingsSiteDefault, got.Kind)
	assert.Zero(t, got.PeriodDays())
	assert.False(t, got.HasOwnerRefs())
}

func TestSettingsResolverTerminatesWithinDepth(t *testing.T) {
	const depth = 40
	pages := []*models.Page{{ID: "n0"}}
	for i := 1; i < depth; i++ {
		pages = append(pages, &models.Page{ID: fmt.Sprintf("n%d", i), ParentID: strPtr(fmt.Sprintf("n%d", i-1))})
	}
	e := newReviewEngine(t, pages...)
	e.site.settings = &models.SiteSettings{ReviewPeriodDays: 7}

	got, err := e.resolver.Resolve(context.Background(), nil, pages[depth-1])
	require.NoError(t, err)
	assert.Equal(t, models.SettingsSiteDefault, got.Kind)

	shallow := NewSettingsResolver(e.pages, e.site, depth-2)
	_, err = shallow.Resolve(context.Background(), nil, pages[depth-1])
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConfiguration))
}

func TestSettingsResolverDetectsCycle(t *testing.T) {
	a := &models.Page{ID: "a", ParentID: strPtr("b")}
	b := &models.Page{ID: "b", ParentID: strPtr("c")}
	c := &models.Page{ID: "c", ParentID: strPtr("a")}
	e := newReviewEngine(t, a, b, c)

	_, err := e.resolver.Resolve(context.Background(), nil, a)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrConfiguration))
	assert.Contains(t, err.Error(), "cyclic")
}

func TestSettingsResolverIsDeterministicAndMemoisesSite(t *testing.T) {
	p1 := &models.Page{ID: "p1"}
	p2 := &models.Page{ID: "p2"}
	e := newReviewEngine(t, p1, p2)
	e.site.settings = &models.SiteSettings{ReviewPeriodDays: 91}

	cache := NewReviewCache()
	first, err := e.resolver.Resolve(context.Background(), cache, p1)
	require.NoError(t, err)
	second, err := e.resolver.Resolve(context.Background(), cache, p1)
	require.NoError(t, err)
	_, err = e.resolver.Resolve(context.Background(), cache, p2)
	require.NoError(t, err)

	assert.Same(t, first.Site, second.Site)
	assert.Equal(t, 1, e.site.gets)
}

func TestSettingsResolverWrapsStoreErrors(t *testing.T) {
	p := &models.Page{ID: "p"}
	e := newReviewEngine(t, p)
	e.site.err = errors.New("connection reset")

	_, err := e.resolver.Resolve(context.Background(), nil, p)
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrInternal))
}
