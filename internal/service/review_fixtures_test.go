package service

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/noah-isme/content-review-api/internal/models"
)

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func day(offset int) *time.Time {
	d := models.AddDays(testNow, offset)
	return &d
}

func strPtr(v string) *string { return &v }

// memPages is an in-memory page tree keeping insertion order.
type memPages struct {
	mu      sync.Mutex
	order   []string
	pages   map[string]*models.Page
	saves   []string
	saveErr error
}

func newMemPages(pages ...*models.Page) *memPages {
	m := &memPages{pages: make(map[string]*models.Page)}
	for _, p := range pages {
		m.add(p)
	}
	return m
}

func (m *memPages) add(p *models.Page) {
	if p.Policy == "" {
		p.Policy = models.ReviewPolicyInherit
	}
	m.order = append(m.order, p.ID)
	m.pages[p.ID] = p.Clone()
}

func (m *memPages) get(id string) *models.Page {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pages[id].Clone()
}

func (m *memPages) FindByID(_ context.Context, id string) (*models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.pages[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return p.Clone(), nil
}

func (m *memPages) Parent(_ context.Context, page *models.Page) (*models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if page.IsRoot() {
		return nil, nil
	}
	return m.pages[*page.ParentID].Clone(), nil
}

func (m *memPages) Exists(_ context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.pages[id]
	return ok, nil
}

func (m *memPages) ListAll(context.Context) ([]models.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Page, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, *m.pages[id].Clone())
	}
	return out, nil
}

func (m *memPages) ListDue(ctx context.Context, d time.Time) ([]models.Page, error) {
	all, _ := m.ListAll(ctx)
	var out []models.Page
	for _, p := range all {
		if p.HasReviewDate() && !models.DateOf(*p.NextReviewDate).After(d) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memPages) Save(_ context.Context, page *models.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if _, ok := m.pages[page.ID]; !ok {
		return sql.ErrNoRows
	}
	m.pages[page.ID] = page.Clone()
	m.saves = append(m.saves, page.ID)
	return nil
}

// memDirectory implements GroupStore and UserStore.
type memDirectory struct {
	users       map[string]models.User
	groups      map[string]models.Group
	groupOrder  []string
	members     map[string][]string
	expandCalls int
	userCalls   int
}

func newMemDirectory() *memDirectory {
	return &memDirectory{
		users:   make(map[string]models.User),
		groups:  make(map[string]models.Group),
		members: make(map[string][]string),
	}
}

func (d *memDirectory) addUser(id, email, first string, role models.UserRole) models.User {
	u := models.User{ID: id, Email: email, FirstName: first, Surname: "Tester", Role: role}
	d.users[id] = u
	return u
}

func (d *memDirectory) addGroup(id, title string, parent string, memberIDs ...string) {
	g := models.Group{ID: id, Title: title}
	if parent != "" {
		g.ParentID = strPtr(parent)
	}
	d.groups[id] = g
	d.groupOrder = append(d.groupOrder, id)
	d.members[id] = memberIDs
}

func (d *memDirectory) ExpandFamily(_ context.Context, groupID string) ([]models.Group, error) {
	d.expandCalls++
	root, ok := d.groups[groupID]
	if !ok {
		return nil, nil
	}
	family := []models.Group{root}
	for i := 0; i < len(family); i++ {
		for _, id := range d.groupOrder {
			g := d.groups[id]
			if g.ParentID != nil && *g.ParentID == family[i].ID {
				family = append(family, g)
			}
		}
	}
	return family, nil
}

func (d *memDirectory) MembersOf(_ context.Context, groupIDs []string) ([]models.User, error) {
	seen := make(map[string]bool)
	var out []models.User
	for _, gid := range groupIDs {
		for _, uid := range d.members[gid] {
			if u, ok := d.users[uid]; ok && !seen[uid] {
				seen[uid] = true
				out = append(out, u)
			}
		}
	}
	return out, nil
}

func (d *memDirectory) FindByIDs(_ context.Context, ids []string) ([]models.Group, error) {
	var out []models.Group
	for _, id := range ids {
		g, ok := d.groups[id]
		if !ok {
			continue
		}
		crumbs := []string{g.Title}
		for p := g.ParentID; p != nil; p = d.groups[*p].ParentID {
			crumbs = append([]string{d.groups[*p].Title}, crumbs...)
		}
		g.Breadcrumbs = strings.Join(crumbs, " > ")
		out = append(out, g)
	}
	return out, nil
}

type memUsers struct{ dir *memDirectory }

func (u memUsers) FindByID(_ context.Context, id string) (*models.User, error) {
	user, ok := u.dir.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &user, nil
}

func (u memUsers) FindByIDs(_ context.Context, ids []string) ([]models.User, error) {
	u.dir.userCalls++
	var out []models.User
	for _, id := range ids {
		if user, ok := u.dir.users[id]; ok {
			out = append(out, user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type memLogs struct {
	mu   sync.Mutex
	logs []models.ReviewLog
}

func (m *memLogs) Create(_ context.Context, log *models.ReviewLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if log.ID == "" {
		log.ID = "log-" + log.PageID
	}
	m.logs = append(m.logs, *log)
	return nil
}

func (m *memLogs) Latest(_ context.Context, pageID string) (*models.ReviewLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var latest *models.ReviewLog
	for i := range m.logs {
		l := m.logs[i]
		if l.PageID == pageID && (latest == nil || l.CreatedAt.After(latest.CreatedAt)) {
			latest = &l
		}
	}
	return latest, nil
}

func (m *memLogs) ListByPage(_ context.Context, pageID string, limit int) ([]models.ReviewLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.ReviewLog
	for _, l := range m.logs {
		if l.PageID == pageID {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// memRecorder commits reviews against memPages and memLogs, honouring memPages.saveErr.
type memRecorder struct {
	pages *memPages
	logs  *memLogs
}

func (r memRecorder) RecordReview(ctx context.Context, page *models.Page, log *models.ReviewLog) error {
	r.pages.mu.Lock()
	if r.pages.saveErr != nil {
		r.pages.mu.Unlock()
		return r.pages.saveErr
	}
	stored, ok := r.pages.pages[page.ID]
	if !ok {
		r.pages.mu.Unlock()
		return sql.ErrNoRows
	}
	stored.NextReviewDate = page.Clone().NextReviewDate
	r.pages.saves = append(r.pages.saves, page.ID)
	r.pages.mu.Unlock()
	return r.logs.Create(ctx, log)
}

type memSite struct {
	settings *models.SiteSettings
	gets     int
	err      error
}

func (m *memSite) Get(context.Context) (*models.SiteSettings, error) {
	m.gets++
	if m.err != nil {
		return nil, m.err
	}
	if m.settings == nil {
		return nil, sql.ErrNoRows
	}
	c := *m.settings
	return &c, nil
}

func (m *memSite) Save(_ context.Context, s *models.SiteSettings) error {
	c := *s
	m.settings = &c
	return nil
}

// recordingNotifier captures notifications and can fail for chosen owners.
type recordingNotifier struct {
	sent   []Notification
	failOn map[string]bool
}

func (r *recordingNotifier) Send(_ context.Context, n Notification) error {
	if r.failOn[n.Owner.ID] {
		return errors.New("smtp: connection refused")
	}
	r.sent = append(r.sent, n)
	return nil
}

type emailSyntax struct{}

func (emailSyntax) IsValid(address string) bool {
	at := strings.Index(address, "@")
	return at > 0 && at < len(address)-1 && !strings.ContainsAny(address, " ,")
}

// reviewEngine bundles the collaborators most tests need.
type reviewEngine struct {
	pages       *memPages
	dir         *memDirectory
	users       memUsers
	logs        *memLogs
	site        *memSite
	clock       FixedClock
	resolver    *SettingsResolver
	owners      *OwnerResolver
	schedule    *ReviewScheduleService
	permissions *ReviewPermissionService
}

func newReviewEngine(t *testing.T, pages ...*models.Page) *reviewEngine {
	t.Helper()
	e := &reviewEngine{
		pages: newMemPages(pages...),
		dir:   newMemDirectory(),
		logs:  &memLogs{},
		site:  &memSite{settings: &models.SiteSettings{}},
		clock: FixedClock{At: testNow},
	}
	e.users = memUsers{dir: e.dir}
	e.resolver = NewSettingsResolver(e.pages, e.site, 0)
	e.owners = NewOwnerResolver(e.dir, e.users)
	e.schedule = NewReviewScheduleService(e.pages, e.resolver, e.owners, e.clock, nil)
	e.permissions = NewReviewPermissionService(e.resolver, e.owners, e.clock, nil)
	return e
}
