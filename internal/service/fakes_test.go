package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/repository"
	"github.com/rs/zerolog"
)

var nopLog = zerolog.Nop()

type fakeUsers struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*model.User
	touch     []uuid.UUID
	updateErr error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{byID: make(map[uuid.UUID]*model.User)}
}

func (f *fakeUsers) Create(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.byID {
		if strings.EqualFold(existing.Email, u.Email) {
			return repository.ErrDuplicateEmail
		}
	}
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	u.CreatedAt = time.Now()
	cp := *u
	f.byID[u.ID] = &cp
	return nil
}

func (f *fakeUsers) GetByID(_ context.Context, id uuid.UUID) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUsers) GetByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.byID {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (f *fakeUsers) UpdateAccount(_ context.Context, u *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	existing, ok := f.byID[u.ID]
	if !ok {
		return repository.ErrNotFound
	}
	existing.Name = u.Name
	existing.PasswordHash, existing.PasswordChangedAt = u.PasswordHash, u.PasswordChangedAt
	return nil
}

func (f *fakeUsers) TouchLastLogin(_ context.Context, id uuid.UUID, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.byID[id]; ok {
		u.LastLogin = &at
	}
	f.touch = append(f.touch, id)
	return nil
}

func (f *fakeUsers) ListByRole(_ context.Context, role model.Role) ([]model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.User
	for _, u := range f.byID {
		if u.Role == role {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (f *fakeUsers) CountByRole(ctx context.Context, role model.Role) (int, error) {
	users, _ := f.ListByRole(ctx, role)
	return len(users), nil
}

func (f *fakeUsers) add(u model.User) *model.User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.AccountStatus == "" {
		u.AccountStatus = model.AccountActive
	}
	f.mu.Lock()
	f.byID[u.ID] = &u
	f.mu.Unlock()
	cp := u
	return &cp
}

type fakeTokens struct {
	mu      sync.Mutex
	revoked map[string]time.Duration
	err     error
}

func newFakeTokens() *fakeTokens {
	return &fakeTokens{revoked: make(map[string]time.Duration)}
}

func (f *fakeTokens) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if ttl > 0 {
		f.revoked[jti] = ttl
	}
	return nil
}

func (f *fakeTokens) IsRevoked(_ context.Context, jti string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	_, ok := f.revoked[jti]
	return ok, nil
}

type fakeTests struct {
	mu      sync.Mutex
	byID    map[uuid.UUID]*model.Test
	results *fakeResults
}

func newFakeTests(results *fakeResults) *fakeTests {
	return &fakeTests{byID: make(map[uuid.UUID]*model.Test), results: results}
}

func (f *fakeTests) Create(_ context.Context, t *model.Test) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	t.CreatedAt = time.Now()
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTests) GetByID(_ context.Context, id uuid.UUID) (*model.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *t
	cp.Questions = append([]model.Question(nil), t.Questions...)
	return &cp, nil
}

func (f *fakeTests) List(_ context.Context, activeOnly bool) ([]model.Test, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Test
	for _, t := range f.byID {
		if activeOnly && !t.IsActive {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Title < out[j].Title })
	return out, nil
}

func (f *fakeTests) Update(_ context.Context, t *model.Test) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[t.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *t
	f.byID[t.ID] = &cp
	return nil
}

func (f *fakeTests) DeleteCascade(_ context.Context, id uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return 0, repository.ErrNotFound
	}
	removed := int64(0)
	if f.results != nil {
		removed = f.results.deleteByTest(id)
	}
	delete(f.byID, id)
	return removed, nil
}

func (f *fakeTests) Count(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.byID), nil
}

type fakeResults struct {
	mu       sync.Mutex
	items    []model.TestResult
	tests    *fakeTests
	statsErr error
}

func (f *fakeResults) Create(_ context.Context, res *model.TestResult) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	res.CreatedAt = time.Now()
	f.items = append(f.items, *res)
	return nil
}

func (f *fakeResults) ListByStudent(ctx context.Context, studentID uuid.UUID) ([]model.TestResultWithTitle, error) {
	f.mu.Lock()
	items := append([]model.TestResult(nil), f.items...)
	f.mu.Unlock()

	var out []model.TestResultWithTitle
	for i := len(items) - 1; i >= 0; i-- {
		if items[i].StudentID != studentID {
			continue
		}
		title := ""
		if t, err := f.tests.GetByID(ctx, items[i].TestID); err == nil {
			title = t.Title
		}
		out = append(out, model.TestResultWithTitle{TestResult: items[i], TestTitle: title})
	}
	return out, nil
}

func (f *fakeResults) ListCompletedAttempts(ctx context.Context, studentID uuid.UUID) ([]model.Attempt, error) {
	rows, _ := f.ListByStudent(ctx, studentID)
	var out []model.Attempt
	for _, r := range rows {
		if r.Status != model.ResultCompleted {
			continue
		}
		t, _ := f.tests.GetByID(ctx, r.TestID)
		out = append(out, model.Attempt{Result: r.TestResult, Test: t})
	}
	return out, nil
}

func (f *fakeResults) StatsByTest(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.TestStats, error) {
	if f.statsErr != nil {
		return nil, f.statsErr
	}
	f.mu.Lock()
	items := append([]model.TestResult(nil), f.items...)
	f.mu.Unlock()

	out := make(map[uuid.UUID]model.TestStats)
	for _, id := range ids {
		t, err := f.tests.GetByID(ctx, id)
		if err != nil {
			continue
		}
		var st model.TestStats
		var sum float64
		for _, r := range items {
			if r.TestID != id {
				continue
			}
			if st.Attempts == 0 || r.Score > st.MaxScore {
				st.MaxScore = r.Score
			}
			if st.Attempts == 0 || r.Score < st.MinScore {
				st.MinScore = r.Score
			}
			st.Attempts++
			sum += r.Score
			if r.Score >= float64(t.PassingMarks) {
				st.PassCount++
			}
		}
		if st.Attempts > 0 {
			st.AverageScore = sum / float64(st.Attempts)
			st.PassRate = float64(st.PassCount) / float64(st.Attempts) * 100
			out[id] = st
		}
	}
	return out, nil
}

func (f *fakeResults) deleteByTest(id uuid.UUID) int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.items[:0]
	var removed int64
	for _, r := range f.items {
		if r.TestID == id {
			removed++
			continue
		}
		kept = append(kept, r)
	}
	f.items = kept
	return removed
}

func (f *fakeResults) countByTest(id uuid.UUID) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, r := range f.items {
		if r.TestID == id {
			n++
		}
	}
	return n
}

func newTestStores() (*fakeTests, *fakeResults) {
	results := &fakeResults{}
	tests := newFakeTests(results)
	results.tests = tests
	return tests, results
}

type fakeEvents struct {
	mu     sync.Mutex
	events []model.SubmissionEvent
	err    error
}

func (f *fakeEvents) PublishSubmission(_ context.Context, ev model.SubmissionEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, ev)
	return nil
}

type fakeResources struct {
	mu        sync.Mutex
	byID      map[uuid.UUID]*model.Resource
	topCalled []string
}

func newFakeResources() *fakeResources {
	return &fakeResources{byID: make(map[uuid.UUID]*model.Resource)}
}

func (f *fakeResources) Create(_ context.Context, res *model.Resource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if res.ID == uuid.Nil {
		res.ID = uuid.New()
	}
	res.CreatedAt = time.Now()
	cp := *res
	f.byID[res.ID] = &cp
	return nil
}

func (f *fakeResources) GetByID(_ context.Context, id uuid.UUID) (*model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *res
	return &cp, nil
}

func (f *fakeResources) RecordView(_ context.Context, id uuid.UUID, at time.Time) (*model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	res, ok := f.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	res.ViewCount++
	res.LastAccessed = &at
	cp := *res
	return &cp, nil
}

func (f *fakeResources) ListPublic(_ context.Context, filter model.ResourceFilter) ([]model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Resource
	for _, r := range f.byID {
		if !r.IsPublic {
			continue
		}
		if filter.Category != "" && r.Category != filter.Category {
			continue
		}
		if filter.Type != "" && r.Type != filter.Type {
			continue
		}
		if filter.Tag != "" && !containsString(r.Tags, filter.Tag) {
			continue
		}
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeResources) Update(_ context.Context, res *model.Resource) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[res.ID]; !ok {
		return repository.ErrNotFound
	}
	cp := *res
	f.byID[res.ID] = &cp
	return nil
}

func (f *fakeResources) Delete(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

func (f *fakeResources) ListSimilarCandidates(_ context.Context, src *model.Resource) ([]model.Resource, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Resource
	for _, r := range f.byID {
		if r.ID != src.ID && r.IsPublic {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeResources) TopPublicByCategories(_ context.Context, categories []string, limit int) ([]model.ResourceSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.topCalled = append([]string(nil), categories...)
	var matched []model.Resource
	for _, r := range f.byID {
		if r.IsPublic && containsString(categories, r.Category) {
			matched = append(matched, *r)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].ViewCount > matched[j].ViewCount })
	out := []model.ResourceSummary{}
	for i, r := range matched {
		if i >= limit {
			break
		}
		out = append(out, model.ResourceSummary{ID: r.ID, Title: r.Title, Category: r.Category, ViewCount: r.ViewCount, Type: r.Type, URL: r.URL})
	}
	return out, nil
}

var errBoom = errors.New("boom")
