package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/model"
)

type fakeAnalytics struct {
	rows        []model.StudentScoreRow
	avg         float64
	activeSince time.Time
	cells       []model.HeatmapCell
}

func (f *fakeAnalytics) StudentScoreRows(context.Context) ([]model.StudentScoreRow, error) {
	return f.rows, nil
}

func (f *fakeAnalytics) AverageScore(context.Context) (float64, error) { return f.avg, nil }

func (f *fakeAnalytics) ActiveStudentsSince(_ context.Context, since time.Time) (int, error) {
	f.activeSince = since
	return 1, nil
}

func (f *fakeAnalytics) QuestionCountByCategory(context.Context) (map[string]int, error) {
	return map[string]int{"Math": 4}, nil
}

func (f *fakeAnalytics) RoleStats(context.Context) ([]model.RoleStats, error) {
	return []model.RoleStats{{Role: model.RoleStudent, Count: 2, Active: 2}}, nil
}

func (f *fakeAnalytics) LevelStats(context.Context) ([]model.LevelStats, error) {
	return []model.LevelStats{}, nil
}

func (f *fakeAnalytics) ResourceTypeStats(context.Context) ([]model.ResourceTypeStats, error) {
	return []model.ResourceTypeStats{}, nil
}

func (f *fakeAnalytics) HeatmapCells(context.Context) ([]model.HeatmapCell, error) {
	return f.cells, nil
}

func TestSummarizeStudents(t *testing.T) {
	joined := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	ann := model.User{ID: uuid.New(), Name: "Ann", Email: "ann@x.com", CreatedAt: joined}
	bob := model.User{ID: uuid.New(), Name: "Bob", Email: "bob@x.com", CreatedAt: joined}
	latest := joined.Add(72 * time.Hour)

	rows := []model.StudentScoreRow{
		{StudentID: ann.ID, Score: 90, Category: "Math", CreatedAt: latest},
		{StudentID: ann.ID, Score: 61, Category: "Science", CreatedAt: joined.Add(48 * time.Hour)},
		{StudentID: ann.ID, Score: 70, Category: "Math", CreatedAt: joined.Add(24 * time.Hour)},
	}

	got := SummarizeStudents([]model.User{ann, bob}, rows)
	if len(got) != 2 {
		t.Fatalf("summaries = %d, want 2", len(got))
	}

	a := got[0]
	if a.TestsTaken != 3 || a.AverageScore != 74 {
		t.Errorf("ann totals = %d tests, avg %d", a.TestsTaken, a.AverageScore)
	}
	if !a.LastActive.Equal(latest) {
		t.Errorf("last active = %v, want %v", a.LastActive, latest)
	}
	want := []model.StudentCategoryScore{{Category: "Math", AverageScore: 80}, {Category: "Science", AverageScore: 61}}
	if len(a.CategoryPerformance) != 2 || a.CategoryPerformance[0] != want[0] || a.CategoryPerformance[1] != want[1] {
		t.Errorf("category performance = %+v", a.CategoryPerformance)
	}

	b := got[1]
	if b.TestsTaken != 0 || b.AverageScore != 0 || !b.LastActive.Equal(joined) || b.CategoryPerformance == nil {
		t.Errorf("student without attempts = %+v", b)
	}
}

func TestBuildHeatmap(t *testing.T) {
	h := BuildHeatmap([]model.HeatmapCell{
		{Day: 0, Hour: 9, Count: 3, StudentCount: 2},
		{Day: 6, Hour: 23, Count: 1, StudentCount: 1},
		{Day: 7, Hour: 1, Count: 5},
		{Day: 2, Hour: 24, Count: 5},
	})
	if h.Heatmap[0][9] != 3 || h.Heatmap[6][23] != 1 {
		t.Errorf("heatmap cells not placed: %v", h.Heatmap)
	}
	if len(h.Raw) != 2 {
		t.Errorf("raw = %+v, want 2 in-range cells", h.Raw)
	}

	empty := BuildHeatmap(nil)
	if empty.Raw == nil {
		t.Error("raw must be non-nil")
	}
}

func TestAdminStats(t *testing.T) {
	ctx := context.Background()
	users := newFakeUsers()
	users.add(model.User{Email: "a@x.com", Role: model.RoleStudent})
	users.add(model.User{Email: "b@x.com", Role: model.RoleStudent})
	users.add(model.User{Email: "admin@x.com", Role: model.RoleAdmin})
	tests, _ := newTestStores()
	_ = tests.Create(ctx, &model.Test{Title: "T"})
	analytics := &fakeAnalytics{avg: 66.6}

	svc := NewStatsService(users, tests, analytics, nopLog)
	now := time.Date(2026, 5, 31, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	st, err := svc.AdminStats(ctx)
	if err != nil {
		t.Fatalf("admin stats: %v", err)
	}
	if st.TotalStudents != 2 || st.TotalTests != 1 || st.AverageScore != 67 || st.ActiveStudents != 1 {
		t.Errorf("stats = %+v", st)
	}
	if !analytics.activeSince.Equal(now.Add(-30 * 24 * time.Hour)) {
		t.Errorf("active window starts %v", analytics.activeSince)
	}
	if st.CategoryStats["Math"] != 4 {
		t.Errorf("category stats = %v", st.CategoryStats)
	}

	dash, err := svc.Dashboard(ctx)
	if err != nil || len(dash.Users) != 1 {
		t.Errorf("dashboard = %+v, %v", dash, err)
	}
}
