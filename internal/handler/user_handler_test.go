package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/questguide/questguide-backend/internal/response"
)

type stubStatsService struct {
	err error
}

func (s *stubStatsService) Students(context.Context) ([]model.StudentSummary, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []model.StudentSummary{{ID: uuid.New(), Name: "Ann", AverageScore: 74}}, nil
}

func (s *stubStatsService) AdminStats(context.Context) (*model.AdminStats, error) {
	return &model.AdminStats{TotalStudents: 3, TotalTests: 2, AverageScore: 67, CategoryStats: map[string]int{"Math": 80}}, nil
}

func (s *stubStatsService) Dashboard(context.Context) (*model.DashboardStats, error) {
	return &model.DashboardStats{}, nil
}

func (s *stubStatsService) ActivityHeatmap(context.Context) (*model.ActivityHeatmap, error) {
	h := &model.ActivityHeatmap{Raw: []model.HeatmapCell{{Day: 1, Hour: 9, Count: 2}}}
	h.Heatmap[1][9] = 2
	return h, nil
}

type stubPerformanceService struct {
	user *model.User
}

func (s *stubPerformanceService) ForUser(_ context.Context, user *model.User) (*model.Performance, error) {
	s.user = user
	return &model.Performance{Name: user.Name, TestsAttempted: 1, AverageScore: 50}, nil
}

func userRoutes(stats *stubStatsService, perf *stubPerformanceService, user *model.User) http.Handler {
	h := NewUserHandler(stats, perf)
	r := newEngine(user)
	r.GET("/users/students", h.ListStudents)
	r.GET("/users/admin-stats", h.AdminStats)
	r.GET("/users/performance", h.Performance)
	r.GET("/users/dashboard-stats", h.DashboardStats)
	r.GET("/users/activity-heatmap", h.ActivityHeatmap)
	return r
}

func TestUserEndpoints(t *testing.T) {
	perf := &stubPerformanceService{}
	r := userRoutes(&stubStatsService{}, perf, studentUser)

	w := do(r, http.MethodGet, "/users/students", "")
	if env := decode(t, w); w.Code != http.StatusOK || env.Results == nil || *env.Results != 1 {
		t.Errorf("students: %d %s", w.Code, w.Body.String())
	}

	w = do(r, http.MethodGet, "/users/performance", "")
	var data struct {
		Performance model.Performance `json:"performance"`
	}
	if err := json.Unmarshal(decode(t, w).Data, &data); err != nil {
		t.Fatal(err)
	}
	if perf.user != studentUser || data.Performance.Name != "Stu" {
		t.Errorf("performance for %v: %+v", perf.user, data.Performance)
	}

	w = do(r, http.MethodGet, "/users/activity-heatmap", "")
	var heatmap model.ActivityHeatmap
	if err := json.Unmarshal(decode(t, w).Data, &heatmap); err != nil {
		t.Fatal(err)
	}
	if heatmap.Heatmap[1][9] != 2 || len(heatmap.Raw) != 1 {
		t.Errorf("heatmap = %+v", heatmap)
	}

	for _, path := range []string{"/users/admin-stats", "/users/dashboard-stats"} {
		if w := do(r, http.MethodGet, path, ""); w.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, w.Code)
		}
	}
}

func TestUserEndpointFailure(t *testing.T) {
	r := userRoutes(&stubStatsService{err: errors.New("db down")}, &stubPerformanceService{}, adminUser)
	expectError(t, do(r, http.MethodGet, "/users/students", ""), http.StatusInternalServerError, response.ErrInternal)
}
