package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/questguide/questguide-backend/internal/model"
	"github.com/rs/zerolog"
)

const activeWindow = 30 * 24 * time.Hour

type scoreSum struct {
	total float64
	count int
}

// StatsService serves the admin-facing aggregate views.
type StatsService struct {
	users     UserStore
	tests     TestStore
	analytics AnalyticsStore
	log       zerolog.Logger
	now       func() time.Time
}

// NewStatsService creates a new StatsService.
func NewStatsService(users UserStore, tests TestStore, analytics AnalyticsStore, log zerolog.Logger) *StatsService {
	return &StatsService{
		users:     users,
		tests:     tests,
		analytics: analytics,
		log:       log.With().Str("component", "stats_service").Logger(),
		now:       time.Now,
	}
}

// Students lists every student with their attempt statistics.
func (s *StatsService) Students(ctx context.Context) ([]model.StudentSummary, error) {
	students, err := s.users.ListByRole(ctx, model.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	rows, err := s.analytics.StudentScoreRows(ctx)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}
	return SummarizeStudents(students, rows), nil
}

// SummarizeStudents folds result rows (newest first) into per-student
// summaries. Category averages are grouped by the first question's category
// of each attempted test, sorted by name.
func SummarizeStudents(students []model.User, rows []model.StudentScoreRow) []model.StudentSummary {
	byStudent := make(map[uuid.UUID][]model.StudentScoreRow)
	for _, r := range rows {
		byStudent[r.StudentID] = append(byStudent[r.StudentID], r)
	}

	out := make([]model.StudentSummary, 0, len(students))
	for _, st := range students {
		results := byStudent[st.ID]
		sum := model.StudentSummary{
			ID:                  st.ID,
			Name:                st.Name,
			Email:               st.Email,
			TestsTaken:          len(results),
			LastActive:          st.CreatedAt,
			CategoryPerformance: []model.StudentCategoryScore{},
		}
		if len(results) == 0 {
			out = append(out, sum)
			continue
		}

		var total float64
		cats := make(map[string]*scoreSum)
		latest := results[0].CreatedAt
		for _, r := range results {
			total += r.Score
			if r.CreatedAt.After(latest) {
				latest = r.CreatedAt
			}
			c := cats[r.Category]
			if c == nil {
				c = &scoreSum{}
				cats[r.Category] = c
			}
			c.total += r.Score
			c.count++
		}
		sum.AverageScore = round(total / float64(len(results)))
		sum.LastActive = latest

		for name, c := range cats {
			sum.CategoryPerformance = append(sum.CategoryPerformance, model.StudentCategoryScore{
				Category:     name,
				AverageScore: round(c.total / float64(c.count)),
			})
		}
		sort.Slice(sum.CategoryPerformance, func(i, j int) bool {
			return sum.CategoryPerformance[i].Category < sum.CategoryPerformance[j].Category
		})
		out = append(out, sum)
	}
	return out
}

// AdminStats returns the admin overview.
func (s *StatsService) AdminStats(ctx context.Context) (*model.AdminStats, error) {
	students, err := s.users.CountByRole(ctx, model.RoleStudent)
	if err != nil {
		return nil, fmt.Errorf("count students: %w", err)
	}
	tests, err := s.tests.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count tests: %w", err)
	}
	avg, err := s.analytics.AverageScore(ctx)
	if err != nil {
		return nil, fmt.Errorf("average score: %w", err)
	}
	active, err := s.analytics.ActiveStudentsSince(ctx, s.now().Add(-activeWindow))
	if err != nil {
		return nil, fmt.Errorf("active students: %w", err)
	}
	cats, err := s.analytics.QuestionCountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("category stats: %w", err)
	}

	return &model.AdminStats{
		TotalStudents:  students,
		TotalTests:     tests,
		AverageScore:   round(avg),
		ActiveStudents: active,
		CategoryStats:  cats,
	}, nil
}

// Dashboard returns users by role, attempted tests by level and resources by type.
func (s *StatsService) Dashboard(ctx context.Context) (*model.DashboardStats, error) {
	users, err := s.analytics.RoleStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("role stats: %w", err)
	}
	levels, err := s.analytics.LevelStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("level stats: %w", err)
	}
	resources, err := s.analytics.ResourceTypeStats(ctx)
	if err != nil {
		return nil, fmt.Errorf("resource stats: %w", err)
	}
	return &model.DashboardStats{Users: users, Tests: levels, Resources: resources}, nil
}

// ActivityHeatmap returns attempt starts by UTC weekday and hour.
func (s *StatsService) ActivityHeatmap(ctx context.Context) (*model.ActivityHeatmap, error) {
	cells, err := s.analytics.HeatmapCells(ctx)
	if err != nil {
		return nil, fmt.Errorf("heatmap: %w", err)
	}
	return BuildHeatmap(cells), nil
}

// BuildHeatmap places cells into a 7x24 matrix. Out-of-range cells are
// dropped from the matrix and from Raw.
func BuildHeatmap(cells []model.HeatmapCell) *model.ActivityHeatmap {
	h := &model.ActivityHeatmap{Raw: []model.HeatmapCell{}}
	for _, c := range cells {
		if c.Day < 0 || c.Day > 6 || c.Hour < 0 || c.Hour > 23 {
			continue
		}
		h.Heatmap[c.Day][c.Hour] += c.Count
		h.Raw = append(h.Raw, c)
	}
	return h
}
